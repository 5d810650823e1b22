package main

import (
	"fmt"
	"time"

	"github.com/bazaar-next/internal/config"
	"github.com/bazaar-next/internal/constants"
	"github.com/bazaar-next/internal/logger"
	"github.com/bazaar-next/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加商品（优惠资格演示数据）
	products := []models.Product{
		{
			Name:             "无线蓝牙耳机",
			PriceAmount:      models.NewMoneyFromDecimal(decimal.NewFromFloat(99.99)),
			IsCouponEligible: true,
			IsActive:         true,
		},
		{
			Name:             "智能手表",
			PriceAmount:      models.NewMoneyFromDecimal(decimal.NewFromFloat(199.99)),
			IsCouponEligible: true,
			IsActive:         true,
		},
		{
			Name:             "便携充电宝",
			PriceAmount:      models.NewMoneyFromDecimal(decimal.NewFromFloat(49.99)),
			IsCouponEligible: true,
			IsActive:         true,
		},
		{
			Name:             "多功能背包",
			PriceAmount:      models.NewMoneyFromDecimal(decimal.NewFromFloat(79.99)),
			IsCouponEligible: false,
			IsActive:         true,
		},
		{
			Name:             "礼品卡（不参与优惠）",
			PriceAmount:      models.NewMoneyFromDecimal(decimal.NewFromFloat(100.00)),
			IsCouponEligible: false,
			IsActive:         true,
		},
	}

	productIDs := map[string]uint{}
	for _, prod := range products {
		var existing models.Product
		if err := models.DB.Where("name = ?", prod.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&prod).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", prod.Name, err)
				continue
			}
			stdLog.Printf("Created product: %s", prod.Name)
			productIDs[prod.Name] = prod.ID
		} else {
			existing.PriceAmount = prod.PriceAmount
			existing.IsCouponEligible = prod.IsCouponEligible
			existing.IsActive = prod.IsActive
			if err := models.DB.Save(&existing).Error; err != nil {
				stdLog.Printf("Failed to update product %s: %v", prod.Name, err)
				continue
			}
			stdLog.Printf("Updated product: %s", prod.Name)
			productIDs[prod.Name] = existing.ID
		}
	}

	// 添加优惠码
	now := time.Now()
	promos := []models.PromoCode{
		{
			Code:         "SPRING20",
			DiscountType: constants.DiscountTypePercentage,
			Value:        models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
			MinPurchase:  models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
			MaxDiscount:  models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
			UsageLimit:   constants.PromoUsageUnlimited,
			StartDate:    now.Add(-24 * time.Hour),
			EndDate:      now.AddDate(0, 2, 0),
			Status:       constants.PromoStatusActive,
		},
		{
			Code:         "FLAT15",
			DiscountType: constants.DiscountTypeFixed,
			Value:        models.NewMoneyFromDecimal(decimal.NewFromInt(15)),
			MinPurchase:  models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
			UsageLimit:   constants.PromoUsageUnlimited,
			StartDate:    now.Add(-24 * time.Hour),
			EndDate:      now.AddDate(0, 1, 0),
			Status:       constants.PromoStatusActive,
		},
		{
			Code:         "VIP100",
			DiscountType: constants.DiscountTypeFixed,
			Value:        models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
			MinPurchase:  models.NewMoneyFromDecimal(decimal.NewFromInt(500)),
			UsageLimit:   50,
			StartDate:    now.Add(-24 * time.Hour),
			EndDate:      now.AddDate(0, 0, 15),
			Status:       constants.PromoStatusActive,
		},
		{
			Code:         "EXPIRED10",
			DiscountType: constants.DiscountTypePercentage,
			Value:        models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
			UsageLimit:   constants.PromoUsageUnlimited,
			StartDate:    now.AddDate(0, -2, 0),
			EndDate:      now.AddDate(0, -1, 0),
			Status:       constants.PromoStatusExpired,
		},
		{
			// 预设未来时间窗，到点自动上线
			Code:         "UPCOMING25",
			DiscountType: constants.DiscountTypePercentage,
			Value:        models.NewMoneyFromDecimal(decimal.NewFromInt(25)),
			MaxDiscount:  models.NewMoneyFromDecimal(decimal.NewFromInt(80)),
			UsageLimit:   constants.PromoUsageUnlimited,
			StartDate:    now.AddDate(0, 0, 7),
			EndDate:      now.AddDate(0, 3, 0),
			Status:       constants.PromoStatusInactive,
		},
	}

	promoIDs := map[string]uint{}
	for _, promo := range promos {
		var existing models.PromoCode
		if err := models.DB.Where("code = ?", promo.Code).First(&existing).Error; err != nil {
			if err := models.DB.Create(&promo).Error; err != nil {
				stdLog.Printf("Failed to create promo code %s: %v", promo.Code, err)
				continue
			}
			stdLog.Printf("Created promo code: %s", promo.Code)
			promoIDs[promo.Code] = promo.ID
		} else {
			existing.DiscountType = promo.DiscountType
			existing.Value = promo.Value
			existing.MinPurchase = promo.MinPurchase
			existing.MaxDiscount = promo.MaxDiscount
			existing.UsageLimit = promo.UsageLimit
			existing.StartDate = promo.StartDate
			existing.EndDate = promo.EndDate
			existing.Status = promo.Status
			if err := models.DB.Save(&existing).Error; err != nil {
				stdLog.Printf("Failed to update promo code %s: %v", promo.Code, err)
				continue
			}
			stdLog.Printf("Updated promo code: %s", promo.Code)
			promoIDs[promo.Code] = existing.ID
		}
	}

	// 绑定商品适用的优惠码集合
	eligiblePlans := map[string][]string{
		"无线蓝牙耳机": {"SPRING20", "FLAT15", "UPCOMING25"},
		"智能手表":   {"SPRING20", "FLAT15", "VIP100", "UPCOMING25"},
		"便携充电宝":  {"FLAT15"},
	}

	for name, codes := range eligiblePlans {
		productID, ok := productIDs[name]
		if !ok {
			stdLog.Printf("Skip coupon binding for %s: product not found", name)
			continue
		}
		var coupons models.UintArray
		for _, code := range codes {
			if id, ok := promoIDs[code]; ok {
				coupons = append(coupons, id)
			}
		}
		if err := models.DB.Model(&models.Product{}).
			Where("id = ?", productID).
			Update("applicable_coupons", coupons).Error; err != nil {
			stdLog.Printf("Failed to bind coupons for %s: %v", name, err)
		} else {
			stdLog.Printf("Bound %d coupons for product: %s", len(coupons), name)
		}
	}

	fmt.Println("\n✅ Test data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 5 Products (3 coupon-eligible)")
	fmt.Println("- 5 Promo codes (active / limited / expired / scheduled)")
}
