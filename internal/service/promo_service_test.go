package service

import (
	"errors"
	"testing"
	"time"

	"github.com/bazaar-next/internal/constants"
	"github.com/bazaar-next/internal/models"
	"github.com/bazaar-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupPromoServiceTest(t *testing.T) (*PromoService, *repository.GormPromoCodeRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.PromoCode{}, &models.PromoCodeUsage{}, &models.Product{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	promoRepo := repository.NewPromoCodeRepository(db)
	productRepo := repository.NewProductRepository(db)
	return NewPromoService(promoRepo, productRepo, time.Minute), promoRepo, db
}

func createTestPromo(t *testing.T, db *gorm.DB, promo *models.PromoCode) *models.PromoCode {
	t.Helper()
	if promo.DiscountType == "" {
		promo.DiscountType = constants.DiscountTypePercentage
	}
	if promo.Status == "" {
		promo.Status = constants.PromoStatusActive
	}
	if promo.StartDate.IsZero() {
		promo.StartDate = time.Now().Add(-24 * time.Hour)
	}
	if promo.EndDate.IsZero() {
		promo.EndDate = time.Now().Add(24 * time.Hour)
	}
	if promo.UsageLimit == 0 {
		promo.UsageLimit = constants.PromoUsageUnlimited
	}
	if err := db.Create(promo).Error; err != nil {
		t.Fatalf("create promo failed: %v", err)
	}
	return promo
}

func createTestProduct(t *testing.T, db *gorm.DB, name string, eligible bool, coupons models.UintArray) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:              name,
		PriceAmount:       models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		IsCouponEligible:  eligible,
		ApplicableCoupons: coupons,
		IsActive:          true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func money(v float64) models.Money {
	return models.NewMoneyFromDecimal(decimal.NewFromFloat(v))
}

func TestNormalizeCode(t *testing.T) {
	if got := NormalizeCode("  summer20 "); got != "SUMMER20" {
		t.Fatalf("normalize want SUMMER20 got %q", got)
	}
	if got := NormalizeCode(""); got != "" {
		t.Fatalf("normalize empty want empty got %q", got)
	}
}

func TestValidatePercentageWithCap(t *testing.T) {
	svc, _, db := setupPromoServiceTest(t)
	promo := createTestPromo(t, db, &models.PromoCode{
		Code:         "PCTCAP20",
		DiscountType: constants.DiscountTypePercentage,
		Value:        money(20),
		MaxDiscount:  money(30),
	})
	product := createTestProduct(t, db, "pct-cap-item", true, models.UintArray{promo.ID})

	items := []CartItem{{ProductID: product.ID, Price: money(100), Quantity: 2}}
	result, err := svc.Validate(" pctcap20 ", money(200), items, "user-1")
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	// 20% of 200 = 40，被 max_discount=30 封顶
	if !result.DiscountAmount.Decimal.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("discount want 30 got %s", result.DiscountAmount.String())
	}
	if result.Code != "PCTCAP20" {
		t.Fatalf("result code want PCTCAP20 got %s", result.Code)
	}
}

func TestValidatePercentageWithoutCap(t *testing.T) {
	svc, _, db := setupPromoServiceTest(t)
	promo := createTestPromo(t, db, &models.PromoCode{
		Code:         "PCTOPEN10",
		DiscountType: constants.DiscountTypePercentage,
		Value:        money(10),
	})
	product := createTestProduct(t, db, "pct-open-item", true, models.UintArray{promo.ID})

	items := []CartItem{{ProductID: product.ID, Price: money(50), Quantity: 3}}
	result, err := svc.Validate("PCTOPEN10", money(150), items, "")
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !result.DiscountAmount.Decimal.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("discount want 15 got %s", result.DiscountAmount.String())
	}
}

func TestValidateFixedCappedAtEligibleAmount(t *testing.T) {
	svc, _, db := setupPromoServiceTest(t)
	promo := createTestPromo(t, db, &models.PromoCode{
		Code:         "FIXEDBIG",
		DiscountType: constants.DiscountTypeFixed,
		Value:        money(80),
	})
	product := createTestProduct(t, db, "fixed-cap-item", true, models.UintArray{promo.ID})

	// 适用金额 50 < 固定折扣 80，折扣不能超过适用金额
	items := []CartItem{{ProductID: product.ID, Price: money(50), Quantity: 1}}
	result, err := svc.Validate("FIXEDBIG", money(120), items, "")
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !result.DiscountAmount.Decimal.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("discount want 50 got %s", result.DiscountAmount.String())
	}
}

func TestValidateNotFound(t *testing.T) {
	svc, _, _ := setupPromoServiceTest(t)

	if _, err := svc.Validate("NOSUCHCODE", money(100), nil, ""); !errors.Is(err, ErrPromoNotFound) {
		t.Fatalf("want ErrPromoNotFound got %v", err)
	}
	if _, err := svc.Validate("   ", money(100), nil, ""); !errors.Is(err, ErrPromoNotFound) {
		t.Fatalf("blank code want ErrPromoNotFound got %v", err)
	}
}

func TestValidateExpired(t *testing.T) {
	svc, _, db := setupPromoServiceTest(t)
	createTestPromo(t, db, &models.PromoCode{
		Code:      "PASTCODE",
		Value:     money(10),
		StartDate: time.Now().Add(-48 * time.Hour),
		EndDate:   time.Now().Add(-24 * time.Hour),
	})

	if _, err := svc.Validate("PASTCODE", money(100), nil, ""); !errors.Is(err, ErrPromoExpired) {
		t.Fatalf("want ErrPromoExpired got %v", err)
	}
}

func TestValidateLazilyPersistsExpiredStatus(t *testing.T) {
	svc, promoRepo, db := setupPromoServiceTest(t)
	promo := createTestPromo(t, db, &models.PromoCode{
		Code:      "LAZYEXP",
		Value:     money(10),
		StartDate: time.Now().Add(-48 * time.Hour),
		EndDate:   time.Now().Add(-24 * time.Hour),
		Status:    constants.PromoStatusActive,
	})

	if _, err := svc.Validate("LAZYEXP", money(100), nil, ""); !errors.Is(err, ErrPromoExpired) {
		t.Fatalf("want ErrPromoExpired got %v", err)
	}

	got, err := promoRepo.GetByID(promo.ID)
	if err != nil {
		t.Fatalf("reload promo failed: %v", err)
	}
	if got.Status != constants.PromoStatusExpired {
		t.Fatalf("stored status want expired got %s", got.Status)
	}
}

func TestValidateInactive(t *testing.T) {
	svc, _, db := setupPromoServiceTest(t)
	createTestPromo(t, db, &models.PromoCode{
		Code:      "NOTYETCODE",
		Value:     money(10),
		StartDate: time.Now().Add(24 * time.Hour),
		EndDate:   time.Now().Add(48 * time.Hour),
	})

	if _, err := svc.Validate("NOTYETCODE", money(100), nil, ""); !errors.Is(err, ErrPromoInactive) {
		t.Fatalf("want ErrPromoInactive got %v", err)
	}
}

func TestValidateActivatesInactiveInsideWindow(t *testing.T) {
	// 存储状态为 inactive 但已进入时间窗的优惠码按 active 处理
	svc, _, db := setupPromoServiceTest(t)
	promo := createTestPromo(t, db, &models.PromoCode{
		Code:   "AUTOLIVE10",
		Value:  money(10),
		Status: constants.PromoStatusInactive,
	})
	product := createTestProduct(t, db, "auto-live-item", true, models.UintArray{promo.ID})

	items := []CartItem{{ProductID: product.ID, Price: money(100), Quantity: 1}}
	result, err := svc.Validate("AUTOLIVE10", money(100), items, "")
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !result.DiscountAmount.Decimal.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("discount want 10 got %s", result.DiscountAmount.String())
	}
}

func TestValidateMinPurchase(t *testing.T) {
	svc, _, db := setupPromoServiceTest(t)
	createTestPromo(t, db, &models.PromoCode{
		Code:        "MINBUY100",
		Value:       money(10),
		MinPurchase: money(100),
	})

	_, err := svc.Validate("MINBUY100", money(60), nil, "")
	if !errors.Is(err, ErrPromoMinPurchase) {
		t.Fatalf("want min purchase error got %v", err)
	}
	var minErr *MinPurchaseError
	if !errors.As(err, &minErr) {
		t.Fatalf("want *MinPurchaseError got %T", err)
	}
	if !minErr.Required.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("required amount want 100 got %s", minErr.Required.String())
	}
}

func TestValidateUsageLimitReached(t *testing.T) {
	svc, _, db := setupPromoServiceTest(t)
	createTestPromo(t, db, &models.PromoCode{
		Code:       "LIMITED3",
		Value:      money(10),
		UsageLimit: 3,
		UsedCount:  3,
	})

	if _, err := svc.Validate("LIMITED3", money(100), nil, ""); !errors.Is(err, ErrPromoUsageLimit) {
		t.Fatalf("want ErrPromoUsageLimit got %v", err)
	}
}

func TestValidateNoEligibleItems(t *testing.T) {
	svc, _, db := setupPromoServiceTest(t)
	promo := createTestPromo(t, db, &models.PromoCode{
		Code:  "NOELIG10",
		Value: money(10),
	})
	// 商品不参与优惠活动
	ineligible := createTestProduct(t, db, "no-elig-off", false, models.UintArray{promo.ID})
	// 商品参与但适用集合不含该码
	otherList := createTestProduct(t, db, "no-elig-other", true, models.UintArray{promo.ID + 1000})

	items := []CartItem{
		{ProductID: ineligible.ID, Price: money(100), Quantity: 1},
		{ProductID: otherList.ID, Price: money(100), Quantity: 1},
		{ProductID: 999999, Price: money(100), Quantity: 1}, // 查不到的商品跳过
	}
	if _, err := svc.Validate("NOELIG10", money(300), items, ""); !errors.Is(err, ErrPromoNoEligibleItems) {
		t.Fatalf("want ErrPromoNoEligibleItems got %v", err)
	}
}

func TestValidateSkipsNonPositiveQuantity(t *testing.T) {
	svc, _, db := setupPromoServiceTest(t)
	promo := createTestPromo(t, db, &models.PromoCode{
		Code:         "QTYCHECK",
		DiscountType: constants.DiscountTypeFixed,
		Value:        money(10),
	})
	product := createTestProduct(t, db, "qty-check-item", true, models.UintArray{promo.ID})

	items := []CartItem{
		{ProductID: product.ID, Price: money(100), Quantity: 0},
		{ProductID: product.ID, Price: money(100), Quantity: -2},
	}
	if _, err := svc.Validate("QTYCHECK", money(100), items, ""); !errors.Is(err, ErrPromoNoEligibleItems) {
		t.Fatalf("zero quantity items want ErrPromoNoEligibleItems got %v", err)
	}
}

func TestValidateIsReadOnly(t *testing.T) {
	svc, promoRepo, db := setupPromoServiceTest(t)
	promo := createTestPromo(t, db, &models.PromoCode{
		Code:       "READONLY5",
		Value:      money(5),
		UsageLimit: 10,
	})
	product := createTestProduct(t, db, "readonly-item", true, models.UintArray{promo.ID})
	items := []CartItem{{ProductID: product.ID, Price: money(100), Quantity: 1}}

	for i := 0; i < 3; i++ {
		if _, err := svc.Validate("READONLY5", money(100), items, ""); err != nil {
			t.Fatalf("validate round %d failed: %v", i, err)
		}
	}

	got, err := promoRepo.GetByID(promo.ID)
	if err != nil {
		t.Fatalf("reload promo failed: %v", err)
	}
	if got.UsedCount != 0 {
		t.Fatalf("validate must not consume usage, used_count want 0 got %d", got.UsedCount)
	}
}
