package service

import (
	"github.com/bazaar-next/internal/logger"
	"github.com/bazaar-next/internal/models"
	"github.com/bazaar-next/internal/repository"

	"gorm.io/gorm"
)

// PromoUsageService 优惠码使用计数服务。
// 订单流程的辅助环节：计数失败不应让订单失败，
// 所有错误只记日志并返回 nil，调用方按"未使用优惠码"继续。
type PromoUsageService struct {
	promoRepo repository.PromoCodeRepository
	usageRepo repository.PromoUsageRepository
}

// NewPromoUsageService 创建使用计数服务
func NewPromoUsageService(promoRepo repository.PromoCodeRepository, usageRepo repository.PromoUsageRepository) *PromoUsageService {
	return &PromoUsageService{promoRepo: promoRepo, usageRepo: usageRepo}
}

// IncrementUsage 订单提交时累加使用次数并记录核销。
// 自增是单条条件更新：已达上限时不生效，并发核销不会超卖。
// 传入 tx 时在该事务内执行，随订单事务一起提交或回滚。
// 返回累加后的优惠码快照，任何失败返回 nil。
func (s *PromoUsageService) IncrementUsage(code, orderNo, userID string, discountAmount models.Money, tx *gorm.DB) *models.PromoCode {
	normalized := NormalizeCode(code)
	if normalized == "" || orderNo == "" {
		return nil
	}

	var promoRepo repository.PromoCodeRepository = s.promoRepo
	var usageRepo repository.PromoUsageRepository = s.usageRepo
	if tx != nil {
		promoRepo = s.promoRepo.WithTx(tx)
		usageRepo = s.usageRepo.WithTx(tx)
	}

	promo, err := promoRepo.GetByCode(normalized)
	if err != nil {
		logger.Errorw("promo_usage_increment_lookup_failed", "code", normalized, "order_no", orderNo, "error", err)
		return nil
	}
	if promo == nil {
		logger.Warnw("promo_usage_increment_code_missing", "code", normalized, "order_no", orderNo)
		return nil
	}

	ok, err := promoRepo.IncrementUsedCount(promo.ID)
	if err != nil {
		logger.Errorw("promo_usage_increment_failed",
			"promo_code_id", promo.ID,
			"code", promo.Code,
			"order_no", orderNo,
			"error", err,
		)
		return nil
	}
	if !ok {
		logger.Warnw("promo_usage_limit_reached",
			"promo_code_id", promo.ID,
			"code", promo.Code,
			"order_no", orderNo,
		)
		return nil
	}
	promo.UsedCount++

	// 核销记录尽力而为：写失败不回滚计数
	usage := &models.PromoCodeUsage{
		PromoCodeID:    promo.ID,
		UserID:         userID,
		OrderNo:        orderNo,
		DiscountAmount: discountAmount,
	}
	if err := usageRepo.Create(usage); err != nil {
		logger.Errorw("promo_usage_record_create_failed",
			"promo_code_id", promo.ID,
			"order_no", orderNo,
			"error", err,
		)
	}

	logger.Infow("promo_usage_incremented",
		"promo_code_id", promo.ID,
		"code", promo.Code,
		"order_no", orderNo,
		"used_count", promo.UsedCount,
	)
	return promo
}

// DecrementUsage 订单取消/退款时回退使用次数并移除核销记录。
// 自减下限为 0，重复回退同一订单不会把计数减成负数。
func (s *PromoUsageService) DecrementUsage(code, orderNo string, tx *gorm.DB) *models.PromoCode {
	normalized := NormalizeCode(code)
	if normalized == "" || orderNo == "" {
		return nil
	}

	var promoRepo repository.PromoCodeRepository = s.promoRepo
	var usageRepo repository.PromoUsageRepository = s.usageRepo
	if tx != nil {
		promoRepo = s.promoRepo.WithTx(tx)
		usageRepo = s.usageRepo.WithTx(tx)
	}

	promo, err := promoRepo.GetByCode(normalized)
	if err != nil {
		logger.Errorw("promo_usage_decrement_lookup_failed", "code", normalized, "order_no", orderNo, "error", err)
		return nil
	}
	if promo == nil {
		logger.Warnw("promo_usage_decrement_code_missing", "code", normalized, "order_no", orderNo)
		return nil
	}

	// 该订单没有核销记录时跳过自减，避免未核销的订单取消把计数减掉
	usage, err := usageRepo.GetByOrderNo(promo.ID, orderNo)
	if err != nil {
		logger.Errorw("promo_usage_record_lookup_failed", "promo_code_id", promo.ID, "order_no", orderNo, "error", err)
		return nil
	}
	if usage == nil {
		logger.Warnw("promo_usage_record_missing", "promo_code_id", promo.ID, "order_no", orderNo)
		return nil
	}

	ok, err := promoRepo.DecrementUsedCount(promo.ID)
	if err != nil {
		logger.Errorw("promo_usage_decrement_failed",
			"promo_code_id", promo.ID,
			"code", promo.Code,
			"order_no", orderNo,
			"error", err,
		)
		return nil
	}
	if ok && promo.UsedCount > 0 {
		promo.UsedCount--
	}

	if err := usageRepo.DeleteByOrderNo(promo.ID, orderNo); err != nil {
		logger.Errorw("promo_usage_record_delete_failed",
			"promo_code_id", promo.ID,
			"order_no", orderNo,
			"error", err,
		)
	}

	logger.Infow("promo_usage_decremented",
		"promo_code_id", promo.ID,
		"code", promo.Code,
		"order_no", orderNo,
		"used_count", promo.UsedCount,
	)
	return promo
}
