package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bazaar-next/internal/constants"
	"github.com/bazaar-next/internal/logger"
	"github.com/bazaar-next/internal/models"
	"github.com/bazaar-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PromoAdminService 优惠码后台管理服务
type PromoAdminService struct {
	promoRepo repository.PromoCodeRepository
	usageRepo repository.PromoUsageRepository
}

// NewPromoAdminService 创建优惠码管理服务
func NewPromoAdminService(promoRepo repository.PromoCodeRepository, usageRepo repository.PromoUsageRepository) *PromoAdminService {
	return &PromoAdminService{promoRepo: promoRepo, usageRepo: usageRepo}
}

// CreatePromoInput 创建优惠码请求
type CreatePromoInput struct {
	Code         string       `json:"code" binding:"required"`
	DiscountType string       `json:"discount_type" binding:"required"`
	Value        models.Money `json:"value" binding:"required"`
	MinPurchase  models.Money `json:"min_purchase"`
	MaxDiscount  models.Money `json:"max_discount"`
	UsageLimit   *int         `json:"usage_limit"`
	StartDate    time.Time    `json:"start_date" binding:"required"`
	EndDate      time.Time    `json:"end_date" binding:"required"`
}

// UpdatePromoInput 更新优惠码请求，仅更新出现的字段。
// 编码与已用次数不可修改；状态变更走 SetStatus。
type UpdatePromoInput struct {
	DiscountType *string       `json:"discount_type"`
	Value        *models.Money `json:"value"`
	MinPurchase  *models.Money `json:"min_purchase"`
	MaxDiscount  *models.Money `json:"max_discount"`
	UsageLimit   *int          `json:"usage_limit"`
	StartDate    *time.Time    `json:"start_date"`
	EndDate      *time.Time    `json:"end_date"`
}

// Create 创建优惠码。编码归一化后唯一，数值与时间窗在落库前校验。
func (s *PromoAdminService) Create(ctx context.Context, input CreatePromoInput, createdBy uint) (*models.PromoCode, error) {
	code := NormalizeCode(input.Code)
	if code == "" || len(code) > constants.PromoCodeMaxLength {
		return nil, ErrPromoInvalid
	}

	usageLimit := constants.PromoUsageUnlimited
	if input.UsageLimit != nil {
		usageLimit = *input.UsageLimit
	}

	promo := &models.PromoCode{
		Code:         code,
		DiscountType: strings.TrimSpace(input.DiscountType),
		Value:        input.Value,
		MinPurchase:  input.MinPurchase,
		MaxDiscount:  input.MaxDiscount,
		UsageLimit:   usageLimit,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		Status:       constants.PromoStatusActive,
		CreatedBy:    createdBy,
	}
	if err := validatePromo(promo); err != nil {
		return nil, err
	}

	existing, err := s.promoRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrPromoCodeConflict
	}

	if err := s.promoRepo.Create(promo); err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrPromoCodeConflict
		}
		return nil, err
	}

	InvalidateActiveCache(ctx)
	logger.Infow("promo_created", "promo_code_id", promo.ID, "code", promo.Code, "admin_id", createdBy)
	return promo, nil
}

// Update 更新优惠码。只改传入的字段，改完整体校验一次。
func (s *PromoAdminService) Update(ctx context.Context, id uint, input UpdatePromoInput) (*models.PromoCode, error) {
	promo, err := s.promoRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if promo == nil {
		return nil, ErrPromoNotFound
	}

	if input.DiscountType != nil {
		promo.DiscountType = strings.TrimSpace(*input.DiscountType)
	}
	if input.Value != nil {
		promo.Value = *input.Value
	}
	if input.MinPurchase != nil {
		promo.MinPurchase = *input.MinPurchase
	}
	if input.MaxDiscount != nil {
		promo.MaxDiscount = *input.MaxDiscount
	}
	if input.UsageLimit != nil {
		promo.UsageLimit = *input.UsageLimit
	}
	if input.StartDate != nil {
		promo.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		promo.EndDate = *input.EndDate
	}

	if err := validatePromo(promo); err != nil {
		return nil, err
	}

	if err := s.promoRepo.Update(promo); err != nil {
		return nil, err
	}

	InvalidateActiveCache(ctx)
	logger.Infow("promo_updated", "promo_code_id", promo.ID, "code", promo.Code)
	return promo, nil
}

// Delete 删除优惠码（硬删除，历史核销记录保留）。
func (s *PromoAdminService) Delete(ctx context.Context, id uint) error {
	promo, err := s.promoRepo.GetByID(id)
	if err != nil {
		return err
	}
	if promo == nil {
		return ErrPromoNotFound
	}
	if err := s.promoRepo.Delete(id); err != nil {
		return err
	}
	InvalidateActiveCache(ctx)
	logger.Infow("promo_deleted", "promo_code_id", id, "code", promo.Code)
	return nil
}

// SetStatus 显式变更状态。仅接受 active/inactive；
// 已过失效时间的优惠码不能重新激活，需要先修改时间窗。
func (s *PromoAdminService) SetStatus(ctx context.Context, id uint, status string) (*models.PromoCode, error) {
	if status != constants.PromoStatusActive && status != constants.PromoStatusInactive {
		return nil, ErrPromoStatusInvalid
	}

	promo, err := s.promoRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if promo == nil {
		return nil, ErrPromoNotFound
	}

	if status == constants.PromoStatusActive && IsExpired(promo, time.Now()) {
		return nil, ErrPromoExpired
	}

	if err := s.promoRepo.UpdateStatus(id, status); err != nil {
		return nil, err
	}
	promo.Status = status

	InvalidateActiveCache(ctx)
	logger.Infow("promo_status_changed", "promo_code_id", id, "code", promo.Code, "status", status)
	return promo, nil
}

// GetByID 获取优惠码详情（读取时惰性校正过期状态）。
func (s *PromoAdminService) GetByID(id uint) (*models.PromoCode, error) {
	promo, err := s.promoRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if promo == nil {
		return nil, ErrPromoNotFound
	}
	refreshPromoStatus(s.promoRepo, promo, time.Now())
	return promo, nil
}

// List 获取优惠码列表（读取时惰性校正过期状态）。
func (s *PromoAdminService) List(filter repository.PromoListFilter) ([]models.PromoCode, int64, error) {
	promos, total, err := s.promoRepo.List(filter)
	if err != nil {
		return nil, 0, err
	}
	now := time.Now()
	for i := range promos {
		refreshPromoStatus(s.promoRepo, &promos[i], now)
	}
	return promos, total, nil
}

// ListUsages 获取核销记录列表
func (s *PromoAdminService) ListUsages(filter repository.PromoUsageListFilter) ([]models.PromoCodeUsage, int64, error) {
	return s.usageRepo.List(filter)
}

// validatePromo 整体校验：折扣类型、数值边界、时间窗。
// 数值允许取 0（百分比 0~100、固定金额 >= 0），0 折扣码合法但不产生优惠。
func validatePromo(promo *models.PromoCode) error {
	switch promo.DiscountType {
	case constants.DiscountTypePercentage:
		if promo.Value.Decimal.LessThan(decimal.Zero) ||
			promo.Value.Decimal.GreaterThan(decimal.NewFromInt(100)) {
			return ErrPromoValueInvalid
		}
	case constants.DiscountTypeFixed:
		if promo.Value.Decimal.LessThan(decimal.Zero) {
			return ErrPromoValueInvalid
		}
	default:
		return ErrPromoValueInvalid
	}

	if promo.MinPurchase.Decimal.LessThan(decimal.Zero) {
		return ErrPromoValueInvalid
	}
	if promo.MaxDiscount.Decimal.LessThan(decimal.Zero) {
		return ErrPromoValueInvalid
	}
	if promo.UsageLimit != constants.PromoUsageUnlimited && promo.UsageLimit < 1 {
		return ErrPromoValueInvalid
	}

	if promo.StartDate.IsZero() || promo.EndDate.IsZero() || !promo.EndDate.After(promo.StartDate) {
		return ErrPromoDateInvalid
	}
	return nil
}

// isDuplicateKeyError 判断唯一索引冲突（兜底并发创建同一编码的场景）
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
