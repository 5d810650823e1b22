package repository

import (
	"github.com/bazaar-next/internal/models"

	"gorm.io/gorm"
)

// PromoUsageRepository 优惠码核销记录数据访问接口
type PromoUsageRepository interface {
	Create(usage *models.PromoCodeUsage) error
	GetByOrderNo(promoCodeID uint, orderNo string) (*models.PromoCodeUsage, error)
	List(filter PromoUsageListFilter) ([]models.PromoCodeUsage, int64, error)
	DeleteByOrderNo(promoCodeID uint, orderNo string) error
	WithTx(tx *gorm.DB) *GormPromoUsageRepository
}

// GormPromoUsageRepository GORM 实现
type GormPromoUsageRepository struct {
	db *gorm.DB
}

// NewPromoUsageRepository 创建优惠码核销记录仓库
func NewPromoUsageRepository(db *gorm.DB) *GormPromoUsageRepository {
	return &GormPromoUsageRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPromoUsageRepository) WithTx(tx *gorm.DB) *GormPromoUsageRepository {
	if tx == nil {
		return r
	}
	return &GormPromoUsageRepository{db: tx}
}

// Create 创建核销记录
func (r *GormPromoUsageRepository) Create(usage *models.PromoCodeUsage) error {
	return r.db.Create(usage).Error
}

// GetByOrderNo 获取指定订单的核销记录
func (r *GormPromoUsageRepository) GetByOrderNo(promoCodeID uint, orderNo string) (*models.PromoCodeUsage, error) {
	var usage models.PromoCodeUsage
	err := r.db.
		Where("promo_code_id = ? AND order_no = ?", promoCodeID, orderNo).
		First(&usage).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &usage, nil
}

// List 获取核销记录列表
func (r *GormPromoUsageRepository) List(filter PromoUsageListFilter) ([]models.PromoCodeUsage, int64, error) {
	query := r.db.Model(&models.PromoCodeUsage{})
	if filter.PromoCodeID > 0 {
		query = query.Where("promo_code_id = ?", filter.PromoCodeID)
	}
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var usages []models.PromoCodeUsage
	if err := query.Order("id desc").Find(&usages).Error; err != nil {
		return nil, 0, err
	}
	return usages, total, nil
}

// DeleteByOrderNo 删除指定订单的核销记录
func (r *GormPromoUsageRepository) DeleteByOrderNo(promoCodeID uint, orderNo string) error {
	return r.db.
		Where("promo_code_id = ? AND order_no = ?", promoCodeID, orderNo).
		Delete(&models.PromoCodeUsage{}).Error
}
