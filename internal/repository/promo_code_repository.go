package repository

import (
	"errors"
	"time"

	"github.com/bazaar-next/internal/constants"
	"github.com/bazaar-next/internal/models"

	"gorm.io/gorm"
)

// PromoCodeRepository 优惠码数据访问接口
type PromoCodeRepository interface {
	GetByID(id uint) (*models.PromoCode, error)
	GetByCode(code string) (*models.PromoCode, error)
	Create(promo *models.PromoCode) error
	Update(promo *models.PromoCode) error
	Delete(id uint) error
	List(filter PromoListFilter) ([]models.PromoCode, int64, error)
	ListActive(now time.Time) ([]models.PromoCode, error)
	UpdateStatus(id uint, status string) error
	MarkExpired(now time.Time) (int64, error)
	IncrementUsedCount(id uint) (bool, error)
	DecrementUsedCount(id uint) (bool, error)
	WithTx(tx *gorm.DB) *GormPromoCodeRepository
}

// GormPromoCodeRepository GORM 实现
type GormPromoCodeRepository struct {
	db *gorm.DB
}

// NewPromoCodeRepository 创建优惠码仓库
func NewPromoCodeRepository(db *gorm.DB) *GormPromoCodeRepository {
	return &GormPromoCodeRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPromoCodeRepository) WithTx(tx *gorm.DB) *GormPromoCodeRepository {
	if tx == nil {
		return r
	}
	return &GormPromoCodeRepository{db: tx}
}

// GetByID 根据ID获取优惠码
func (r *GormPromoCodeRepository) GetByID(id uint) (*models.PromoCode, error) {
	var promo models.PromoCode
	if err := r.db.First(&promo, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promo, nil
}

// GetByCode 根据编码获取优惠码（编码统一大写存储，调用方负责归一化）
func (r *GormPromoCodeRepository) GetByCode(code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	if err := r.db.Where("code = ?", code).First(&promo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promo, nil
}

// Create 创建优惠码
func (r *GormPromoCodeRepository) Create(promo *models.PromoCode) error {
	return r.db.Create(promo).Error
}

// Update 更新优惠码
func (r *GormPromoCodeRepository) Update(promo *models.PromoCode) error {
	return r.db.Save(promo).Error
}

// Delete 删除优惠码（硬删除）
func (r *GormPromoCodeRepository) Delete(id uint) error {
	return r.db.Unscoped().Delete(&models.PromoCode{}, id).Error
}

// List 获取优惠码列表
func (r *GormPromoCodeRepository) List(filter PromoListFilter) ([]models.PromoCode, int64, error) {
	var promos []models.PromoCode
	query := r.db.Model(&models.PromoCode{})

	if filter.Search != "" {
		query = query.Where("code LIKE ?", "%"+filter.Search+"%")
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("id desc").Find(&promos).Error; err != nil {
		return nil, 0, err
	}
	return promos, total, nil
}

// ListActive 获取当前可用的优惠码（供商城/商家选择场景）。
// 处于时间窗内且未过期即视为可用：存储状态为 inactive 的行在进入
// 时间窗后按 active 解析，expired 为终态始终排除。
func (r *GormPromoCodeRepository) ListActive(now time.Time) ([]models.PromoCode, error) {
	var promos []models.PromoCode
	err := r.db.
		Where("status <> ?", constants.PromoStatusExpired).
		Where("start_date <= ? AND end_date >= ?", now, now).
		Where("usage_limit = ? OR used_count < usage_limit", constants.PromoUsageUnlimited).
		Order("id desc").
		Find(&promos).Error
	if err != nil {
		return nil, err
	}
	return promos, nil
}

// UpdateStatus 仅更新状态字段（读取路径的惰性校正使用）
func (r *GormPromoCodeRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.PromoCode{}).
		Where("id = ?", id).
		UpdateColumn("status", status).Error
}

// MarkExpired 批量把已过失效时间的优惠码置为过期，返回受影响行数。
// 后台定时兜底使用，与读取路径的惰性校正互为补充。
func (r *GormPromoCodeRepository) MarkExpired(now time.Time) (int64, error) {
	res := r.db.Model(&models.PromoCode{}).
		Where("end_date < ?", now).
		Where("status <> ?", constants.PromoStatusExpired).
		UpdateColumn("status", constants.PromoStatusExpired)
	return res.RowsAffected, res.Error
}

// IncrementUsedCount 条件自增使用次数。
// 仅当未达使用上限（或上限为 -1）时生效，返回是否有行被更新；
// 与读取-修改-写入相比，单条条件更新可避免并发核销之间的丢失更新。
func (r *GormPromoCodeRepository) IncrementUsedCount(id uint) (bool, error) {
	res := r.db.Model(&models.PromoCode{}).
		Where("id = ?", id).
		Where("usage_limit = ? OR used_count < usage_limit", constants.PromoUsageUnlimited).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	return res.RowsAffected > 0, res.Error
}

// DecrementUsedCount 自减使用次数，下限为 0。
func (r *GormPromoCodeRepository) DecrementUsedCount(id uint) (bool, error) {
	res := r.db.Model(&models.PromoCode{}).
		Where("id = ?", id).
		Where("used_count >= ?", 1).
		UpdateColumn("used_count", gorm.Expr("used_count - 1"))
	return res.RowsAffected > 0, res.Error
}
