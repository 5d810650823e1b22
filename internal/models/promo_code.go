package models

import (
	"time"
)

// PromoCode 优惠码
type PromoCode struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                       // 主键
	Code         string    `gorm:"uniqueIndex;not null;size:20" json:"code"`                   // 优惠码（统一大写存储）
	DiscountType string    `gorm:"not null" json:"discount_type"`                              // 折扣类型（percentage/fixed）
	Value        Money     `gorm:"type:decimal(20,2);not null" json:"value"`                   // 折扣数值（百分比或固定金额）
	MinPurchase  Money     `gorm:"type:decimal(20,2);not null;default:0" json:"min_purchase"`  // 使用门槛金额
	MaxDiscount  Money     `gorm:"type:decimal(20,2);not null;default:0" json:"max_discount"`  // 最大优惠金额（0 表示不设上限，仅约束百分比折扣）
	UsageLimit   int       `gorm:"not null;default:-1" json:"usage_limit"`                     // 总使用上限（-1 表示不限次数）
	UsedCount    int       `gorm:"not null;default:0" json:"used_count"`                       // 已使用次数
	StartDate    time.Time `gorm:"not null;index" json:"start_date"`                           // 生效时间
	EndDate      time.Time `gorm:"not null;index" json:"end_date"`                             // 失效时间
	Status       string    `gorm:"not null;default:'active';index" json:"status"`              // 缓存状态（active/inactive/expired），读取时惰性校正
	CreatedBy    uint      `gorm:"index" json:"created_by"`                                    // 创建管理员ID
	CreatedAt    time.Time `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt    time.Time `gorm:"index" json:"updated_at"`                                    // 更新时间
}

// TableName 指定表名
func (PromoCode) TableName() string {
	return "promo_codes"
}
