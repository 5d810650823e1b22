package models

import (
	"time"
)

// Product 商品表（本服务仅读取优惠资格字段，商品维护由商城主服务负责）
type Product struct {
	ID               uint      `gorm:"primarykey" json:"id"`                                      // 主键
	Name             string    `gorm:"not null" json:"name"`                                      // 商品名称
	PriceAmount      Money     `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"` // 价格金额
	IsCouponEligible bool      `gorm:"not null;default:false;index" json:"is_coupon_eligible"`    // 是否参与优惠码活动
	ApplicableCoupons UintArray `gorm:"type:json" json:"applicable_coupons"`                      // 适用优惠码ID集合（空集合表示不适用任何优惠码）
	IsActive         bool      `gorm:"default:true;index" json:"is_active"`                       // 是否上架
	CreatedAt        time.Time `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt        time.Time `json:"updated_at"`                                                // 更新时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
