package models

import (
	"time"
)

// PromoCodeUsage 优惠码核销记录
type PromoCodeUsage struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                         // 主键
	PromoCodeID    uint      `gorm:"index;not null" json:"promo_code_id"`                          // 优惠码ID
	UserID         string    `gorm:"index" json:"user_id"`                                         // 用户标识（允许为空，游客下单）
	OrderNo        string    `gorm:"index;not null" json:"order_no"`                               // 订单号
	DiscountAmount Money     `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // 实际优惠金额
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                                      // 创建时间
}

// TableName 指定表名
func (PromoCodeUsage) TableName() string {
	return "promo_code_usages"
}
