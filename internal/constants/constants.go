package constants

// 优惠码状态常量
const (
	PromoStatusActive   = "active"
	PromoStatusInactive = "inactive"
	PromoStatusExpired  = "expired"
)

// 优惠码折扣类型常量
const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

// 优惠码使用上限常量（-1 表示不限次数）
const (
	PromoUsageUnlimited = -1
)

// 优惠码编码约束
const (
	PromoCodeMaxLength = 20
)

// 队列名称常量
const (
	QueueDefault = "default"
)

// 异步任务名称常量
const (
	TaskPromoUsageIncrement = "promo:usage:increment"
	TaskPromoUsageDecrement = "promo:usage:decrement"
)
