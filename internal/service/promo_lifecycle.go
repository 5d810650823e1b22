package service

import (
	"time"

	"github.com/bazaar-next/internal/constants"
	"github.com/bazaar-next/internal/models"
)

// ResolveStatus 根据当前时间计算优惠码状态。
// 规则按顺序求值：
//  1. 已过失效时间 -> expired（终态：即使后续把时间窗改回有效区间，
//     也不会自动恢复，需要管理员显式变更状态）
//  2. 未到生效时间 -> inactive
//  3. 存储状态为 expired -> expired（同样是终态）
//  4. 存储状态为 inactive 且已进入时间窗 -> active（预设未来时间窗的
//     优惠码到点自动上线，无需人工激活）
//  5. 其余情况保持存储状态不变
func ResolveStatus(promo *models.PromoCode, now time.Time) string {
	if promo == nil {
		return ""
	}
	if now.After(promo.EndDate) {
		return constants.PromoStatusExpired
	}
	if now.Before(promo.StartDate) {
		return constants.PromoStatusInactive
	}
	if promo.Status == constants.PromoStatusInactive {
		return constants.PromoStatusActive
	}
	return promo.Status
}

// IsExpired 判断优惠码是否已过失效时间（纯函数，不读取缓存状态）
func IsExpired(promo *models.PromoCode, now time.Time) bool {
	if promo == nil {
		return false
	}
	return now.After(promo.EndDate)
}

// IsValid 判断优惠码当前是否可用：
// 解析状态为 active 且未达使用上限（-1 表示不限次数）。
func IsValid(promo *models.PromoCode, now time.Time) bool {
	if promo == nil {
		return false
	}
	if ResolveStatus(promo, now) != constants.PromoStatusActive {
		return false
	}
	if promo.UsageLimit != constants.PromoUsageUnlimited && promo.UsedCount >= promo.UsageLimit {
		return false
	}
	return true
}
