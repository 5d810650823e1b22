package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// DefaultLocale 默认语言
const DefaultLocale = "en-US"

var supportedLocales = map[string]bool{
	"en-US": true,
	"zh-CN": true,
}

// ResolveLocale 从请求解析语言（优先 query，其次 Accept-Language）
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if locale := normalizeLocale(c.Query("locale")); locale != "" {
		return locale
	}
	header := c.GetHeader("Accept-Language")
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if locale := normalizeLocale(tag); locale != "" {
			return locale
		}
	}
	return DefaultLocale
}

// T 获取指定语言的文案
func T(locale, key string) string {
	if messages, ok := catalog[normalizeOrDefault(locale)]; ok {
		if msg, ok := messages[key]; ok {
			return msg
		}
	}
	if msg, ok := catalog[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Tf 获取带参数的文案
func Tf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}

func normalizeOrDefault(locale string) string {
	if normalized := normalizeLocale(locale); normalized != "" {
		return normalized
	}
	return DefaultLocale
}

func normalizeLocale(locale string) string {
	trimmed := strings.TrimSpace(locale)
	if trimmed == "" {
		return ""
	}
	if supportedLocales[trimmed] {
		return trimmed
	}
	lower := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(lower, "zh"):
		return "zh-CN"
	case strings.HasPrefix(lower, "en"):
		return "en-US"
	}
	return ""
}

var catalog = map[string]map[string]string{
	"en-US": {
		"error.bad_request":             "Invalid request",
		"error.unauthorized":            "Unauthorized",
		"error.internal":                "Internal server error",
		"error.too_many_requests":       "Too many requests, please try again in %d seconds",
		"error.invalid_credentials":     "Invalid username or password",
		"error.login_too_many":          "Too many login attempts, please try again in %d seconds",
		"error.rate_limit_unavailable":  "Rate limiter unavailable",
		"error.jwt_secret_missing":      "Authentication is not configured",
		"error.auth_header_missing":     "Authorization header missing",
		"error.auth_header_invalid":     "Authorization header invalid",
		"error.token_invalid":           "Invalid or expired token",
		"error.promo_not_found":         "Promo code not found",
		"error.promo_invalid":           "This promo code is not valid",
		"error.promo_inactive":          "This promo code is inactive",
		"error.promo_expired":           "This promo code has expired",
		"error.promo_code_conflict":     "A promo code with this code already exists",
		"error.promo_value_invalid":     "Discount value is out of range for its type",
		"error.promo_date_invalid":      "End date must be after start date",
		"error.promo_status_invalid":    "Invalid status change for this promo code",
		"error.promo_min_purchase":      "Minimum purchase of %s%s required",
		"error.promo_usage_limit":       "This promo code has reached its usage limit",
		"error.promo_no_eligible_items": "No items in the cart are eligible for this promo code",
		"error.promo_create_failed":     "Failed to create promo code",
		"error.promo_update_failed":     "Failed to update promo code",
		"error.promo_delete_failed":     "Failed to delete promo code",
		"error.promo_fetch_failed":      "Failed to fetch promo codes",
		"error.order_event_failed":      "Failed to record order event",
	},
	"zh-CN": {
		"error.bad_request":             "请求参数有误",
		"error.unauthorized":            "未授权",
		"error.internal":                "服务器内部错误",
		"error.too_many_requests":       "请求过于频繁，请在 %d 秒后重试",
		"error.invalid_credentials":     "用户名或密码错误",
		"error.login_too_many":          "登录尝试过于频繁，请在 %d 秒后重试",
		"error.rate_limit_unavailable":  "限流服务不可用",
		"error.jwt_secret_missing":      "未配置鉴权密钥",
		"error.auth_header_missing":     "缺少鉴权请求头",
		"error.auth_header_invalid":     "鉴权请求头格式不正确",
		"error.token_invalid":           "登录状态无效或已过期",
		"error.promo_not_found":         "优惠码不存在",
		"error.promo_invalid":           "优惠码不可用",
		"error.promo_inactive":          "优惠码未启用",
		"error.promo_expired":           "优惠码已过期",
		"error.promo_code_conflict":     "优惠码编码已存在",
		"error.promo_value_invalid":     "折扣数值超出该类型允许范围",
		"error.promo_date_invalid":      "失效时间必须晚于生效时间",
		"error.promo_status_invalid":    "优惠码状态变更不合法",
		"error.promo_min_purchase":      "订单满 %s%s 方可使用该优惠码",
		"error.promo_usage_limit":       "优惠码已达使用上限",
		"error.promo_no_eligible_items": "购物车中没有适用该优惠码的商品",
		"error.promo_create_failed":     "创建优惠码失败",
		"error.promo_update_failed":     "更新优惠码失败",
		"error.promo_delete_failed":     "删除优惠码失败",
		"error.promo_fetch_failed":      "获取优惠码列表失败",
		"error.order_event_failed":      "记录订单事件失败",
	},
}
