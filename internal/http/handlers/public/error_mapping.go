package public

import (
	"errors"

	"github.com/bazaar-next/internal/http/response"
	"github.com/bazaar-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

var promoValidateErrorRules = []mappedHandlerError{
	{target: service.ErrPromoNotFound, code: response.CodeNotFound, key: "error.promo_not_found"},
	{target: service.ErrPromoExpired, code: response.CodeBadRequest, key: "error.promo_expired"},
	{target: service.ErrPromoInactive, code: response.CodeBadRequest, key: "error.promo_inactive"},
	{target: service.ErrPromoNotValid, code: response.CodeBadRequest, key: "error.promo_invalid"},
	{target: service.ErrPromoUsageLimit, code: response.CodeBadRequest, key: "error.promo_usage_limit"},
	{target: service.ErrPromoNoEligibleItems, code: response.CodeBadRequest, key: "error.promo_no_eligible_items"},
}

func respondPromoValidateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, promoValidateErrorRules, response.CodeInternal, "error.promo_fetch_failed")
}
