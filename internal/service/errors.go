package service

import (
	"errors"
	"fmt"

	"github.com/bazaar-next/internal/models"
)

// 业务错误定义，handler 层统一映射为接口错误响应。
var (
	ErrPromoNotFound      = errors.New("promo code not found")
	ErrPromoCodeConflict  = errors.New("promo code already exists")
	ErrPromoInvalid       = errors.New("promo code invalid")
	ErrPromoValueInvalid  = errors.New("promo value out of range")
	ErrPromoDateInvalid   = errors.New("promo date range invalid")
	ErrPromoStatusInvalid = errors.New("promo status invalid")

	ErrPromoExpired         = errors.New("promo code expired")
	ErrPromoInactive        = errors.New("promo code inactive")
	ErrPromoNotValid        = errors.New("promo code not valid")
	ErrPromoMinPurchase     = errors.New("promo minimum purchase not met")
	ErrPromoUsageLimit      = errors.New("promo usage limit reached")
	ErrPromoNoEligibleItems = errors.New("no eligible items for promo code")

	ErrInvalidCredentials = errors.New("invalid credentials")
)

// MinPurchaseError 未达使用门槛错误，携带所需最低金额供提示文案使用。
type MinPurchaseError struct {
	Required models.Money
}

func (e *MinPurchaseError) Error() string {
	return fmt.Sprintf("minimum purchase of %s required", e.Required.String())
}

// Is 支持 errors.Is(err, ErrPromoMinPurchase) 判定
func (e *MinPurchaseError) Is(target error) bool {
	return target == ErrPromoMinPurchase
}
