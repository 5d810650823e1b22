package public

import (
	"errors"

	"github.com/bazaar-next/internal/http/response"
	"github.com/bazaar-next/internal/i18n"
	"github.com/bazaar-next/internal/models"
	"github.com/bazaar-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ValidatePromoItemRequest 校验请求中的购物车条目
type ValidatePromoItemRequest struct {
	ProductID uint    `json:"product_id" binding:"required"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// ValidatePromoRequest 优惠码校验请求
type ValidatePromoRequest struct {
	Code      string                     `json:"code" binding:"required"`
	CartTotal float64                    `json:"cart_total"`
	UserID    string                     `json:"user_id"`
	Items     []ValidatePromoItemRequest `json:"items" binding:"required"`
}

// ValidatePromo 校验优惠码并返回折扣金额（只读，不修改使用次数）
func (h *Handler) ValidatePromo(c *gin.Context) {
	var req ValidatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	items := make([]service.CartItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CartItem{
			ProductID: item.ProductID,
			Price:     models.NewMoneyFromFloat(item.Price),
			Quantity:  item.Quantity,
		})
	}

	result, err := h.PromoService.Validate(req.Code, models.NewMoneyFromFloat(req.CartTotal), items, req.UserID)
	if err != nil {
		var minPurchaseErr *service.MinPurchaseError
		if errors.As(err, &minPurchaseErr) {
			locale := i18n.ResolveLocale(c)
			symbol := ""
			if h.Config != nil {
				symbol = h.Config.Promo.CurrencySymbol
			}
			msg := i18n.Tf(locale, "error.promo_min_purchase", symbol, minPurchaseErr.Required.String())
			respondErrorWithMsg(c, response.CodeBadRequest, msg, nil)
			return
		}
		respondPromoValidateError(c, err)
		return
	}

	response.Success(c, result)
}

// GetActivePromos 获取当前可用的优惠码列表
func (h *Handler) GetActivePromos(c *gin.Context) {
	promos, err := h.PromoService.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.promo_fetch_failed", err)
		return
	}
	response.Success(c, promos)
}
