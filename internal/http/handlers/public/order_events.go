package public

import (
	"strings"

	"github.com/bazaar-next/internal/http/response"
	"github.com/bazaar-next/internal/models"
	"github.com/bazaar-next/internal/queue"

	"github.com/gin-gonic/gin"
)

// RedeemPromoRequest 订单核销请求
type RedeemPromoRequest struct {
	Code           string  `json:"code" binding:"required"`
	UserID         string  `json:"user_id"`
	DiscountAmount float64 `json:"discount_amount"`
}

// ReleasePromoRequest 订单回退请求
type ReleasePromoRequest struct {
	Code string `json:"code" binding:"required"`
}

// RedeemPromo 订单提交事件：累加优惠码使用次数。
// 队列可用时异步处理，否则同步执行；两种路径都不把计数失败暴露给订单流程。
func (h *Handler) RedeemPromo(c *gin.Context) {
	orderNo := strings.TrimSpace(c.Param("order_no"))
	if orderNo == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req RedeemPromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	payload := queue.PromoUsageIncrementPayload{
		Code:           req.Code,
		OrderNo:        orderNo,
		UserID:         req.UserID,
		DiscountAmount: models.NewMoneyFromFloat(req.DiscountAmount),
	}
	if h.QueueClient.Enabled() {
		if err := h.QueueClient.EnqueuePromoUsageIncrement(payload); err != nil {
			requestLog(c).Warnw("promo_usage_increment_enqueue_failed",
				"order_no", orderNo,
				"error", err,
			)
			h.PromoUsageService.IncrementUsage(req.Code, orderNo, req.UserID, payload.DiscountAmount, nil)
		}
	} else {
		h.PromoUsageService.IncrementUsage(req.Code, orderNo, req.UserID, payload.DiscountAmount, nil)
	}

	response.Success(c, gin.H{
		"accepted": true,
	})
}

// ReleasePromo 订单取消/退款事件：回退优惠码使用次数。
func (h *Handler) ReleasePromo(c *gin.Context) {
	orderNo := strings.TrimSpace(c.Param("order_no"))
	if orderNo == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req ReleasePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	payload := queue.PromoUsageDecrementPayload{
		Code:    req.Code,
		OrderNo: orderNo,
	}
	if h.QueueClient.Enabled() {
		if err := h.QueueClient.EnqueuePromoUsageDecrement(payload); err != nil {
			requestLog(c).Warnw("promo_usage_decrement_enqueue_failed",
				"order_no", orderNo,
				"error", err,
			)
			h.PromoUsageService.DecrementUsage(req.Code, orderNo, nil)
		}
	} else {
		h.PromoUsageService.DecrementUsage(req.Code, orderNo, nil)
	}

	response.Success(c, gin.H{
		"accepted": true,
	})
}
