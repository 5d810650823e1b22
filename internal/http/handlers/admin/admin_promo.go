package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bazaar-next/internal/http/response"
	"github.com/bazaar-next/internal/models"
	"github.com/bazaar-next/internal/repository"
	"github.com/bazaar-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreatePromoRequest 创建优惠码请求
type CreatePromoRequest struct {
	Code         string  `json:"code" binding:"required"`
	DiscountType string  `json:"discount_type" binding:"required"`
	Value        float64 `json:"value" binding:"required"`
	MinPurchase  float64 `json:"min_purchase"`
	MaxDiscount  float64 `json:"max_discount"`
	UsageLimit   *int    `json:"usage_limit"`
	StartDate    string  `json:"start_date" binding:"required"`
	EndDate      string  `json:"end_date" binding:"required"`
}

// UpdatePromoRequest 更新优惠码请求（仅更新出现的字段）
type UpdatePromoRequest struct {
	DiscountType *string  `json:"discount_type"`
	Value        *float64 `json:"value"`
	MinPurchase  *float64 `json:"min_purchase"`
	MaxDiscount  *float64 `json:"max_discount"`
	UsageLimit   *int     `json:"usage_limit"`
	StartDate    *string  `json:"start_date"`
	EndDate      *string  `json:"end_date"`
}

// SetPromoStatusRequest 变更状态请求
type SetPromoStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreatePromo 创建优惠码
func (h *Handler) CreatePromo(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	var req CreatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	startDate, err := time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.promo_date_invalid", err)
		return
	}
	endDate, err := time.Parse(time.RFC3339, req.EndDate)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.promo_date_invalid", err)
		return
	}

	promo, err := h.PromoAdminService.Create(c.Request.Context(), service.CreatePromoInput{
		Code:         req.Code,
		DiscountType: req.DiscountType,
		Value:        models.NewMoneyFromFloat(req.Value),
		MinPurchase:  models.NewMoneyFromFloat(req.MinPurchase),
		MaxDiscount:  models.NewMoneyFromFloat(req.MaxDiscount),
		UsageLimit:   req.UsageLimit,
		StartDate:    startDate,
		EndDate:      endDate,
	}, adminID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPromoCodeConflict):
			respondError(c, response.CodeBadRequest, "error.promo_code_conflict", nil)
		case errors.Is(err, service.ErrPromoInvalid):
			respondError(c, response.CodeBadRequest, "error.promo_invalid", nil)
		case errors.Is(err, service.ErrPromoValueInvalid):
			respondError(c, response.CodeBadRequest, "error.promo_value_invalid", nil)
		case errors.Is(err, service.ErrPromoDateInvalid):
			respondError(c, response.CodeBadRequest, "error.promo_date_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.promo_create_failed", err)
		}
		return
	}

	response.Success(c, promo)
}

// UpdatePromo 更新优惠码
func (h *Handler) UpdatePromo(c *gin.Context) {
	promoID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || promoID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	var req UpdatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	input := service.UpdatePromoInput{
		DiscountType: req.DiscountType,
		UsageLimit:   req.UsageLimit,
	}
	if req.Value != nil {
		value := models.NewMoneyFromFloat(*req.Value)
		input.Value = &value
	}
	if req.MinPurchase != nil {
		minPurchase := models.NewMoneyFromFloat(*req.MinPurchase)
		input.MinPurchase = &minPurchase
	}
	if req.MaxDiscount != nil {
		maxDiscount := models.NewMoneyFromFloat(*req.MaxDiscount)
		input.MaxDiscount = &maxDiscount
	}
	if req.StartDate != nil {
		startDate, err := time.Parse(time.RFC3339, *req.StartDate)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.promo_date_invalid", err)
			return
		}
		input.StartDate = &startDate
	}
	if req.EndDate != nil {
		endDate, err := time.Parse(time.RFC3339, *req.EndDate)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.promo_date_invalid", err)
			return
		}
		input.EndDate = &endDate
	}

	promo, err := h.PromoAdminService.Update(c.Request.Context(), uint(promoID), input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPromoNotFound):
			respondError(c, response.CodeNotFound, "error.promo_not_found", nil)
		case errors.Is(err, service.ErrPromoValueInvalid):
			respondError(c, response.CodeBadRequest, "error.promo_value_invalid", nil)
		case errors.Is(err, service.ErrPromoDateInvalid):
			respondError(c, response.CodeBadRequest, "error.promo_date_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.promo_update_failed", err)
		}
		return
	}

	response.Success(c, promo)
}

// DeletePromo 删除优惠码
func (h *Handler) DeletePromo(c *gin.Context) {
	promoID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || promoID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.PromoAdminService.Delete(c.Request.Context(), uint(promoID)); err != nil {
		switch {
		case errors.Is(err, service.ErrPromoNotFound):
			respondError(c, response.CodeNotFound, "error.promo_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.promo_delete_failed", err)
		}
		return
	}
	response.Success(c, gin.H{
		"deleted": true,
	})
}

// SetPromoStatus 变更优惠码状态（仅支持 active/inactive）
func (h *Handler) SetPromoStatus(c *gin.Context) {
	promoID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || promoID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	var req SetPromoStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	promo, err := h.PromoAdminService.SetStatus(c.Request.Context(), uint(promoID), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPromoNotFound):
			respondError(c, response.CodeNotFound, "error.promo_not_found", nil)
		case errors.Is(err, service.ErrPromoStatusInvalid):
			respondError(c, response.CodeBadRequest, "error.promo_status_invalid", nil)
		case errors.Is(err, service.ErrPromoExpired):
			respondError(c, response.CodeBadRequest, "error.promo_expired", nil)
		default:
			respondError(c, response.CodeInternal, "error.promo_update_failed", err)
		}
		return
	}

	response.Success(c, promo)
}

// GetAdminPromo 获取优惠码详情
func (h *Handler) GetAdminPromo(c *gin.Context) {
	promoID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || promoID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	promo, err := h.PromoAdminService.GetByID(uint(promoID))
	if err != nil {
		if errors.Is(err, service.ErrPromoNotFound) {
			respondError(c, response.CodeNotFound, "error.promo_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.promo_fetch_failed", err)
		return
	}
	response.Success(c, promo)
}

// GetAdminPromos 获取优惠码列表
func (h *Handler) GetAdminPromos(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	search := strings.TrimSpace(c.Query("search"))
	status := strings.TrimSpace(c.Query("status"))

	promos, total, err := h.PromoAdminService.List(repository.PromoListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   search,
		Status:   status,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.promo_fetch_failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, promos, pagination)
}

// GetPromoUsages 获取优惠码核销记录列表
func (h *Handler) GetPromoUsages(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	var promoCodeID uint
	if raw := strings.TrimSpace(c.Query("promo_code_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || parsed == 0 {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		promoCodeID = uint(parsed)
	}
	userID := strings.TrimSpace(c.Query("user_id"))

	usages, total, err := h.PromoAdminService.ListUsages(repository.PromoUsageListFilter{
		Page:        page,
		PageSize:    pageSize,
		PromoCodeID: promoCodeID,
		UserID:      userID,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.promo_fetch_failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, usages, pagination)
}
