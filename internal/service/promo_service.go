package service

import (
	"context"
	"strings"
	"time"

	"github.com/bazaar-next/internal/cache"
	"github.com/bazaar-next/internal/constants"
	"github.com/bazaar-next/internal/logger"
	"github.com/bazaar-next/internal/models"
	"github.com/bazaar-next/internal/repository"

	"github.com/shopspring/decimal"
)

const activePromoCacheKey = "promo:active_list"

// PromoService 优惠码校验与折扣计算服务
type PromoService struct {
	promoRepo          repository.PromoCodeRepository
	productRepo        repository.ProductRepository
	activeListCacheTTL time.Duration
}

// NewPromoService 创建优惠码服务
func NewPromoService(promoRepo repository.PromoCodeRepository, productRepo repository.ProductRepository, activeListCacheTTL time.Duration) *PromoService {
	return &PromoService{
		promoRepo:          promoRepo,
		productRepo:        productRepo,
		activeListCacheTTL: activeListCacheTTL,
	}
}

// CartItem 校验输入的购物车条目（不落库）
type CartItem struct {
	ProductID uint         `json:"product_id"`
	Price     models.Money `json:"price"`
	Quantity  int          `json:"quantity"`
}

// DiscountResult 折扣计算结果
type DiscountResult struct {
	Code           string       `json:"code"`
	DiscountType   string       `json:"discount_type"`
	Value          models.Money `json:"value"`
	DiscountAmount models.Money `json:"discount_amount"`
	PromoCodeID    uint         `json:"promo_code_id"`
}

// ActivePromo 可用优惠码摘要（供商城选择场景）
type ActivePromo struct {
	Code         string       `json:"code"`
	DiscountType string       `json:"discount_type"`
	Value        models.Money `json:"value"`
}

// NormalizeCode 归一化优惠码编码（去除首尾空白并统一大写）
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate 校验优惠码并计算折扣金额。
// 校验顺序：编码归一化查找 -> 状态 -> 使用门槛 -> 使用上限 -> 适用商品 -> 折扣计算。
// 本方法不修改 used_count：使用次数在订单提交时单独累加（见 PromoUsageService），
// 这里读到的 used_count 只是检查瞬间的快照。
func (s *PromoService) Validate(code string, cartTotal models.Money, items []CartItem, userID string) (*DiscountResult, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil, ErrPromoNotFound
	}

	promo, err := s.promoRepo.GetByCode(normalized)
	if err != nil {
		return nil, err
	}
	if promo == nil {
		return nil, ErrPromoNotFound
	}

	now := time.Now()
	status := refreshPromoStatus(s.promoRepo, promo, now)
	switch status {
	case constants.PromoStatusExpired:
		return nil, ErrPromoExpired
	case constants.PromoStatusInactive:
		return nil, ErrPromoInactive
	case constants.PromoStatusActive:
		// 继续校验
	default:
		return nil, ErrPromoNotValid
	}

	if cartTotal.Decimal.Cmp(promo.MinPurchase.Decimal) < 0 {
		return nil, &MinPurchaseError{Required: promo.MinPurchase}
	}

	if promo.UsageLimit != constants.PromoUsageUnlimited && promo.UsedCount >= promo.UsageLimit {
		return nil, ErrPromoUsageLimit
	}

	eligibleAmount, err := s.resolveEligibleAmount(promo, items)
	if err != nil {
		return nil, err
	}
	if eligibleAmount.Decimal.IsZero() {
		return nil, ErrPromoNoEligibleItems
	}

	discount := calculateDiscount(promo, eligibleAmount)

	return &DiscountResult{
		Code:           promo.Code,
		DiscountType:   promo.DiscountType,
		Value:          promo.Value,
		DiscountAmount: discount,
		PromoCodeID:    promo.ID,
	}, nil
}

// resolveEligibleAmount 汇总适用商品金额。
// 商品需同时满足：参与优惠码活动、且其适用集合包含该优惠码
// （空集合表示不适用任何优惠码）；查不到的商品直接跳过。
func (s *PromoService) resolveEligibleAmount(promo *models.PromoCode, items []CartItem) (models.Money, error) {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		if item.ProductID > 0 {
			ids = append(ids, item.ProductID)
		}
	}

	products, err := s.productRepo.ListByIDs(ids)
	if err != nil {
		return models.Money{}, err
	}
	eligibleByID := make(map[uint]bool, len(products))
	for _, product := range products {
		eligibleByID[product.ID] = product.IsCouponEligible && product.ApplicableCoupons.Contains(promo.ID)
	}

	eligible := decimal.Zero
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if !eligibleByID[item.ProductID] {
			continue
		}
		lineTotal := item.Price.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity)))
		eligible = eligible.Add(lineTotal)
	}
	return models.NewMoneyFromDecimal(eligible), nil
}

// calculateDiscount 计算折扣金额。
// percentage：eligible * value / 100，设置了 max_discount（>0）时取两者较小值；
// fixed：取 value 与 eligible 的较小值，折扣不会超过适用金额。
func calculateDiscount(promo *models.PromoCode, eligibleAmount models.Money) models.Money {
	switch promo.DiscountType {
	case constants.DiscountTypePercentage:
		discount := eligibleAmount.Decimal.Mul(promo.Value.Decimal).Div(decimal.NewFromInt(100))
		if promo.MaxDiscount.Decimal.GreaterThan(decimal.Zero) && discount.GreaterThan(promo.MaxDiscount.Decimal) {
			discount = promo.MaxDiscount.Decimal
		}
		return models.NewMoneyFromDecimal(discount)
	case constants.DiscountTypeFixed:
		discount := promo.Value.Decimal
		if discount.GreaterThan(eligibleAmount.Decimal) {
			discount = eligibleAmount.Decimal
		}
		return models.NewMoneyFromDecimal(discount)
	default:
		return models.Money{}
	}
}

// ListActive 获取当前可用的优惠码摘要，带短时 Redis 缓存。
func (s *PromoService) ListActive(ctx context.Context) ([]ActivePromo, error) {
	var cached []ActivePromo
	if hit, err := cache.GetJSON(ctx, activePromoCacheKey, &cached); err != nil {
		logger.Warnw("promo_active_list_cache_read_failed", "error", err)
	} else if hit {
		return cached, nil
	}

	promos, err := s.promoRepo.ListActive(time.Now())
	if err != nil {
		return nil, err
	}

	result := make([]ActivePromo, 0, len(promos))
	for i := range promos {
		result = append(result, ActivePromo{
			Code:         promos[i].Code,
			DiscountType: promos[i].DiscountType,
			Value:        promos[i].Value,
		})
	}

	if err := cache.SetJSON(ctx, activePromoCacheKey, result, s.activeListCacheTTL); err != nil {
		logger.Warnw("promo_active_list_cache_write_failed", "error", err)
	}
	return result, nil
}

// InvalidateActiveCache 管理端写操作后清除可用列表缓存。
func InvalidateActiveCache(ctx context.Context) {
	if err := cache.Del(ctx, activePromoCacheKey); err != nil {
		logger.Warnw("promo_active_list_cache_del_failed", "error", err)
	}
}

// refreshPromoStatus 读取路径的状态惰性校正：
// 计算出的状态与存储状态在"转为过期"方向不一致时立即落库，
// 之后的读取无需后台任务即可保持一致。落库失败只记日志，
// 本次读取仍按计算出的状态处理。其它方向（到点上线、到点下线）
// 只修正内存快照，不回写存储。
func refreshPromoStatus(repo repository.PromoCodeRepository, promo *models.PromoCode, now time.Time) string {
	resolved := ResolveStatus(promo, now)
	if resolved == constants.PromoStatusExpired && promo.Status != constants.PromoStatusExpired {
		if err := repo.UpdateStatus(promo.ID, constants.PromoStatusExpired); err != nil {
			logger.Warnw("promo_status_lazy_correct_failed",
				"promo_code_id", promo.ID,
				"code", promo.Code,
				"error", err,
			)
		}
	}
	promo.Status = resolved
	return resolved
}
