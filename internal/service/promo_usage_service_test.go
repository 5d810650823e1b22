package service

import (
	"testing"

	"github.com/bazaar-next/internal/models"
	"github.com/bazaar-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupPromoUsageServiceTest(t *testing.T) (*PromoUsageService, *repository.GormPromoCodeRepository, *repository.GormPromoUsageRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.PromoCode{}, &models.PromoCodeUsage{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	promoRepo := repository.NewPromoCodeRepository(db)
	usageRepo := repository.NewPromoUsageRepository(db)
	return NewPromoUsageService(promoRepo, usageRepo), promoRepo, usageRepo, db
}

func TestIncrementUsageRecordsRedemption(t *testing.T) {
	svc, promoRepo, usageRepo, db := setupPromoUsageServiceTest(t)
	promo := createTestPromo(t, db, &models.PromoCode{
		Code:       "USEINC10",
		Value:      money(10),
		UsageLimit: 10,
	})

	got := svc.IncrementUsage(" useinc10 ", "ORD-INC-1", "user-1", money(12.5), nil)
	if got == nil {
		t.Fatal("increment returned nil for valid promo")
	}
	if got.UsedCount != 1 {
		t.Fatalf("snapshot used_count want 1 got %d", got.UsedCount)
	}

	stored, err := promoRepo.GetByID(promo.ID)
	if err != nil {
		t.Fatalf("reload promo failed: %v", err)
	}
	if stored.UsedCount != 1 {
		t.Fatalf("stored used_count want 1 got %d", stored.UsedCount)
	}

	usage, err := usageRepo.GetByOrderNo(promo.ID, "ORD-INC-1")
	if err != nil {
		t.Fatalf("load usage record failed: %v", err)
	}
	if usage == nil {
		t.Fatal("usage record not created")
	}
	if usage.UserID != "user-1" {
		t.Fatalf("usage user_id want user-1 got %s", usage.UserID)
	}
}

func TestIncrementUsageStopsAtLimit(t *testing.T) {
	svc, promoRepo, _, db := setupPromoUsageServiceTest(t)
	promo := createTestPromo(t, db, &models.PromoCode{
		Code:       "USECAP2",
		Value:      money(10),
		UsageLimit: 2,
	})

	if got := svc.IncrementUsage("USECAP2", "ORD-CAP-1", "", money(5), nil); got == nil {
		t.Fatal("first increment should succeed")
	}
	if got := svc.IncrementUsage("USECAP2", "ORD-CAP-2", "", money(5), nil); got == nil {
		t.Fatal("second increment should succeed")
	}
	// 已达上限，第三次不生效且不报错
	if got := svc.IncrementUsage("USECAP2", "ORD-CAP-3", "", money(5), nil); got != nil {
		t.Fatal("increment past limit should return nil")
	}

	stored, err := promoRepo.GetByID(promo.ID)
	if err != nil {
		t.Fatalf("reload promo failed: %v", err)
	}
	if stored.UsedCount != 2 {
		t.Fatalf("stored used_count want 2 got %d", stored.UsedCount)
	}
}

func TestIncrementUsageUnknownCode(t *testing.T) {
	svc, _, _, _ := setupPromoUsageServiceTest(t)

	if got := svc.IncrementUsage("NOSUCHUSE", "ORD-MISS-1", "", money(5), nil); got != nil {
		t.Fatal("unknown code should return nil without error")
	}
	if got := svc.IncrementUsage("", "ORD-MISS-2", "", money(5), nil); got != nil {
		t.Fatal("blank code should return nil")
	}
	if got := svc.IncrementUsage("USEINC10", "", "", money(5), nil); got != nil {
		t.Fatal("blank order_no should return nil")
	}
}

func TestDecrementUsageReversesRedemption(t *testing.T) {
	svc, promoRepo, usageRepo, db := setupPromoUsageServiceTest(t)
	promo := createTestPromo(t, db, &models.PromoCode{
		Code:       "USEDEC10",
		Value:      money(10),
		UsageLimit: 10,
	})

	if got := svc.IncrementUsage("USEDEC10", "ORD-DEC-1", "user-2", money(8), nil); got == nil {
		t.Fatal("increment failed")
	}

	got := svc.DecrementUsage("USEDEC10", "ORD-DEC-1", nil)
	if got == nil {
		t.Fatal("decrement returned nil for redeemed order")
	}
	if got.UsedCount != 0 {
		t.Fatalf("snapshot used_count want 0 got %d", got.UsedCount)
	}

	stored, err := promoRepo.GetByID(promo.ID)
	if err != nil {
		t.Fatalf("reload promo failed: %v", err)
	}
	if stored.UsedCount != 0 {
		t.Fatalf("stored used_count want 0 got %d", stored.UsedCount)
	}

	usage, err := usageRepo.GetByOrderNo(promo.ID, "ORD-DEC-1")
	if err != nil {
		t.Fatalf("load usage record failed: %v", err)
	}
	if usage != nil {
		t.Fatal("usage record should be removed after decrement")
	}
}

func TestDecrementUsageSkipsOrderWithoutRedemption(t *testing.T) {
	svc, promoRepo, _, db := setupPromoUsageServiceTest(t)
	promo := createTestPromo(t, db, &models.PromoCode{
		Code:       "USESKIP10",
		Value:      money(10),
		UsageLimit: 10,
	})
	if got := svc.IncrementUsage("USESKIP10", "ORD-SKIP-REAL", "", money(5), nil); got == nil {
		t.Fatal("increment failed")
	}

	// 该订单从未核销过，取消事件不应减计数
	if got := svc.DecrementUsage("USESKIP10", "ORD-SKIP-NEVER", nil); got != nil {
		t.Fatal("decrement for unredeemed order should return nil")
	}

	stored, err := promoRepo.GetByID(promo.ID)
	if err != nil {
		t.Fatalf("reload promo failed: %v", err)
	}
	if stored.UsedCount != 1 {
		t.Fatalf("stored used_count want 1 got %d", stored.UsedCount)
	}
}

func TestDecrementUsageIsIdempotentPerOrder(t *testing.T) {
	svc, promoRepo, _, db := setupPromoUsageServiceTest(t)
	promo := createTestPromo(t, db, &models.PromoCode{
		Code:       "USEIDEM10",
		Value:      money(10),
		UsageLimit: 10,
	})
	if got := svc.IncrementUsage("USEIDEM10", "ORD-IDEM-1", "", money(5), nil); got == nil {
		t.Fatal("increment failed")
	}

	if got := svc.DecrementUsage("USEIDEM10", "ORD-IDEM-1", nil); got == nil {
		t.Fatal("first decrement should succeed")
	}
	// 核销记录已删除，重复回退不再生效
	if got := svc.DecrementUsage("USEIDEM10", "ORD-IDEM-1", nil); got != nil {
		t.Fatal("repeated decrement should return nil")
	}

	stored, err := promoRepo.GetByID(promo.ID)
	if err != nil {
		t.Fatalf("reload promo failed: %v", err)
	}
	if stored.UsedCount != 0 {
		t.Fatalf("stored used_count want 0 got %d", stored.UsedCount)
	}
}

func TestUsageInsideTransactionRollsBack(t *testing.T) {
	svc, promoRepo, usageRepo, db := setupPromoUsageServiceTest(t)
	promo := createTestPromo(t, db, &models.PromoCode{
		Code:       "USETX10",
		Value:      money(10),
		UsageLimit: 10,
	})

	tx := db.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx failed: %v", tx.Error)
	}
	if got := svc.IncrementUsage("USETX10", "ORD-TX-1", "", money(5), tx); got == nil {
		tx.Rollback()
		t.Fatal("increment in tx failed")
	}
	tx.Rollback()

	stored, err := promoRepo.GetByID(promo.ID)
	if err != nil {
		t.Fatalf("reload promo failed: %v", err)
	}
	if stored.UsedCount != 0 {
		t.Fatalf("rolled back used_count want 0 got %d", stored.UsedCount)
	}
	usage, err := usageRepo.GetByOrderNo(promo.ID, "ORD-TX-1")
	if err != nil {
		t.Fatalf("load usage record failed: %v", err)
	}
	if usage != nil {
		t.Fatal("usage record should not survive rollback")
	}
}
