package repository

import (
	"testing"
	"time"

	"github.com/bazaar-next/internal/constants"
	"github.com/bazaar-next/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupPromoCodeRepositoryTest(t *testing.T) (*GormPromoCodeRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.PromoCode{}, &models.PromoCodeUsage{}); err != nil {
		t.Fatalf("migrate promo tables failed: %v", err)
	}
	return NewPromoCodeRepository(db), db
}

func createRepoPromo(t *testing.T, repo *GormPromoCodeRepository, code string, usageLimit int, usedCount int) *models.PromoCode {
	t.Helper()
	promo := &models.PromoCode{
		Code:         code,
		DiscountType: constants.DiscountTypePercentage,
		Value:        models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		UsageLimit:   usageLimit,
		UsedCount:    usedCount,
		StartDate:    time.Now().Add(-24 * time.Hour),
		EndDate:      time.Now().Add(24 * time.Hour),
		Status:       constants.PromoStatusActive,
	}
	if err := repo.Create(promo); err != nil {
		t.Fatalf("create promo failed: %v", err)
	}
	return promo
}

func TestIncrementUsedCountConditional(t *testing.T) {
	repo, _ := setupPromoCodeRepositoryTest(t)
	promo := createRepoPromo(t, repo, "REPOINC2", 2, 0)

	ok, err := repo.IncrementUsedCount(promo.ID)
	if err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if !ok {
		t.Fatal("increment below limit want ok")
	}

	ok, err = repo.IncrementUsedCount(promo.ID)
	if err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if !ok {
		t.Fatal("increment at limit-1 want ok")
	}

	// used_count 已到 usage_limit，条件更新不生效
	ok, err = repo.IncrementUsedCount(promo.ID)
	if err != nil {
		t.Fatalf("increment at limit failed: %v", err)
	}
	if ok {
		t.Fatal("increment at limit want no rows affected")
	}

	got, err := repo.GetByID(promo.ID)
	if err != nil {
		t.Fatalf("reload promo failed: %v", err)
	}
	if got.UsedCount != 2 {
		t.Fatalf("used_count want 2 got %d", got.UsedCount)
	}
}

func TestIncrementUsedCountUnlimited(t *testing.T) {
	repo, _ := setupPromoCodeRepositoryTest(t)
	promo := createRepoPromo(t, repo, "REPOUNLIM", constants.PromoUsageUnlimited, 5)

	ok, err := repo.IncrementUsedCount(promo.ID)
	if err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if !ok {
		t.Fatal("unlimited promo increment want ok")
	}
}

func TestDecrementUsedCountClampsAtZero(t *testing.T) {
	repo, _ := setupPromoCodeRepositoryTest(t)
	promo := createRepoPromo(t, repo, "REPODEC1", 10, 1)

	ok, err := repo.DecrementUsedCount(promo.ID)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if !ok {
		t.Fatal("decrement from 1 want ok")
	}

	ok, err = repo.DecrementUsedCount(promo.ID)
	if err != nil {
		t.Fatalf("decrement at zero failed: %v", err)
	}
	if ok {
		t.Fatal("decrement at zero want no rows affected")
	}

	got, err := repo.GetByID(promo.ID)
	if err != nil {
		t.Fatalf("reload promo failed: %v", err)
	}
	if got.UsedCount != 0 {
		t.Fatalf("used_count want 0 got %d", got.UsedCount)
	}
}

func TestMarkExpiredSweep(t *testing.T) {
	repo, db := setupPromoCodeRepositoryTest(t)
	now := time.Now()

	stale := createRepoPromo(t, repo, "SWEEPSTALE", constants.PromoUsageUnlimited, 0)
	if err := db.Model(stale).UpdateColumn("end_date", now.Add(-time.Hour)).Error; err != nil {
		t.Fatalf("backdate promo failed: %v", err)
	}
	alive := createRepoPromo(t, repo, "SWEEPALIVE", constants.PromoUsageUnlimited, 0)

	affected, err := repo.MarkExpired(now)
	if err != nil {
		t.Fatalf("mark expired failed: %v", err)
	}
	if affected < 1 {
		t.Fatalf("affected want >=1 got %d", affected)
	}

	gotStale, err := repo.GetByID(stale.ID)
	if err != nil {
		t.Fatalf("reload stale promo failed: %v", err)
	}
	if gotStale.Status != constants.PromoStatusExpired {
		t.Fatalf("stale status want expired got %s", gotStale.Status)
	}

	gotAlive, err := repo.GetByID(alive.ID)
	if err != nil {
		t.Fatalf("reload alive promo failed: %v", err)
	}
	if gotAlive.Status != constants.PromoStatusActive {
		t.Fatalf("alive status want active got %s", gotAlive.Status)
	}

	// 已过期的行不再重复计入
	affected, err = repo.MarkExpired(now)
	if err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("second sweep affected want 0 got %d", affected)
	}
}

func TestListActiveFilters(t *testing.T) {
	repo, db := setupPromoCodeRepositoryTest(t)
	now := time.Now()

	visible := createRepoPromo(t, repo, "LISTVIS", 5, 2)
	exhausted := createRepoPromo(t, repo, "LISTFULL", 2, 2)
	// 存储状态 inactive 但已进入时间窗，解析为 active 应当可见
	scheduled := createRepoPromo(t, repo, "LISTSCHED", constants.PromoUsageUnlimited, 0)
	if err := db.Model(scheduled).UpdateColumn("status", constants.PromoStatusInactive).Error; err != nil {
		t.Fatalf("mark scheduled promo failed: %v", err)
	}
	// expired 为终态，即使时间窗被改回有效区间也不可见
	terminal := createRepoPromo(t, repo, "LISTTERM", constants.PromoUsageUnlimited, 0)
	if err := db.Model(terminal).UpdateColumn("status", constants.PromoStatusExpired).Error; err != nil {
		t.Fatalf("expire promo failed: %v", err)
	}
	future := createRepoPromo(t, repo, "LISTFUTURE", constants.PromoUsageUnlimited, 0)
	if err := db.Model(future).UpdateColumn("start_date", now.Add(time.Hour)).Error; err != nil {
		t.Fatalf("postpone promo failed: %v", err)
	}

	promos, err := repo.ListActive(now)
	if err != nil {
		t.Fatalf("list active failed: %v", err)
	}

	got := map[string]bool{}
	for _, p := range promos {
		got[p.Code] = true
	}
	if !got[visible.Code] {
		t.Fatal("expected in-window promo in active list")
	}
	if !got[scheduled.Code] {
		t.Fatal("in-window scheduled promo should be listed")
	}
	if got[exhausted.Code] {
		t.Fatal("exhausted promo must not be listed")
	}
	if got[terminal.Code] {
		t.Fatal("expired promo must not be listed")
	}
	if got[future.Code] {
		t.Fatal("not yet started promo must not be listed")
	}
}

func TestGetByCodeMissingReturnsNil(t *testing.T) {
	repo, _ := setupPromoCodeRepositoryTest(t)

	promo, err := repo.GetByCode("REPOMISSING")
	if err != nil {
		t.Fatalf("get by code failed: %v", err)
	}
	if promo != nil {
		t.Fatal("missing code want nil promo")
	}
}
