package service

import (
	"errors"
	"testing"
	"time"

	"github.com/bazaar-next/internal/config"
	"github.com/bazaar-next/internal/models"
	"github.com/bazaar-next/internal/repository"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupAuthServiceTest(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Admin{}); err != nil {
		t.Fatalf("migrate admin failed: %v", err)
	}
	cfg := &config.Config{}
	cfg.JWT.SecretKey = "test-secret-key-0123456789-abcdef"
	cfg.JWT.ExpireHours = 1
	return NewAuthService(cfg, repository.NewAdminRepository(db)), db
}

func createTestAdmin(t *testing.T, db *gorm.DB, username, password string) *models.Admin {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	admin := &models.Admin{
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	return admin
}

func TestLoginSuccess(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	created := createTestAdmin(t, db, "auth-ok", "s3cret-pass")

	admin, token, expiresAt, err := svc.Login("auth-ok", "s3cret-pass")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if admin.ID != created.ID {
		t.Fatalf("admin id want %d got %d", created.ID, admin.ID)
	}
	if token == "" {
		t.Fatal("token should not be empty")
	}
	if !expiresAt.After(time.Now()) {
		t.Fatal("expiresAt should be in the future")
	}

	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.AdminID != created.ID {
		t.Fatalf("claims admin_id want %d got %d", created.ID, claims.AdminID)
	}
	if claims.Username != "auth-ok" {
		t.Fatalf("claims username want auth-ok got %s", claims.Username)
	}

	var reloaded models.Admin
	if err := db.First(&reloaded, created.ID).Error; err != nil {
		t.Fatalf("reload admin failed: %v", err)
	}
	if reloaded.LastLoginAt == nil {
		t.Fatal("last_login_at should be set after login")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	createTestAdmin(t, db, "auth-wrong", "right-pass")

	if _, _, _, err := svc.Login("auth-wrong", "bad-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials got %v", err)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	if _, _, _, err := svc.Login("auth-nobody", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials got %v", err)
	}
}

func TestParseJWTRejectsTamperedToken(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	createTestAdmin(t, db, "auth-tamper", "pass-123")

	_, token, _, err := svc.Login("auth-tamper", "pass-123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if _, err := svc.ParseJWT(token + "x"); err == nil {
		t.Fatal("tampered token should fail to parse")
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	hash, err := svc.HashPassword("plain-text")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if err := svc.VerifyPassword(hash, "plain-text"); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if err := svc.VerifyPassword(hash, "other-text"); err == nil {
		t.Fatal("verify should fail for wrong password")
	}
}
