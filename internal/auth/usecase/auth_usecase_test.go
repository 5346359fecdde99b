package usecase

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	authdomain "campushub-backend/internal/auth/domain"
	authdto "campushub-backend/internal/auth/dto"
	"campushub-backend/internal/auth/repository"
	"campushub-backend/pkg/config"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupAuthTest(t *testing.T) (AuthUsecase, func()) {
	tempDir, err := os.MkdirTemp("", "auth_usecase_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	dbPath := filepath.Join(tempDir, "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		os.RemoveAll(tempDir)
		t.Fatalf("Failed to open database: %v", err)
	}

	db.AutoMigrate(&authdomain.User{}, &authdomain.RefreshToken{}, &authdomain.FCMToken{})

	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 24 * time.Hour,
	}
	uc := NewAuthUsecase(repository.NewUserRepository(db), repository.NewFCMTokenRepository(db), cfg)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		os.RemoveAll(tempDir)
	}

	return uc, cleanup
}

func TestRegisterAndLogin(t *testing.T) {
	uc, cleanup := setupAuthTest(t)
	defer cleanup()

	resp, err := uc.Register(&authdto.RegisterRequest{
		Email:    "student@univ.edu",
		Password: "hunter22",
		Name:     "Student",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("Expected tokens after register")
	}
	if resp.User == nil || resp.User.Email != "student@univ.edu" {
		t.Errorf("Unexpected user in response: %+v", resp.User)
	}

	// Duplicate registration is rejected.
	if _, err := uc.Register(&authdto.RegisterRequest{
		Email:    "student@univ.edu",
		Password: "other-pass",
		Name:     "Imposter",
	}); err == nil {
		t.Error("Expected duplicate registration to fail")
	}

	login, err := uc.Login(&authdto.LoginRequest{
		Email:    "student@univ.edu",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.AccessToken == "" {
		t.Error("Expected access token after login")
	}

	if _, err := uc.Login(&authdto.LoginRequest{
		Email:    "student@univ.edu",
		Password: "wrong",
	}); err == nil {
		t.Error("Expected wrong password to fail")
	}
}

func TestValidateToken(t *testing.T) {
	uc, cleanup := setupAuthTest(t)
	defer cleanup()

	resp, err := uc.Register(&authdto.RegisterRequest{
		Email:    "student@univ.edu",
		Password: "hunter22",
		Name:     "Student",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	user, err := uc.ValidateToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if user.Email != "student@univ.edu" {
		t.Errorf("Expected token to resolve the registered user, got %q", user.Email)
	}

	if _, err := uc.ValidateToken("not-a-jwt"); err == nil {
		t.Error("Expected garbage token to fail validation")
	}
}

func TestRefreshTokenFlow(t *testing.T) {
	uc, cleanup := setupAuthTest(t)
	defer cleanup()

	resp, err := uc.Register(&authdto.RegisterRequest{
		Email:    "student@univ.edu",
		Password: "hunter22",
		Name:     "Student",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	renewed, err := uc.RefreshToken(resp.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken failed: %v", err)
	}
	if renewed.AccessToken == "" || renewed.RefreshToken == "" {
		t.Error("Expected new token pair from refresh")
	}

	// A logged-out refresh token no longer refreshes.
	if err := uc.Logout(renewed.RefreshToken); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := uc.RefreshToken(renewed.RefreshToken); err == nil {
		t.Error("Expected refresh after logout to fail")
	}
}
