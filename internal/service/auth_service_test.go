package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stemsi/tms-backend/internal/config"
)

func newAuth(expiry time.Duration) *AuthService {
	return NewAuthService(&config.Config{JWTSecret: "test-secret", JWTExpiry: expiry}, nil)
}

func TestGenerateAndValidateToken(t *testing.T) {
	auth := newAuth(time.Hour)

	token, err := auth.GenerateToken("user-1", []Role{RoleTutor, RoleCorrector})
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	claims, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.Subject != "user-1" || claims.ID == "" {
		t.Errorf("claims = %+v", claims.RegisteredClaims)
	}
	if !claims.HasAnyRole(RoleAdmin, RoleCorrector) {
		t.Error("HasAnyRole(admin, corrector) = false, want true")
	}
	if claims.HasAnyRole(RoleAdmin, RoleEmployee) {
		t.Error("HasAnyRole(admin, employee) = true, want false")
	}
	if err := auth.CheckNotRevoked(context.Background(), claims); err != nil {
		t.Errorf("CheckNotRevoked() without redis error = %v", err)
	}
}

func TestValidateTokenRejects(t *testing.T) {
	expired, err := newAuth(-time.Minute).GenerateToken("u", []Role{RoleAdmin})
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if _, err := newAuth(time.Hour).ValidateToken(expired); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("expired token error = %v, want ErrTokenExpired", err)
	}

	other := NewAuthService(&config.Config{JWTSecret: "other", JWTExpiry: time.Hour}, nil)
	foreign, _ := other.GenerateToken("u", []Role{RoleAdmin})
	if _, err := newAuth(time.Hour).ValidateToken(foreign); err == nil {
		t.Error("token signed with another secret accepted")
	}

	if _, err := newAuth(time.Hour).GenerateToken("u", nil); !errors.Is(err, ErrNoRoles) {
		t.Errorf("GenerateToken() without roles error = %v, want ErrNoRoles", err)
	}
}

func TestParseRole(t *testing.T) {
	for _, s := range []string{"ADMIN", "EMPLOYEE", "TUTOR", "CORRECTOR"} {
		if r, err := ParseRole(s); err != nil || string(r) != s {
			t.Errorf("ParseRole(%q) = (%q, %v)", s, r, err)
		}
	}
	if _, err := ParseRole("admin"); err == nil {
		t.Error("ParseRole(admin) accepted lower case")
	}
}
