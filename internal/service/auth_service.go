package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/tms-backend/internal/config"
)

// Common auth errors.
var (
	ErrTokenRevoked = errors.New("token has been revoked")
	ErrNoRoles      = errors.New("token needs at least one role")
)

// Role is a course staff role.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleEmployee  Role = "EMPLOYEE"
	RoleTutor     Role = "TUTOR"
	RoleCorrector Role = "CORRECTOR"
)

// ParseRole returns the role named s.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleEmployee, RoleTutor, RoleCorrector:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	Roles []Role `json:"roles"`
}

// HasAnyRole reports whether the claims carry one of roles.
func (c *Claims) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if slices.Contains(c.Roles, r) {
			return true
		}
	}
	return false
}

// AuthService issues and validates JWTs. Logged out tokens are kept on a
// Redis deny list until they expire.
type AuthService struct {
	cfg *config.Config
	rdb *redis.Client
}

// NewAuthService creates a new AuthService. rdb may be nil, which disables
// revocation.
func NewAuthService(cfg *config.Config, rdb *redis.Client) *AuthService {
	return &AuthService{cfg: cfg, rdb: rdb}
}

// GenerateToken creates a JWT for a staff member.
func (s *AuthService) GenerateToken(userID string, roles []Role) (string, error) {
	if len(roles) == 0 {
		return "", ErrNoRoles
	}
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		Roles: roles,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// CheckNotRevoked fails with ErrTokenRevoked if the token was logged out.
func (s *AuthService) CheckNotRevoked(ctx context.Context, claims *Claims) error {
	if s.rdb == nil {
		return nil
	}
	n, err := s.rdb.Exists(ctx, config.CacheKey.RevokedTokenKey(claims.ID)).Result()
	if err != nil {
		return fmt.Errorf("check revocation: %w", err)
	}
	if n > 0 {
		return ErrTokenRevoked
	}
	return nil
}

// Revoke puts the token on the deny list until it expires.
func (s *AuthService) Revoke(ctx context.Context, claims *Claims) error {
	if s.rdb == nil {
		return nil
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, config.CacheKey.RevokedTokenKey(claims.ID), 1, ttl).Err()
}
