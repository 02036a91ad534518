package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/tms-backend/internal/config"
	"github.com/stemsi/tms-backend/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuth(expiry time.Duration) *service.AuthService {
	return service.NewAuthService(&config.Config{JWTSecret: "secret", JWTExpiry: expiry}, nil)
}

func token(t *testing.T, auth *service.AuthService, roles ...service.Role) string {
	t.Helper()
	tok, err := auth.GenerateToken("user", roles)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	return tok
}

func protected(auth *service.AuthService, roles ...service.Role) *gin.Engine {
	r := gin.New()
	r.GET("/x", RequireJWT(auth), RejectRevokedTokens(auth), RequireRole(roles...), func(c *gin.Context) {
		c.String(http.StatusOK, GetClaims(c).Subject)
	})
	return r
}

func TestAuthChain(t *testing.T) {
	auth := newAuth(time.Hour)
	r := protected(auth, service.RoleAdmin)

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantBody string
	}{
		{"missing token", "", http.StatusUnauthorized, "TOKEN_REQUIRED"},
		{"malformed header", "Token abc", http.StatusUnauthorized, "TOKEN_REQUIRED"},
		{"garbage token", "Bearer abc", http.StatusUnauthorized, "TOKEN_INVALID"},
		{"expired token", "Bearer " + token(t, newAuth(-time.Minute), service.RoleAdmin), http.StatusUnauthorized, "TOKEN_EXPIRED"},
		{"wrong role", "Bearer " + token(t, auth, service.RoleTutor), http.StatusForbidden, "FORBIDDEN"},
		{"admin", "bearer " + token(t, auth, service.RoleAdmin), http.StatusOK, "user"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", w.Code, tt.wantCode)
			}
			if !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("body = %s, want it to contain %s", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRateLimiterWithoutRedisPassesThrough(t *testing.T) {
	r := gin.New()
	r.GET("/x", NewRateLimiter(nil, "test", 1, time.Minute, zerolog.Nop()).Middleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		if w.Code != http.StatusNoContent {
			t.Fatalf("request %d: code = %d, want 204", i, w.Code)
		}
	}
}

func TestCacheHeaders(t *testing.T) {
	r := gin.New()
	r.GET("/form", CacheControl(300), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/status", NoStore(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/form", nil))
	if got := w.Header().Get("Cache-Control"); !strings.Contains(got, "max-age=300") {
		t.Errorf("form Cache-Control = %q", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	if got := w.Header().Get("Cache-Control"); !strings.Contains(got, "no-store") {
		t.Errorf("status Cache-Control = %q", got)
	}
}

func TestBrotli(t *testing.T) {
	large := strings.Repeat("criteria ", 400)
	r := gin.New()
	r.Use(BrotliWithConfig(BrotliConfig{Quality: 5, MinLength: 256, ExcludedPaths: []string{"/health"}}))
	r.GET("/large", func(c *gin.Context) {
		// Two writes so the tail follows the compressed head.
		c.Writer.WriteString(large[:300])
		c.Writer.WriteString(large[300:])
	})
	r.GET("/small", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, large) })

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Accept-Encoding", "gzip, br")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := get("/large")
	if w.Header().Get("Content-Encoding") != "br" {
		t.Fatalf("large Content-Encoding = %q, want br", w.Header().Get("Content-Encoding"))
	}
	body, err := io.ReadAll(brotli.NewReader(bytes.NewReader(w.Body.Bytes())))
	if err != nil {
		t.Fatalf("decode brotli: %v", err)
	}
	if string(body) != large {
		t.Errorf("decoded %d bytes, want %d", len(body), len(large))
	}

	w = get("/small")
	if w.Header().Get("Content-Encoding") != "" || w.Body.String() != "ok" {
		t.Errorf("small = %q (%q), want plain ok", w.Body.String(), w.Header().Get("Content-Encoding"))
	}

	w = get("/health")
	if w.Header().Get("Content-Encoding") != "" || w.Body.String() != large {
		t.Error("excluded path was compressed")
	}
}
