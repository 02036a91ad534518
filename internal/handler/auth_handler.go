package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/tms-backend/internal/middleware"
	"github.com/stemsi/tms-backend/internal/response"
	"github.com/stemsi/tms-backend/internal/service"
)

// AuthHandler handles token introspection and logout.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Me godoc
// GET /api/v1/auth/me
// Returns the identity and roles of the current token.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user_id":    claims.Subject,
		"roles":      claims.Roles,
		"expires_at": claims.ExpiresAt,
	})
}

// Logout godoc
// POST /api/v1/auth/logout
// Revokes the current token.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.Revoke(c.Request.Context(), claims); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}
