package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/tms-backend/internal/response"
	"github.com/stemsi/tms-backend/internal/service"
)

// RejectRevokedTokens blocks tokens that were logged out. Must run after
// RequireJWT.
func RejectRevokedTokens(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if err := authService.CheckNotRevoked(c.Request.Context(), claims); err != nil {
			if errors.Is(err, service.ErrTokenRevoked) {
				response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
				return
			}
			response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}

		c.Next()
	}
}
