package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "splitease/internal/errors"
)

var (
	errServiceKeyNotConfigured = &apperrors.AppError{Code: "SERVICE_KEY_NOT_CONFIGURED", Message: "Service endpoints are not configured", StatusCode: http.StatusServiceUnavailable}
	errInvalidServiceKey       = &apperrors.AppError{Code: "INVALID_API_KEY", Message: "Invalid or missing API key", StatusCode: http.StatusUnauthorized}
)

// ServiceKeyMiddleware guards operator endpoints with the X-API-Key header.
// With no key configured every request is refused.
func ServiceKeyMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			abortWithError(c, errServiceKeyNotConfigured)
			return
		}
		key := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			abortWithError(c, errInvalidServiceKey)
			return
		}
		c.Next()
	}
}
