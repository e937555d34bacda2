package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/silkiy/storefront/middleware"
)

const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeAuthError       = "AUTH_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeRateLimited     = "RATE_LIMITED"
	CodeStockConflict   = "STOCK_CONFLICT"
	CodeTimeoutError    = "TIMEOUT_ERROR"
	CodeDatabaseError   = "DATABASE_ERROR"
	CodeServerError     = "SERVER_ERROR"
)

func requestID(c *gin.Context) string {
	return c.GetString(middleware.RequestIDKey)
}

// respondOK wraps data in the standard success envelope. Extra top-level
// fields (id, orderNumber, data, ...) come in via extra.
func respondOK(c *gin.Context, status int, message string, extra gin.H) {
	body := gin.H{
		"success":   true,
		"requestId": requestID(c),
	}
	if message != "" {
		body["message"] = message
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success":   false,
		"message":   message,
		"requestId": requestID(c),
	})
}

func respondErrorCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success":   false,
		"message":   message,
		"errorCode": code,
		"requestId": requestID(c),
	})
}
