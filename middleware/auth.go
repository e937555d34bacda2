package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type Auth struct {
	Secret    []byte
	Blacklist *mongo.Collection
}

func (a *Auth) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			abortAuth(c, http.StatusUnauthorized, "Token required")
			return
		}
		tokenString = strings.TrimPrefix(tokenString, "Bearer ")

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var blacklisted bson.M
		err := a.Blacklist.FindOne(ctx, bson.M{"token": tokenString}).Decode(&blacklisted)
		if err == nil {
			abortAuth(c, http.StatusUnauthorized, "Token has been revoked")
			return
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.Secret, nil
		})
		if err != nil || !token.Valid {
			abortAuth(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortAuth(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		c.Set("userId", claims["userId"])
		c.Set("role", claims["role"])
		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if role, exists := c.Get("role"); !exists || role != "admin" {
			abortAuth(c, http.StatusForbidden, "Access denied: admin only")
			return
		}
		c.Next()
	}
}

func abortAuth(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success":   false,
		"message":   message,
		"errorCode": "AUTH_ERROR",
		"requestId": c.GetString(RequestIDKey),
	})
}
