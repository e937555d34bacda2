package controllers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/silkiy/storefront/cache"
	"github.com/silkiy/storefront/checkout"
	"github.com/silkiy/storefront/database"
	"github.com/silkiy/storefront/models"
)

// cacheInvalidator is the slice of the cache the order flow touches.
type cacheInvalidator interface {
	Delete(ctx context.Context, keys ...string) error
	InvalidatePattern(ctx context.Context, pattern string) error
}

type OrderController struct {
	DB      *database.Mongo
	Service checkout.Service
	Cache   cacheInvalidator
	Logger  *slog.Logger
	Timeout time.Duration
}

// PlaceOrder is the checkout endpoint. Validation happens before any
// database work; the service runs reservation, order insert and cart
// cleanup inside a single transaction.
func (ctl *OrderController) PlaceOrder(c *gin.Context) {
	start := time.Now()

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req checkout.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if fieldErrs := req.Validate(); len(fieldErrs) > 0 {
		fields := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields = append(fields, fe.Field)
		}
		respondError(c, http.StatusBadRequest,
			"Validation failed: "+strings.Join(fields, ", "))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.Timeout)
	defer cancel()

	res, err := ctl.Service.PlaceOrder(ctx, userID, req)

	var conflict *checkout.StockConflictError
	switch {
	case err == nil:
	case errors.As(err, &conflict):
		ctl.Logger.Warn("stock conflict",
			"user_id", userID.Hex(),
			"unavailable", conflict.Unavailable,
			"request_id", requestID(c),
		)
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"message": "Some products are out of stock",
			"data": gin.H{
				"inavailableStockProducts": conflict.Unavailable,
			},
			"requestId": requestID(c),
		})
		return
	case errors.Is(err, context.DeadlineExceeded):
		ctl.Logger.Error("checkout timed out", "user_id", userID.Hex(), "request_id", requestID(c))
		respondErrorCode(c, http.StatusServiceUnavailable, CodeTimeoutError,
			"Service temporarily unavailable, please retry")
		return
	default:
		ctl.Logger.Error("place order failed",
			"error", err,
			"user_id", userID.Hex(),
			"request_id", requestID(c),
		)
		respondErrorCode(c, http.StatusInternalServerError, CodeDatabaseError,
			"Failed to place order")
		return
	}

	// Post-commit: drop stale product and cart caches. Failures here are
	// logged, not surfaced; the order is already durable.
	if err := ctl.Cache.InvalidatePattern(ctx, cache.PatternProducts); err != nil {
		ctl.Logger.Warn("product cache invalidation failed", "error", err)
	}
	if err := ctl.Cache.Delete(ctx, fmt.Sprintf(cache.KeyUserCart, userID.Hex())); err != nil {
		ctl.Logger.Warn("cart cache invalidation failed", "error", err)
	}

	ctl.Logger.Info("order placed",
		"order_id", res.OrderID.Hex(),
		"order_number", res.OrderNumber,
		"user_id", userID.Hex(),
		"duration_ms", time.Since(start).Milliseconds(),
		"request_id", requestID(c),
	)

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"id":          res.OrderID.Hex(),
		"orderNumber": res.OrderNumber,
		"requestId":   requestID(c),
	})
}

// GetOrders returns the caller's order history. Items are stored as
// snapshots, so no product lookups are needed.
func (ctl *OrderController) GetOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.Timeout)
	defer cancel()

	cursor, err := ctl.DB.Orders.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		respondErrorCode(c, http.StatusInternalServerError, CodeDatabaseError, "Failed to fetch orders")
		return
	}

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		respondErrorCode(c, http.StatusInternalServerError, CodeDatabaseError, "Failed to decode orders")
		return
	}

	respondOK(c, http.StatusOK, "Fetch success", gin.H{"data": orders})
}

// CancelOrder cancels one of the caller's own orders while still pending.
func (ctl *OrderController) CancelOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid order ID")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.Timeout)
	defer cancel()

	filter := bson.M{
		"_id":    orderID,
		"userId": userID,
		"status": models.OrderStatusPending,
	}
	update := bson.M{"$set": bson.M{
		"status":    models.OrderStatusCanceled,
		"updatedAt": time.Now(),
	}}

	result, err := ctl.DB.Orders.UpdateOne(ctx, filter, update)
	if err != nil {
		respondErrorCode(c, http.StatusInternalServerError, CodeDatabaseError, "Failed to cancel order")
		return
	}
	if result.MatchedCount == 0 {
		respondError(c, http.StatusBadRequest, "Order not found or cannot be canceled")
		return
	}

	respondOK(c, http.StatusOK, "Order canceled", nil)
}

// currentUserID reads the authenticated user id set by the auth middleware.
// A missing or malformed id means the middleware did not run; treat as 401.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	raw, _ := c.Get("userId")
	hex, _ := raw.(string)
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		respondErrorCode(c, http.StatusUnauthorized, CodeAuthError, "Not authenticated")
		return primitive.NilObjectID, false
	}
	return id, true
}
