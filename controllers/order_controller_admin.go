package controllers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/silkiy/storefront/database"
	"github.com/silkiy/storefront/models"
)

type OrderAdminController struct {
	DB      *database.Mongo
	Logger  *slog.Logger
	Timeout time.Duration
}

func (ctl *OrderAdminController) ListOrders(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.Timeout)
	defer cancel()

	cursor, err := ctl.DB.Orders.Find(ctx, bson.M{})
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

func (ctl *OrderAdminController) GetOrderByID(c *gin.Context) {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid order ID")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.Timeout)
	defer cancel()

	var order models.Order
	if err := ctl.DB.Orders.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
		respondErrorCode(c, http.StatusNotFound, CodeNotFound, "Order not found")
		return
	}

	respondOK(c, http.StatusOK, "Fetch success", gin.H{"data": order})
}

// UpdateOrderStatus moves an order along the allowed transition table.
func (ctl *OrderAdminController) UpdateOrderStatus(c *gin.Context) {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !models.ValidOrderStatus(body.Status) {
		respondError(c, http.StatusBadRequest, "Invalid status value")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.Timeout)
	defer cancel()

	var existing models.Order
	if err := ctl.DB.Orders.FindOne(ctx, bson.M{"_id": orderID}).Decode(&existing); err != nil {
		respondErrorCode(c, http.StatusNotFound, CodeNotFound, "Order not found")
		return
	}
	if !models.CanTransitionOrder(existing.Status, body.Status) {
		respondError(c, http.StatusBadRequest,
			fmt.Sprintf("Cannot change status from %s to %s", existing.Status, body.Status))
		return
	}

	update := bson.M{"$set": bson.M{
		"status":    body.Status,
		"updatedAt": time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Order
	if err := ctl.DB.Orders.FindOneAndUpdate(ctx, bson.M{"_id": orderID}, update, opts).Decode(&updated); err != nil {
		respondErrorCode(c, http.StatusInternalServerError, CodeDatabaseError, "Failed to update order")
		return
	}

	ctl.Logger.Info("order status updated",
		"order_id", orderID.Hex(),
		"from", existing.Status,
		"to", body.Status,
		"request_id", requestID(c),
	)

	respondOK(c, http.StatusOK, "Order status updated", gin.H{"data": updated})
}

func (ctl *OrderAdminController) CancelOrder(c *gin.Context) {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid order ID")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.Timeout)
	defer cancel()

	filter := bson.M{
		"_id":    orderID,
		"status": bson.M{"$in": []string{models.OrderStatusPending, models.OrderStatusPaid}},
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
		respondError(c, http.StatusBadRequest, "Order cannot be canceled")
		return
	}

	respondOK(c, http.StatusOK, "Order canceled", nil)
}
