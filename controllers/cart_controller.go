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
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"github.com/silkiy/storefront/cache"
	"github.com/silkiy/storefront/database"
	"github.com/silkiy/storefront/models"
)

type CartController struct {
	DB      *database.Mongo
	Cache   *cache.Cache
	Logger  *slog.Logger
	Timeout time.Duration
}

func (ctl *CartController) AddToCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body struct {
		ProductID string `json:"productId" binding:"required"`
		Quantity  int    `json:"quantity" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request")
		return
	}
	productID, err := primitive.ObjectIDFromHex(body.ProductID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid productId")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.Timeout)
	defer cancel()

	var product models.Product
	err = ctl.DB.Products.FindOne(ctx, bson.M{"_id": productID, "deleted": false, "active": true}).Decode(&product)
	if err != nil {
		respondErrorCode(c, http.StatusNotFound, CodeNotFound, "Product not found")
		return
	}
	if body.Quantity > product.Stock {
		respondError(c, http.StatusBadRequest, "Quantity exceeds available stock")
		return
	}

	// One cart row per user+product: adding again bumps the quantity.
	var existing models.CartItem
	err = ctl.DB.Carts.FindOne(ctx, bson.M{"userId": userID, "productId": productID}).Decode(&existing)
	if err == nil {
		newQty := existing.Quantity + body.Quantity
		if newQty > product.Stock {
			respondError(c, http.StatusBadRequest, "Quantity exceeds available stock")
			return
		}
		_, err = ctl.DB.Carts.UpdateOne(ctx,
			bson.M{"_id": existing.ID},
			bson.M{"$set": bson.M{"quantity": newQty}},
		)
		if err != nil {
			respondErrorCode(c, http.StatusInternalServerError, CodeDatabaseError, "Failed to update cart")
			return
		}
		existing.Quantity = newQty
		ctl.invalidateCart(ctx, userID)
		respondOK(c, http.StatusOK, "Cart updated", gin.H{"data": cartEntryResponse(existing, product)})
		return
	}

	item := models.CartItem{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  body.Quantity,
		CreatedAt: time.Now(),
	}
	if _, err := ctl.DB.Carts.InsertOne(ctx, item); err != nil {
		respondErrorCode(c, http.StatusInternalServerError, CodeDatabaseError, "Failed to add to cart")
		return
	}
	ctl.invalidateCart(ctx, userID)

	respondOK(c, http.StatusOK, "Added to cart", gin.H{"data": cartEntryResponse(item, product)})
}

// GetCart lists the caller's cart with product details. Product lookups
// fan out concurrently; entries whose product vanished are skipped.
func (ctl *CartController) GetCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.Timeout)
	defer cancel()

	cursor, err := ctl.DB.Carts.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		respondErrorCode(c, http.StatusInternalServerError, CodeDatabaseError, "Failed to fetch cart")
		return
	}

	var items []models.CartItem
	if err := cursor.All(ctx, &items); err != nil {
		respondErrorCode(c, http.StatusInternalServerError, CodeDatabaseError, "Failed to decode cart")
		return
	}

	products := make([]*models.Product, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			var p models.Product
			err := ctl.DB.Products.FindOne(gctx, bson.M{"_id": item.ProductID}).Decode(&p)
			if err == mongo.ErrNoDocuments {
				return nil
			}
			if err != nil {
				return err
			}
			products[i] = &p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		respondErrorCode(c, http.StatusInternalServerError, CodeDatabaseError, "Failed to fetch cart")
		return
	}

	entries := []gin.H{}
	for i, item := range items {
		p := products[i]
		if p == nil {
			continue
		}
		entries = append(entries, gin.H{
			"cartId":      item.ID.Hex(),
			"productId":   item.ProductID.Hex(),
			"quantity":    item.Quantity,
			"productName": p.Name,
			"price":       p.Price,
			"stock":       p.Stock,
			"total":       float64(item.Quantity) * p.Price,
		})
	}

	respondOK(c, http.StatusOK, "Fetch success", gin.H{"data": entries})
}

// UpdateCart sets the quantity for one product; zero removes the entry.
func (ctl *CartController) UpdateCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid productId")
		return
	}

	var body struct {
		Quantity *int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || *body.Quantity < 0 {
		respondError(c, http.StatusBadRequest, "Invalid quantity")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.Timeout)
	defer cancel()

	var item models.CartItem
	err = ctl.DB.Carts.FindOne(ctx, bson.M{"userId": userID, "productId": productID}).Decode(&item)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondErrorCode(c, http.StatusNotFound, CodeNotFound, "Product not found in cart")
		} else {
			respondErrorCode(c, http.StatusInternalServerError, CodeDatabaseError, "Failed to fetch cart")
		}
		return
	}

	if *body.Quantity == 0 {
		if _, err := ctl.DB.Carts.DeleteOne(ctx, bson.M{"_id": item.ID}); err != nil {
			respondErrorCode(c, http.StatusInternalServerError, CodeDatabaseError, "Failed to remove product from cart")
			return
		}
		ctl.invalidateCart(ctx, userID)
		respondOK(c, http.StatusOK, "Product removed from cart", nil)
		return
	}

	var product models.Product
	if err := ctl.DB.Products.FindOne(ctx, bson.M{"_id": productID}).Decode(&product); err != nil {
		respondErrorCode(c, http.StatusNotFound, CodeNotFound, "Product not found")
		return
	}
	if *body.Quantity > product.Stock {
		respondError(c, http.StatusBadRequest, "Quantity exceeds available stock")
		return
	}

	_, err = ctl.DB.Carts.UpdateOne(ctx,
		bson.M{"_id": item.ID},
		bson.M{"$set": bson.M{"quantity": *body.Quantity}},
	)
	if err != nil {
		respondErrorCode(c, http.StatusInternalServerError, CodeDatabaseError, "Failed to update cart")
		return
	}
	ctl.invalidateCart(ctx, userID)

	item.Quantity = *body.Quantity
	respondOK(c, http.StatusOK, "Cart updated", gin.H{"data": cartEntryResponse(item, product)})
}

func (ctl *CartController) RemoveFromCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid productId")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.Timeout)
	defer cancel()

	result, err := ctl.DB.Carts.DeleteOne(ctx, bson.M{"userId": userID, "productId": productID})
	if err != nil || result.DeletedCount == 0 {
		respondErrorCode(c, http.StatusNotFound, CodeNotFound, "Product not found in cart")
		return
	}
	ctl.invalidateCart(ctx, userID)

	respondOK(c, http.StatusOK, "Product removed from cart", gin.H{"productId": productID.Hex()})
}

func (ctl *CartController) invalidateCart(ctx context.Context, userID primitive.ObjectID) {
	if err := ctl.Cache.Delete(ctx, fmt.Sprintf(cache.KeyUserCart, userID.Hex())); err != nil {
		ctl.Logger.Warn("cart cache invalidation failed", "error", err)
	}
}

func cartEntryResponse(item models.CartItem, product models.Product) gin.H {
	return gin.H{
		"cartId":    item.ID.Hex(),
		"productId": item.ProductID.Hex(),
		"quantity":  item.Quantity,
		"product": gin.H{
			"name":  product.Name,
			"price": product.Price,
			"stock": product.Stock,
		},
		"subtotal": float64(item.Quantity) * product.Price,
	}
}
