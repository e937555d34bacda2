package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/silkiy/storefront/cache"
	"github.com/silkiy/storefront/models"
)

func (ctl *ProductController) CreateProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		respondError(c, http.StatusBadRequest, "All fields are required")
		return
	}

	product.ID = primitive.NewObjectID()
	product.Sold = 0
	product.Active = true
	product.Deleted = false
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.Timeout)
	defer cancel()

	if _, err := ctl.DB.Products.InsertOne(ctx, product); err != nil {
		respondErrorCode(c, http.StatusInternalServerError, CodeDatabaseError, "Failed to create product")
		return
	}
	ctl.invalidateProducts(ctx)

	respondOK(c, http.StatusCreated, "Product created", gin.H{"product": product})
}

func (ctl *ProductController) ListProductsAdmin(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.Timeout)
	defer cancel()

	cursor, err := ctl.DB.Products.Find(ctx, bson.M{"deleted": false})
	if err != nil {
		respondErrorCode(c, http.StatusInternalServerError, CodeDatabaseError, "Failed to fetch products")
		return
	}

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		respondErrorCode(c, http.StatusInternalServerError, CodeDatabaseError, "Failed to decode products")
		return
	}

	respondOK(c, http.StatusOK, "Fetch products success", gin.H{
		"count":    len(products),
		"products": products,
	})
}

func (ctl *ProductController) UpdateProduct(c *gin.Context) {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var body struct {
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		Price       *float64 `json:"price"`
		Stock       *int     `json:"stock"`
		Category    *string  `json:"category"`
		Image       *string  `json:"image"`
		Active      *bool    `json:"active"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	update := bson.M{}
	if body.Name != nil {
		update["name"] = *body.Name
	}
	if body.Description != nil {
		update["description"] = *body.Description
	}
	if body.Price != nil {
		if *body.Price <= 0 {
			respondError(c, http.StatusBadRequest, "Price must be positive")
			return
		}
		update["price"] = *body.Price
	}
	if body.Stock != nil {
		if *body.Stock < 0 {
			respondError(c, http.StatusBadRequest, "Stock cannot be negative")
			return
		}
		update["stock"] = *body.Stock
	}
	if body.Category != nil {
		update["category"] = *body.Category
	}
	if body.Image != nil {
		update["image"] = *body.Image
	}
	if body.Active != nil {
		update["active"] = *body.Active
	}
	update["updatedAt"] = time.Now()

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.Timeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Product
	err = ctl.DB.Products.FindOneAndUpdate(ctx,
		bson.M{"_id": objID, "deleted": false},
		bson.M{"$set": update}, opts).Decode(&updated)
	if err != nil {
		respondErrorCode(c, http.StatusNotFound, CodeNotFound, "Product not found")
		return
	}
	ctl.invalidateProducts(ctx)

	respondOK(c, http.StatusOK, "Product updated", gin.H{"product": updated})
}

// DeleteProduct soft-deletes so existing order snapshots keep resolving.
func (ctl *ProductController) DeleteProduct(c *gin.Context) {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid product ID")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.Timeout)
	defer cancel()

	result, err := ctl.DB.Products.UpdateOne(ctx,
		bson.M{"_id": objID, "deleted": false},
		bson.M{"$set": bson.M{"deleted": true, "active": false, "updatedAt": time.Now()}},
	)
	if err != nil {
		respondErrorCode(c, http.StatusInternalServerError, CodeDatabaseError, "Failed to delete product")
		return
	}
	if result.MatchedCount == 0 {
		respondErrorCode(c, http.StatusNotFound, CodeNotFound, "Product not found")
		return
	}
	ctl.invalidateProducts(ctx)

	respondOK(c, http.StatusOK, "Product deleted", gin.H{"id": objID.Hex()})
}

func (ctl *ProductController) invalidateProducts(ctx context.Context) {
	if err := ctl.Cache.InvalidatePattern(ctx, cache.PatternProducts); err != nil {
		ctl.Logger.Warn("product cache invalidation failed", "error", err)
	}
}
