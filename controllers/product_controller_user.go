package controllers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/silkiy/storefront/cache"
	"github.com/silkiy/storefront/database"
	"github.com/silkiy/storefront/models"
)

type ProductController struct {
	DB      *database.Mongo
	Cache   *cache.Cache
	Logger  *slog.Logger
	Timeout time.Duration
}

// ListProducts serves the public catalog, cache first.
func (ctl *ProductController) ListProducts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.Timeout)
	defer cancel()

	if raw, hit, err := ctl.Cache.Get(ctx, cache.KeyProducts); err == nil && hit {
		respondOK(c, http.StatusOK, "Fetch success", gin.H{"data": json.RawMessage(raw)})
		return
	}

	cursor, err := ctl.DB.Products.Find(ctx, bson.M{"deleted": false, "active": true})
	if err != nil {
		respondErrorCode(c, http.StatusInternalServerError, CodeDatabaseError, "Failed to fetch products")
		return
	}

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		respondErrorCode(c, http.StatusInternalServerError, CodeDatabaseError, "Failed to decode products")
		return
	}

	if raw, err := json.Marshal(products); err == nil {
		if err := ctl.Cache.Set(ctx, cache.KeyProducts, string(raw), cache.TTLProducts); err != nil {
			ctl.Logger.Warn("product cache fill failed", "error", err)
		}
	}

	respondOK(c, http.StatusOK, "Fetch success", gin.H{"data": products})
}
