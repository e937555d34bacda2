package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/silkiy/storefront/database"
	"github.com/silkiy/storefront/models"
)

type AddressController struct {
	DB      *database.Mongo
	Logger  *slog.Logger
	Timeout time.Duration
}

type addressInput struct {
	Label      string `json:"label" binding:"required"`
	Recipient  string `json:"recipient" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
	Street     string `json:"street" binding:"required"`
	City       string `json:"city" binding:"required"`
	Province   string `json:"province" binding:"required"`
	PostalCode string `json:"postalCode" binding:"required"`
	IsDefault  bool   `json:"isDefault"`
}

func (ctl *AddressController) CreateAddress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input addressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "All address fields are required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.Timeout)
	defer cancel()

	if input.IsDefault {
		if err := ctl.clearDefault(ctx, userID); err != nil {
			respondErrorCode(c, http.StatusInternalServerError, CodeDatabaseError, "Failed to save address")
			return
		}
	}

	now := time.Now()
	address := models.Address{
		ID:         primitive.NewObjectID(),
		UserID:     userID,
		Label:      input.Label,
		Recipient:  input.Recipient,
		Phone:      input.Phone,
		Street:     input.Street,
		City:       input.City,
		Province:   input.Province,
		PostalCode: input.PostalCode,
		IsDefault:  input.IsDefault,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := ctl.DB.Addresses.InsertOne(ctx, address); err != nil {
		respondErrorCode(c, http.StatusInternalServerError, CodeDatabaseError, "Failed to save address")
		return
	}

	respondOK(c, http.StatusCreated, "Address created", gin.H{"data": address})
}

func (ctl *AddressController) ListAddresses(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.Timeout)
	defer cancel()

	cursor, err := ctl.DB.Addresses.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		respondErrorCode(c, http.StatusInternalServerError, CodeDatabaseError, "Failed to fetch addresses")
		return
	}

	addresses := []models.Address{}
	if err := cursor.All(ctx, &addresses); err != nil {
		respondErrorCode(c, http.StatusInternalServerError, CodeDatabaseError, "Failed to decode addresses")
		return
	}

	respondOK(c, http.StatusOK, "Fetch success", gin.H{"data": addresses})
}

func (ctl *AddressController) UpdateAddress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	addressID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid address ID")
		return
	}

	var body struct {
		Label      *string `json:"label"`
		Recipient  *string `json:"recipient"`
		Phone      *string `json:"phone"`
		Street     *string `json:"street"`
		City       *string `json:"city"`
		Province   *string `json:"province"`
		PostalCode *string `json:"postalCode"`
		IsDefault  *bool   `json:"isDefault"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	update := bson.M{}
	if body.Label != nil {
		update["label"] = *body.Label
	}
	if body.Recipient != nil {
		update["recipient"] = *body.Recipient
	}
	if body.Phone != nil {
		update["phone"] = *body.Phone
	}
	if body.Street != nil {
		update["street"] = *body.Street
	}
	if body.City != nil {
		update["city"] = *body.City
	}
	if body.Province != nil {
		update["province"] = *body.Province
	}
	if body.PostalCode != nil {
		update["postalCode"] = *body.PostalCode
	}
	if body.IsDefault != nil {
		update["isDefault"] = *body.IsDefault
	}
	update["updatedAt"] = time.Now()

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.Timeout)
	defer cancel()

	if body.IsDefault != nil && *body.IsDefault {
		if err := ctl.clearDefault(ctx, userID); err != nil {
			respondErrorCode(c, http.StatusInternalServerError, CodeDatabaseError, "Failed to update address")
			return
		}
	}

	result, err := ctl.DB.Addresses.UpdateOne(ctx,
		bson.M{"_id": addressID, "userId": userID},
		bson.M{"$set": update},
	)
	if err != nil {
		respondErrorCode(c, http.StatusInternalServerError, CodeDatabaseError, "Failed to update address")
		return
	}
	if result.MatchedCount == 0 {
		respondErrorCode(c, http.StatusNotFound, CodeNotFound, "Address not found")
		return
	}

	respondOK(c, http.StatusOK, "Address updated", nil)
}

func (ctl *AddressController) DeleteAddress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	addressID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid address ID")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.Timeout)
	defer cancel()

	result, err := ctl.DB.Addresses.DeleteOne(ctx, bson.M{"_id": addressID, "userId": userID})
	if err != nil {
		respondErrorCode(c, http.StatusInternalServerError, CodeDatabaseError, "Failed to delete address")
		return
	}
	if result.DeletedCount == 0 {
		respondErrorCode(c, http.StatusNotFound, CodeNotFound, "Address not found")
		return
	}

	respondOK(c, http.StatusOK, "Address deleted", nil)
}

func (ctl *AddressController) clearDefault(ctx context.Context, userID primitive.ObjectID) error {
	_, err := ctl.DB.Addresses.UpdateMany(ctx,
		bson.M{"userId": userID, "isDefault": true},
		bson.M{"$set": bson.M{"isDefault": false}},
	)
	return err
}
