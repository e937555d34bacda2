package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/silkiy/storefront/database"
	"github.com/silkiy/storefront/models"
)

type ContactController struct {
	DB      *database.Mongo
	Logger  *slog.Logger
	Timeout time.Duration
}

// SubmitContact stores a contact-form message. Public endpoint, rate limited
// at the route level.
func (ctl *ContactController) SubmitContact(c *gin.Context) {
	var input struct {
		Name    string `json:"name" binding:"required"`
		Email   string `json:"email" binding:"required,email"`
		Subject string `json:"subject" binding:"required"`
		Message string `json:"message" binding:"required,max=5000"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "All fields are required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.Timeout)
	defer cancel()

	msg := models.ContactMessage{
		ID:        primitive.NewObjectID(),
		Name:      input.Name,
		Email:     input.Email,
		Subject:   input.Subject,
		Message:   input.Message,
		CreatedAt: time.Now(),
	}

	if _, err := ctl.DB.Contacts.InsertOne(ctx, msg); err != nil {
		respondErrorCode(c, http.StatusInternalServerError, CodeDatabaseError, "Failed to submit message")
		return
	}

	ctl.Logger.Info("contact message received", "subject", input.Subject, "request_id", requestID(c))

	respondOK(c, http.StatusCreated, "Message received", gin.H{"id": msg.ID.Hex()})
}
