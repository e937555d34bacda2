package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/silkiy/storefront/database"
	"github.com/silkiy/storefront/models"
)

type AuthController struct {
	DB      *database.Mongo
	Secret  []byte
	Logger  *slog.Logger
	Timeout time.Duration
}

func (ctl *AuthController) Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.Timeout)
	defer cancel()

	var existing models.User
	err := ctl.DB.Users.FindOne(ctx, bson.M{"email": input.Email}).Decode(&existing)
	if err == nil {
		respondError(c, http.StatusConflict, "Email already registered")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		respondErrorCode(c, http.StatusInternalServerError, CodeServerError, "Failed to register")
		return
	}

	user := models.User{
		ID:        primitive.NewObjectID(),
		Name:      input.Name,
		Email:     input.Email,
		Password:  string(hashed),
		Role:      "customer",
		CreatedAt: time.Now(),
	}

	if _, err := ctl.DB.Users.InsertOne(ctx, user); err != nil {
		respondErrorCode(c, http.StatusInternalServerError, CodeDatabaseError, "Failed to register")
		return
	}

	respondOK(c, http.StatusCreated, "User registered successfully", gin.H{
		"user": gin.H{
			"id":    user.ID.Hex(),
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

func (ctl *AuthController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.Timeout)
	defer cancel()

	var user models.User
	err := ctl.DB.Users.FindOne(ctx, bson.M{"email": input.Email}).Decode(&user)
	if err != nil {
		respondErrorCode(c, http.StatusUnauthorized, CodeAuthError, "Invalid email or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		respondErrorCode(c, http.StatusUnauthorized, CodeAuthError, "Invalid email or password")
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": user.ID.Hex(),
		"role":   user.Role,
		"exp":    time.Now().Add(24 * time.Hour).Unix(),
	})
	tokenString, err := token.SignedString(ctl.Secret)
	if err != nil {
		respondErrorCode(c, http.StatusInternalServerError, CodeServerError, "Failed to sign token")
		return
	}

	respondOK(c, http.StatusOK, "", gin.H{
		"user": gin.H{
			"id":    user.ID.Hex(),
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
			"token": tokenString,
		},
	})
}

// Logout blacklists the presented token until its natural expiry.
func (ctl *AuthController) Logout(c *gin.Context) {
	tokenString := c.GetHeader("Authorization")
	if tokenString == "" {
		respondError(c, http.StatusBadRequest, "Token required")
		return
	}
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return ctl.Secret, nil
	})
	if err != nil || !token.Valid {
		respondErrorCode(c, http.StatusUnauthorized, CodeAuthError, "Invalid token")
		return
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		respondErrorCode(c, http.StatusUnauthorized, CodeAuthError, "Invalid token")
		return
	}
	exp, _ := claims["exp"].(float64)

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.Timeout)
	defer cancel()

	_, err = ctl.DB.BlacklistedTokens.InsertOne(ctx, bson.M{
		"token": tokenString,
		"exp":   int64(exp),
	})
	if err != nil {
		respondErrorCode(c, http.StatusInternalServerError, CodeDatabaseError, "Failed to log out")
		return
	}

	respondOK(c, http.StatusOK, "Logged out successfully", nil)
}
