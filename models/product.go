package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name" binding:"required"`
	Description string             `bson:"description" json:"description" binding:"required"`
	Price       float64            `bson:"price" json:"price" binding:"required,gt=0"`
	Stock       int                `bson:"stock" json:"stock" binding:"gte=0"`
	Sold        int                `bson:"sold" json:"sold"`
	Category    string             `bson:"category" json:"category" binding:"required"`
	Image       string             `bson:"image" json:"image"`
	Active      bool               `bson:"active" json:"active"`
	Deleted     bool               `bson:"deleted" json:"-"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
