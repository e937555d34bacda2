package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusDelivered = "delivered"
	OrderStatusCanceled  = "canceled"
	OrderStatusRefunded  = "refunded"
	OrderStatusCompleted = "completed"
)

type Order struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	OrderNumber string             `bson:"orderNumber" json:"orderNumber"`
	Items       []OrderItem        `bson:"items" json:"items"`
	PaymentInfo PaymentInfo        `bson:"paymentInfo" json:"paymentInfo"`
	TotalAmount float64            `bson:"totalAmount" json:"totalAmount"`
	Status      string             `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// OrderItem is a snapshot of the product at checkout time. Later product
// edits must not change what the user sees on an old order.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Image     string             `bson:"image" json:"image"`
	Category  string             `bson:"category" json:"category"`
	Price     float64            `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

type PaymentInfo struct {
	AmountPaid           float64 `bson:"amountPaid" json:"amountPaid"`
	TypePayment          string  `bson:"typePayment" json:"typePayment"`
	PaymentAccountNumber string  `bson:"paymentAccountNumber" json:"paymentAccountNumber"`
	PaymentAccountName   string  `bson:"paymentAccountName" json:"paymentAccountName"`
}

var validOrderTransitions = map[string][]string{
	OrderStatusPending:   {OrderStatusPaid, OrderStatusCanceled},
	OrderStatusPaid:      {OrderStatusDelivered, OrderStatusRefunded},
	OrderStatusDelivered: {OrderStatusCompleted},
	OrderStatusCanceled:  {},
	OrderStatusRefunded:  {},
	OrderStatusCompleted: {},
}

func ValidOrderStatus(s string) bool {
	_, ok := validOrderTransitions[s]
	return ok
}

func CanTransitionOrder(from, to string) bool {
	for _, next := range validOrderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
