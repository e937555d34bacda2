package checkout

import (
	"fmt"
	"math"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderItemInput struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
	CartID   string `json:"cartId"`
}

type PaymentInfo struct {
	AmountPaid           float64 `json:"amountPaid"`
	TypePayment          string  `json:"typePayment"`
	PaymentAccountNumber string  `json:"paymentAccountNumber"`
	PaymentAccountName   string  `json:"paymentAccountName"`
}

type PlaceOrderRequest struct {
	OrderItems  []OrderItemInput `json:"orderItems"`
	PaymentInfo *PaymentInfo     `json:"paymentInfo"`
	TotalAmount float64          `json:"totalAmount"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type rule struct {
	field string
	check func(r *PlaceOrderRequest) (bool, string)
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Top-level rules. Item-level checks run separately so the field name can
// carry the index.
var rules = []rule{
	{"orderItems", func(r *PlaceOrderRequest) (bool, string) {
		return len(r.OrderItems) > 0, "must be a non-empty list"
	}},
	{"totalAmount", func(r *PlaceOrderRequest) (bool, string) {
		return positiveFinite(r.TotalAmount), "must be a positive number"
	}},
	{"paymentInfo", func(r *PlaceOrderRequest) (bool, string) {
		return r.PaymentInfo != nil, "is required"
	}},
	{"paymentInfo.amountPaid", func(r *PlaceOrderRequest) (bool, string) {
		return r.PaymentInfo == nil || positiveFinite(r.PaymentInfo.AmountPaid), "must be a positive number"
	}},
	{"paymentInfo.typePayment", func(r *PlaceOrderRequest) (bool, string) {
		return r.PaymentInfo == nil || r.PaymentInfo.TypePayment != "", "is required"
	}},
	{"paymentInfo.paymentAccountNumber", func(r *PlaceOrderRequest) (bool, string) {
		return r.PaymentInfo == nil || r.PaymentInfo.PaymentAccountNumber != "", "is required"
	}},
	{"paymentInfo.paymentAccountName", func(r *PlaceOrderRequest) (bool, string) {
		return r.PaymentInfo == nil || r.PaymentInfo.PaymentAccountName != "", "is required"
	}},
}

// Validate is a pure check: no database access happens before it passes.
func (r *PlaceOrderRequest) Validate() []FieldError {
	var errs []FieldError
	for _, ru := range rules {
		if ok, msg := ru.check(r); !ok {
			errs = append(errs, FieldError{Field: ru.field, Message: msg})
		}
	}
	for i, it := range r.OrderItems {
		if !primitive.IsValidObjectID(it.Product) {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("orderItems[%d].product", i),
				Message: "must be a valid product id",
			})
		}
		if it.Quantity <= 0 {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("orderItems[%d].quantity", i),
				Message: "must be a positive integer",
			})
		}
		if !primitive.IsValidObjectID(it.CartID) {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("orderItems[%d].cartId", i),
				Message: "must be a valid cart id",
			})
		}
	}
	return errs
}
