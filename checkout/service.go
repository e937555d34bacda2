package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/silkiy/storefront/database"
	"github.com/silkiy/storefront/models"
)

// StockConflictError aborts the transaction when any line item could not be
// reserved. Carries the list the 409 response shows the user.
type StockConflictError struct {
	Unavailable []UnavailableProduct
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("%d order item(s) unavailable", len(e.Unavailable))
}

type Result struct {
	OrderID     primitive.ObjectID
	OrderNumber string
}

// Service places an order. The mongo implementation wraps the whole
// reserve + insert + cart-cleanup sequence in one transaction.
type Service interface {
	PlaceOrder(ctx context.Context, userID primitive.ObjectID, req PlaceOrderRequest) (*Result, error)
}

type MongoService struct {
	Client   *mongo.Client
	Products *mongo.Collection
	Orders   *mongo.Collection
	Carts    *mongo.Collection
	Logger   *slog.Logger
}

func NewMongoService(db *database.Mongo, logger *slog.Logger) *MongoService {
	return &MongoService{
		Client:   db.Client,
		Products: db.Products,
		Orders:   db.Orders,
		Carts:    db.Carts,
		Logger:   logger,
	}
}

// PlaceOrder runs the all-or-nothing checkout. Either the order document is
// inserted and the matched cart entries are deleted, or nothing persists.
func (s *MongoService) PlaceOrder(ctx context.Context, userID primitive.ObjectID, req PlaceOrderRequest) (*Result, error) {
	session, err := s.Client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	res, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		coord := &Coordinator{Store: &sessionStore{products: s.Products}}
		agg := Partition(coord.ReserveAll(sc, req.OrderItems))
		if agg.Shortfall() > 0 {
			// Returning an error rolls the transaction back, so the
			// decrements already applied to other line items never persist.
			return nil, &StockConflictError{Unavailable: agg.UnavailableProducts()}
		}

		order := buildOrder(userID, req, agg.Reserved)
		if _, err := s.Orders.InsertOne(sc, order); err != nil {
			return nil, fmt.Errorf("insert order: %w", err)
		}

		if ids := cartObjectIDs(req.OrderItems); len(ids) > 0 {
			filter := bson.M{"_id": bson.M{"$in": ids}, "userId": userID}
			if _, err := s.Carts.DeleteMany(sc, filter); err != nil {
				return nil, fmt.Errorf("delete cart entries: %w", err)
			}
		}

		return &Result{OrderID: order.ID, OrderNumber: order.OrderNumber}, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*Result), nil
}

// sessionStore runs product reads and conditional decrements against the
// caller's session context, so everything lands in one transaction.
type sessionStore struct {
	products *mongo.Collection
}

func (st *sessionStore) Find(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	err := st.products.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (st *sessionStore) Reserve(ctx context.Context, id primitive.ObjectID, qty int) (bool, error) {
	res, err := st.products.UpdateOne(ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": qty}},
		bson.M{
			"$inc": bson.M{"stock": -qty, "sold": qty},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func buildOrder(userID primitive.ObjectID, req PlaceOrderRequest, reserved []ItemOutcome) models.Order {
	items := make([]models.OrderItem, 0, len(reserved))
	for _, oc := range reserved {
		items = append(items, models.OrderItem{
			ProductID: oc.Product.ID,
			Name:      oc.Product.Name,
			Image:     oc.Product.Image,
			Category:  oc.Product.Category,
			Price:     oc.Product.Price,
			Quantity:  oc.Item.Quantity,
		})
	}
	now := time.Now()
	return models.Order{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		OrderNumber: NewOrderNumber(now),
		Items:       items,
		PaymentInfo: models.PaymentInfo{
			AmountPaid:           req.PaymentInfo.AmountPaid,
			TypePayment:          req.PaymentInfo.TypePayment,
			PaymentAccountNumber: req.PaymentInfo.PaymentAccountNumber,
			PaymentAccountName:   req.PaymentInfo.PaymentAccountName,
		},
		TotalAmount: req.TotalAmount,
		Status:      models.OrderStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func cartObjectIDs(items []OrderItemInput) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(items))
	for _, it := range items {
		if id, err := primitive.ObjectIDFromHex(it.CartID); err == nil {
			out = append(out, id)
		}
	}
	return out
}

// NewOrderNumber builds a human-readable order reference, e.g.
// ORD-20240131-5A3F2C1B.
func NewOrderNumber(t time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", t.Format("20060102"), suffix)
}
