package checkout

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/silkiy/storefront/models"
)

var ErrProductNotFound = errors.New("product not found")

// ProductStore is the slice of the product collection the coordinator needs.
// The mongo implementation scopes both calls to the open transaction.
type ProductStore interface {
	Find(ctx context.Context, id primitive.ObjectID) (*models.Product, error)

	// Reserve decrements stock by qty only if enough remains, and bumps the
	// sold counter. Returns false when the condition did not match.
	Reserve(ctx context.Context, id primitive.ObjectID, qty int) (bool, error)
}

// Coordinator runs the reservation step of one order.
type Coordinator struct {
	Store ProductStore
}

// ReserveAll attempts to reserve every line item. Items run sequentially:
// driver sessions must not be shared across goroutines, and line items of
// one order have no ordering guarantee anyway.
func (c *Coordinator) ReserveAll(ctx context.Context, items []OrderItemInput) []ItemOutcome {
	outcomes := make([]ItemOutcome, 0, len(items))
	for _, it := range items {
		outcomes = append(outcomes, c.reserveOne(ctx, it))
	}
	return outcomes
}

func (c *Coordinator) reserveOne(ctx context.Context, it OrderItemInput) ItemOutcome {
	id, err := primitive.ObjectIDFromHex(it.Product)
	if err != nil {
		return ItemOutcome{Status: ItemNotFound, Item: it}
	}

	p, err := c.Store.Find(ctx, id)
	if errors.Is(err, ErrProductNotFound) {
		return ItemOutcome{Status: ItemNotFound, Item: it}
	}
	if err != nil {
		// Per-item faults fold into the rejection list instead of aborting
		// the loop; the aggregate treats them like unavailable.
		return ItemOutcome{Status: ItemError, Item: it, Err: err}
	}
	if p.Deleted {
		return ItemOutcome{Status: ItemNotFound, Item: it}
	}
	if !p.Active {
		return ItemOutcome{Status: ItemUnavailable, Item: it, Product: p}
	}
	if p.Stock < it.Quantity {
		return ItemOutcome{Status: ItemUnavailable, Item: it, Product: p}
	}

	ok, err := c.Store.Reserve(ctx, id, it.Quantity)
	if err != nil {
		return ItemOutcome{Status: ItemError, Item: it, Product: p, Err: err}
	}
	if !ok {
		// Conditional update missed: someone took the stock between the read
		// and the write. Report the last stock value we saw.
		return ItemOutcome{Status: ItemUnavailable, Item: it, Product: p}
	}

	p.Stock -= it.Quantity
	p.Sold += it.Quantity
	return ItemOutcome{Status: ItemAvailable, Item: it, Product: p}
}
