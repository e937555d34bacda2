package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/silkiy/storefront/models"
)

// fakeStore mimics the conditional decrement the mongo store performs.
type fakeStore struct {
	products map[primitive.ObjectID]*models.Product
	findErr  map[primitive.ObjectID]error
	resErr   map[primitive.ObjectID]error
	reserves int
}

func (s *fakeStore) Find(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	if err := s.findErr[id]; err != nil {
		return nil, err
	}
	p, ok := s.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *fakeStore) Reserve(_ context.Context, id primitive.ObjectID, qty int) (bool, error) {
	if err := s.resErr[id]; err != nil {
		return false, err
	}
	s.reserves++
	p, ok := s.products[id]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	p.Sold += qty
	return true, nil
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products: map[primitive.ObjectID]*models.Product{},
		findErr:  map[primitive.ObjectID]error{},
		resErr:   map[primitive.ObjectID]error{},
	}
}

func (s *fakeStore) add(stock int) primitive.ObjectID {
	id := primitive.NewObjectID()
	s.products[id] = &models.Product{
		ID:     id,
		Name:   "widget",
		Image:  "widget.png",
		Price:  25,
		Stock:  stock,
		Active: true,
	}
	return id
}

func item(id primitive.ObjectID, qty int) OrderItemInput {
	return OrderItemInput{
		Product:  id.Hex(),
		Quantity: qty,
		CartID:   primitive.NewObjectID().Hex(),
	}
}

func TestReserveAll_AllAvailable(t *testing.T) {
	store := newFakeStore()
	a := store.add(10)
	b := store.add(5)
	coord := &Coordinator{Store: store}

	outcomes := coord.ReserveAll(context.Background(), []OrderItemInput{
		item(a, 1), item(b, 5),
	})

	require.Len(t, outcomes, 2)
	for _, oc := range outcomes {
		assert.Equal(t, ItemAvailable, oc.Status)
	}
	// Snapshots reflect the decrement.
	assert.Equal(t, 9, outcomes[0].Product.Stock)
	assert.Equal(t, 1, outcomes[0].Product.Sold)
	assert.Equal(t, 0, outcomes[1].Product.Stock)

	agg := Partition(outcomes)
	assert.Equal(t, 0, agg.Shortfall())
	assert.Len(t, agg.Reserved, 2)
}

func TestReserveAll_InsufficientStock(t *testing.T) {
	store := newFakeStore()
	id := store.add(3)
	coord := &Coordinator{Store: store}

	outcomes := coord.ReserveAll(context.Background(), []OrderItemInput{item(id, 5)})

	require.Len(t, outcomes, 1)
	assert.Equal(t, ItemUnavailable, outcomes[0].Status)
	// No decrement was attempted.
	assert.Equal(t, 0, store.reserves)
	assert.Equal(t, 3, store.products[id].Stock)

	agg := Partition(outcomes)
	assert.Equal(t, 1, agg.Shortfall())

	unavailable := agg.UnavailableProducts()
	require.Len(t, unavailable, 1)
	assert.Equal(t, id.Hex(), unavailable[0].ID)
	assert.Equal(t, "widget", unavailable[0].Name)
	assert.Equal(t, "widget.png", unavailable[0].Image)
	assert.Equal(t, 3, unavailable[0].Stock)
	assert.Equal(t, 5, unavailable[0].Quantity)
}

func TestReserveAll_ProductNotFound(t *testing.T) {
	store := newFakeStore()
	coord := &Coordinator{Store: store}

	outcomes := coord.ReserveAll(context.Background(), []OrderItemInput{
		item(primitive.NewObjectID(), 1),
	})

	require.Len(t, outcomes, 1)
	assert.Equal(t, ItemNotFound, outcomes[0].Status)

	unavailable := Partition(outcomes).UnavailableProducts()
	require.Len(t, unavailable, 1)
	assert.Empty(t, unavailable[0].Name)
	assert.Zero(t, unavailable[0].Stock)
}

func TestReserveAll_MalformedProductID(t *testing.T) {
	coord := &Coordinator{Store: newFakeStore()}

	outcomes := coord.ReserveAll(context.Background(), []OrderItemInput{
		{Product: "not-an-id", Quantity: 1},
	})

	require.Len(t, outcomes, 1)
	assert.Equal(t, ItemNotFound, outcomes[0].Status)
}

func TestReserveAll_StoreErrorFailsClosed(t *testing.T) {
	store := newFakeStore()
	bad := store.add(10)
	good := store.add(10)
	store.findErr[bad] = errors.New("socket reset")
	coord := &Coordinator{Store: store}

	outcomes := coord.ReserveAll(context.Background(), []OrderItemInput{
		item(bad, 1), item(good, 1),
	})

	require.Len(t, outcomes, 2)
	assert.Equal(t, ItemError, outcomes[0].Status)
	assert.Equal(t, ItemAvailable, outcomes[1].Status)

	// An errored item rejects the whole order, same as unavailable.
	agg := Partition(outcomes)
	assert.Equal(t, 1, agg.Shortfall())
}

func TestReserveAll_ReserveConditionMissed(t *testing.T) {
	store := newFakeStore()
	id := store.add(2)
	coord := &Coordinator{Store: store}

	outcomes := coord.ReserveAll(context.Background(), []OrderItemInput{item(id, 2)})
	require.Len(t, outcomes, 1)
	assert.Equal(t, ItemAvailable, outcomes[0].Status)

	// Second attempt for the same two units now misses the condition.
	outcomes = coord.ReserveAll(context.Background(), []OrderItemInput{item(id, 2)})
	require.Len(t, outcomes, 1)
	assert.Equal(t, ItemUnavailable, outcomes[0].Status)
	assert.Equal(t, 0, store.products[id].Stock)
}

func TestReserveAll_InactiveProductUnavailable(t *testing.T) {
	store := newFakeStore()
	id := store.add(10)
	store.products[id].Active = false
	coord := &Coordinator{Store: store}

	outcomes := coord.ReserveAll(context.Background(), []OrderItemInput{item(id, 1)})

	require.Len(t, outcomes, 1)
	assert.Equal(t, ItemUnavailable, outcomes[0].Status)
	assert.Equal(t, 10, store.products[id].Stock)
}

func TestReserveAll_DeletedProductNotFound(t *testing.T) {
	store := newFakeStore()
	id := store.add(10)
	store.products[id].Deleted = true
	coord := &Coordinator{Store: store}

	outcomes := coord.ReserveAll(context.Background(), []OrderItemInput{item(id, 1)})

	require.Len(t, outcomes, 1)
	assert.Equal(t, ItemNotFound, outcomes[0].Status)
}

func TestPartition_MixedOutcomes(t *testing.T) {
	outcomes := []ItemOutcome{
		{Status: ItemAvailable},
		{Status: ItemUnavailable},
		{Status: ItemNotFound},
		{Status: ItemError},
		{Status: ItemAvailable},
	}

	agg := Partition(outcomes)

	assert.Len(t, agg.Reserved, 2)
	assert.Len(t, agg.Rejected, 3)
	assert.Equal(t, 3, agg.Shortfall())
}
