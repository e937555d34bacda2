package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/silkiy/storefront/checkout"
	"github.com/silkiy/storefront/middleware"
)

type fakeCheckoutService struct {
	res   *checkout.Result
	err   error
	calls int
}

func (f *fakeCheckoutService) PlaceOrder(_ context.Context, _ primitive.ObjectID, _ checkout.PlaceOrderRequest) (*checkout.Result, error) {
	f.calls++
	return f.res, f.err
}

type fakeCache struct {
	deleted  []string
	patterns []string
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) error {
	f.deleted = append(f.deleted, keys...)
	return nil
}

func (f *fakeCache) InvalidatePattern(_ context.Context, pattern string) error {
	f.patterns = append(f.patterns, pattern)
	return nil
}

func newOrderTestRouter(svc checkout.Service, fc *fakeCache) (*gin.Engine, primitive.ObjectID) {
	gin.SetMode(gin.TestMode)
	userID := primitive.NewObjectID()

	ctl := &OrderController{
		Service: svc,
		Cache:   fc,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Timeout: time.Second,
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.POST("/orders", func(c *gin.Context) {
		c.Set("userId", userID.Hex())
		ctl.PlaceOrder(c)
	})
	return r, userID
}

func validOrderPayload() map[string]any {
	return map[string]any{
		"orderItems": []map[string]any{
			{
				"product":  primitive.NewObjectID().Hex(),
				"quantity": 1,
				"cartId":   primitive.NewObjectID().Hex(),
			},
		},
		"paymentInfo": map[string]any{
			"amountPaid":           100.0,
			"typePayment":          "bank_transfer",
			"paymentAccountNumber": "0123456789",
			"paymentAccountName":   "Jane Roe",
		},
		"totalAmount": 100.0,
	}
}

func postOrder(r *gin.Engine, payload any) *httptest.ResponseRecorder {
	var body bytes.Buffer
	switch v := payload.(type) {
	case string:
		body.WriteString(v)
	default:
		_ = json.NewEncoder(&body).Encode(v)
	}
	req := httptest.NewRequest(http.MethodPost, "/orders", &body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestPlaceOrder_Success(t *testing.T) {
	orderID := primitive.NewObjectID()
	svc := &fakeCheckoutService{res: &checkout.Result{OrderID: orderID, OrderNumber: "ORD-20240131-AB12CD34"}}
	fc := &fakeCache{}
	r, userID := newOrderTestRouter(svc, fc)

	w := postOrder(r, validOrderPayload())

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, orderID.Hex(), body["id"])
	assert.Equal(t, "ORD-20240131-AB12CD34", body["orderNumber"])
	assert.NotEmpty(t, body["requestId"])

	// Post-commit cache invalidation happened.
	assert.Contains(t, fc.patterns, "products:*")
	assert.Contains(t, fc.deleted, "carts:"+userID.Hex())
}

func TestPlaceOrder_StockConflict(t *testing.T) {
	svc := &fakeCheckoutService{err: &checkout.StockConflictError{
		Unavailable: []checkout.UnavailableProduct{
			{ID: "abc", Name: "widget", Image: "widget.png", Stock: 3, Quantity: 5},
		},
	}}
	fc := &fakeCache{}
	r, _ := newOrderTestRouter(svc, fc)

	w := postOrder(r, validOrderPayload())

	assert.Equal(t, http.StatusConflict, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["message"])

	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	list, ok := data["inavailableStockProducts"].([]any)
	require.True(t, ok)
	require.Len(t, list, 1)
	first := list[0].(map[string]any)
	assert.Equal(t, "widget", first["name"])
	assert.Equal(t, float64(3), first["stock"])
	assert.Equal(t, float64(5), first["quantity"])

	// Nothing changed, so nothing to invalidate.
	assert.Empty(t, fc.patterns)
	assert.Empty(t, fc.deleted)
}

func TestPlaceOrder_ValidationPrecedesSideEffects(t *testing.T) {
	svc := &fakeCheckoutService{res: &checkout.Result{}}
	r, _ := newOrderTestRouter(svc, &fakeCache{})

	payload := validOrderPayload()
	delete(payload, "totalAmount")
	w := postOrder(r, payload)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["message"], "totalAmount")
	assert.NotEmpty(t, body["requestId"])
	// The service (and with it the database) was never reached.
	assert.Equal(t, 0, svc.calls)
}

func TestPlaceOrder_MissingPaymentField(t *testing.T) {
	svc := &fakeCheckoutService{}
	r, _ := newOrderTestRouter(svc, &fakeCache{})

	payload := validOrderPayload()
	payload["paymentInfo"].(map[string]any)["amountPaid"] = 0
	w := postOrder(r, payload)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, svc.calls)
}

func TestPlaceOrder_MalformedJSON(t *testing.T) {
	svc := &fakeCheckoutService{}
	r, _ := newOrderTestRouter(svc, &fakeCache{})

	w := postOrder(r, "{not json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, svc.calls)
}

func TestPlaceOrder_Timeout(t *testing.T) {
	svc := &fakeCheckoutService{err: context.DeadlineExceeded}
	r, _ := newOrderTestRouter(svc, &fakeCache{})

	w := postOrder(r, validOrderPayload())

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, CodeTimeoutError, body["errorCode"])
	assert.NotEmpty(t, body["requestId"])
}

func TestPlaceOrder_DatabaseError(t *testing.T) {
	svc := &fakeCheckoutService{err: errors.New("no reachable servers")}
	fc := &fakeCache{}
	r, _ := newOrderTestRouter(svc, fc)

	w := postOrder(r, validOrderPayload())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, CodeDatabaseError, body["errorCode"])
	// Internals stay out of the client-facing message.
	assert.NotContains(t, body["message"], "no reachable servers")
	assert.Empty(t, fc.patterns)
}

func TestPlaceOrder_Unauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &fakeCheckoutService{}
	ctl := &OrderController{
		Service: svc,
		Cache:   &fakeCache{},
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Timeout: time.Second,
	}
	r := gin.New()
	r.Use(middleware.RequestID())
	r.POST("/orders", ctl.PlaceOrder)

	w := postOrder(r, validOrderPayload())

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, CodeAuthError, body["errorCode"])
	assert.Equal(t, 0, svc.calls)
}
