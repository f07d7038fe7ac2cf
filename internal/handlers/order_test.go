package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/orders"
)

type stubOfferStore struct {
	offers map[string]*orders.Offer
}

func (s *stubOfferStore) FindActive(_ context.Context, code string) (*orders.Offer, error) {
	if offer, ok := s.offers[code]; ok {
		return offer, nil
	}
	return nil, orders.ErrNotFound
}

type stubOrderStore struct {
	inserted []*orders.Order
}

func (s *stubOrderStore) Insert(_ context.Context, order *orders.Order) (string, error) {
	s.inserted = append(s.inserted, order)
	return "order-1", nil
}

type stubProductStore struct {
	decrements map[string]int
}

func (s *stubProductStore) DecrementStock(_ context.Context, productID string, quantity int) error {
	if s.decrements == nil {
		s.decrements = map[string]int{}
	}
	s.decrements[productID] += quantity
	return nil
}

func orderRouter(offers *stubOfferStore, store *stubOrderStore, products *stubProductStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := orders.NewEngine(offers, store, products)
	r := gin.New()
	r.POST("/api/orders", CreateOrder(engine))
	return r
}

func postOrder(t *testing.T, r *gin.Engine, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateOrderWithPercentageOffer(t *testing.T) {
	offers := &stubOfferStore{offers: map[string]*orders.Offer{
		"SAVE10": {Code: "SAVE10", Type: "percentage", Value: 10},
	}}
	store := &stubOrderStore{}
	products := &stubProductStore{}
	r := orderRouter(offers, store, products)

	w := postOrder(t, r, map[string]interface{}{
		"customer":   map[string]string{"name": "Ada", "phone": "555-0101", "address": "1 Main St"},
		"items":      []map[string]interface{}{{"product_id": "p1", "name": "Aspirin", "price": 50.0, "quantity": 2}},
		"total":      100.0,
		"offer_code": "save10",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var resp orders.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "order-1", resp.ID)
	assert.Equal(t, 100.0, resp.Subtotal)
	assert.Equal(t, 10.0, resp.Discount)
	assert.Equal(t, 90.0, resp.Total)
	assert.Equal(t, "SAVE10", resp.OfferCode)
	assert.Equal(t, orders.StatusPending, resp.Status)

	require.Len(t, store.inserted, 1)
	assert.Equal(t, 2, products.decrements["p1"])
}

func TestCreateOrderUnknownOfferGetsNoDiscount(t *testing.T) {
	offers := &stubOfferStore{}
	store := &stubOrderStore{}
	products := &stubProductStore{}
	r := orderRouter(offers, store, products)

	w := postOrder(t, r, map[string]interface{}{
		"customer":   map[string]string{"name": "Ada", "phone": "555-0101", "address": "1 Main St"},
		"items":      []map[string]interface{}{},
		"total":      40.0,
		"offer_code": "NOPE",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var resp orders.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0.0, resp.Discount)
	assert.Equal(t, 40.0, resp.Total)
	assert.Equal(t, "NOPE", resp.OfferCode)
}

func TestCreateOrderMissingAddressRejectedBeforeStorage(t *testing.T) {
	offers := &stubOfferStore{}
	store := &stubOrderStore{}
	products := &stubProductStore{}
	r := orderRouter(offers, store, products)

	w := postOrder(t, r, map[string]interface{}{
		"customer": map[string]string{"name": "Ada", "phone": "555-0101"},
		"items":    []map[string]interface{}{{"product_id": "p1", "name": "Aspirin", "price": 50.0, "quantity": 1}},
		"total":    50.0,
	})

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "validation failed", resp.Error)
	assert.Equal(t, []string{"customer.address"}, resp.Details)

	assert.Empty(t, store.inserted)
	assert.Empty(t, products.decrements)
}

func TestCreateOrderMalformedBody(t *testing.T) {
	r := orderRouter(&stubOfferStore{}, &stubOrderStore{}, &stubProductStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
