package orders

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOfferStore struct {
	offers  map[string]Offer // keyed by stored (upper case) code
	lookups []string
	err     error
}

func (s *fakeOfferStore) FindActive(_ context.Context, code string) (*Offer, error) {
	s.lookups = append(s.lookups, code)
	if s.err != nil {
		return nil, s.err
	}
	offer, ok := s.offers[code]
	if !ok {
		return nil, ErrNotFound
	}
	return &offer, nil
}

type fakeOrderStore struct {
	inserted []Order
	err      error
	nextID   int
}

func (s *fakeOrderStore) Insert(_ context.Context, order *Order) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.nextID++
	s.inserted = append(s.inserted, *order)
	return strconv.Itoa(s.nextID), nil
}

type fakeProductStore struct {
	stock      map[string]int
	decrements int
	err        error
}

func (s *fakeProductStore) DecrementStock(_ context.Context, productID string, quantity int) error {
	s.decrements++
	if s.err != nil {
		return s.err
	}
	s.stock[productID] -= quantity
	return nil
}

func newFixture() (*Engine, *fakeOfferStore, *fakeOrderStore, *fakeProductStore) {
	offers := &fakeOfferStore{offers: map[string]Offer{}}
	orderStore := &fakeOrderStore{}
	products := &fakeProductStore{stock: map[string]int{}}
	return NewEngine(offers, orderStore, products), offers, orderStore, products
}

func validRequest() Request {
	total := 100.0
	return Request{
		Customer: &Customer{Name: "John Doe", Phone: "+1234567890", Address: "123 Main St"},
		Items: []LineItem{
			{ProductID: "p1", Name: "Aspirin 100mg", Price: 50, Quantity: 2},
		},
		Total: &total,
	}
}

func TestPlaceWithoutOffer(t *testing.T) {
	engine, _, orderStore, _ := newFixture()

	order, err := engine.Place(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, 0.0, order.Discount)
	assert.Equal(t, 100.0, order.Subtotal)
	assert.Equal(t, 100.0, order.Total)
	assert.Equal(t, StatusPending, order.Status)
	assert.NotEmpty(t, order.ID)
	assert.False(t, order.CreatedAt.IsZero())
	require.Len(t, orderStore.inserted, 1)
}

func TestPlaceWithPercentageOffer(t *testing.T) {
	engine, offers, _, _ := newFixture()
	offers.offers["SAVE10"] = Offer{Code: "SAVE10", Type: "percentage", Value: 10}

	req := validRequest()
	req.OfferCode = "SAVE10"

	order, err := engine.Place(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 10.0, order.Discount)
	assert.Equal(t, 90.0, order.Total)
	assert.Equal(t, "SAVE10", order.OfferCode)
}

func TestPlaceWithFixedOfferLargerThanSubtotal(t *testing.T) {
	engine, offers, _, _ := newFixture()
	offers.offers["FLAT50"] = Offer{Code: "FLAT50", Type: "fixed", Value: 50}

	req := validRequest()
	req.OfferCode = "FLAT50"
	subtotal := 20.0
	req.Total = &subtotal

	order, err := engine.Place(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 50.0, order.Discount, "discount is not clamped to the subtotal")
	assert.Equal(t, 0.0, order.Total)
}

func TestPlaceLowercaseCodeMatchesStoredUppercase(t *testing.T) {
	engine, offers, _, _ := newFixture()
	offers.offers["SAVE10"] = Offer{Code: "SAVE10", Type: "percentage", Value: 10}

	req := validRequest()
	req.OfferCode = "save10"

	order, err := engine.Place(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, []string{"SAVE10"}, offers.lookups)
	assert.Equal(t, 10.0, order.Discount)
}

func TestPlaceUnknownOfferBehavesLikeNoOffer(t *testing.T) {
	engine, _, _, _ := newFixture()

	req := validRequest()
	req.OfferCode = "NOSUCH"

	order, err := engine.Place(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 0.0, order.Discount)
	assert.Equal(t, 100.0, order.Total)
}

func TestPlaceAdjustsStockPerItem(t *testing.T) {
	engine, _, _, products := newFixture()
	products.stock["p1"] = 10
	products.stock["p2"] = 1

	req := validRequest()
	req.Items = []LineItem{
		{ProductID: "p1", Name: "Aspirin 100mg", Price: 10, Quantity: 3},
		{ProductID: "p2", Name: "Ibuprofen 200mg", Price: 20, Quantity: 2},
	}

	_, err := engine.Place(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 7, products.stock["p1"])
	assert.Equal(t, -1, products.stock["p2"], "stock may go negative")
}

func TestPlaceValidationRejectsBeforeStorage(t *testing.T) {
	engine, offers, orderStore, products := newFixture()

	req := validRequest()
	req.Customer.Address = ""

	_, err := engine.Place(context.Background(), req)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"customer.address"}, verr.Missing)

	assert.Empty(t, offers.lookups, "no offer lookup before validation passes")
	assert.Empty(t, orderStore.inserted, "no order persisted")
	assert.Zero(t, products.decrements, "no stock mutated")
}

func TestPlaceValidationEnumeratesAllMissingFields(t *testing.T) {
	engine, _, _, _ := newFixture()

	_, err := engine.Place(context.Background(), Request{})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"customer", "items", "total"}, verr.Missing)
}

func TestPlaceIsNotIdempotent(t *testing.T) {
	engine, _, orderStore, products := newFixture()
	products.stock["p1"] = 10

	req := validRequest()

	first, err := engine.Place(context.Background(), req)
	require.NoError(t, err)
	second, err := engine.Place(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID, "identical input creates two distinct orders")
	assert.Len(t, orderStore.inserted, 2)
	assert.Equal(t, 6, products.stock["p1"], "stock decremented once per placement")
}

func TestPlacePersistFailureAbortsBeforeStock(t *testing.T) {
	engine, _, orderStore, products := newFixture()
	orderStore.err = errors.New("write concern error")

	_, err := engine.Place(context.Background(), validRequest())
	require.Error(t, err)
	assert.Zero(t, products.decrements, "stock untouched when the order insert fails")
}

func TestPlaceStockFailureIsSwallowed(t *testing.T) {
	engine, _, orderStore, products := newFixture()
	products.err = errors.New("unknown product reference")

	order, err := engine.Place(context.Background(), validRequest())
	require.NoError(t, err, "a failed stock adjustment must not fail the placement")
	assert.NotEmpty(t, order.ID)
	assert.Len(t, orderStore.inserted, 1, "the order stays created")
}

func TestPlaceOfferLookupFailurePropagates(t *testing.T) {
	engine, offers, orderStore, _ := newFixture()
	offers.err = errors.New("connection reset")

	req := validRequest()
	req.OfferCode = "SAVE10"

	_, err := engine.Place(context.Background(), req)
	require.Error(t, err)
	assert.Empty(t, orderStore.inserted)
}

func TestPlaceEmptyItemsListIsAccepted(t *testing.T) {
	// Presence is validated, not contents: an explicit empty array passes.
	engine, _, _, _ := newFixture()

	req := validRequest()
	req.Items = []LineItem{}

	order, err := engine.Place(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, order.Items)
}
