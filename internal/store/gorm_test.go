package store

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/orders"
)

func setupGormStore(t *testing.T) *Gorm {
	t.Helper()

	s, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	return s
}

func seedProduct(t *testing.T, s *Gorm, name string, price float64, stock int) string {
	t.Helper()

	row := productRow{Name: name, Price: price, Stock: stock, Category: "General"}
	require.NoError(t, s.db.Create(&row).Error)
	return strconv.FormatUint(uint64(row.ID), 10)
}

func stockOf(t *testing.T, s *Gorm, productID string) int {
	t.Helper()

	var row productRow
	require.NoError(t, s.db.First(&row, productID).Error)
	return row.Stock
}

func TestGormFindActive(t *testing.T) {
	s := setupGormStore(t)
	ctx := context.Background()

	require.NoError(t, s.db.Create(&offerRow{Code: "SAVE10", Type: "percentage", Value: 10, Active: true}).Error)
	require.NoError(t, s.db.Create(&offerRow{Code: "EXPIRED", Type: "fixed", Value: 5, Active: false}).Error)

	offer, err := s.FindActive(ctx, "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, "percentage", offer.Type)
	assert.Equal(t, 10.0, offer.Value)

	_, err = s.FindActive(ctx, "EXPIRED")
	assert.ErrorIs(t, err, orders.ErrNotFound, "inactive offers resolve like missing ones")

	_, err = s.FindActive(ctx, "NOSUCH")
	assert.ErrorIs(t, err, orders.ErrNotFound)
}

func TestGormInsertOrderWithItems(t *testing.T) {
	s := setupGormStore(t)

	id, err := s.Insert(context.Background(), &orders.Order{
		Customer: orders.Customer{Name: "John Doe", Phone: "+1234567890", Address: "123 Main St"},
		Items: []orders.LineItem{
			{ProductID: "1", Name: "Aspirin 100mg", Price: 5.99, Quantity: 2},
		},
		Subtotal: 11.98,
		Discount: 0,
		Total:    11.98,
		Status:   orders.StatusPending,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	var row orderRow
	require.NoError(t, s.db.Preload("Items").First(&row, id).Error)
	assert.Equal(t, "John Doe", row.CustomerName)
	assert.Equal(t, orders.StatusPending, row.Status)
	require.Len(t, row.Items, 1)
	assert.Equal(t, 2, row.Items[0].Quantity)
}

func TestGormDecrementStockAllowsNegative(t *testing.T) {
	s := setupGormStore(t)
	ctx := context.Background()

	first := seedProduct(t, s, "Aspirin 100mg", 5.99, 10)
	second := seedProduct(t, s, "Ibuprofen 200mg", 7.49, 1)

	require.NoError(t, s.DecrementStock(ctx, first, 3))
	require.NoError(t, s.DecrementStock(ctx, second, 2))

	assert.Equal(t, 7, stockOf(t, s, first))
	assert.Equal(t, -1, stockOf(t, s, second), "no floor is enforced on stock")
}

func TestGormDecrementStockUnknownProductIsNoOp(t *testing.T) {
	s := setupGormStore(t)

	err := s.DecrementStock(context.Background(), "99999", 1)
	assert.NoError(t, err, "adjustments are best-effort")
}

func TestEngineOverRelationalStore(t *testing.T) {
	s := setupGormStore(t)
	ctx := context.Background()

	require.NoError(t, s.db.Create(&offerRow{Code: "SAVE10", Type: "percentage", Value: 10, Active: true}).Error)
	first := seedProduct(t, s, "Aspirin 100mg", 5.99, 10)
	second := seedProduct(t, s, "Ibuprofen 200mg", 7.49, 1)

	engine := orders.NewEngine(s, s, s)

	subtotal := 100.0
	order, err := engine.Place(ctx, orders.Request{
		Customer: &orders.Customer{Name: "John Doe", Phone: "+1234567890", Address: "123 Main St"},
		Items: []orders.LineItem{
			{ProductID: first, Name: "Aspirin 100mg", Price: 5.99, Quantity: 3},
			{ProductID: second, Name: "Ibuprofen 200mg", Price: 7.49, Quantity: 2},
		},
		Total:     &subtotal,
		OfferCode: "save10",
	})
	require.NoError(t, err)

	assert.Equal(t, 10.0, order.Discount)
	assert.Equal(t, 90.0, order.Total)
	assert.Equal(t, orders.StatusPending, order.Status)

	assert.Equal(t, 7, stockOf(t, s, first))
	assert.Equal(t, -1, stockOf(t, s, second))

	var count int64
	require.NoError(t, s.db.Model(&orderRow{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
