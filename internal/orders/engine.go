package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// ErrNotFound is returned by store implementations when a lookup matches no
// record.
var ErrNotFound = errors.New("not found")

// Offer is the engine's view of a promotional code resolved at order time.
type Offer struct {
	Code  string
	Type  string // "percentage" or "fixed"
	Value float64
}

// LineItem is a product snapshot supplied by the client. Unit price and name
// are copied into the order as-is; the catalog is not consulted.
type LineItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Customer is the contact snapshot embedded in a placed order.
type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Request is the order placement payload. Total carries the client-supplied
// subtotal; it is stored as such and never recomputed from the items.
type Request struct {
	Customer  *Customer  `json:"customer"`
	Items     []LineItem `json:"items"`
	Total     *float64   `json:"total"`
	OfferCode string     `json:"offer_code"`
}

// Order is the finalized order returned to the caller after placement.
type Order struct {
	ID        string     `json:"id"`
	Customer  Customer   `json:"customer"`
	Items     []LineItem `json:"items"`
	Subtotal  float64    `json:"subtotal"`
	Discount  float64    `json:"discount"`
	Total     float64    `json:"total"`
	OfferCode string     `json:"offer_code,omitempty"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// StatusPending is the status every order is created with.
const StatusPending = "pending"

// OfferStore resolves promotional codes. Inactive offers are treated as
// nonexistent: implementations must return ErrNotFound for them.
type OfferStore interface {
	FindActive(ctx context.Context, code string) (*Offer, error)
}

// OrderStore persists finalized orders and returns the generated identifier.
type OrderStore interface {
	Insert(ctx context.Context, order *Order) (string, error)
}

// ProductStore adjusts product stock. Decrements must be atomic on the stock
// field but are not checked against a minimum; stock may go negative.
type ProductStore interface {
	DecrementStock(ctx context.Context, productID string, quantity int) error
}

// ValidationError rejects a request before any storage access. Missing lists
// the absent required fields.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// Engine runs the order placement sequence: validate, resolve offer, compute
// discount, persist, adjust stock. The order insert must succeed before any
// stock mutation is attempted; stock adjustments after it are best-effort.
type Engine struct {
	offers   OfferStore
	orders   OrderStore
	products ProductStore
}

func NewEngine(offers OfferStore, orders OrderStore, products ProductStore) *Engine {
	return &Engine{offers: offers, orders: orders, products: products}
}

// NormalizeCode maps an offer code to its canonical stored form. Applied on
// both write and lookup so client casing never affects matching.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (r Request) validate() error {
	var missing []string

	if r.Customer == nil {
		missing = append(missing, "customer")
	} else {
		if strings.TrimSpace(r.Customer.Name) == "" {
			missing = append(missing, "customer.name")
		}
		if strings.TrimSpace(r.Customer.Phone) == "" {
			missing = append(missing, "customer.phone")
		}
		if strings.TrimSpace(r.Customer.Address) == "" {
			missing = append(missing, "customer.address")
		}
	}
	if r.Items == nil {
		missing = append(missing, "items")
	}
	if r.Total == nil {
		missing = append(missing, "total")
	}

	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// Place creates an order from req. An unknown or inactive offer code is not
// an error; it simply yields no discount. A storage failure while persisting
// the order aborts placement, while a failed stock decrement afterwards is
// logged and swallowed: the order stays created.
func (e *Engine) Place(ctx context.Context, req Request) (Order, error) {
	if err := req.validate(); err != nil {
		return Order{}, err
	}

	code := NormalizeCode(req.OfferCode)

	var offer *Offer
	if code != "" {
		found, err := e.offers.FindActive(ctx, code)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return Order{}, fmt.Errorf("offer lookup: %w", err)
		}
		offer = found
	}

	subtotal := *req.Total
	discount, total := computeDiscount(offer, subtotal)

	order := Order{
		Customer:  *req.Customer,
		Items:     req.Items,
		Subtotal:  subtotal,
		Discount:  discount,
		Total:     total,
		OfferCode: code,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}

	id, err := e.orders.Insert(ctx, &order)
	if err != nil {
		return Order{}, fmt.Errorf("persist order: %w", err)
	}
	order.ID = id

	for _, item := range order.Items {
		if err := e.products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			log.Printf("[ORDER] [WARN] stock adjustment failed for product %s (order %s): %v", item.ProductID, order.ID, err)
		}
	}

	return order, nil
}
