package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
	"backend/internal/orders"
)

// Mongo backs the order placement engine with the document store. It is the
// primary implementation; the same collections are read directly by the HTTP
// handlers for everything outside the placement path.
type Mongo struct {
	db *mongo.Database
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{db: db}
}

// FindActive resolves a stored offer by exact code match, restricted to
// active offers. An inactive offer is indistinguishable from a missing one.
func (s *Mongo) FindActive(ctx context.Context, code string) (*orders.Offer, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var offer models.Offer
	err := s.db.Collection("offers").FindOne(ctx, bson.M{
		"code":   code,
		"active": true,
	}).Decode(&offer)
	if err == mongo.ErrNoDocuments {
		return nil, orders.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &orders.Offer{Code: offer.Code, Type: offer.Type, Value: offer.Value}, nil
}

// Insert persists a finalized order and returns its generated identifier.
func (s *Mongo) Insert(ctx context.Context, order *orders.Order) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	items := make([]models.OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	doc := models.Order{
		ID:        primitive.NewObjectID(),
		Customer:  models.OrderCustomer(order.Customer),
		Items:     items,
		Subtotal:  order.Subtotal,
		Discount:  order.Discount,
		Total:     order.Total,
		OfferCode: order.OfferCode,
		Status:    order.Status,
		CreatedAt: order.CreatedAt,
	}

	if _, err := s.db.Collection("orders").InsertOne(ctx, doc); err != nil {
		return "", err
	}
	return doc.ID.Hex(), nil
}

// DecrementStock applies an atomic $inc to the product's stock counter. The
// match result is deliberately not checked: adjustments are best-effort and
// an unknown product reference is a no-op here.
func (s *Mongo) DecrementStock(ctx context.Context, productID string, quantity int) error {
	id, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err = s.db.Collection("products").UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"stock": -quantity}},
	)
	return err
}
