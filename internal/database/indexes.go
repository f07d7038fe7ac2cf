package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureOfferIndexes creates the unique offer code index. Codes are stored
// upper case, so uniqueness here is effectively case-insensitive.
func EnsureOfferIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	codeIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "code", Value: 1}},
		Options: options.Index().
			SetName("code_unique").
			SetUnique(true),
	}

	_, err := db.Collection("offers").Indexes().CreateOne(ctx, codeIndex)
	if err != nil {
		log.Println("EnsureOfferIndexes: code index error:", err)
		return err
	}
	return nil
}

// EnsureUserIndexes creates unique identity indexes for the unified users
// collection. Username is only set for staff and phone only for customers,
// hence the partial filters.
func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("users").Indexes()

	usernameIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "username", Value: 1}},
		Options: options.Index().
			SetName("username_unique").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{
				"username": bson.M{"$exists": true},
			}),
	}

	phoneIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "phone", Value: 1}},
		Options: options.Index().
			SetName("phone_unique").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{
				"phone": bson.M{"$exists": true},
			}),
	}

	_, err := indexes.CreateMany(ctx, []mongo.IndexModel{usernameIndex, phoneIndex})
	if err != nil {
		log.Println("EnsureUserIndexes: identity index error:", err)
		return err
	}
	return nil
}

// EnsureOrderIndexes backs the recency-sorted listings and the per-customer
// order history filter.
func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("orders").Indexes()

	createdAtIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "created_at", Value: -1}},
		Options: options.Index().SetName("created_at_desc"),
	}

	phoneIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "customer.phone", Value: 1}},
		Options: options.Index().SetName("customer_phone"),
	}

	_, err := indexes.CreateMany(ctx, []mongo.IndexModel{createdAtIndex, phoneIndex})
	if err != nil {
		log.Println("EnsureOrderIndexes: order index error:", err)
		return err
	}
	return nil
}
