package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

// GetStats returns the admin dashboard numbers: order counts, revenue over
// non-cancelled orders and the five most recent orders.
func GetStats(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, "STATS", "database unavailable")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		ordersColl := db.Collection("orders")

		totalProducts, err := db.Collection("products").CountDocuments(ctx, bson.M{})
		if err != nil {
			log.Println("[STATS] [ERROR] count products failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		totalOrders, err := ordersColl.CountDocuments(ctx, bson.M{})
		if err != nil {
			log.Println("[STATS] [ERROR] count orders failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		pendingOrders, err := ordersColl.CountDocuments(ctx, bson.M{"status": models.OrderStatusPending})
		if err != nil {
			log.Println("[STATS] [ERROR] count pending failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		pipeline := mongo.Pipeline{
			{{Key: "$match", Value: bson.M{"status": bson.M{"$ne": models.OrderStatusCancelled}}}},
			{{Key: "$group", Value: bson.M{"_id": nil, "revenue": bson.M{"$sum": "$total"}}}},
		}
		cursor, err := ordersColl.Aggregate(ctx, pipeline)
		if err != nil {
			log.Println("[STATS] [ERROR] revenue aggregation failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		var revenueRows []struct {
			Revenue float64 `bson:"revenue"`
		}
		if err := cursor.All(ctx, &revenueRows); err != nil {
			log.Println("[STATS] [ERROR] revenue decode failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		revenue := 0.0
		if len(revenueRows) > 0 {
			revenue = revenueRows[0].Revenue
		}

		opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(5)
		recentCursor, err := ordersColl.Find(ctx, bson.M{}, opts)
		if err != nil {
			log.Println("[STATS] [ERROR] recent orders failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer recentCursor.Close(ctx)

		recent := []models.Order{}
		if err := recentCursor.All(ctx, &recent); err != nil {
			log.Println("[STATS] [ERROR] recent orders decode failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"total_products": totalProducts,
			"total_orders":   totalOrders,
			"pending_orders": pendingOrders,
			"revenue":        revenue,
			"recent_orders":  recent,
		})
	}
}
