package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
	"backend/internal/orders"
)

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateOrder places an order through the placement engine: it validates the
// payload, applies any offer code and persists the order before adjusting
// stock counters.
func CreateOrder(engine *orders.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "ORDER")

		var req orders.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
			return
		}

		order, err := engine.Place(c.Request.Context(), req)
		if err != nil {
			var verr *orders.ValidationError
			if errors.As(err, &verr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":   "validation failed",
					"details": verr.Missing,
				})
				return
			}
			log.Println("[ORDER] [ERROR] order placement failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "order placement failed"})
			return
		}

		log.Println("[ORDER] [INFO] order placed:", order.ID, "total:", order.Total)
		c.JSON(http.StatusCreated, order)
	}
}

// GetOrders lists orders, newest first, optionally filtered by customer phone.
func GetOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, "ORDER", "database unavailable")
			return
		}

		filter := bson.M{}
		if phone := c.Query("phone"); phone != "" {
			filter["customer.phone"] = phone
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, filter, opts)
		if err != nil {
			log.Println("[ORDER] [ERROR] list orders failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		results := []models.Order{}
		if err := cursor.All(ctx, &results); err != nil {
			log.Println("[ORDER] [ERROR] decode orders failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, results)
	}
}

// GetOrder returns a single order by id.
func GetOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

// UpdateOrderStatus moves an order to a new status. Any transition between
// valid statuses is allowed.
func UpdateOrderStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
			return
		}

		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if !models.ValidOrderStatus(req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		now := time.Now().UTC()
		res, err := db.Collection("orders").UpdateByID(ctx, id, bson.M{
			"$set": bson.M{"status": req.Status, "updated_at": now},
		})
		if err != nil {
			log.Println("[ORDER] [ERROR] update status failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
			c.JSON(http.StatusOK, gin.H{"message": "status updated"})
			return
		}

		log.Println("[ORDER] [INFO] order", id.Hex(), "moved to", req.Status)
		c.JSON(http.StatusOK, order)
	}
}
