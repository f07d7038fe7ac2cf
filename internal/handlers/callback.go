package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

type CreateCallbackRequest struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Email    string `json:"email"`
	Medicine string `json:"medicine"`
	Message  string `json:"message"`
}

type UpdateCallbackRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateCallbackRequest records a request to be called back by the pharmacy.
func CreateCallback(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateCallbackRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		cb := models.CallbackRequest{
			Name:      strings.TrimSpace(req.Name),
			Phone:     strings.TrimSpace(req.Phone),
			Email:     strings.TrimSpace(req.Email),
			Medicine:  strings.TrimSpace(req.Medicine),
			Message:   strings.TrimSpace(req.Message),
			Status:    models.CallbackStatusPending,
			CreatedAt: time.Now().UTC(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("callback_requests").InsertOne(ctx, cb)
		if err != nil {
			log.Println("[CALLBACK] [ERROR] insert failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		cb.ID, _ = res.InsertedID.(primitive.ObjectID)

		log.Println("[CALLBACK] [INFO] callback requested by", cb.Phone)
		c.JSON(http.StatusCreated, cb)
	}
}

// GetCallbacks lists callback requests, newest first, optionally filtered by
// status.
func GetCallbacks(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := bson.M{}
		if status := c.Query("status"); status != "" {
			filter["status"] = status
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
		cursor, err := db.Collection("callback_requests").Find(ctx, filter, opts)
		if err != nil {
			log.Println("[CALLBACK] [ERROR] list failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		callbacks := []models.CallbackRequest{}
		if err := cursor.All(ctx, &callbacks); err != nil {
			log.Println("[CALLBACK] [ERROR] decode failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, callbacks)
	}
}

// UpdateCallback moves a callback request through its status workflow.
func UpdateCallback(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid callback id"})
			return
		}

		var req UpdateCallbackRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if !models.ValidCallbackStatus(req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("callback_requests").UpdateByID(ctx, id, bson.M{
			"$set": bson.M{"status": req.Status},
		})
		if err != nil {
			log.Println("[CALLBACK] [ERROR] update failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "callback request not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "callback request updated"})
	}
}
