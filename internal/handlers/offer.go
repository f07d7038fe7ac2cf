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
	"backend/internal/orders"
)

type CreateOfferRequest struct {
	Code        string   `json:"code" binding:"required"`
	Type        string   `json:"type" binding:"required"`
	Value       *float64 `json:"value" binding:"required"`
	Description string   `json:"description"`
	Active      *bool    `json:"active"`
}

type UpdateOfferRequest struct {
	Type        *string  `json:"type"`
	Value       *float64 `json:"value"`
	Description *string  `json:"description"`
	Active      *bool    `json:"active"`
}

func validOfferType(t string) bool {
	return t == models.OfferTypePercentage || t == models.OfferTypeFixed
}

// GetOffers lists offers. By default only active ones are returned; pass
// ?active=false to include every offer.
func GetOffers(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := bson.M{}
		if c.DefaultQuery("active", "true") == "true" {
			filter["active"] = true
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "code", Value: 1}})
		cursor, err := db.Collection("offers").Find(ctx, filter, opts)
		if err != nil {
			log.Println("[OFFER] [ERROR] list offers failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		offers := []models.Offer{}
		if err := cursor.All(ctx, &offers); err != nil {
			log.Println("[OFFER] [ERROR] decode offers failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, offers)
	}
}

// GetOffer looks up an active offer by code, case insensitively.
func GetOffer(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := orders.NormalizeCode(c.Param("code"))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var offer models.Offer
		err := db.Collection("offers").FindOne(ctx, bson.M{"code": code, "active": true}).Decode(&offer)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "offer not found"})
			return
		}

		c.JSON(http.StatusOK, offer)
	}
}

// CreateOffer adds a promotional code. Codes are stored upper case so lookup
// at order time is case insensitive.
func CreateOffer(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateOfferRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if !validOfferType(req.Type) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "type must be percentage or fixed"})
			return
		}

		code := orders.NormalizeCode(req.Code)
		if code == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("offers").CountDocuments(ctx, bson.M{"code": code})
		if err != nil {
			log.Println("[OFFER] [ERROR] create offer db error:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if count > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "offer code already exists"})
			return
		}

		active := true
		if req.Active != nil {
			active = *req.Active
		}

		now := time.Now().UTC()
		offer := models.Offer{
			Code:        code,
			Type:        req.Type,
			Value:       *req.Value,
			Description: strings.TrimSpace(req.Description),
			Active:      active,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		res, err := db.Collection("offers").InsertOne(ctx, offer)
		if err != nil {
			log.Println("[OFFER] [ERROR] create offer insert failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		offer.ID, _ = res.InsertedID.(primitive.ObjectID)

		log.Println("[OFFER] [INFO] offer created:", code)
		c.JSON(http.StatusCreated, offer)
	}
}

// UpdateOffer applies a partial update to an offer. The code itself is
// immutable; deactivate and create a new offer instead.
func UpdateOffer(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offer id"})
			return
		}

		var req UpdateOfferRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		update := bson.M{}
		if req.Type != nil {
			if !validOfferType(*req.Type) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "type must be percentage or fixed"})
				return
			}
			update["type"] = *req.Type
		}
		if req.Value != nil {
			update["value"] = *req.Value
		}
		if req.Description != nil {
			update["description"] = strings.TrimSpace(*req.Description)
		}
		if req.Active != nil {
			update["active"] = *req.Active
		}
		if len(update) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}
		update["updated_at"] = time.Now().UTC()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("offers").UpdateByID(ctx, id, bson.M{"$set": update})
		if err != nil {
			log.Println("[OFFER] [ERROR] update offer failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "offer not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "offer updated"})
	}
}

// DeleteOffer removes an offer.
func DeleteOffer(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offer id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("offers").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			log.Println("[OFFER] [ERROR] delete offer failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "offer not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "offer deleted"})
	}
}
