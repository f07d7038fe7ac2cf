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

type CreateTestimonialRequest struct {
	CustomerName string `json:"customer_name" binding:"required"`
	Review       string `json:"review" binding:"required"`
	Rating       *int   `json:"rating"`
}

type UpdateTestimonialRequest struct {
	Approved *bool `json:"approved"`
	Rating   *int  `json:"rating"`
}

// GetTestimonials lists reviews. Approved ones only by default; admins pass
// ?approved=false to moderate pending submissions.
func GetTestimonials(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := bson.M{}
		if c.DefaultQuery("approved", "true") == "true" {
			filter["approved"] = true
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
		cursor, err := db.Collection("testimonials").Find(ctx, filter, opts)
		if err != nil {
			log.Println("[TESTIMONIAL] [ERROR] list failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		testimonials := []models.Testimonial{}
		if err := cursor.All(ctx, &testimonials); err != nil {
			log.Println("[TESTIMONIAL] [ERROR] decode failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, testimonials)
	}
}

// CreateTestimonial accepts a new review. Submissions start unapproved.
func CreateTestimonial(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateTestimonialRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		rating := 5
		if req.Rating != nil {
			rating = *req.Rating
		}

		testimonial := models.Testimonial{
			CustomerName: strings.TrimSpace(req.CustomerName),
			Review:       strings.TrimSpace(req.Review),
			Rating:       rating,
			Approved:     false,
			CreatedAt:    time.Now().UTC(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("testimonials").InsertOne(ctx, testimonial)
		if err != nil {
			log.Println("[TESTIMONIAL] [ERROR] insert failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		testimonial.ID, _ = res.InsertedID.(primitive.ObjectID)

		c.JSON(http.StatusCreated, testimonial)
	}
}

// UpdateTestimonial approves or rescores a review.
func UpdateTestimonial(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid testimonial id"})
			return
		}

		var req UpdateTestimonialRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		update := bson.M{}
		if req.Approved != nil {
			update["approved"] = *req.Approved
		}
		if req.Rating != nil {
			update["rating"] = *req.Rating
		}
		if len(update) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("testimonials").UpdateByID(ctx, id, bson.M{"$set": update})
		if err != nil {
			log.Println("[TESTIMONIAL] [ERROR] update failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "testimonial not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "testimonial updated"})
	}
}

// DeleteTestimonial removes a review.
func DeleteTestimonial(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid testimonial id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("testimonials").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			log.Println("[TESTIMONIAL] [ERROR] delete failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "testimonial not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "testimonial deleted"})
	}
}
