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

type removeFoodRequest struct {
	ID string `json:"id" binding:"required"`
}

/*
GET /api/food/list
- page + limit are optional; without them the full catalog is returned
- category and search narrow the result
*/
func ListFood(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/food/list"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		filter := bson.M{}

		if category := strings.TrimSpace(c.Query("category")); category != "" {
			filter["category"] = category
		}

		if search := strings.TrimSpace(c.Query("search")); search != "" {
			filter["name"] = bson.M{"$regex": search, "$options": "i"}
		}

		findOptions := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		pageStr := c.Query("page")
		limitStr := c.Query("limit")

		if pageStr != "" && limitStr != "" {
			page, limit, err := parsePaginationParams(pageStr, limitStr)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid pagination params")
				return
			}

			findOptions.
				SetSkip((page - 1) * limit).
				SetLimit(limit)
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("foods").Find(ctx, filter, findOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		foods := make([]models.FoodItem, 0)
		if err := cursor.All(ctx, &foods); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		log.Printf("[%s] returning %d food items", route, len(foods))
		c.JSON(http.StatusOK, gin.H{"success": true, "data": foods})
	}
}

// AddFood creates a catalog entry from a multipart form (admin panel sends
// the image alongside the fields).
func AddFood(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/food/add"
		defer handlePanic(c, route)

		input, err := parseMultipartFoodRequest(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		if input.Name == "" || input.Category == "" {
			respondWithError(c, http.StatusBadRequest, route, "name and category are required")
			return
		}
		if input.Price <= 0 {
			respondWithError(c, http.StatusBadRequest, route, "price must be greater than 0")
			return
		}

		food := models.FoodItem{
			Name:        input.Name,
			Description: input.Description,
			Price:       input.Price,
			Category:    input.Category,
			Image:       input.ImagePath,
			CreatedAt:   time.Now(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if _, err := db.Collection("foods").InsertOne(ctx, food); err != nil {
			log.Println("[FOOD] [ERROR] insert failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[FOOD] [INFO] food added:", food.Name)
		c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Food Added"})
	}
}

// RemoveFood deletes a catalog entry and its stored image. Orders keep
// their denormalized snapshots; carts referencing the id simply stop
// contributing to totals.
func RemoveFood(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/food/remove"
		defer handlePanic(c, route)

		var req removeFoodRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		foodID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.ID))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var food models.FoodItem
		if err := db.Collection("foods").FindOne(ctx, bson.M{"_id": foodID}).Decode(&food); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "food not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if _, err := db.Collection("foods").DeleteOne(ctx, bson.M{"_id": foodID}); err != nil {
			log.Println("[FOOD] [ERROR] delete failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if err := safeDeleteUpload(food.Image); err != nil {
			log.Println("[FOOD] [ERROR] image cleanup failed:", err)
		}

		log.Println("[FOOD] [INFO] food removed:", foodID.Hex())
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Food Removed"})
	}
}
