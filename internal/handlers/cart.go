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

	"backend/internal/models"
)

type cartItemRequest struct {
	ItemID string `json:"itemId" binding:"required"`
}

func userIDFromContext(c *gin.Context) (primitive.ObjectID, bool) {
	value, ok := c.Get("userId")
	if !ok {
		return primitive.NilObjectID, false
	}
	userID, ok := value.(primitive.ObjectID)
	return userID, ok
}

func loadUser(ctx context.Context, db *mongo.Database, userID primitive.ObjectID) (models.User, error) {
	var user models.User
	err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	return user, err
}

// AddToCart increments the quantity for one item in the user's stored
// cart. Each call adds exactly one unit.
func AddToCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/cart/add"
		defer handlePanic(c, route)

		userID, ok := userIDFromContext(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "Not Authorized. Login Again.")
			return
		}

		var req cartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}
		itemID := strings.TrimSpace(req.ItemID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := loadUser(ctx, db, userID)
		if err != nil {
			log.Println("[CART] [ERROR] user lookup failed:", err)
			respondWithError(c, http.StatusNotFound, route, "user not found")
			return
		}

		if user.CartData == nil {
			user.CartData = map[string]int{}
		}
		user.CartData[itemID]++

		if _, err := db.Collection("users").UpdateByID(ctx, userID, bson.M{
			"$set": bson.M{
				"cartData":  user.CartData,
				"updatedAt": time.Now(),
			},
		}); err != nil {
			log.Println("[CART] [ERROR] add failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Added To Cart"})
	}
}

// RemoveFromCart decrements the quantity for one item, floored at zero.
// The key stays in the map; zero quantities are treated as absent by every
// consumer.
func RemoveFromCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/cart/remove"
		defer handlePanic(c, route)

		userID, ok := userIDFromContext(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "Not Authorized. Login Again.")
			return
		}

		var req cartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}
		itemID := strings.TrimSpace(req.ItemID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := loadUser(ctx, db, userID)
		if err != nil {
			log.Println("[CART] [ERROR] user lookup failed:", err)
			respondWithError(c, http.StatusNotFound, route, "user not found")
			return
		}

		if qty, exists := user.CartData[itemID]; exists && qty > 0 {
			user.CartData[itemID] = qty - 1
		}

		if _, err := db.Collection("users").UpdateByID(ctx, userID, bson.M{
			"$set": bson.M{
				"cartData":  user.CartData,
				"updatedAt": time.Now(),
			},
		}); err != nil {
			log.Println("[CART] [ERROR] remove failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Removed From Cart"})
	}
}

// GetCart returns the authoritative server-side cart for the session.
func GetCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/cart/get"
		defer handlePanic(c, route)

		userID, ok := userIDFromContext(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "Not Authorized. Login Again.")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := loadUser(ctx, db, userID)
		if err != nil {
			log.Println("[CART] [ERROR] user lookup failed:", err)
			respondWithError(c, http.StatusNotFound, route, "user not found")
			return
		}

		cartData := user.CartData
		if cartData == nil {
			cartData = map[string]int{}
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "cartData": cartData})
	}
}
