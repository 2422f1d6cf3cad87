package handlers

import (
	"context"
	"errors"
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

type updateStatusRequest struct {
	OrderID string `json:"orderId" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

// ListOrders returns every order for the admin panel, newest first.
func ListOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/order/list"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, bson.M{}, findOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": orders})
	}
}

// UpdateStatus advances an order's status. The transition is validated
// against the lifecycle rules and every accepted change appends one
// history entry; the history is the only record the tracking view reads.
func UpdateStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/order/status"
		defer handlePanic(c, route)

		var req updateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		orderID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.OrderID))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid orderId")
			return
		}

		next, ok := models.ParseStatus(req.Status)
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "unknown status: "+req.Status)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "order not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		previousEntries := len(order.TrackingHistory)
		if err := order.RecordStatus(next, time.Now()); err != nil {
			var transitionErr models.InvalidTransitionError
			if errors.As(err, &transitionErr) {
				respondWithError(c, http.StatusBadRequest, route, transitionErr.Error())
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "status update failed")
			return
		}

		if len(order.TrackingHistory) == previousEntries {
			// same status, nothing to persist
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "Status Updated"})
			return
		}

		entry := order.TrackingHistory[len(order.TrackingHistory)-1]
		_, err = db.Collection("orders").UpdateByID(ctx, orderID, bson.M{
			"$set": bson.M{
				"status":    order.Status,
				"updatedAt": order.UpdatedAt,
			},
			"$push": bson.M{"trackingHistory": entry},
		})
		if err != nil {
			log.Println("[ORDER] [ERROR] status update failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Printf("[ORDER] [INFO] status of %s set to %q", orderID.Hex(), order.Status)
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Status Updated"})
	}
}
