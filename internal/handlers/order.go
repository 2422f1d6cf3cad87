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
	"backend/internal/payment"
)

/* =========================
   REQUEST DTOs
========================= */

type placeOrderItemRequest struct {
	ID       string `json:"_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
}

type placeOrderAddressRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Street    string `json:"street" binding:"required"`
	City      string `json:"city" binding:"required"`
	State     string `json:"state" binding:"required"`
	Zipcode   string `json:"zipcode" binding:"required"`
	Country   string `json:"country" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
}

type placeOrderRequest struct {
	Address placeOrderAddressRequest `json:"address" binding:"required"`
	Items   []placeOrderItemRequest  `json:"items" binding:"required"`
	Amount  float64                  `json:"amount"`
}

type verifyOrderRequest struct {
	OrderID string `json:"orderId" binding:"required"`
	Success string `json:"success" binding:"required"`
}

/* =========================
   BUSINESS ERRORS
========================= */

type foodNotFoundError struct {
	FoodID primitive.ObjectID
}

func (e foodNotFoundError) Error() string {
	return "food item not found"
}

type emptyOrderError struct{}

func (e emptyOrderError) Error() string {
	return "order has no items"
}

/* =========================
   PLACE ORDER
========================= */

// PlaceOrder materializes the cart into an order document: line items are
// re-priced from the catalog, the amount is recomputed server-side, the
// initial status entry is recorded, and the user's stored cart is cleared.
// The client-reported amount is never trusted.
func PlaceOrder(db *mongo.Database, provider payment.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/order/place"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		userID, ok := userIDFromContext(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "Not Authorized. Login Again.")
			return
		}

		var req placeOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if len(req.Items) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "order has no items")
			return
		}

		order, err := buildOrderFromRequest(req, userID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		session, err := db.Client().StartSession()
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer session.EndSession(ctx)

		var orderID primitive.ObjectID
		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			lines := make([]models.OrderItem, 0, len(order.Items))

			for _, item := range order.Items {
				var food models.FoodItem
				err := db.Collection("foods").FindOne(sessCtx, bson.M{"_id": item.FoodID}).Decode(&food)
				if err == mongo.ErrNoDocuments {
					return nil, foodNotFoundError{FoodID: item.FoodID}
				}
				if err != nil {
					return nil, err
				}

				lines = append(lines, models.OrderItem{
					FoodID:   item.FoodID,
					Name:     food.Name,
					Price:    food.Price,
					Image:    food.Image,
					Quantity: item.Quantity,
				})
			}

			order.Items = lines
			order.Amount = orderTotal(lines)
			if order.Amount <= 0 {
				return nil, emptyOrderError{}
			}

			res, err := db.Collection("orders").InsertOne(sessCtx, order)
			if err != nil {
				return nil, err
			}
			if id, ok := res.InsertedID.(primitive.ObjectID); ok {
				orderID = id
			}

			// checkout consumes the stored cart
			_, err = db.Collection("users").UpdateByID(sessCtx, userID, bson.M{
				"$set": bson.M{
					"cartData":  map[string]int{},
					"updatedAt": time.Now(),
				},
			})
			return nil, err
		})
		if err != nil {
			var notFoundErr foodNotFoundError
			if errors.As(err, &notFoundErr) {
				respondWithError(c, http.StatusBadRequest, route, "food item not found: "+notFoundErr.FoodID.Hex())
				return
			}
			var emptyErr emptyOrderError
			if errors.As(err, &emptyErr) {
				respondWithError(c, http.StatusBadRequest, route, "order amount must be greater than zero")
				return
			}
			log.Println("[ORDER] [ERROR] place failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		order.ID = orderID

		sessionURL, err := provider.CreateSession(c.Request.Context(), order)
		if err != nil {
			log.Println("[ORDER] [ERROR] payment session failed:", err)
			respondWithError(c, http.StatusBadGateway, route, "payment session could not be created")
			return
		}

		log.Println("[ORDER] [INFO] order created for user:", userID.Hex())
		c.JSON(http.StatusOK, gin.H{"success": true, "session_url": sessionURL})
	}
}

func buildOrderFromRequest(req placeOrderRequest, userID primitive.ObjectID) (models.Order, error) {
	items := make([]models.OrderItem, 0, len(req.Items))

	for _, item := range req.Items {
		foodID, err := primitive.ObjectIDFromHex(strings.TrimSpace(item.ID))
		if err != nil {
			return models.Order{}, errors.New("invalid item id")
		}

		if item.Quantity <= 0 {
			return models.Order{}, errors.New("quantity must be greater than zero")
		}

		items = append(items, models.OrderItem{
			FoodID:   foodID,
			Quantity: item.Quantity,
		})
	}

	now := time.Now()
	order := models.Order{
		UserID: userID,
		Items:  items,
		Address: models.OrderAddress{
			FirstName: strings.TrimSpace(req.Address.FirstName),
			LastName:  strings.TrimSpace(req.Address.LastName),
			Email:     strings.TrimSpace(req.Address.Email),
			Street:    strings.TrimSpace(req.Address.Street),
			City:      strings.TrimSpace(req.Address.City),
			State:     strings.TrimSpace(req.Address.State),
			Zipcode:   strings.TrimSpace(req.Address.Zipcode),
			Country:   strings.TrimSpace(req.Address.Country),
			Phone:     strings.TrimSpace(req.Address.Phone),
		},
		Date:      now,
		Payment:   false,
		CreatedAt: now,
	}

	if err := order.RecordStatus(models.InitialStatus, now); err != nil {
		return models.Order{}, err
	}

	return order, nil
}

/* =========================
   VERIFY PAYMENT
========================= */

// VerifyOrder is the redirect target of the payment flow. A successful
// payment marks the order paid; a failed one removes the order entirely.
func VerifyOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/order/verify"
		defer handlePanic(c, route)

		var req verifyOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		orderID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.OrderID))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid orderId")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if req.Success == "true" {
			res, err := db.Collection("orders").UpdateByID(ctx, orderID, bson.M{
				"$set": bson.M{
					"payment":   true,
					"updatedAt": time.Now(),
				},
			})
			if err != nil {
				log.Println("[ORDER] [ERROR] verify update failed:", err)
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
			if res.MatchedCount == 0 {
				respondWithError(c, http.StatusNotFound, route, "order not found")
				return
			}

			log.Println("[ORDER] [INFO] payment confirmed:", orderID.Hex())
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "Paid"})
			return
		}

		if _, err := db.Collection("orders").DeleteOne(ctx, bson.M{"_id": orderID}); err != nil {
			log.Println("[ORDER] [ERROR] verify delete failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[ORDER] [INFO] unpaid order removed:", orderID.Hex())
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Not Paid"})
	}
}

/* =========================
   USER ORDERS
========================= */

// UserOrders lists the session user's orders, newest first. The tracking
// view polls this endpoint to observe status progress.
func UserOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/order/userorders"
		defer handlePanic(c, route)

		userID, ok := userIDFromContext(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "Not Authorized. Login Again.")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, bson.M{"userId": userID}, findOptions)
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
