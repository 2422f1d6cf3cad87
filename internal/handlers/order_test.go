package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

func validAddressRequest() placeOrderAddressRequest {
	return placeOrderAddressRequest{
		FirstName: "Jamie",
		LastName:  "Rivera",
		Email:     "jamie@example.com",
		Street:    "1 Main St",
		City:      "Springfield",
		State:     "IL",
		Zipcode:   "62701",
		Country:   "USA",
		Phone:     "217-555-0134",
	}
}

func TestBuildOrderFromRequestSeedsInitialStatus(t *testing.T) {
	userID := primitive.NewObjectID()
	req := placeOrderRequest{
		Address: validAddressRequest(),
		Items: []placeOrderItemRequest{
			{ID: primitive.NewObjectID().Hex(), Quantity: 2},
		},
	}

	order, err := buildOrderFromRequest(req, userID)
	if err != nil {
		t.Fatalf("buildOrderFromRequest returned error: %v", err)
	}

	if order.Status != models.InitialStatus {
		t.Fatalf("expected initial status %q, got %q", models.InitialStatus, order.Status)
	}
	if len(order.TrackingHistory) != 1 {
		t.Fatalf("expected 1 history entry at creation, got %d", len(order.TrackingHistory))
	}
	if order.TrackingHistory[0].Status != order.Status {
		t.Fatal("expected history tail to match status")
	}
	if order.UserID != userID {
		t.Fatal("expected order to belong to the session user")
	}
	if order.Payment {
		t.Fatal("expected new order to be unpaid")
	}
}

func TestBuildOrderFromRequestRejectsInvalidItemID(t *testing.T) {
	req := placeOrderRequest{
		Address: validAddressRequest(),
		Items:   []placeOrderItemRequest{{ID: "not-an-id", Quantity: 1}},
	}

	if _, err := buildOrderFromRequest(req, primitive.NewObjectID()); err == nil {
		t.Fatal("expected error for invalid item id")
	}
}

func TestBuildOrderFromRequestRejectsNonPositiveQuantity(t *testing.T) {
	for _, quantity := range []int{0, -1} {
		req := placeOrderRequest{
			Address: validAddressRequest(),
			Items: []placeOrderItemRequest{
				{ID: primitive.NewObjectID().Hex(), Quantity: quantity},
			},
		}
		if _, err := buildOrderFromRequest(req, primitive.NewObjectID()); err == nil {
			t.Fatalf("expected error for quantity %d", quantity)
		}
	}
}
