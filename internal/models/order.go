package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderItem is a denormalized snapshot of a catalog entry at order time.
// The catalog may change or lose the item afterwards; the order keeps the
// price and name it was sold at.
type OrderItem struct {
	FoodID   primitive.ObjectID `bson:"foodId" json:"foodId"`
	Name     string             `bson:"name" json:"name"`
	Price    float64            `bson:"price" json:"price"`
	Image    string             `bson:"image,omitempty" json:"image,omitempty"`
	Quantity int                `bson:"quantity" json:"quantity"`
}

// OrderAddress is the delivery address captured at checkout.
type OrderAddress struct {
	FirstName string `bson:"firstName" json:"firstName"`
	LastName  string `bson:"lastName" json:"lastName"`
	Email     string `bson:"email" json:"email"`
	Street    string `bson:"street" json:"street"`
	City      string `bson:"city" json:"city"`
	State     string `bson:"state" json:"state"`
	Zipcode   string `bson:"zipcode" json:"zipcode"`
	Country   string `bson:"country" json:"country"`
	Phone     string `bson:"phone" json:"phone"`
}

// TrackingEntry is one append-only history record of a status change.
type TrackingEntry struct {
	Status    Status    `bson:"status" json:"status"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Order is the persisted purchase record. Items and address are immutable
// once created; only Status (via RecordStatus) and Payment change.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	Items           []OrderItem        `bson:"items" json:"items"`
	Amount          float64            `bson:"amount" json:"amount"`
	Address         OrderAddress       `bson:"address" json:"address"`
	Status          Status             `bson:"status" json:"status"`
	Date            time.Time          `bson:"date" json:"date"`
	Payment         bool               `bson:"payment" json:"payment"`
	TrackingHistory []TrackingEntry    `bson:"trackingHistory" json:"trackingHistory"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// InvalidTransitionError reports a rejected status change.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot change order status from %q to %q", e.From, e.To)
}

// RecordStatus applies a status change and appends the matching history
// entry, keeping the invariant that the last history entry always equals
// the current status. The first call on a fresh order (empty status) seeds
// the history; later calls validate the transition.
func (o *Order) RecordStatus(next Status, at time.Time) error {
	if o.Status != "" {
		if !CanTransition(o.Status, next) {
			return InvalidTransitionError{From: o.Status, To: next}
		}
		if o.Status.Equals(next) {
			return nil
		}
	}

	o.Status = next
	o.UpdatedAt = at
	o.TrackingHistory = append(o.TrackingHistory, TrackingEntry{
		Status:    next,
		Timestamp: at,
	})
	return nil
}
