package models

import "strings"

// Status is the order lifecycle state. Values are stored verbatim in the
// order document and compared case-insensitively on input.
type Status string

const (
	StatusOrderConfirmed Status = "Order Confirmed"
	StatusFoodProcessing Status = "Food Processing"
	StatusReadyForPickup Status = "Ready for Pickup"
	StatusOutForDelivery Status = "Out for delivery"
	StatusDelivered      Status = "Delivered"
	StatusCancelled      Status = "Cancelled"
)

// InitialStatus is the canonical state every new order starts in. It must
// stay in sync with the first entry of Progression.
const InitialStatus = StatusOrderConfirmed

// Progression returns the delivery stages in order, excluding Cancelled.
func Progression() []Status {
	return []Status{
		StatusOrderConfirmed,
		StatusFoodProcessing,
		StatusReadyForPickup,
		StatusOutForDelivery,
		StatusDelivered,
	}
}

// ParseStatus resolves a raw string to a known Status, ignoring case and
// surrounding whitespace.
func ParseStatus(raw string) (Status, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, status := range allStatuses() {
		if strings.EqualFold(trimmed, string(status)) {
			return status, true
		}
	}
	return "", false
}

// Equals compares a stored status string against a canonical status,
// ignoring case.
func (s Status) Equals(other Status) bool {
	return strings.EqualFold(string(s), string(other))
}

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	return s.Equals(StatusDelivered) || s.Equals(StatusCancelled)
}

// CanTransition reports whether an admin may move an order from one status
// to another. Terminal states reject every exit; Cancelled is reachable
// from any non-terminal state; moves between non-terminal states are
// otherwise unrestricted so an admin can correct a mistaken update.
func CanTransition(from, to Status) bool {
	if _, ok := ParseStatus(string(to)); !ok {
		return false
	}
	if from.IsTerminal() {
		return false
	}
	return true
}

func allStatuses() []Status {
	return append(Progression(), StatusCancelled)
}
