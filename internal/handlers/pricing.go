package handlers

import (
	"math"

	"backend/internal/models"
)

// DeliveryFee is the flat fee added to every order. There is no distance
// or weight model.
const DeliveryFee = 2.00

func roundToCents(value float64) float64 {
	return math.Round(value*100) / 100
}

func orderSubtotal(items []models.OrderItem) float64 {
	subtotal := 0.0
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		subtotal += item.Price * float64(item.Quantity)
	}
	return roundToCents(subtotal)
}

func orderTotal(items []models.OrderItem) float64 {
	subtotal := orderSubtotal(items)
	if subtotal <= 0 {
		return 0
	}
	return roundToCents(subtotal + DeliveryFee)
}
