// Package tracking derives the 5-stage progress timeline shown for an
// order. It is pure: everything is computed from the order document.
package tracking

import (
	"time"

	"backend/internal/models"
)

// Stage is one canonical checkpoint of the delivery timeline.
type Stage struct {
	Name      string     `json:"name"`
	Completed bool       `json:"completed"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// IsCancelled reports whether the order ended in the cancelled branch,
// either by current status or anywhere in its history.
func IsCancelled(order models.Order) bool {
	if order.Status.Equals(models.StatusCancelled) {
		return true
	}
	for _, entry := range order.TrackingHistory {
		if entry.Status.Equals(models.StatusCancelled) {
			return true
		}
	}
	return false
}

// DeriveStages maps an order onto the canonical stage list. When the
// order carries a tracking history the stages are matched against it
// (case-insensitive) and keep their recorded timestamps; otherwise
// completion is inferred from the current status' position in the
// progression. A cancelled order completes no stages.
func DeriveStages(order models.Order) []Stage {
	progression := models.Progression()
	cancelled := IsCancelled(order)

	if len(order.TrackingHistory) > 0 {
		stages := make([]Stage, 0, len(progression))
		for _, status := range progression {
			stage := Stage{Name: string(status)}
			for _, entry := range order.TrackingHistory {
				if entry.Status.Equals(status) {
					ts := entry.Timestamp
					stage.Completed = !cancelled
					stage.Timestamp = &ts
					break
				}
			}
			stages = append(stages, stage)
		}
		return stages
	}

	currentIndex := -1
	for i, status := range progression {
		if order.Status.Equals(status) {
			currentIndex = i
			break
		}
	}

	stages := make([]Stage, 0, len(progression))
	for i, status := range progression {
		stage := Stage{Name: string(status)}
		if !cancelled && currentIndex >= i {
			stage.Completed = true
			switch {
			case i == 0:
				ts := order.CreatedAt
				stage.Timestamp = &ts
			case i == currentIndex:
				ts := order.UpdatedAt
				stage.Timestamp = &ts
			}
		}
		stages = append(stages, stage)
	}
	return stages
}

// CompletedCount counts the completed stages.
func CompletedCount(stages []Stage) int {
	count := 0
	for _, stage := range stages {
		if stage.Completed {
			count++
		}
	}
	return count
}

// ProgressPercent is the progress bar value. Cancelled orders report a
// full bar; the caller renders it in the cancelled treatment instead of
// the completion one.
func ProgressPercent(order models.Order) float64 {
	if IsCancelled(order) {
		return 100
	}
	stages := DeriveStages(order)
	return float64(CompletedCount(stages)) / float64(len(stages)) * 100
}

// StatusLabel maps a status to its customer-facing text.
func StatusLabel(status models.Status) string {
	switch {
	case status.Equals(models.StatusCancelled):
		return "Order Cancelled"
	case status.Equals(models.StatusDelivered):
		return "Delivered Successfully"
	case status.Equals(models.StatusOutForDelivery):
		return "Out for Delivery"
	case status.Equals(models.StatusReadyForPickup):
		return "Ready for Pickup"
	case status.Equals(models.StatusFoodProcessing):
		return "Food is Being Prepared"
	default:
		return "Order Received"
	}
}
