package models

import (
	"errors"
	"testing"
	"time"
)

func TestParseStatusIgnoresCase(t *testing.T) {
	tests := map[string]Status{
		"order confirmed":    StatusOrderConfirmed,
		"FOOD PROCESSING":    StatusFoodProcessing,
		" Out for Delivery ": StatusOutForDelivery,
		"cancelled":          StatusCancelled,
	}
	for raw, want := range tests {
		got, ok := ParseStatus(raw)
		if !ok || got != want {
			t.Fatalf("ParseStatus(%q) = %q, %v; want %q", raw, got, ok, want)
		}
	}

	if _, ok := ParseStatus("shipped"); ok {
		t.Fatal("expected unknown status to be rejected")
	}
}

func TestCanTransitionRejectsTerminalExits(t *testing.T) {
	for _, terminal := range []Status{StatusDelivered, StatusCancelled} {
		for _, next := range append(Progression(), StatusCancelled) {
			if CanTransition(terminal, next) {
				t.Fatalf("expected transition %q -> %q to be rejected", terminal, next)
			}
		}
	}
}

func TestCanTransitionAllowsCancelFromAnyNonTerminal(t *testing.T) {
	for _, from := range []Status{StatusOrderConfirmed, StatusFoodProcessing, StatusReadyForPickup, StatusOutForDelivery} {
		if !CanTransition(from, StatusCancelled) {
			t.Fatalf("expected %q -> Cancelled to be allowed", from)
		}
	}
}

func TestRecordStatusSeedsHistoryOnCreation(t *testing.T) {
	now := time.Now()
	order := Order{}

	if err := order.RecordStatus(InitialStatus, now); err != nil {
		t.Fatalf("RecordStatus returned error: %v", err)
	}

	if order.Status != InitialStatus {
		t.Fatalf("expected status %q, got %q", InitialStatus, order.Status)
	}
	if len(order.TrackingHistory) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(order.TrackingHistory))
	}
	if order.TrackingHistory[0].Status != InitialStatus {
		t.Fatalf("expected history entry %q, got %q", InitialStatus, order.TrackingHistory[0].Status)
	}
}

func TestRecordStatusKeepsHistoryTailInSync(t *testing.T) {
	now := time.Now()
	order := Order{}
	sequence := []Status{InitialStatus, StatusFoodProcessing, StatusOutForDelivery, StatusDelivered}

	for i, status := range sequence {
		if err := order.RecordStatus(status, now.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("RecordStatus(%q) returned error: %v", status, err)
		}
		last := order.TrackingHistory[len(order.TrackingHistory)-1]
		if last.Status != order.Status {
			t.Fatalf("history tail %q does not match status %q", last.Status, order.Status)
		}
	}

	if len(order.TrackingHistory) != len(sequence) {
		t.Fatalf("expected %d history entries, got %d", len(sequence), len(order.TrackingHistory))
	}
}

func TestRecordStatusRejectsTerminalExit(t *testing.T) {
	now := time.Now()
	order := Order{}
	if err := order.RecordStatus(StatusDelivered, now); err != nil {
		t.Fatalf("RecordStatus returned error: %v", err)
	}

	err := order.RecordStatus(StatusFoodProcessing, now)
	var transitionErr InvalidTransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if transitionErr.From != StatusDelivered || transitionErr.To != StatusFoodProcessing {
		t.Fatalf("unexpected error detail: %+v", transitionErr)
	}
	if len(order.TrackingHistory) != 1 {
		t.Fatalf("rejected transition must not touch history, got %d entries", len(order.TrackingHistory))
	}
}

func TestRecordStatusSameStatusDoesNotAppend(t *testing.T) {
	now := time.Now()
	order := Order{}
	if err := order.RecordStatus(StatusFoodProcessing, now); err != nil {
		t.Fatalf("RecordStatus returned error: %v", err)
	}
	if err := order.RecordStatus(StatusFoodProcessing, now.Add(time.Minute)); err != nil {
		t.Fatalf("RecordStatus returned error: %v", err)
	}
	if len(order.TrackingHistory) != 1 {
		t.Fatalf("expected history to stay at 1 entry, got %d", len(order.TrackingHistory))
	}
}
