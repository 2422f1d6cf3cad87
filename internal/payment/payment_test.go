package payment

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

func TestRedirectProviderBuildsVerifyURL(t *testing.T) {
	provider := NewRedirectProvider("http://localhost:5173")
	order := models.Order{ID: primitive.NewObjectID()}

	sessionURL, err := provider.CreateSession(context.Background(), order)
	if err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}

	if !strings.HasPrefix(sessionURL, "http://localhost:5173/verify?") {
		t.Fatalf("unexpected session url %q", sessionURL)
	}

	parsed, err := url.Parse(sessionURL)
	if err != nil {
		t.Fatalf("session url does not parse: %v", err)
	}
	query := parsed.Query()
	if query.Get("orderId") != order.ID.Hex() {
		t.Fatalf("expected orderId %s, got %s", order.ID.Hex(), query.Get("orderId"))
	}
	if query.Get("success") != "true" {
		t.Fatalf("expected success=true, got %s", query.Get("success"))
	}
	if query.Get("session") == "" {
		t.Fatal("expected a session id")
	}
}

func TestRedirectProviderRequiresOrderID(t *testing.T) {
	provider := NewRedirectProvider("http://localhost:5173")

	if _, err := provider.CreateSession(context.Background(), models.Order{}); err == nil {
		t.Fatal("expected error for order without id")
	}
}
