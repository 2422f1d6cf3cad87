package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

func validAddress() models.OrderAddress {
	return models.OrderAddress{
		FirstName: "Jamie",
		LastName:  "Rivera",
		Email:     "jamie@example.com",
		Street:    "1 Main St",
		City:      "Springfield",
		State:     "IL",
		Zipcode:   "62701",
		Country:   "USA",
		Phone:     "(217) 555-0134",
	}
}

func TestValidateAddressAcceptsWellFormedInput(t *testing.T) {
	if err := ValidateAddress(validAddress()); err != nil {
		t.Fatalf("expected valid address, got %v", err)
	}
}

func TestValidateAddressReportsFieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.OrderAddress)
		field  string
	}{
		{"missing first name", func(a *models.OrderAddress) { a.FirstName = "" }, "firstName"},
		{"bad email", func(a *models.OrderAddress) { a.Email = "not-an-email" }, "email"},
		{"bad zip", func(a *models.OrderAddress) { a.Zipcode = "1234" }, "zipcode"},
		{"bad phone", func(a *models.OrderAddress) { a.Phone = "12345" }, "phone"},
		{"missing city", func(a *models.OrderAddress) { a.City = " " }, "city"},
	}

	for _, tt := range tests {
		addr := validAddress()
		tt.mutate(&addr)

		err := ValidateAddress(addr)
		var validationErr AddressValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("%s: expected AddressValidationError, got %v", tt.name, err)
		}
		if _, ok := validationErr.Fields[tt.field]; !ok {
			t.Fatalf("%s: expected error on field %q, got %v", tt.name, tt.field, validationErr.Fields)
		}
	}
}

func TestValidateAddressAcceptsExtendedZip(t *testing.T) {
	addr := validAddress()
	addr.Zipcode = "62701-1234"
	if err := ValidateAddress(addr); err != nil {
		t.Fatalf("expected extended zip to validate, got %v", err)
	}
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	api := newFakeAPI(testCatalog())
	srv := api.server()
	defer srv.Close()

	session := NewSession(srv.URL, NewFileCartStore(filepath.Join(t.TempDir(), "cart.json")))
	session.SetToken("test-token")

	if _, err := session.Checkout(context.Background(), validAddress()); err == nil {
		t.Fatal("expected error for empty cart")
	}
}

func TestCheckoutRequiresSignedInSession(t *testing.T) {
	api := newFakeAPI(testCatalog())
	srv := api.server()
	defer srv.Close()

	session := NewSession(srv.URL, NewFileCartStore(filepath.Join(t.TempDir(), "cart.json")))

	if _, err := session.Checkout(context.Background(), validAddress()); err == nil {
		t.Fatal("expected error for anonymous checkout")
	}
}

func TestCheckoutSubmitsCartSnapshot(t *testing.T) {
	catalog := testCatalog()

	var received checkoutRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/api/food/list", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": catalog})
	})
	mux.HandleFunc("/api/order/place", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "invalid request body"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":     true,
			"session_url": "http://payments.example/session/abc",
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	session := NewSession(srv.URL, NewFileCartStore(filepath.Join(t.TempDir(), "cart.json")))
	ctx := context.Background()
	if err := session.LoadCatalog(ctx); err != nil {
		t.Fatalf("LoadCatalog returned error: %v", err)
	}

	salad := catalog[0].ID.Hex() // $5.00
	roll := catalog[1].ID.Hex()  // $3.00
	session.AddItem(ctx, salad)
	session.AddItem(ctx, salad)
	session.AddItem(ctx, roll)

	session.SetToken("test-token")

	sessionURL, err := session.Checkout(ctx, validAddress())
	if err != nil {
		t.Fatalf("Checkout returned error: %v", err)
	}
	if sessionURL != "http://payments.example/session/abc" {
		t.Fatalf("unexpected session url %q", sessionURL)
	}

	if len(received.Items) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(received.Items))
	}
	if received.Amount != 15.00 {
		t.Fatalf("expected amount 15.00 (13.00 + 2.00 fee), got %v", received.Amount)
	}
}

func TestCheckoutRoundsSubmittedAmountToCents(t *testing.T) {
	catalog := []models.FoodItem{
		{ID: primitive.NewObjectID(), Name: "Lasagna Slice", Price: 3.333, Category: "Pasta"},
	}

	var received checkoutRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/api/food/list", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": catalog})
	})
	mux.HandleFunc("/api/order/place", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewDecoder(r.Body).Decode(&received)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":     true,
			"session_url": "http://payments.example/session/def",
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	session := NewSession(srv.URL, NewFileCartStore(filepath.Join(t.TempDir(), "cart.json")))
	ctx := context.Background()
	if err := session.LoadCatalog(ctx); err != nil {
		t.Fatalf("LoadCatalog returned error: %v", err)
	}

	id := catalog[0].ID.Hex()
	session.AddItem(ctx, id)
	session.AddItem(ctx, id)
	session.AddItem(ctx, id)

	session.SetToken("test-token")

	if _, err := session.Checkout(ctx, validAddress()); err != nil {
		t.Fatalf("Checkout returned error: %v", err)
	}

	// 3 x 3.333 + 2.00 fee is 11.999 in raw float math; the wire carries cents
	if received.Amount != 12.00 {
		t.Fatalf("expected amount 12.00, got %v", received.Amount)
	}
}

func TestTrackStopsAtTerminalStatus(t *testing.T) {
	order := models.Order{
		ID:     primitive.NewObjectID(),
		Status: models.StatusDelivered,
	}

	polls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/order/userorders", func(w http.ResponseWriter, r *http.Request) {
		polls++
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": []models.Order{order}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	session := NewSession(srv.URL, NewFileCartStore(filepath.Join(t.TempDir(), "cart.json")))
	session.SetToken("test-token")

	var observed []models.Status
	err := session.Track(context.Background(), order.ID.Hex(), time.Hour, func(o models.Order) {
		observed = append(observed, o.Status)
	})
	if err != nil {
		t.Fatalf("Track returned error: %v", err)
	}
	if polls != 1 {
		t.Fatalf("expected a single poll for a terminal order, got %d", polls)
	}
	if len(observed) != 1 || observed[0] != models.StatusDelivered {
		t.Fatalf("unexpected observations: %v", observed)
	}
}

func TestTrackHonoursContextCancellation(t *testing.T) {
	order := models.Order{
		ID:     primitive.NewObjectID(),
		Status: models.StatusFoodProcessing,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/order/userorders", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": []models.Order{order}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	session := NewSession(srv.URL, NewFileCartStore(filepath.Join(t.TempDir(), "cart.json")))
	session.SetToken("test-token")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := session.Track(ctx, order.ID.Hex(), time.Hour, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
