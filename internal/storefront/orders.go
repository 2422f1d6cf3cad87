package storefront

import (
	"context"
	"errors"
	"math"
	"regexp"
	"strings"
	"time"

	"backend/internal/models"
)

// DefaultTrackInterval is how often the tracking view polls for status
// changes; polling is the only propagation mechanism the backend offers.
const DefaultTrackInterval = 15 * time.Second

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	zipPattern   = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	phonePattern = regexp.MustCompile(`^\(?\d{3}\)?[- ]?\d{3}[- ]?\d{4}$`)
)

// AddressValidationError carries per-field messages for a rejected
// checkout form.
type AddressValidationError struct {
	Fields map[string]string
}

func (e AddressValidationError) Error() string {
	return "address validation failed"
}

// ValidateAddress runs the client-side checks before submission: required
// fields plus email, zip and phone formats.
func ValidateAddress(addr models.OrderAddress) error {
	fields := map[string]string{}

	if strings.TrimSpace(addr.FirstName) == "" {
		fields["firstName"] = "First name is required"
	}
	if strings.TrimSpace(addr.LastName) == "" {
		fields["lastName"] = "Last name is required"
	}

	email := strings.TrimSpace(addr.Email)
	if email == "" {
		fields["email"] = "Email is required"
	} else if !emailPattern.MatchString(email) {
		fields["email"] = "Please enter a valid email address"
	}

	if strings.TrimSpace(addr.Street) == "" {
		fields["street"] = "Street address is required"
	}
	if strings.TrimSpace(addr.City) == "" {
		fields["city"] = "City is required"
	}
	if strings.TrimSpace(addr.State) == "" {
		fields["state"] = "State is required"
	}

	zipcode := strings.TrimSpace(addr.Zipcode)
	if zipcode == "" {
		fields["zipcode"] = "Zip code is required"
	} else if !zipPattern.MatchString(zipcode) {
		fields["zipcode"] = "Please enter a valid zip code (e.g., 12345 or 12345-6789)"
	}

	if strings.TrimSpace(addr.Country) == "" {
		fields["country"] = "Country is required"
	}

	phone := strings.TrimSpace(addr.Phone)
	if phone == "" {
		fields["phone"] = "Phone number is required"
	} else if !phonePattern.MatchString(phone) {
		fields["phone"] = "Please enter a valid phone number (e.g., 123-456-7890)"
	}

	if len(fields) > 0 {
		return AddressValidationError{Fields: fields}
	}
	return nil
}

func roundToCents(value float64) float64 {
	return math.Round(value*100) / 100
}

type checkoutItem struct {
	ID       string `json:"_id"`
	Quantity int    `json:"quantity"`
}

type checkoutRequest struct {
	Address models.OrderAddress `json:"address"`
	Items   []checkoutItem      `json:"items"`
	Amount  float64             `json:"amount"`
}

type checkoutResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	SessionURL string `json:"session_url"`
}

type ordersResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    []models.Order `json:"data"`
}

// Checkout submits the current cart with a delivery address and returns
// the payment redirect URL. The cart must be non-empty and the session
// authenticated.
func (s *Session) Checkout(ctx context.Context, addr models.OrderAddress) (string, error) {
	if s.currentToken() == "" {
		return "", errors.New("checkout requires a signed-in session")
	}

	if err := ValidateAddress(addr); err != nil {
		return "", err
	}

	s.mu.Lock()
	items := make([]checkoutItem, 0, len(s.cart))
	for id, qty := range s.cart {
		if qty <= 0 {
			continue
		}
		if _, known := s.catalog[id]; !known {
			continue
		}
		items = append(items, checkoutItem{ID: id, Quantity: qty})
	}
	s.mu.Unlock()

	if len(items) == 0 {
		return "", errors.New("cart is empty")
	}

	// the backend recomputes the amount from the catalog; rounding here
	// keeps the submitted figure identical to the one it will charge
	amount := roundToCents(s.TotalAmount() + DeliveryFee)

	var body checkoutResponse
	resp, err := s.api.R().
		SetContext(ctx).
		SetHeader("token", s.currentToken()).
		SetBody(checkoutRequest{Address: addr, Items: items, Amount: amount}).
		SetResult(&body).
		Post("/api/order/place")
	if err != nil {
		return "", err
	}
	if !resp.IsSuccess() || !body.Success {
		return "", apiError(body.Message, resp.StatusCode())
	}

	return body.SessionURL, nil
}

// Orders fetches the session user's order list.
func (s *Session) Orders(ctx context.Context) ([]models.Order, error) {
	if s.currentToken() == "" {
		return nil, errors.New("orders require a signed-in session")
	}

	var body ordersResponse
	resp, err := s.api.R().
		SetContext(ctx).
		SetHeader("token", s.currentToken()).
		SetBody(map[string]string{}).
		SetResult(&body).
		Post("/api/order/userorders")
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() || !body.Success {
		return nil, apiError(body.Message, resp.StatusCode())
	}

	return body.Data, nil
}

// Track polls the order list until the order reaches a terminal state or
// the context is cancelled, invoking observe after every poll. A
// non-positive interval falls back to DefaultTrackInterval.
func (s *Session) Track(ctx context.Context, orderID string, interval time.Duration, observe func(models.Order)) error {
	if interval <= 0 {
		interval = DefaultTrackInterval
	}

	poll := func() (bool, error) {
		orders, err := s.Orders(ctx)
		if err != nil {
			return false, err
		}
		for _, order := range orders {
			if order.ID.Hex() == orderID {
				if observe != nil {
					observe(order)
				}
				return order.Status.IsTerminal(), nil
			}
		}
		return false, errors.New("order not found")
	}

	done, err := poll()
	if err != nil || done {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			done, err := poll()
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		}
	}
}
