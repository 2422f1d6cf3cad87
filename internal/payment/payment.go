// Package payment abstracts the external payment collaborator. The
// backend only needs a redirect URL for the customer; session creation
// itself belongs to the provider.
package payment

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"backend/internal/models"
)

// Provider creates a checkout session for an order and returns the URL
// the customer is redirected to.
type Provider interface {
	CreateSession(ctx context.Context, order models.Order) (string, error)
}

// RedirectProvider is the default collaborator: it hands the customer a
// verify URL on the storefront carrying the order id and a fresh session
// id. The storefront completes the flow by calling /api/order/verify.
type RedirectProvider struct {
	FrontendURL string
}

func NewRedirectProvider(frontendURL string) *RedirectProvider {
	return &RedirectProvider{FrontendURL: frontendURL}
}

func (p *RedirectProvider) CreateSession(ctx context.Context, order models.Order) (string, error) {
	if order.ID.IsZero() {
		return "", fmt.Errorf("order id is required for a payment session")
	}

	query := url.Values{}
	query.Set("success", "true")
	query.Set("orderId", order.ID.Hex())
	query.Set("session", uuid.NewString())

	return fmt.Sprintf("%s/verify?%s", p.FrontendURL, query.Encode()), nil
}
