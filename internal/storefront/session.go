// Package storefront is the customer-side client of the ordering API. A
// Session owns the cart for exactly one customer: mutations apply locally
// first so the UI stays responsive, then reconcile against the server,
// whose view always wins for authenticated sessions.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"backend/internal/models"
)

// DeliveryFee mirrors the flat fee the backend adds at checkout so the
// client can show the same total before submitting.
const DeliveryFee = 2.00

type listFoodResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    []models.FoodItem `json:"data"`
}

type cartResponse struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message"`
	CartData map[string]int `json:"cartData"`
}

// Session holds the per-customer client state: catalog snapshot, cart
// map, and auth token. It is not shared between customers.
type Session struct {
	api   *resty.Client
	store CartStore

	mu      sync.Mutex
	token   string
	cart    map[string]int
	catalog map[string]models.FoodItem
	seq     uint64
	// syncTail is the last sync ticket issued; tickets are handed out
	// under mu so their order matches the order mutations were applied.
	syncTail uint64

	queueMu     sync.Mutex
	queueCond   *sync.Cond
	syncServing uint64
}

func NewSession(baseURL string, store CartStore) *Session {
	api := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second)

	s := &Session{
		api:     api,
		store:   store,
		cart:    map[string]int{},
		catalog: map[string]models.FoodItem{},
	}
	s.queueCond = sync.NewCond(&s.queueMu)
	return s
}

// SetToken switches the session to authenticated mode. The anonymous
// local cart is kept as-is; whether it should merge into the remote cart
// is an open product question, so it simply stops being the authority.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *Session) currentToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// LoadCatalog fetches the food list once per session.
func (s *Session) LoadCatalog(ctx context.Context) error {
	var body listFoodResponse
	resp, err := s.api.R().
		SetContext(ctx).
		SetResult(&body).
		Get("/api/food/list")
	if err != nil {
		return err
	}
	if !resp.IsSuccess() || !body.Success {
		return apiError(body.Message, resp.StatusCode())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = make(map[string]models.FoodItem, len(body.Data))
	for _, item := range body.Data {
		s.catalog[item.ID.Hex()] = item
	}
	return nil
}

// LoadCart initializes the cart: from the server for authenticated
// sessions, from the local snapshot otherwise.
func (s *Session) LoadCart(ctx context.Context) error {
	if s.currentToken() == "" {
		cart, err := s.store.Load()
		if err != nil {
			return err
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		s.cart = cart
		return nil
	}

	return s.reloadRemoteCart(ctx, s.bumpSeq())
}

// AddItem adds one unit of the item. The local update applies before any
// network traffic; for authenticated sessions the server's cart is then
// re-fetched and overwrites local state.
func (s *Session) AddItem(ctx context.Context, itemID string) error {
	seq, ticket := s.mutateLocal(itemID, +1)
	if ticket == 0 {
		return nil
	}
	return s.syncRemote(ctx, "/api/cart/add", itemID, seq, ticket)
}

// RemoveItem removes one unit, never dropping below zero. The key is kept
// at zero rather than deleted.
func (s *Session) RemoveItem(ctx context.Context, itemID string) error {
	seq, ticket := s.mutateLocal(itemID, -1)
	if ticket == 0 {
		return nil
	}
	return s.syncRemote(ctx, "/api/cart/remove", itemID, seq, ticket)
}

// Quantity returns the current quantity for an item.
func (s *Session) Quantity(itemID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart[itemID]
}

// Cart returns a copy of the current id -> quantity map.
func (s *Session) Cart() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.cart))
	for id, qty := range s.cart {
		out[id] = qty
	}
	return out
}

// TotalAmount sums price x quantity over catalog-known items. Ids the
// catalog no longer carries contribute nothing.
func (s *Session) TotalAmount() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0.0
	for id, qty := range s.cart {
		if qty <= 0 {
			continue
		}
		item, ok := s.catalog[id]
		if !ok {
			continue
		}
		total += item.Price * float64(qty)
	}
	return total
}

// TotalItemCount sums all positive quantities.
func (s *Session) TotalItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, qty := range s.cart {
		if qty > 0 {
			count += qty
		}
	}
	return count
}

func (s *Session) bumpSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// mutateLocal applies the optimistic update and, for anonymous sessions,
// writes the snapshot synchronously before returning. Authenticated
// mutations additionally draw a sync ticket; ticket 0 means no remote
// sync is owed.
func (s *Session) mutateLocal(itemID string, delta int) (uint64, uint64) {
	s.mu.Lock()

	if delta > 0 {
		s.cart[itemID] += delta
	} else if qty, exists := s.cart[itemID]; exists && qty > 0 {
		s.cart[itemID] = qty - 1
	}
	s.seq++
	seq := s.seq

	var ticket uint64
	var snapshot map[string]int
	anonymous := s.token == ""
	if anonymous {
		snapshot = make(map[string]int, len(s.cart))
		for id, qty := range s.cart {
			snapshot[id] = qty
		}
	} else {
		s.syncTail++
		ticket = s.syncTail
	}
	s.mu.Unlock()

	if anonymous {
		// snapshot write is best-effort; the in-memory cart stands
		if err := s.store.Save(snapshot); err != nil {
			log.Println("[CART] [ERROR] snapshot save failed:", err)
		}
	}
	return seq, ticket
}

// syncRemote pushes one mutation and re-fetches the authoritative cart.
// Round trips run strictly in ticket order, so a reload can never land
// ahead of an earlier mutation's POST; the seq check drops a reload that
// a newer local mutation has already superseded. A transport failure
// leaves the optimistic local state in place.
func (s *Session) syncRemote(ctx context.Context, path, itemID string, seq, ticket uint64) error {
	s.queueMu.Lock()
	for s.syncServing != ticket-1 {
		s.queueCond.Wait()
	}
	s.queueMu.Unlock()

	// the turn must advance even when the round trip fails, or every
	// later sync waits forever
	defer func() {
		s.queueMu.Lock()
		s.syncServing = ticket
		s.queueCond.Broadcast()
		s.queueMu.Unlock()
	}()

	var body cartResponse
	resp, err := s.api.R().
		SetContext(ctx).
		SetHeader("token", s.currentToken()).
		SetBody(map[string]string{"itemId": itemID}).
		SetResult(&body).
		Post(path)
	if err != nil {
		return err
	}
	if !resp.IsSuccess() || !body.Success {
		return apiError(body.Message, resp.StatusCode())
	}

	return s.reloadRemoteCart(ctx, seq)
}

func (s *Session) reloadRemoteCart(ctx context.Context, seq uint64) error {
	var body cartResponse
	resp, err := s.api.R().
		SetContext(ctx).
		SetHeader("token", s.currentToken()).
		SetBody(map[string]string{}).
		SetResult(&body).
		Post("/api/cart/get")
	if err != nil {
		return err
	}
	if !resp.IsSuccess() || !body.Success {
		return apiError(body.Message, resp.StatusCode())
	}

	cart := body.CartData
	if cart == nil {
		cart = map[string]int{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != seq {
		// a newer local mutation is in flight; its own reload reconciles
		return nil
	}
	s.cart = cart
	return nil
}

func apiError(message string, statusCode int) error {
	if message != "" {
		return errors.New(message)
	}
	return fmt.Errorf("request failed with status %d", statusCode)
}
