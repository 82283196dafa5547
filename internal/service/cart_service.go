package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/Lixing-Zhang/storefront/internal/cart"
	"github.com/Lixing-Zhang/storefront/internal/models"
)

var (
	ErrInvalidProduct = errors.New("invalid product")
)

// AddResult is the cart view after an add plus the acknowledgment shown to the user
type AddResult struct {
	View    cart.View `json:"cart"`
	Message string    `json:"message"`
}

// CartService applies cart mutations for a session and persists the result
type CartService struct {
	sessions *cart.Manager
	log      *slog.Logger
}

// NewCartService creates a new cart service
func NewCartService(sessions *cart.Manager, log *slog.Logger) *CartService {
	return &CartService{
		sessions: sessions,
		log:      log,
	}
}

// View returns the session's current cart view. Reading never makes a session live.
func (s *CartService) View(ctx context.Context, sessionID string) cart.View {
	return s.sessions.Peek(ctx, sessionID).View()
}

// Count returns the number of entries in the session's cart
func (s *CartService) Count(ctx context.Context, sessionID string) int {
	return s.sessions.Peek(ctx, sessionID).Count()
}

// Add appends a copy of p to the session's cart
func (s *CartService) Add(ctx context.Context, sessionID string, p models.Product) (AddResult, error) {
	if p.Price < 0 || math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
		return AddResult{}, fmt.Errorf("%w: price %v", ErrInvalidProduct, p.Price)
	}

	store := s.sessions.Open(ctx, sessionID)
	view := store.Add(p)
	s.persist(ctx, store)

	s.log.Info("product added to cart",
		"session_id", sessionID,
		"product_id", p.ID,
		"count", view.Count,
	)

	return AddResult{
		View:    view,
		Message: AddedMessage(p),
	}, nil
}

// Remove deletes the entry at index. An out-of-range index is a logged no-op
// that returns cart.ErrInvalidIndex with the unchanged view.
func (s *CartService) Remove(ctx context.Context, sessionID string, index int) (cart.View, error) {
	store := s.sessions.Open(ctx, sessionID)

	removed, view, err := store.RemoveAt(index)
	if err != nil {
		s.log.Warn("ignoring cart removal", "session_id", sessionID, "index", index, "error", err)
		return view, err
	}
	s.persist(ctx, store)

	s.log.Info("product removed from cart",
		"session_id", sessionID,
		"product_id", removed.ID,
		"count", view.Count,
	)
	return view, nil
}

// Clear empties the session's cart
func (s *CartService) Clear(ctx context.Context, sessionID string) cart.View {
	store := s.sessions.Open(ctx, sessionID)
	view := store.Clear()
	s.persist(ctx, store)

	s.log.Info("cart cleared", "session_id", sessionID)
	return view
}

// persist failures never fail the request; the in-memory cart stays authoritative
func (s *CartService) persist(ctx context.Context, store *cart.Store) {
	if err := store.Persist(ctx); err != nil {
		s.log.Error("failed to persist cart", "key", store.Key(), "error", err)
	}
}

// AddedMessage is the acknowledgment shown after an add
func AddedMessage(p models.Product) string {
	return fmt.Sprintf("%s added to cart!", p.Name)
}
