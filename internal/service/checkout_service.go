package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Lixing-Zhang/storefront/internal/cart"
	"github.com/Lixing-Zhang/storefront/internal/models"
	"github.com/google/uuid"
)

var (
	ErrEmptyCart              = errors.New("cart is empty")
	ErrCheckoutNotImplemented = errors.New("checkout is not yet implemented")
)

// Processor is the external purchase flow a checkout hands off to
type Processor interface {
	Submit(ctx context.Context, order models.Order) error
}

// CheckoutService hands the session's cart to the purchase flow.
// It never modifies the cart.
type CheckoutService struct {
	sessions  *cart.Manager
	processor Processor
	log       *slog.Logger
}

// NewCheckoutService creates a checkout service. A nil processor means no
// purchase flow exists and every checkout reports ErrCheckoutNotImplemented.
func NewCheckoutService(sessions *cart.Manager, processor Processor, log *slog.Logger) *CheckoutService {
	return &CheckoutService{
		sessions:  sessions,
		processor: processor,
		log:       log,
	}
}

// Checkout builds an order from the session's cart and submits it
func (s *CheckoutService) Checkout(ctx context.Context, sessionID string) (*models.Order, error) {
	entries, total := s.sessions.Peek(ctx, sessionID).Snapshot()
	if len(entries) == 0 {
		return nil, ErrEmptyCart
	}

	order := models.Order{
		ID:        generateOrderID(),
		SessionID: sessionID,
		Items:     entries,
		Total:     total,
		CreatedAt: time.Now().UTC(),
	}

	if s.processor == nil {
		s.log.Info("checkout requested but no purchase flow is configured",
			"session_id", sessionID,
			"items_count", len(entries),
		)
		return nil, ErrCheckoutNotImplemented
	}

	if err := s.processor.Submit(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to submit order %s: %w", order.ID, err)
	}

	s.log.Info("order submitted", "order_id", order.ID, "items_count", len(order.Items))
	return &order, nil
}

// generateOrderID generates a unique order ID using UUID
func generateOrderID() string {
	return uuid.New().String()
}
