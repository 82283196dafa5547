package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/Lixing-Zhang/storefront/internal/cart"
	"github.com/Lixing-Zhang/storefront/internal/models"
	"github.com/Lixing-Zhang/storefront/internal/repository"
	"github.com/Lixing-Zhang/storefront/internal/storage"
	"github.com/shopspring/decimal"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	p10   = models.Product{ID: 1, Name: "Ten", Price: 10.00}
	p550  = models.Product{ID: 2, Name: "Five Fifty", Price: 5.50}
	p349  = models.Product{ID: 3, Name: "Three Forty-Nine", Price: 3.49}
	ctx   = context.Background()
	total = func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
)

func TestCartService_AddRemove(t *testing.T) {
	kv := storage.NewMemory()
	svc := NewCartService(cart.NewManager(kv, quietLogger()), quietLogger())

	for _, p := range []models.Product{p10, p550, p349} {
		res, err := svc.Add(ctx, "s1", p)
		if err != nil {
			t.Fatalf("Add(%s) unexpected error: %v", p.Name, err)
		}
		if res.Message != p.Name+" added to cart!" {
			t.Errorf("Message = %q", res.Message)
		}
	}

	view := svc.View(ctx, "s1")
	if view.Count != 3 || !view.Total.Equal(total("18.99")) {
		t.Fatalf("view = count %d total %s, want 3 / 18.99", view.Count, view.Total)
	}

	view, err := svc.Remove(ctx, "s1", 1)
	if err != nil {
		t.Fatalf("Remove(1) unexpected error: %v", err)
	}
	if view.Count != 2 || view.TotalText != "13.49" {
		t.Errorf("after remove: count %d total %s", view.Count, view.TotalText)
	}
	if view.Rows[0].Name != "Ten" || view.Rows[1].Name != "Three Forty-Nine" {
		t.Errorf("rows = %+v", view.Rows)
	}

	// each successful mutation is persisted
	restored := cart.NewManager(kv, quietLogger()).Open(ctx, "s1")
	if restored.Count() != 2 {
		t.Errorf("persisted count = %d, want 2", restored.Count())
	}
}

func TestCartService_InvalidInput(t *testing.T) {
	svc := NewCartService(cart.NewManager(nil, quietLogger()), quietLogger())

	if _, err := svc.Add(ctx, "s1", models.Product{ID: 9, Name: "Refund", Price: -5}); !errors.Is(err, ErrInvalidProduct) {
		t.Errorf("Add negative price error = %v, want ErrInvalidProduct", err)
	}
	if svc.Count(ctx, "s1") != 0 {
		t.Error("rejected product was added")
	}

	if _, err := svc.Add(ctx, "s1", p10); err != nil {
		t.Fatalf("Add: %v", err)
	}

	for _, idx := range []int{-1, 1, 7} {
		view, err := svc.Remove(ctx, "s1", idx)
		if !errors.Is(err, cart.ErrInvalidIndex) {
			t.Errorf("Remove(%d) error = %v, want ErrInvalidIndex", idx, err)
		}
		if view.Count != 1 || view.TotalText != "10.00" {
			t.Errorf("Remove(%d) changed the cart: %+v", idx, view)
		}
	}
}

func TestCartService_Clear(t *testing.T) {
	svc := NewCartService(cart.NewManager(nil, quietLogger()), quietLogger())
	_, _ = svc.Add(ctx, "s1", p10)
	_, _ = svc.Add(ctx, "s2", p550)

	view := svc.Clear(ctx, "s1")
	if view.State != cart.StateEmpty {
		t.Errorf("State = %s, want empty", view.State)
	}
	if svc.Count(ctx, "s2") != 1 {
		t.Error("clearing one session affected another")
	}
}

type recordingProcessor struct {
	orders []models.Order
	err    error
}

func (r *recordingProcessor) Submit(ctx context.Context, order models.Order) error {
	r.orders = append(r.orders, order)
	return r.err
}

func TestCheckoutService_Checkout(t *testing.T) {
	tests := []struct {
		name      string
		items     []models.Product
		processor Processor
		wantErr   error
	}{
		{
			name:    "empty cart",
			items:   nil,
			wantErr: ErrEmptyCart,
		},
		{
			name:    "no purchase flow configured",
			items:   []models.Product{p10, p349},
			wantErr: ErrCheckoutNotImplemented,
		},
		{
			name:      "processor accepts",
			items:     []models.Product{p10, p349},
			processor: &recordingProcessor{},
		},
		{
			name:      "processor rejects",
			items:     []models.Product{p550},
			processor: &recordingProcessor{err: errors.New("payment gateway down")},
			wantErr:   errors.New("payment gateway down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := cart.NewManager(nil, quietLogger())
			store := sessions.Open(ctx, "s1")
			for _, p := range tt.items {
				store.Add(p)
			}
			before := store.Entries()

			svc := NewCheckoutService(sessions, tt.processor, quietLogger())
			order, err := svc.Checkout(ctx, "s1")

			switch {
			case tt.wantErr == nil:
				if err != nil {
					t.Fatalf("Checkout() unexpected error: %v", err)
				}
				if order == nil || order.ID == "" {
					t.Fatalf("Checkout() order = %+v", order)
				}
				if len(order.Items) != len(tt.items) {
					t.Errorf("order items = %d, want %d", len(order.Items), len(tt.items))
				}
				if !order.Total.Equal(store.Total()) {
					t.Errorf("order total = %s, want %s", order.Total, store.Total())
				}
			case errors.Is(tt.wantErr, ErrEmptyCart) || errors.Is(tt.wantErr, ErrCheckoutNotImplemented):
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Checkout() error = %v, want %v", err, tt.wantErr)
				}
			default:
				if err == nil {
					t.Error("Checkout() expected error, got nil")
				}
			}

			if after := store.Entries(); len(after) != len(before) {
				t.Errorf("checkout changed the cart: %d entries -> %d", len(before), len(after))
			}
		})
	}
}

func TestProductService_ListProducts(t *testing.T) {
	svc := NewProductService(repository.NewFallbackCatalog())

	tests := []struct {
		name      string
		skip      int
		limit     int
		wantIDs   []int64
		wantError error
	}{
		{name: "all", skip: 0, limit: 100, wantIDs: []int64{1, 2, 3, 4}},
		{name: "window", skip: 1, limit: 2, wantIDs: []int64{2, 3}},
		{name: "skip past end", skip: 10, limit: 5, wantIDs: []int64{}},
		{name: "zero limit", skip: 0, limit: 0, wantIDs: []int64{}},
		{name: "negative skip", skip: -1, limit: 5, wantError: ErrInvalidPagination},
		{name: "negative limit", skip: 0, limit: -5, wantError: ErrInvalidPagination},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := svc.ListProducts(ctx, tt.skip, tt.limit)
			if tt.wantError != nil {
				if !errors.Is(err, tt.wantError) {
					t.Errorf("error = %v, want %v", err, tt.wantError)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(products) != len(tt.wantIDs) {
				t.Fatalf("got %d products, want %d", len(products), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if products[i].ID != id {
					t.Errorf("products[%d].ID = %d, want %d", i, products[i].ID, id)
				}
			}
		})
	}
}

func TestProductService_Recommendations(t *testing.T) {
	svc := NewProductService(repository.NewFallbackCatalog())

	recs, err := svc.Recommendations(ctx, 1)
	if err != nil {
		t.Fatalf("Recommendations() unexpected error: %v", err)
	}
	if len(recs) == 0 || len(recs) > MaxRecommendations {
		t.Errorf("got %d recommendations", len(recs))
	}
}
