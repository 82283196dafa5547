package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Lixing-Zhang/storefront/internal/storage"
	"github.com/Lixing-Zhang/storefront/pkg/logger"
)

type downStore struct{}

func (downStore) Ping(ctx context.Context) error { return errors.New("connection refused") }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name           string
		store          Pinger
		expectedStatus int
		expectedState  string
	}{
		{"ephemeral carts", nil, http.StatusOK, "healthy"},
		{"store reachable", storage.NewMemory(), http.StatusOK, "healthy"},
		{"store down", downStore{}, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.store, "memory", logger.New("error"))

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			var response HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if response.Status != tt.expectedState {
				t.Errorf("status = %q, want %q", response.Status, tt.expectedState)
			}
		})
	}
}
