package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Lixing-Zhang/storefront/internal/cart"
	"github.com/Lixing-Zhang/storefront/internal/catalog"
	"github.com/Lixing-Zhang/storefront/internal/config"
	"github.com/Lixing-Zhang/storefront/internal/repository"
	"github.com/Lixing-Zhang/storefront/internal/service"
	"github.com/Lixing-Zhang/storefront/internal/storage"
	"github.com/Lixing-Zhang/storefront/internal/views"
	"github.com/Lixing-Zhang/storefront/pkg/logger"
)

const testCookie = "storefront_session"

func newTestRouter(t *testing.T, cors config.CORSConfig) (http.Handler, *cart.Manager) {
	t.Helper()

	log := logger.New("error")
	kv := storage.NewMemory()
	sessions := cart.NewManager(kv, log)
	carts := service.NewCartService(sessions, log)
	checkout := service.NewCheckoutService(sessions, nil, log)
	fallback := repository.NewFallbackCatalog()
	loader := catalog.NewLoader(nil, nil, fallback, time.Second, log)

	renderer, err := views.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer() error: %v", err)
	}

	router := NewRouter(Routes{
		Health:   NewHealthHandler(kv, "memory", log),
		Products: NewProductHandler(service.NewProductService(fallback), log),
		Carts:    NewCartHandler(carts, checkout, log),
		Catalog:  NewCatalogHandler(loader, "1", log),
		Pages:    NewPageHandler(carts, checkout, loader, renderer, "1", log),
		Session:  config.SessionConfig{CookieName: testCookie},
		CORS:     cors,
		Logger:   log,
	})
	return router, sessions
}

func serve(h http.Handler, req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestRouter_BrowsingKeepsNoSessions(t *testing.T) {
	router, sessions := newTestRouter(t, config.CORSConfig{AllowedOrigins: []string{"*"}})

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		w := serve(router, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("GET / expected 200, got %d", w.Code)
		}
		sid := findCookie(w.Result().Cookies(), testCookie)
		if sid == nil {
			t.Fatal("GET / without a cookie should issue a session cookie")
		}
		seen[sid.Value] = true

		w = serve(router, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("GET /api/cart expected 200, got %d", w.Code)
		}
	}

	if len(seen) != 50 {
		t.Errorf("issued %d distinct session ids, want 50", len(seen))
	}
	if got := sessions.Len(); got != 0 {
		t.Errorf("live sessions after browsing = %d, want 0", got)
	}
}

func TestRouter_CartRoundTrip(t *testing.T) {
	router, sessions := newTestRouter(t, config.CORSConfig{AllowedOrigins: []string{"*"}})
	ctx := context.Background()

	// page add without a cookie: the middleware issues one
	req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(url.Values{
		"id":    {"2"},
		"name":  {"Sonic Headphones"},
		"price": {"249"},
	}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := serve(router, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", w.Code, w.Body.String())
	}
	cookies := w.Result().Cookies()
	sid := findCookie(cookies, testCookie)
	if sid == nil {
		t.Fatal("add response is missing the session cookie")
	}
	if findCookie(cookies, flashCookie) == nil {
		t.Fatal("add response is missing the notice cookie")
	}

	page := serve(router, httptest.NewRequest(http.MethodGet, "/", nil), cookies...)
	assertContains(t, page.Body.String(), "Sonic Headphones added to cart!", "Cart (1)")
	if got := sessions.Len(); got != 1 {
		t.Fatalf("live sessions = %d, want 1", got)
	}

	// the API shares the session through the same cookie
	body, _ := json.Marshal(map[string]any{"id": 1, "name": "Quantum Laptop", "price": 1299})
	w = serve(router, httptest.NewRequest(http.MethodPost, "/api/cart/items", bytes.NewReader(body)), sid)
	if w.Code != http.StatusCreated {
		t.Fatalf("API add expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = serve(router, httptest.NewRequest(http.MethodGet, "/api/cart", nil), sid)
	var view cart.View
	if err := json.NewDecoder(w.Body).Decode(&view); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if view.Count != 2 || view.TotalText != "1548.00" {
		t.Errorf("view = %+v, want 2 items totalling 1548.00", view)
	}

	// idle eviction persists the cart; the next request restores it
	time.Sleep(5 * time.Millisecond)
	dropped, err := sessions.Sweep(ctx, time.Millisecond)
	if err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}
	if dropped != 1 || sessions.Len() != 0 {
		t.Fatalf("Sweep() dropped %d, live %d; want 1, 0", dropped, sessions.Len())
	}

	page = serve(router, httptest.NewRequest(http.MethodGet, "/cart", nil), sid)
	assertContains(t, page.Body.String(), "Sonic Headphones", "Quantum Laptop", "Cart (2)")

	// clearing an evicted session leaves nothing behind in the backend
	w = serve(router, httptest.NewRequest(http.MethodDelete, "/api/cart", nil), sid)
	if w.Code != http.StatusOK {
		t.Fatalf("DELETE expected 200, got %d", w.Code)
	}
	if err := sessions.Teardown(ctx, sid.Value); err != nil {
		t.Fatalf("Teardown() error: %v", err)
	}
	if got := sessions.Peek(ctx, sid.Value).Count(); got != 0 {
		t.Errorf("restored count after clear = %d, want 0", got)
	}
}

func TestRouter_CORSCredentials(t *testing.T) {
	tests := []struct {
		name            string
		cors            config.CORSConfig
		origin          string
		wantOrigin      bool
		wantCredentials bool
	}{
		{
			name:       "wildcard without credentials",
			cors:       config.CORSConfig{AllowedOrigins: []string{"*"}},
			origin:     "https://anywhere.example",
			wantOrigin: true,
		},
		{
			name:            "listed origin with credentials",
			cors:            config.CORSConfig{AllowedOrigins: []string{"https://shop.example"}, AllowCredentials: true},
			origin:          "https://shop.example",
			wantOrigin:      true,
			wantCredentials: true,
		},
		{
			name:   "unlisted origin with credentials",
			cors:   config.CORSConfig{AllowedOrigins: []string{"https://shop.example"}, AllowCredentials: true},
			origin: "https://evil.example",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestRouter(t, tt.cors)

			req := httptest.NewRequest(http.MethodGet, "/api/catalog", nil)
			req.Header.Set("Origin", tt.origin)
			w := serve(router, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", w.Code)
			}
			gotOrigin := w.Header().Get("Access-Control-Allow-Origin") != ""
			if gotOrigin != tt.wantOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, want set=%v", w.Header().Get("Access-Control-Allow-Origin"), tt.wantOrigin)
			}
			gotCredentials := w.Header().Get("Access-Control-Allow-Credentials") == "true"
			if gotCredentials != tt.wantCredentials {
				t.Errorf("Access-Control-Allow-Credentials = %q, want %v", w.Header().Get("Access-Control-Allow-Credentials"), tt.wantCredentials)
			}
		})
	}
}
