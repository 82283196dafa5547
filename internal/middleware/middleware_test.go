package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Lixing-Zhang/storefront/internal/config"
	"github.com/google/uuid"
)

func TestSession(t *testing.T) {
	cfg := config.SessionConfig{CookieName: "sid"}
	existing := uuid.NewString()

	var seen string
	handler := Session(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name          string
		cookie        *http.Cookie
		wantExisting  bool
		wantSetCookie bool
	}{
		{
			name:          "no cookie",
			cookie:        nil,
			wantSetCookie: true,
		},
		{
			name:         "valid cookie",
			cookie:       &http.Cookie{Name: "sid", Value: existing},
			wantExisting: true,
		},
		{
			name:          "malformed cookie",
			cookie:        &http.Cookie{Name: "sid", Value: "../../etc/passwd"},
			wantSetCookie: true,
		},
		{
			name:          "other cookie only",
			cookie:        &http.Cookie{Name: "theme", Value: existing},
			wantSetCookie: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if _, err := uuid.Parse(seen); err != nil {
				t.Fatalf("session id %q is not a UUID", seen)
			}
			if tt.wantExisting && seen != existing {
				t.Errorf("session id = %s, want %s", seen, existing)
			}

			cookies := w.Result().Cookies()
			if tt.wantSetCookie {
				if len(cookies) != 1 || cookies[0].Name != "sid" || cookies[0].Value != seen {
					t.Fatalf("Set-Cookie = %+v, want sid=%s", cookies, seen)
				}
				if !cookies[0].HttpOnly {
					t.Error("session cookie should be HttpOnly")
				}
			} else if len(cookies) != 0 {
				t.Errorf("unexpected Set-Cookie: %+v", cookies)
			}
		})
	}
}

func TestSessionID_OutsideMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := SessionID(req.Context()); got != "" {
		t.Errorf("SessionID() = %q, want empty", got)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest(http.MethodPost, "/cart/items", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log entry: %v", err)
	}

	checks := map[string]any{
		"msg":    "http request",
		"method": "POST",
		"path":   "/cart/items",
		"status": float64(http.StatusTeapot),
		"bytes":  float64(len("short and stout")),
	}
	for key, want := range checks {
		if entry[key] != want {
			t.Errorf("%s = %v, want %v", key, entry[key], want)
		}
	}
}
