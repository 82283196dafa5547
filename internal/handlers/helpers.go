package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/Lixing-Zhang/storefront/internal/middleware"
	"github.com/go-chi/chi/v5"
)

const flashCookie = "storefront_notice"

// sessionID returns the session attached by middleware.Session
func sessionID(r *http.Request) string {
	return middleware.SessionID(r.Context())
}

// cartIndex parses the {index} URL parameter. Range checking is left to the cart.
func cartIndex(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "index"))
}

// setNotice stores a one-shot message shown on the next page render
func setNotice(w http.ResponseWriter, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(message),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeNotice returns the pending notice and clears it
func takeNotice(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	message, err := url.QueryUnescape(c.Value)
	if err != nil {
		return ""
	}
	return message
}
