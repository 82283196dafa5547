package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/storefront/internal/cart"
	"github.com/Lixing-Zhang/storefront/internal/models"
	"github.com/Lixing-Zhang/storefront/internal/service"
)

const maxBodyBytes = 1 << 20

// CartHandler serves the session's cart as JSON
type CartHandler struct {
	carts    *service.CartService
	checkout *service.CheckoutService
	log      *slog.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *service.CartService, checkout *service.CheckoutService, log *slog.Logger) *CartHandler {
	return &CartHandler{
		carts:    carts,
		checkout: checkout,
		log:      log,
	}
}

// GetCart handles GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.carts.View(r.Context(), sessionID(r)), h.log)
}

// AddItem handles POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var p models.Product

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.log.Warn("failed to decode product", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	result, err := h.carts.Add(r.Context(), sessionID(r), p)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidProduct):
			WriteError(w, http.StatusBadRequest, "Invalid product", h.log)
		default:
			h.log.Error("failed to add product", "error", err)
			WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		}
		return
	}

	WriteJSON(w, http.StatusCreated, result, h.log)
}

// RemoveItem handles DELETE /api/cart/items/{index}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	index, err := cartIndex(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, cart.ErrInvalidIndex.Error(), h.log)
		return
	}

	view, err := h.carts.Remove(r.Context(), sessionID(r), index)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrInvalidIndex):
			WriteError(w, http.StatusBadRequest, cart.ErrInvalidIndex.Error(), h.log)
		default:
			h.log.Error("failed to remove product", "error", err)
			WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		}
		return
	}

	WriteJSON(w, http.StatusOK, view, h.log)
}

// ClearCart handles DELETE /api/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.carts.Clear(r.Context(), sessionID(r)), h.log)
}

// Checkout handles POST /api/cart/checkout
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	order, err := h.checkout.Checkout(r.Context(), sessionID(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			WriteError(w, http.StatusBadRequest, "Cart is empty", h.log)
		case errors.Is(err, service.ErrCheckoutNotImplemented):
			WriteError(w, http.StatusNotImplemented, "Checkout is not yet implemented", h.log)
		default:
			h.log.Error("checkout failed", "error", err)
			WriteError(w, http.StatusBadGateway, "Checkout failed", h.log)
		}
		return
	}

	WriteJSON(w, http.StatusOK, order, h.log)
}
