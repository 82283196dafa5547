package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Lixing-Zhang/storefront/internal/repository"
	"github.com/Lixing-Zhang/storefront/internal/service"
	"github.com/go-chi/chi/v5"
)

// Pagination defaults for GET /products/
const (
	defaultSkip  = 0
	defaultLimit = 100
)

// ProductHandler serves the built-in catalog backend. It speaks the same wire
// format the catalog client fetches, so CATALOG_BASE_URL can point at it.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// ListProducts handles GET /products/?skip=&limit=
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip", defaultSkip)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid skip", h.logger)
		return
	}
	limit, err := queryInt(r, "limit", defaultLimit)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid limit", h.logger)
		return
	}

	products, err := h.service.ListProducts(r.Context(), skip, limit)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPagination) {
			WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
			return
		}
		h.logger.Error("failed to list products", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, products, h.logger)
}

// GetProduct handles GET /products/{productId}
// - 200: successful operation
// - 400: Invalid ID supplied
// - 404: Product not found
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	id, err := strconv.ParseInt(productID, 10, 64)
	if err != nil {
		h.logger.Warn("invalid product ID format", "productId", productID, "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.logger)
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			h.logger.Info("product not found", "productId", id)
			WriteError(w, http.StatusNotFound, "Product not found", h.logger)
			return
		}

		h.logger.Error("failed to get product", "productId", id, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, product, h.logger)
}

// GetRecommendations handles GET /recommendations/{userId}
func (h *ProductHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid user ID supplied", h.logger)
		return
	}

	recs, err := h.service.Recommendations(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to get recommendations", "user_id", userID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, recs, h.logger)
}

func queryInt(r *http.Request, key string, defaultValue int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(raw)
}
