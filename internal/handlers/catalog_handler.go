package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/storefront/internal/catalog"
)

// CatalogHandler serves the catalog page data as JSON
type CatalogHandler struct {
	loader        *catalog.Loader
	defaultUserID string
	log           *slog.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(loader *catalog.Loader, defaultUserID string, log *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		loader:        loader,
		defaultUserID: defaultUserID,
		log:           log,
	}
}

// GetCatalog handles GET /api/catalog?user_id=
// Fetch failures are never reported; the fallback lists are returned instead.
func (h *CatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = h.defaultUserID
	}

	WriteJSON(w, http.StatusOK, h.loader.Load(r.Context(), userID), h.log)
}
