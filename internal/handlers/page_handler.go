package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Lixing-Zhang/storefront/internal/cart"
	"github.com/Lixing-Zhang/storefront/internal/catalog"
	"github.com/Lixing-Zhang/storefront/internal/models"
	"github.com/Lixing-Zhang/storefront/internal/service"
	"github.com/Lixing-Zhang/storefront/internal/views"
)

// Notices shown after a form action redirects back to a page
const (
	noticeRemoveIgnored   = "That item is no longer in your cart."
	noticeCleared         = "Cart cleared."
	noticeCheckoutPending = "Checkout is not available yet."
	noticeCheckoutFailed  = "Checkout failed, please try again."
)

// PageHandler serves the HTML storefront. Form actions redirect back to a
// page (POST/redirect/GET) and carry their acknowledgment as a notice.
type PageHandler struct {
	carts    *service.CartService
	checkout *service.CheckoutService
	loader   *catalog.Loader
	renderer *views.Renderer
	userID   string
	log      *slog.Logger
}

// NewPageHandler creates a new page handler
func NewPageHandler(
	carts *service.CartService,
	checkout *service.CheckoutService,
	loader *catalog.Loader,
	renderer *views.Renderer,
	userID string,
	log *slog.Logger,
) *PageHandler {
	return &PageHandler{
		carts:    carts,
		checkout: checkout,
		loader:   loader,
		renderer: renderer,
		userID:   userID,
		log:      log,
	}
}

// Index handles GET /
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := h.loader.Load(ctx, h.userID)

	data := views.IndexData{
		Layout: views.Layout{
			Title:     "Home",
			CartCount: h.carts.Count(ctx, sessionID(r)),
			Notice:    takeNotice(w, r),
		},
		Products:        catalog.NewGrid(page.Products),
		Recommendations: catalog.NewGrid(page.Recommendations),
	}
	h.render(w, views.PageIndex, data)
}

// Cart handles GET /cart
func (h *PageHandler) Cart(w http.ResponseWriter, r *http.Request) {
	view := h.carts.View(r.Context(), sessionID(r))

	data := views.CartData{
		Layout: views.Layout{
			Title:     "Cart",
			CartCount: view.Count,
			Notice:    takeNotice(w, r),
		},
		Cart: view,
	}
	h.render(w, views.PageCart, data)
}

// AddItem handles POST /cart/items
func (h *PageHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	p, err := productFromForm(w, r)
	if err != nil {
		h.log.Warn("malformed add form", "error", err)
		http.Error(w, "Invalid product", http.StatusBadRequest)
		return
	}

	result, err := h.carts.Add(r.Context(), sessionID(r), p)
	if err != nil {
		if errors.Is(err, service.ErrInvalidProduct) {
			http.Error(w, "Invalid product", http.StatusBadRequest)
			return
		}
		h.log.Error("failed to add product", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	setNotice(w, result.Message)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// RemoveItem handles POST /cart/items/{index}/remove
func (h *PageHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	index, err := cartIndex(r)
	if err == nil {
		_, err = h.carts.Remove(r.Context(), sessionID(r), index)
	}
	if err != nil {
		// stale or forged index: nothing changes
		setNotice(w, noticeRemoveIgnored)
	}

	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

// Clear handles POST /cart/clear
func (h *PageHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.carts.Clear(r.Context(), sessionID(r))

	setNotice(w, noticeCleared)
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

// Checkout handles POST /cart/checkout
func (h *PageHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	order, err := h.checkout.Checkout(r.Context(), sessionID(r))

	switch {
	case err == nil:
		setNotice(w, fmt.Sprintf("Order %s placed.", order.ID))
	case errors.Is(err, service.ErrEmptyCart):
		setNotice(w, cart.EmptyMessage)
	case errors.Is(err, service.ErrCheckoutNotImplemented):
		setNotice(w, noticeCheckoutPending)
	default:
		h.log.Error("checkout failed", "error", err)
		setNotice(w, noticeCheckoutFailed)
	}

	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (h *PageHandler) render(w http.ResponseWriter, page string, data any) {
	if err := h.renderer.Render(w, http.StatusOK, page, data); err != nil {
		h.log.Error("failed to render page", "page", page, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// productFromForm reads the hidden fields of a product card's add form
func productFromForm(w http.ResponseWriter, r *http.Request) (models.Product, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return models.Product{}, err
	}

	id, err := strconv.ParseInt(r.PostFormValue("id"), 10, 64)
	if err != nil {
		return models.Product{}, fmt.Errorf("invalid id: %w", err)
	}
	price, err := strconv.ParseFloat(r.PostFormValue("price"), 64)
	if err != nil {
		return models.Product{}, fmt.Errorf("invalid price: %w", err)
	}
	name := strings.TrimSpace(r.PostFormValue("name"))
	if name == "" {
		return models.Product{}, errors.New("missing name")
	}

	return models.Product{
		ID:          id,
		Name:        name,
		Price:       price,
		Description: r.PostFormValue("description"),
		ImageURL:    r.PostFormValue("image_url"),
		Category:    r.PostFormValue("category"),
	}, nil
}
