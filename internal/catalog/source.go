// Package catalog fetches product and recommendation lists from the catalog
// backend, substitutes the fallback catalog when a fetch fails, and turns a
// product list into the grid the pages render.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Lixing-Zhang/storefront/internal/models"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	// ErrFetchFailure covers every reason a live list could not be used.
	ErrFetchFailure = errors.New("catalog fetch failed")
	// ErrEmptyResult is a successful fetch that returned no products.
	ErrEmptyResult = fmt.Errorf("%w: empty result", ErrFetchFailure)
	// ErrNotWired is returned by sources that have no live endpoint.
	ErrNotWired = fmt.Errorf("%w: source not wired", ErrFetchFailure)
)

// ProductSource supplies the catalog.
type ProductSource interface {
	Products(ctx context.Context) ([]models.Product, error)
}

// RecommendationSource supplies the recommendations row for a user.
type RecommendationSource interface {
	Recommendations(ctx context.Context, userID string) ([]models.Product, error)
}

// HTTPSource reads both lists from a catalog backend:
// GET {base}/products/ and GET {base}/recommendations/{userID}.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource creates a source for baseURL. The client timeout is a backstop;
// Loader bounds each call with its own deadline.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
	}
}

func (s *HTTPSource) Products(ctx context.Context) ([]models.Product, error) {
	return s.getList(ctx, s.baseURL+"/products/")
}

func (s *HTTPSource) Recommendations(ctx context.Context, userID string) ([]models.Product, error) {
	return s.getList(ctx, s.baseURL+"/recommendations/"+url.PathEscape(userID))
}

func (s *HTTPSource) getList(ctx context.Context, endpoint string) ([]models.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrFetchFailure, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status code: %d", ErrFetchFailure, resp.StatusCode)
	}

	var products []models.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrFetchFailure, err)
	}

	if len(products) == 0 {
		return nil, ErrEmptyResult
	}
	for i, p := range products {
		if p.Price < 0 {
			return nil, fmt.Errorf("%w: product %d has negative price", ErrFetchFailure, i)
		}
	}

	return products, nil
}

// StubRecommender stands in for a recommendation backend that is not deployed.
// It always reports ErrNotWired so the fallback list is shown.
type StubRecommender struct{}

func (StubRecommender) Recommendations(ctx context.Context, userID string) ([]models.Product, error) {
	return nil, ErrNotWired
}
