package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/Lixing-Zhang/storefront/internal/models"
	"golang.org/x/sync/errgroup"
)

// Fallback supplies the fixed lists shown when a live fetch cannot be used.
type Fallback interface {
	Products() []models.Product
	Recommendations() []models.Product
}

// Page is the data one catalog page render needs.
type Page struct {
	Products        []models.Product `json:"products"`
	Recommendations []models.Product `json:"recommendations"`
	// Live flags report whether each list came from the backend.
	ProductsLive        bool `json:"products_live"`
	RecommendationsLive bool `json:"recommendations_live"`
}

// Loader fetches live lists with a bounded wait and substitutes the fallback
// on any failure. Its methods never return an error.
type Loader struct {
	products ProductSource
	recs     RecommendationSource
	fallback Fallback
	timeout  time.Duration
	log      *slog.Logger
}

func NewLoader(products ProductSource, recs RecommendationSource, fallback Fallback, timeout time.Duration, log *slog.Logger) *Loader {
	if log == nil {
		log = slog.Default()
	}
	if recs == nil {
		recs = StubRecommender{}
	}
	return &Loader{
		products: products,
		recs:     recs,
		fallback: fallback,
		timeout:  timeout,
		log:      log,
	}
}

// Products returns the live catalog, or the fallback catalog and false.
func (l *Loader) Products(ctx context.Context) ([]models.Product, bool) {
	if l.products == nil {
		return l.fallback.Products(), false
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	products, err := l.products.Products(ctx)
	if err != nil {
		l.log.Warn("catalog unavailable, using fallback catalog", "error", err)
		return l.fallback.Products(), false
	}
	return products, true
}

// Recommendations returns the live recommendations, or the fallback list and false.
func (l *Loader) Recommendations(ctx context.Context, userID string) ([]models.Product, bool) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	recs, err := l.recs.Recommendations(ctx, userID)
	if err != nil {
		l.log.Debug("recommendations unavailable, using fallback list", "user_id", userID, "error", err)
		return l.fallback.Recommendations(), false
	}
	return recs, true
}

// Load fetches the catalog and recommendations concurrently.
func (l *Loader) Load(ctx context.Context, userID string) Page {
	var page Page

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page.Products, page.ProductsLive = l.Products(gctx)
		return nil
	})
	g.Go(func() error {
		page.Recommendations, page.RecommendationsLive = l.Recommendations(gctx, userID)
		return nil
	})
	_ = g.Wait()

	return page
}
