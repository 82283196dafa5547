package repository

import (
	"context"
	"errors"

	"github.com/Lixing-Zhang/storefront/internal/models"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	GetRecommendations(ctx context.Context, userID int64, limit int) ([]models.Product, error)
}

// FallbackCatalog is the fixed catalog shown when the live catalog cannot be
// fetched. It also backs the built-in catalog endpoints. Order is fixed.
type FallbackCatalog struct {
	products        []models.Product
	recommendations []models.Product
	byID            map[int64]models.Product
}

// NewFallbackCatalog creates the fixed catalog with its seed data
func NewFallbackCatalog() *FallbackCatalog {
	products := []models.Product{
		{ID: 1, Name: "Quantum Laptop", Price: 1299, Description: "Next-gen computing power.", ImageURL: "https://images.unsplash.com/photo-1496181133206-80ce9b88a853?w=500&auto=format&fit=crop&q=60", Category: "Computers"},
		{ID: 2, Name: "Sonic Headphones", Price: 249, Description: "Immersive soundscapes.", ImageURL: "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=500&auto=format&fit=crop&q=60", Category: "Audio"},
		{ID: 3, Name: "Ergo Mouse", Price: 89, Description: "Precision at your fingertips.", ImageURL: "https://images.unsplash.com/photo-1527864550417-7fd91fc51a46?w=500&auto=format&fit=crop&q=60", Category: "Accessories"},
		{ID: 4, Name: "Mech Keyboard", Price: 159, Description: "Tactile typing experience.", ImageURL: "https://images.unsplash.com/photo-1587829741301-dc798b91a603?w=500&auto=format&fit=crop&q=60", Category: "Accessories"},
	}
	recommendations := []models.Product{
		{ID: 5, Name: "4K Monitor", Price: 399, Description: "Crystal clear visuals.", ImageURL: "https://images.unsplash.com/photo-1527443224154-c4a3942d3acf?w=500&auto=format&fit=crop&q=60", Category: "Displays"},
		{ID: 6, Name: "Webcam Pro", Price: 129, Description: "Stream in 1080p.", ImageURL: "https://images.unsplash.com/photo-1587826574258-8472d124315e?w=500&auto=format&fit=crop&q=60", Category: "Accessories"},
	}

	byID := make(map[int64]models.Product, len(products)+len(recommendations))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, p := range recommendations {
		byID[p.ID] = p
	}

	return &FallbackCatalog{
		products:        products,
		recommendations: recommendations,
		byID:            byID,
	}
}

// Products returns a copy of the fixed catalog
func (r *FallbackCatalog) Products() []models.Product {
	return clone(r.products)
}

// Recommendations returns a copy of the fixed recommendations row
func (r *FallbackCatalog) Recommendations() []models.Product {
	return clone(r.recommendations)
}

// GetAll returns the catalog in its fixed order
func (r *FallbackCatalog) GetAll(ctx context.Context) ([]models.Product, error) {
	return r.Products(), nil
}

// GetByID returns a catalog or recommended product by its ID
func (r *FallbackCatalog) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	product, exists := r.byID[id]
	if !exists {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

// GetRecommendations returns up to limit recommended products.
// Every user gets the same list.
func (r *FallbackCatalog) GetRecommendations(ctx context.Context, userID int64, limit int) ([]models.Product, error) {
	recs := r.Recommendations()
	if limit >= 0 && limit < len(recs) {
		recs = recs[:limit]
	}
	return recs, nil
}

func clone(products []models.Product) []models.Product {
	out := make([]models.Product, len(products))
	copy(out, products)
	return out
}
