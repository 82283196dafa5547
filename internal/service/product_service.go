package service

import (
	"context"
	"errors"

	"github.com/Lixing-Zhang/storefront/internal/models"
	"github.com/Lixing-Zhang/storefront/internal/repository"
)

var (
	ErrInvalidPagination = errors.New("skip and limit must be non-negative")
)

// MaxRecommendations caps the recommendations row
const MaxRecommendations = 5

// ProductService handles business logic for the built-in catalog endpoints
type ProductService struct {
	repo repository.ProductRepository
}

// NewProductService creates a new product service
func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// ListProducts returns the catalog page starting at skip, at most limit long
func (s *ProductService) ListProducts(ctx context.Context, skip, limit int) ([]models.Product, error) {
	if skip < 0 || limit < 0 {
		return nil, ErrInvalidPagination
	}

	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	if skip >= len(products) {
		return []models.Product{}, nil
	}
	products = products[skip:]
	if limit < len(products) {
		products = products[:limit]
	}
	return products, nil
}

// GetProduct returns a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Recommendations returns the recommendations row for a user
func (s *ProductService) Recommendations(ctx context.Context, userID int64) ([]models.Product, error) {
	return s.repo.GetRecommendations(ctx, userID, MaxRecommendations)
}
