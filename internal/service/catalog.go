package service

import (
	"context"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/repository"
)

// CatalogService serves the storefront product and design listings
type CatalogService struct {
	repo repository.ProductRepository
}

// NewCatalogService creates the catalog read service
func NewCatalogService(repo repository.ProductRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

// ListProducts returns a page of active products with variants
func (s *CatalogService) ListProducts(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 24
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

// GetProduct returns one product by its URL handle
func (s *CatalogService) GetProduct(ctx context.Context, handle string) (*domain.Product, error) {
	return s.repo.GetByHandle(ctx, handle)
}

// ListDesigns returns a page of the design gallery
func (s *CatalogService) ListDesigns(ctx context.Context, limit, offset int) ([]*domain.Design, error) {
	if limit <= 0 || limit > 100 {
		limit = 24
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListDesigns(ctx, limit, offset)
}
