package catalog

import (
	"context"

	domain "github.com/alma-labs/storefront/internal/domain/catalog"
)

// Service exposes the read-only catalog surface. Writes go through seeding
// and (future) admin tooling, not this service.
type Service struct {
	products domain.Repository
}

func NewService(products domain.Repository) *Service {
	return &Service{products: products}
}

// List returns the catalog, newest first.
func (s *Service) List(ctx context.Context) ([]*domain.Product, error) {
	return s.products.FindAll(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.FindByID(ctx, id)
}
