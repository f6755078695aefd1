package crm

import (
	"context"

	"github.com/google/uuid"
	"github.com/melihub/backend/internal/domain/crm"
)

// ProductQueryService serves product/promotion record reads for
// dashboards
type ProductQueryService struct {
	productRepo crm.ProductRepository
}

// NewProductQueryService creates a new product query service
func NewProductQueryService(productRepo crm.ProductRepository) *ProductQueryService {
	return &ProductQueryService{productRepo: productRepo}
}

// ListProducts returns all product records of the user
func (s *ProductQueryService) ListProducts(ctx context.Context, userID uuid.UUID) ([]crm.Product, error) {
	return s.productRepo.FindAllForUser(ctx, userID)
}

// GetProduct returns the product record for one listing
func (s *ProductQueryService) GetProduct(ctx context.Context, userID uuid.UUID, meliItemID string) (*crm.Product, error) {
	return s.productRepo.FindByItem(ctx, userID, meliItemID)
}
