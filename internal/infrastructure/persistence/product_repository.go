package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/melihub/backend/internal/domain/crm"
	"github.com/melihub/backend/internal/domain/shared"
	"github.com/melihub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements crm.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

var _ crm.ProductRepository = (*GormProductRepository)(nil)

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Save inserts the product or updates the existing row with the same
// (user, listing id) pair
func (r *GormProductRepository) Save(ctx context.Context, product *crm.Product) error {
	model := models.ProductModelFromDomain(product)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "meli_item_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title", "price", "permalink",
				"promotion_id", "promotion_link", "promotion_expires_at", "updated_at",
			}),
		}).
		Create(model).Error
}

// FindByItem finds the product row for a (user, listing id) pair
func (r *GormProductRepository) FindByItem(ctx context.Context, userID uuid.UUID, meliItemID string) (*crm.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND meli_item_id = ?", userID, strings.TrimSpace(meliItemID)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForUser returns all product records of a user
func (r *GormProductRepository) FindAllForUser(ctx context.Context, userID uuid.UUID) ([]crm.Product, error) {
	var productModels []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&productModels).Error; err != nil {
		return nil, err
	}

	products := make([]crm.Product, len(productModels))
	for i, model := range productModels {
		products[i] = *model.ToDomain()
	}
	return products, nil
}
