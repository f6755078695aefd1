package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/melihub/backend/internal/domain/crm"
	"github.com/melihub/backend/internal/domain/shared"
	"github.com/melihub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements crm.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

var _ crm.OrderRepository = (*GormOrderRepository)(nil)

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Upsert inserts the order or updates the existing row with the same
// (user, marketplace order id) pair. Repeated sync runs converge on
// one row per marketplace order.
func (r *GormOrderRepository) Upsert(ctx context.Context, order *crm.Order) error {
	model := models.OrderModelFromDomain(order)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "meli_order_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"customer_id", "meli_pack_id", "order_date", "updated_at",
			}),
		}).
		Create(model).Error
}

// FindLatestForCustomer returns the customer's most recent order
func (r *GormOrderRepository) FindLatestForCustomer(ctx context.Context, customerID uuid.UUID) (*crm.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("order_date DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForUser returns all recorded orders of a user
func (r *GormOrderRepository) FindAllForUser(ctx context.Context, userID uuid.UUID) ([]crm.Order, error) {
	var orderModels []models.OrderModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("order_date DESC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]crm.Order, len(orderModels))
	for i, model := range orderModels {
		orders[i] = *model.ToDomain()
	}
	return orders, nil
}
