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

// GormCustomerRepository implements crm.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

var _ crm.CustomerRepository = (*GormCustomerRepository)(nil)

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// Save inserts the customer or updates the existing row with the same
// (user, buyer id) pair
func (r *GormCustomerRepository) Save(ctx context.Context, customer *crm.Customer) error {
	model := models.CustomerModelFromDomain(customer)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "meli_buyer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"nickname", "first_name", "last_name", "email", "updated_at",
			}),
		}).
		Create(model).Error
}

// FindByID finds a customer by its ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUser finds a customer by ID scoped to the owning user
func (r *GormCustomerRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*crm.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBuyer finds the customer row for a (user, buyer id) pair
func (r *GormCustomerRepository) FindByBuyer(ctx context.Context, userID uuid.UUID, meliBuyerID int64) (*crm.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND meli_buyer_id = ?", userID, meliBuyerID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForUser returns all customers of a user
func (r *GormCustomerRepository) FindAllForUser(ctx context.Context, userID uuid.UUID) ([]crm.Customer, error) {
	var customerModels []models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&customerModels).Error; err != nil {
		return nil, err
	}

	customers := make([]crm.Customer, len(customerModels))
	for i, model := range customerModels {
		customers[i] = *model.ToDomain()
	}
	return customers, nil
}

// Delete deletes a customer by ID
func (r *GormCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CustomerModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
