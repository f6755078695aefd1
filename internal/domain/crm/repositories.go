package crm

import (
	"context"

	"github.com/google/uuid"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// Save inserts or updates a customer
	Save(ctx context.Context, customer *Customer) error

	// FindByID finds a customer by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindByIDForUser finds a customer by ID scoped to the owning user
	FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*Customer, error)

	// FindByBuyer finds the customer row for a (user, buyer id) pair
	FindByBuyer(ctx context.Context, userID uuid.UUID, meliBuyerID int64) (*Customer, error)

	// FindAllForUser returns all customers of a user
	FindAllForUser(ctx context.Context, userID uuid.UUID) ([]Customer, error)

	// Delete deletes a customer by ID
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderRepository defines the interface for local order records
type OrderRepository interface {
	// Upsert inserts the order or updates the existing row with the
	// same (user, marketplace order id)
	Upsert(ctx context.Context, order *Order) error

	// FindLatestForCustomer returns the customer's most recent order,
	// shared.ErrNotFound when the customer has no order history
	FindLatestForCustomer(ctx context.Context, customerID uuid.UUID) (*Order, error)

	// FindAllForUser returns all recorded orders of a user
	FindAllForUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
}

// ProductRepository defines the interface for product/promotion records
type ProductRepository interface {
	// Save inserts or updates a product
	Save(ctx context.Context, product *Product) error

	// FindByItem finds the product row for a (user, listing id) pair
	FindByItem(ctx context.Context, userID uuid.UUID, meliItemID string) (*Product, error)

	// FindAllForUser returns all product records of a user
	FindAllForUser(ctx context.Context, userID uuid.UUID) ([]Product, error)
}
