package crm

import (
	"time"

	"github.com/google/uuid"
	"github.com/melihub/backend/internal/domain/shared"
)

// Order is a local record of a marketplace purchase event. The
// marketplace owns the order; this row exists so messaging can resolve
// a customer's most recent order/pack without a live API call.
type Order struct {
	shared.BaseEntity
	// UserID is the owning local account
	UserID uuid.UUID
	// CustomerID references the local customer row for the buyer
	CustomerID uuid.UUID
	// MeliOrderID is the marketplace order id
	MeliOrderID int64
	// MeliPackID is the pack the order ships under; message threads are
	// scoped to it. Falls back to the order id when the marketplace
	// reported no pack.
	MeliPackID int64
	// OrderDate is the marketplace order creation time
	OrderDate time.Time
}

// NewOrder records a purchase event for a customer
func NewOrder(userID, customerID uuid.UUID, meliOrderID, meliPackID int64, orderDate time.Time) (*Order, error) {
	if userID == uuid.Nil || customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "User and customer IDs cannot be empty")
	}
	if meliOrderID == 0 {
		return nil, shared.NewDomainError("INVALID_ORDER", "Marketplace order ID cannot be empty")
	}
	if meliPackID == 0 {
		meliPackID = meliOrderID
	}

	return &Order{
		BaseEntity:  shared.NewBaseEntity(),
		UserID:      userID,
		CustomerID:  customerID,
		MeliOrderID: meliOrderID,
		MeliPackID:  meliPackID,
		OrderDate:   orderDate,
	}, nil
}
