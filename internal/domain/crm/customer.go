package crm

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/melihub/backend/internal/domain/shared"
)

// Customer represents one marketplace buyer as seen by one local user.
// There is exactly one row per (user, marketplace buyer id) pair; the
// Order Aggregator upserts it on every sync run.
type Customer struct {
	shared.BaseEntity
	// UserID is the owning local account
	UserID uuid.UUID
	// MeliBuyerID is the buyer's marketplace account id
	MeliBuyerID int64
	// Nickname is the buyer's public handle
	Nickname string
	// FirstName is optional, filled by enrichment when resolvable
	FirstName *string
	// LastName is optional, filled by enrichment when resolvable
	LastName *string
	// Email is optional, filled by enrichment when resolvable
	Email *string
}

// NewCustomer creates a customer for a buyer seen for the first time.
// A buyer with zero resolvable profile fields is still a valid customer.
func NewCustomer(userID uuid.UUID, meliBuyerID int64, nickname string) (*Customer, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER_ID", "User ID cannot be empty")
	}
	if meliBuyerID == 0 {
		return nil, shared.NewDomainError("INVALID_BUYER_ID", "Marketplace buyer ID cannot be empty")
	}

	return &Customer{
		BaseEntity:  shared.NewBaseEntity(),
		UserID:      userID,
		MeliBuyerID: meliBuyerID,
		Nickname:    strings.TrimSpace(nickname),
	}, nil
}

// UpdateProfile applies the latest resolved feed values. Non-nil fields
// overwrite, nil fields leave the stored value alone so a failed
// enrichment run never erases previously known data.
func (c *Customer) UpdateProfile(nickname string, firstName, lastName, email *string) {
	if nickname = strings.TrimSpace(nickname); nickname != "" {
		c.Nickname = nickname
	}
	if firstName != nil {
		c.FirstName = firstName
	}
	if lastName != nil {
		c.LastName = lastName
	}
	if email != nil {
		c.Email = email
	}
	c.UpdatedAt = time.Now()
}

// FullName returns the resolved buyer name, falling back to the nickname.
func (c *Customer) FullName() string {
	var parts []string
	if c.FirstName != nil && *c.FirstName != "" {
		parts = append(parts, *c.FirstName)
	}
	if c.LastName != nil && *c.LastName != "" {
		parts = append(parts, *c.LastName)
	}
	if len(parts) == 0 {
		return c.Nickname
	}
	return strings.Join(parts, " ")
}

// CustomerSummary is the read-time view of a customer annotated with
// aggregates derived from the live order feed. The aggregate fields are
// recomputed on every sync and never persisted on the customer row.
type CustomerSummary struct {
	Customer
	// PurchaseCount is the number of orders seen for this buyer
	PurchaseCount int
	// LastOrderID is the marketplace id of the most recent order
	LastOrderID int64
	// LastOrderDate is the creation time of the most recent order
	LastOrderDate time.Time
	// LastShippingMethod is the shipping method of the most recent order
	LastShippingMethod *string
	// LastProvince is the receiver province of the most recent order
	LastProvince *string
}
