package crm

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/melihub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product is the local record of one marketplace listing, one row per
// listing id. It carries the listing price and, when a promotion has
// been created, the promotion metadata. A second promotion for the same
// listing overwrites the prior metadata; no history is kept.
type Product struct {
	shared.BaseEntity
	// UserID is the owning local account
	UserID uuid.UUID
	// MeliItemID is the marketplace listing id
	MeliItemID string
	// Title is the listing title at last sight
	Title string
	// Price is the listing price at last sight
	Price decimal.Decimal
	// Permalink is the public listing URL
	Permalink string

	// Active promotion metadata, nil/zero when none was ever created
	PromotionID        *string
	PromotionLink      *string
	PromotionExpiresAt *time.Time
}

// NewProduct creates a product record for a listing
func NewProduct(userID uuid.UUID, meliItemID, title string, price decimal.Decimal, permalink string) (*Product, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER_ID", "User ID cannot be empty")
	}
	if strings.TrimSpace(meliItemID) == "" {
		return nil, shared.NewDomainError("INVALID_ITEM_ID", "Marketplace item ID cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	return &Product{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		MeliItemID: strings.TrimSpace(meliItemID),
		Title:      strings.TrimSpace(title),
		Price:      price,
		Permalink:  permalink,
	}, nil
}

// UpdateListing refreshes the listing snapshot fields
func (p *Product) UpdateListing(title string, price decimal.Decimal, permalink string) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	if title = strings.TrimSpace(title); title != "" {
		p.Title = title
	}
	p.Price = price
	if permalink != "" {
		p.Permalink = permalink
	}
	p.UpdatedAt = time.Now()

	return nil
}

// ApplyPromotion overwrites the promotion metadata with the latest
// created promotion
func (p *Product) ApplyPromotion(promotionID string, link *string, expiresAt time.Time) error {
	if promotionID == "" {
		return shared.NewDomainError("INVALID_PROMOTION", "Promotion ID cannot be empty")
	}

	p.PromotionID = &promotionID
	p.PromotionLink = link
	p.PromotionExpiresAt = &expiresAt
	p.UpdatedAt = time.Now()

	return nil
}

// HasActivePromotion returns true while the recorded promotion has not
// expired
func (p *Product) HasActivePromotion(now time.Time) bool {
	return p.PromotionID != nil && p.PromotionExpiresAt != nil && now.Before(*p.PromotionExpiresAt)
}

// DiscountedPrice computes the price after a percentage discount,
// rounded to 2 decimal places.
func (p *Product) DiscountedPrice(discountPercent float64) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(discountPercent).Div(decimal.NewFromInt(100)))
	return p.Price.Mul(factor).Round(2)
}
