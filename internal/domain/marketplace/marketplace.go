package marketplace

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Marketplace Errors
// ---------------------------------------------------------------------------

var (
	// Credential errors
	ErrNotLinked    = errors.New("marketplace: account not linked")
	ErrTokenRefresh = errors.New("marketplace: token refresh failed")

	// Request errors
	ErrInvalidRequest = errors.New("marketplace: invalid request")

	// Promotion gate errors
	ErrSellerNotEligible = errors.New("marketplace: seller not eligible for promotions")
	ErrItemNotEligible   = errors.New("marketplace: item not eligible for promotions")
	ErrItemNotNew        = errors.New("marketplace: promotions are restricted to new items")

	// Lookup errors
	ErrOrderNotFound = errors.New("marketplace: order not found")
	ErrItemNotFound  = errors.New("marketplace: item not found")
)

// UpstreamError represents a non-success response from a marketplace read
// or write endpoint. The operation name and HTTP status are kept so callers
// can surface them.
type UpstreamError struct {
	// Op is the logical operation that failed (e.g. "search orders")
	Op string
	// StatusCode is the upstream HTTP status code (0 when the call never
	// reached the marketplace)
	StatusCode int
	// Detail is a best-effort excerpt of the upstream response body
	Detail string
}

// Error implements the error interface
func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("marketplace: %s failed: %s", e.Op, e.Detail)
	}
	return fmt.Sprintf("marketplace: %s failed with status %d", e.Op, e.StatusCode)
}

// NewUpstreamError creates an upstream error for the given operation
func NewUpstreamError(op string, statusCode int, detail string) *UpstreamError {
	return &UpstreamError{Op: op, StatusCode: statusCode, Detail: detail}
}

// PromotionRejectedError represents a rejected promotion submission.
// Detail carries the upstream response body, JSON or text, best-effort.
type PromotionRejectedError struct {
	StatusCode int
	Detail     string
}

// Error implements the error interface
func (e *PromotionRejectedError) Error() string {
	return fmt.Sprintf("marketplace: promotion rejected with status %d: %s", e.StatusCode, e.Detail)
}

// DeliveryError represents a failed message delivery for a single
// order/pack. It is always scoped to one recipient.
type DeliveryError struct {
	PackID     int64
	StatusCode int
	Detail     string
}

// Error implements the error interface
func (e *DeliveryError) Error() string {
	return fmt.Sprintf("marketplace: message delivery for pack %d failed with status %d", e.PackID, e.StatusCode)
}

// ---------------------------------------------------------------------------
// Credentials
// ---------------------------------------------------------------------------

// TokenPair is the result of an OAuth grant against the marketplace.
type TokenPair struct {
	// AccessToken is the bearer token for API calls
	AccessToken string
	// RefreshToken is the token for the next refresh grant
	RefreshToken string
	// ExpiresIn is the access token lifetime in seconds
	ExpiresIn int
	// UserID is the marketplace account id the grant belongs to
	UserID int64
}

// ExpiresAt computes the absolute expiry from the given issue time.
func (t *TokenPair) ExpiresAt(issuedAt time.Time) time.Time {
	return issuedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
}

// AuthorizationCode carries an authorization-code grant exchange.
type AuthorizationCode struct {
	// Code is the one-time authorization code from the OAuth callback
	Code string
	// Verifier is the PKCE code verifier that produced the challenge
	Verifier string
}

// Validate validates the authorization code exchange
func (a *AuthorizationCode) Validate() error {
	if a.Code == "" {
		return fmt.Errorf("%w: authorization code is required", ErrInvalidRequest)
	}
	if a.Verifier == "" {
		return fmt.Errorf("%w: PKCE verifier is required", ErrInvalidRequest)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Orders & Shipments
// ---------------------------------------------------------------------------

// Buyer identifies the purchasing account on an order.
type Buyer struct {
	// ID is the marketplace buyer account id (0 when unidentifiable)
	ID int64
	// Nickname is the buyer's public handle
	Nickname string
	// FirstName is optional and often absent from order summaries
	FirstName *string
	// LastName is optional and often absent from order summaries
	LastName *string
	// Email is optional and often absent from order summaries
	Email *string
}

// Shipping holds the shipping fields of an order as far as the source
// payload resolved them. Nil fields may be filled from other payloads.
type Shipping struct {
	// ShipmentID references a shipment for a follow-up detail fetch
	ShipmentID *int64
	// Method is the shipping method, already resolved through the
	// payload's mode fields where present
	Method *string
	// Province is the receiver's province/state name
	Province *string
}

// Order is a seller order as returned by the marketplace.
type Order struct {
	// ID is the marketplace order id
	ID int64
	// PackID groups orders shipped together; messaging is scoped to it
	PackID *int64
	// DateCreated is the order creation timestamp
	DateCreated time.Time
	// Buyer is the purchasing account
	Buyer Buyer
	// Shipping carries shipping fields resolved so far
	Shipping Shipping
}

// MessagePackID returns the id messages for this order are scoped to:
// the pack id when present, the order id otherwise.
func (o *Order) MessagePackID() int64 {
	if o.PackID != nil {
		return *o.PackID
	}
	return o.ID
}

// Shipment is a shipment-detail payload, the last-resort source for
// shipping method and province.
type Shipment struct {
	ID       int64
	Method   *string
	Province *string
}

// ---------------------------------------------------------------------------
// Sellers, Items & Listings
// ---------------------------------------------------------------------------

// SellerProfile is the marketplace account record used for the
// promotion eligibility gate.
type SellerProfile struct {
	// ID is the marketplace account id
	ID int64
	// Nickname is the account's public handle
	Nickname string
	// ReputationLevelID is the raw reputation tier (e.g. "5_green")
	ReputationLevelID string
	// Status is the raw account status (e.g. "active", "suspended")
	Status string
}

// HasAllowedReputation returns true when the reputation tier permits
// running promotions.
func (p *SellerProfile) HasAllowedReputation() bool {
	return strings.Contains(p.ReputationLevelID, "green") ||
		strings.Contains(p.ReputationLevelID, "yellow")
}

// IsSuspended returns true when the account is suspended.
func (p *SellerProfile) IsSuspended() bool {
	return p.Status == "suspended"
}

// Item is a marketplace listing.
type Item struct {
	// ID is the listing id (e.g. "MLA123456789")
	ID string
	// Title is the listing title
	Title string
	// Price is the current listing price
	Price decimal.Decimal
	// Permalink is the public listing URL
	Permalink string
	// SiteID is the marketplace site the listing belongs to
	SiteID string
	// Condition is the item condition ("new", "used", ...)
	Condition string
	// Status is the listing status ("active", "paused", ...)
	Status string
}

// IsNew returns true when the listing is for a new item.
func (i *Item) IsNew() bool {
	return i.Condition == "new"
}

// ListingPage is one page of a seller's active listing ids.
type ListingPage struct {
	// IDs are the listing ids on this page
	IDs []string
	// Total is the total number of active listings for the seller
	Total int
	// Offset is the page offset that produced this page
	Offset int
	// Limit is the page size that produced this page
	Limit int
}

// HasMore indicates whether another page exists after this one.
func (p *ListingPage) HasMore() bool {
	return p.Offset+len(p.IDs) < p.Total
}

// ---------------------------------------------------------------------------
// Promotions & Messaging
// ---------------------------------------------------------------------------

// Promotion is a marketplace-side price-discount promotion.
type Promotion struct {
	// ID is the promotion id assigned by the marketplace
	ID string
	// Status is the promotion lifecycle status ("pending", "active", ...)
	Status string
	// Link is the shareable promotion URL when the marketplace issued one
	Link *string
	// FinishDate is the resolved end of the promotion when reported
	FinishDate *time.Time
}

// IsActive returns true once the marketplace reports the promotion live.
func (p *Promotion) IsActive() bool {
	return p.Status == "active"
}

// CreatePromotionRequest submits a percentage price discount for one item.
type CreatePromotionRequest struct {
	// SiteID is the marketplace site of the listing
	SiteID string
	// ItemID is the listing to discount
	ItemID string
	// DiscountPercent is the discount, strictly between 0 and 100
	DiscountPercent float64
	// StartDate is when the discount begins
	StartDate time.Time
	// EndDate is when the discount expires
	EndDate time.Time
}

// Validate validates the promotion submission
func (r *CreatePromotionRequest) Validate() error {
	if r.ItemID == "" {
		return fmt.Errorf("%w: item id is required", ErrInvalidRequest)
	}
	if r.SiteID == "" {
		return fmt.Errorf("%w: site id is required", ErrInvalidRequest)
	}
	if r.DiscountPercent <= 0 || r.DiscountPercent >= 100 {
		return fmt.Errorf("%w: discount must be between 0 and 100 exclusive", ErrInvalidRequest)
	}
	if r.EndDate.IsZero() {
		return fmt.Errorf("%w: end date is required", ErrInvalidRequest)
	}
	if r.EndDate.Before(r.StartDate) {
		return fmt.Errorf("%w: end date must not precede start date", ErrInvalidRequest)
	}
	return nil
}

// MessageRequest sends one post-sale message scoped to an order/pack.
type MessageRequest struct {
	// PackID is the order/pack id the conversation belongs to
	PackID int64
	// SellerID is the sending marketplace account
	SellerID int64
	// BuyerID is the receiving marketplace account
	BuyerID int64
	// Text is the message body
	Text string
}

// Validate validates the message request
func (r *MessageRequest) Validate() error {
	if r.PackID == 0 {
		return fmt.Errorf("%w: pack id is required", ErrInvalidRequest)
	}
	if r.SellerID == 0 || r.BuyerID == 0 {
		return fmt.Errorf("%w: seller and buyer ids are required", ErrInvalidRequest)
	}
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("%w: message text is required", ErrInvalidRequest)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Marketplace Port Interface
// ---------------------------------------------------------------------------

// API defines the port interface for the MercadoLibre marketplace.
// It is defined in the domain layer following the Ports & Adapters
// pattern; the REST adapter lives in the infrastructure layer.
type API interface {
	// ---------------------------------------------------------------------------
	// OAuth
	// ---------------------------------------------------------------------------

	// ExchangeCode runs the authorization-code grant with PKCE
	ExchangeCode(ctx context.Context, grant AuthorizationCode) (*TokenPair, error)

	// RefreshAccessToken runs the refresh-token grant
	RefreshAccessToken(ctx context.Context, refreshToken string) (*TokenPair, error)

	// ---------------------------------------------------------------------------
	// Read Operations
	// ---------------------------------------------------------------------------

	// SearchOrders fetches the seller's order list
	SearchOrders(ctx context.Context, accessToken string, sellerID int64) ([]Order, error)

	// GetOrder fetches a single order with its full detail payload
	GetOrder(ctx context.Context, accessToken string, orderID int64) (*Order, error)

	// GetShipment fetches a shipment detail payload
	GetShipment(ctx context.Context, accessToken string, shipmentID int64) (*Shipment, error)

	// GetSeller fetches the seller account record, reputation included
	GetSeller(ctx context.Context, accessToken string, sellerID int64) (*SellerProfile, error)

	// GetItem fetches a single listing
	GetItem(ctx context.Context, accessToken, itemID string) (*Item, error)

	// GetItems fetches multiple listings in one batch call
	GetItems(ctx context.Context, accessToken string, itemIDs []string) ([]Item, error)

	// SearchActiveListings pages through the seller's active listing ids
	SearchActiveListings(ctx context.Context, accessToken string, sellerID int64, offset, limit int) (*ListingPage, error)

	// EligibleItems returns the listing ids eligible for promotions
	// among the requested ids on the given site
	EligibleItems(ctx context.Context, accessToken string, itemIDs []string, siteID string) ([]string, error)

	// GetPromotion fetches a promotion's current status
	GetPromotion(ctx context.Context, accessToken, promotionID string) (*Promotion, error)

	// ---------------------------------------------------------------------------
	// Write Operations
	// ---------------------------------------------------------------------------

	// CreatePromotion submits a percentage price-discount promotion
	CreatePromotion(ctx context.Context, accessToken string, req *CreatePromotionRequest) (*Promotion, error)

	// UpdateItemPrice overwrites a listing's price
	UpdateItemPrice(ctx context.Context, accessToken, itemID string, price decimal.Decimal) error

	// SendMessage delivers one post-sale message for an order/pack
	SendMessage(ctx context.Context, accessToken string, req *MessageRequest) error
}
