package mercadolibre

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/melihub/backend/internal/domain/marketplace"
	"github.com/shopspring/decimal"
)

// flexID tolerates MercadoLibre ids arriving either as JSON numbers or
// strings, which varies across endpoints.
type flexID string

// UnmarshalJSON implements json.Unmarshaler
func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

func (f flexID) String() string { return string(f) }

// tokenResponse is the OAuth token endpoint payload
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
	UserID       int64  `json:"user_id"`
	RefreshToken string `json:"refresh_token"`
}

func (r *tokenResponse) toDomain() *marketplace.TokenPair {
	return &marketplace.TokenPair{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		ExpiresIn:    r.ExpiresIn,
		UserID:       r.UserID,
	}
}

// buyerPayload appears on order summaries (id and nickname only) and on
// order details (full profile)
type buyerPayload struct {
	ID        int64  `json:"id"`
	Nickname  string `json:"nickname"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// statePayload is the nested receiver state object
type statePayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// receiverAddressPayload is the receiver address of a shipping or
// shipment payload
type receiverAddressPayload struct {
	State statePayload `json:"state"`
}

// shippingPayload is the shipping block embedded in an order
type shippingPayload struct {
	ID              *int64                  `json:"id"`
	ShippingMode    string                  `json:"shipping_mode"`
	Mode            string                  `json:"mode"`
	LogisticType    string                  `json:"logistic_type"`
	State           string                  `json:"state"`
	ReceiverAddress *receiverAddressPayload `json:"receiver_address"`
}

// method resolves the shipping method fields in their priority order
func (s *shippingPayload) method() *string {
	for _, v := range []string{s.ShippingMode, s.Mode, s.LogisticType} {
		if v != "" {
			return &v
		}
	}
	return nil
}

// province resolves the receiver province, nested name first
func (s *shippingPayload) province() *string {
	if s.ReceiverAddress != nil && s.ReceiverAddress.State.Name != "" {
		name := s.ReceiverAddress.State.Name
		return &name
	}
	if s.State != "" {
		v := s.State
		return &v
	}
	return nil
}

// orderPayload is an order from the search or detail endpoints
type orderPayload struct {
	ID          int64            `json:"id"`
	DateCreated string           `json:"date_created"`
	PackID      *int64           `json:"pack_id"`
	Buyer       *buyerPayload    `json:"buyer"`
	Shipping    *shippingPayload `json:"shipping"`
}

func (o *orderPayload) toDomain() marketplace.Order {
	order := marketplace.Order{
		ID:     o.ID,
		PackID: o.PackID,
	}
	if t, err := time.Parse(time.RFC3339, o.DateCreated); err == nil {
		order.DateCreated = t
	}
	if o.Buyer != nil {
		order.Buyer = marketplace.Buyer{
			ID:        o.Buyer.ID,
			Nickname:  o.Buyer.Nickname,
			FirstName: optString(o.Buyer.FirstName),
			LastName:  optString(o.Buyer.LastName),
			Email:     optString(o.Buyer.Email),
		}
	}
	if o.Shipping != nil {
		order.Shipping = marketplace.Shipping{
			ShipmentID: o.Shipping.ID,
			Method:     o.Shipping.method(),
			Province:   o.Shipping.province(),
		}
	}
	return order
}

// orderSearchResponse is the order search envelope
type orderSearchResponse struct {
	Results []orderPayload `json:"results"`
	Paging  pagingPayload  `json:"paging"`
}

type pagingPayload struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// shipmentPayload is the shipment detail endpoint payload
type shipmentPayload struct {
	ID              int64                   `json:"id"`
	ShippingMode    string                  `json:"shipping_mode"`
	Mode            string                  `json:"mode"`
	LogisticType    string                  `json:"logistic_type"`
	State           string                  `json:"state"`
	ReceiverAddress *receiverAddressPayload `json:"receiver_address"`
}

func (s *shipmentPayload) toDomain() *marketplace.Shipment {
	sp := shippingPayload{
		ShippingMode:    s.ShippingMode,
		Mode:            s.Mode,
		LogisticType:    s.LogisticType,
		State:           s.State,
		ReceiverAddress: s.ReceiverAddress,
	}
	return &marketplace.Shipment{
		ID:       s.ID,
		Method:   sp.method(),
		Province: sp.province(),
	}
}

// userPayload is the user lookup endpoint payload
type userPayload struct {
	ID               int64  `json:"id"`
	Nickname         string `json:"nickname"`
	SellerReputation struct {
		LevelID string `json:"level_id"`
	} `json:"seller_reputation"`
	Status struct {
		SiteStatus string `json:"site_status"`
	} `json:"status"`
}

func (u *userPayload) toDomain() *marketplace.SellerProfile {
	return &marketplace.SellerProfile{
		ID:                u.ID,
		Nickname:          u.Nickname,
		ReputationLevelID: u.SellerReputation.LevelID,
		Status:            u.Status.SiteStatus,
	}
}

// itemPayload is an item detail payload
type itemPayload struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Permalink string  `json:"permalink"`
	SiteID    string  `json:"site_id"`
	Condition string  `json:"condition"`
	Status    string  `json:"status"`
}

func (i *itemPayload) toDomain() marketplace.Item {
	siteID := i.SiteID
	if siteID == "" {
		siteID = DefaultSiteID
	}
	return marketplace.Item{
		ID:        i.ID,
		Title:     i.Title,
		Price:     decimal.NewFromFloat(i.Price),
		Permalink: i.Permalink,
		SiteID:    siteID,
		Condition: i.Condition,
		Status:    i.Status,
	}
}

// itemBatchEntry wraps one item of a multiget response
type itemBatchEntry struct {
	Code int         `json:"code"`
	Body itemPayload `json:"body"`
}

// listingSearchResponse is the active-listing id search envelope
type listingSearchResponse struct {
	Results []string      `json:"results"`
	Paging  pagingPayload `json:"paging"`
}

// eligibleItemsResponse is the promotion-eligibility lookup payload
type eligibleItemsResponse struct {
	EligibleItems []struct {
		ID string `json:"id"`
	} `json:"eligible_items"`
}

// promotionPayload is a promotion create/status payload
type promotionPayload struct {
	ID            flexID `json:"id"`
	Status        string `json:"status"`
	PromotionLink string `json:"promotion_link"`
	StartDate     string `json:"start_date"`
	FinishDate    string `json:"finish_date"`
	EndDate       string `json:"end_date"`
}

func (p *promotionPayload) toDomain() *marketplace.Promotion {
	promo := &marketplace.Promotion{
		ID:     p.ID.String(),
		Status: p.Status,
		Link:   optString(p.PromotionLink),
	}
	// finish_date takes precedence over end_date when both appear
	for _, raw := range []string{p.FinishDate, p.EndDate} {
		if raw == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			promo.FinishDate = &t
			break
		}
	}
	return promo
}

// createPromotionPayload is the promotion creation request body
type createPromotionPayload struct {
	SiteID    string                 `json:"site_id"`
	Type      string                 `json:"type"`
	StartDate string                 `json:"start_date"`
	EndDate   string                 `json:"end_date"`
	Items     []promotionItemPayload `json:"items"`
}

type promotionItemPayload struct {
	ItemID       string  `json:"item_id"`
	DiscountType string  `json:"discount_type"`
	Value        float64 `json:"value"`
}

// messagePayload is the message send request body
type messagePayload struct {
	From messagePartyPayload `json:"from"`
	To   messagePartyPayload `json:"to"`
	Text string              `json:"text"`
}

type messagePartyPayload struct {
	UserID int64 `json:"user_id"`
}

// itemPricePayload is the item price update request body
type itemPricePayload struct {
	Price json.Number `json:"price"`
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
