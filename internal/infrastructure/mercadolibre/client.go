package mercadolibre

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/melihub/backend/internal/domain/marketplace"
	"github.com/shopspring/decimal"
)

// maxResponseSize is the maximum allowed response size from the
// MercadoLibre API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// maxErrorDetail caps how much of an upstream error body is carried in
// error values
const maxErrorDetail = 512

// promotionType is the only promotion type this client submits
const promotionType = "PRICE_DISCOUNT"

// Client implements the marketplace.API port against the MercadoLibre
// REST API.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates a MercadoLibre API client with the given configuration
func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// ---------------------------------------------------------------------------
// OAuth
// ---------------------------------------------------------------------------

// ExchangeCode runs the authorization-code grant with PKCE
func (c *Client) ExchangeCode(ctx context.Context, grant marketplace.AuthorizationCode) (*marketplace.TokenPair, error) {
	if err := grant.Validate(); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", c.config.AppID)
	form.Set("client_secret", c.config.SecretKey)
	form.Set("code", grant.Code)
	form.Set("redirect_uri", c.config.RedirectURI)
	form.Set("code_verifier", grant.Verifier)

	return c.requestToken(ctx, "exchange authorization code", form)
}

// RefreshAccessToken runs the refresh-token grant
func (c *Client) RefreshAccessToken(ctx context.Context, refreshToken string) (*marketplace.TokenPair, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: refresh token is required", marketplace.ErrInvalidRequest)
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", c.config.AppID)
	form.Set("client_secret", c.config.SecretKey)
	form.Set("refresh_token", refreshToken)

	return c.requestToken(ctx, "refresh token", form)
}

func (c *Client) requestToken(ctx context.Context, op string, form url.Values) (*marketplace.TokenPair, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.APIBaseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("mercadolibre: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	status, body, err := c.send(req, op)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, marketplace.NewUpstreamError(op, status, excerpt(body))
	}

	var payload tokenResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, marketplace.NewUpstreamError(op, 0, "malformed token response")
	}
	if payload.AccessToken == "" || payload.RefreshToken == "" {
		return nil, marketplace.NewUpstreamError(op, 0, "token response missing token pair")
	}
	return payload.toDomain(), nil
}

// ---------------------------------------------------------------------------
// Read Operations
// ---------------------------------------------------------------------------

// SearchOrders fetches the seller's order list
func (c *Client) SearchOrders(ctx context.Context, accessToken string, sellerID int64) ([]marketplace.Order, error) {
	query := url.Values{}
	query.Set("seller", formatInt(sellerID))

	body, err := c.get(ctx, accessToken, "/orders/search", query, "search orders")
	if err != nil {
		return nil, err
	}

	var payload orderSearchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, marketplace.NewUpstreamError("search orders", 0, "malformed order search response")
	}

	orders := make([]marketplace.Order, 0, len(payload.Results))
	for i := range payload.Results {
		orders = append(orders, payload.Results[i].toDomain())
	}
	return orders, nil
}

// GetOrder fetches a single order with its full detail payload
func (c *Client) GetOrder(ctx context.Context, accessToken string, orderID int64) (*marketplace.Order, error) {
	body, err := c.get(ctx, accessToken, "/orders/"+formatInt(orderID), nil, "get order")
	if err != nil {
		return nil, err
	}

	var payload orderPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, marketplace.NewUpstreamError("get order", 0, "malformed order response")
	}
	order := payload.toDomain()
	return &order, nil
}

// GetShipment fetches a shipment detail payload
func (c *Client) GetShipment(ctx context.Context, accessToken string, shipmentID int64) (*marketplace.Shipment, error) {
	body, err := c.get(ctx, accessToken, "/shipments/"+formatInt(shipmentID), nil, "get shipment")
	if err != nil {
		return nil, err
	}

	var payload shipmentPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, marketplace.NewUpstreamError("get shipment", 0, "malformed shipment response")
	}
	return payload.toDomain(), nil
}

// GetSeller fetches the seller account record, reputation included
func (c *Client) GetSeller(ctx context.Context, accessToken string, sellerID int64) (*marketplace.SellerProfile, error) {
	body, err := c.get(ctx, accessToken, "/users/"+formatInt(sellerID), nil, "get seller")
	if err != nil {
		return nil, err
	}

	var payload userPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, marketplace.NewUpstreamError("get seller", 0, "malformed user response")
	}
	return payload.toDomain(), nil
}

// GetItem fetches a single listing
func (c *Client) GetItem(ctx context.Context, accessToken, itemID string) (*marketplace.Item, error) {
	if itemID == "" {
		return nil, fmt.Errorf("%w: item id is required", marketplace.ErrInvalidRequest)
	}

	status, body, err := c.rawGet(ctx, accessToken, "/items/"+url.PathEscape(itemID), nil, "get item")
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", marketplace.ErrItemNotFound, itemID)
	}
	if status >= 400 {
		return nil, marketplace.NewUpstreamError("get item", status, excerpt(body))
	}

	var payload itemPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, marketplace.NewUpstreamError("get item", 0, "malformed item response")
	}
	item := payload.toDomain()
	return &item, nil
}

// GetItems fetches multiple listings in one batch call. Entries the
// marketplace could not resolve are dropped from the result.
func (c *Client) GetItems(ctx context.Context, accessToken string, itemIDs []string) ([]marketplace.Item, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}

	query := url.Values{}
	query.Set("ids", strings.Join(itemIDs, ","))

	body, err := c.get(ctx, accessToken, "/items", query, "get items batch")
	if err != nil {
		return nil, err
	}

	var entries []itemBatchEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, marketplace.NewUpstreamError("get items batch", 0, "malformed item batch response")
	}

	items := make([]marketplace.Item, 0, len(entries))
	for i := range entries {
		if entries[i].Code != http.StatusOK {
			continue
		}
		items = append(items, entries[i].Body.toDomain())
	}
	return items, nil
}

// SearchActiveListings pages through the seller's active listing ids
func (c *Client) SearchActiveListings(ctx context.Context, accessToken string, sellerID int64, offset, limit int) (*marketplace.ListingPage, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := url.Values{}
	query.Set("status", "active")
	query.Set("offset", fmt.Sprintf("%d", offset))
	query.Set("limit", fmt.Sprintf("%d", limit))

	body, err := c.get(ctx, accessToken, "/users/"+formatInt(sellerID)+"/items/search", query, "search active listings")
	if err != nil {
		return nil, err
	}

	var payload listingSearchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, marketplace.NewUpstreamError("search active listings", 0, "malformed listing search response")
	}
	return &marketplace.ListingPage{
		IDs:    payload.Results,
		Total:  payload.Paging.Total,
		Offset: offset,
		Limit:  limit,
	}, nil
}

// EligibleItems returns the listing ids eligible for promotions among
// the requested ids on the given site
func (c *Client) EligibleItems(ctx context.Context, accessToken string, itemIDs []string, siteID string) ([]string, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	if siteID == "" {
		siteID = DefaultSiteID
	}

	query := url.Values{}
	query.Set("ids", strings.Join(itemIDs, ","))
	query.Set("site_id", siteID)

	body, err := c.get(ctx, accessToken, "/seller-promotions/items/eligible", query, "eligible items")
	if err != nil {
		return nil, err
	}

	var payload eligibleItemsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, marketplace.NewUpstreamError("eligible items", 0, "malformed eligibility response")
	}

	ids := make([]string, 0, len(payload.EligibleItems))
	for _, entry := range payload.EligibleItems {
		ids = append(ids, entry.ID)
	}
	return ids, nil
}

// GetPromotion fetches a promotion's current status
func (c *Client) GetPromotion(ctx context.Context, accessToken, promotionID string) (*marketplace.Promotion, error) {
	if promotionID == "" {
		return nil, fmt.Errorf("%w: promotion id is required", marketplace.ErrInvalidRequest)
	}

	body, err := c.get(ctx, accessToken, "/seller-promotions/promotions/"+url.PathEscape(promotionID), nil, "get promotion")
	if err != nil {
		return nil, err
	}

	var payload promotionPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, marketplace.NewUpstreamError("get promotion", 0, "malformed promotion response")
	}
	return payload.toDomain(), nil
}

// ---------------------------------------------------------------------------
// Write Operations
// ---------------------------------------------------------------------------

// CreatePromotion submits a percentage price-discount promotion
func (c *Client) CreatePromotion(ctx context.Context, accessToken string, req *marketplace.CreatePromotionRequest) (*marketplace.Promotion, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	payload := createPromotionPayload{
		SiteID:    req.SiteID,
		Type:      promotionType,
		StartDate: req.StartDate.UTC().Format(time.RFC3339),
		EndDate:   req.EndDate.UTC().Format(time.RFC3339),
		Items: []promotionItemPayload{{
			ItemID:       req.ItemID,
			DiscountType: "PERCENTAGE",
			Value:        req.DiscountPercent,
		}},
	}

	query := url.Values{}
	query.Set("app_version", "1")

	status, body, err := c.sendJSON(ctx, http.MethodPost, accessToken, "/seller-promotions/promotions", query, payload, "create promotion")
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, &marketplace.PromotionRejectedError{StatusCode: status, Detail: excerpt(body)}
	}

	var resp promotionPayload
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, marketplace.NewUpstreamError("create promotion", 0, "malformed promotion response")
	}
	if resp.ID == "" {
		return nil, &marketplace.PromotionRejectedError{StatusCode: status, Detail: "promotion response missing id"}
	}
	return resp.toDomain(), nil
}

// UpdateItemPrice overwrites a listing's price
func (c *Client) UpdateItemPrice(ctx context.Context, accessToken, itemID string, price decimal.Decimal) error {
	if itemID == "" {
		return fmt.Errorf("%w: item id is required", marketplace.ErrInvalidRequest)
	}
	if price.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", marketplace.ErrInvalidRequest)
	}

	payload := itemPricePayload{Price: json.Number(price.String())}

	status, body, err := c.sendJSON(ctx, http.MethodPut, accessToken, "/items/"+url.PathEscape(itemID), nil, payload, "update item price")
	if err != nil {
		return err
	}
	if status >= 400 {
		return marketplace.NewUpstreamError("update item price", status, excerpt(body))
	}
	return nil
}

// SendMessage delivers one post-sale message for an order/pack
func (c *Client) SendMessage(ctx context.Context, accessToken string, req *marketplace.MessageRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	path := fmt.Sprintf("/messages/packs/%d/sellers/%d", req.PackID, req.SellerID)
	query := url.Values{}
	query.Set("tag", "post_sale")

	payload := messagePayload{
		From: messagePartyPayload{UserID: req.SellerID},
		To:   messagePartyPayload{UserID: req.BuyerID},
		Text: req.Text,
	}

	status, body, err := c.sendJSON(ctx, http.MethodPost, accessToken, path, query, payload, "send message")
	if err != nil {
		return err
	}
	if status >= 400 {
		return &marketplace.DeliveryError{PackID: req.PackID, StatusCode: status, Detail: excerpt(body)}
	}
	return nil
}

// ---------------------------------------------------------------------------
// HTTP plumbing
// ---------------------------------------------------------------------------

// get performs a bearer-authenticated GET and rejects any non-2xx status
func (c *Client) get(ctx context.Context, accessToken, path string, query url.Values, op string) ([]byte, error) {
	status, body, err := c.rawGet(ctx, accessToken, path, query, op)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, marketplace.NewUpstreamError(op, status, excerpt(body))
	}
	return body, nil
}

// rawGet performs a bearer-authenticated GET and returns the status for
// callers that interpret specific codes themselves
func (c *Client) rawGet(ctx context.Context, accessToken, path string, query url.Values, op string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(path, query), nil)
	if err != nil {
		return 0, nil, fmt.Errorf("mercadolibre: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	return c.send(req, op)
}

// sendJSON performs a bearer-authenticated request with a JSON body
func (c *Client) sendJSON(ctx context.Context, method, accessToken, path string, query url.Values, payload any, op string) (int, []byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("mercadolibre: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path, query), bytes.NewReader(encoded))
	if err != nil {
		return 0, nil, fmt.Errorf("mercadolibre: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.send(req, op)
}

func (c *Client) send(req *http.Request, op string) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, marketplace.NewUpstreamError(op, 0, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return 0, nil, marketplace.NewUpstreamError(op, resp.StatusCode, "failed to read response body")
	}
	return resp.StatusCode, body, nil
}

func (c *Client) buildURL(path string, query url.Values) string {
	u := c.config.APIBaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// excerpt trims an upstream body down to an error-sized detail string
func excerpt(body []byte) string {
	detail := strings.TrimSpace(string(body))
	if len(detail) > maxErrorDetail {
		detail = detail[:maxErrorDetail]
	}
	return detail
}

// Ensure Client implements the marketplace.API interface
var _ marketplace.API = (*Client)(nil)
