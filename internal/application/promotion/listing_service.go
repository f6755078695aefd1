package promotion

import (
	"context"

	"github.com/google/uuid"
	"github.com/melihub/backend/internal/application/integration"
	"github.com/melihub/backend/internal/domain/identity"
	"github.com/melihub/backend/internal/domain/marketplace"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ListingItem is one hydrated active listing
type ListingItem struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Permalink string          `json:"permalink"`
	Condition string          `json:"condition"`
	Status    string          `json:"status"`
}

// ListingPageResult is one page of the seller's active listings
type ListingPageResult struct {
	Items  []ListingItem `json:"items"`
	Total  int           `json:"total"`
	Offset int           `json:"offset"`
	Limit  int           `json:"limit"`
}

// ListingService pages through a seller's active listings and hydrates
// them with titles and prices via the batch item endpoint, feeding the
// product picker on the dashboard.
type ListingService struct {
	userRepo identity.UserRepository
	tokens   *integration.TokenService
	api      marketplace.API
	logger   *zap.Logger
}

// NewListingService creates a new listing service
func NewListingService(userRepo identity.UserRepository, tokens *integration.TokenService, api marketplace.API, logger *zap.Logger) *ListingService {
	return &ListingService{
		userRepo: userRepo,
		tokens:   tokens,
		api:      api,
		logger:   logger,
	}
}

// ListActive returns one page of the user's active listings
func (s *ListingService) ListActive(ctx context.Context, userID uuid.UUID, offset, limit int) (*ListingPageResult, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.EnsureForUser(ctx, user)
	if err != nil {
		return nil, err
	}
	if user.MeliUserID == nil {
		return nil, marketplace.ErrNotLinked
	}

	page, err := s.api.SearchActiveListings(ctx, token, *user.MeliUserID, offset, limit)
	if err != nil {
		return nil, err
	}

	result := &ListingPageResult{
		Items:  make([]ListingItem, 0, len(page.IDs)),
		Total:  page.Total,
		Offset: page.Offset,
		Limit:  page.Limit,
	}
	if len(page.IDs) == 0 {
		return result, nil
	}

	items, err := s.api.GetItems(ctx, token, page.IDs)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		result.Items = append(result.Items, ListingItem{
			ID:        item.ID,
			Title:     item.Title,
			Price:     item.Price,
			Permalink: item.Permalink,
			Condition: item.Condition,
			Status:    item.Status,
		})
	}
	return result, nil
}
