package promotion

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/melihub/backend/internal/application/integration"
	"github.com/melihub/backend/internal/domain/crm"
	"github.com/melihub/backend/internal/domain/identity"
	"github.com/melihub/backend/internal/domain/marketplace"
	"github.com/melihub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DirectDiscountResult reports a direct price cut applied to a listing
type DirectDiscountResult struct {
	ItemID          string          `json:"item_id"`
	OriginalPrice   decimal.Decimal `json:"original_price"`
	DiscountedPrice decimal.Decimal `json:"discounted_price"`
}

// PriceService applies immediate price discounts by rewriting the
// listing price, without creating a marketplace promotion object.
type PriceService struct {
	userRepo    identity.UserRepository
	productRepo crm.ProductRepository
	tokens      *integration.TokenService
	api         marketplace.API
	logger      *zap.Logger
}

// NewPriceService creates a new price service
func NewPriceService(
	userRepo identity.UserRepository,
	productRepo crm.ProductRepository,
	tokens *integration.TokenService,
	api marketplace.API,
	logger *zap.Logger,
) *PriceService {
	return &PriceService{
		userRepo:    userRepo,
		productRepo: productRepo,
		tokens:      tokens,
		api:         api,
		logger:      logger,
	}
}

// ApplyDirectDiscount cuts the listing price by the given percentage,
// rounded to 2 decimal places, and refreshes the local product record.
func (s *PriceService) ApplyDirectDiscount(ctx context.Context, userID uuid.UUID, itemID string, discountPercent float64) (*DirectDiscountResult, error) {
	if itemID == "" {
		return nil, fmt.Errorf("%w: item id is required", marketplace.ErrInvalidRequest)
	}
	if discountPercent <= 0 || discountPercent >= 100 {
		return nil, fmt.Errorf("%w: discount must be between 0 and 100 exclusive", marketplace.ErrInvalidRequest)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.EnsureForUser(ctx, user)
	if err != nil {
		return nil, err
	}

	item, err := s.api.GetItem(ctx, token, itemID)
	if err != nil {
		return nil, err
	}

	factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(discountPercent).Div(decimal.NewFromInt(100)))
	discounted := item.Price.Mul(factor).Round(2)

	if err := s.api.UpdateItemPrice(ctx, token, item.ID, discounted); err != nil {
		return nil, err
	}

	if err := s.refreshProduct(ctx, userID, item, discounted); err != nil {
		s.logger.Warn("Failed to refresh product record after price update",
			zap.String("item_id", item.ID),
			zap.Error(err))
	}

	s.logger.Info("Direct discount applied",
		zap.String("item_id", item.ID),
		zap.String("new_price", discounted.String()))

	return &DirectDiscountResult{
		ItemID:          item.ID,
		OriginalPrice:   item.Price,
		DiscountedPrice: discounted,
	}, nil
}

func (s *PriceService) refreshProduct(ctx context.Context, userID uuid.UUID, item *marketplace.Item, price decimal.Decimal) error {
	product, err := s.productRepo.FindByItem(ctx, userID, item.ID)
	switch {
	case err == nil:
		if err := product.UpdateListing(item.Title, price, item.Permalink); err != nil {
			return err
		}
		return s.productRepo.Save(ctx, product)
	case errors.Is(err, shared.ErrNotFound):
		product, err = crm.NewProduct(userID, item.ID, item.Title, price, item.Permalink)
		if err != nil {
			return err
		}
		return s.productRepo.Save(ctx, product)
	default:
		return err
	}
}
