package promotion

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/melihub/backend/internal/application/integration"
	"github.com/melihub/backend/internal/domain/crm"
	"github.com/melihub/backend/internal/domain/marketplace"
	"github.com/melihub/backend/internal/domain/shared"
)

func newPriceFixture() (*MockUserRepository, *MockProductRepository, *MockMarketplaceAPI, *PriceService) {
	userRepo := new(MockUserRepository)
	productRepo := new(MockProductRepository)
	api := new(MockMarketplaceAPI)
	tokens := integration.NewTokenService(userRepo, api, zap.NewNop())
	service := NewPriceService(userRepo, productRepo, tokens, api, zap.NewNop())
	return userRepo, productRepo, api, service
}

func TestPriceService_ApplyDirectDiscount(t *testing.T) {
	ctx := context.Background()

	t.Run("cuts the price rounded to cents", func(t *testing.T) {
		userRepo, productRepo, api, service := newPriceFixture()
		user := linkedUser(t)
		item := newItem()
		item.Price = decimal.RequireFromString("15999.50")
		// 15999.50 * 0.85 = 13599.575, rounds to 13599.58
		want := decimal.RequireFromString("13599.58")

		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		api.On("GetItem", ctx, "token-abc", "MLA123456789").Return(item, nil)
		api.On("UpdateItemPrice", ctx, "token-abc", "MLA123456789", mock.MatchedBy(func(p decimal.Decimal) bool {
			return p.Equal(want)
		})).Return(nil)
		productRepo.On("FindByItem", ctx, user.ID, "MLA123456789").Return(nil, shared.ErrNotFound)
		productRepo.On("Save", ctx, mock.MatchedBy(func(p *crm.Product) bool {
			return p.MeliItemID == "MLA123456789" && p.Price.Equal(want)
		})).Return(nil)

		result, err := service.ApplyDirectDiscount(ctx, user.ID, "MLA123456789", 15)
		require.NoError(t, err)
		assert.True(t, result.OriginalPrice.Equal(item.Price))
		assert.True(t, result.DiscountedPrice.Equal(want))
		productRepo.AssertExpectations(t)
	})

	t.Run("refreshes an existing product record", func(t *testing.T) {
		userRepo, productRepo, api, service := newPriceFixture()
		user := linkedUser(t)
		item := newItem()
		existing, err := crm.NewProduct(user.ID, item.ID, "Old Title", decimal.NewFromInt(3000), "https://old.example.com")
		require.NoError(t, err)

		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		api.On("GetItem", ctx, "token-abc", item.ID).Return(item, nil)
		api.On("UpdateItemPrice", ctx, "token-abc", item.ID, mock.Anything).Return(nil)
		productRepo.On("FindByItem", ctx, user.ID, item.ID).Return(existing, nil)
		productRepo.On("Save", ctx, existing).Return(nil)

		_, err = service.ApplyDirectDiscount(ctx, user.ID, item.ID, 10)
		require.NoError(t, err)
		assert.Equal(t, "Yerba Mate 1kg", existing.Title)
		assert.True(t, existing.Price.Equal(decimal.NewFromInt(3150)))
	})

	t.Run("product refresh failure is soft", func(t *testing.T) {
		userRepo, productRepo, api, service := newPriceFixture()
		user := linkedUser(t)
		item := newItem()

		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		api.On("GetItem", ctx, "token-abc", item.ID).Return(item, nil)
		api.On("UpdateItemPrice", ctx, "token-abc", item.ID, mock.Anything).Return(nil)
		productRepo.On("FindByItem", ctx, user.ID, item.ID).Return(nil, assert.AnError)

		result, err := service.ApplyDirectDiscount(ctx, user.ID, item.ID, 10)
		require.NoError(t, err)
		assert.NotNil(t, result)
	})

	t.Run("price update failure surfaces to the caller", func(t *testing.T) {
		userRepo, productRepo, api, service := newPriceFixture()
		user := linkedUser(t)
		item := newItem()

		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		api.On("GetItem", ctx, "token-abc", item.ID).Return(item, nil)
		api.On("UpdateItemPrice", ctx, "token-abc", item.ID, mock.Anything).
			Return(marketplace.NewUpstreamError("update item price", 403, "forbidden"))

		_, err := service.ApplyDirectDiscount(ctx, user.ID, item.ID, 10)
		var ue *marketplace.UpstreamError
		assert.ErrorAs(t, err, &ue)
		productRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects out-of-range discounts", func(t *testing.T) {
		_, _, _, service := newPriceFixture()

		_, err := service.ApplyDirectDiscount(ctx, uuid.New(), "MLA123", 0)
		assert.ErrorIs(t, err, marketplace.ErrInvalidRequest)
		_, err = service.ApplyDirectDiscount(ctx, uuid.New(), "MLA123", 100)
		assert.ErrorIs(t, err, marketplace.ErrInvalidRequest)
		_, err = service.ApplyDirectDiscount(ctx, uuid.New(), "", 10)
		assert.ErrorIs(t, err, marketplace.ErrInvalidRequest)
	})
}
