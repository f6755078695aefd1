package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/melihub/backend/internal/domain/identity"
	"github.com/melihub/backend/internal/domain/marketplace"
	"github.com/melihub/backend/internal/domain/shared"
)

func linkedUser(expiresAt time.Time) *identity.User {
	sellerID := int64(111222333)
	return &identity.User{
		BaseEntity:         shared.NewBaseEntity(),
		Email:              "seller@example.com",
		Status:             identity.UserStatusActive,
		MeliUserID:         &sellerID,
		MeliAccessToken:    "stored-access",
		MeliRefreshToken:   "stored-refresh",
		MeliTokenExpiresAt: &expiresAt,
	}
}

func TestTokenService_EnsureForUser(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh token is returned without a refresh", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		api := new(MockMarketplaceAPI)
		service := NewTokenService(userRepo, api, zap.NewNop())

		user := linkedUser(time.Now().Add(6 * time.Hour))

		token, err := service.EnsureForUser(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, "stored-access", token)
		api.AssertNotCalled(t, "RefreshAccessToken", mock.Anything, mock.Anything)
		userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("near-expiry token is refreshed and persisted", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		api := new(MockMarketplaceAPI)
		service := NewTokenService(userRepo, api, zap.NewNop())

		user := linkedUser(time.Now().Add(2 * time.Minute))
		api.On("RefreshAccessToken", ctx, "stored-refresh").Return(&marketplace.TokenPair{
			AccessToken:  "new-access",
			RefreshToken: "new-refresh",
			ExpiresIn:    21600,
			UserID:       111222333,
		}, nil)
		userRepo.On("Update", ctx, user).Return(nil)

		token, err := service.EnsureForUser(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, "new-access", token)
		assert.Equal(t, "new-access", user.MeliAccessToken)
		assert.Equal(t, "new-refresh", user.MeliRefreshToken)
		require.NotNil(t, user.MeliTokenExpiresAt)
		assert.WithinDuration(t, time.Now().Add(6*time.Hour), *user.MeliTokenExpiresAt, time.Minute)
		api.AssertExpectations(t)
		userRepo.AssertExpectations(t)
	})

	t.Run("expiry exactly at the window edge triggers a refresh", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		api := new(MockMarketplaceAPI)
		service := NewTokenService(userRepo, api, zap.NewNop())

		user := linkedUser(time.Now().Add(RefreshWindow))
		api.On("RefreshAccessToken", ctx, "stored-refresh").Return(&marketplace.TokenPair{
			AccessToken:  "new-access",
			RefreshToken: "new-refresh",
			ExpiresIn:    21600,
		}, nil)
		userRepo.On("Update", ctx, user).Return(nil)

		token, err := service.EnsureForUser(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, "new-access", token)
		api.AssertExpectations(t)
	})

	t.Run("unlinked user", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		api := new(MockMarketplaceAPI)
		service := NewTokenService(userRepo, api, zap.NewNop())

		user := &identity.User{BaseEntity: shared.NewBaseEntity(), Status: identity.UserStatusActive}

		_, err := service.EnsureForUser(ctx, user)
		assert.ErrorIs(t, err, marketplace.ErrNotLinked)
	})

	t.Run("refresh grant failure keeps the stored pair", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		api := new(MockMarketplaceAPI)
		service := NewTokenService(userRepo, api, zap.NewNop())

		user := linkedUser(time.Now().Add(-time.Minute))
		api.On("RefreshAccessToken", ctx, "stored-refresh").
			Return(nil, errors.New("invalid_grant"))

		_, err := service.EnsureForUser(ctx, user)
		assert.ErrorIs(t, err, marketplace.ErrTokenRefresh)
		assert.Equal(t, "stored-access", user.MeliAccessToken)
		userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestTokenService_EnsureAccessToken(t *testing.T) {
	ctx := context.Background()

	t.Run("loads the user by id", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		api := new(MockMarketplaceAPI)
		service := NewTokenService(userRepo, api, zap.NewNop())

		user := linkedUser(time.Now().Add(6 * time.Hour))
		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

		token, err := service.EnsureAccessToken(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "stored-access", token)
		userRepo.AssertExpectations(t)
	})

	t.Run("propagates lookup failure", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		api := new(MockMarketplaceAPI)
		service := NewTokenService(userRepo, api, zap.NewNop())

		user := linkedUser(time.Now())
		userRepo.On("FindByID", ctx, user.ID).Return(nil, shared.ErrNotFound)

		_, err := service.EnsureAccessToken(ctx, user.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
