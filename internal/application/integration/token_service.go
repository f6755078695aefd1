package integration

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/melihub/backend/internal/domain/identity"
	"github.com/melihub/backend/internal/domain/marketplace"
	"github.com/melihub/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// RefreshWindow is how close to expiry a stored access token may get
// before it is refreshed. The window is inclusive: a token expiring in
// exactly this duration is refreshed.
const RefreshWindow = 5 * time.Minute

// TokenService guarantees a usable marketplace access token for a user,
// refreshing and persisting the credential pair when the stored one is
// near expiry.
//
// There is deliberately no per-user locking: concurrent calls for the
// same user may both refresh, and the later write simply supersedes the
// earlier pair in storage.
type TokenService struct {
	userRepo identity.UserRepository
	api      marketplace.API
	logger   *zap.Logger
	metrics  *telemetry.IntegrationMetrics
}

// NewTokenService creates a new token service
func NewTokenService(userRepo identity.UserRepository, api marketplace.API, logger *zap.Logger) *TokenService {
	return &TokenService{
		userRepo: userRepo,
		api:      api,
		logger:   logger,
	}
}

// WithMetrics attaches integration metrics to the service
func (s *TokenService) WithMetrics(metrics *telemetry.IntegrationMetrics) *TokenService {
	s.metrics = metrics
	return s
}

// EnsureAccessToken returns a valid access token for the user,
// refreshing first when the stored token is within the refresh window.
// Returns marketplace.ErrNotLinked when the user has no credentials and
// marketplace.ErrTokenRefresh when the refresh grant fails.
func (s *TokenService) EnsureAccessToken(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return s.EnsureForUser(ctx, user)
}

// EnsureForUser is EnsureAccessToken for an already loaded user. The
// user's credential fields are updated in place when a refresh happens.
func (s *TokenService) EnsureForUser(ctx context.Context, user *identity.User) (string, error) {
	if !user.IsLinked() {
		return "", marketplace.ErrNotLinked
	}

	if !user.NeedsTokenRefresh(time.Now(), RefreshWindow) {
		return user.MeliAccessToken, nil
	}

	pair, err := s.api.RefreshAccessToken(ctx, user.MeliRefreshToken)
	if err != nil {
		s.logger.Warn("Marketplace token refresh failed",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
		s.metrics.RecordTokenRefresh(ctx, telemetry.OutcomeFailure)
		return "", fmt.Errorf("%w: %v", marketplace.ErrTokenRefresh, err)
	}
	s.metrics.RecordTokenRefresh(ctx, telemetry.OutcomeSuccess)

	expiresAt := pair.ExpiresAt(time.Now())
	if err := user.UpdateMeliTokens(pair.AccessToken, pair.RefreshToken, expiresAt); err != nil {
		return "", err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return "", err
	}

	s.logger.Debug("Marketplace token refreshed",
		zap.String("user_id", user.ID.String()),
		zap.Time("expires_at", expiresAt))

	return pair.AccessToken, nil
}
