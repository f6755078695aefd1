package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/melihub/backend/internal/domain/identity"
	"github.com/melihub/backend/internal/domain/marketplace"
	"github.com/melihub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LinkStatus describes a user's marketplace connection
type LinkStatus struct {
	Linked         bool       `json:"linked"`
	MeliUserID     *int64     `json:"meli_user_id,omitempty"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty"`
}

// LinkService manages the marketplace account connection lifecycle:
// PKCE verifier handoff, the authorization-code exchange, and unlink.
type LinkService struct {
	userRepo  identity.UserRepository
	api       marketplace.API
	verifiers marketplace.VerifierStore
	logger    *zap.Logger
}

// NewLinkService creates a new link service
func NewLinkService(userRepo identity.UserRepository, api marketplace.API, verifiers marketplace.VerifierStore, logger *zap.Logger) *LinkService {
	return &LinkService{
		userRepo:  userRepo,
		api:       api,
		verifiers: verifiers,
		logger:    logger,
	}
}

// StoreVerifier keeps the PKCE code verifier for the user while the
// browser completes the marketplace authorization redirect.
func (s *LinkService) StoreVerifier(ctx context.Context, userID uuid.UUID, verifier string) error {
	if strings.TrimSpace(verifier) == "" {
		return fmt.Errorf("%w: PKCE verifier is required", marketplace.ErrInvalidRequest)
	}
	return s.verifiers.Put(ctx, userID, verifier)
}

// Link exchanges the authorization code for a token pair and stores the
// resulting marketplace identity on the user. An identity already owned
// by a different user is rejected, never reassigned.
func (s *LinkService) Link(ctx context.Context, userID uuid.UUID, code string) (*LinkStatus, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	verifier, err := s.verifiers.Take(ctx, userID)
	if err != nil {
		if errors.Is(err, marketplace.ErrVerifierNotFound) {
			return nil, shared.NewDomainError("VERIFIER_EXPIRED", "Linking session expired, restart the connection flow")
		}
		return nil, err
	}

	pair, err := s.api.ExchangeCode(ctx, marketplace.AuthorizationCode{Code: code, Verifier: verifier})
	if err != nil {
		return nil, err
	}

	// The identity-uniqueness invariant: one marketplace account maps
	// to at most one local user.
	owner, err := s.userRepo.FindByMeliUserID(ctx, pair.UserID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if owner != nil && owner.ID != user.ID {
		s.logger.Warn("Rejected marketplace identity relink",
			zap.String("user_id", user.ID.String()),
			zap.Int64("meli_user_id", pair.UserID))
		return nil, shared.NewDomainError("IDENTITY_ALREADY_LINKED", "This MercadoLibre account is already linked to another user")
	}

	expiresAt := pair.ExpiresAt(time.Now())
	if err := user.LinkMercadoLibre(pair.UserID, pair.AccessToken, pair.RefreshToken, expiresAt); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("Marketplace account linked",
		zap.String("user_id", user.ID.String()),
		zap.Int64("meli_user_id", pair.UserID))

	return statusOf(user), nil
}

// Unlink clears all marketplace credential fields for the user
func (s *LinkService) Unlink(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	user.UnlinkMercadoLibre()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Info("Marketplace account unlinked", zap.String("user_id", user.ID.String()))
	return nil
}

// Status reports the user's current marketplace connection
func (s *LinkService) Status(ctx context.Context, userID uuid.UUID) (*LinkStatus, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return statusOf(user), nil
}

func statusOf(user *identity.User) *LinkStatus {
	return &LinkStatus{
		Linked:         user.IsLinked(),
		MeliUserID:     user.MeliUserID,
		TokenExpiresAt: user.MeliTokenExpiresAt,
	}
}
