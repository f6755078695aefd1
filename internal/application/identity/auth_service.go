package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/melihub/backend/internal/domain/identity"
	"github.com/melihub/backend/internal/domain/shared"
	"github.com/melihub/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AuthService handles registration, login and session refresh
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(userRepo identity.UserRepository, jwtService *auth.JWTService, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Register creates a local account and returns a session
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "An account with this email already exists")
	}

	user, err := identity.NewUser(input.Email, input.Password, input.DisplayName)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	return s.session(user)
}

// Login authenticates a user and returns a session
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		s.logger.Warn("Login for unknown email", zap.String("email", input.Email))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	if !user.IsActive() {
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account is deactivated")
	}
	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	return s.session(user)
}

// Refresh exchanges a refresh token for a new session
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	pair, err := s.jwtService.RefreshTokenPair(refreshToken)
	if err != nil {
		return nil, shared.ErrUnauthorized
	}
	return pair, nil
}

// Profile returns the user's account profile
func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*UserProfile, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return profileOf(user), nil
}

func (s *AuthService) session(user *identity.User) (*AuthResult, error) {
	pair, err := s.jwtService.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		User:   profileOf(user),
		Tokens: pair,
	}, nil
}

func profileOf(user *identity.User) *UserProfile {
	return &UserProfile{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Linked:      user.IsLinked(),
		MeliUserID:  user.MeliUserID,
	}
}
