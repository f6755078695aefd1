package identity

import (
	"github.com/google/uuid"
	"github.com/melihub/backend/internal/infrastructure/auth"
)

// RegisterInput is the account registration request
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

// LoginInput is the login request
type LoginInput struct {
	Email    string
	Password string
}

// UserProfile is the account view returned to the dashboard
type UserProfile struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Linked      bool      `json:"linked"`
	MeliUserID  *int64    `json:"meli_user_id,omitempty"`
}

// AuthResult is a successful registration or login
type AuthResult struct {
	User   *UserProfile    `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}
