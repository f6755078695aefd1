package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/melihub/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// UserStatus represents the status of a user
type UserStatus string

const (
	UserStatusActive      UserStatus = "active"      // Normal active status
	UserStatusDeactivated UserStatus = "deactivated" // Manually deactivated
)

// Password cost for bcrypt
const bcryptCost = 12

// User represents a local seller account. It is the aggregate root for
// account operations and owns the linked marketplace credentials: at
// most one MercadoLibre identity per user, and one user per identity.
type User struct {
	shared.BaseEntity
	Email        string
	PasswordHash string
	DisplayName  string
	Status       UserStatus

	// Marketplace credentials. All four fields are set together on link
	// and cleared together on unlink.
	MeliUserID         *int64
	MeliAccessToken    string
	MeliRefreshToken   string
	MeliTokenExpiresAt *time.Time
}

// NewUser creates a new active user with required fields
func NewUser(email, password, displayName string) (*User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &User{
		BaseEntity:   shared.NewBaseEntity(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		DisplayName:  strings.TrimSpace(displayName),
		Status:       UserStatusActive,
	}, nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// SetPassword sets a new password
func (u *User) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()

	return nil
}

// SetDisplayName sets the user's display name
func (u *User) SetDisplayName(displayName string) error {
	if displayName != "" && len(displayName) > 200 {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 200 characters")
	}

	u.DisplayName = strings.TrimSpace(displayName)
	u.UpdatedAt = time.Now()

	return nil
}

// IsActive returns true if user is active
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// Deactivate deactivates the user
func (u *User) Deactivate() error {
	if u.Status == UserStatusDeactivated {
		return shared.NewDomainError("ALREADY_DEACTIVATED", "User is already deactivated")
	}

	u.Status = UserStatusDeactivated
	u.UpdatedAt = time.Now()

	return nil
}

// IsLinked returns true when the user has usable marketplace
// credentials on record: a refresh token and an expiry.
func (u *User) IsLinked() bool {
	return u.MeliRefreshToken != "" && u.MeliTokenExpiresAt != nil
}

// LinkMercadoLibre stores a freshly granted marketplace identity and
// token pair. Relinking the same identity refreshes the credentials;
// switching identities goes through Unlink first.
func (u *User) LinkMercadoLibre(meliUserID int64, accessToken, refreshToken string, expiresAt time.Time) error {
	if meliUserID == 0 {
		return shared.NewDomainError("INVALID_MELI_USER", "Marketplace user id cannot be empty")
	}
	if accessToken == "" || refreshToken == "" {
		return shared.NewDomainError("INVALID_TOKEN_PAIR", "Access and refresh tokens are required")
	}
	if u.MeliUserID != nil && *u.MeliUserID != meliUserID {
		return shared.NewDomainError("IDENTITY_MISMATCH", "User is already linked to a different marketplace identity")
	}

	u.MeliUserID = &meliUserID
	u.MeliAccessToken = accessToken
	u.MeliRefreshToken = refreshToken
	u.MeliTokenExpiresAt = &expiresAt
	u.UpdatedAt = time.Now()

	return nil
}

// UpdateMeliTokens persists a refreshed token pair. The marketplace
// identity itself never changes on refresh.
func (u *User) UpdateMeliTokens(accessToken, refreshToken string, expiresAt time.Time) error {
	if !u.IsLinked() {
		return shared.NewDomainError("NOT_LINKED", "User has no linked marketplace account")
	}
	if accessToken == "" || refreshToken == "" {
		return shared.NewDomainError("INVALID_TOKEN_PAIR", "Access and refresh tokens are required")
	}

	u.MeliAccessToken = accessToken
	u.MeliRefreshToken = refreshToken
	u.MeliTokenExpiresAt = &expiresAt
	u.UpdatedAt = time.Now()

	return nil
}

// UnlinkMercadoLibre clears all marketplace credential fields.
func (u *User) UnlinkMercadoLibre() {
	u.MeliUserID = nil
	u.MeliAccessToken = ""
	u.MeliRefreshToken = ""
	u.MeliTokenExpiresAt = nil
	u.UpdatedAt = time.Now()
}

// NeedsTokenRefresh reports whether the access token must be refreshed
// before use: the stored expiry is within the window of now, inclusive.
func (u *User) NeedsTokenRefresh(now time.Time, window time.Duration) bool {
	if u.MeliTokenExpiresAt == nil {
		return true
	}
	return !now.Before(u.MeliTokenExpiresAt.Add(-window))
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 255 || !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Email format is invalid")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
