package marketplace

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrVerifierNotFound is returned when no PKCE verifier is stored for the
// user, typically because the 5-minute linking window expired.
var ErrVerifierNotFound = errors.New("marketplace: PKCE verifier not found")

// VerifierTTL is how long a stored PKCE verifier stays valid. The
// authorization code itself expires upstream on a similar horizon.
const VerifierTTL = 5 * time.Minute

// VerifierStore holds PKCE code verifiers between the authorization
// redirect and the callback exchange. Entries are single-use.
type VerifierStore interface {
	// Put stores the verifier for the user, replacing any previous one
	Put(ctx context.Context, userID uuid.UUID, verifier string) error

	// Take retrieves and removes the verifier for the user
	Take(ctx context.Context, userID uuid.UUID) (string, error)
}
