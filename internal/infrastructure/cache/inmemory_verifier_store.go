package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/melihub/backend/internal/domain/marketplace"
)

type verifierEntry struct {
	verifier  string
	expiresAt time.Time
}

// InMemoryVerifierStore implements marketplace.VerifierStore using an
// in-memory map. Suitable for single-instance deployments and testing.
type InMemoryVerifierStore struct {
	mu      sync.Mutex
	entries map[uuid.UUID]verifierEntry
}

var _ marketplace.VerifierStore = (*InMemoryVerifierStore)(nil)

// NewInMemoryVerifierStore creates a new in-memory verifier store
func NewInMemoryVerifierStore() *InMemoryVerifierStore {
	return &InMemoryVerifierStore{
		entries: make(map[uuid.UUID]verifierEntry),
	}
}

// Put stores the verifier for the user, replacing any previous one
func (s *InMemoryVerifierStore) Put(ctx context.Context, userID uuid.UUID, verifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[userID] = verifierEntry{
		verifier:  verifier,
		expiresAt: time.Now().Add(marketplace.VerifierTTL),
	}
	return nil
}

// Take retrieves and removes the verifier for the user. An expired
// entry counts as absent.
func (s *InMemoryVerifierStore) Take(ctx context.Context, userID uuid.UUID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.entries[userID]
	if !exists {
		return "", marketplace.ErrVerifierNotFound
	}
	delete(s.entries, userID)

	if time.Now().After(e.expiresAt) {
		return "", marketplace.ErrVerifierNotFound
	}
	return e.verifier, nil
}
