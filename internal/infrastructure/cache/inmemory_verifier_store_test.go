package cache

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/melihub/backend/internal/domain/marketplace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryVerifierStore(t *testing.T) {
	ctx := context.Background()

	t.Run("take returns the stored verifier once", func(t *testing.T) {
		store := NewInMemoryVerifierStore()
		userID := uuid.New()

		require.NoError(t, store.Put(ctx, userID, "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"))

		verifier, err := store.Take(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk", verifier)

		_, err = store.Take(ctx, userID)
		assert.ErrorIs(t, err, marketplace.ErrVerifierNotFound)
	})

	t.Run("put replaces a previous verifier", func(t *testing.T) {
		store := NewInMemoryVerifierStore()
		userID := uuid.New()

		require.NoError(t, store.Put(ctx, userID, "first"))
		require.NoError(t, store.Put(ctx, userID, "second"))

		verifier, err := store.Take(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "second", verifier)
	})

	t.Run("take for an unknown user fails", func(t *testing.T) {
		store := NewInMemoryVerifierStore()

		_, err := store.Take(ctx, uuid.New())
		assert.ErrorIs(t, err, marketplace.ErrVerifierNotFound)
	})

	t.Run("stores are isolated per user", func(t *testing.T) {
		store := NewInMemoryVerifierStore()
		alice := uuid.New()
		bob := uuid.New()

		require.NoError(t, store.Put(ctx, alice, "alice-verifier"))
		require.NoError(t, store.Put(ctx, bob, "bob-verifier"))

		verifier, err := store.Take(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, "alice-verifier", verifier)

		verifier, err = store.Take(ctx, bob)
		require.NoError(t, err)
		assert.Equal(t, "bob-verifier", verifier)
	})
}
