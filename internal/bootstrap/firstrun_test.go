package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/almaleek/wallet/internal/credstore"
	"go.uber.org/zap"
)

func TestEnsureFirstRunSetsFlagOnce(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewMemoryStore()

	require.NoError(t, ensureFirstRun(ctx, store, zap.NewNop()))

	flag, err := store.Get(ctx, credstore.KeyHasSeenOnboarding)
	require.NoError(t, err)
	require.Equal(t, "true", flag)

	// Second run leaves the flag untouched.
	require.NoError(t, ensureFirstRun(ctx, store, zap.NewNop()))
	flag, err = store.Get(ctx, credstore.KeyHasSeenOnboarding)
	require.NoError(t, err)
	require.Equal(t, "true", flag)
}
