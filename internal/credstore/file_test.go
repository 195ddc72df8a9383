package credstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/almaleek/wallet/internal/credstore"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")

	store, err := credstore.NewFileStore(path)
	require.NoError(t, err)

	value, err := store.Get(ctx, credstore.KeyAccessToken)
	require.NoError(t, err)
	require.Empty(t, value)

	require.NoError(t, store.Set(ctx, credstore.KeyAccessToken, "tok1"))
	require.NoError(t, store.Set(ctx, credstore.KeyRefreshToken, "ref1"))

	// A second instance must see what the first flushed.
	reopened, err := credstore.NewFileStore(path)
	require.NoError(t, err)
	value, err = reopened.Get(ctx, credstore.KeyAccessToken)
	require.NoError(t, err)
	require.Equal(t, "tok1", value)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestClearSessionKeepsSecurityFlags(t *testing.T) {
	ctx := context.Background()
	store, err := credstore.NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, credstore.KeyAccessToken, "tok1"))
	require.NoError(t, store.Set(ctx, credstore.KeyRefreshToken, "ref1"))
	require.NoError(t, store.Set(ctx, credstore.KeyAppPasscode, "$argon2id$..."))
	require.NoError(t, store.Set(ctx, credstore.KeyHasSeenOnboarding, "true"))

	require.NoError(t, credstore.ClearSession(ctx, store))

	access, _ := store.Get(ctx, credstore.KeyAccessToken)
	refresh, _ := store.Get(ctx, credstore.KeyRefreshToken)
	passcode, _ := store.Get(ctx, credstore.KeyAppPasscode)
	onboarded, _ := store.Get(ctx, credstore.KeyHasSeenOnboarding)

	require.Empty(t, access)
	require.Empty(t, refresh)
	require.NotEmpty(t, passcode)
	require.Equal(t, "true", onboarded)
}

func TestFileStoreDeleteMissingKey(t *testing.T) {
	store, err := credstore.NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))
	require.NoError(t, err)
	require.NoError(t, store.Delete(context.Background(), "nope"))
}
