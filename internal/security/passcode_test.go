package security

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/almaleek/wallet/internal/credstore"
)

func TestSetAndVerifyPasscode(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewMemoryStore()
	lock := NewLock(store, nil)

	enabled, err := lock.Enabled(ctx)
	require.NoError(t, err)
	require.False(t, enabled)
	require.ErrorIs(t, lock.Verify(ctx, "123456"), ErrNoPasscode)

	require.NoError(t, lock.SetPasscode(ctx, "123456"))

	enabled, err = lock.Enabled(ctx)
	require.NoError(t, err)
	require.True(t, enabled)

	require.NoError(t, lock.Verify(ctx, "123456"))
	require.ErrorIs(t, lock.Verify(ctx, "654321"), ErrBadPasscode)

	// Only the hash is at rest, never the code.
	stored, err := store.Get(ctx, credstore.KeyAppPasscode)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(stored, "$argon2id$"))
	require.NotContains(t, stored, "123456")
}

func TestSetPasscodeRejectsMalformed(t *testing.T) {
	lock := NewLock(credstore.NewMemoryStore(), nil)
	require.Error(t, lock.SetPasscode(context.Background(), "12345"))
	require.Error(t, lock.SetPasscode(context.Background(), "12345a"))
	require.Error(t, lock.SetPasscode(context.Background(), ""))
}

func TestChangePasscodeRequiresCurrent(t *testing.T) {
	ctx := context.Background()
	lock := NewLock(credstore.NewMemoryStore(), nil)
	require.NoError(t, lock.SetPasscode(ctx, "111111"))

	require.ErrorIs(t, lock.ChangePasscode(ctx, "222222", "333333"), ErrBadPasscode)
	require.NoError(t, lock.ChangePasscode(ctx, "111111", "333333"))
	require.NoError(t, lock.Verify(ctx, "333333"))
}

func TestBiometricsRequirePasscode(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewMemoryStore()
	lock := NewLock(store, nil)

	require.ErrorIs(t, lock.SetBiometrics(ctx, true), ErrNoPasscode)

	require.NoError(t, lock.SetPasscode(ctx, "123456"))
	require.NoError(t, lock.SetBiometrics(ctx, true))

	enabled, err := lock.BiometricsEnabled(ctx)
	require.NoError(t, err)
	require.True(t, enabled)

	// Disabling the passcode clears the flag too.
	require.NoError(t, lock.Disable(ctx, "123456"))
	enabled, err = lock.BiometricsEnabled(ctx)
	require.NoError(t, err)
	require.False(t, enabled)
	require.ErrorIs(t, lock.Verify(ctx, "123456"), ErrNoPasscode)
}

func TestHashRoundTrip(t *testing.T) {
	encoded, err := hashSecret("000000")
	require.NoError(t, err)

	ok, err := verifySecret("000000", encoded)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = verifySecret("000001", encoded)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = verifySecret("000000", "not-a-hash")
	require.Error(t, err)
}
