// Package credstore persists the small set of device-local key/value state the
// wallet needs across runs: session tokens, the onboarding flag and the local
// security settings. It is the only durable shared resource in the client;
// token keys are written exclusively by login, refresh and logout.
package credstore

import "context"

// Well-known keys. All values are plain strings, no schema versioning.
const (
	KeyAccessToken       = "accessToken"
	KeyRefreshToken      = "refreshToken"
	KeyHasSeenOnboarding = "hasSeenOnboarding"
	KeyAppPasscode       = "app_passcode"
	KeyBiometricEnabled  = "biometric_enabled"
)

// Store is the persistence contract. Get returns an empty string and no error
// for a missing key, mirroring a null read from device storage.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// ClearSession removes both token keys. Security and onboarding flags survive
// logout on purpose.
func ClearSession(ctx context.Context, s Store) error {
	if err := s.Delete(ctx, KeyAccessToken); err != nil {
		return err
	}
	return s.Delete(ctx, KeyRefreshToken)
}
