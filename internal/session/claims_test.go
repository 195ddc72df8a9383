package session_test

import (
	"testing"
	"time"

	gojose "github.com/go-jose/go-jose/v4"
	gojwt "github.com/go-jose/go-jose/v4/jwt"
	"github.com/stretchr/testify/require"

	"github.com/almaleek/wallet/internal/session"
)

func signToken(t *testing.T, claims gojwt.Claims, custom any) string {
	t.Helper()
	key := make([]byte, 32)
	signer, err := gojose.NewSigner(gojose.SigningKey{Algorithm: gojose.HS256, Key: key}, (&gojose.SignerOptions{}).WithType("JWT"))
	require.NoError(t, err)
	token, err := gojwt.Signed(signer).Claims(claims).Claims(custom).Serialize()
	require.NoError(t, err)
	return token
}

func TestPeekClaims(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	token := signToken(t,
		gojwt.Claims{
			Subject:  "user-42",
			IssuedAt: gojwt.NewNumericDate(now),
			Expiry:   gojwt.NewNumericDate(now.Add(15 * time.Minute)),
		},
		struct {
			Email string `json:"email"`
		}{Email: "ada@example.com"},
	)

	claims, err := session.PeekClaims(token)
	require.NoError(t, err)
	require.Equal(t, "user-42", claims.Subject)
	require.Equal(t, "ada@example.com", claims.Email)
	// Compare instants, not time.Time values; the decoded times carry the
	// local zone.
	require.True(t, claims.Expiry.Equal(now.Add(15*time.Minute)))
	require.True(t, claims.IssuedAt.Equal(now))
	require.False(t, claims.ExpiresWithin(time.Minute))
	require.True(t, claims.ExpiresWithin(time.Hour))
}

func TestPeekClaimsRejectsGarbage(t *testing.T) {
	_, err := session.PeekClaims("not-a-jwt")
	require.Error(t, err)
}

func TestExpiresWithinZeroExpiry(t *testing.T) {
	c := &session.Claims{}
	require.False(t, c.ExpiresWithin(time.Hour))
}
