package session

import (
	"fmt"
	"time"

	gojose "github.com/go-jose/go-jose/v4"
	gojwt "github.com/go-jose/go-jose/v4/jwt"
)

var peekAlgorithms = []gojose.SignatureAlgorithm{
	gojose.HS256, gojose.HS384, gojose.HS512,
	gojose.RS256, gojose.ES256,
}

// Claims is the subset of access-token claims the client cares about.
type Claims struct {
	Subject  string
	Email    string
	IssuedAt time.Time
	Expiry   time.Time
}

// ExpiresWithin reports whether the token expires inside the window. A zero
// expiry (claim absent) is treated as not expiring.
func (c *Claims) ExpiresWithin(window time.Duration) bool {
	if c.Expiry.IsZero() {
		return false
	}
	return time.Until(c.Expiry) <= window
}

// PeekClaims decodes the access token payload without verifying its
// signature. Verification is the backend's job; the client only reads the
// subject and expiry for display and diagnostics.
func PeekClaims(token string) (*Claims, error) {
	parsed, err := gojwt.ParseSigned(token, peekAlgorithms)
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}

	var std gojwt.Claims
	var custom struct {
		Email string `json:"email"`
	}
	if err := parsed.UnsafeClaimsWithoutVerification(&std, &custom); err != nil {
		return nil, fmt.Errorf("decode token claims: %w", err)
	}

	claims := &Claims{Subject: std.Subject, Email: custom.Email}
	if std.IssuedAt != nil {
		claims.IssuedAt = std.IssuedAt.Time()
	}
	if std.Expiry != nil {
		claims.Expiry = std.Expiry.Time()
	}
	return claims, nil
}
