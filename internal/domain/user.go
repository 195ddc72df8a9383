package domain

import "time"

// User represents the signed-in wallet account as reported by the backend.
type User struct {
	ID            string    `json:"_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"emailVerified"`
	Phone         string    `json:"phone"`
	Balance       float64   `json:"balance"`
	Role          string    `json:"role"`
	HasPin        bool      `json:"hasPin"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Session is the ambient authentication context for one signed-in user.
// Tokens are opaque bearer strings; the access token is short-lived and
// rotated in place by the session manager, the refresh token is long-lived.
type Session struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user,omitempty"`
}
