package api

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/almaleek/wallet/internal/credstore"
	"github.com/almaleek/wallet/internal/domain"
	"github.com/almaleek/wallet/internal/session"
)

// Auth covers account lifecycle: registration, sign-in, profile and the
// transaction-PIN management endpoints. Login and Logout are the only places
// outside the session manager allowed to write token keys.
type Auth struct {
	s      *session.Manager
	store  credstore.Store
	logger *zap.Logger
}

// NewAuth wires the auth module.
func NewAuth(s *session.Manager, store credstore.Store, logger *zap.Logger) *Auth {
	return &Auth{s: s, store: store, logger: logger}
}

// SignUpInput is the registration payload.
type SignUpInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// SignUp registers a new account; the account stays unverified until
// VerifyEmail succeeds.
func (a *Auth) SignUp(ctx context.Context, input SignUpInput) error {
	resp, err := a.s.Post(ctx, "/auth/signup", input)
	if err != nil {
		return err
	}
	return expectOK(resp, "Sign up failed")
}

// Login authenticates and persists the issued token pair.
func (a *Auth) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	resp, err := a.s.Post(ctx, "/auth/login", map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	if err := expectOK(resp, "Login failed"); err != nil {
		return nil, err
	}

	var sess domain.Session
	if err := decodeInto(resp, &sess, "login"); err != nil {
		return nil, err
	}
	if sess.AccessToken == "" || sess.RefreshToken == "" {
		return nil, &Error{StatusCode: resp.StatusCode, Message: "Login response missing tokens"}
	}

	if err := a.store.Set(ctx, credstore.KeyAccessToken, sess.AccessToken); err != nil {
		return nil, fmt.Errorf("persist access token: %w", err)
	}
	if err := a.store.Set(ctx, credstore.KeyRefreshToken, sess.RefreshToken); err != nil {
		return nil, fmt.Errorf("persist refresh token: %w", err)
	}

	a.logger.Info("signed in", zap.String("email", email))
	return &sess, nil
}

// Logout clears the stored session. The backend keeps no client-visible
// logout endpoint; dropping the refresh token is the whole operation.
func (a *Auth) Logout(ctx context.Context) error {
	if err := credstore.ClearSession(ctx, a.store); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	a.logger.Info("signed out")
	return nil
}

// VerifyEmail confirms the emailed verification code.
func (a *Auth) VerifyEmail(ctx context.Context, email, code string) error {
	resp, err := a.s.Post(ctx, "/auth/verify", map[string]string{"email": email, "verificationCode": code})
	if err != nil {
		return err
	}
	return expectOK(resp, "Email verification failed")
}

// ResendVerification requests a fresh verification code.
func (a *Auth) ResendVerification(ctx context.Context, email string) error {
	resp, err := a.s.Post(ctx, "/auth/resend-verification", map[string]string{"email": email})
	if err != nil {
		return err
	}
	return expectOK(resp, "Failed to resend verification code")
}

// CurrentUser fetches the profile snapshot, including the wallet balance.
func (a *Auth) CurrentUser(ctx context.Context) (*domain.User, error) {
	resp, err := a.s.Get(ctx, "/auth/user")
	if err != nil {
		return nil, err
	}
	if err := expectOK(resp, "Failed to fetch user"); err != nil {
		return nil, err
	}
	var user domain.User
	if err := decodeInto(resp, &user, "user"); err != nil {
		return nil, err
	}
	return &user, nil
}

// ProfileUpdate carries mutable profile fields.
type ProfileUpdate struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// UpdateProfile patches the profile.
func (a *Auth) UpdateProfile(ctx context.Context, update ProfileUpdate) error {
	resp, err := a.s.Put(ctx, "/auth/profile", update)
	if err != nil {
		return err
	}
	return expectOK(resp, "Profile update failed")
}

// RequestPasswordReset starts the forgotten-password flow.
func (a *Auth) RequestPasswordReset(ctx context.Context, email string) error {
	resp, err := a.s.Post(ctx, "/auth/request-password-reset", map[string]string{"email": email})
	if err != nil {
		return err
	}
	return expectOK(resp, "Password reset failed")
}

// VerifyResetCode checks the emailed reset code.
func (a *Auth) VerifyResetCode(ctx context.Context, email, code string) error {
	resp, err := a.s.Post(ctx, "/auth/verify-reset-code", map[string]string{"email": email, "code": code})
	if err != nil {
		return err
	}
	return expectOK(resp, "Code verification failed")
}

// ResetPassword completes the forgotten-password flow.
func (a *Auth) ResetPassword(ctx context.Context, email, newPassword string) error {
	resp, err := a.s.Post(ctx, "/auth/reset-password", map[string]string{"email": email, "newPassword": newPassword})
	if err != nil {
		return err
	}
	return expectOK(resp, "Password reset failed")
}

// UpdatePassword rotates the sign-in password for a signed-in user.
func (a *Auth) UpdatePassword(ctx context.Context, currentPassword, newPassword string) error {
	resp, err := a.s.Post(ctx, "/auth/update-password", map[string]string{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	})
	if err != nil {
		return err
	}
	return expectOK(resp, "Update password failed")
}

// AddPin sets the transaction PIN for accounts that have none yet.
func (a *Auth) AddPin(ctx context.Context, pin string) error {
	resp, err := a.s.Post(ctx, "/auth/add-pin", map[string]string{"pin": pin})
	if err != nil {
		return err
	}
	return expectOK(resp, "Add PIN failed")
}

// UpdatePin rotates the transaction PIN.
func (a *Auth) UpdatePin(ctx context.Context, oldPin, newPin string) error {
	resp, err := a.s.Post(ctx, "/auth/update-pin", map[string]string{"oldpin": oldPin, "newpin": newPin})
	if err != nil {
		return err
	}
	return expectOK(resp, "Update PIN failed")
}
