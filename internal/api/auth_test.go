package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/almaleek/wallet/internal/api"
	"github.com/almaleek/wallet/internal/credstore"
	"github.com/almaleek/wallet/internal/session"
)

func newAuthFixture(t *testing.T, handler http.Handler) (*api.Auth, credstore.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := credstore.NewMemoryStore()
	manager := session.NewManager(srv.URL, srv.Client(), store, zap.NewNop())
	return api.NewAuth(manager, store, zap.NewNop()), store
}

func TestLoginPersistsTokens(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		require.Equal(t, "ada@example.com", creds["email"])

		json.NewEncoder(w).Encode(map[string]any{
			"accessToken":  "tok1",
			"refreshToken": "ref1",
			"user":         map[string]any{"_id": "u1", "name": "Ada", "balance": 2500.0},
		})
	})

	auth, store := newAuthFixture(t, mux)
	ctx := context.Background()

	sess, err := auth.Login(ctx, "ada@example.com", "secret")
	require.NoError(t, err)
	require.Equal(t, "u1", sess.User.ID)
	require.Equal(t, 2500.0, sess.User.Balance)

	access, _ := store.Get(ctx, credstore.KeyAccessToken)
	refresh, _ := store.Get(ctx, credstore.KeyRefreshToken)
	require.Equal(t, "tok1", access)
	require.Equal(t, "ref1", refresh)
}

func TestLoginRejectedSurfacesBackendMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid credentials"})
	})

	auth, store := newAuthFixture(t, mux)
	_, err := auth.Login(context.Background(), "ada@example.com", "wrong")

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "Invalid credentials", apiErr.Message)

	access, _ := store.Get(context.Background(), credstore.KeyAccessToken)
	require.Empty(t, access)
}

func TestLogoutClearsTokensOnly(t *testing.T) {
	auth, store := newAuthFixture(t, http.NewServeMux())
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, credstore.KeyAccessToken, "tok1"))
	require.NoError(t, store.Set(ctx, credstore.KeyRefreshToken, "ref1"))
	require.NoError(t, store.Set(ctx, credstore.KeyAppPasscode, "hash"))

	require.NoError(t, auth.Logout(ctx))

	access, _ := store.Get(ctx, credstore.KeyAccessToken)
	passcode, _ := store.Get(ctx, credstore.KeyAppPasscode)
	require.Empty(t, access)
	require.Equal(t, "hash", passcode)
}

func TestCurrentUser(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/user", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok1", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{"_id": "u1", "name": "Ada", "hasPin": true})
	})

	auth, store := newAuthFixture(t, mux)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, credstore.KeyAccessToken, "tok1"))

	user, err := auth.CurrentUser(ctx)
	require.NoError(t, err)
	require.Equal(t, "Ada", user.Name)
	require.True(t, user.HasPin)
}
