package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/almaleek/wallet/internal/api"
	"github.com/almaleek/wallet/internal/credstore"
	"github.com/almaleek/wallet/internal/purchase"
	"github.com/almaleek/wallet/internal/security"
	"github.com/almaleek/wallet/internal/session"
)

type fixture struct {
	deps *Deps
	mux  *http.ServeMux
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	store := credstore.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, credstore.KeyAccessToken, "tok"))
	require.NoError(t, store.Set(ctx, credstore.KeyRefreshToken, "ref"))

	logger := zap.NewNop()
	manager := session.NewManager(server.URL, server.Client(), store, logger)
	ids, err := api.NewIdentifiers()
	require.NoError(t, err)

	return &fixture{
		mux: mux,
		deps: &Deps{
			Logger:       logger,
			Session:      manager,
			Store:        store,
			Auth:         api.NewAuth(manager, store, logger),
			VTU:          api.NewVTU(manager),
			Billers:      api.NewBillers(manager),
			Transactions: api.NewTransactions(manager),
			Identifiers:  ids,
			Lock:         security.NewLock(store, logger),
			Validator:    purchase.NewValidator(),
		},
	}
}

func (f *fixture) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRoot(f.deps)
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (f *fixture) serveUser() {
	f.mux.HandleFunc("GET /auth/user", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"_id": "u1", "name": "Ada", "email": "ada@example.com",
			"emailVerified": true, "balance": 5000.0, "hasPin": true,
		})
	})
}

func TestAirtimePurchaseEndToEnd(t *testing.T) {
	f := newFixture(t)
	f.serveUser()

	var submitted map[string]any
	f.mux.HandleFunc("POST /easyaccess/airtime", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&submitted))
		json.NewEncoder(w).Encode(map[string]any{
			"status": "success", "transactionId": "tx9", "message": "Airtime sent",
		})
	})
	f.mux.HandleFunc("GET /transactions/tx9", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"_id": "tx9", "reference_no": "REF-9", "type": "airtime",
			"status": "success", "amount": 200.0, "recipient": "08031234567",
			"createdAt": time.Now().UTC().Format(time.RFC3339),
		})
	})

	out, err := f.run(t, "1234\n",
		"airtime", "--network", "mtn", "--phone", "08031234567", "--amount", "200")
	require.NoError(t, err)

	require.Equal(t, "1234", submitted["pinCode"])
	require.Equal(t, "u1", submitted["userId"])
	require.True(t, strings.HasPrefix(submitted["paymentIdentifier"].(string), "AMK-"))
	require.Contains(t, out, "Purchase successful!")
	require.Contains(t, out, "REF-9")
}

func TestAirtimeRejectsOverlongPinEntry(t *testing.T) {
	f := newFixture(t)
	f.serveUser()

	calls := 0
	f.mux.HandleFunc("POST /easyaccess/airtime", func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(map[string]any{
			"status": "success", "transactionId": "tx9",
		})
	})

	// Five digits must be refused outright, not submitted as the first four.
	_, err := f.run(t, "12345\n",
		"airtime", "--network", "mtn", "--phone", "08031234567", "--amount", "200")
	require.Error(t, err)
	require.Contains(t, err.Error(), "4 digits")
	require.Zero(t, calls)
}

func TestAirtimeRejectsShortPinEntry(t *testing.T) {
	f := newFixture(t)
	f.serveUser()

	calls := 0
	f.mux.HandleFunc("POST /easyaccess/airtime", func(w http.ResponseWriter, r *http.Request) {
		calls++
	})

	_, err := f.run(t, "123\n",
		"airtime", "--network", "mtn", "--phone", "08031234567", "--amount", "200")
	require.Error(t, err)
	require.Contains(t, err.Error(), "4 digits")
	require.Zero(t, calls)
}

func TestAirtimeRejectsNonDigitPinEntry(t *testing.T) {
	f := newFixture(t)
	f.serveUser()

	calls := 0
	f.mux.HandleFunc("POST /easyaccess/airtime", func(w http.ResponseWriter, r *http.Request) {
		calls++
	})

	_, err := f.run(t, "12a4\n",
		"airtime", "--network", "mtn", "--phone", "08031234567", "--amount", "200")
	require.Error(t, err)
	require.Zero(t, calls)
}

func TestAirtimeRejectsBadPhoneBeforePin(t *testing.T) {
	f := newFixture(t)
	f.serveUser()

	called := false
	f.mux.HandleFunc("POST /easyaccess/airtime", func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := f.run(t, "1234\n",
		"airtime", "--network", "mtn", "--phone", "12345", "--amount", "200")
	var fields purchase.FieldErrors
	require.ErrorAs(t, err, &fields)
	require.False(t, called)
}

func TestTransferRefusedWithoutResolvedName(t *testing.T) {
	f := newFixture(t)
	f.serveUser()

	f.mux.HandleFunc("POST /remita/name-enquiry", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": "true",
			"message": map[string]any{"content": map[string]any{"Customer_Name": "  "}},
		})
	})
	sent := false
	f.mux.HandleFunc("POST /remita/send", func(w http.ResponseWriter, r *http.Request) {
		sent = true
	})

	_, err := f.run(t, "y\n1234\n",
		"transfer", "--bank", "058", "--account", "0123456789", "--amount", "1000")
	require.Error(t, err)
	require.False(t, sent)
}

func TestHistoryListsTransactions(t *testing.T) {
	f := newFixture(t)
	f.serveUser()

	f.mux.HandleFunc("GET /transactions", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "7", r.URL.Query().Get("days"))
		json.NewEncoder(w).Encode([]map[string]any{
			{"_id": "tx1", "type": "data", "status": "success", "amount": 500.0,
				"createdAt": "2026-08-30T10:00:00Z"},
		})
	})

	out, err := f.run(t, "", "history", "--days", "7")
	require.NoError(t, err)
	require.Contains(t, out, "tx1")
	require.Contains(t, out, "data")
}

func TestCommandsRequireSignIn(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, credstore.ClearSession(context.Background(), f.deps.Store))

	_, err := f.run(t, "", "status")
	require.Error(t, err)
	require.Contains(t, err.Error(), "wallet login")
}
