// Package session owns the authenticated HTTP surface of the wallet: bearer
// token attachment, expired-token detection, the single-flight refresh
// protocol and the at-most-once replay of requests that raced an expiry.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/almaleek/wallet/internal/credstore"
	"github.com/almaleek/wallet/internal/domain"
)

// tokenExpiredSignal is the exact backend marker for a recoverable 401. Any
// other 401 body means the session was invalidated elsewhere and must log out.
const tokenExpiredSignal = "Token expired"

var (
	// ErrSessionInvalidated marks a 401 that is not an expiry; the caller is
	// already logged out when this is returned.
	ErrSessionInvalidated = errors.New("session: invalidated, sign in again")
	// ErrMissingRefreshToken marks a refresh attempt with no stored token.
	ErrMissingRefreshToken = errors.New("session: missing refresh token")
)

// Request describes one backend call. Body is JSON-encoded when non-nil.
type Request struct {
	Method string
	Path   string
	Body   any

	retried bool
}

// Response carries the raw status and body back to the domain modules, which
// own interpretation. Non-2xx statuses are not errors at this layer; error
// payloads can carry data the caller needs (a transaction ID, for one).
type Response struct {
	StatusCode int
	Body       []byte
}

type refreshResult struct {
	token string
	err   error
}

// Manager is the single shared call surface for all backend interaction.
// Construct one per process and hand it to every domain request module.
type Manager struct {
	baseURL string
	client  *http.Client
	store   credstore.Store
	logger  *zap.Logger
	tracer  trace.Tracer

	onLogout func(reason error)

	mu         sync.Mutex // guards refreshing and waiters
	refreshing bool
	waiters    []chan refreshResult
}

// NewManager wires the session layer. The logout handler is injected later,
// at application start, so this package never depends on presentation code.
func NewManager(baseURL string, client *http.Client, store credstore.Store, logger *zap.Logger) *Manager {
	if client == nil {
		client = http.DefaultClient
	}
	return &Manager{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
		store:   store,
		logger:  logger,
		tracer:  otel.Tracer("github.com/almaleek/wallet/internal/session"),
	}
}

// SetLogoutHandler injects the forced-logout escalation. The handler is
// responsible for clearing the stored session and routing to sign-in.
func (m *Manager) SetLogoutHandler(handler func(reason error)) {
	m.onLogout = handler
}

// Get issues an authenticated GET.
func (m *Manager) Get(ctx context.Context, path string) (*Response, error) {
	return m.Do(ctx, &Request{Method: http.MethodGet, Path: path})
}

// Post issues an authenticated POST with a JSON body.
func (m *Manager) Post(ctx context.Context, path string, body any) (*Response, error) {
	return m.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put issues an authenticated PUT with a JSON body.
func (m *Manager) Put(ctx context.Context, path string, body any) (*Response, error) {
	return m.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Do executes the request with the current access token. On the backend's
// expired-token signal it refreshes (once, shared across all concurrent
// callers) and replays the request exactly once with the new token. Every
// other status is handed back untouched.
func (m *Manager) Do(ctx context.Context, req *Request) (*Response, error) {
	ctx, span := m.tracer.Start(ctx, "session.Do")
	defer span.End()

	// Read the token fresh on every attempt; it can rotate mid-session.
	token, err := m.store.Get(ctx, credstore.KeyAccessToken)
	if err != nil {
		return nil, fmt.Errorf("read access token: %w", err)
	}

	resp, err := m.send(ctx, req, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	if !isTokenExpired(resp.Body) {
		if token == "" {
			// Unauthenticated call (login, signup, reset): a 401 here is the
			// backend rejecting credentials, not a session dying. Hand it back.
			return resp, nil
		}
		// Concurrent-session invalidation or similar: no refresh, hard logout.
		m.escalateLogout(ErrSessionInvalidated)
		return resp, ErrSessionInvalidated
	}

	if req.retried {
		// Already replayed once after a refresh; surface the second failure.
		return resp, nil
	}

	newToken, err := m.refresh(ctx)
	if err != nil {
		return nil, err
	}

	req.retried = true
	return m.send(ctx, req, newToken)
}

func (m *Manager) send(ctx context.Context, req *Request, token string) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(req.Body); err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = buf
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, m.baseURL+req.Path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

// refresh returns a fresh access token. Exactly one refresh call is in
// flight at a time; late arrivals queue for the leader's result instead of
// starting their own. The check-and-mark below happens under the lock with
// no suspension point in between, so two leaders cannot be elected.
func (m *Manager) refresh(ctx context.Context) (string, error) {
	ctx, span := m.tracer.Start(ctx, "session.refresh")
	defer span.End()

	m.mu.Lock()
	if m.refreshing {
		ch := make(chan refreshResult, 1)
		m.waiters = append(m.waiters, ch)
		m.mu.Unlock()

		select {
		case res := <-ch:
			return res.token, res.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	m.refreshing = true
	m.mu.Unlock()

	token, err := m.doRefresh(ctx)

	m.mu.Lock()
	m.refreshing = false
	waiters := m.waiters
	m.waiters = nil
	m.mu.Unlock()

	// Settle the queue either way; suspended callers must never hang.
	for _, ch := range waiters {
		ch <- refreshResult{token: token, err: err}
	}

	if err != nil {
		m.logger.Warn("token refresh failed", zap.Error(err))
		m.escalateLogout(err)
		return "", err
	}

	m.logger.Debug("access token refreshed", zap.Int("replayed_waiters", len(waiters)))
	return token, nil
}

func (m *Manager) doRefresh(ctx context.Context) (string, error) {
	refreshToken, err := m.store.Get(ctx, credstore.KeyRefreshToken)
	if err != nil {
		return "", fmt.Errorf("read refresh token: %w", err)
	}
	if refreshToken == "" {
		return "", ErrMissingRefreshToken
	}

	payload, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return "", fmt.Errorf("encode refresh payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/auth/refresh", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build refresh request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("refresh request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read refresh response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("refresh rejected: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode refresh response: %w", err)
	}
	if out.AccessToken == "" {
		return "", errors.New("refresh response missing access token")
	}

	if err := m.store.Set(ctx, credstore.KeyAccessToken, out.AccessToken); err != nil {
		return "", fmt.Errorf("persist access token: %w", err)
	}
	return out.AccessToken, nil
}

func (m *Manager) escalateLogout(reason error) {
	if m.onLogout != nil {
		m.onLogout(reason)
	}
}

// Session loads the stored token pair, erroring when none is present.
func (m *Manager) Session(ctx context.Context) (*domain.Session, error) {
	access, err := m.store.Get(ctx, credstore.KeyAccessToken)
	if err != nil {
		return nil, err
	}
	refresh, err := m.store.Get(ctx, credstore.KeyRefreshToken)
	if err != nil {
		return nil, err
	}
	if access == "" && refresh == "" {
		return nil, domain.ErrNotSignedIn
	}
	return &domain.Session{AccessToken: access, RefreshToken: refresh}, nil
}

func isTokenExpired(body []byte) bool {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return false
	}
	return payload.Error == tokenExpiredSignal
}
