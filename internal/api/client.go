// Package api holds the typed domain request modules, one per backend
// capability. Every module is a thin pass through the session manager; the
// only logic here is folding the backend's uneven response shapes into the
// normalized types the rest of the client consumes.
package api

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/almaleek/wallet/internal/domain"
	"github.com/almaleek/wallet/internal/session"
)

// Error surfaces a non-successful backend response with its extracted message.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %s (status=%d)", e.Message, e.StatusCode)
}

// errorMessage digs the human-readable message out of an error body. The
// backend is inconsistent about the field name, and transport failures can
// produce empty bodies, so there is always a fallback. Callers never render
// an empty message.
func errorMessage(body []byte, fallback string) string {
	var payload struct {
		Error   string          `json:"error"`
		Msg     string          `json:"msg"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Msg != "" {
			return payload.Msg
		}
		var msg string
		if len(payload.Message) > 0 && json.Unmarshal(payload.Message, &msg) == nil && msg != "" {
			return msg
		}
	}
	return fallback
}

func apiError(resp *session.Response, fallback string) *Error {
	return &Error{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body, fallback)}
}

// expectOK maps any non-2xx response to an *Error with the given fallback.
func expectOK(resp *session.Response, fallback string) error {
	if resp.StatusCode >= 300 {
		return apiError(resp, fallback)
	}
	return nil
}

func decodeInto(resp *session.Response, out any, what string) error {
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", what, err)
	}
	return nil
}

// decodeList handles the backend's two list envelopes: a bare JSON array and
// {"data": [...]}.
func decodeList[T any](resp *session.Response, what string) ([]T, error) {
	var bare []T
	if err := json.Unmarshal(resp.Body, &bare); err == nil {
		return bare, nil
	}
	var wrapped struct {
		Data []T `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", what, err)
	}
	return wrapped.Data, nil
}

// normalizeOutcome folds a purchase-style response into the one shape every
// screen matches on. Both branches of the backend union can carry a
// transaction ID; a declined provider call with an ID is still trackable.
func normalizeOutcome(resp *session.Response, fallback string) domain.Outcome {
	var body struct {
		Status        string `json:"status"`
		TransactionID string `json:"transactionId"`
		Message       string `json:"message"`
		Error         string `json:"error"`
		Data          struct {
			TransactionID string `json:"transactionId"`
		} `json:"data"`
	}
	_ = json.Unmarshal(resp.Body, &body)

	txID := body.TransactionID
	if txID == "" {
		txID = body.Data.TransactionID
	}

	if resp.StatusCode < 300 {
		kind := domain.OutcomeSuccess
		switch {
		case strings.EqualFold(body.Status, domain.StatusPending):
			kind = domain.OutcomePending
		case strings.EqualFold(body.Status, domain.StatusFailed):
			// Some providers decline inside a 2xx envelope.
			kind = domain.OutcomeFailed
		}
		message := body.Message
		if kind == domain.OutcomeFailed && message == "" {
			message = errorMessage(resp.Body, fallback)
		}
		return domain.Outcome{Kind: kind, TransactionID: txID, Message: message}
	}

	return domain.Outcome{
		Kind:          domain.OutcomeFailed,
		TransactionID: txID,
		Message:       errorMessage(resp.Body, fallback),
	}
}

// decodeCustomer unpacks the provider verification multiplex: HTTP 200 with
// {"success":"true","message":{"content":{...}}} on hits, and either
// {"success":"false","message":"..."} or an error status on misses. The
// success field decides, not the HTTP status.
func decodeCustomer(resp *session.Response, fallback string) (*domain.Customer, error) {
	if err := expectOK(resp, fallback); err != nil {
		return nil, err
	}

	var envelope struct {
		Success json.RawMessage `json:"success"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return nil, fmt.Errorf("decode verification response: %w", err)
	}

	if truthy(envelope.Success) {
		var message struct {
			Content domain.Customer `json:"content"`
		}
		if err := json.Unmarshal(envelope.Message, &message); err != nil {
			return nil, fmt.Errorf("decode verification content: %w", err)
		}
		return &message.Content, nil
	}

	message := fallback
	var asString string
	if len(envelope.Message) > 0 && json.Unmarshal(envelope.Message, &asString) == nil && asString != "" {
		message = asString
	}
	return nil, &Error{StatusCode: resp.StatusCode, Message: message}
}

// truthy accepts the provider's mixed encodings: true, "true", "True".
func truthy(raw json.RawMessage) bool {
	var b bool
	if json.Unmarshal(raw, &b) == nil {
		return b
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.EqualFold(s, "true")
	}
	return false
}
