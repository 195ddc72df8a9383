// Package purchase implements the confirmation flow every service shares:
// validate the form, capture the transaction PIN, submit exactly once, then
// route on the outcome. The mobile screens used to repeat this per service;
// here it is written once and parameterized.
package purchase

import (
	"context"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/almaleek/wallet/internal/domain"
)

// State of one flow instance.
type State int

// Flow states. Validating is transient inside Begin and never observed.
const (
	StateEditing State = iota
	StateAwaitingPin
	StateSubmitting
	StateSettled
)

// Notice classifies a user-facing banner.
type Notice int

// Notice kinds.
const (
	NoticeSuccess Notice = iota
	NoticeError
)

var (
	// ErrNotAwaitingPin is returned when digits arrive outside the PIN step.
	ErrNotAwaitingPin = errors.New("purchase: not awaiting pin")
	// ErrAlreadySettled is returned when Begin is called on a finished flow.
	ErrAlreadySettled = errors.New("purchase: flow already settled")
)

// IdentifierSource issues one payment identifier per submission.
type IdentifierSource interface {
	PaymentIdentifier() string
}

// SubmitFunc performs the single network call for the service, carrying the
// entered PIN and the generated payment identifier. The PIN must not be
// retained anywhere past this call.
type SubmitFunc func(ctx context.Context, pin, paymentIdentifier string) (domain.Outcome, error)

// Spec parameterizes the flow for one service.
type Spec struct {
	Service     string
	Form        any
	Submit      SubmitFunc
	Navigate    func(transactionID string)
	Notify      func(kind Notice, message string)
	Identifiers IdentifierSource
	Validator   *validator.Validate
	Logger      *zap.Logger
}

// Flow drives one purchase from form to settlement. Safe for concurrent
// input events: at most one submission runs per instance, and input during
// submission is discarded.
type Flow struct {
	spec   Spec
	tracer trace.Tracer

	mu      sync.Mutex
	state   State
	pad     Pad
	outcome *domain.Outcome
}

// NewFlow constructs a flow in the Editing state.
func NewFlow(spec Spec) *Flow {
	if spec.Logger == nil {
		spec.Logger = zap.NewNop()
	}
	return &Flow{
		spec:   spec,
		tracer: otel.Tracer("github.com/almaleek/wallet/internal/purchase"),
	}
}

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// PinLen reports buffered digits, for rendering.
func (f *Flow) PinLen() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pad.Len()
}

// Outcome returns the settled result, nil before settlement.
func (f *Flow) Outcome() *domain.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.outcome
}

// Begin validates the form and, on success, opens the PIN step. Validation
// failures surface as FieldErrors and leave the flow editable.
func (f *Flow) Begin() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case StateEditing:
	case StateSettled:
		return ErrAlreadySettled
	default:
		return nil // already past validation
	}

	if err := ValidateForm(f.spec.Validator, f.spec.Form); err != nil {
		return err
	}

	f.pad.Reset()
	f.state = StateAwaitingPin
	return nil
}

// Press feeds one digit. The fourth digit triggers submission immediately;
// presses while a submission is in flight are dropped.
func (f *Flow) Press(ctx context.Context, digit byte) error {
	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return nil
	}
	if f.state != StateAwaitingPin {
		f.mu.Unlock()
		return ErrNotAwaitingPin
	}

	pin, complete := f.pad.Press(digit)
	if !complete {
		f.mu.Unlock()
		return nil
	}

	f.state = StateSubmitting
	f.mu.Unlock()

	f.submit(ctx, pin)
	return nil
}

// Delete removes the last digit; a no-op while submitting.
func (f *Flow) Delete() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateAwaitingPin {
		return
	}
	f.pad.Delete()
}

// Close dismisses the PIN step. While a submission is in flight this is a
// no-op: an in-flight charge cannot be abandoned.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateAwaitingPin {
		return
	}
	f.pad.Reset()
	f.state = StateEditing
}

func (f *Flow) submit(ctx context.Context, pin string) {
	ctx, span := f.tracer.Start(ctx, "purchase.submit")
	defer span.End()

	paymentID := ""
	if f.spec.Identifiers != nil {
		paymentID = f.spec.Identifiers.PaymentIdentifier()
	}

	outcome, err := f.spec.Submit(ctx, pin, paymentID)

	// Cleanup runs on every settlement path, including a Submit panic-free
	// error: wipe the PIN, close the modal state, record the result.
	f.mu.Lock()
	f.pad.Reset()
	pin = ""
	if err != nil {
		f.state = StateEditing
		f.mu.Unlock()

		f.spec.Logger.Warn("purchase submit failed",
			zap.String("service", f.spec.Service), zap.Error(err))
		f.notify(NoticeError, userMessage(err))
		return
	}

	f.outcome = &outcome
	if outcome.Trackable() {
		f.state = StateSettled
		f.mu.Unlock()

		// Trackable failures still land on the receipt: the backend has a
		// record the user must be able to follow. No error banner here.
		f.spec.Logger.Info("purchase settled",
			zap.String("service", f.spec.Service),
			zap.String("transaction_id", outcome.TransactionID),
			zap.String("kind", string(outcome.Kind)))
		if outcome.Kind == domain.OutcomeSuccess {
			f.notify(NoticeSuccess, "Purchase successful!")
		}
		if f.spec.Navigate != nil {
			f.spec.Navigate(outcome.TransactionID)
		}
		return
	}

	if outcome.Kind != domain.OutcomeFailed {
		// Accepted but nothing to track; settle quietly with a banner.
		f.state = StateSettled
		f.mu.Unlock()
		f.notify(NoticeSuccess, outcome.Message)
		return
	}

	// Failed with nothing to track: inline error, back to the form.
	f.state = StateEditing
	f.mu.Unlock()
	f.notify(NoticeError, outcome.Message)
}

func (f *Flow) notify(kind Notice, message string) {
	if f.spec.Notify == nil {
		return
	}
	if message == "" {
		if kind == NoticeSuccess {
			message = "Purchase successful!"
		} else {
			message = "Something went wrong. Please try again."
		}
	}
	f.spec.Notify(kind, message)
}

func userMessage(err error) string {
	if err == nil || err.Error() == "" {
		return "Something went wrong. Please try again."
	}
	return err.Error()
}
