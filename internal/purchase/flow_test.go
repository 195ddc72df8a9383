package purchase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/almaleek/wallet/internal/domain"
	"github.com/almaleek/wallet/internal/purchase"
)

type airtimeForm struct {
	Phone  string  `validate:"required,ngphone"`
	Amount float64 `validate:"required,gte=50"`
}

type recorder struct {
	mu          sync.Mutex
	navigations []string
	notices     []string
	noticeKinds []purchase.Notice
}

func (r *recorder) navigate(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.navigations = append(r.navigations, id)
}

func (r *recorder) notify(kind purchase.Notice, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.noticeKinds = append(r.noticeKinds, kind)
	r.notices = append(r.notices, message)
}

type staticIDs struct{}

func (staticIDs) PaymentIdentifier() string { return "AMK-1" }

func newFlow(t *testing.T, submit purchase.SubmitFunc, rec *recorder) *purchase.Flow {
	t.Helper()
	return purchase.NewFlow(purchase.Spec{
		Service:     "airtime",
		Form:        &airtimeForm{Phone: "08031234567", Amount: 500},
		Submit:      submit,
		Navigate:    rec.navigate,
		Notify:      rec.notify,
		Identifiers: staticIDs{},
		Validator:   purchase.NewValidator(),
	})
}

func pressAll(t *testing.T, f *purchase.Flow, digits string) {
	t.Helper()
	for i := 0; i < len(digits); i++ {
		require.NoError(t, f.Press(context.Background(), digits[i]))
	}
}

// Four digits submit exactly once with the assembled PIN; a fifth press
// during the in-flight call is a no-op.
func TestAutoSubmitAtFourDigits(t *testing.T) {
	var (
		submitted []string
		release   = make(chan struct{})
		done      = make(chan struct{})
		mu        sync.Mutex
	)
	rec := &recorder{}
	f := newFlow(t, func(ctx context.Context, pin, paymentID string) (domain.Outcome, error) {
		mu.Lock()
		submitted = append(submitted, pin)
		mu.Unlock()
		<-release
		return domain.Outcome{Kind: domain.OutcomeSuccess, TransactionID: "tx1"}, nil
	}, rec)

	require.NoError(t, f.Begin())
	require.Equal(t, purchase.StateAwaitingPin, f.State())

	go func() {
		pressAll(t, f, "1234")
		close(done)
	}()

	// Wait until the submission is in flight, then hammer the pad.
	require.Eventually(t, func() bool {
		return f.State() == purchase.StateSubmitting
	}, time.Second, time.Millisecond)
	require.NoError(t, f.Press(context.Background(), '9'))
	f.Delete()
	f.Close() // must be a no-op mid-submission
	require.Equal(t, purchase.StateSubmitting, f.State())

	close(release)
	<-done

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"1234"}, submitted)
	require.Equal(t, []string{"tx1"}, rec.navigations)
}

// Buffers shorter than four digits never submit.
func TestNoSubmitBelowFourDigits(t *testing.T) {
	rec := &recorder{}
	called := false
	f := newFlow(t, func(ctx context.Context, pin, paymentID string) (domain.Outcome, error) {
		called = true
		return domain.Outcome{}, nil
	}, rec)

	require.NoError(t, f.Begin())
	pressAll(t, f, "123")
	require.False(t, called)
	require.Equal(t, 3, f.PinLen())

	f.Delete()
	require.Equal(t, 2, f.PinLen())
}

// The PIN buffer is wiped and the modal closed on every settlement path,
// including a throwing submit.
func TestPinWipedAfterSettle(t *testing.T) {
	rec := &recorder{}
	f := newFlow(t, func(ctx context.Context, pin, paymentID string) (domain.Outcome, error) {
		return domain.Outcome{}, errors.New("network unreachable")
	}, rec)

	require.NoError(t, f.Begin())
	pressAll(t, f, "1234")

	require.Equal(t, 0, f.PinLen())
	require.Equal(t, purchase.StateEditing, f.State())
	require.Equal(t, []string{"network unreachable"}, rec.notices)
	require.Equal(t, []purchase.Notice{purchase.NoticeError}, rec.noticeKinds)
}

// A rejected purchase that carries a transaction ID routes to the receipt
// with no error banner.
func TestFailureWithTransactionIDNavigates(t *testing.T) {
	rec := &recorder{}
	f := newFlow(t, func(ctx context.Context, pin, paymentID string) (domain.Outcome, error) {
		return domain.Outcome{
			Kind:          domain.OutcomeFailed,
			TransactionID: "tx123",
			Message:       "provider timeout",
		}, nil
	}, rec)

	require.NoError(t, f.Begin())
	pressAll(t, f, "1234")

	require.Equal(t, []string{"tx123"}, rec.navigations)
	require.Empty(t, rec.notices)
	require.Equal(t, purchase.StateSettled, f.State())
	require.Equal(t, 0, f.PinLen())
}

// A rejection without an ID stays on the form and shows the message.
func TestFailureWithoutTransactionIDToasts(t *testing.T) {
	rec := &recorder{}
	f := newFlow(t, func(ctx context.Context, pin, paymentID string) (domain.Outcome, error) {
		return domain.Outcome{Kind: domain.OutcomeFailed, Message: "insufficient balance"}, nil
	}, rec)

	require.NoError(t, f.Begin())
	pressAll(t, f, "1234")

	require.Empty(t, rec.navigations)
	require.Equal(t, []string{"insufficient balance"}, rec.notices)
	require.Equal(t, purchase.StateEditing, f.State())
}

// A rejection with no message at all still renders something readable.
func TestEmptyFailureMessageFallsBack(t *testing.T) {
	rec := &recorder{}
	f := newFlow(t, func(ctx context.Context, pin, paymentID string) (domain.Outcome, error) {
		return domain.Outcome{Kind: domain.OutcomeFailed}, nil
	}, rec)

	require.NoError(t, f.Begin())
	pressAll(t, f, "1234")
	require.Equal(t, []string{"Something went wrong. Please try again."}, rec.notices)
}

// Re-opening the PIN step after a failed attempt starts from an empty buffer.
func TestRetryStartsFromEmptyBuffer(t *testing.T) {
	rec := &recorder{}
	attempts := 0
	f := newFlow(t, func(ctx context.Context, pin, paymentID string) (domain.Outcome, error) {
		attempts++
		if attempts == 1 {
			return domain.Outcome{Kind: domain.OutcomeFailed, Message: "declined"}, nil
		}
		require.Equal(t, "5678", pin)
		return domain.Outcome{Kind: domain.OutcomeSuccess, TransactionID: "tx2"}, nil
	}, rec)

	require.NoError(t, f.Begin())
	pressAll(t, f, "1234")
	require.Equal(t, purchase.StateEditing, f.State())

	require.NoError(t, f.Begin())
	require.Equal(t, 0, f.PinLen())
	pressAll(t, f, "5678")
	require.Equal(t, []string{"tx2"}, rec.navigations)
}

// Each submission gets its own payment identifier.
func TestFreshPaymentIdentifierPerSubmission(t *testing.T) {
	rec := &recorder{}
	var ids []string
	f := newFlow(t, func(ctx context.Context, pin, paymentID string) (domain.Outcome, error) {
		ids = append(ids, paymentID)
		return domain.Outcome{Kind: domain.OutcomeFailed, Message: "declined"}, nil
	}, rec)

	require.NoError(t, f.Begin())
	pressAll(t, f, "1234")
	require.NoError(t, f.Begin())
	pressAll(t, f, "1234")

	require.Equal(t, []string{"AMK-1", "AMK-1"}, ids) // static source in tests
	require.Len(t, ids, 2)
}

func TestBeginBlocksOnValidationErrors(t *testing.T) {
	rec := &recorder{}
	f := purchase.NewFlow(purchase.Spec{
		Service:   "airtime",
		Form:      &airtimeForm{Phone: "12345", Amount: 10},
		Submit:    func(context.Context, string, string) (domain.Outcome, error) { return domain.Outcome{}, nil },
		Notify:    rec.notify,
		Validator: purchase.NewValidator(),
	})

	err := f.Begin()
	var fields purchase.FieldErrors
	require.ErrorAs(t, err, &fields)
	require.Equal(t, "Enter a valid 11-digit phone number", fields["Phone"])
	require.Equal(t, "Minimum value is 50", fields["Amount"])
	require.Equal(t, purchase.StateEditing, f.State())

	// Digits outside the PIN step are rejected.
	require.ErrorIs(t, f.Press(context.Background(), '1'), purchase.ErrNotAwaitingPin)
}
