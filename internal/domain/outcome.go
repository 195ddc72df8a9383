package domain

// OutcomeKind classifies a normalized purchase result.
type OutcomeKind string

// Outcome kinds. A failed outcome can still carry a transaction ID when the
// provider declined after the backend recorded the attempt.
const (
	OutcomeSuccess OutcomeKind = "success"
	OutcomePending OutcomeKind = "pending"
	OutcomeFailed  OutcomeKind = "failed"
)

// Outcome is the single shape every purchase call is folded into, regardless
// of which branch of the backend response carried the data.
type Outcome struct {
	Kind          OutcomeKind
	TransactionID string
	Message       string
}

// Trackable reports whether the outcome points at a backend transaction the
// user can follow up on. This drives post-submission routing: a trackable
// failure still lands on the transaction detail view, not on an error toast.
func (o Outcome) Trackable() bool {
	return o.TransactionID != ""
}
