package domain

import "errors"

var (
	// ErrNotSignedIn signals that no session tokens are stored locally.
	ErrNotSignedIn = errors.New("wallet: not signed in")
	// ErrTransactionNotFound signals a history lookup miss.
	ErrTransactionNotFound = errors.New("wallet: transaction not found")
)
