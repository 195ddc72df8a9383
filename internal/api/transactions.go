package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/almaleek/wallet/internal/domain"
	"github.com/almaleek/wallet/internal/session"
)

// Transactions covers the history surface.
type Transactions struct {
	s *session.Manager
}

// NewTransactions wires the module.
func NewTransactions(s *session.Manager) *Transactions {
	return &Transactions{s: s}
}

// List fetches recent transactions. days limits the window; 0 means all.
func (t *Transactions) List(ctx context.Context, days int) ([]domain.Transaction, error) {
	path := "/transactions"
	if days > 0 {
		path = fmt.Sprintf("/transactions?days=%d", days)
	}
	resp, err := t.s.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := expectOK(resp, "Failed to fetch transactions"); err != nil {
		return nil, err
	}
	return decodeList[domain.Transaction](resp, "transactions")
}

// Get fetches one transaction by its identifier.
func (t *Transactions) Get(ctx context.Context, id string) (*domain.Transaction, error) {
	resp, err := t.s.Get(ctx, "/transactions/"+id)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrTransactionNotFound
	}
	if err := expectOK(resp, "Failed to fetch transaction"); err != nil {
		return nil, err
	}
	var txn domain.Transaction
	if err := decodeInto(resp, &txn, "transaction"); err != nil {
		return nil, err
	}
	return &txn, nil
}
