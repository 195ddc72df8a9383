package domain

import "time"

// Transaction statuses used across every service type.
const (
	StatusSuccess = "success"
	StatusPending = "pending"
	StatusFailed  = "failed"
)

// Transaction is one ledger entry from the backend, shared by airtime, data,
// cable, electricity, exam and transfer purchases.
type Transaction struct {
	ID          string    `json:"_id"`
	ReferenceNo string    `json:"reference_no"`
	UserID      string    `json:"userId"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	Amount      float64   `json:"amount"`
	Recipient   string    `json:"recipient"`
	Provider    string    `json:"provider"`
	Description string    `json:"description"`
	Token       string    `json:"token,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Customer is the result of a pre-purchase lookup (meter validation,
// smartcard validation or bank name enquiry).
type Customer struct {
	Name          string `json:"Customer_Name"`
	Address       string `json:"Address,omitempty"`
	SmartcardNo   string `json:"Smartcard_Number,omitempty"`
	AccountNumber string `json:"Account_Number,omitempty"`
	Balance       string `json:"Balance,omitempty"`
}
