package api

import (
	"context"
	"fmt"

	"github.com/almaleek/wallet/internal/domain"
	"github.com/almaleek/wallet/internal/session"
)

// Billers covers the remita-backed services: bank transfers, electricity,
// cable TV and exam PINs, with their pre-purchase verification lookups.
type Billers struct {
	s *session.Manager
}

// NewBillers wires the module.
func NewBillers(s *session.Manager) *Billers {
	return &Billers{s: s}
}

// Bank is a transfer destination institution.
type Bank struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// Provider is an electricity disco or cable operator.
type Provider struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// CablePackage is one subscribable bouquet.
type CablePackage struct {
	Name  string  `json:"name"`
	Code  string  `json:"code"`
	Price float64 `json:"price"`
}

// ExamProduct is one purchasable exam PIN type.
type ExamProduct struct {
	Name  string  `json:"name"`
	Code  string  `json:"code"`
	Price float64 `json:"price"`
}

// TransferRequest is the bank-transfer submission payload. The destination
// account name must come from a prior name enquiry, not user input.
type TransferRequest struct {
	DestinationBankCode      string  `json:"destinationBankCode"`
	DestinationAccountNumber string  `json:"destinationAccountNumber"`
	DestinationAccountName   string  `json:"destinationAccountName"`
	Amount                   float64 `json:"amount"`
	TransactionDescription   string  `json:"transactionDescription"`
	UserID                   string  `json:"userId"`
	PinCode                  string  `json:"pinCode"`
	PaymentIdentifier        string  `json:"paymentIdentifier"`
}

// ElectricityVend is the electricity submission payload.
type ElectricityVend struct {
	DiscoCode         string  `json:"discoCode"`
	MeterNumber       string  `json:"meterNumber"`
	MeterType         string  `json:"meterType"`
	Amount            float64 `json:"amount"`
	PhoneNumber       string  `json:"phoneNumber,omitempty"`
	UserID            string  `json:"userId"`
	PinCode           string  `json:"pinCode"`
	PaymentIdentifier string  `json:"paymentIdentifier"`
}

// CableSubscribe is the cable-TV submission payload.
type CableSubscribe struct {
	ProviderCode      string  `json:"providerCode"`
	SmartcardNumber   string  `json:"smartcardNumber"`
	PackageCode       string  `json:"packageCode"`
	Amount            float64 `json:"amount"`
	UserID            string  `json:"userId"`
	PinCode           string  `json:"pinCode"`
	PaymentIdentifier string  `json:"paymentIdentifier"`
}

// ExamPurchase is the exam-PIN submission payload.
type ExamPurchase struct {
	ProductCode       string  `json:"productCode"`
	Quantity          int     `json:"quantity"`
	Amount            float64 `json:"amount"`
	UserID            string  `json:"userId"`
	PinCode           string  `json:"pinCode"`
	PaymentIdentifier string  `json:"paymentIdentifier"`
}

// Banks lists transfer destinations.
func (b *Billers) Banks(ctx context.Context) ([]Bank, error) {
	resp, err := b.s.Get(ctx, "/remita/banks")
	if err != nil {
		return nil, err
	}
	if err := expectOK(resp, "Failed to fetch banks"); err != nil {
		return nil, err
	}
	// Banks arrive double-wrapped: {"data":{"banks":[...]}}.
	var envelope struct {
		Data struct {
			Banks []Bank `json:"banks"`
		} `json:"data"`
	}
	if err := decodeInto(resp, &envelope, "banks"); err != nil {
		return nil, err
	}
	return envelope.Data.Banks, nil
}

// NameEnquiry resolves an account number to its holder before a transfer.
func (b *Billers) NameEnquiry(ctx context.Context, bankCode, accountNumber string) (*domain.Customer, error) {
	resp, err := b.s.Post(ctx, "/remita/name-enquiry", map[string]string{
		"destinationBankCode":      bankCode,
		"destinationAccountNumber": accountNumber,
	})
	if err != nil {
		return nil, err
	}
	return decodeCustomer(resp, "Name enquiry failed")
}

// Transfer submits a bank transfer.
func (b *Billers) Transfer(ctx context.Context, req TransferRequest) (domain.Outcome, error) {
	resp, err := b.s.Post(ctx, "/remita/send", req)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("transfer: %w", err)
	}
	return normalizeOutcome(resp, "Transfer failed"), nil
}

// ElectricityProviders lists discos.
func (b *Billers) ElectricityProviders(ctx context.Context) ([]Provider, error) {
	resp, err := b.s.Get(ctx, "/remita/electricity/providers")
	if err != nil {
		return nil, err
	}
	if err := expectOK(resp, "Failed to fetch discos"); err != nil {
		return nil, err
	}
	return decodeList[Provider](resp, "electricity providers")
}

// ValidateMeter verifies a meter number with the disco.
func (b *Billers) ValidateMeter(ctx context.Context, discoCode, meterNumber, meterType string) (*domain.Customer, error) {
	resp, err := b.s.Post(ctx, "/remita/electricity/validate", map[string]string{
		"discoCode":   discoCode,
		"meterNumber": meterNumber,
		"meterType":   meterType,
	})
	if err != nil {
		return nil, err
	}
	return decodeCustomer(resp, "Meter validation failed")
}

// VendElectricity submits an electricity purchase.
func (b *Billers) VendElectricity(ctx context.Context, req ElectricityVend) (domain.Outcome, error) {
	resp, err := b.s.Post(ctx, "/remita/electricity/vend", req)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("electricity vend: %w", err)
	}
	return normalizeOutcome(resp, "Electricity purchase failed"), nil
}

// CableProviders lists cable operators.
func (b *Billers) CableProviders(ctx context.Context) ([]Provider, error) {
	resp, err := b.s.Get(ctx, "/remita/cable/providers")
	if err != nil {
		return nil, err
	}
	if err := expectOK(resp, "Failed to fetch cable providers"); err != nil {
		return nil, err
	}
	return decodeList[Provider](resp, "cable providers")
}

// CablePackages lists bouquets for one operator.
func (b *Billers) CablePackages(ctx context.Context, providerCode string) ([]CablePackage, error) {
	resp, err := b.s.Get(ctx, "/remita/cable/packages/"+providerCode)
	if err != nil {
		return nil, err
	}
	if err := expectOK(resp, "Failed to fetch cable packages"); err != nil {
		return nil, err
	}
	return decodeList[CablePackage](resp, "cable packages")
}

// ValidateSmartcard verifies a smartcard with the operator.
func (b *Billers) ValidateSmartcard(ctx context.Context, providerCode, smartcardNumber string) (*domain.Customer, error) {
	resp, err := b.s.Post(ctx, "/remita/cable/validate", map[string]string{
		"providerCode":    providerCode,
		"smartcardNumber": smartcardNumber,
	})
	if err != nil {
		return nil, err
	}
	return decodeCustomer(resp, "Smartcard validation failed")
}

// SubscribeCable submits a cable subscription.
func (b *Billers) SubscribeCable(ctx context.Context, req CableSubscribe) (domain.Outcome, error) {
	resp, err := b.s.Post(ctx, "/remita/cable/subscribe", req)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("cable subscribe: %w", err)
	}
	return normalizeOutcome(resp, "Cable subscription failed"), nil
}

// ExamProducts lists purchasable exam PINs.
func (b *Billers) ExamProducts(ctx context.Context) ([]ExamProduct, error) {
	resp, err := b.s.Get(ctx, "/remita/exam/products")
	if err != nil {
		return nil, err
	}
	if err := expectOK(resp, "Failed to fetch exam products"); err != nil {
		return nil, err
	}
	return decodeList[ExamProduct](resp, "exam products")
}

// PurchaseExamPin submits an exam PIN purchase.
func (b *Billers) PurchaseExamPin(ctx context.Context, req ExamPurchase) (domain.Outcome, error) {
	resp, err := b.s.Post(ctx, "/remita/exam/purchase", req)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("exam purchase: %w", err)
	}
	return normalizeOutcome(resp, "Exam purchase failed"), nil
}

// QueryBillerTransaction checks a biller-side transaction by its payment
// identifier. service is one of "electricity", "cable" or "exam".
func (b *Billers) QueryBillerTransaction(ctx context.Context, service, paymentIdentifier string) (domain.Outcome, error) {
	resp, err := b.s.Get(ctx, fmt.Sprintf("/remita/%s/transaction/%s", service, paymentIdentifier))
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("query %s transaction: %w", service, err)
	}
	return normalizeOutcome(resp, "Query failed"), nil
}
