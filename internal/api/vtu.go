package api

import (
	"context"
	"fmt"

	"github.com/almaleek/wallet/internal/domain"
	"github.com/almaleek/wallet/internal/session"
)

// VTU covers airtime and data top-ups, served by the easyAccess integration.
type VTU struct {
	s *session.Manager
}

// NewVTU wires the module.
func NewVTU(s *session.Manager) *VTU {
	return &VTU{s: s}
}

// DataPlan is one purchasable bundle for a network.
type DataPlan struct {
	ID       string  `json:"planId"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Validity string  `json:"validity"`
	Network  string  `json:"networkId"`
}

// AirtimePurchase is the airtime submission payload.
type AirtimePurchase struct {
	NetworkID         string  `json:"networkId"`
	Phone             string  `json:"phone"`
	Amount            float64 `json:"amount"`
	UserID            string  `json:"userId"`
	PinCode           string  `json:"pinCode"`
	PaymentIdentifier string  `json:"paymentIdentifier"`
}

// DataPurchase is the data-bundle submission payload.
type DataPurchase struct {
	NetworkID         string  `json:"networkId"`
	PlanID            string  `json:"planId"`
	Phone             string  `json:"phone"`
	Amount            float64 `json:"amount"`
	UserID            string  `json:"userId"`
	PinCode           string  `json:"pinCode"`
	PaymentIdentifier string  `json:"paymentIdentifier"`
}

// DataPlans lists the bundles available for a network.
func (v *VTU) DataPlans(ctx context.Context, networkID string) ([]DataPlan, error) {
	resp, err := v.s.Get(ctx, "/easyaccess/data/plans/"+networkID)
	if err != nil {
		return nil, err
	}
	if err := expectOK(resp, "Failed to fetch data plans"); err != nil {
		return nil, err
	}
	return decodeList[DataPlan](resp, "data plans")
}

// PurchaseAirtime submits an airtime top-up. A transport or session failure
// is an error; a backend decline is a failed Outcome, which can still carry
// a transaction ID worth routing to.
func (v *VTU) PurchaseAirtime(ctx context.Context, p AirtimePurchase) (domain.Outcome, error) {
	resp, err := v.s.Post(ctx, "/easyaccess/airtime", p)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("airtime purchase: %w", err)
	}
	return normalizeOutcome(resp, "Airtime purchase failed"), nil
}

// PurchaseData submits a data-bundle purchase.
func (v *VTU) PurchaseData(ctx context.Context, p DataPurchase) (domain.Outcome, error) {
	resp, err := v.s.Post(ctx, "/easyaccess/data", p)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("data purchase: %w", err)
	}
	return normalizeOutcome(resp, "Data purchase failed"), nil
}
