package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/almaleek/wallet/internal/api"
	"github.com/almaleek/wallet/internal/domain"
)

type airtimeForm struct {
	Network string  `validate:"required"`
	Phone   string  `validate:"required,ngphone"`
	Amount  float64 `validate:"required,gte=50,lte=50000"`
}

func (d *Deps) newAirtimeCmd() *cobra.Command {
	form := airtimeForm{}
	cmd := &cobra.Command{
		Use:   "airtime",
		Short: "Buy airtime for any Nigerian network",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := d.requireUser(cmd)
			if err != nil {
				return err
			}
			return d.runPurchase(cmd, "airtime", &form,
				func(ctx context.Context, pin, paymentID string) (domain.Outcome, error) {
					return d.VTU.PurchaseAirtime(ctx, api.AirtimePurchase{
						NetworkID:         form.Network,
						Phone:             form.Phone,
						Amount:            form.Amount,
						UserID:            userID,
						PinCode:           pin,
						PaymentIdentifier: paymentID,
					})
				})
		},
	}
	cmd.Flags().StringVar(&form.Network, "network", "", "network id (mtn, glo, airtel, 9mobile)")
	cmd.Flags().StringVar(&form.Phone, "phone", "", "recipient phone number")
	cmd.Flags().Float64Var(&form.Amount, "amount", 0, "amount in NGN")
	return cmd
}

type dataForm struct {
	Network string `validate:"required"`
	Plan    string `validate:"required"`
	Phone   string `validate:"required,ngphone"`
}

func (d *Deps) newDataCmd() *cobra.Command {
	form := dataForm{}
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Buy a data bundle",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := d.requireUser(cmd)
			if err != nil {
				return err
			}

			plans, err := d.VTU.DataPlans(cmd.Context(), form.Network)
			if err != nil {
				return err
			}
			plan, ok := findPlan(plans, form.Plan)
			if !ok {
				return fmt.Errorf("unknown plan %q for network %s, run `wallet data plans --network %s`",
					form.Plan, form.Network, form.Network)
			}

			return d.runPurchase(cmd, "data", &form,
				func(ctx context.Context, pin, paymentID string) (domain.Outcome, error) {
					return d.VTU.PurchaseData(ctx, api.DataPurchase{
						NetworkID:         form.Network,
						PlanID:            plan.ID,
						Phone:             form.Phone,
						Amount:            plan.Price,
						UserID:            userID,
						PinCode:           pin,
						PaymentIdentifier: paymentID,
					})
				})
		},
	}
	cmd.Flags().StringVar(&form.Network, "network", "", "network id (mtn, glo, airtel, 9mobile)")
	cmd.Flags().StringVar(&form.Plan, "plan", "", "plan id from `wallet data plans`")
	cmd.Flags().StringVar(&form.Phone, "phone", "", "recipient phone number")

	cmd.AddCommand(d.newDataPlansCmd())
	return cmd
}

func (d *Deps) newDataPlansCmd() *cobra.Command {
	var network string
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "List data bundles for a network",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := d.requireUser(cmd); err != nil {
				return err
			}
			plans, err := d.VTU.DataPlans(cmd.Context(), network)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, plan := range plans {
				fmt.Fprintf(out, "%-12s %-30s %10.2f  %s\n", plan.ID, plan.Name, plan.Price, plan.Validity)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&network, "network", "", "network id (mtn, glo, airtel, 9mobile)")
	_ = cmd.MarkFlagRequired("network")
	return cmd
}

func findPlan(plans []api.DataPlan, id string) (api.DataPlan, bool) {
	for _, plan := range plans {
		if plan.ID == id {
			return plan, true
		}
	}
	return api.DataPlan{}, false
}
