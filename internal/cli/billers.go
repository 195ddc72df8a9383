package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/almaleek/wallet/internal/api"
	"github.com/almaleek/wallet/internal/domain"
)

type electricityForm struct {
	Disco     string  `validate:"required"`
	Meter     string  `validate:"required,numeric"`
	MeterType string  `validate:"required,oneof=prepaid postpaid"`
	Amount    float64 `validate:"required,gte=500"`
	Phone     string  `validate:"omitempty,ngphone"`
}

func (d *Deps) newElectricityCmd() *cobra.Command {
	form := electricityForm{}
	cmd := &cobra.Command{
		Use:   "electricity",
		Short: "Buy electricity units for a meter",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := d.requireUser(cmd)
			if err != nil {
				return err
			}

			// Resolve the meter owner before taking any money.
			customer, err := d.Billers.ValidateMeter(cmd.Context(), form.Disco, form.Meter, form.MeterType)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Meter owner: %s", customer.Name)
			if customer.Address != "" {
				fmt.Fprintf(cmd.OutOrStdout(), ", %s", customer.Address)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			if ok, err := confirm(cmd, "Proceed?"); err != nil || !ok {
				return err
			}

			return d.runPurchase(cmd, "electricity", &form,
				func(ctx context.Context, pin, paymentID string) (domain.Outcome, error) {
					return d.Billers.VendElectricity(ctx, api.ElectricityVend{
						DiscoCode:         form.Disco,
						MeterNumber:       form.Meter,
						MeterType:         form.MeterType,
						Amount:            form.Amount,
						PhoneNumber:       form.Phone,
						UserID:            userID,
						PinCode:           pin,
						PaymentIdentifier: paymentID,
					})
				})
		},
	}
	cmd.Flags().StringVar(&form.Disco, "disco", "", "distribution company code, see `wallet electricity providers`")
	cmd.Flags().StringVar(&form.Meter, "meter", "", "meter number")
	cmd.Flags().StringVar(&form.MeterType, "type", "prepaid", "meter type: prepaid or postpaid")
	cmd.Flags().Float64Var(&form.Amount, "amount", 0, "amount in NGN")
	cmd.Flags().StringVar(&form.Phone, "phone", "", "phone for the token SMS (optional)")

	cmd.AddCommand(&cobra.Command{
		Use:   "providers",
		Short: "List electricity distribution companies",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := d.requireUser(cmd); err != nil {
				return err
			}
			providers, err := d.Billers.ElectricityProviders(cmd.Context())
			if err != nil {
				return err
			}
			printProviders(cmd, providers)
			return nil
		},
	}, d.newTrackCmd("electricity"))
	return cmd
}

type cableForm struct {
	Provider  string `validate:"required"`
	Smartcard string `validate:"required,numeric"`
	Package   string `validate:"required"`
}

func (d *Deps) newCableCmd() *cobra.Command {
	form := cableForm{}
	cmd := &cobra.Command{
		Use:   "cable",
		Short: "Renew a cable TV subscription",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := d.requireUser(cmd)
			if err != nil {
				return err
			}

			// The package list and the smartcard owner are independent
			// lookups; fetch them together.
			var (
				packages []api.CablePackage
				customer *domain.Customer
			)
			group, ctx := errgroup.WithContext(cmd.Context())
			group.Go(func() error {
				var err error
				packages, err = d.Billers.CablePackages(ctx, form.Provider)
				return err
			})
			group.Go(func() error {
				var err error
				customer, err = d.Billers.ValidateSmartcard(ctx, form.Provider, form.Smartcard)
				return err
			})
			if err := group.Wait(); err != nil {
				return err
			}

			pkg, ok := findPackage(packages, form.Package)
			if !ok {
				return fmt.Errorf("unknown package %q, run `wallet cable packages --provider %s`",
					form.Package, form.Provider)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Smartcard owner: %s\n", customer.Name)
			fmt.Fprintf(cmd.OutOrStdout(), "Package: %s at %.2f NGN\n", pkg.Name, pkg.Price)
			if ok, err := confirm(cmd, "Proceed?"); err != nil || !ok {
				return err
			}

			return d.runPurchase(cmd, "cable", &form,
				func(ctx context.Context, pin, paymentID string) (domain.Outcome, error) {
					return d.Billers.SubscribeCable(ctx, api.CableSubscribe{
						ProviderCode:      form.Provider,
						SmartcardNumber:   form.Smartcard,
						PackageCode:       pkg.Code,
						Amount:            pkg.Price,
						UserID:            userID,
						PinCode:           pin,
						PaymentIdentifier: paymentID,
					})
				})
		},
	}
	cmd.Flags().StringVar(&form.Provider, "provider", "", "operator code, see `wallet cable providers`")
	cmd.Flags().StringVar(&form.Smartcard, "smartcard", "", "smartcard / IUC number")
	cmd.Flags().StringVar(&form.Package, "package", "", "bouquet code from `wallet cable packages`")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "providers",
			Short: "List cable TV operators",
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := d.requireUser(cmd); err != nil {
					return err
				}
				providers, err := d.Billers.CableProviders(cmd.Context())
				if err != nil {
					return err
				}
				printProviders(cmd, providers)
				return nil
			},
		},
		d.newCablePackagesCmd(),
		d.newTrackCmd("cable"),
	)
	return cmd
}

func (d *Deps) newCablePackagesCmd() *cobra.Command {
	var provider string
	cmd := &cobra.Command{
		Use:   "packages",
		Short: "List bouquets for an operator",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := d.requireUser(cmd); err != nil {
				return err
			}
			packages, err := d.Billers.CablePackages(cmd.Context(), provider)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, pkg := range packages {
				fmt.Fprintf(out, "%-16s %-36s %10.2f\n", pkg.Code, pkg.Name, pkg.Price)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "operator code")
	_ = cmd.MarkFlagRequired("provider")
	return cmd
}

type examForm struct {
	Product  string `validate:"required"`
	Quantity int    `validate:"required,gte=1,lte=10"`
}

func (d *Deps) newExamCmd() *cobra.Command {
	form := examForm{}
	cmd := &cobra.Command{
		Use:   "exam",
		Short: "Buy WAEC/NECO/JAMB result-checker PINs",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := d.requireUser(cmd)
			if err != nil {
				return err
			}

			products, err := d.Billers.ExamProducts(cmd.Context())
			if err != nil {
				return err
			}
			product, ok := findProduct(products, form.Product)
			if !ok {
				return fmt.Errorf("unknown product %q, run `wallet exam products`", form.Product)
			}

			total := product.Price * float64(form.Quantity)
			fmt.Fprintf(cmd.OutOrStdout(), "%d x %s at %.2f NGN = %.2f NGN\n",
				form.Quantity, product.Name, product.Price, total)

			return d.runPurchase(cmd, "exam", &form,
				func(ctx context.Context, pin, paymentID string) (domain.Outcome, error) {
					return d.Billers.PurchaseExamPin(ctx, api.ExamPurchase{
						ProductCode:       product.Code,
						Quantity:          form.Quantity,
						Amount:            total,
						UserID:            userID,
						PinCode:           pin,
						PaymentIdentifier: paymentID,
					})
				})
		},
	}
	cmd.Flags().StringVar(&form.Product, "product", "", "product code from `wallet exam products`")
	cmd.Flags().IntVar(&form.Quantity, "quantity", 1, "number of PINs")

	cmd.AddCommand(&cobra.Command{
		Use:   "products",
		Short: "List available exam PIN products",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := d.requireUser(cmd); err != nil {
				return err
			}
			products, err := d.Billers.ExamProducts(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, product := range products {
				fmt.Fprintf(out, "%-16s %-36s %10.2f\n", product.Code, product.Name, product.Price)
			}
			return nil
		},
	}, d.newTrackCmd("exam"))
	return cmd
}

type transferForm struct {
	Bank    string  `validate:"required"`
	Account string  `validate:"required,len=10,numeric"`
	Amount  float64 `validate:"required,gte=100"`
	Note    string  `validate:"omitempty,max=100"`
}

func (d *Deps) newTransferCmd() *cobra.Command {
	form := transferForm{}
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Send money to a Nigerian bank account",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := d.requireUser(cmd)
			if err != nil {
				return err
			}

			// The account name always comes from the enquiry, never from the
			// user; a transfer without a resolved name is refused.
			customer, err := d.Billers.NameEnquiry(cmd.Context(), form.Bank, form.Account)
			if err != nil {
				return err
			}
			if strings.TrimSpace(customer.Name) == "" {
				return errors.New("could not resolve the account name, transfer refused")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account name: %s\n", customer.Name)
			if ok, err := confirm(cmd, fmt.Sprintf("Send %.2f NGN?", form.Amount)); err != nil || !ok {
				return err
			}

			return d.runPurchase(cmd, "transfer", &form,
				func(ctx context.Context, pin, paymentID string) (domain.Outcome, error) {
					return d.Billers.Transfer(ctx, api.TransferRequest{
						DestinationBankCode:      form.Bank,
						DestinationAccountNumber: form.Account,
						DestinationAccountName:   customer.Name,
						Amount:                   form.Amount,
						TransactionDescription:   form.Note,
						UserID:                   userID,
						PinCode:                  pin,
						PaymentIdentifier:        paymentID,
					})
				})
		},
	}
	cmd.Flags().StringVar(&form.Bank, "bank", "", "bank code from `wallet transfer banks`")
	cmd.Flags().StringVar(&form.Account, "account", "", "10-digit account number")
	cmd.Flags().Float64Var(&form.Amount, "amount", 0, "amount in NGN")
	cmd.Flags().StringVar(&form.Note, "note", "", "transfer narration")

	cmd.AddCommand(&cobra.Command{
		Use:   "banks",
		Short: "List banks that can receive transfers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := d.requireUser(cmd); err != nil {
				return err
			}
			banks, err := d.Billers.Banks(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, bank := range banks {
				fmt.Fprintf(out, "%-8s %s\n", bank.Code, bank.Name)
			}
			return nil
		},
	})
	return cmd
}

// newTrackCmd checks a biller-side transaction by its payment identifier,
// for purchases that settled as pending.
func (d *Deps) newTrackCmd(service string) *cobra.Command {
	return &cobra.Command{
		Use:   "track <payment-identifier>",
		Short: "Check the provider-side status of a purchase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := d.requireUser(cmd); err != nil {
				return err
			}
			outcome, err := d.Billers.QueryBillerTransaction(cmd.Context(), service, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Status: %s\n", outcome.Kind)
			if outcome.Message != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Detail: %s\n", outcome.Message)
			}
			if outcome.Trackable() {
				fmt.Fprintf(cmd.OutOrStdout(), "Transaction: %s\n", outcome.TransactionID)
			}
			return nil
		},
	}
}

func confirm(cmd *cobra.Command, question string) (bool, error) {
	answer, err := prompt(cmd, question+" [y/N]: ")
	if err != nil {
		return false, err
	}
	return strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes"), nil
}

func printProviders(cmd *cobra.Command, providers []api.Provider) {
	out := cmd.OutOrStdout()
	for _, provider := range providers {
		fmt.Fprintf(out, "%-16s %s\n", provider.Code, provider.Name)
	}
}

func findPackage(packages []api.CablePackage, code string) (api.CablePackage, bool) {
	for _, pkg := range packages {
		if pkg.Code == code {
			return pkg, true
		}
	}
	return api.CablePackage{}, false
}

func findProduct(products []api.ExamProduct, code string) (api.ExamProduct, bool) {
	for _, product := range products {
		if product.Code == code {
			return product, true
		}
	}
	return api.ExamProduct{}, false
}
