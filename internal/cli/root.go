// Package cli wires the wallet commands. Every command is a thin shell over
// the api and purchase packages: it gathers input, runs the shared purchase
// flow where money moves, and renders the result.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/almaleek/wallet/internal/api"
	"github.com/almaleek/wallet/internal/config"
	"github.com/almaleek/wallet/internal/credstore"
	"github.com/almaleek/wallet/internal/domain"
	"github.com/almaleek/wallet/internal/purchase"
	"github.com/almaleek/wallet/internal/security"
	"github.com/almaleek/wallet/internal/session"
)

// Deps carries everything the commands need. Populated by the fx graph in
// cmd/wallet.
type Deps struct {
	Config       config.Config
	Logger       *zap.Logger
	Session      *session.Manager
	Store        credstore.Store
	Auth         *api.Auth
	VTU          *api.VTU
	Billers      *api.Billers
	Transactions *api.Transactions
	Identifiers  *api.Identifiers
	Lock         *security.Lock
	Validator    *validator.Validate
}

// NewRoot builds the wallet command tree.
func NewRoot(d *Deps) *cobra.Command {
	root := &cobra.Command{
		Use:           "wallet",
		Short:         "Airtime, data, bills and transfers from your wallet balance",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		d.newLoginCmd(),
		d.newSignupCmd(),
		d.newLogoutCmd(),
		d.newStatusCmd(),
		d.newVerifyCmd(),
		d.newProfileCmd(),
		d.newPasswordCmd(),
		d.newAirtimeCmd(),
		d.newDataCmd(),
		d.newElectricityCmd(),
		d.newCableCmd(),
		d.newExamCmd(),
		d.newTransferCmd(),
		d.newHistoryCmd(),
		d.newPasscodeCmd(),
		d.newPinCmd(),
	)
	return root
}

// prompt reads one trimmed line from the command's input.
func prompt(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), label)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readSecret reads a line without echo when stdin is a terminal, falling
// back to a plain read otherwise so scripted runs still work.
func readSecret(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), label)
	if file, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		raw, err := term.ReadPassword(int(file.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("read secret: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// runPurchase drives the shared flow for one command: validate, capture the
// PIN, submit once, render the outcome. The receipt prints only when the
// backend recorded a transaction.
func (d *Deps) runPurchase(cmd *cobra.Command, service string, form any, submit purchase.SubmitFunc) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	flow := purchase.NewFlow(purchase.Spec{
		Service: service,
		Form:    form,
		Submit:  submit,
		Navigate: func(transactionID string) {
			d.printReceipt(cmd, transactionID)
		},
		Notify: func(kind purchase.Notice, message string) {
			if kind == purchase.NoticeError {
				fmt.Fprintln(cmd.ErrOrStderr(), "Error:", message)
				return
			}
			fmt.Fprintln(out, message)
		},
		Identifiers: d.Identifiers,
		Validator:   d.Validator,
		Logger:      d.Logger,
	})

	if err := flow.Begin(); err != nil {
		return err
	}

	pin, err := readSecret(cmd, "Transaction PIN: ")
	if err != nil {
		return err
	}
	// The modal only ever submits on the 4th digit; a wrong-length entry
	// here must be refused before a single press, not truncated or allowed
	// to spill past a settled flow.
	if len(pin) != purchase.PinLength {
		flow.Close()
		return fmt.Errorf("transaction PIN must be %d digits", purchase.PinLength)
	}
	for i := 0; i < len(pin); i++ {
		if err := flow.Press(ctx, pin[i]); err != nil {
			return err
		}
	}
	if flow.State() == purchase.StateAwaitingPin {
		// Non-digit characters were dropped by the pad; nothing submitted.
		flow.Close()
		return fmt.Errorf("transaction PIN must be %d digits", purchase.PinLength)
	}
	return nil
}

// printReceipt fetches and renders the transaction the purchase settled to.
func (d *Deps) printReceipt(cmd *cobra.Command, transactionID string) {
	tx, err := d.Transactions.Get(cmd.Context(), transactionID)
	if err != nil {
		// The purchase itself settled; a receipt fetch failure is not fatal.
		fmt.Fprintf(cmd.OutOrStdout(), "Transaction recorded: %s\n", transactionID)
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Reference:  %s\n", tx.ReferenceNo)
	fmt.Fprintf(out, "Type:       %s\n", tx.Type)
	fmt.Fprintf(out, "Status:     %s\n", tx.Status)
	fmt.Fprintf(out, "Amount:     %.2f\n", tx.Amount)
	if tx.Recipient != "" {
		fmt.Fprintf(out, "Recipient:  %s\n", tx.Recipient)
	}
	if tx.Token != "" {
		fmt.Fprintf(out, "Token:      %s\n", tx.Token)
	}
	if tx.Description != "" {
		fmt.Fprintf(out, "Details:    %s\n", tx.Description)
	}
}

// requireUser loads the signed-in account, translating a missing or
// invalidated session into a friendly hint.
func (d *Deps) requireUser(cmd *cobra.Command) (string, error) {
	if _, err := d.Session.Session(cmd.Context()); err != nil {
		if errors.Is(err, domain.ErrNotSignedIn) {
			return "", errors.New("not signed in, run `wallet login` first")
		}
		return "", err
	}
	user, err := d.Auth.CurrentUser(cmd.Context())
	if err != nil {
		if errors.Is(err, session.ErrSessionInvalidated) {
			return "", errors.New("session expired, run `wallet login` again")
		}
		return "", err
	}
	return user.ID, nil
}
