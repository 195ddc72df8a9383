package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/almaleek/wallet/internal/domain"
)

func (d *Deps) newHistoryCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "history [transaction-id]",
		Short: "List recent transactions or show one in full",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := d.requireUser(cmd); err != nil {
				return err
			}

			if len(args) == 1 {
				tx, err := d.Transactions.Get(cmd.Context(), args[0])
				if err != nil {
					if errors.Is(err, domain.ErrTransactionNotFound) {
						return fmt.Errorf("no transaction with id %s", args[0])
					}
					return err
				}
				printTransaction(cmd, tx)
				return nil
			}

			list, err := d.Transactions.List(cmd.Context(), days)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No transactions in the last %d days.\n", days)
				return nil
			}
			out := cmd.OutOrStdout()
			for _, tx := range list {
				fmt.Fprintf(out, "%-26s %-12s %-8s %12.2f  %s\n",
					tx.ID, tx.Type, tx.Status, tx.Amount, tx.CreatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "how far back to list")
	return cmd
}

func printTransaction(cmd *cobra.Command, tx *domain.Transaction) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:         %s\n", tx.ID)
	fmt.Fprintf(out, "Reference:  %s\n", tx.ReferenceNo)
	fmt.Fprintf(out, "Type:       %s\n", tx.Type)
	fmt.Fprintf(out, "Status:     %s\n", tx.Status)
	fmt.Fprintf(out, "Amount:     %.2f\n", tx.Amount)
	if tx.Recipient != "" {
		fmt.Fprintf(out, "Recipient:  %s\n", tx.Recipient)
	}
	if tx.Provider != "" {
		fmt.Fprintf(out, "Provider:   %s\n", tx.Provider)
	}
	if tx.Token != "" {
		fmt.Fprintf(out, "Token:      %s\n", tx.Token)
	}
	if tx.Description != "" {
		fmt.Fprintf(out, "Details:    %s\n", tx.Description)
	}
	fmt.Fprintf(out, "Date:       %s\n", tx.CreatedAt.Format("2006-01-02 15:04:05"))
}
