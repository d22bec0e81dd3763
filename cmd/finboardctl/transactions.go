package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"finboard/internal/core"
	"finboard/internal/services"
)

func filterFlags(cmd *cobra.Command, f *core.TransactionFilter) {
	cmd.Flags().StringVar(&f.Search, "search", "", "case-insensitive description search")
	cmd.Flags().StringVar(&f.Category, "category", core.MatchAll, "category name or \"all\"")
	cmd.Flags().StringVar(&f.PaymentMethod, "payment-method", core.MatchAll, "payment method name or \"all\"")
	cmd.Flags().StringVar(&f.Account, "account", core.MatchAll, "account name or \"all\"")
}

func transactionsCmd() *cobra.Command {
	var f core.TransactionFilter
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List transactions matching the filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				page, err := a.transactions.Browse(cmd.Context(), f)
				if err != nil {
					return fmt.Errorf("failed to load transactions: %w", err)
				}
				return printTransactions(cmd, page)
			})
		},
	}
	filterFlags(cmd, &f)
	return cmd
}

func printTransactions(cmd *cobra.Command, page services.TransactionPage) error {
	out := cmd.OutOrStdout()
	if len(page.Items) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No transactions match."))
		return nil
	}
	t := newTable(out, "Date", "Description", "Category", "Payment", "Account", "Amount")
	for _, tx := range page.Items {
		t.row(tx.Date.String(), tx.Description, tx.Category, tx.PaymentMethod, tx.Account, amountCell(tx))
	}
	if err := t.flush(); err != nil {
		return err
	}
	writeTotals(out, page.Totals)
	return nil
}
