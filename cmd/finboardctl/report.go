package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"finboard/internal/core"
	"finboard/internal/services"
)

func reportCmd() *cobra.Command {
	var (
		period string
		year   int
		month  int
		f      core.TransactionFilter
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the yearly report and one month's summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				ctx := cmd.Context()
				rep, err := a.reports.Year(ctx, period, f)
				if err != nil {
					return err
				}
				sum, err := a.reports.Month(ctx, year, month, f)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%s: %s to %s", rep.Period, rep.From, rep.To)))
				writeTotals(out, rep.Totals)
				fmt.Fprintln(out)

				t := newTable(out, "Month", "Income", "Expenses")
				for _, m := range rep.Months {
					t.row(fmt.Sprintf("%s %d", time.Month(m.Month).String()[:3], m.Year),
						core.FormatAmount(m.Income), core.FormatAmount(m.Expense))
				}
				if err := t.flush(); err != nil {
					return err
				}
				fmt.Fprintln(out)

				t = newTable(out, "Category", "Income", "Expenses", "Net")
				for _, c := range rep.Categories {
					t.row(c.Name, core.FormatAmount(c.Income), core.FormatAmount(c.Expense), core.FormatSigned(c.Net))
				}
				if err := t.flush(); err != nil {
					return err
				}
				fmt.Fprintln(out)

				t = newTable(out, "Expense share", "Percent", "Amount")
				for _, s := range rep.Shares {
					t.row(s.Name, fmt.Sprintf("%d%%", s.Percent), core.FormatAmount(s.Value))
				}
				if err := t.flush(); err != nil {
					return err
				}

				if sum.Month >= 1 && sum.Month <= 12 {
					fmt.Fprintln(out)
					fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%s %d", time.Month(sum.Month), sum.Year)))
					writeTotals(out, sum.Totals)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&period, "period", services.PeriodLastYear, "last-year, this-year or a four-digit year")
	cmd.Flags().IntVar(&year, "year", 0, "summary year (default: newest transaction's)")
	cmd.Flags().IntVar(&month, "month", 0, "summary month 1-12 (default: newest transaction's)")
	filterFlags(cmd, &f)
	return cmd
}
