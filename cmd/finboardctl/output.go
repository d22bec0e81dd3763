package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"finboard/internal/core"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	incomeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	expenseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// table writes tab-aligned rows under a styled header.
type table struct {
	w *tabwriter.Writer
}

func newTable(out io.Writer, headers ...string) *table {
	t := &table{w: tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)}
	styled := make([]string, len(headers))
	rules := make([]string, len(headers))
	for i, h := range headers {
		styled[i] = headerStyle.Render(h)
		rules[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(t.w, strings.Join(styled, "\t"))
	fmt.Fprintln(t.w, strings.Join(rules, "\t"))
	return t
}

func (t *table) row(cols ...string) {
	fmt.Fprintln(t.w, strings.Join(cols, "\t"))
}

func (t *table) flush() error {
	return t.w.Flush()
}

func presetLabel(preset bool) string {
	if preset {
		return "default"
	}
	return mutedStyle.Render("custom")
}

func amountCell(t core.Transaction) string {
	if t.IsIncome() {
		return incomeStyle.Render(core.FormatSigned(t.Amount))
	}
	return expenseStyle.Render(core.FormatSigned(t.Amount))
}

func writeTotals(out io.Writer, totals core.Totals) {
	fmt.Fprintf(out, "\nIncome %s  Expenses %s  Net %s\n",
		incomeStyle.Render(core.FormatAmount(totals.Income)),
		expenseStyle.Render(core.FormatAmount(totals.Expenses)),
		core.FormatSigned(totals.Net))
}
