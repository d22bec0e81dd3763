package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"finboard/internal/core"
	"finboard/internal/ledger"
)

const recentTransactions = 5

// Overview is the dashboard: balances, the current month and recent activity.
type Overview struct {
	TotalBalance decimal.Decimal
	Accounts     int
	Month        core.MonthSummary
	Recent       []core.Transaction
}

type Dashboard struct {
	accounts ledger.Repository[core.Account]
	txs      ledger.TransactionLister
	reports  *Reports
}

func NewDashboard(accounts ledger.Repository[core.Account], txs ledger.TransactionLister, reports *Reports) *Dashboard {
	return &Dashboard{accounts: accounts, txs: txs, reports: reports}
}

// Overview loads accounts, recent transactions and the current month concurrently.
func (d *Dashboard) Overview(ctx context.Context) (Overview, error) {
	var (
		ov       Overview
		accounts []core.Account
		txs      []core.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = d.accounts.List(gctx)
		if err != nil {
			return fmt.Errorf("list accounts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		txs, err = d.txs.ListTransactions(gctx)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		ov.Month, err = d.reports.Month(gctx, 0, 0, core.TransactionFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	for _, a := range accounts {
		ov.TotalBalance = ov.TotalBalance.Add(a.Balance)
	}
	ov.Accounts = len(accounts)
	ov.Recent = Recent(txs, recentTransactions)
	return ov, nil
}

// Recent returns the n newest transactions, newest first. Ties keep book order.
func Recent(txs []core.Transaction, n int) []core.Transaction {
	sorted := make([]core.Transaction, len(txs))
	copy(sorted, txs)
	sortNewestFirst(sorted)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
