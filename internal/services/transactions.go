package services

import (
	"context"
	"fmt"
	"sort"

	"finboard/internal/core"
	"finboard/internal/ledger"
)

// TransactionPage is the filtered transactions view with its selector options.
type TransactionPage struct {
	Filter         core.TransactionFilter
	Items          []core.Transaction
	Totals         core.Totals
	Categories     []string
	PaymentMethods []string
	Accounts       []string
}

// Transactions recomputes the filtered view on every call.
type Transactions struct {
	src ledger.TransactionLister
}

func NewTransactions(src ledger.TransactionLister) *Transactions {
	return &Transactions{src: src}
}

func (s *Transactions) Browse(ctx context.Context, f core.TransactionFilter) (TransactionPage, error) {
	all, err := s.src.ListTransactions(ctx)
	if err != nil {
		return TransactionPage{}, fmt.Errorf("list transactions: %w", err)
	}
	items := f.Apply(all)
	cats, pms, accs := core.Options(all)
	return TransactionPage{
		Filter:         f,
		Items:          items,
		Totals:         core.SumTotals(items),
		Categories:     cats,
		PaymentMethods: pms,
		Accounts:       accs,
	}, nil
}

func sortNewestFirst(txs []core.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date.After(txs[j].Date.Time) })
}
