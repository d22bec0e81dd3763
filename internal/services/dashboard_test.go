package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard/internal/core"
	"finboard/internal/ledger/memory"
)

func TestDashboardOverview(t *testing.T) {
	store := memory.NewSeeded()
	reports := NewReports(store.Transactions, time.Minute)
	d := NewDashboard(store.Accounts, store.Transactions, reports)

	ov, err := d.Overview(context.Background())
	require.NoError(t, err)
	assert.True(t, ov.TotalBalance.Equal(dec("70774.53")), ov.TotalBalance.String())
	assert.Equal(t, 7, ov.Accounts)
	assert.Equal(t, 7, ov.Month.Month)
	require.Len(t, ov.Recent, 5)
	assert.Equal(t, "1", ov.Recent[0].ID)
	assert.Equal(t, "5", ov.Recent[4].ID)
}

func TestRecent(t *testing.T) {
	txs := []core.Transaction{
		{ID: "old", Date: core.NewDate(2024, 1, 1)},
		{ID: "new", Date: core.NewDate(2024, 6, 1)},
		{ID: "mid", Date: core.NewDate(2024, 3, 1)},
	}
	got := Recent(txs, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].ID)
	assert.Equal(t, "mid", got[1].ID)
	assert.Equal(t, "old", txs[0].ID, "input untouched")
}

func TestTransactionsBrowse(t *testing.T) {
	s := NewTransactions(memory.NewBook(memory.SeedTransactions()))
	page, err := s.Browse(context.Background(), core.TransactionFilter{PaymentMethod: "Credit Card"})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "1", page.Items[0].ID)
	assert.Equal(t, "3", page.Items[1].ID)
	assert.True(t, page.Totals.Expenses.Equal(dec("2350")))
	assert.Len(t, page.Categories, 5, "options come from the unfiltered book")
	assert.Contains(t, page.PaymentMethods, "Direct Deposit")
	assert.Contains(t, page.Accounts, "Bank Transfer")
}
