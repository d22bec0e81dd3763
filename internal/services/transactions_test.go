package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard/internal/core"
	"finboard/internal/ledger/memory"
)

type failingLister struct{ err error }

func (l failingLister) ListTransactions(context.Context) ([]core.Transaction, error) {
	return nil, l.err
}

func TestBrowseUnfiltered(t *testing.T) {
	s := NewTransactions(memory.NewBook(memory.SeedTransactions()))
	page, err := s.Browse(context.Background(), core.TransactionFilter{})
	require.NoError(t, err)

	require.Len(t, page.Items, 5)
	assert.Equal(t, "1", page.Items[0].ID, "source order kept")
	assert.True(t, page.Totals.Income.Equal(dec("35100")))
	assert.True(t, page.Totals.Expenses.Equal(dec("13487.5")))
	assert.Equal(t, []string{"Dining", "Utilities", "Groceries", "Paycheck", "Social"}, page.Categories)
	assert.Equal(t, []string{"Credit Card", "Bank Transfer", "Direct Deposit"}, page.PaymentMethods)
}

func TestBrowseFilterCombinesSelectors(t *testing.T) {
	s := NewTransactions(memory.NewBook(memory.SeedTransactions()))
	page, err := s.Browse(context.Background(), core.TransactionFilter{
		PaymentMethod: "Credit Card",
		Account:       "Checking Account",
	})
	require.NoError(t, err)

	require.Len(t, page.Items, 1)
	assert.Equal(t, "Restaurant dinner", page.Items[0].Description)
	assert.True(t, page.Totals.Net.Equal(dec("-675")))
	// options describe the whole book, not the filtered slice
	assert.Len(t, page.Categories, 5)
}

func TestBrowseNoMatch(t *testing.T) {
	s := NewTransactions(memory.NewBook(memory.SeedTransactions()))
	page, err := s.Browse(context.Background(), core.TransactionFilter{Search: "nothing like this"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.True(t, page.Totals.Net.IsZero())
}

func TestBrowseSourceError(t *testing.T) {
	boom := errors.New("sheet unavailable")
	_, err := NewTransactions(failingLister{err: boom}).Browse(context.Background(), core.TransactionFilter{})
	assert.ErrorIs(t, err, boom)
}
