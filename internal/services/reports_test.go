package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard/internal/core"
	"finboard/internal/ledger/memory"
)

type countingLister struct {
	calls atomic.Int32
	txs   []core.Transaction
}

func (l *countingLister) ListTransactions(context.Context) ([]core.Transaction, error) {
	l.calls.Add(1)
	return l.txs, nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestReportsLastYear(t *testing.T) {
	r := NewReports(memory.NewBook(memory.SeedTransactions()), time.Minute)
	rep, err := r.Year(context.Background(), "", core.TransactionFilter{})
	require.NoError(t, err)

	assert.Equal(t, PeriodLastYear, rep.Period)
	assert.Equal(t, "2023-08-01", rep.From.String())
	assert.Equal(t, "2024-07-31", rep.To.String())
	assert.True(t, rep.Totals.Income.Equal(dec("35100")))
	assert.True(t, rep.Totals.Expenses.Equal(dec("13487.5")))
	assert.True(t, rep.Totals.Net.Equal(dec("21612.5")))

	require.Len(t, rep.Months, 12)
	assert.Equal(t, 2023, rep.Months[0].Year)
	assert.Equal(t, 8, rep.Months[0].Month)
	july := rep.Months[11]
	assert.Equal(t, 7, july.Month)
	assert.True(t, july.Income.Equal(dec("35100")))
	assert.True(t, july.Expense.Equal(dec("13487.5")))

	names := make([]string, 0, len(rep.Categories))
	for _, c := range rep.Categories {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Dining", "Groceries", "Paycheck", "Social", "Utilities"}, names)
	assert.True(t, rep.Categories[2].Net.Equal(dec("35100")))
	assert.True(t, rep.Categories[0].Net.Equal(dec("-675")))
}

func TestReportsThisYearAndExplicitYear(t *testing.T) {
	r := NewReports(memory.NewBook(memory.SeedTransactions()), time.Minute)
	ctx := context.Background()

	rep, err := r.Year(ctx, PeriodThisYear, core.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", rep.From.String())
	assert.True(t, rep.Months[6].Income.Equal(dec("35100")))

	rep, err = r.Year(ctx, "2023", core.TransactionFilter{})
	require.NoError(t, err)
	assert.True(t, rep.Totals.Net.IsZero())
	assert.Empty(t, rep.Categories)
	assert.Empty(t, rep.Shares)
}

func TestReportsInvalidPeriod(t *testing.T) {
	r := NewReports(memory.NewBook(memory.SeedTransactions()), time.Minute)
	for _, p := range []string{"abc", "24", "last-month", "0999"} {
		_, err := r.Year(context.Background(), p, core.TransactionFilter{})
		assert.ErrorIs(t, err, ErrInvalidPeriod, p)
	}
}

func TestReportsFilter(t *testing.T) {
	r := NewReports(memory.NewBook(memory.SeedTransactions()), time.Minute)
	rep, err := r.Year(context.Background(), PeriodLastYear, core.TransactionFilter{Account: "Checking Account"})
	require.NoError(t, err)
	assert.True(t, rep.Totals.Income.Equal(dec("35100")))
	assert.True(t, rep.Totals.Expenses.Equal(dec("1687.5")))
}

func TestExpenseShares(t *testing.T) {
	shares := ExpenseShares(memory.SeedTransactions(), 3)
	require.Len(t, shares, 4)
	assert.Equal(t, "Social", shares[0].Name)
	assert.Equal(t, 75, shares[0].Percent)
	assert.Equal(t, "Groceries", shares[1].Name)
	assert.Equal(t, "Utilities", shares[2].Name)
	assert.Equal(t, OtherShare, shares[3].Name)
	assert.True(t, shares[3].Value.Equal(dec("675")))

	total := 0
	for _, s := range shares {
		total += s.Percent
	}
	assert.Equal(t, 100, total)

	assert.Len(t, ExpenseShares(memory.SeedTransactions(), 10), 4, "no Other bucket when everything fits")
}

func TestReportsMonth(t *testing.T) {
	r := NewReports(memory.NewBook(memory.SeedTransactions()), time.Minute)
	ctx := context.Background()

	sum, err := r.Month(ctx, 0, 0, core.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2024, sum.Year)
	assert.Equal(t, 7, sum.Month)
	assert.Len(t, sum.Transactions, 5)

	sum, err = r.Month(ctx, 2024, 6, core.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, sum.Transactions)

	_, err = r.Month(ctx, 2024, 13, core.TransactionFilter{})
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestReportsCached(t *testing.T) {
	src := &countingLister{txs: memory.SeedTransactions()}
	r := NewReports(src, time.Minute)
	ctx := context.Background()

	_, err := r.Year(ctx, PeriodLastYear, core.TransactionFilter{})
	require.NoError(t, err)
	_, err = r.Year(ctx, "", core.TransactionFilter{Category: core.MatchAll})
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.calls.Load())

	r.Invalidate()
	_, err = r.Year(ctx, PeriodLastYear, core.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())
	assert.Len(t, r.Caches(), 2)
}

func TestAnchorEmptyBook(t *testing.T) {
	now := time.Date(2025, 3, 4, 5, 0, 0, 0, time.UTC)
	assert.Equal(t, now, Anchor(nil, now))
}

func TestReportsCacheSeparatesSelectorsWithSeparator(t *testing.T) {
	day := core.NewDate(2024, 3, 5)
	src := &countingLister{txs: []core.Transaction{
		{ID: "1", Date: day, Category: "a|b", PaymentMethod: "c", Amount: dec("-10")},
		{ID: "2", Date: day, Category: "a", PaymentMethod: "b|c", Amount: dec("-99")},
	}}
	r := NewReports(src, time.Minute)
	ctx := context.Background()

	first, err := r.Year(ctx, "2024", core.TransactionFilter{Category: "a|b", PaymentMethod: "c"})
	require.NoError(t, err)
	second, err := r.Year(ctx, "2024", core.TransactionFilter{Category: "a", PaymentMethod: "b|c"})
	require.NoError(t, err)
	assert.True(t, first.Totals.Expenses.Equal(dec("10")), first.Totals.Expenses.String())
	assert.True(t, second.Totals.Expenses.Equal(dec("99")), second.Totals.Expenses.String())

	m1, err := r.Month(ctx, 2024, 3, core.TransactionFilter{Category: "a|b", PaymentMethod: "c"})
	require.NoError(t, err)
	m2, err := r.Month(ctx, 2024, 3, core.TransactionFilter{Category: "a", PaymentMethod: "b|c"})
	require.NoError(t, err)
	require.Len(t, m1.Transactions, 1)
	require.Len(t, m2.Transactions, 1)
	assert.Equal(t, "2", m2.Transactions[0].ID)
}
