package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard/internal/core"
)

func openTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "finboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSeededPresets(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	accounts, err := repo.Accounts.List(ctx)
	require.NoError(t, err)
	d, c := core.Partition(accounts)
	assert.Len(t, d, 4)
	assert.Len(t, c, 3)
	assert.Equal(t, "primary-checking", accounts[0].ID)
	assert.True(t, accounts[0].Balance.Equal(decimal.RequireFromString("5234.56")))
	assert.Equal(t, core.AccountChecking, accounts[0].Type)

	cats, err := repo.Categories.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 10)

	pms, err := repo.PaymentMethods.List(ctx)
	require.NoError(t, err)
	require.Len(t, pms, 3)
	assert.Equal(t, core.IconBanknote, pms[0].Icon)

	txs, err := repo.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 5)
	assert.Equal(t, "2024-07-19", txs[0].Date.String())
	assert.Equal(t, "4", txs[3].ID, "same-day rows keep insertion order")
	assert.True(t, txs[1].Amount.Equal(decimal.RequireFromString("-1012.5")))
}

func TestMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finboard.db")
	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	repo, err = NewSQLiteRepository(path)
	require.NoError(t, err)
	defer repo.Close()
	n, err := repo.Categories.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, n, 10)
}

func TestTableCRUD(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	tbl := repo.Categories

	require.NoError(t, tbl.Insert(ctx, core.Category{ID: "1721466000000", Name: "Pets", Type: core.CategoryExpense}))
	list, err := tbl.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 11)
	assert.Equal(t, "Pets", list[10].Name, "appended last")

	ok, err := tbl.Replace(ctx, core.Category{ID: "rent", Name: "Housing", Type: core.CategoryExpense, IsDefault: true})
	require.NoError(t, err)
	assert.True(t, ok)
	got, found, err := tbl.Get(ctx, "rent")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Housing", got.Name)
	list, _ = tbl.List(ctx)
	assert.Equal(t, "rent", list[4].ID, "replace keeps position")

	ok, err = tbl.Replace(ctx, core.Category{ID: "missing", Name: "x"})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = tbl.Remove(ctx, "utilities")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = tbl.Remove(ctx, "utilities")
	require.NoError(t, err)
	assert.False(t, ok)

	_, found, err = tbl.Get(ctx, "utilities")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAccountBalanceRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	a := core.Account{ID: "x", Name: "Broker", Type: core.AccountInvestment, Balance: decimal.RequireFromString("-0.10")}
	require.NoError(t, repo.Accounts.Insert(ctx, a))
	got, found, err := repo.Accounts.Get(ctx, "x")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, got.Balance.Equal(a.Balance))
	assert.False(t, got.IsDefault)
}

func TestChangeLogLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	at := time.Date(2024, 7, 20, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.PublishChange(ctx, core.ChangeEvent{Kind: core.KindCategory, Op: core.OpCreated, ID: "1", Name: "Pets", At: at}))
	require.NoError(t, repo.RecordChange(ctx, core.ChangeEvent{Kind: core.KindAccount, Op: core.OpDeleted, ID: "wallet", Name: "Wallet", At: at}))

	pending, err := repo.PendingChanges(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, core.KindCategory, pending[0].Event.Kind)
	assert.Equal(t, at, pending[0].Event.At)

	require.NoError(t, repo.MarkChangeSynced(ctx, pending[0].Seq, at))
	require.NoError(t, repo.MarkChangeAttempt(ctx, pending[1].Seq, "timeout"))

	pending, err = repo.PendingChanges(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(1), pending[0].Attempts)
	assert.Equal(t, "timeout", pending[0].LastError.String)

	require.NoError(t, repo.MarkChangeFailed(ctx, pending[0].Seq, "gave up"))
	stats, err := repo.ChangeStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, ChangeStats{Pending: 0, Synced: 1, Failed: 1}, stats)

	n, err := repo.RetryFailedChanges(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	purged, err := repo.PurgeSyncedChanges(ctx, at.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	recent, err := repo.RecentChanges(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, ChangePending, recent[0].Status)
}

func TestImportTransactions(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	batch := []core.Transaction{
		{ID: "5", Date: core.NewDate(2024, 7, 16), Description: "Renamed", Amount: decimal.NewFromInt(-1)},
		{ID: "s-1", Date: core.NewDate(2024, 8, 2), Description: "Bookshop", Category: "Shopping",
			PaymentMethod: "Cash", Account: "Wallet", Amount: decimal.RequireFromString("-12.40")},
	}
	n, err := repo.ImportTransactions(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "existing ids are skipped")

	txs, err := repo.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 6)
	assert.Equal(t, "s-1", txs[0].ID)
	assert.True(t, txs[0].Amount.Equal(decimal.RequireFromString("-12.4")))
	for _, tx := range txs {
		if tx.ID == "5" {
			assert.Equal(t, "Social event", tx.Description, "existing row untouched")
			assert.True(t, tx.Amount.Equal(decimal.NewFromInt(-10125)))
		}
	}
}

func TestImportTransactionsRollsBackOnInvalidRow(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	_, err := repo.ImportTransactions(ctx, []core.Transaction{
		{ID: "new-1", Date: core.NewDate(2024, 8, 1), Description: "ok", Amount: decimal.NewFromInt(-5)},
		{ID: "new-2", Description: "no date", Amount: decimal.NewFromInt(-5)},
	})
	require.ErrorIs(t, err, core.ErrInvalidDate)

	txs, err := repo.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txs, 5, "first row must not survive the failed batch")
}
