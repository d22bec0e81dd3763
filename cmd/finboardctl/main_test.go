package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard/internal/core"
	"finboard/internal/ledger/memory"
	"finboard/internal/storage"
)

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func useMemory(t *testing.T) {
	t.Helper()
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("AMQP_URL", "")
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")
}

func useSQLite(t *testing.T) {
	t.Helper()
	useMemory(t)
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("SQLITE_DB_PATH", filepath.Join(t.TempDir(), "finboard.db"))
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want core.Kind
	}{
		{"account", core.KindAccount},
		{"Accounts", core.KindAccount},
		{"categories", core.KindCategory},
		{"payment-method", core.KindPaymentMethod},
		{"payment_methods", core.KindPaymentMethod},
	}
	for _, tt := range tests {
		got, err := parseKind(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := parseKind("budgets")
	assert.Error(t, err)
}

func TestListCategories(t *testing.T) {
	useMemory(t)

	out, err := run(t, listCmd(), "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "Dining")
	assert.Contains(t, out, "Investment Income")
	assert.Contains(t, out, "custom")
}

func TestAddRejectsBlankName(t *testing.T) {
	useMemory(t)

	_, err := run(t, addCmd(), "category", "--name", "   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blank")
}

func TestAddRejectsUnknownType(t *testing.T) {
	useMemory(t)

	_, err := run(t, addCmd(), "account", "--name", "Safe", "--type", "vault")
	require.Error(t, err)
}

func TestSQLiteRoundTrip(t *testing.T) {
	useSQLite(t)

	out, err := run(t, addCmd(), "category", "--name", "Books", "--type", "expense")
	require.NoError(t, err)
	assert.Contains(t, out, "Added category")

	out, err = run(t, listCmd(), "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "Books")

	out, err = run(t, editCmd(), "account", "wallet", "--name", "Pocket")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated account wallet")

	out, err = run(t, listCmd(), "accounts")
	require.NoError(t, err)
	assert.Contains(t, out, "Pocket")
	assert.Contains(t, out, "¥150.00")

	_, err = run(t, editCmd(), "account", "missing", "--name", "x")
	require.Error(t, err)

	out, err = run(t, deleteCmd(), "payment-method", "cash")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted")

	out, err = run(t, deleteCmd(), "payment-method", "cash")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing deleted")

	// every applied mutation lands in the change log
	out, err = run(t, changesListCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "Books")
	assert.Contains(t, out, "Pocket")
	assert.Contains(t, out, "deleted")
}

func TestTransactionsAndReport(t *testing.T) {
	useMemory(t)

	out, err := run(t, transactionsCmd(), "--category", "Dining")
	require.NoError(t, err)
	assert.Contains(t, out, "Restaurant dinner")
	assert.NotContains(t, out, "Monthly salary")

	out, err = run(t, reportCmd(), "--period", "2024")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-01-01")
	assert.Contains(t, out, "Paycheck")

	_, err = run(t, reportCmd(), "--period", "soon")
	require.Error(t, err)
}

func TestImportTransactionsIntoSQLite(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "finboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	sheet := memory.NewBook([]core.Transaction{
		{ID: "row-2", Date: core.NewDate(2024, 8, 3), Description: "Train ticket", Category: "Transportation",
			PaymentMethod: "Cash", Account: "Wallet", Amount: decimal.RequireFromString("-45")},
		{ID: "1", Date: core.NewDate(2024, 7, 19), Description: "duplicate of a stored row", Amount: decimal.NewFromInt(-1)},
	})

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	require.NoError(t, importTransactions(cmd, sheet, repo))
	assert.Contains(t, out.String(), "Imported 1 of 2 transactions")

	txs, err := repo.ListTransactions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Train ticket", txs[0].Description)

	bad := memory.NewBook([]core.Transaction{{ID: "x", Description: "undated"}})
	err = importTransactions(cmd, bad, repo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing written")
}

func TestImportRequiresSpreadsheet(t *testing.T) {
	useSQLite(t)
	_, err := run(t, rootCmd, "import")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_SPREADSHEET_ID")
}
