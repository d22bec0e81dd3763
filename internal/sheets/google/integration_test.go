//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"finboard/internal/core"
)

// Integration tests require a real spreadsheet and service account.
// Run with: go test -tags=integration ./internal/sheets/google
func TestIntegration_ReadAndRecord(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	spreadsheetID := os.Getenv("GOOGLE_SPREADSHEET_ID")
	if spreadsheetID == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c, err := New(ctx, Options{
		SpreadsheetID:     spreadsheetID,
		TransactionsSheet: os.Getenv("GOOGLE_TRANSACTIONS_SHEET"),
		ChangesSheet:      os.Getenv("GOOGLE_CHANGES_SHEET"),
	})
	require.NoError(t, err)

	txs, err := c.ListTransactions(ctx)
	require.NoError(t, err)
	t.Logf("read %d transactions", len(txs))

	err = c.RecordChange(ctx, core.ChangeEvent{
		Kind: core.KindCategory,
		Op:   core.OpCreated,
		ID:   "integration-" + time.Now().Format("20060102150405"),
		Name: "Integration test",
		At:   time.Now(),
	})
	require.NoError(t, err)
}
