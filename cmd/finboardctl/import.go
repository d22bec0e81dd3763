package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"finboard/internal/core"
	"finboard/internal/ledger"
	gsheet "finboard/internal/sheets/google"
	"finboard/internal/storage"
)

type transactionImporter interface {
	ImportTransactions(ctx context.Context, txs []core.Transaction) (int, error)
}

// importCmd copies the spreadsheet's transactions into the SQLite book.
func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Copy transactions from the Google spreadsheet into SQLite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.SheetsEnabled() {
				return errors.New("GOOGLE_SPREADSHEET_ID is not set")
			}
			src, err := gsheet.New(cmd.Context(), gsheet.Options{
				SpreadsheetID:     cfg.GoogleSpreadsheetID,
				TransactionsSheet: cfg.GoogleTransactionsSheet,
				ChangesSheet:      cfg.GoogleChangesSheet,
			})
			if err != nil {
				return fmt.Errorf("failed to open spreadsheet: %w", err)
			}
			repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", cfg.SQLiteDBPath, err)
			}
			defer repo.Close()
			return importTransactions(cmd, src, repo)
		},
	}
}

func importTransactions(cmd *cobra.Command, src ledger.TransactionLister, dst transactionImporter) error {
	txs, err := src.ListTransactions(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read transactions: %w", err)
	}
	n, err := dst.ImportTransactions(cmd.Context(), txs)
	if err != nil {
		return fmt.Errorf("import aborted, nothing written: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Imported %d of %d transactions", n, len(txs))))
	return nil
}
