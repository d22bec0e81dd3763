package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"finboard/internal/core"
	"finboard/internal/ledger"

	_ "modernc.org/sqlite"
)

// SQLiteRepository owns the database handle and exposes the catalog tables,
// the transaction book and the change log.
type SQLiteRepository struct {
	*Queries
	db *sql.DB

	Accounts       *Table[core.Account]
	Categories     *Table[core.Category]
	PaymentMethods *Table[core.PaymentMethod]
}

var (
	_ ledger.TransactionLister = (*SQLiteRepository)(nil)
	_ ledger.ChangeRecorder    = (*SQLiteRepository)(nil)
	_ ledger.ChangePublisher   = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// modernc sqlite serializes writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	q := New(db)
	return &SQLiteRepository{
		Queries:        q,
		db:             db,
		Accounts:       newTable(q, accountsTable),
		Categories:     newTable(q, categoriesTable),
		PaymentMethods: newTable(q, paymentMethodsTable),
	}, nil
}

// Catalogs exposes the tables through the ledger ports.
func (r *SQLiteRepository) Catalogs() ledger.Catalogs {
	return ledger.Catalogs{
		Accounts:       r.Accounts,
		Categories:     r.Categories,
		PaymentMethods: r.PaymentMethods,
	}
}

// ImportTransactions copies txs into the book inside one database
// transaction and returns how many were new. An invalid row rolls back the
// whole batch.
func (r *SQLiteRepository) ImportTransactions(ctx context.Context, txs []core.Transaction) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	q := r.Queries.WithTx(tx)
	imported := 0
	for _, t := range txs {
		added, err := q.ImportTransaction(ctx, t)
		if err != nil {
			return 0, err
		}
		if added {
			imported++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return imported, nil
}

// Ping is used by the readiness probe.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
