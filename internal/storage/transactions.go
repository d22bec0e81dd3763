package storage

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"finboard/internal/core"
)

const listTransactions = `SELECT id, date, description, category, payment_method, account, amount
FROM transactions
ORDER BY date DESC, seq ASC`

const insertTransaction = `INSERT OR IGNORE INTO transactions (id, date, description, category, payment_method, account, amount)
VALUES (?, ?, ?, ?, ?, ?, ?)`

// ListTransactions implements ledger.TransactionLister, newest first.
func (q *Queries) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t            core.Transaction
			date, amount string
		)
		if err := rows.Scan(&t.ID, &date, &t.Description, &t.Category, &t.PaymentMethod, &t.Account, &amount); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if t.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("transaction %s date %q: %w", t.ID, date, err)
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("transaction %s amount %q: %w", t.ID, amount, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ImportTransaction adds a row to the book and reports whether it was new.
// Rows whose id is already stored are left untouched.
func (q *Queries) ImportTransaction(ctx context.Context, t core.Transaction) (bool, error) {
	if t.ID == "" {
		return false, fmt.Errorf("import transaction %q: missing id", t.Description)
	}
	if t.Date.IsZero() {
		return false, fmt.Errorf("import transaction %s: %w", t.ID, core.ErrInvalidDate)
	}
	res, err := q.db.ExecContext(ctx, insertTransaction,
		t.ID, t.Date.String(), t.Description, t.Category, t.PaymentMethod, t.Account, t.Amount.String())
	if err != nil {
		return false, fmt.Errorf("insert transaction %s: %w", t.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
