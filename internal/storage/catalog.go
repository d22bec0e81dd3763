package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"finboard/internal/core"
	"finboard/internal/ledger"
)

// tableSpec maps one catalog type onto its table. The first column is the id.
type tableSpec[T core.Record[T]] struct {
	name    string
	columns []string
	scan    func(rowScanner) (T, error)
	values  func(T) []any
}

var accountsTable = tableSpec[core.Account]{
	name:    "accounts",
	columns: []string{"id", "name", "type", "balance", "is_default"},
	scan: func(s rowScanner) (core.Account, error) {
		var (
			a         core.Account
			typ, bal  string
			isDefault int64
		)
		if err := s.Scan(&a.ID, &a.Name, &typ, &bal, &isDefault); err != nil {
			return a, err
		}
		d, err := decimal.NewFromString(bal)
		if err != nil {
			return a, fmt.Errorf("account %s balance %q: %w", a.ID, bal, err)
		}
		a.Type, a.Balance, a.IsDefault = core.AccountType(typ), d, isDefault != 0
		return a, nil
	},
	values: func(a core.Account) []any {
		return []any{a.ID, a.Name, a.Type.String(), a.Balance.String(), boolToInt(a.IsDefault)}
	},
}

var categoriesTable = tableSpec[core.Category]{
	name:    "categories",
	columns: []string{"id", "name", "type", "is_default"},
	scan: func(s rowScanner) (core.Category, error) {
		var (
			c         core.Category
			typ       string
			isDefault int64
		)
		if err := s.Scan(&c.ID, &c.Name, &typ, &isDefault); err != nil {
			return c, err
		}
		c.Type, c.IsDefault = core.CategoryType(typ), isDefault != 0
		return c, nil
	},
	values: func(c core.Category) []any {
		return []any{c.ID, c.Name, c.Type.String(), boolToInt(c.IsDefault)}
	},
}

var paymentMethodsTable = tableSpec[core.PaymentMethod]{
	name:    "payment_methods",
	columns: []string{"id", "name", "icon", "is_default"},
	scan: func(s rowScanner) (core.PaymentMethod, error) {
		var (
			p         core.PaymentMethod
			icon      string
			isDefault int64
		)
		if err := s.Scan(&p.ID, &p.Name, &icon, &isDefault); err != nil {
			return p, err
		}
		p.Icon, p.IsDefault = core.PaymentIcon(icon), isDefault != 0
		return p, nil
	},
	values: func(p core.PaymentMethod) []any {
		return []any{p.ID, p.Name, p.Icon.String(), boolToInt(p.IsDefault)}
	},
}

// Table is a SQLite-backed ledger.Repository. Rows keep insertion order through
// the seq column.
type Table[T core.Record[T]] struct {
	q    *Queries
	spec tableSpec[T]

	selectSQL string
	getSQL    string
	insertSQL string
	updateSQL string
	deleteSQL string
}

var (
	_ ledger.Repository[core.Account]       = (*Table[core.Account])(nil)
	_ ledger.Repository[core.Category]      = (*Table[core.Category])(nil)
	_ ledger.Repository[core.PaymentMethod] = (*Table[core.PaymentMethod])(nil)
)

func newTable[T core.Record[T]](q *Queries, spec tableSpec[T]) *Table[T] {
	cols := strings.Join(spec.columns, ", ")
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(spec.columns)), ", ")
	sets := make([]string, 0, len(spec.columns)-1)
	for _, c := range spec.columns[1:] {
		sets = append(sets, c+" = ?")
	}
	return &Table[T]{
		q:         q,
		spec:      spec,
		selectSQL: fmt.Sprintf("SELECT %s FROM %s ORDER BY seq", cols, spec.name),
		getSQL:    fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", cols, spec.name),
		insertSQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", spec.name, cols, placeholders),
		updateSQL: fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", spec.name, strings.Join(sets, ", ")),
		deleteSQL: fmt.Sprintf("DELETE FROM %s WHERE id = ?", spec.name),
	}
}

func (t *Table[T]) List(ctx context.Context) ([]T, error) {
	rows, err := t.q.db.QueryContext(ctx, t.selectSQL)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", t.spec.name, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		rec, err := t.spec.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.spec.name, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", t.spec.name, err)
	}
	return out, nil
}

func (t *Table[T]) Get(ctx context.Context, id string) (T, bool, error) {
	rec, err := t.spec.scan(t.q.db.QueryRowContext(ctx, t.getSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		var zero T
		return zero, false, nil
	}
	if err != nil {
		var zero T
		return zero, false, fmt.Errorf("get %s %s: %w", t.spec.name, id, err)
	}
	return rec, true, nil
}

func (t *Table[T]) Insert(ctx context.Context, rec T) error {
	if _, err := t.q.db.ExecContext(ctx, t.insertSQL, t.spec.values(rec)...); err != nil {
		return fmt.Errorf("insert %s: %w", t.spec.name, err)
	}
	return nil
}

func (t *Table[T]) Replace(ctx context.Context, rec T) (bool, error) {
	vals := t.spec.values(rec)
	args := append(vals[1:len(vals):len(vals)], vals[0])
	res, err := t.q.db.ExecContext(ctx, t.updateSQL, args...)
	if err != nil {
		return false, fmt.Errorf("update %s %s: %w", t.spec.name, rec.Key(), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (t *Table[T]) Remove(ctx context.Context, id string) (bool, error) {
	res, err := t.q.db.ExecContext(ctx, t.deleteSQL, id)
	if err != nil {
		return false, fmt.Errorf("delete %s %s: %w", t.spec.name, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
