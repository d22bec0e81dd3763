package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"finboard/internal/core"
)

// Change log row states.
const (
	ChangePending = "pending"
	ChangeSynced  = "synced"
	ChangeFailed  = "failed"
)

// ChangeRow is a change_log entry with its relay bookkeeping.
type ChangeRow struct {
	Seq       int64
	Event     core.ChangeEvent
	Status    string
	Attempts  int64
	LastError sql.NullString
}

// ChangeStats counts change_log rows by status.
type ChangeStats struct {
	Pending int64
	Synced  int64
	Failed  int64
}

const insertChange = `INSERT INTO change_log (kind, op, record_id, name, at) VALUES (?, ?, ?, ?, ?)`

const pendingChanges = `SELECT seq, kind, op, record_id, name, at, status, attempts, last_error
FROM change_log
WHERE status = 'pending'
ORDER BY seq
LIMIT ?`

const recentChanges = `SELECT seq, kind, op, record_id, name, at, status, attempts, last_error
FROM change_log
ORDER BY seq DESC
LIMIT ?`

// RecordChange implements ledger.ChangeRecorder.
func (q *Queries) RecordChange(ctx context.Context, ev core.ChangeEvent) error {
	_, err := q.db.ExecContext(ctx, insertChange,
		string(ev.Kind), string(ev.Op), ev.ID, ev.Name, ev.At.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert change: %w", err)
	}
	return nil
}

// PublishChange lets the change log act as a local outbox when no broker is configured.
func (q *Queries) PublishChange(ctx context.Context, ev core.ChangeEvent) error {
	return q.RecordChange(ctx, ev)
}

// PendingChanges returns up to limit unsynced rows, oldest first.
func (q *Queries) PendingChanges(ctx context.Context, limit int64) ([]ChangeRow, error) {
	return q.queryChanges(ctx, pendingChanges, limit)
}

// RecentChanges returns up to limit rows, newest first.
func (q *Queries) RecentChanges(ctx context.Context, limit int64) ([]ChangeRow, error) {
	return q.queryChanges(ctx, recentChanges, limit)
}

func (q *Queries) queryChanges(ctx context.Context, query string, limit int64) ([]ChangeRow, error) {
	rows, err := q.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query change log: %w", err)
	}
	defer rows.Close()

	var out []ChangeRow
	for rows.Next() {
		var (
			r            ChangeRow
			kind, op, at string
		)
		if err := rows.Scan(&r.Seq, &kind, &op, &r.Event.ID, &r.Event.Name, &at, &r.Status, &r.Attempts, &r.LastError); err != nil {
			return nil, fmt.Errorf("scan change: %w", err)
		}
		r.Event.Kind, r.Event.Op = core.Kind(kind), core.ChangeOp(op)
		if r.Event.At, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("change %d timestamp %q: %w", r.Seq, at, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (q *Queries) MarkChangeSynced(ctx context.Context, seq int64, at time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE change_log SET status = 'synced', attempts = attempts + 1, last_error = NULL, synced_at = ? WHERE seq = ?`,
		at.UTC().Format(time.RFC3339Nano), seq)
	if err != nil {
		return fmt.Errorf("mark change %d synced: %w", seq, err)
	}
	return nil
}

// MarkChangeAttempt records a failed attempt; the row stays pending.
func (q *Queries) MarkChangeAttempt(ctx context.Context, seq int64, errMsg string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE change_log SET attempts = attempts + 1, last_error = ? WHERE seq = ?`, errMsg, seq)
	if err != nil {
		return fmt.Errorf("mark change %d attempt: %w", seq, err)
	}
	return nil
}

func (q *Queries) MarkChangeFailed(ctx context.Context, seq int64, errMsg string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE change_log SET status = 'failed', attempts = attempts + 1, last_error = ? WHERE seq = ?`, errMsg, seq)
	if err != nil {
		return fmt.Errorf("mark change %d failed: %w", seq, err)
	}
	return nil
}

// RetryFailedChanges moves failed rows back to pending with a fresh attempt budget.
func (q *Queries) RetryFailedChanges(ctx context.Context) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE change_log SET status = 'pending', attempts = 0 WHERE status = 'failed'`)
	if err != nil {
		return 0, fmt.Errorf("retry failed changes: %w", err)
	}
	return res.RowsAffected()
}

// PurgeSyncedChanges deletes synced rows older than cutoff.
func (q *Queries) PurgeSyncedChanges(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM change_log WHERE status = 'synced' AND synced_at < ?`, cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("purge synced changes: %w", err)
	}
	return res.RowsAffected()
}

func (q *Queries) ChangeStats(ctx context.Context) (ChangeStats, error) {
	var s ChangeStats
	err := q.db.QueryRowContext(ctx, `SELECT
    COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN status = 'synced' THEN 1 ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0)
FROM change_log`).Scan(&s.Pending, &s.Synced, &s.Failed)
	if err != nil {
		return s, fmt.Errorf("change stats: %w", err)
	}
	return s, nil
}
