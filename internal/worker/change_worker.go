// Package worker consumes catalog change events from the broker.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finboard/internal/amqp"
	"finboard/internal/core"
	"finboard/internal/ledger"
	"finboard/internal/storage"
)

// ErrMalformedChange marks a message that can never be recorded.
var ErrMalformedChange = errors.New("malformed change message")

// StatsReader exposes change log counters.
type StatsReader interface {
	ChangeStats(ctx context.Context) (storage.ChangeStats, error)
}

// ChangeWorker records broker messages into the local change log, from which
// the relay forwards them to the spreadsheet.
type ChangeWorker struct {
	recorder ledger.ChangeRecorder
	stats    StatsReader
}

func NewChangeWorker(recorder ledger.ChangeRecorder, stats StatsReader) *ChangeWorker {
	return &ChangeWorker{recorder: recorder, stats: stats}
}

// HandleChange processes a single change message from AMQP. Malformed
// messages are logged and acknowledged since redelivery cannot fix them.
func (w *ChangeWorker) HandleChange(ctx context.Context, msg *amqp.ChangeMessage) error {
	if err := validate(msg); err != nil {
		slog.WarnContext(ctx, "Dropping change message", "error", err)
		return nil
	}

	slog.InfoContext(ctx, "Processing change message",
		"message_id", msg.MessageID,
		"kind", msg.Kind,
		"op", msg.Op,
		"record_id", msg.RecordID)

	if err := w.recorder.RecordChange(ctx, msg.Event()); err != nil {
		return fmt.Errorf("record change: %w", err)
	}
	return nil
}

// StartupCheck logs the outbox backlog so a restart after downtime is visible.
func (w *ChangeWorker) StartupCheck(ctx context.Context) error {
	if w.stats == nil {
		return nil
	}
	stats, err := w.stats.ChangeStats(ctx)
	if err != nil {
		return fmt.Errorf("read change stats: %w", err)
	}
	if stats.Pending == 0 && stats.Failed == 0 {
		slog.InfoContext(ctx, "No pending changes found on startup")
		return nil
	}
	slog.InfoContext(ctx, "Found unsynced changes on startup",
		"pending", stats.Pending,
		"failed", stats.Failed)
	return nil
}

func validate(msg *amqp.ChangeMessage) error {
	if msg == nil {
		return fmt.Errorf("%w: nil message", ErrMalformedChange)
	}
	switch core.Kind(msg.Kind) {
	case core.KindAccount, core.KindCategory, core.KindPaymentMethod:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrMalformedChange, msg.Kind)
	}
	switch core.ChangeOp(msg.Op) {
	case core.OpCreated, core.OpUpdated, core.OpDeleted:
	default:
		return fmt.Errorf("%w: unknown op %q", ErrMalformedChange, msg.Op)
	}
	if msg.RecordID == "" {
		return fmt.Errorf("%w: missing record id", ErrMalformedChange)
	}
	return nil
}
