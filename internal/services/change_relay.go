package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"finboard/internal/ledger"
	"finboard/internal/storage"
)

// ChangeOutbox is the SQLite change_log seen from the relay.
type ChangeOutbox interface {
	PendingChanges(ctx context.Context, limit int64) ([]storage.ChangeRow, error)
	MarkChangeSynced(ctx context.Context, seq int64, at time.Time) error
	MarkChangeAttempt(ctx context.Context, seq int64, errMsg string) error
	MarkChangeFailed(ctx context.Context, seq int64, errMsg string) error
	PurgeSyncedChanges(ctx context.Context, cutoff time.Time) (int64, error)
	RetryFailedChanges(ctx context.Context) (int64, error)
	ChangeStats(ctx context.Context) (storage.ChangeStats, error)
}

// ChangeRelayConfig holds configuration for the change relay
type ChangeRelayConfig struct {
	// PollInterval is how often to check for pending rows (default: 10s)
	PollInterval time.Duration

	// BatchSize is the max number of rows forwarded per poll (default: 10)
	BatchSize int

	// MaxRetries is the number of attempts before a row is marked failed (default: 3)
	MaxRetries int

	// CleanupInterval is how often synced rows are purged (default: 1h)
	CleanupInterval time.Duration

	// CleanupAge is how old synced rows must be before purging (default: 24h)
	CleanupAge time.Duration
}

// DefaultChangeRelayConfig returns sensible defaults
func DefaultChangeRelayConfig() ChangeRelayConfig {
	return ChangeRelayConfig{
		PollInterval:    10 * time.Second,
		BatchSize:       10,
		MaxRetries:      3,
		CleanupInterval: time.Hour,
		CleanupAge:      24 * time.Hour,
	}
}

// ChangeRelay forwards pending change_log rows to a remote recorder such as
// the Google Sheets change log, retrying failures up to MaxRetries.
type ChangeRelay struct {
	outbox ChangeOutbox
	target ledger.ChangeRecorder
	config ChangeRelayConfig
	now    func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewChangeRelay(outbox ChangeOutbox, target ledger.ChangeRecorder, config ChangeRelayConfig) *ChangeRelay {
	return &ChangeRelay{
		outbox: outbox,
		target: target,
		config: config,
		now:    time.Now,
	}
}

// Start begins the relay loop. Returns an error if already running.
func (r *ChangeRelay) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("change relay is already running")
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	stop, done := r.stopCh, r.doneCh
	r.mu.Unlock()

	go r.runLoop(ctx, stop, done)

	slog.InfoContext(ctx, "Change relay started",
		"poll_interval", r.config.PollInterval,
		"batch_size", r.config.BatchSize)
	return nil
}

// Stop signals the loop and waits for it to finish or ctx to expire.
func (r *ChangeRelay) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	// A timed-out Stop already closed the channel; later calls only wait.
	if r.stopCh != nil {
		close(r.stopCh)
		r.stopCh = nil
	}
	done := r.doneCh
	r.mu.Unlock()

	select {
	case <-done:
		slog.InfoContext(ctx, "Change relay stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Change relay stop timed out")
		return ctx.Err()
	}

	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
	return nil
}

func (r *ChangeRelay) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *ChangeRelay) runLoop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	pollTicker := time.NewTicker(r.config.PollInterval)
	defer pollTicker.Stop()

	cleanupTicker := time.NewTicker(r.config.CleanupInterval)
	defer cleanupTicker.Stop()

	r.ProcessBatch(ctx)

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-pollTicker.C:
			r.ProcessBatch(ctx)
		case <-cleanupTicker.C:
			r.cleanup(ctx)
		}
	}
}

// ProcessBatch forwards one batch and returns how many rows were synced.
func (r *ChangeRelay) ProcessBatch(ctx context.Context) int {
	rows, err := r.outbox.PendingChanges(ctx, int64(r.config.BatchSize))
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read pending changes", "error", err)
		return 0
	}
	if len(rows) == 0 {
		return 0
	}
	slog.DebugContext(ctx, "Relaying change batch", "count", len(rows))

	synced := 0
	for _, row := range rows {
		if ctx.Err() != nil {
			return synced
		}
		if err := r.target.RecordChange(ctx, row.Event); err != nil {
			r.handleFailure(ctx, row, err)
			continue
		}
		if err := r.outbox.MarkChangeSynced(ctx, row.Seq, r.now()); err != nil {
			slog.ErrorContext(ctx, "Failed to mark change synced", "seq", row.Seq, "error", err)
			continue
		}
		synced++
	}
	return synced
}

func (r *ChangeRelay) handleFailure(ctx context.Context, row storage.ChangeRow, cause error) {
	slog.WarnContext(ctx, "Change relay failed",
		"seq", row.Seq,
		"kind", row.Event.Kind,
		"attempt", row.Attempts+1,
		"error", cause)

	if row.Attempts+1 >= int64(r.config.MaxRetries) {
		if err := r.outbox.MarkChangeFailed(ctx, row.Seq, cause.Error()); err != nil {
			slog.ErrorContext(ctx, "Failed to mark change failed", "seq", row.Seq, "error", err)
		}
		slog.ErrorContext(ctx, "Change failed permanently after max retries",
			"seq", row.Seq, "attempts", row.Attempts+1)
		return
	}
	if err := r.outbox.MarkChangeAttempt(ctx, row.Seq, cause.Error()); err != nil {
		slog.ErrorContext(ctx, "Failed to record change attempt", "seq", row.Seq, "error", err)
	}
}

func (r *ChangeRelay) cleanup(ctx context.Context) {
	n, err := r.outbox.PurgeSyncedChanges(ctx, r.now().Add(-r.config.CleanupAge))
	if err != nil {
		slog.ErrorContext(ctx, "Failed to purge synced changes", "error", err)
		return
	}
	if n > 0 {
		slog.InfoContext(ctx, "Purged synced changes", "count", n)
	}
}

func (r *ChangeRelay) Stats(ctx context.Context) (storage.ChangeStats, error) {
	return r.outbox.ChangeStats(ctx)
}

// RetryFailed resets failed rows so the next batch picks them up again.
func (r *ChangeRelay) RetryFailed(ctx context.Context) (int64, error) {
	return r.outbox.RetryFailedChanges(ctx)
}
