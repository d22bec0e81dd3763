package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard/internal/core"
	"finboard/internal/storage"
)

type flakyRecorder struct {
	fail   int
	events []core.ChangeEvent
}

func (f *flakyRecorder) RecordChange(_ context.Context, ev core.ChangeEvent) error {
	if f.fail > 0 {
		f.fail--
		return errors.New("sheets unavailable")
	}
	f.events = append(f.events, ev)
	return nil
}

func newOutbox(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "relay.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestDefaultChangeRelayConfig(t *testing.T) {
	cfg := DefaultChangeRelayConfig()
	assert.Equal(t, 10*time.Second, cfg.PollInterval)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
	assert.Equal(t, 24*time.Hour, cfg.CleanupAge)
}

func TestChangeRelayForwardsPending(t *testing.T) {
	ctx := context.Background()
	outbox := newOutbox(t)
	target := &flakyRecorder{}
	relay := NewChangeRelay(outbox, target, DefaultChangeRelayConfig())

	at := time.Date(2024, 7, 20, 9, 0, 0, 0, time.UTC)
	require.NoError(t, outbox.RecordChange(ctx, core.ChangeEvent{Kind: core.KindAccount, Op: core.OpCreated, ID: "1", Name: "A", At: at}))
	require.NoError(t, outbox.RecordChange(ctx, core.ChangeEvent{Kind: core.KindAccount, Op: core.OpDeleted, ID: "1", Name: "A", At: at}))

	assert.Equal(t, 2, relay.ProcessBatch(ctx))
	assert.Equal(t, 0, relay.ProcessBatch(ctx))
	require.Len(t, target.events, 2)
	assert.Equal(t, core.OpDeleted, target.events[1].Op)

	stats, err := relay.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Synced)
}

func TestChangeRelayRetriesThenFails(t *testing.T) {
	ctx := context.Background()
	outbox := newOutbox(t)
	target := &flakyRecorder{fail: 3}
	relay := NewChangeRelay(outbox, target, DefaultChangeRelayConfig())

	require.NoError(t, outbox.RecordChange(ctx, core.ChangeEvent{Kind: core.KindCategory, Op: core.OpUpdated, ID: "rent", Name: "Rent", At: time.Now()}))

	for i := 0; i < 3; i++ {
		assert.Equal(t, 0, relay.ProcessBatch(ctx))
	}
	stats, err := relay.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, storage.ChangeStats{Failed: 1}, stats)

	n, err := relay.RetryFailed(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, relay.ProcessBatch(ctx))
	assert.Len(t, target.events, 1)
}

func TestChangeRelayStartStop(t *testing.T) {
	cfg := DefaultChangeRelayConfig()
	cfg.PollInterval = 10 * time.Millisecond
	relay := NewChangeRelay(newOutbox(t), &flakyRecorder{}, cfg)
	ctx := context.Background()

	assert.False(t, relay.IsRunning())
	require.NoError(t, relay.Start(ctx))
	assert.Error(t, relay.Start(ctx), "second start")
	assert.True(t, relay.IsRunning())

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, relay.Stop(stopCtx))
	assert.False(t, relay.IsRunning())
	require.NoError(t, relay.Stop(stopCtx), "stop when not running")
}

type blockingRecorder struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingRecorder) RecordChange(ctx context.Context, _ core.ChangeEvent) error {
	select {
	case b.entered <- struct{}{}:
	default:
	}
	<-b.release
	return nil
}

func TestChangeRelayStopAfterTimeout(t *testing.T) {
	ctx := context.Background()
	outbox := newOutbox(t)
	require.NoError(t, outbox.RecordChange(ctx, core.ChangeEvent{
		Kind: core.KindCategory, Op: core.OpCreated, ID: "7", Name: "Pets", At: time.Now().UTC(),
	}))

	target := &blockingRecorder{entered: make(chan struct{}, 1), release: make(chan struct{})}
	relay := NewChangeRelay(outbox, target, DefaultChangeRelayConfig())
	require.NoError(t, relay.Start(ctx))
	<-target.entered

	for i := 0; i < 2; i++ {
		stopCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		err := relay.Stop(stopCtx)
		cancel()
		require.ErrorIs(t, err, context.DeadlineExceeded, "attempt %d", i+1)
		assert.True(t, relay.IsRunning())
	}

	close(target.release)
	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, relay.Stop(stopCtx))
	assert.False(t, relay.IsRunning())
}
