package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finboard/internal/amqp"
	"finboard/internal/core"
	"finboard/internal/ledger"
	"finboard/internal/ledger/memory"
	gsheet "finboard/internal/sheets/google"
	"finboard/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

// SQLite keeps everything in one database. Without a broker the change_log
// table acts as the outbox the worker relays from.
func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	b := &Backend{
		Type:         SQLiteBackend,
		Catalogs:     repo.Catalogs(),
		Transactions: repo,
		Publisher:    repo,
		Ping:         repo.Ping,
	}
	closers := []func() error{repo.Close}

	if client := f.dialAMQP(config); client != nil {
		b.Publisher = client
		closers = append(closers, client.Close)
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", config.AMQPURL != "")

	return &BackendResult{Backend: b, Cleanup: closeAll(closers)}, nil
}

// Sheets reads transactions from the spreadsheet. Catalogs live in memory and
// their changes are appended to the changes sheet unless a broker is set.
func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:     config.GoogleSpreadsheetID,
		TransactionsSheet: config.GoogleTransactionsSheet,
		ChangesSheet:      config.GoogleChangesSheet,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	store := memory.NewSeeded()
	b := &Backend{
		Type:         SheetsBackend,
		Catalogs:     store.Catalogs(),
		Transactions: cli,
		Publisher:    recorderPublisher{cli},
	}
	var closers []func() error
	if client := f.dialAMQP(config); client != nil {
		b.Publisher = client
		closers = append(closers, client.Close)
	}

	f.logger.Info("Initialized Google Sheets backend", "transactions_sheet", config.GoogleTransactionsSheet)
	return &BackendResult{Backend: b, Cleanup: closeAll(closers)}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	store := memory.NewSeeded()
	b := &Backend{
		Type:         MemoryBackend,
		Catalogs:     store.Catalogs(),
		Transactions: store.Transactions,
	}
	var closers []func() error
	if client := f.dialAMQP(config); client != nil {
		b.Publisher = client
		closers = append(closers, client.Close)
	}

	f.logger.Info("Initialized memory backend")
	return &BackendResult{Backend: b, Cleanup: closeAll(closers)}, nil
}

// dialAMQP returns nil when AMQP is not configured or unreachable; the app
// keeps working without change publishing.
func (f *DefaultFactory) dialAMQP(config Config) *amqp.Client {
	if config.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without it", "error", err)
		return nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}

// recorderPublisher publishes by recording straight to a change log.
type recorderPublisher struct {
	ledger.ChangeRecorder
}

func (p recorderPublisher) PublishChange(ctx context.Context, ev core.ChangeEvent) error {
	return p.RecordChange(ctx, ev)
}

func closeAll(closers []func() error) CleanupFunc {
	if len(closers) == 0 {
		return nil
	}
	return func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}
