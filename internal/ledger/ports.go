package ledger

import (
	"context"

	"finboard/internal/core"
)

// Ports for outbound adapters.
type (
	// Repository is an ordered collection of catalog records keyed by id.
	// Replace and Remove report whether a record matched; a missing id is not an error.
	Repository[T core.Record[T]] interface {
		List(ctx context.Context) ([]T, error)
		Get(ctx context.Context, id string) (T, bool, error)
		Insert(ctx context.Context, rec T) error
		Replace(ctx context.Context, rec T) (bool, error)
		Remove(ctx context.Context, id string) (bool, error)
	}

	// TransactionLister returns the read-only transaction book, newest first.
	TransactionLister interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	// ChangePublisher announces applied catalog mutations (e.g. to a message broker).
	ChangePublisher interface {
		PublishChange(ctx context.Context, ev core.ChangeEvent) error
	}

	// ChangeRecorder persists change events to an audit log.
	ChangeRecorder interface {
		RecordChange(ctx context.Context, ev core.ChangeEvent) error
	}
)

// Catalogs groups the three catalog repositories a backend provides.
type Catalogs struct {
	Accounts       Repository[core.Account]
	Categories     Repository[core.Category]
	PaymentMethods Repository[core.PaymentMethod]
}
