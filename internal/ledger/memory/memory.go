package memory

import (
	"context"
	"slices"
	"sync"

	"finboard/internal/core"
	"finboard/internal/ledger"
)

// Collection is a mutex-guarded, insertion-ordered list of records.
type Collection[T core.Record[T]] struct {
	mu    sync.Mutex
	items []T
}

var (
	_ ledger.Repository[core.Account]       = (*Collection[core.Account])(nil)
	_ ledger.Repository[core.Category]      = (*Collection[core.Category])(nil)
	_ ledger.Repository[core.PaymentMethod] = (*Collection[core.PaymentMethod])(nil)
)

func NewCollection[T core.Record[T]](seed ...T) *Collection[T] {
	return &Collection[T]{items: slices.Clone(seed)}
}

// List returns a copy of the records in insertion order.
func (c *Collection[T]) List(_ context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items), nil
}

func (c *Collection[T]) Get(_ context.Context, id string) (T, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(id); i >= 0 {
		return c.items[i], true, nil
	}
	var zero T
	return zero, false, nil
}

// Insert appends rec at the end.
func (c *Collection[T]) Insert(_ context.Context, rec T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, rec)
	return nil
}

// Replace overwrites the record with the same id, keeping its position.
func (c *Collection[T]) Replace(_ context.Context, rec T) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(rec.Key())
	if i < 0 {
		return false, nil
	}
	c.items[i] = rec
	return true, nil
}

func (c *Collection[T]) Remove(_ context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(id)
	if i < 0 {
		return false, nil
	}
	c.items = slices.Delete(c.items, i, i+1)
	return true, nil
}

// Len reports the current size.
func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Collection[T]) index(id string) int {
	return slices.IndexFunc(c.items, func(r T) bool { return r.Key() == id })
}

// Book is the read-only transaction source.
type Book struct {
	txs []core.Transaction
}

func NewBook(txs []core.Transaction) *Book {
	return &Book{txs: slices.Clone(txs)}
}

// ListTransactions returns a copy; the book itself never changes.
func (b *Book) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	return slices.Clone(b.txs), nil
}

// Store bundles the three catalogs and the transaction book.
type Store struct {
	Accounts       *Collection[core.Account]
	Categories     *Collection[core.Category]
	PaymentMethods *Collection[core.PaymentMethod]
	Transactions   *Book
}

// New returns an empty store.
func New() *Store {
	return &Store{
		Accounts:       NewCollection[core.Account](),
		Categories:     NewCollection[core.Category](),
		PaymentMethods: NewCollection[core.PaymentMethod](),
		Transactions:   NewBook(nil),
	}
}

// NewSeeded returns a store loaded with the preset catalogs and sample transactions.
func NewSeeded() *Store {
	return &Store{
		Accounts:       NewCollection(SeedAccounts()...),
		Categories:     NewCollection(SeedCategories()...),
		PaymentMethods: NewCollection(SeedPaymentMethods()...),
		Transactions:   NewBook(SeedTransactions()),
	}
}

// Catalogs exposes the collections through the ledger ports.
func (s *Store) Catalogs() ledger.Catalogs {
	return ledger.Catalogs{
		Accounts:       s.Accounts,
		Categories:     s.Categories,
		PaymentMethods: s.PaymentMethods,
	}
}
