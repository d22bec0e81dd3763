package services

import (
	"context"
	"fmt"
	"time"

	"finboard/internal/core"
	"finboard/internal/ledger"
	applog "finboard/internal/log"
)

// Catalog is the CRUD controller over one catalog collection. The only rule
// it enforces is a non-blank name; every applied mutation is announced through
// the optional publisher.
type Catalog[T core.Record[T]] struct {
	repo      ledger.Repository[T]
	ids       *IDGenerator
	publisher ledger.ChangePublisher
	now       func() time.Time
}

type CatalogOption[T core.Record[T]] func(*Catalog[T])

// WithPublisher sets where change events go. A nil publisher disables publishing.
func WithPublisher[T core.Record[T]](p ledger.ChangePublisher) CatalogOption[T] {
	return func(c *Catalog[T]) { c.publisher = p }
}

// WithIDGenerator shares one generator between catalogs.
func WithIDGenerator[T core.Record[T]](g *IDGenerator) CatalogOption[T] {
	return func(c *Catalog[T]) { c.ids = g }
}

func WithClock[T core.Record[T]](now func() time.Time) CatalogOption[T] {
	return func(c *Catalog[T]) { c.now = now }
}

func NewCatalog[T core.Record[T]](repo ledger.Repository[T], opts ...CatalogOption[T]) *Catalog[T] {
	c := &Catalog[T]{repo: repo, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	if c.ids == nil {
		c.ids = NewIDGenerator(c.now)
	}
	return c
}

// List returns every record in insertion order.
func (c *Catalog[T]) List(ctx context.Context) ([]T, error) {
	items, err := c.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return items, nil
}

func (c *Catalog[T]) Get(ctx context.Context, id string) (T, bool, error) {
	return c.repo.Get(ctx, id)
}

// Partition returns the preset and custom views.
func (c *Catalog[T]) Partition(ctx context.Context) (defaults, custom []T, err error) {
	items, err := c.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	defaults, custom = core.Partition(items)
	return defaults, custom, nil
}

// Add registers input as a new custom record with a fresh id. A blank name
// returns core.ErrEmptyName and leaves the collection unchanged.
func (c *Catalog[T]) Add(ctx context.Context, input T) (T, error) {
	if err := core.ValidateName(input.Label()); err != nil {
		var zero T
		return zero, err
	}
	rec := input.Stamped(c.ids.Next())
	if err := c.repo.Insert(ctx, rec); err != nil {
		var zero T
		return zero, fmt.Errorf("insert %s: %w", rec.Kind(), err)
	}
	c.applied(ctx, rec, core.OpCreated)
	return rec, nil
}

// Edit overwrites the record with the same id. The name is stored as given.
// Editing an unknown id is a no-op and reports false.
func (c *Catalog[T]) Edit(ctx context.Context, rec T) (bool, error) {
	if err := core.ValidateName(rec.Label()); err != nil {
		return false, err
	}
	ok, err := c.repo.Replace(ctx, rec)
	if err != nil {
		return false, fmt.Errorf("replace %s %s: %w", rec.Kind(), rec.Key(), err)
	}
	if ok {
		c.applied(ctx, rec, core.OpUpdated)
	}
	return ok, nil
}

// Delete removes the record with id. Unknown ids are a no-op.
func (c *Catalog[T]) Delete(ctx context.Context, id string) (bool, error) {
	prev, found, err := c.repo.Get(ctx, id)
	if err != nil {
		return false, fmt.Errorf("get %s: %w", id, err)
	}
	if !found {
		return false, nil
	}
	ok, err := c.repo.Remove(ctx, id)
	if err != nil {
		return false, fmt.Errorf("remove %s %s: %w", prev.Kind(), id, err)
	}
	if ok {
		c.applied(ctx, prev, core.OpDeleted)
	}
	return ok, nil
}

// applied logs a mutation that reached the store and announces it.
func (c *Catalog[T]) applied(ctx context.Context, rec T, op core.ChangeOp) {
	sl := applog.NewStructuredLogger(applog.FromContext(ctx))
	sl.LogChange(ctx, string(rec.Kind()), string(op), rec.Key(), rec.Label())
	if c.publisher == nil {
		return
	}
	ev := core.ChangeEvent{Kind: rec.Kind(), Op: op, ID: rec.Key(), Name: rec.Label(), At: c.now().UTC()}
	if err := c.publisher.PublishChange(ctx, ev); err != nil {
		// The mutation is already applied; the change log is best effort.
		sl.LogError(ctx, "Failed to publish change event", err, applog.ComponentCatalog, applog.OpPublish,
			applog.NewFields().WithRecord(string(ev.Kind), ev.ID, ev.Name))
	}
}
