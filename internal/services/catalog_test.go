package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard/internal/core"
	"finboard/internal/ledger/memory"
	applog "finboard/internal/log"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []core.ChangeEvent
	err    error
}

func (p *recordingPublisher) PublishChange(_ context.Context, ev core.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func fixedClock() func() time.Time {
	t := time.Date(2024, 7, 20, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func newCategories(pub *recordingPublisher) (*Catalog[core.Category], *memory.Collection[core.Category]) {
	coll := memory.NewCollection(memory.SeedCategories()...)
	opts := []CatalogOption[core.Category]{WithClock[core.Category](fixedClock())}
	if pub != nil {
		opts = append(opts, WithPublisher[core.Category](pub))
	}
	return NewCatalog[core.Category](coll, opts...), coll
}

func TestCatalogAdd(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	cat, coll := newCategories(pub)

	got, err := cat.Add(ctx, core.Category{Name: "  Pets ", Type: core.CategoryExpense, IsDefault: true})
	require.NoError(t, err)
	assert.Equal(t, "Pets", got.Name)
	assert.False(t, got.IsDefault)
	assert.Equal(t, "1721466000000", got.ID)
	assert.Equal(t, 11, coll.Len())

	list, _ := cat.List(ctx)
	assert.Equal(t, got, list[len(list)-1], "appended at the end")

	require.Len(t, pub.events, 1)
	assert.Equal(t, core.ChangeEvent{Kind: core.KindCategory, Op: core.OpCreated, ID: got.ID, Name: "Pets", At: fixedClock()()}, pub.events[0])
}

func TestCatalogAddBlankName(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	cat, coll := newCategories(pub)

	for _, name := range []string{"", "   ", "\t"} {
		_, err := cat.Add(ctx, core.Category{Name: name})
		assert.ErrorIs(t, err, core.ErrEmptyName)
	}
	assert.Equal(t, 10, coll.Len())
	assert.Empty(t, pub.events)
}

func TestCatalogAddUniqueIDsSameMillisecond(t *testing.T) {
	ctx := context.Background()
	cat, _ := newCategories(nil)

	a, err := cat.Add(ctx, core.Category{Name: "A"})
	require.NoError(t, err)
	b, err := cat.Add(ctx, core.Category{Name: "B"})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestCatalogEdit(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	cat, _ := newCategories(pub)

	ok, err := cat.Edit(ctx, core.Category{ID: "rent", Name: "Housing ", Type: core.CategoryExpense, IsDefault: true})
	require.NoError(t, err)
	assert.True(t, ok)

	got, found, _ := cat.Get(ctx, "rent")
	require.True(t, found)
	assert.Equal(t, "Housing ", got.Name, "edit stores the name as given")
	require.Len(t, pub.events, 1)
	assert.Equal(t, core.OpUpdated, pub.events[0].Op)
}

func TestCatalogEditBlankLeavesOriginal(t *testing.T) {
	ctx := context.Background()
	cat, _ := newCategories(nil)

	ok, err := cat.Edit(ctx, core.Category{ID: "rent", Name: "  "})
	assert.ErrorIs(t, err, core.ErrEmptyName)
	assert.False(t, ok)

	got, _, _ := cat.Get(ctx, "rent")
	assert.Equal(t, "Rent", got.Name)
}

func TestCatalogEditUnknownID(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	cat, coll := newCategories(pub)

	ok, err := cat.Edit(ctx, core.Category{ID: "missing", Name: "X"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 10, coll.Len())
	assert.Empty(t, pub.events)
}

func TestCatalogDelete(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	cat, _ := newCategories(pub)

	ok, err := cat.Delete(ctx, "utilities")
	require.NoError(t, err)
	assert.True(t, ok)
	d, c, err := cat.Partition(ctx)
	require.NoError(t, err)
	assert.Len(t, d, 7)
	assert.Len(t, c, 2)

	ok, err = cat.Delete(ctx, "food")
	require.NoError(t, err)
	assert.True(t, ok, "presets are not protected")
	d, c, _ = cat.Partition(ctx)
	assert.Len(t, d, 6)
	assert.Len(t, c, 2)

	ok, err = cat.Delete(ctx, "food")
	require.NoError(t, err)
	assert.False(t, ok)

	require.Len(t, pub.events, 2)
	assert.Equal(t, "Dining", pub.events[1].Name)
	assert.Equal(t, core.OpDeleted, pub.events[1].Op)
}

func TestCatalogPublishFailureDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{err: errors.New("broker down")}
	coll := memory.NewCollection(memory.SeedAccounts()...)
	cat := NewCatalog[core.Account](coll, WithPublisher[core.Account](pub))

	got, err := cat.Add(ctx, core.Account{Name: "Brokerage", Type: core.AccountInvestment, Balance: decimal.NewFromInt(10)})
	require.NoError(t, err)
	assert.Equal(t, 8, coll.Len())
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(10)))
}

func TestCatalogLogsThroughRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := applog.New(applog.Config{Component: applog.ComponentHTTP, Handler: slog.NewJSONHandler(&buf, nil)})
	ctx := applog.IntoContext(context.Background(), base.With(applog.FieldRequestID, "req_abc"))

	pub := &recordingPublisher{err: errors.New("broker down")}
	cat, _ := newCategories(pub)
	rec, err := cat.Add(ctx, core.Category{Name: "Pets", Type: core.CategoryExpense})
	require.NoError(t, err)
	_, err = cat.Add(ctx, core.Category{Name: "  "})
	require.ErrorIs(t, err, core.ErrEmptyName)

	var records []map[string]any
	decoder := json.NewDecoder(&buf)
	for decoder.More() {
		var m map[string]any
		require.NoError(t, decoder.Decode(&m))
		records = append(records, m)
	}
	require.Len(t, records, 2, "declined add must not log a change")

	changed, failed := records[0], records[1]
	assert.Equal(t, "Catalog record changed", changed["msg"])
	assert.Equal(t, "req_abc", changed[applog.FieldRequestID])
	assert.Equal(t, applog.ComponentCatalog, changed[applog.FieldComponent])
	assert.Equal(t, rec.ID, changed[applog.FieldRecordID])
	assert.Equal(t, string(core.OpCreated), changed[applog.FieldOperation])

	assert.Equal(t, "ERROR", failed["level"])
	assert.Equal(t, "req_abc", failed[applog.FieldRequestID])
	assert.Equal(t, "broker down", failed[applog.FieldError])
	assert.Equal(t, applog.OpPublish, failed[applog.FieldOperation])
}

func TestIDGeneratorMonotonic(t *testing.T) {
	g := NewIDGenerator(fixedClock())
	var prev int64
	for i := 0; i < 100; i++ {
		id, err := strconv.ParseInt(g.Next(), 10, 64)
		require.NoError(t, err)
		require.Greater(t, id, prev)
		prev = id
	}
	assert.Equal(t, "1721466000000", NewIDGenerator(fixedClock()).Next())
}
