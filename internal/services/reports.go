package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/cache"
	"finboard/internal/core"
	"finboard/internal/ledger"
)

const (
	PeriodThisYear = "this-year"
	PeriodLastYear = "last-year"

	// OtherShare labels the bucket that folds the smaller expense categories.
	OtherShare = "Other"
	topShares  = 3

	reportCacheSize = 128
)

var (
	ErrInvalidPeriod = errors.New("invalid period")
	ErrInvalidMonth  = errors.New("invalid month")
)

// Reports derives the yearly and monthly views from the transaction book.
// Results are cached per period and filter.
type Reports struct {
	txs    ledger.TransactionLister
	years  *cache.LRUCache[core.YearReport]
	months *cache.LRUCache[core.MonthSummary]
	now    func() time.Time
}

func NewReports(txs ledger.TransactionLister, ttl time.Duration) *Reports {
	return &Reports{
		txs:    txs,
		years:  cache.NewLRUCache[core.YearReport](reportCacheSize, ttl),
		months: cache.NewLRUCache[core.MonthSummary](reportCacheSize, ttl),
		now:    time.Now,
	}
}

// Caches returns the report caches so a cache.Manager can expire them.
func (r *Reports) Caches() []cache.Cleaner {
	return []cache.Cleaner{r.years, r.months}
}

// CachedEntries reports how many reports are currently cached.
func (r *Reports) CachedEntries() int {
	return r.years.Size() + r.months.Size()
}

// Invalidate drops every cached report.
func (r *Reports) Invalidate() {
	r.years.Clear()
	r.months.Clear()
}

// Year builds the report for period ("this-year", "last-year" or "YYYY").
// An empty period means "last-year".
func (r *Reports) Year(ctx context.Context, period string, f core.TransactionFilter) (core.YearReport, error) {
	period = strings.TrimSpace(period)
	if period == "" {
		period = PeriodLastYear
	}
	key := period + "|" + f.Key()
	if rep, ok := r.years.Get(key); ok {
		return rep, nil
	}

	all, err := r.txs.ListTransactions(ctx)
	if err != nil {
		return core.YearReport{}, fmt.Errorf("list transactions: %w", err)
	}
	from, to, err := ResolvePeriod(period, Anchor(all, r.now()))
	if err != nil {
		return core.YearReport{}, err
	}

	txs := inRange(f.Apply(all), from, to)
	rep := core.YearReport{
		Period:     period,
		From:       core.Date{Time: from},
		To:         core.Date{Time: to.AddDate(0, 0, -1)},
		Totals:     core.SumTotals(txs),
		Categories: ByCategory(txs),
		Months:     ByMonth(txs, from),
		Shares:     ExpenseShares(txs, topShares),
	}
	r.years.Set(key, rep)
	return rep, nil
}

// Month returns the totals and transactions of one calendar month. Zero
// year/month select the month of the newest transaction.
func (r *Reports) Month(ctx context.Context, year, month int, f core.TransactionFilter) (core.MonthSummary, error) {
	if month < 0 || month > 12 {
		return core.MonthSummary{}, ErrInvalidMonth
	}
	all, err := r.txs.ListTransactions(ctx)
	if err != nil {
		return core.MonthSummary{}, fmt.Errorf("list transactions: %w", err)
	}
	if year == 0 || month == 0 {
		a := Anchor(all, r.now())
		year, month = a.Year(), int(a.Month())
	}
	key := fmt.Sprintf("%04d-%02d|%s", year, month, f.Key())
	if sum, ok := r.months.Get(key); ok {
		return sum, nil
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	txs := inRange(f.Apply(all), from, from.AddDate(0, 1, 0))
	sum := core.MonthSummary{
		Year:         year,
		Month:        month,
		Totals:       core.SumTotals(txs),
		Transactions: txs,
	}
	r.months.Set(key, sum)
	return sum, nil
}

// Anchor is the date reports are relative to: the newest transaction, or now
// when the book is empty.
func Anchor(txs []core.Transaction, now time.Time) time.Time {
	var newest time.Time
	for _, t := range txs {
		if t.Date.After(newest) {
			newest = t.Date.Time
		}
	}
	if newest.IsZero() {
		return now.UTC()
	}
	return newest
}

// ResolvePeriod returns the half-open range [from, to) covered by period.
// "last-year" is the trailing twelve months ending with the anchor's month.
func ResolvePeriod(period string, anchor time.Time) (from, to time.Time, err error) {
	switch period {
	case PeriodThisYear:
		from = time.Date(anchor.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	case PeriodLastYear:
		from = time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -11, 0)
	default:
		y, convErr := strconv.Atoi(period)
		if convErr != nil || len(period) != 4 || y < 1900 {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
		}
		from = time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return from, from.AddDate(1, 0, 0), nil
}

func inRange(txs []core.Transaction, from, to time.Time) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if !t.Date.Before(from) && t.Date.Before(to) {
			out = append(out, t)
		}
	}
	return out
}

// ByCategory aggregates per category name, sorted by name.
func ByCategory(txs []core.Transaction) []core.CategoryNet {
	idx := map[string]int{}
	var out []core.CategoryNet
	for _, t := range txs {
		i, ok := idx[t.Category]
		if !ok {
			i = len(out)
			idx[t.Category] = i
			out = append(out, core.CategoryNet{Name: t.Category})
		}
		if t.IsIncome() {
			out[i].Income = out[i].Income.Add(t.Amount)
		} else {
			out[i].Expense = out[i].Expense.Add(t.Amount.Neg())
		}
	}
	for i := range out {
		out[i].Net = out[i].Income.Sub(out[i].Expense)
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}

// ByMonth returns twelve consecutive buckets starting at from.
func ByMonth(txs []core.Transaction, from time.Time) []core.MonthBucket {
	out := make([]core.MonthBucket, 12)
	for i := range out {
		m := from.AddDate(0, i, 0)
		out[i] = core.MonthBucket{Year: m.Year(), Month: int(m.Month())}
	}
	for _, t := range txs {
		i := (t.Date.Year()-from.Year())*12 + int(t.Date.Month()) - int(from.Month())
		if i < 0 || i >= len(out) {
			continue
		}
		if t.IsIncome() {
			out[i].Income = out[i].Income.Add(t.Amount)
		} else {
			out[i].Expense = out[i].Expense.Add(t.Amount.Neg())
		}
	}
	return out
}

// ExpenseShares ranks expense categories by amount, keeps the top n and folds
// the rest into OtherShare. Percentages are rounded and relative to the total.
func ExpenseShares(txs []core.Transaction, n int) []core.Share {
	var shares []core.Share
	for _, c := range ByCategory(txs) {
		if c.Expense.IsPositive() {
			shares = append(shares, core.Share{Name: c.Name, Value: c.Expense})
		}
	}
	sort.SliceStable(shares, func(a, b int) bool { return shares[a].Value.GreaterThan(shares[b].Value) })

	if len(shares) > n {
		other := core.Share{Name: OtherShare}
		for _, s := range shares[n:] {
			other.Value = other.Value.Add(s.Value)
		}
		shares = append(shares[:n:n], other)
	}

	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s.Value)
	}
	if total.IsZero() {
		return shares
	}
	hundred := decimal.NewFromInt(100)
	for i := range shares {
		shares[i].Percent = int(shares[i].Value.Mul(hundred).Div(total).Round(0).IntPart())
	}
	return shares
}
