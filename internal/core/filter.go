package core

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// MatchAll is the selector value meaning "do not filter on this field".
const MatchAll = "all"

// TransactionFilter holds the four independent selectors of the transactions view.
// The zero value matches everything.
type TransactionFilter struct {
	Search        string
	Category      string
	PaymentMethod string
	Account       string
}

// IsEmpty reports whether the filter matches every transaction.
func (f TransactionFilter) IsEmpty() bool {
	return f.Search == "" &&
		isMatchAll(f.Category) && isMatchAll(f.PaymentMethod) && isMatchAll(f.Account)
}

// Matches applies the logical AND of all active selectors.
// Search is a case-insensitive substring of the description, whitespace
// included; the rest compare exactly.
func (f TransactionFilter) Matches(t Transaction) bool {
	if f.Search != "" {
		if !strings.Contains(strings.ToLower(t.Description), strings.ToLower(f.Search)) {
			return false
		}
	}
	if !isMatchAll(f.Category) && t.Category != f.Category {
		return false
	}
	if !isMatchAll(f.PaymentMethod) && t.PaymentMethod != f.PaymentMethod {
		return false
	}
	if !isMatchAll(f.Account) && t.Account != f.Account {
		return false
	}
	return true
}

// Apply returns the matching transactions in source order.
func (f TransactionFilter) Apply(txs []Transaction) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// Key is a stable string form used for cache keys. Fields are quoted so
// selector values containing the separator cannot collide.
func (f TransactionFilter) Key() string {
	norm := func(s string) string {
		if isMatchAll(s) {
			return MatchAll
		}
		return strconv.Quote(s)
	}
	return strconv.Quote(strings.ToLower(f.Search)) + "|" + norm(f.Category) + "|" + norm(f.PaymentMethod) + "|" + norm(f.Account)
}

func isMatchAll(s string) bool {
	return s == "" || s == MatchAll
}

// Options collects the distinct selector values present in txs, in first-seen order.
func Options(txs []Transaction) (categories, paymentMethods, accounts []string) {
	seen := map[string]map[string]bool{"c": {}, "p": {}, "a": {}}
	add := func(bucket string, list *[]string, v string) {
		if v == "" || seen[bucket][v] {
			return
		}
		seen[bucket][v] = true
		*list = append(*list, v)
	}
	for _, t := range txs {
		add("c", &categories, t.Category)
		add("p", &paymentMethods, t.PaymentMethod)
		add("a", &accounts, t.Account)
	}
	return categories, paymentMethods, accounts
}

// SumTotals sums income (positive amounts) and expenses (absolute value of negatives).
func SumTotals(txs []Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		if tx.IsIncome() {
			t.Income = t.Income.Add(tx.Amount)
		} else {
			t.Expenses = t.Expenses.Add(tx.Amount.Neg())
		}
	}
	t.Net = t.Income.Sub(t.Expenses)
	return t
}

// Totals is the income / expense / net triple shown on summary cards.
type Totals struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}
