package google

import (
	"fmt"
	"sort"
	"strings"

	"finboard/internal/core"
)

// columns maps transaction fields to sheet column indexes; -1 means absent.
type columns struct {
	date, description, category, paymentMethod, account, amount, id int
}

// defaultColumns is the layout assumed when the sheet has no header row:
// Date, Description, Category, Payment Method, Account, Amount, ID.
var defaultColumns = columns{date: 0, description: 1, category: 2, paymentMethod: 3, account: 4, amount: 5, id: 6}

// headerColumns locates columns by name. ok is false unless both Date and
// Amount are present, in which case the row is not a header.
func headerColumns(headers []string) (cols columns, ok bool) {
	cols = columns{
		date:          indexOf(headers, "Date"),
		description:   indexOf(headers, "Description"),
		category:      indexOf(headers, "Category"),
		paymentMethod: indexOf(headers, "Payment Method"),
		account:       indexOf(headers, "Account"),
		amount:        indexOf(headers, "Amount"),
		id:            indexOf(headers, "ID"),
	}
	if cols.paymentMethod == -1 {
		cols.paymentMethod = indexOf(headers, "Payment")
	}
	return cols, cols.date != -1 && cols.amount != -1
}

// parseTransactions converts sheet rows, newest first. A header row on top
// picks the column layout; blank rows are ignored and rows with a bad date or
// amount are counted in skipped. Rows without an id get "row-N" from their
// sheet row number.
func parseTransactions(values [][]interface{}) (txs []core.Transaction, skipped int) {
	cols := defaultColumns
	start := 0
	if len(values) > 0 {
		if hc, ok := headerColumns(toStrings(values[0])); ok {
			cols, start = hc, 1
		}
	}

	for i := start; i < len(values); i++ {
		row := toStrings(values[i])
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		date, err := core.ParseDate(safeGet(row, cols.date))
		if err != nil {
			skipped++
			continue
		}
		amount, err := core.ParseAmount(safeGet(row, cols.amount))
		if err != nil {
			skipped++
			continue
		}
		id := safeGet(row, cols.id)
		if id == "" {
			id = fmt.Sprintf("row-%d", i+1)
		}
		txs = append(txs, core.Transaction{
			ID:            id,
			Date:          date,
			Description:   safeGet(row, cols.description),
			Category:      safeGet(row, cols.category),
			PaymentMethod: safeGet(row, cols.paymentMethod),
			Account:       safeGet(row, cols.account),
			Amount:        amount,
		})
	}
	sort.SliceStable(txs, func(a, b int) bool { return txs[a].Date.After(txs[b].Date.Time) })
	return txs, skipped
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
