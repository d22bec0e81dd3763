package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryNet aggregates one category over a report period.
type CategoryNet struct {
	Name    string          `json:"name"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

// MonthBucket is one bar of the income/expense chart.
type MonthBucket struct {
	Year    int             `json:"year"`
	Month   int             `json:"month"` // 1-12
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// Share is one slice of the expense breakdown.
type Share struct {
	Name    string          `json:"name"`
	Value   decimal.Decimal `json:"value"`
	Percent int             `json:"percent"`
}

// YearReport summarizes a period of up to twelve months.
type YearReport struct {
	Period     string        `json:"period"`
	From       Date          `json:"from"`
	To         Date          `json:"to"`
	Totals     Totals        `json:"totals"`
	Categories []CategoryNet `json:"categories"`
	Months     []MonthBucket `json:"months"`
	Shares     []Share       `json:"shares"`
}

// MonthSummary is the monthly tab of the reports page.
type MonthSummary struct {
	Year         int           `json:"year"`
	Month        int           `json:"month"`
	Totals       Totals        `json:"totals"`
	Transactions []Transaction `json:"transactions"`
}

// ChangeOp is the kind of mutation recorded in a ChangeEvent.
type ChangeOp string

const (
	OpCreated ChangeOp = "created"
	OpUpdated ChangeOp = "updated"
	OpDeleted ChangeOp = "deleted"
)

// ChangeEvent describes a catalog mutation that has been applied.
type ChangeEvent struct {
	Kind Kind      `json:"kind"`
	Op   ChangeOp  `json:"op"`
	ID   string    `json:"id"`
	Name string    `json:"name"`
	At   time.Time `json:"at"`
}
