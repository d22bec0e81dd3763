package core

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind names an entity collection. It is used in change events, log fields and routes.
type Kind string

const (
	KindAccount       Kind = "account"
	KindCategory      Kind = "category"
	KindPaymentMethod Kind = "payment_method"
)

type (
	Account struct {
		ID        string          `json:"id"`
		Name      string          `json:"name"`
		Type      AccountType     `json:"type"`
		Balance   decimal.Decimal `json:"balance"`
		IsDefault bool            `json:"isDefault"`
	}

	Category struct {
		ID        string       `json:"id"`
		Name      string       `json:"name"`
		Type      CategoryType `json:"type"`
		IsDefault bool         `json:"isDefault"`
	}

	PaymentMethod struct {
		ID        string      `json:"id"`
		Name      string      `json:"name"`
		Icon      PaymentIcon `json:"icon"`
		IsDefault bool        `json:"isDefault"`
	}

	// Transaction is read-only ledger data. Category, PaymentMethod and Account
	// hold display names, not ids; nothing keeps them in sync with the catalogs.
	Transaction struct {
		ID            string          `json:"id"`
		Date          Date            `json:"date"`
		Description   string          `json:"description"`
		Category      string          `json:"category"`
		PaymentMethod string          `json:"paymentMethod"`
		Account       string          `json:"account"`
		Amount        decimal.Decimal `json:"amount"`
	}
)

var (
	ErrEmptyName           = errors.New("empty name")
	ErrUnknownAccountType  = errors.New("unknown account type")
	ErrUnknownCategoryType = errors.New("unknown category type")
	ErrUnknownPaymentIcon  = errors.New("unknown payment icon")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidDate         = errors.New("invalid date")
)

// ValidateName is the single invariant shared by every catalog record.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	return nil
}

// Record is implemented by the catalog entities (accounts, categories, payment methods).
type Record[T any] interface {
	Key() string
	Label() string
	Preset() bool
	// Stamped returns a copy registered as a new custom record under id.
	Stamped(id string) T
	Kind() Kind
}

var (
	_ Record[Account]       = Account{}
	_ Record[Category]      = Category{}
	_ Record[PaymentMethod] = PaymentMethod{}
)

func (a Account) Key() string   { return a.ID }
func (a Account) Label() string { return a.Name }
func (a Account) Preset() bool  { return a.IsDefault }
func (a Account) Kind() Kind    { return KindAccount }

func (a Account) Stamped(id string) Account {
	a.ID = id
	a.Name = strings.TrimSpace(a.Name)
	a.IsDefault = false
	return a
}

func (c Category) Key() string   { return c.ID }
func (c Category) Label() string { return c.Name }
func (c Category) Preset() bool  { return c.IsDefault }
func (c Category) Kind() Kind    { return KindCategory }

func (c Category) Stamped(id string) Category {
	c.ID = id
	c.Name = strings.TrimSpace(c.Name)
	c.IsDefault = false
	return c
}

func (p PaymentMethod) Key() string   { return p.ID }
func (p PaymentMethod) Label() string { return p.Name }
func (p PaymentMethod) Preset() bool  { return p.IsDefault }
func (p PaymentMethod) Kind() Kind    { return KindPaymentMethod }

func (p PaymentMethod) Stamped(id string) PaymentMethod {
	p.ID = id
	p.Name = strings.TrimSpace(p.Name)
	p.IsDefault = false
	return p
}

// Partition splits records into preset and custom views, preserving order.
func Partition[T Record[T]](records []T) (defaults, custom []T) {
	defaults = make([]T, 0, len(records))
	custom = make([]T, 0, len(records))
	for _, r := range records {
		if r.Preset() {
			defaults = append(defaults, r)
		} else {
			custom = append(custom, r)
		}
	}
	return defaults, custom
}

// Date is a calendar day (UTC midnight) serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

const DateLayout = "2006-01-02"

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MarshalJSON shadows the promoted time.Time encoder so dates stay YYYY-MM-DD.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.String())), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return ErrInvalidDate
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// IsIncome reports whether the transaction moves money in.
func (t Transaction) IsIncome() bool {
	return t.Amount.IsPositive()
}
