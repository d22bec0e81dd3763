package core

import "strings"

// AccountType is the closed set of account kinds.
type AccountType string

const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountCredit     AccountType = "credit"
	AccountInvestment AccountType = "investment"
	AccountCash       AccountType = "cash"
)

var accountTypeLabels = map[AccountType]string{
	AccountChecking:   "Checking",
	AccountSavings:    "Savings",
	AccountCredit:     "Credit Card",
	AccountInvestment: "Investment",
	AccountCash:       "Cash",
}

// AccountTypes lists the variants in display order.
func AccountTypes() []AccountType {
	return []AccountType{AccountChecking, AccountSavings, AccountCredit, AccountInvestment, AccountCash}
}

func (t AccountType) String() string { return string(t) }

// Label returns the display label. Unknown values render as checking, like the form default.
func (t AccountType) Label() string {
	if l, ok := accountTypeLabels[t]; ok {
		return l
	}
	return accountTypeLabels[AccountChecking]
}

func (t AccountType) IsValid() bool {
	_, ok := accountTypeLabels[t]
	return ok
}

func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", ErrUnknownAccountType
	}
	return t, nil
}

// CategoryType separates income from expense categories.
type CategoryType string

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
)

var categoryTypeLabels = map[CategoryType]string{
	CategoryIncome:  "Income",
	CategoryExpense: "Expense",
}

func CategoryTypes() []CategoryType {
	return []CategoryType{CategoryExpense, CategoryIncome}
}

func (t CategoryType) String() string { return string(t) }

func (t CategoryType) Label() string {
	if l, ok := categoryTypeLabels[t]; ok {
		return l
	}
	return categoryTypeLabels[CategoryExpense]
}

func (t CategoryType) IsValid() bool {
	_, ok := categoryTypeLabels[t]
	return ok
}

func ParseCategoryType(s string) (CategoryType, error) {
	t := CategoryType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", ErrUnknownCategoryType
	}
	return t, nil
}

// PaymentIcon selects the glyph shown next to a payment method.
type PaymentIcon string

const (
	IconCreditCard PaymentIcon = "credit-card"
	IconWallet     PaymentIcon = "wallet"
	IconBanknote   PaymentIcon = "banknote"
)

var paymentIconLabels = map[PaymentIcon]string{
	IconCreditCard: "Credit card",
	IconWallet:     "Wallet",
	IconBanknote:   "Banknote",
}

func PaymentIcons() []PaymentIcon {
	return []PaymentIcon{IconCreditCard, IconWallet, IconBanknote}
}

func (i PaymentIcon) String() string { return string(i) }

func (i PaymentIcon) Label() string {
	if l, ok := paymentIconLabels[i]; ok {
		return l
	}
	return paymentIconLabels[IconCreditCard]
}

func (i PaymentIcon) IsValid() bool {
	_, ok := paymentIconLabels[i]
	return ok
}

func ParsePaymentIcon(s string) (PaymentIcon, error) {
	i := PaymentIcon(strings.ToLower(strings.TrimSpace(s)))
	if !i.IsValid() {
		return "", ErrUnknownPaymentIcon
	}
	return i, nil
}
