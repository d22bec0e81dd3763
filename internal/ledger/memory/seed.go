package memory

import (
	"github.com/shopspring/decimal"

	"finboard/internal/core"
)

func SeedAccounts() []core.Account {
	bal := decimal.RequireFromString
	return []core.Account{
		{ID: "primary-checking", Name: "Primary Checking", Type: core.AccountChecking, Balance: bal("5234.56"), IsDefault: true},
		{ID: "emergency-fund", Name: "Emergency Fund", Type: core.AccountSavings, Balance: bal("12876.92"), IsDefault: true},
		{ID: "travel-rewards", Name: "Travel Rewards Card", Type: core.AccountCredit, Balance: bal("2150.34"), IsDefault: true},
		{ID: "retirement", Name: "Retirement Portfolio", Type: core.AccountInvestment, Balance: bal("45987.11"), IsDefault: true},
		{ID: "wallet", Name: "Wallet", Type: core.AccountCash, Balance: bal("150"), IsDefault: false},
		{ID: "vacation-fund", Name: "Vacation Fund", Type: core.AccountSavings, Balance: bal("3500"), IsDefault: false},
		{ID: "shopping-card", Name: "Shopping Card", Type: core.AccountCredit, Balance: bal("875.6"), IsDefault: false},
	}
}

func SeedCategories() []core.Category {
	return []core.Category{
		{ID: "food", Name: "Dining", Type: core.CategoryExpense, IsDefault: true},
		{ID: "transport", Name: "Transport", Type: core.CategoryExpense, IsDefault: true},
		{ID: "shopping", Name: "Shopping", Type: core.CategoryExpense, IsDefault: true},
		{ID: "entertainment", Name: "Entertainment", Type: core.CategoryExpense, IsDefault: true},
		{ID: "rent", Name: "Rent", Type: core.CategoryExpense, IsDefault: true},
		{ID: "salary", Name: "Salary", Type: core.CategoryIncome, IsDefault: true},
		{ID: "investment", Name: "Investment", Type: core.CategoryIncome, IsDefault: true},
		{ID: "utilities", Name: "Utilities", Type: core.CategoryExpense, IsDefault: false},
		{ID: "salary-income", Name: "Paycheck", Type: core.CategoryIncome, IsDefault: false},
		{ID: "investment-income", Name: "Investment Income", Type: core.CategoryIncome, IsDefault: false},
	}
}

func SeedPaymentMethods() []core.PaymentMethod {
	return []core.PaymentMethod{
		{ID: "checking", Name: "Checking Account", Icon: core.IconBanknote, IsDefault: true},
		{ID: "credit-card", Name: "Credit Card", Icon: core.IconCreditCard, IsDefault: true},
		{ID: "cash", Name: "Cash", Icon: core.IconWallet, IsDefault: true},
	}
}

// SeedTransactions is the sample ledger, newest first. Names are free text and
// intentionally not all present in the catalogs.
func SeedTransactions() []core.Transaction {
	amt := decimal.RequireFromString
	return []core.Transaction{
		{ID: "1", Date: core.NewDate(2024, 7, 19), Description: "Restaurant dinner", Category: "Dining", PaymentMethod: "Credit Card", Account: "Checking Account", Amount: amt("-675")},
		{ID: "2", Date: core.NewDate(2024, 7, 18), Description: "Electricity bill", Category: "Utilities", PaymentMethod: "Bank Transfer", Account: "Checking Account", Amount: amt("-1012.5")},
		{ID: "3", Date: core.NewDate(2024, 7, 17), Description: "Weekly groceries", Category: "Groceries", PaymentMethod: "Credit Card", Account: "Credit Card", Amount: amt("-1675")},
		{ID: "4", Date: core.NewDate(2024, 7, 16), Description: "Monthly salary", Category: "Paycheck", PaymentMethod: "Direct Deposit", Account: "Checking Account", Amount: amt("35100")},
		{ID: "5", Date: core.NewDate(2024, 7, 16), Description: "Social event", Category: "Social", PaymentMethod: "Bank Transfer", Account: "Bank Transfer", Amount: amt("-10125")},
	}
}
