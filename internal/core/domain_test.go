package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestValidateName(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"Bank", true},
		{"  Bank ", true},
		{"", false},
		{"   ", false},
		{"\t\n", false},
	}
	for _, tc := range cases {
		err := ValidateName(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("%q expected ok, got %v", tc.in, err)
		}
		if !tc.ok && !errors.Is(err, ErrEmptyName) {
			t.Fatalf("%q expected ErrEmptyName, got %v", tc.in, err)
		}
	}
}

func TestStampedForcesCustom(t *testing.T) {
	a := Account{ID: "old", Name: "  Wallet  ", Type: AccountCash, IsDefault: true}.Stamped("42")
	if a.ID != "42" || a.Name != "Wallet" || a.IsDefault {
		t.Fatalf("unexpected stamped account: %+v", a)
	}
	if a.Type != AccountCash {
		t.Fatalf("type changed: %v", a.Type)
	}
	c := Category{Name: " Gifts", IsDefault: true}.Stamped("7")
	if c.ID != "7" || c.Name != "Gifts" || c.IsDefault {
		t.Fatalf("unexpected stamped category: %+v", c)
	}
	p := PaymentMethod{Name: "PayPal ", Icon: IconWallet}.Stamped("9")
	if p.ID != "9" || p.Name != "PayPal" || p.Icon != IconWallet {
		t.Fatalf("unexpected stamped payment method: %+v", p)
	}
}

func TestPartition(t *testing.T) {
	in := []Category{
		{ID: "1", Name: "Salary", IsDefault: true},
		{ID: "2", Name: "Gifts"},
		{ID: "3", Name: "Food", IsDefault: true},
		{ID: "4", Name: "Pets"},
		{ID: "5", Name: "Books"},
	}
	defaults, custom := Partition(in)
	if len(defaults)+len(custom) != len(in) {
		t.Fatalf("sizes %d+%d != %d", len(defaults), len(custom), len(in))
	}
	if len(defaults) != 2 || defaults[0].ID != "1" || defaults[1].ID != "3" {
		t.Fatalf("unexpected defaults: %+v", defaults)
	}
	if len(custom) != 3 || custom[0].ID != "2" || custom[1].ID != "4" || custom[2].ID != "5" {
		t.Fatalf("unexpected custom: %+v", custom)
	}
	for _, d := range defaults {
		for _, c := range custom {
			if d.ID == c.ID {
				t.Fatalf("record %s in both views", d.ID)
			}
		}
	}
}

func TestPartitionEmpty(t *testing.T) {
	defaults, custom := Partition[Account](nil)
	if len(defaults) != 0 || len(custom) != 0 {
		t.Fatalf("expected empty views")
	}
}

func TestDateJSON(t *testing.T) {
	tx := Transaction{ID: "1", Date: NewDate(2024, 7, 19), Description: "Coffee"}
	b, err := json.Marshal(tx)
	if err != nil {
		t.Fatal(err)
	}
	var back Transaction
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if back.Date.String() != "2024-07-19" {
		t.Fatalf("got %q", back.Date.String())
	}
	var bad Transaction
	if err := json.Unmarshal([]byte(`{"date":"19/07/2024"}`), &bad); err == nil {
		t.Fatalf("expected date error")
	}
}

func TestParseDate(t *testing.T) {
	if _, err := ParseDate("2024-02-30"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	d, err := ParseDate(" 2024-02-29 ")
	if err != nil || d.Month() != 2 || d.Day() != 29 {
		t.Fatalf("unexpected %v %v", d, err)
	}
}

func TestEnums(t *testing.T) {
	if at, err := ParseAccountType(" Savings "); err != nil || at != AccountSavings {
		t.Fatalf("got %v %v", at, err)
	}
	if _, err := ParseAccountType("loan"); !errors.Is(err, ErrUnknownAccountType) {
		t.Fatalf("expected ErrUnknownAccountType, got %v", err)
	}
	if AccountCredit.Label() != "Credit Card" {
		t.Fatalf("got %q", AccountCredit.Label())
	}
	if AccountType("loan").Label() != "Checking" {
		t.Fatalf("unknown type should label as checking")
	}
	if ct, err := ParseCategoryType("INCOME"); err != nil || ct != CategoryIncome {
		t.Fatalf("got %v %v", ct, err)
	}
	if _, err := ParseCategoryType(""); !errors.Is(err, ErrUnknownCategoryType) {
		t.Fatalf("expected ErrUnknownCategoryType, got %v", err)
	}
	if ic, err := ParsePaymentIcon("banknote"); err != nil || ic != IconBanknote {
		t.Fatalf("got %v %v", ic, err)
	}
	if _, err := ParsePaymentIcon("bitcoin"); !errors.Is(err, ErrUnknownPaymentIcon) {
		t.Fatalf("expected ErrUnknownPaymentIcon, got %v", err)
	}
	if len(AccountTypes()) != 5 || len(CategoryTypes()) != 2 || len(PaymentIcons()) != 3 {
		t.Fatalf("unexpected enum sizes")
	}
}
