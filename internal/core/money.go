// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing decimal amounts from user input
// and formatting them for display.
package core

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes every formatted amount.
const CurrencySymbol = "¥"

var leadingNumber = regexp.MustCompile(`^([+-]?(?:\d+(?:\.\d*)?|\.\d+))([eE][+-]?\d+)?`)

// ParseAmount parses a signed decimal amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional leading sign or currency symbol. Thousands separators are not
// supported; "1,234.50" is rejected.
//
// Examples:
//
//	ParseAmount("12.34")   -> 12.34, nil
//	ParseAmount("-675")    -> -675, nil
//	ParseAmount("¥1012,5") -> 1012.5, nil
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.Replace(s, CurrencySymbol, "", 1)
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseBalance reads a balance typed into a form. It never fails: the longest
// numeric prefix is used ("12abc" is 12, "1e3" is 1000) and input without
// one is zero.
func ParseBalance(s string) decimal.Decimal {
	m := leadingNumber.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.TrimSuffix(m[1], ".") + m[2])
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatAmount renders an amount with currency symbol, thousands separators and
// two decimals (e.g. "-¥1,012.50").
func FormatAmount(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := CurrencySymbol + b.String() + "." + frac
	if neg {
		return "-" + out
	}
	return out
}

// FormatSigned is FormatAmount with an explicit "+" for positive amounts.
func FormatSigned(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + FormatAmount(d)
	}
	return FormatAmount(d)
}
