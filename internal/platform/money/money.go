// Package money centralises monetary arithmetic and display formatting.
//
// All stored amounts are decimal values (never binary floats). Locale
// formatting is a display concern only; formatted strings must never be
// parsed back into stored values.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// FromReais builds a decimal amount from a whole number of reais.
func FromReais(value int64) decimal.Decimal {
	return decimal.NewFromInt(value)
}

// Parse parses a decimal amount from its canonical string form ("472.50").
func Parse(value string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse amount %q: %w", value, err)
	}
	return amount, nil
}

// Round rounds an amount to currency precision (two decimal places).
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// Cents returns the amount in integer minor units, rounded to currency
// precision first.
func Cents(amount decimal.Decimal) int64 {
	return Round(amount).Shift(2).IntPart()
}

// FormatBRL renders an amount for pt-BR display ("R$ 1.234,56").
func FormatBRL(amount decimal.Decimal) string {
	value, _ := Round(amount).Float64()
	return ptBR.Sprintf("R$ %v", number.Decimal(value,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}
