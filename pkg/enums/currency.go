package enums

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"
)

// Currency is an upper-case ISO 4217 code.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyINR Currency = "INR"
)

// String implements fmt.Stringer.
func (c Currency) String() string {
	return string(c)
}

// IsValid reports whether the code is a recognized ISO 4217 currency.
func (c Currency) IsValid() bool {
	_, err := currency.ParseISO(string(c))
	return err == nil && strings.ToUpper(string(c)) == string(c)
}

// ParseCurrency converts a raw string into a Currency, normalizing case.
func ParseCurrency(value string) (Currency, error) {
	unit, err := currency.ParseISO(strings.TrimSpace(value))
	if err != nil {
		return "", fmt.Errorf("invalid currency %q", value)
	}
	return Currency(unit.String()), nil
}
