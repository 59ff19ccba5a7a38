// Package money converts whole-unit store prices for display and for the
// payment gateway.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// zeroDecimal lists ISO currencies without a minor unit.
var zeroDecimal = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true,
	"krw": true, "mga": true, "pyg": true, "rwf": true, "ugx": true, "vnd": true,
	"vuv": true, "xaf": true, "xof": true, "xpf": true,
}

// Exponent returns the number of minor-unit digits for currency.
func Exponent(currency string) int32 {
	if zeroDecimal[strings.ToLower(strings.TrimSpace(currency))] {
		return 0
	}
	return 2
}

// ToMinorUnits converts a whole-unit amount into the gateway's smallest unit.
func ToMinorUnits(amount int64, currency string) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("amount must not be negative")
	}
	minor := decimal.NewFromInt(amount).Shift(Exponent(currency))
	if !minor.IsInteger() {
		return 0, fmt.Errorf("amount %s has fractional minor units", minor.String())
	}
	return minor.IntPart(), nil
}

// FromMinorUnits converts a gateway amount back to whole units.
func FromMinorUnits(minor int64, currency string) decimal.Decimal {
	return decimal.NewFromInt(minor).Shift(-Exponent(currency))
}

// Format renders amount with the currency's precision, e.g. "250.00 INR".
func Format(amount int64, currency string) string {
	return decimal.NewFromInt(amount).StringFixed(Exponent(currency)) + " " + strings.ToUpper(currency)
}
