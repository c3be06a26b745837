package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrEmptyAmount is returned by ParseAmount for blank input.
var ErrEmptyAmount = errors.New("empty amount")

// AmountFormat describes how amounts are written in a source file.
// The ledger export writes "1,234.56": comma thousands, dot decimals.
type AmountFormat struct {
	ThousandsSeparator string
	DecimalSeparator   string
}

// DefaultAmountFormat matches the ledger export.
var DefaultAmountFormat = AmountFormat{ThousandsSeparator: ",", DecimalSeparator: "."}

// ParseAmount parses a source amount into a decimal without going through
// float64. Thousands separators and surrounding spaces are stripped and the
// decimal separator is normalized to a dot.
func ParseAmount(raw string, format AmountFormat) (decimal.Decimal, error) {
	amount := strings.TrimSpace(raw)
	if amount == "" {
		return decimal.Zero, ErrEmptyAmount
	}
	amount = strings.ReplaceAll(amount, " ", "")
	if format.ThousandsSeparator != "" {
		amount = strings.ReplaceAll(amount, format.ThousandsSeparator, "")
	}
	if format.DecimalSeparator != "" && format.DecimalSeparator != "." {
		amount = strings.ReplaceAll(amount, format.DecimalSeparator, ".")
	}
	// Trailing minus is how some ERP exports write credits ("100.00-").
	if strings.HasSuffix(amount, "-") && !strings.HasPrefix(amount, "-") {
		amount = "-" + strings.TrimSuffix(amount, "-")
	}

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount string '%s': %w", raw, err)
	}
	return dec, nil
}

// AmountKey returns a canonical representation of d suitable as a map key:
// 100, 100.0 and 100.00 all map to "100".
func AmountKey(d decimal.Decimal) string {
	return d.String()
}

// SumAmounts adds up the amounts of the given transactions.
func SumAmounts(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for i := range txs {
		total = total.Add(txs[i].Amount)
	}
	return total
}
