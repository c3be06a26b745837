package models

import "github.com/shopspring/decimal"

// BudgetEntry is one budgeted amount for a (year, month) and a set of
// classification dimensions. Empty dimensions mean "not broken down".
type BudgetEntry struct {
	Year      int
	Month     int
	Process   string
	Site      string
	Area      string
	CostClass string
	Amount    decimal.Decimal
}

// Bucket returns the reporting period of the entry.
func (b *BudgetEntry) Bucket() PeriodKey {
	return PeriodKey{Year: b.Year, Period: b.Month}
}
