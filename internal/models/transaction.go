// Package models provides the data structures shared by every reconciliation
// stage: ledger transactions, the record set arena, lookup tables and budget
// entries.
package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Transaction is one ledger line. Process, Site and Resolution are empty
// until the resolver stage has run.
type Transaction struct {
	ID            string          `csv:"id" json:"id" yaml:"id"`
	Seq           int             `csv:"seq" json:"seq" yaml:"seq"`
	FiscalYear    int             `csv:"fiscal_year" json:"fiscal_year" yaml:"fiscal_year"`
	Period        int             `csv:"period" json:"period" yaml:"period"`
	CostClass     string          `csv:"cost_class" json:"cost_class" yaml:"cost_class"`
	CostCenter    string          `csv:"cost_center" json:"cost_center" yaml:"cost_center"`
	CostGroup     string          `csv:"cost_group" json:"cost_group" yaml:"cost_group"`
	Area          string          `csv:"area" json:"area,omitempty" yaml:"area,omitempty"`
	AccountFamily string          `csv:"account_family" json:"account_family,omitempty" yaml:"account_family,omitempty"`
	Description   string          `csv:"description" json:"description,omitempty" yaml:"description,omitempty"`
	Amount        decimal.Decimal `csv:"amount" json:"amount" yaml:"amount"`
	OrderRef      string          `csv:"order_ref" json:"order_ref,omitempty" yaml:"order_ref,omitempty"`
	Process       string          `csv:"process" json:"process,omitempty" yaml:"process,omitempty"`
	Site          string          `csv:"site" json:"site,omitempty" yaml:"site,omitempty"`
	Resolution    Resolution      `csv:"resolution" json:"resolution" yaml:"resolution"`
}

// HasOrder reports whether the row is tied to an operational order.
func (t *Transaction) HasOrder() bool {
	return t.OrderRef != ""
}

// IsCharge reports whether the amount is a charge (zero counts as a charge).
func (t *Transaction) IsCharge() bool {
	return !t.Amount.IsNegative()
}

// Key returns the matching partition the row belongs to.
func (t *Transaction) Key() PartitionKey {
	return PartitionKey{CostClass: t.CostClass, CostCenter: t.CostCenter}
}

// Classified reports whether both classification fields are set, the
// unclassified sentinel included.
func (t *Transaction) Classified() bool {
	return t.Process != "" && t.Site != ""
}

// Bucket returns the reporting period the row is aggregated into.
func (t *Transaction) Bucket() PeriodKey {
	return PeriodKey{Year: t.FiscalYear, Period: t.Period}
}

// PartitionKey identifies a (cost class, cost center) matching partition.
type PartitionKey struct {
	CostClass  string
	CostCenter string
}

func (k PartitionKey) String() string {
	return fmt.Sprintf("%s|%s", k.CostClass, k.CostCenter)
}

// Less orders partition keys by cost class, then cost center.
func (k PartitionKey) Less(other PartitionKey) bool {
	if k.CostClass != other.CostClass {
		return k.CostClass < other.CostClass
	}
	return k.CostCenter < other.CostCenter
}

// PeriodKey identifies a (year, period) reporting bucket.
type PeriodKey struct {
	Year   int `json:"year" yaml:"year" xml:"year"`
	Period int `json:"period" yaml:"period" xml:"period"`
}

// Less orders period keys chronologically.
func (k PeriodKey) Less(other PeriodKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Period < other.Period
}

func (k PeriodKey) String() string {
	return fmt.Sprintf("%d-%02d", k.Year, k.Period)
}

// ValidPeriod reports whether p is a month-in-year.
func ValidPeriod(p int) bool {
	return p >= MinPeriod && p <= MaxPeriod
}
