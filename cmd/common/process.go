// Package common contains shared functionality for command handlers
package common

import (
	"fmt"

	"fjacquet/budget-monitor/internal/ingest"
	"fjacquet/budget-monitor/internal/logging"
	"fjacquet/budget-monitor/internal/models"
)

// SourceLoader reads the delimited inputs of a run. *ingest.Loader
// implements it.
type SourceLoader interface {
	LoadTransactionsFile(path string) (*ingest.TransactionLoad, error)
	LoadBudgetFile(path string) (*ingest.BudgetLoad, error)
	LoadLookupFiles(ordersPath, unitsPath, centersPath string) (*models.LookupTables, error)
}

// LookupLoader reads lookup tables from a single document.
// *store.LookupStore implements it.
type LookupLoader interface {
	Load() (*models.LookupTables, error)
}

// LookupFiles names the three CSV lookup tables. When all are empty the
// YAML lookup store is used instead.
type LookupFiles struct {
	Orders  string
	Units   string
	Centers string
}

// IsZero reports whether no CSV table was given.
func (f LookupFiles) IsZero() bool {
	return f.Orders == "" && f.Units == "" && f.Centers == ""
}

// LoadTransactions reads the ledger and logs every dropped or coerced row.
func LoadTransactions(l SourceLoader, path string, log logging.Logger) (*ingest.TransactionLoad, error) {
	load, err := l.LoadTransactionsFile(path)
	if err != nil {
		return nil, fmt.Errorf("error loading transactions: %w", err)
	}
	ReportIssues(log, "rejected", load.Rejected)
	ReportIssues(log, "coerced", load.Coerced)
	return load, nil
}

// LoadBudget reads the budget source. An empty path yields no entries.
func LoadBudget(l SourceLoader, path string, log logging.Logger) (*ingest.BudgetLoad, error) {
	if path == "" {
		log.Warn("No budget file given, every period is compared against zero")
		return &ingest.BudgetLoad{}, nil
	}
	load, err := l.LoadBudgetFile(path)
	if err != nil {
		return nil, fmt.Errorf("error loading budget: %w", err)
	}
	ReportIssues(log, "rejected", load.Rejected)
	ReportIssues(log, "coerced", load.Coerced)
	return load, nil
}

// LoadLookups reads the three CSV tables when given, the YAML store otherwise.
func LoadLookups(l SourceLoader, yamlStore LookupLoader, files LookupFiles, log logging.Logger) (*models.LookupTables, error) {
	var (
		tables *models.LookupTables
		err    error
	)
	if files.IsZero() {
		tables, err = yamlStore.Load()
	} else {
		tables, err = l.LoadLookupFiles(files.Orders, files.Units, files.Centers)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading lookup tables: %w", err)
	}

	d := tables.Duplicates
	if d.Orders+d.Units+d.Centers > 0 {
		log.Warn("Duplicate lookup keys overwritten",
			logging.F("orders", d.Orders),
			logging.F("units", d.Units),
			logging.F("centers", d.Centers))
	}
	return tables, nil
}

// ReportIssues logs one warning per issue.
func ReportIssues(log logging.Logger, kind string, issues []ingest.Issue) {
	for _, issue := range issues {
		log.Warn("Row "+kind,
			logging.F(logging.FieldReason, issue.String()),
			logging.F(logging.FieldTransactionID, issue.TransactionID))
	}
}
