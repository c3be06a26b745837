package ingest

import (
	"fmt"
	"io"
	"strings"

	"fjacquet/budget-monitor/internal/common"
	"fjacquet/budget-monitor/internal/fileutils"
	"fjacquet/budget-monitor/internal/logging"
	"fjacquet/budget-monitor/internal/models"
)

// RequiredBudgetColumns must be present in every budget source.
var RequiredBudgetColumns = []string{"year", "month", "amount"}

type budgetRow struct {
	Year      string `csv:"year"`
	Month     string `csv:"month"`
	Amount    string `csv:"amount"`
	Process   string `csv:"process"`
	Site      string `csv:"site"`
	Area      string `csv:"area"`
	CostClass string `csv:"cost_class"`
}

// BudgetLoad is the outcome of reading one budget source.
type BudgetLoad struct {
	Entries  []models.BudgetEntry
	Rejected []Issue
	Coerced  []Issue
}

// LoadBudgetFile reads the budget source at path.
func (l *Loader) LoadBudgetFile(path string) (*BudgetLoad, error) {
	file, err := fileutils.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("error opening budget source: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			l.logger.WithError(err).Warn("Failed to close file")
		}
	}()
	return l.LoadBudget(file, path)
}

// LoadBudget reads budget entries from r under the same policy as
// transactions.
func (l *Loader) LoadBudget(r io.Reader, source string) (*BudgetLoad, error) {
	opts := l.readOptions(source, l.opts.BudgetColumns, RequiredBudgetColumns)
	rows, err := common.ReadCSV[budgetRow](r, opts, l.logger)
	if err != nil {
		return nil, err
	}

	load := &BudgetLoad{Entries: make([]models.BudgetEntry, 0, len(rows))}
	for i, row := range rows {
		line := i + 1
		year, issue := parseYear(source, line, "year", row.Year)
		if issue != nil {
			load.Rejected = append(load.Rejected, Issue{Err: issue})
			continue
		}
		month, issue := parsePeriod(source, line, "month", row.Month)
		if issue != nil {
			load.Rejected = append(load.Rejected, Issue{Err: issue})
			continue
		}
		amount, issue, ok := l.parseAmount(source, line, row.Amount)
		if !ok {
			load.Rejected = append(load.Rejected, Issue{Err: issue})
			continue
		}
		if issue != nil {
			load.Coerced = append(load.Coerced, Issue{Err: issue})
		}

		load.Entries = append(load.Entries, models.BudgetEntry{
			Year:      year,
			Month:     month,
			Process:   strings.TrimSpace(row.Process),
			Site:      strings.TrimSpace(row.Site),
			Area:      strings.TrimSpace(row.Area),
			CostClass: strings.TrimSpace(row.CostClass),
			Amount:    amount,
		})
	}

	l.logger.Info("Loaded budget entries",
		logging.F(logging.FieldSource, source),
		logging.F(logging.FieldCount, len(load.Entries)),
		logging.F("rejected", len(load.Rejected)),
		logging.F("coerced", len(load.Coerced)))
	return load, nil
}
