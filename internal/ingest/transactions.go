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

// RequiredTransactionColumns must be present in every transaction source.
var RequiredTransactionColumns = []string{"fiscal_year", "period", "cost_class", "cost_center", "amount"}

// transactionRow is the raw, string-typed shape of one ledger line after
// header renaming.
type transactionRow struct {
	FiscalYear    string `csv:"fiscal_year"`
	Period        string `csv:"period"`
	CostClass     string `csv:"cost_class"`
	CostCenter    string `csv:"cost_center"`
	CostGroup     string `csv:"cost_group"`
	Area          string `csv:"area"`
	AccountFamily string `csv:"account_family"`
	Description   string `csv:"description"`
	Amount        string `csv:"amount"`
	OrderRef      string `csv:"order_ref"`
}

// TransactionLoad is the outcome of reading one transaction source.
type TransactionLoad struct {
	Transactions []models.Transaction
	Rejected     []Issue
	Coerced      []Issue
}

// LoadTransactionsFile reads the transaction source at path.
func (l *Loader) LoadTransactionsFile(path string) (*TransactionLoad, error) {
	file, err := fileutils.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("error opening transaction source: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			l.logger.WithError(err).Warn("Failed to close file")
		}
	}()
	return l.LoadTransactions(file, path)
}

// LoadTransactions reads ledger lines from r. Missing required columns are a
// SchemaViolationError; malformed amounts follow the policy; malformed years
// and periods always reject the row.
func (l *Loader) LoadTransactions(r io.Reader, source string) (*TransactionLoad, error) {
	opts := l.readOptions(source, l.opts.TransactionColumns, RequiredTransactionColumns)
	rows, err := common.ReadCSV[transactionRow](r, opts, l.logger)
	if err != nil {
		return nil, err
	}

	load := &TransactionLoad{Transactions: make([]models.Transaction, 0, len(rows))}
	for i, row := range rows {
		line := i + 1

		year, issue := parseYear(source, line, "fiscal_year", row.FiscalYear)
		if issue != nil {
			load.Rejected = append(load.Rejected, Issue{Err: issue})
			continue
		}
		period, issue := parsePeriod(source, line, "period", row.Period)
		if issue != nil {
			load.Rejected = append(load.Rejected, Issue{Err: issue})
			continue
		}
		amount, issue, ok := l.parseAmount(source, line, row.Amount)
		if !ok {
			load.Rejected = append(load.Rejected, Issue{Err: issue})
			continue
		}

		tx := models.Transaction{
			ID:            l.opts.NewID(),
			Seq:           len(load.Transactions),
			FiscalYear:    year,
			Period:        period,
			CostClass:     strings.TrimSpace(row.CostClass),
			CostCenter:    strings.TrimSpace(row.CostCenter),
			CostGroup:     strings.TrimSpace(row.CostGroup),
			Area:          strings.TrimSpace(row.Area),
			AccountFamily: strings.TrimSpace(row.AccountFamily),
			Description:   strings.TrimSpace(row.Description),
			Amount:        amount,
			OrderRef:      strings.TrimSpace(row.OrderRef),
		}
		if issue != nil {
			load.Coerced = append(load.Coerced, Issue{TransactionID: tx.ID, Err: issue})
		}
		load.Transactions = append(load.Transactions, tx)
	}

	for _, issue := range load.Rejected {
		l.logger.Warn("Rejected malformed row",
			logging.F(logging.FieldSource, source),
			logging.F(logging.FieldReason, issue.String()))
	}
	l.logger.Info("Loaded transactions",
		logging.F(logging.FieldSource, source),
		logging.F(logging.FieldCount, len(load.Transactions)),
		logging.F("rejected", len(load.Rejected)),
		logging.F("coerced", len(load.Coerced)))
	return load, nil
}
