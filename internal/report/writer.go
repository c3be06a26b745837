// Package report writes a reconciliation run to disk: CSV tables for the
// kept, removed and excluded rows, the period comparison, the allocation
// breakdown and the matched pairs, plus a summary document.
package report

import (
	"path/filepath"

	"fjacquet/budget-monitor/internal/allocator"
	"fjacquet/budget-monitor/internal/common"
	"fjacquet/budget-monitor/internal/fileutils"
	"fjacquet/budget-monitor/internal/logging"
	"fjacquet/budget-monitor/internal/matcher"
	"fjacquet/budget-monitor/internal/models"
	"fjacquet/budget-monitor/internal/pipeline"
	"fjacquet/budget-monitor/internal/reconcile"
)

// Output file names.
const (
	KeptFile       = "kept.csv"
	RemovedFile    = "removed.csv"
	ExcludedFile   = "excluded.csv"
	PairsFile      = "pairs.csv"
	PeriodsFile    = "periods.csv"
	AllocationFile = "allocation.csv"
	summaryBase    = "summary"
)

const amountPlaces = 2

type transactionRecord struct {
	ID          string `csv:"id"`
	FiscalYear  int    `csv:"fiscal_year"`
	Period      int    `csv:"period"`
	CostClass   string `csv:"cost_class"`
	CostCenter  string `csv:"cost_center"`
	CostGroup   string `csv:"cost_group"`
	Area        string `csv:"area"`
	Family      string `csv:"account_family"`
	Description string `csv:"description"`
	OrderRef    string `csv:"order_ref"`
	Amount      string `csv:"amount"`
	Process     string `csv:"process"`
	Site        string `csv:"site"`
	Resolution  string `csv:"resolution"`
}

type pairRecord struct {
	CostClass      string `csv:"cost_class"`
	CostCenter     string `csv:"cost_center"`
	ChargeID       string `csv:"charge_id"`
	ReversalID     string `csv:"reversal_id"`
	ChargePeriod   int    `csv:"charge_period"`
	ReversalPeriod int    `csv:"reversal_period"`
	Amount         string `csv:"amount"`
}

type periodRecord struct {
	Year       int    `csv:"year"`
	Month      int    `csv:"month"`
	Actual     string `csv:"actual_amount"`
	Budget     string `csv:"budgeted_amount"`
	Difference string `csv:"difference"`
}

type allocationRecord struct {
	Year        int    `csv:"year"`
	Period      int    `csv:"period"`
	Process     string `csv:"process"`
	Site        string `csv:"site"`
	Direct      string `csv:"direct"`
	Distributed string `csv:"distributed"`
	Total       string `csv:"total"`
	Status      string `csv:"status"`
}

// Writer writes run outputs into one directory.
type Writer struct {
	dir       string
	delimiter rune
	generator *ReportGenerator
	logger    logging.Logger
}

// NewWriter creates a writer for dir using delimiter for every CSV file.
func NewWriter(dir string, delimiter rune, logger logging.Logger) *Writer {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Writer{
		dir:       dir,
		delimiter: delimiter,
		generator: NewReportGenerator(logger),
		logger:    logger,
	}
}

func (w *Writer) path(name string) string {
	return filepath.Join(w.dir, name)
}

// WriteTransactions writes txs to name with amounts fixed at two decimals.
func (w *Writer) WriteTransactions(name string, txs []models.Transaction) error {
	records := make([]transactionRecord, len(txs))
	for i := range txs {
		tx := &txs[i]
		resolution, _ := tx.Resolution.MarshalCSV()
		records[i] = transactionRecord{
			ID:          tx.ID,
			FiscalYear:  tx.FiscalYear,
			Period:      tx.Period,
			CostClass:   tx.CostClass,
			CostCenter:  tx.CostCenter,
			CostGroup:   tx.CostGroup,
			Area:        tx.Area,
			Family:      tx.AccountFamily,
			Description: tx.Description,
			OrderRef:    tx.OrderRef,
			Amount:      tx.Amount.StringFixed(amountPlaces),
			Process:     tx.Process,
			Site:        tx.Site,
			Resolution:  resolution,
		}
	}
	return common.WriteCSVFile(w.path(name), records, w.delimiter, w.logger)
}

// WritePairs writes the matched (charge, reversal) couples.
func (w *Writer) WritePairs(pairs []matcher.Pair) error {
	records := make([]pairRecord, len(pairs))
	for i, p := range pairs {
		records[i] = pairRecord{
			CostClass:      p.Partition.CostClass,
			CostCenter:     p.Partition.CostCenter,
			ChargeID:       p.ChargeID,
			ReversalID:     p.ReversalID,
			ChargePeriod:   p.ChargePeriod,
			ReversalPeriod: p.ReversalPeriod,
			Amount:         p.Amount.StringFixed(amountPlaces),
		}
	}
	return common.WriteCSVFile(w.path(PairsFile), records, w.delimiter, w.logger)
}

// WritePeriods writes the actual-vs-budget table.
func (w *Writer) WritePeriods(rows []reconcile.Row) error {
	records := make([]periodRecord, len(rows))
	for i, r := range rows {
		records[i] = periodRecord{
			Year:       r.Year,
			Month:      r.Month,
			Actual:     r.Actual.StringFixed(amountPlaces),
			Budget:     r.Budget.StringFixed(amountPlaces),
			Difference: r.Difference.StringFixed(amountPlaces),
		}
	}
	return common.WriteCSVFile(w.path(PeriodsFile), records, w.delimiter, w.logger)
}

// WriteAllocations writes one line per (year, period, process, site). A
// bucket whose overhead had no target gets an extra line for the
// undistributed amount under process and site "-".
func (w *Writer) WriteAllocations(allocs []allocator.PeriodAllocation) error {
	var records []allocationRecord
	for i := range allocs {
		a := &allocs[i]
		for _, c := range a.Categories {
			records = append(records, allocationRecord{
				Year:        a.Bucket.Year,
				Period:      a.Bucket.Period,
				Process:     c.Process,
				Site:        c.Site,
				Direct:      c.Direct.StringFixed(amountPlaces),
				Distributed: c.Distributed.StringFixed(amountPlaces),
				Total:       c.Total.StringFixed(amountPlaces),
				Status:      string(a.Status),
			})
		}
		if a.Status == allocator.NoTarget {
			records = append(records, allocationRecord{
				Year:        a.Bucket.Year,
				Period:      a.Bucket.Period,
				Process:     "-",
				Site:        "-",
				Direct:      a.Undistributed.StringFixed(amountPlaces),
				Distributed: "0.00",
				Total:       a.Undistributed.StringFixed(amountPlaces),
				Status:      string(a.Status),
			})
		}
	}
	return common.WriteCSVFile(w.path(AllocationFile), records, w.delimiter, w.logger)
}

// WriteSummary renders summary in format and returns the written path.
func (w *Writer) WriteSummary(summary *Summary, format string) (string, error) {
	data, err := w.generator.GenerateReport(summary, format)
	if err != nil {
		return "", err
	}
	target := w.path(summaryBase + "." + format)
	if err := fileutils.WriteFile(target, data, models.PermissionReportFile); err != nil {
		return "", err
	}
	w.logger.Info("Wrote summary", logging.F(logging.FieldOutputFile, target))
	return target, nil
}

// WriteDedup writes the outputs of a matching-only run.
func (w *Writer) WriteDedup(result *pipeline.Result) error {
	if err := fileutils.EnsureDirectoryExists(w.dir); err != nil {
		return err
	}
	if err := w.WriteTransactions(KeptFile, result.Kept); err != nil {
		return err
	}
	if err := w.WriteTransactions(RemovedFile, result.Removed); err != nil {
		return err
	}
	if err := w.WriteTransactions(ExcludedFile, result.Excluded); err != nil {
		return err
	}
	return w.WritePairs(result.Pairs)
}

// WriteAll writes every CSV table and the summary.
func (w *Writer) WriteAll(result *pipeline.Result, summary *Summary, format string) error {
	if err := w.WriteDedup(result); err != nil {
		return err
	}
	if result.Report != nil {
		if err := w.WritePeriods(result.Report.Rows); err != nil {
			return err
		}
	}
	if err := w.WriteAllocations(result.Allocations); err != nil {
		return err
	}
	_, err := w.WriteSummary(summary, format)
	return err
}
