// Package reconcile joins the actual-spend series with the budget series and
// derives the cumulative budget utilisation.
package reconcile

import (
	"fjacquet/budget-monitor/internal/logging"
	"fjacquet/budget-monitor/internal/models"

	"github.com/shopspring/decimal"
)

// RatioPlaces is the precision of the utilisation ratio.
const RatioPlaces = 6

// DefaultMildOverrun is the overrun fraction still reported as mildly over.
var DefaultMildOverrun = decimal.NewFromFloat(0.10)

// Status is the budget utilisation tier.
type Status string

const (
	Undefined      Status = "undefined"
	OnBudget       Status = "on_budget"
	MildlyOver     Status = "mildly_over"
	MateriallyOver Status = "materially_over"
)

// Row is one period of the actual-vs-budget table.
type Row struct {
	Year       int             `csv:"year" json:"year" yaml:"year" xml:"year"`
	Month      int             `csv:"month" json:"month" yaml:"month" xml:"month"`
	Actual     decimal.Decimal `csv:"actual_amount" json:"actual_amount" yaml:"actual_amount" xml:"actual_amount"`
	Budget     decimal.Decimal `csv:"budgeted_amount" json:"budgeted_amount" yaml:"budgeted_amount" xml:"budgeted_amount"`
	Difference decimal.Decimal `csv:"difference" json:"difference" yaml:"difference" xml:"difference"`
}

// Bucket returns the row's period key.
func (r Row) Bucket() models.PeriodKey {
	return models.PeriodKey{Year: r.Year, Period: r.Month}
}

// Report is the reconciliation output.
type Report struct {
	Rows             []Row
	CumulativeActual decimal.Decimal
	CumulativeBudget decimal.Decimal
	// AsOf is the latest period with actual data; nil when there is none.
	AsOf   *models.PeriodKey
	Ratio  models.Ratio
	Status Status
}

// Reconciler builds reports.
type Reconciler struct {
	mildOverrun decimal.Decimal
	logger      logging.Logger
}

// NewReconciler creates a reconciler. A negative mild overrun means
// DefaultMildOverrun.
func NewReconciler(mildOverrun decimal.Decimal, logger logging.Logger) *Reconciler {
	if mildOverrun.IsNegative() {
		mildOverrun = DefaultMildOverrun
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Reconciler{mildOverrun: mildOverrun, logger: logger}
}

// Reconcile full-outer-joins actual and budget on (year, period). Missing
// sides are zero; repeated periods within one series are summed.
func (r *Reconciler) Reconcile(actual, budget []models.SeriesPoint) *Report {
	type pair struct{ actual, budget decimal.Decimal }
	joined := make(map[models.PeriodKey]*pair)
	get := func(key models.PeriodKey) *pair {
		p, ok := joined[key]
		if !ok {
			p = &pair{}
			joined[key] = p
		}
		return p
	}

	report := &Report{}
	for _, point := range actual {
		p := get(point.Bucket)
		p.actual = p.actual.Add(point.Amount)
		if report.AsOf == nil || report.AsOf.Less(point.Bucket) {
			asOf := point.Bucket
			report.AsOf = &asOf
		}
	}
	for _, point := range budget {
		p := get(point.Bucket)
		p.budget = p.budget.Add(point.Amount)
	}

	keys := make([]models.SeriesPoint, 0, len(joined))
	for key := range joined {
		keys = append(keys, models.SeriesPoint{Bucket: key})
	}
	models.SortSeries(keys)

	report.Rows = make([]Row, 0, len(keys))
	for _, k := range keys {
		p := joined[k.Bucket]
		report.Rows = append(report.Rows, Row{
			Year:       k.Bucket.Year,
			Month:      k.Bucket.Period,
			Actual:     p.actual,
			Budget:     p.budget,
			Difference: p.actual.Sub(p.budget),
		})
		if report.AsOf != nil && !report.AsOf.Less(k.Bucket) {
			report.CumulativeActual = report.CumulativeActual.Add(p.actual)
			report.CumulativeBudget = report.CumulativeBudget.Add(p.budget)
		}
	}

	report.Ratio = models.NewRatio(report.CumulativeActual, report.CumulativeBudget, RatioPlaces)
	report.Status = r.status(report.Ratio)

	r.logger.Info("Reconciliation completed",
		logging.F("periods", len(report.Rows)),
		logging.F("cumulative_actual", report.CumulativeActual.String()),
		logging.F("cumulative_budget", report.CumulativeBudget.String()),
		logging.F("ratio", report.Ratio.String()),
		logging.F(logging.FieldStatus, string(report.Status)))
	return report
}

func (r *Reconciler) status(ratio models.Ratio) Status {
	if !ratio.Defined {
		return Undefined
	}
	one := decimal.NewFromInt(1)
	switch {
	case ratio.Value.LessThanOrEqual(one):
		return OnBudget
	case ratio.Value.LessThanOrEqual(one.Add(r.mildOverrun)):
		return MildlyOver
	default:
		return MateriallyOver
	}
}
