// Package resolver assigns a process and a site to every transaction through
// a two-tier cascade: the order tier first, then the cost-center fallback for
// rows the order tier left entirely unset.
package resolver

import (
	"strings"

	"fjacquet/budget-monitor/internal/logging"
	"fjacquet/budget-monitor/internal/models"
	"fjacquet/budget-monitor/internal/parsererror"
)

const lookupSource = "lookup tables"

// Resolver runs the classification cascade.
type Resolver struct {
	primary      Tier
	fallback     Tier
	unclassified string
	logger       logging.Logger
}

// NewResolver checks that all three tables are present and builds the
// cascade. A missing table is a SchemaViolationError. An empty unclassified
// label means models.UnclassifiedLabel.
func NewResolver(tables *models.LookupTables, unclassified string, logger logging.Logger) (*Resolver, error) {
	if tables == nil {
		return nil, &parsererror.SchemaViolationError{Source: lookupSource, Reason: "no lookup tables loaded"}
	}
	missing := map[string]bool{
		"order_to_unit":   tables.OrderToUnit == nil,
		"unit_to_class":   tables.UnitToClass == nil,
		"center_to_class": tables.CenterToClass == nil,
	}
	for _, name := range []string{"order_to_unit", "unit_to_class", "center_to_class"} {
		if missing[name] {
			return nil, &parsererror.SchemaViolationError{Source: lookupSource, Column: name, Reason: "table is missing"}
		}
	}

	if strings.TrimSpace(unclassified) == "" {
		unclassified = models.UnclassifiedLabel
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	return &Resolver{
		primary:      NewOrderTier(tables.OrderToUnit, tables.UnitToClass),
		fallback:     NewCenterTier(tables.CenterToClass),
		unclassified: unclassified,
		logger:       logger,
	}, nil
}

// ResolveOne classifies a single transaction in place.
func (r *Resolver) ResolveOne(tx *models.Transaction) {
	if outcome, found := r.primary.Resolve(tx); found {
		r.apply(tx, outcome, models.Resolution{Kind: models.ResolvedByOrder, Unit: outcome.Unit})
		return
	}
	if outcome, found := r.fallback.Resolve(tx); found {
		r.apply(tx, outcome, models.Resolution{Kind: models.ResolvedByCenter})
		return
	}

	tx.Process = r.unclassified
	tx.Site = r.unclassified
	tx.Resolution = models.Resolution{Kind: models.Unclassified}
}

// apply fills the missing half of a partial classification with the
// unclassified label so that no field is left empty.
func (r *Resolver) apply(tx *models.Transaction, outcome Outcome, resolution models.Resolution) {
	resolution.Partial = outcome.Partial()
	tx.Process = orDefault(outcome.Class.Process, r.unclassified)
	tx.Site = orDefault(outcome.Class.Site, r.unclassified)
	tx.Resolution = resolution
}

// Resolve returns classified copies of txs, in order, and the run's counts.
func (r *Resolver) Resolve(txs []models.Transaction) ([]models.Transaction, models.ResolutionStats) {
	out := make([]models.Transaction, len(txs))
	var stats models.ResolutionStats
	for i := range txs {
		out[i] = txs[i]
		r.ResolveOne(&out[i])
		stats.Record(&out[i])
		if out[i].Resolution.Kind == models.Unclassified {
			r.logger.Debug("Transaction left unclassified",
				logging.F(logging.FieldTransactionID, out[i].ID),
				logging.F("cost_center", out[i].CostCenter),
				logging.F("order_ref", out[i].OrderRef))
		}
	}
	stats.LogSummary(r.logger)
	return out, stats
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
