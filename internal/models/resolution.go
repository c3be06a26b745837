package models

import (
	"github.com/shopspring/decimal"

	"fjacquet/budget-monitor/internal/logging"
)

// ResolutionKind tags how a transaction obtained its process and site.
type ResolutionKind string

const (
	// ResolutionPending is the zero value: the resolver has not run yet.
	ResolutionPending ResolutionKind = ""
	// ResolvedByOrder means order_ref -> unit -> (process, site) succeeded.
	ResolvedByOrder ResolutionKind = "order"
	// ResolvedByCenter means the cost-center fallback supplied the class.
	ResolvedByCenter ResolutionKind = "cost_center"
	// Unclassified means neither tier resolved the row.
	Unclassified ResolutionKind = "unclassified"
)

// Resolution is the tagged result of the two-tier category cascade.
// Partial is set when the order tier matched a unit whose classification
// lacks one of process or site; such rows are not eligible for fallback.
type Resolution struct {
	Kind    ResolutionKind `json:"kind" yaml:"kind" xml:"kind"`
	Unit    string         `json:"unit,omitempty" yaml:"unit,omitempty" xml:"unit,omitempty"`
	Partial bool           `json:"partial,omitempty" yaml:"partial,omitempty" xml:"partial,omitempty"`
}

// Resolved reports whether either tier classified the row.
func (r Resolution) Resolved() bool {
	return r.Kind == ResolvedByOrder || r.Kind == ResolvedByCenter
}

// MarshalCSV renders the resolution as a single CSV cell.
func (r Resolution) MarshalCSV() (string, error) {
	if r.Partial {
		return string(r.Kind) + "+partial", nil
	}
	return string(r.Kind), nil
}

// ResolutionStats counts resolver outcomes for one run.
type ResolutionStats struct {
	Total        int             `json:"total" yaml:"total" xml:"total"`
	ByOrder      int             `json:"by_order" yaml:"by_order" xml:"by_order"`
	ByCenter     int             `json:"by_center" yaml:"by_center" xml:"by_center"`
	Unclassified int             `json:"unclassified" yaml:"unclassified" xml:"unclassified"`
	Partial      int             `json:"partial" yaml:"partial" xml:"partial"`
	Unresolved   decimal.Decimal `json:"unclassified_amount" yaml:"unclassified_amount" xml:"unclassified_amount"`
}

// Record tallies one resolved transaction.
func (s *ResolutionStats) Record(tx *Transaction) {
	s.Total++
	switch tx.Resolution.Kind {
	case ResolvedByOrder:
		s.ByOrder++
	case ResolvedByCenter:
		s.ByCenter++
	case Unclassified:
		s.Unclassified++
		s.Unresolved = s.Unresolved.Add(tx.Amount)
	}
	if tx.Resolution.Partial {
		s.Partial++
	}
}

// ResolvedRate returns the share of rows classified by either tier, in percent.
func (s ResolutionStats) ResolvedRate() float64 {
	if s.Total == 0 {
		return 0.0
	}
	return float64(s.ByOrder+s.ByCenter) / float64(s.Total) * 100.0
}

// LogSummary logs a summary of resolution statistics
func (s ResolutionStats) LogSummary(logger logging.Logger) {
	if logger == nil {
		return
	}

	logger.Info("Classification summary",
		logging.F("total_transactions", s.Total),
		logging.F("by_order", s.ByOrder),
		logging.F("by_cost_center", s.ByCenter),
		logging.F("unclassified", s.Unclassified),
		logging.F("partial", s.Partial),
		logging.F("resolved_rate", s.ResolvedRate()),
	)
}
