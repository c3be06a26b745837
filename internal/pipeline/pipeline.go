// Package pipeline chains the reconciliation stages: group exclusion,
// reversal matching, classification, dimension filtering, overhead
// allocation and the budget comparison.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"fjacquet/budget-monitor/internal/allocator"
	"fjacquet/budget-monitor/internal/config"
	"fjacquet/budget-monitor/internal/filter"
	"fjacquet/budget-monitor/internal/logging"
	"fjacquet/budget-monitor/internal/matcher"
	"fjacquet/budget-monitor/internal/models"
	"fjacquet/budget-monitor/internal/reconcile"
	"fjacquet/budget-monitor/internal/resolver"

	"github.com/shopspring/decimal"
)

// Options configures a Pipeline.
type Options struct {
	ExcludedGroups    []string
	OverheadLabel     string
	UnclassifiedLabel string
	Workers           int
	ParallelThreshold int
	Places            int32
	MildOverrun       decimal.Decimal
}

// OptionsFromConfig maps the application configuration onto pipeline options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ExcludedGroups:    cfg.Ingest.ExcludedGroups,
		OverheadLabel:     cfg.Classification.Overhead,
		UnclassifiedLabel: cfg.Classification.Unclassified,
		Workers:           cfg.Matcher.Workers,
		ParallelThreshold: cfg.Matcher.ParallelThreshold,
		Places:            cfg.Allocation.Places,
		MildOverrun:       decimal.NewFromFloat(cfg.Report.MildOverrunRatio),
	}
}

// Input is one run's data. Rejected and Coerced carry the loader's counts
// into the diagnostics.
type Input struct {
	Transactions []models.Transaction
	Budget       []models.BudgetEntry
	Lookups      *models.LookupTables
	Filter       filter.Dimensions
	Rejected     int
	Coerced      int
}

// Diagnostics counts what each stage dropped, flagged or could not handle.
type Diagnostics struct {
	Ingested        int  `json:"ingested" yaml:"ingested" xml:"ingested"`
	ExcludedByGroup int  `json:"excluded_by_group" yaml:"excluded_by_group" xml:"excluded_by_group"`
	Rejected        int  `json:"rejected" yaml:"rejected" xml:"rejected"`
	Coerced         int  `json:"coerced" yaml:"coerced" xml:"coerced"`
	RemovedPairs    int  `json:"removed_pairs" yaml:"removed_pairs" xml:"removed_pairs"`
	Unclassified    int  `json:"unclassified" yaml:"unclassified" xml:"unclassified"`
	Partial         int  `json:"partial" yaml:"partial" xml:"partial"`
	FilteredOut     int  `json:"filtered_out" yaml:"filtered_out" xml:"filtered_out"`
	NoTargetBuckets int  `json:"no_target_buckets" yaml:"no_target_buckets" xml:"no_target_buckets"`
	UndefinedRatio  bool `json:"undefined_ratio" yaml:"undefined_ratio" xml:"undefined_ratio"`
}

// Result holds every stage's output. Kept and Removed are classified; the
// dedup-only run leaves them unclassified and the later fields empty.
type Result struct {
	Excluded    []models.Transaction
	Kept        []models.Transaction
	Removed     []models.Transaction
	Pairs       []matcher.Pair
	Classified  []models.Transaction
	Resolution  models.ResolutionStats
	Allocations []allocator.PeriodAllocation
	Report      *reconcile.Report
	Diagnostics Diagnostics
}

// Pipeline runs the stages in a fixed order. It holds no per-run state and
// may be reused.
type Pipeline struct {
	opts       Options
	logger     logging.Logger
	exclusion  *filter.GroupExclusion
	matcher    *matcher.Matcher
	allocator  *allocator.Allocator
	reconciler *reconcile.Reconciler
}

// New wires a pipeline from opts.
func New(opts Options, logger logging.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if opts.UnclassifiedLabel == "" {
		opts.UnclassifiedLabel = models.UnclassifiedLabel
	}
	return &Pipeline{
		opts:       opts,
		logger:     logger,
		exclusion:  filter.NewGroupExclusion(opts.ExcludedGroups),
		matcher:    matcher.NewMatcher(logger.WithField(logging.FieldStage, "matcher"), opts.Workers, opts.ParallelThreshold),
		allocator:  allocator.NewAllocator(opts.OverheadLabel, opts.Places, logger.WithField(logging.FieldStage, "allocator")),
		reconciler: reconcile.NewReconciler(opts.MildOverrun, logger.WithField(logging.FieldStage, "reconcile")),
	}
}

// Dedup runs group exclusion and reversal matching only.
func (p *Pipeline) Dedup(ctx context.Context, txs []models.Transaction) (*Result, error) {
	result := &Result{Diagnostics: Diagnostics{Ingested: len(txs)}}
	retained, excluded := p.exclusion.Apply(txs)
	result.Excluded = excluded
	result.Diagnostics.ExcludedByGroup = len(excluded)

	matched, err := p.matcher.Match(ctx, models.NewRecordSet(retained))
	if err != nil {
		return nil, fmt.Errorf("reversal matching failed: %w", err)
	}
	result.Kept = matched.Kept
	result.Removed = matched.Removed
	result.Pairs = matched.Pairs
	result.Diagnostics.RemovedPairs = len(matched.Pairs)
	return result, nil
}

// Run executes every stage over in. Only a precondition failure or a
// canceled context aborts; everything else is reported in Diagnostics.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Result, error) {
	start := time.Now()

	res, err := resolver.NewResolver(in.Lookups, p.opts.UnclassifiedLabel, p.logger.WithField(logging.FieldStage, "resolver"))
	if err != nil {
		return nil, err
	}

	result, err := p.Dedup(ctx, in.Transactions)
	if err != nil {
		return nil, err
	}
	result.Diagnostics.Rejected = in.Rejected
	result.Diagnostics.Coerced = in.Coerced

	result.Classified, result.Resolution = res.Resolve(result.Kept)
	result.Kept = result.Classified
	for i := range result.Removed {
		res.ResolveOne(&result.Removed[i])
	}
	result.Diagnostics.Unclassified = result.Resolution.Unclassified
	result.Diagnostics.Partial = result.Resolution.Partial

	// Row dimensions apply before allocation; process and site select the
	// allocated categories so the overhead share stays with them.
	selected := in.Filter.WithoutCategory().Transactions(result.Classified)
	result.Diagnostics.FilteredOut = len(result.Classified) - len(selected)
	budget := in.Filter.Budget(in.Budget)

	allocations := p.allocator.Allocate(selected)
	for i := range allocations {
		if allocations[i].Status == allocator.NoTarget {
			result.Diagnostics.NoTargetBuckets++
		}
	}
	if in.Filter.SelectsCategory() {
		allocations = allocator.Select(allocations, func(c allocator.CategoryTotal) bool {
			return in.Filter.MatchCategory(c.Process, c.Site)
		})
	}
	result.Allocations = allocations

	result.Report = p.reconciler.Reconcile(allocator.ActualSeries(result.Allocations), models.BudgetSeries(budget))
	result.Diagnostics.UndefinedRatio = !result.Report.Ratio.Defined

	p.logger.Info("Pipeline completed",
		logging.F("ingested", result.Diagnostics.Ingested),
		logging.F("kept", len(result.Kept)),
		logging.F("removed_pairs", result.Diagnostics.RemovedPairs),
		logging.F(logging.FieldStatus, string(result.Report.Status)),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	return result, nil
}
