// Package allocator folds the overhead category into every other category of
// a (year, period) bucket, proportionally to each category's share of
// non-overhead spend.
package allocator

import (
	"sort"
	"strings"

	"fjacquet/budget-monitor/internal/logging"
	"fjacquet/budget-monitor/internal/models"

	"github.com/shopspring/decimal"
)

// Status tags how a bucket's overhead was handled.
type Status string

const (
	// Distributed means the overhead was spread over the bucket's categories.
	Distributed Status = "distributed"
	// NoTarget means the bucket had overhead but non-overhead spend summed
	// to zero, so nothing could receive it; it is carried in Undistributed.
	NoTarget Status = "no_target"
)

// CategoryTotal is one (process, site) category's figures in a bucket.
type CategoryTotal struct {
	Process     string          `json:"process" yaml:"process" xml:"process"`
	Site        string          `json:"site" yaml:"site" xml:"site"`
	Direct      decimal.Decimal `json:"direct" yaml:"direct" xml:"direct"`
	Distributed decimal.Decimal `json:"distributed" yaml:"distributed" xml:"distributed"`
	Total       decimal.Decimal `json:"total" yaml:"total" xml:"total"`
}

// PeriodAllocation is the allocator's output for one (year, period).
type PeriodAllocation struct {
	Bucket        models.PeriodKey `json:"bucket" yaml:"bucket" xml:"bucket"`
	Overhead      decimal.Decimal  `json:"overhead" yaml:"overhead" xml:"overhead"`
	Other         decimal.Decimal  `json:"other" yaml:"other" xml:"other"`
	Status        Status           `json:"status" yaml:"status" xml:"status"`
	Undistributed decimal.Decimal  `json:"undistributed" yaml:"undistributed" xml:"undistributed"`
	Categories    []CategoryTotal  `json:"categories" yaml:"categories" xml:"categories>category"`
}

// Actual is the bucket's spend after allocation: category totals plus any
// overhead that had no target.
func (p *PeriodAllocation) Actual() decimal.Decimal {
	total := p.Undistributed
	for _, c := range p.Categories {
		total = total.Add(c.Total)
	}
	return total
}

// DistributedTotal sums the overhead handed to categories.
func (p *PeriodAllocation) DistributedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, c := range p.Categories {
		total = total.Add(c.Distributed)
	}
	return total
}

// Allocator prorates the overhead category.
type Allocator struct {
	overhead string
	places   int32
	logger   logging.Logger
}

// NewAllocator creates an allocator. Distributed amounts are rounded to
// places decimals; an empty label means models.DefaultOverheadProcess.
func NewAllocator(overheadLabel string, places int32, logger logging.Logger) *Allocator {
	if strings.TrimSpace(overheadLabel) == "" {
		overheadLabel = models.DefaultOverheadProcess
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Allocator{overhead: overheadLabel, places: places, logger: logger}
}

type category struct {
	process string
	site    string
}

type bucketAccumulator struct {
	overhead   decimal.Decimal
	categories map[category]decimal.Decimal
}

// Allocate groups classified transactions by (year, period) and distributes
// each bucket's overhead over its (process, site) categories. Overhead rows
// are pooled whatever their site. Buckets are returned chronologically,
// categories by process then site.
func (a *Allocator) Allocate(txs []models.Transaction) []PeriodAllocation {
	buckets := make(map[models.PeriodKey]*bucketAccumulator)
	for i := range txs {
		tx := &txs[i]
		acc, ok := buckets[tx.Bucket()]
		if !ok {
			acc = &bucketAccumulator{categories: make(map[category]decimal.Decimal)}
			buckets[tx.Bucket()] = acc
		}
		if tx.Process == a.overhead {
			acc.overhead = acc.overhead.Add(tx.Amount)
			continue
		}
		key := category{process: tx.Process, site: tx.Site}
		acc.categories[key] = acc.categories[key].Add(tx.Amount)
	}

	allocations := make([]PeriodAllocation, 0, len(buckets))
	for key, acc := range buckets {
		allocations = append(allocations, a.allocateBucket(key, acc))
	}
	sort.Slice(allocations, func(i, j int) bool {
		return allocations[i].Bucket.Less(allocations[j].Bucket)
	})

	noTarget := 0
	for i := range allocations {
		if allocations[i].Status == NoTarget {
			noTarget++
			a.logger.Warn("Overhead has no distribution target",
				logging.F(logging.FieldPeriod, allocations[i].Bucket.String()),
				logging.F("overhead", allocations[i].Overhead.String()))
		}
	}
	a.logger.Info("Overhead allocation completed",
		logging.F("buckets", len(allocations)),
		logging.F("no_target", noTarget))
	return allocations
}

func (a *Allocator) allocateBucket(key models.PeriodKey, acc *bucketAccumulator) PeriodAllocation {
	keys := make([]category, 0, len(acc.categories))
	other := decimal.Zero
	for key, amount := range acc.categories {
		keys = append(keys, key)
		other = other.Add(amount)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].process != keys[j].process {
			return keys[i].process < keys[j].process
		}
		return keys[i].site < keys[j].site
	})

	alloc := PeriodAllocation{
		Bucket:        key,
		Overhead:      acc.overhead,
		Other:         other,
		Status:        Distributed,
		Undistributed: decimal.Zero,
		Categories:    make([]CategoryTotal, len(keys)),
	}
	for i, key := range keys {
		direct := acc.categories[key]
		alloc.Categories[i] = CategoryTotal{Process: key.process, Site: key.site, Direct: direct, Distributed: decimal.Zero, Total: direct}
	}

	if acc.overhead.IsZero() {
		return alloc
	}
	if other.IsZero() {
		alloc.Status = NoTarget
		alloc.Undistributed = acc.overhead
		return alloc
	}

	// Round every share, then hand the residue to the largest category so
	// the distributed amounts add up to the overhead exactly.
	distributed := decimal.Zero
	largest := 0
	for i := range alloc.Categories {
		c := &alloc.Categories[i]
		c.Distributed = acc.overhead.Mul(c.Direct).Div(other).Round(a.places)
		distributed = distributed.Add(c.Distributed)
		if c.Direct.Abs().GreaterThan(alloc.Categories[largest].Direct.Abs()) {
			largest = i
		}
	}
	if residue := acc.overhead.Sub(distributed); !residue.IsZero() {
		alloc.Categories[largest].Distributed = alloc.Categories[largest].Distributed.Add(residue)
	}
	for i := range alloc.Categories {
		c := &alloc.Categories[i]
		c.Total = c.Direct.Add(c.Distributed)
	}
	return alloc
}

// Select keeps the categories for which keep returns true. Overhead and
// Other are restated over the kept categories. Undistributed overhead
// belongs to no category and buckets left without categories are dropped.
func Select(allocations []PeriodAllocation, keep func(CategoryTotal) bool) []PeriodAllocation {
	out := make([]PeriodAllocation, 0, len(allocations))
	for i := range allocations {
		alloc := allocations[i]
		alloc.Categories = nil
		alloc.Overhead = decimal.Zero
		alloc.Other = decimal.Zero
		alloc.Undistributed = decimal.Zero
		for _, c := range allocations[i].Categories {
			if !keep(c) {
				continue
			}
			alloc.Categories = append(alloc.Categories, c)
			alloc.Overhead = alloc.Overhead.Add(c.Distributed)
			alloc.Other = alloc.Other.Add(c.Direct)
		}
		if len(alloc.Categories) > 0 {
			out = append(out, alloc)
		}
	}
	return out
}

// ActualSeries turns allocations into the actual-spend series.
func ActualSeries(allocations []PeriodAllocation) []models.SeriesPoint {
	points := make([]models.SeriesPoint, 0, len(allocations))
	for i := range allocations {
		points = append(points, models.SeriesPoint{Bucket: allocations[i].Bucket, Amount: allocations[i].Actual()})
	}
	models.SortSeries(points)
	return points
}
