package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// SeriesPoint is one (year, period) value of a time series.
type SeriesPoint struct {
	Bucket PeriodKey
	Amount decimal.Decimal
}

// SortSeries orders points chronologically in place.
func SortSeries(points []SeriesPoint) {
	sort.Slice(points, func(i, j int) bool { return points[i].Bucket.Less(points[j].Bucket) })
}

// BudgetSeries sums budget entries per (year, month), chronologically.
func BudgetSeries(entries []BudgetEntry) []SeriesPoint {
	totals := make(map[PeriodKey]decimal.Decimal)
	for i := range entries {
		key := entries[i].Bucket()
		totals[key] = totals[key].Add(entries[i].Amount)
	}
	points := make([]SeriesPoint, 0, len(totals))
	for key, amount := range totals {
		points = append(points, SeriesPoint{Bucket: key, Amount: amount})
	}
	SortSeries(points)
	return points
}
