// Package matcher removes reversal pairs: a charge and the later entry that
// cancels it, within one (cost class, cost center) partition.
package matcher

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"fjacquet/budget-monitor/internal/logging"
	"fjacquet/budget-monitor/internal/models"

	"github.com/shopspring/decimal"
)

// DefaultParallelThreshold is the partition count below which matching runs
// sequentially.
const DefaultParallelThreshold = 64

// Pair is one matched (charge, reversal) couple.
type Pair struct {
	Partition      models.PartitionKey `json:"partition" yaml:"partition"`
	ChargeID       string              `json:"charge_id" yaml:"charge_id"`
	ReversalID     string              `json:"reversal_id" yaml:"reversal_id"`
	ChargePeriod   int                 `json:"charge_period" yaml:"charge_period"`
	ReversalPeriod int                 `json:"reversal_period" yaml:"reversal_period"`
	Amount         decimal.Decimal     `json:"amount" yaml:"amount"`
}

// Result is the output of one matching run. Kept and Removed preserve the
// input order of the record set.
type Result struct {
	Kept    []models.Transaction
	Removed []models.Transaction
	Pairs   []Pair
}

// Matcher runs reversal-pair elimination over a record set.
type Matcher struct {
	logger            logging.Logger
	workerCount       int
	parallelThreshold int
}

// NewMatcher creates a matcher. workers <= 0 means one worker per CPU;
// parallelThreshold <= 0 means DefaultParallelThreshold.
func NewMatcher(logger logging.Logger, workers, parallelThreshold int) *Matcher {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if parallelThreshold <= 0 {
		parallelThreshold = DefaultParallelThreshold
	}
	return &Matcher{logger: logger, workerCount: workers, parallelThreshold: parallelThreshold}
}

// Match validates rs and removes reversal pairs from every partition. The
// result does not depend on the worker count.
func (m *Matcher) Match(ctx context.Context, rs *models.RecordSet) (*Result, error) {
	if err := rs.Validate(); err != nil {
		return nil, fmt.Errorf("matcher precondition failed: %w", err)
	}

	keys := rs.PartitionKeys()
	var (
		outcomes []partitionOutcome
		err      error
	)
	if len(keys) < m.parallelThreshold || m.workerCount == 1 {
		outcomes, err = m.matchSequential(ctx, rs, keys)
	} else {
		outcomes, err = m.matchConcurrent(ctx, rs, keys)
	}
	if err != nil {
		return nil, err
	}

	result := merge(rs, outcomes)
	m.logger.Info("Reversal matching completed",
		logging.F(logging.FieldPartition, len(keys)),
		logging.F("pairs", len(result.Pairs)),
		logging.F("kept", len(result.Kept)),
		logging.F("removed", len(result.Removed)))
	return result, nil
}

func (m *Matcher) matchSequential(ctx context.Context, rs *models.RecordSet, keys []models.PartitionKey) ([]partitionOutcome, error) {
	outcomes := make([]partitionOutcome, len(keys))
	for i, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		outcomes[i] = matchPartition(rs, key)
	}
	return outcomes, nil
}

// partitionOutcome holds the matched row indices of one partition.
type partitionOutcome struct {
	key   models.PartitionKey
	pairs [][2]int // arena indices: charge, reversal
}

type openKey struct {
	period int
	amount string
}

// matchPartition runs the matching scan over one partition:
//
//   - rows are visited by ascending period, ties in arena order;
//   - a charge (amount >= 0) is stored under (period, amount), overwriting
//     any earlier charge with the same key;
//   - a reversal looks for (p, -amount) for p = period down to the lowest
//     period of the partition and consumes the first hit;
//   - an unmatched reversal is stored under its own (negative) key.
func matchPartition(rs *models.RecordSet, key models.PartitionKey) partitionOutcome {
	indices := rs.Partition(key)
	order := make([]int, len(indices))
	copy(order, indices)
	sort.SliceStable(order, func(a, b int) bool {
		return rs.Row(order[a]).Period < rs.Row(order[b]).Period
	})

	outcome := partitionOutcome{key: key}
	if len(order) == 0 {
		return outcome
	}
	minPeriod := rs.Row(order[0]).Period

	open := make(map[openKey]int, len(order))
	for _, idx := range order {
		tx := rs.Row(idx)
		if tx.IsCharge() {
			open[openKey{period: tx.Period, amount: models.AmountKey(tx.Amount)}] = idx
			continue
		}

		counter := models.AmountKey(tx.Amount.Neg())
		matched := false
		for p := tx.Period; p >= minPeriod; p-- {
			k := openKey{period: p, amount: counter}
			if charge, ok := open[k]; ok {
				delete(open, k)
				outcome.pairs = append(outcome.pairs, [2]int{charge, idx})
				matched = true
				break
			}
		}
		if !matched {
			open[openKey{period: tx.Period, amount: models.AmountKey(tx.Amount)}] = idx
		}
	}
	return outcome
}

// merge folds partition outcomes into a Result. Pairs are ordered by
// partition key, then by the order in which they were matched.
func merge(rs *models.RecordSet, outcomes []partitionOutcome) *Result {
	removed := make([]bool, rs.Len())
	result := &Result{}
	for _, outcome := range outcomes {
		for _, pair := range outcome.pairs {
			charge, reversal := rs.Row(pair[0]), rs.Row(pair[1])
			removed[pair[0]], removed[pair[1]] = true, true
			result.Pairs = append(result.Pairs, Pair{
				Partition:      outcome.key,
				ChargeID:       charge.ID,
				ReversalID:     reversal.ID,
				ChargePeriod:   charge.Period,
				ReversalPeriod: reversal.Period,
				Amount:         charge.Amount,
			})
		}
	}

	result.Kept = make([]models.Transaction, 0, rs.Len()-2*len(result.Pairs))
	result.Removed = make([]models.Transaction, 0, 2*len(result.Pairs))
	for i := 0; i < rs.Len(); i++ {
		if removed[i] {
			result.Removed = append(result.Removed, rs.At(i))
		} else {
			result.Kept = append(result.Kept, rs.At(i))
		}
	}
	return result
}
