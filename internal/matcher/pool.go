package matcher

import (
	"context"

	"fjacquet/budget-monitor/internal/logging"
	"fjacquet/budget-monitor/internal/models"

	"golang.org/x/sync/errgroup"
)

// matchConcurrent fans partitions out to a bounded worker pool. Each worker
// writes only its own slot of outcomes, so the merge sees the same order as
// the sequential path.
func (m *Matcher) matchConcurrent(ctx context.Context, rs *models.RecordSet, keys []models.PartitionKey) ([]partitionOutcome, error) {
	outcomes := make([]partitionOutcome, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workerCount)
	for i, key := range keys {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = matchPartition(rs, key)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.logger.Debug("Concurrent matching completed",
		logging.F(logging.FieldPartition, len(keys)),
		logging.F(logging.FieldWorkers, m.workerCount))
	return outcomes, nil
}
