package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/budget-monitor/internal/allocator"
	"fjacquet/budget-monitor/internal/filter"
	"fjacquet/budget-monitor/internal/logging"
	"fjacquet/budget-monitor/internal/matcher"
	"fjacquet/budget-monitor/internal/models"
	"fjacquet/budget-monitor/internal/reconcile"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestWriter_WriteTransactions(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, ';', logging.NewMockLogger())

	txs := []models.Transaction{{
		ID:         "t1",
		FiscalYear: 2024,
		Period:     3,
		CostClass:  "6100",
		CostCenter: "CC01",
		Amount:     decimal.RequireFromString("1234.5"),
		Process:    "A",
		Site:       "S1",
		Resolution: models.Resolution{Kind: models.ResolvedByOrder, Unit: "U1", Partial: true},
	}}
	require.NoError(t, w.WriteTransactions(KeptFile, txs))

	lines := readLines(t, filepath.Join(dir, KeptFile))
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "id;fiscal_year;period;cost_class"))
	assert.Contains(t, lines[1], ";1234.50;")
	assert.True(t, strings.HasSuffix(lines[1], ";A;S1;order+partial"))
}

func TestWriter_WritePeriods(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, ',', nil)

	rows := []reconcile.Row{{
		Year:       2024,
		Month:      1,
		Actual:     decimal.RequireFromString("150"),
		Budget:     decimal.RequireFromString("120.5"),
		Difference: decimal.RequireFromString("29.5"),
	}}
	require.NoError(t, w.WritePeriods(rows))

	lines := readLines(t, filepath.Join(dir, PeriodsFile))
	assert.Equal(t, []string{
		"year,month,actual_amount,budgeted_amount,difference",
		"2024,1,150.00,120.50,29.50",
	}, lines)
}

func TestWriter_WriteAllocations(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, ',', nil)

	allocs := []allocator.PeriodAllocation{
		{
			Bucket: models.PeriodKey{Year: 2024, Period: 1},
			Status: allocator.Distributed,
			Categories: []allocator.CategoryTotal{
				{Process: "A", Site: "S1", Direct: decimal.NewFromInt(60), Distributed: decimal.NewFromInt(30), Total: decimal.NewFromInt(90)},
			},
		},
		{
			Bucket:        models.PeriodKey{Year: 2024, Period: 2},
			Status:        allocator.NoTarget,
			Overhead:      decimal.NewFromInt(20),
			Undistributed: decimal.NewFromInt(20),
		},
	}
	require.NoError(t, w.WriteAllocations(allocs))

	lines := readLines(t, filepath.Join(dir, AllocationFile))
	assert.Equal(t, []string{
		"year,period,process,site,direct,distributed,total,status",
		"2024,1,A,S1,60.00,30.00,90.00,distributed",
		"2024,2,-,-,20.00,0.00,20.00,no_target",
	}, lines)
}

func TestWriter_WritePairs(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, ';', nil)

	require.NoError(t, w.WritePairs([]matcher.Pair{{
		Partition:      models.PartitionKey{CostClass: "6100", CostCenter: "CC01"},
		ChargeID:       "t1",
		ReversalID:     "t2",
		ChargePeriod:   1,
		ReversalPeriod: 2,
		Amount:         decimal.NewFromInt(100),
	}}))

	lines := readLines(t, filepath.Join(dir, PairsFile))
	assert.Equal(t, "6100;CC01;t1;t2;1;2;100.00", lines[1])
}

func TestWriter_WriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w := NewWriter(dir, ',', nil)
	result := sampleResult()

	require.NoError(t, w.WriteAll(result, NewSummary(result, filter.Dimensions{}, nil, fixedNow), FormatYAML))

	for _, name := range []string{KeptFile, RemovedFile, ExcludedFile, PairsFile, PeriodsFile, AllocationFile, "summary.yaml"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestWriter_WriteSummary_BadFormat(t *testing.T) {
	w := NewWriter(t.TempDir(), ',', nil)
	_, err := w.WriteSummary(&Summary{}, "toml")
	assert.Error(t, err)
}
