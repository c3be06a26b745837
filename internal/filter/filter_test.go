package filter

import (
	"testing"

	"fjacquet/budget-monitor/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupExclusion_Apply(t *testing.T) {
	ex := NewGroupExclusion(models.DefaultExcludedGroups)
	txs := []models.Transaction{
		{ID: "a", CostGroup: "Operaciones"},
		{ID: "b", CostGroup: "Finanzas"},
		{ID: "c", CostGroup: " Servicios generales "},
		{ID: "d", CostGroup: ""},
	}

	retained, excluded := ex.Apply(txs)
	require.Len(t, retained, 2)
	assert.Equal(t, "a", retained[0].ID)
	assert.Equal(t, "d", retained[1].ID)
	require.Len(t, excluded, 2)
	assert.Equal(t, "b", excluded[0].ID)
	assert.Equal(t, "c", excluded[1].ID)
}

func TestGroupExclusion_Empty(t *testing.T) {
	retained, excluded := NewGroupExclusion(nil).Apply([]models.Transaction{{ID: "a", CostGroup: "Finanzas"}})
	assert.Len(t, retained, 1)
	assert.Empty(t, excluded)
}

func TestDimensions_Transactions(t *testing.T) {
	txs := []models.Transaction{
		{ID: "a", FiscalYear: 2024, Area: "Norte", Process: "P1", Site: "S1", CostClass: "6100"},
		{ID: "b", FiscalYear: 2023, Area: "Norte", Process: "P1", Site: "S1", CostClass: "6100"},
		{ID: "c", FiscalYear: 2024, Area: "Sur", Process: "P2", Site: "S1", CostClass: "6200"},
	}

	tests := []struct {
		name string
		dims Dimensions
		want []string
	}{
		{name: "no filter", dims: Dimensions{}, want: []string{"a", "b", "c"}},
		{name: "year", dims: Dimensions{Year: 2024}, want: []string{"a", "c"}},
		{name: "area and year", dims: Dimensions{Year: 2024, Area: "Norte"}, want: []string{"a"}},
		{name: "site", dims: Dimensions{Site: "S1"}, want: []string{"a", "b", "c"}},
		{name: "cost class", dims: Dimensions{CostClass: "6200"}, want: []string{"c"}},
		{name: "no match", dims: Dimensions{Process: "P9"}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, tx := range tt.dims.Transactions(txs) {
				got = append(got, tx.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDimensions_Budget(t *testing.T) {
	entries := []models.BudgetEntry{
		{Year: 2024, Month: 1, Process: "P1", Amount: decimal.NewFromInt(10)},
		{Year: 2024, Month: 1, Process: "", Amount: decimal.NewFromInt(20)},
		{Year: 2023, Month: 1, Process: "P1", Amount: decimal.NewFromInt(30)},
	}

	assert.Len(t, Dimensions{}.Budget(entries), 3)
	assert.Len(t, Dimensions{Year: 2024}.Budget(entries), 2)

	byProcess := Dimensions{Process: "P1"}.Budget(entries)
	require.Len(t, byProcess, 2)
	assert.Equal(t, 2024, byProcess[0].Year)
	assert.Equal(t, 2023, byProcess[1].Year)

	assert.Len(t, Dimensions{AccountFamily: "Servicios", CostGroup: "G"}.Budget(entries), 3,
		"family and group do not constrain budget entries")
}

func TestDimensions_IsZero(t *testing.T) {
	assert.True(t, Dimensions{}.IsZero())
	assert.False(t, Dimensions{Site: "S1"}.IsZero())
}

func TestDimensions_CategorySelection(t *testing.T) {
	d := Dimensions{Year: 2024, CostClass: "6100", Process: "P1", Site: "S1"}
	assert.True(t, d.SelectsCategory())
	assert.Equal(t, Dimensions{Year: 2024, CostClass: "6100"}, d.WithoutCategory())
	assert.Equal(t, "P1", d.Process, "receiver is not modified")

	assert.True(t, d.MatchCategory("P1", "S1"))
	assert.False(t, d.MatchCategory("P1", "S2"))
	assert.True(t, Dimensions{Site: "S1"}.MatchCategory("any", "S1"))
	assert.False(t, Dimensions{Year: 2024}.SelectsCategory())
}
