package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/budget-monitor/internal/config"
	"fjacquet/budget-monitor/internal/logging"
	"fjacquet/budget-monitor/internal/models"
	"fjacquet/budget-monitor/internal/parsererror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ledgerHeader = "Ejercicio;Periodo;Clase de coste;Centro de coste;Grupo_Ceco;Area;Familia_Cuenta;Denominacion;Valor/mon.inf.;Orden\n"

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("tx-%03d", n)
	}
}

func newTestLoader(t *testing.T, policy Policy) *Loader {
	t.Helper()
	loader, err := NewLoader(Options{
		Policy:             policy,
		Delimiter:          ';',
		Encoding:           "latin1",
		TransactionColumns: config.DefaultTransactionColumns(),
		BudgetColumns:      config.DefaultBudgetColumns(),
		NewID:              sequentialIDs(),
	}, logging.NewDiscardLogger())
	require.NoError(t, err)
	return loader
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("Coerce")
	require.NoError(t, err)
	assert.Equal(t, PolicyCoerce, p)

	_, err = ParsePolicy("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")

	_, err = ParsePolicy("ignore")
	assert.Error(t, err)
}

func TestNewLoader_RequiresPolicy(t *testing.T) {
	_, err := NewLoader(Options{}, nil)
	assert.Error(t, err)
}

func TestLoadTransactions_Latin1Ledger(t *testing.T) {
	content := ledgerHeader +
		"2024;1;6100;CC01;Operaciones;Norte;Servicios;Reparaci\xf3n;1,250.50;O1\n" +
		"2024;2;6100;CC01;Operaciones;Norte;Servicios;Anulaci\xf3n;-1,250.50;\n"

	load, err := newTestLoader(t, PolicyReject).LoadTransactions(strings.NewReader(content), "ledger.csv")
	require.NoError(t, err)
	require.Len(t, load.Transactions, 2)
	assert.Empty(t, load.Rejected)
	assert.Empty(t, load.Coerced)

	first := load.Transactions[0]
	assert.Equal(t, "tx-001", first.ID)
	assert.Equal(t, 0, first.Seq)
	assert.Equal(t, 2024, first.FiscalYear)
	assert.Equal(t, 1, first.Period)
	assert.Equal(t, "6100", first.CostClass)
	assert.Equal(t, "CC01", first.CostCenter)
	assert.Equal(t, "Operaciones", first.CostGroup)
	assert.Equal(t, "Reparación", first.Description)
	assert.Equal(t, "1250.5", first.Amount.String())
	assert.Equal(t, "O1", first.OrderRef)

	second := load.Transactions[1]
	assert.Equal(t, 1, second.Seq)
	assert.False(t, second.HasOrder())
	assert.Equal(t, "-1250.5", second.Amount.String())
}

func TestLoadTransactions_MalformedAmountPolicy(t *testing.T) {
	content := ledgerHeader +
		"2024;1;6100;CC01;G;A;F;D;n/a;\n" +
		"2024;1;6100;CC01;G;A;F;D;10;\n"

	t.Run("reject", func(t *testing.T) {
		load, err := newTestLoader(t, PolicyReject).LoadTransactions(strings.NewReader(content), "ledger.csv")
		require.NoError(t, err)
		require.Len(t, load.Transactions, 1)
		require.Len(t, load.Rejected, 1)
		assert.True(t, errors.Is(load.Rejected[0].Err, parsererror.ErrMalformedValue))
		assert.Equal(t, 1, load.Rejected[0].Err.Line)
		assert.Equal(t, "amount", load.Rejected[0].Err.Field)
		assert.Equal(t, 0, load.Transactions[0].Seq)
	})

	t.Run("coerce", func(t *testing.T) {
		load, err := newTestLoader(t, PolicyCoerce).LoadTransactions(strings.NewReader(content), "ledger.csv")
		require.NoError(t, err)
		require.Len(t, load.Transactions, 2)
		assert.Empty(t, load.Rejected)
		require.Len(t, load.Coerced, 1)
		assert.True(t, load.Transactions[0].Amount.IsZero())
		assert.Equal(t, load.Transactions[0].ID, load.Coerced[0].TransactionID)
	})
}

func TestLoadTransactions_BadPeriodAlwaysRejected(t *testing.T) {
	content := ledgerHeader +
		"2024;0;6100;CC01;G;A;F;D;1;\n" +
		"2024;13;6100;CC01;G;A;F;D;1;\n" +
		"2024;x;6100;CC01;G;A;F;D;1;\n" +
		"20x4;3;6100;CC01;G;A;F;D;1;\n"

	load, err := newTestLoader(t, PolicyCoerce).LoadTransactions(strings.NewReader(content), "ledger.csv")
	require.NoError(t, err)
	assert.Empty(t, load.Transactions)
	assert.Len(t, load.Rejected, 4)
	assert.Empty(t, load.Coerced)
}

func TestLoadTransactions_MissingColumnIsSchemaViolation(t *testing.T) {
	content := "Ejercicio;Periodo;Clase de coste;Centro de coste\n2024;1;6100;CC01\n"
	_, err := newTestLoader(t, PolicyReject).LoadTransactions(strings.NewReader(content), "ledger.csv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, parsererror.ErrSchemaViolation))
	assert.Contains(t, err.Error(), "amount")
}

func TestLoadTransactions_UUIDByDefault(t *testing.T) {
	loader, err := NewLoader(Options{Policy: PolicyReject, Delimiter: ';', TransactionColumns: config.DefaultTransactionColumns()}, nil)
	require.NoError(t, err)

	content := ledgerHeader + "2024;1;6100;CC01;G;A;F;D;1;\n2024;1;6100;CC01;G;A;F;D;1;\n"
	load, err := loader.LoadTransactions(strings.NewReader(content), "ledger.csv")
	require.NoError(t, err)
	require.Len(t, load.Transactions, 2)
	assert.Len(t, load.Transactions[0].ID, 36)
	assert.NotEqual(t, load.Transactions[0].ID, load.Transactions[1].ID)
}

func TestLoadTransactionsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	require.NoError(t, os.WriteFile(path, []byte(ledgerHeader+"2024;5;6100;CC01;G;A;F;D;7.25;\n"), 0600))

	load, err := newTestLoader(t, PolicyReject).LoadTransactionsFile(path)
	require.NoError(t, err)
	require.Len(t, load.Transactions, 1)
	assert.Equal(t, "7.25", load.Transactions[0].Amount.String())

	_, err = newTestLoader(t, PolicyReject).LoadTransactionsFile(filepath.Join(t.TempDir(), "none.csv"))
	assert.Error(t, err)
}

func TestLoadBudget(t *testing.T) {
	content := "year;month;amount;process;site\n" +
		"2024;1;1,000.00;P1;S1\n" +
		"2024;2;500;;\n" +
		"2024;13;1;;\n"

	load, err := newTestLoader(t, PolicyReject).LoadBudget(strings.NewReader(content), "budget.csv")
	require.NoError(t, err)
	require.Len(t, load.Entries, 2)
	assert.Len(t, load.Rejected, 1)
	assert.Equal(t, models.BudgetEntry{Year: 2024, Month: 1, Process: "P1", Site: "S1", Amount: load.Entries[0].Amount}, load.Entries[0])
	assert.Equal(t, "1000", load.Entries[0].Amount.String())
	assert.Equal(t, models.PeriodKey{Year: 2024, Period: 2}, load.Entries[1].Bucket())
}

func TestLoadBudget_MissingAmountColumn(t *testing.T) {
	_, err := newTestLoader(t, PolicyReject).LoadBudget(strings.NewReader("year;month\n2024;1\n"), "budget.csv")
	assert.True(t, errors.Is(err, parsererror.ErrSchemaViolation))
}

func TestLoadLookups(t *testing.T) {
	src := LookupSources{
		Orders:  strings.NewReader("order_ref;unit\nO1;U1\nO2;U2\nO1;U3\n;U9\n"),
		Units:   strings.NewReader("unit;process;site\nU1;P1;S1\nU3;P3;\n"),
		Centers: strings.NewReader("cost_center;process;site\nC9;P2;S2\n"),
	}

	tables, err := newTestLoader(t, PolicyReject).LoadLookups(src)
	require.NoError(t, err)
	assert.Equal(t, "U3", tables.OrderToUnit["O1"], "last write wins")
	assert.Len(t, tables.OrderToUnit, 2, "blank keys are skipped")
	assert.Equal(t, 1, tables.Duplicates.Orders)
	assert.Equal(t, models.Classification{Process: "P3"}, tables.UnitToClass["U3"])
	assert.Equal(t, models.Classification{Process: "P2", Site: "S2"}, tables.CenterToClass["C9"])
}

func TestLoadLookups_MissingColumn(t *testing.T) {
	src := LookupSources{
		Orders:      strings.NewReader("order_ref;unit\nO1;U1\n"),
		Units:       strings.NewReader("unit;process\nU1;P1\n"),
		Centers:     strings.NewReader("cost_center;process;site\n"),
		UnitsName:   "units.csv",
		OrdersName:  "orders.csv",
		CentersName: "centers.csv",
	}

	_, err := newTestLoader(t, PolicyReject).LoadLookups(src)
	require.Error(t, err)
	var schemaErr *parsererror.SchemaViolationError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "units.csv", schemaErr.Source)
	assert.Equal(t, "site", schemaErr.Column)
}

func TestLoadLookupFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0600))
		return p
	}
	orders := write("orders.csv", "order_ref;unit\nO1;U1\n")
	units := write("units.csv", "unit;process;site\nU1;P1;S1\n")
	centers := write("centers.csv", "cost_center;process;site\nC1;P2;S2\n")

	tables, err := newTestLoader(t, PolicyReject).LoadLookupFiles(orders, units, centers)
	require.NoError(t, err)
	assert.Equal(t, "U1", tables.OrderToUnit["O1"])

	_, err = newTestLoader(t, PolicyReject).LoadLookupFiles(orders, units, filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}
