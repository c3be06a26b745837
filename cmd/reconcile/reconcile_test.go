package reconcile_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/budget-monitor/cmd/reconcile"
	"fjacquet/budget-monitor/cmd/root"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	root.Init()
	root.Cmd.AddCommand(reconcile.Cmd)
}

const ledger = `Ejercicio;Periodo;Clase de coste;Centro de coste;Grupo_Ceco;Area;Familia_Cuenta;Denominacion;Valor/mon.inf.;Orden
2024;1;6100;CC01;G1;North;Fam;Repair;100.00;O1
2024;1;6100;CC01;G1;North;Fam;Repair reversal;-100.00;O1
2024;1;6100;CC01;G1;North;Fam;Repair;60.00;O1
2024;1;6200;CC02;G1;North;Fam;Supplies;40.00;
2024;1;6300;CC03;G1;North;Fam;Admin;50.00;
2024;1;6100;CC09;Finanzas;North;Fam;Finance;999.00;
2024;2;6100;CC04;G1;North;Fam;Misc;10.00;
2024;2;6100;CC04;G1;North;Fam;Broken;abc;
`

const budget = `year;month;amount
2024;1;150
2024;2;20
`

const lookups = `
orders:
  - {order: O1, unit: U1}
units:
  - {unit: U1, process: A, site: S1}
centers:
  - {center: CC02, process: B, site: S1}
  - {center: CC03, process: Overhead, site: S1}
`

func TestReconcileCommand_WritesReports(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	for name, content := range map[string]string{"ledger.csv": ledger, "budget.csv": budget, "lookups.yaml": lookups} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
	}
	out := filepath.Join(dir, "out")

	root.Cmd.SetArgs([]string{"reconcile",
		"-t", "ledger.csv", "-b", "budget.csv", "--lookups", "lookups.yaml",
		"-o", out, "--format", "json", "--log-level", "error"})
	require.NoError(t, root.Cmd.Execute())

	data, err := os.ReadFile(filepath.Join(out, "summary.json"))
	require.NoError(t, err)
	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, "on_budget", summary["status"])
	assert.Equal(t, "160.00", summary["cumulative_actual"])
	assert.Equal(t, "170.00", summary["cumulative_budget"])

	diagnostics := summary["diagnostics"].(map[string]interface{})
	assert.EqualValues(t, 1, diagnostics["rejected"], "malformed amount is rejected by default")
	assert.EqualValues(t, 1, diagnostics["excluded_by_group"])
	assert.EqualValues(t, 1, diagnostics["removed_pairs"])

	periods, err := os.ReadFile(filepath.Join(out, "periods.csv"))
	require.NoError(t, err)
	assert.Equal(t,
		"year,month,actual_amount,budgeted_amount,difference\n2024,1,150.00,150.00,0.00\n2024,2,10.00,20.00,-10.00\n",
		string(periods))

	for _, name := range []string{"kept.csv", "removed.csv", "excluded.csv", "pairs.csv", "allocation.csv"} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, name)
	}
}

func TestReconcileCommand_RejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	require.NoError(t, os.WriteFile("ledger.csv", []byte(ledger), 0600))

	root.Cmd.SetArgs([]string{"reconcile", "-t", "ledger.csv", "--format", "toml", "--log-level", "error"})
	err := root.Cmd.Execute()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unsupported output format"))
}
