package validate_test

import (
	"os"
	"testing"

	"fjacquet/budget-monitor/cmd/root"
	"fjacquet/budget-monitor/cmd/validate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	root.Init()
	root.Cmd.AddCommand(validate.Cmd)
}

const header = "Ejercicio;Periodo;Clase de coste;Centro de coste;Grupo_Ceco;Area;Familia_Cuenta;Denominacion;Valor/mon.inf.;Orden\n"

func run(t *testing.T, content string, args ...string) error {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	require.NoError(t, os.WriteFile("ledger.csv", []byte(content), 0600))
	root.Cmd.SetArgs(append([]string{"validate", "-t", "ledger.csv", "--log-level", "error"}, args...))
	return root.Cmd.Execute()
}

func TestValidateCommand_Clean(t *testing.T) {
	assert.NoError(t, run(t, header+"2024;1;6100;CC01;G1;A;F;D;1,200.50;\n"))
}

func TestValidateCommand_ReportsMalformedValues(t *testing.T) {
	err := run(t, header+"2024;1;6100;CC01;G1;A;F;D;abc;\n2024;13;6100;CC01;G1;A;F;D;1;\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 malformed values")
}

func TestValidateCommand_MissingColumn(t *testing.T) {
	err := run(t, "Ejercicio;Periodo\n2024;1\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema violation")
}
