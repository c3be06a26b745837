package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeConfig_Defaults(t *testing.T) {
	clearTestEnvVars(t)
	t.Chdir(t.TempDir())

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format)
	assert.Equal(t, ";", config.CSV.Delimiter)
	assert.Equal(t, ",", config.CSV.OutputDelimiter)
	assert.Equal(t, "latin1", config.CSV.Encoding)
	assert.Equal(t, ",", config.CSV.ThousandsSeparator)
	assert.Equal(t, ".", config.CSV.DecimalSeparator)
	assert.Equal(t, PolicyReject, config.Ingest.MalformedPolicy)
	assert.ElementsMatch(t, []string{"Abastecimiento y contratos", "Finanzas", "Servicios generales"}, config.Ingest.ExcludedGroups)
	assert.Equal(t, "Valor/mon.inf.", config.Ingest.Columns.Transactions["amount"])
	assert.Equal(t, "Clase de coste", config.Ingest.Columns.Transactions["cost_class"])
	assert.Equal(t, "month", config.Ingest.Columns.Budget["month"])
	assert.Equal(t, "Overhead", config.Classification.Overhead)
	assert.Equal(t, "Unclassified", config.Classification.Unclassified)
	assert.Equal(t, 0, config.Matcher.Workers)
	assert.Equal(t, 64, config.Matcher.ParallelThreshold)
	assert.Equal(t, int32(2), config.Allocation.Places)
	assert.Equal(t, "json", config.Report.Format)
	assert.Equal(t, 0.10, config.Report.MildOverrunRatio)
}

func TestDefault_MatchesInitializeConfig(t *testing.T) {
	clearTestEnvVars(t)
	t.Chdir(t.TempDir())

	loaded, err := InitializeConfig()
	require.NoError(t, err)
	assert.Equal(t, loaded, Default())
}

func TestInitializeConfig_EnvironmentVariables(t *testing.T) {
	clearTestEnvVars(t)
	t.Chdir(t.TempDir())

	t.Setenv("BUDGET_LOG_LEVEL", "debug")
	t.Setenv("BUDGET_LOG_FORMAT", "json")
	t.Setenv("BUDGET_CSV_DELIMITER", ",")
	t.Setenv("BUDGET_INGEST_MALFORMED_POLICY", "coerce")
	t.Setenv("BUDGET_MATCHER_WORKERS", "4")
	t.Setenv("BUDGET_REPORT_MILD_OVERRUN_RATIO", "0.25")

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, ",", config.CSV.Delimiter)
	assert.Equal(t, PolicyCoerce, config.Ingest.MalformedPolicy)
	assert.Equal(t, 4, config.Matcher.Workers)
	assert.Equal(t, 0.25, config.Report.MildOverrunRatio)
}

func TestInitializeConfigFrom_File(t *testing.T) {
	clearTestEnvVars(t)

	configFile := filepath.Join(t.TempDir(), "budget.yaml")
	configContent := `
log:
  level: "warn"
csv:
  delimiter: "|"
  encoding: "utf8"
ingest:
  malformed_policy: "coerce"
  excluded_groups: ["Finanzas"]
classification:
  overhead: "Gastos generales"
report:
  format: "yaml"
`
	require.NoError(t, os.WriteFile(configFile, []byte(configContent), 0644))

	t.Setenv("BUDGET_LOG_LEVEL", "error")

	config, err := InitializeConfigFrom(configFile)
	require.NoError(t, err)

	assert.Equal(t, "error", config.Log.Level, "environment overrides the file")
	assert.Equal(t, "|", config.CSV.Delimiter)
	assert.Equal(t, "utf8", config.CSV.Encoding)
	assert.Equal(t, PolicyCoerce, config.Ingest.MalformedPolicy)
	assert.Equal(t, []string{"Finanzas"}, config.Ingest.ExcludedGroups)
	assert.Equal(t, "Gastos generales", config.Classification.Overhead)
	assert.Equal(t, "yaml", config.Report.Format)
	assert.Equal(t, "Unclassified", config.Classification.Unclassified, "unset keys keep defaults")
}

func TestInitializeConfigFrom_MissingFile(t *testing.T) {
	clearTestEnvVars(t)
	_, err := InitializeConfigFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestInitializeConfigFrom_EmptyMalformedPolicy(t *testing.T) {
	clearTestEnvVars(t)

	configFile := filepath.Join(t.TempDir(), "budget.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("ingest:\n  malformed_policy: \"\"\n"), 0644))

	_, err := InitializeConfigFrom(configFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest.malformed_policy must be")
}

func TestValidateConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name         string
		modifyConfig func(*Config)
		expectError  string
	}{
		{"invalid log level", func(c *Config) { c.Log.Level = "invalid" }, "invalid log level"},
		{"invalid log format", func(c *Config) { c.Log.Format = "xml" }, "invalid log format"},
		{"invalid CSV delimiter", func(c *Config) { c.CSV.Delimiter = ";;" }, "CSV delimiter must be a single character"},
		{"invalid output delimiter", func(c *Config) { c.CSV.OutputDelimiter = "" }, "CSV output delimiter must be a single character"},
		{"unsupported encoding", func(c *Config) { c.CSV.Encoding = "ebcdic" }, "unsupported CSV encoding"},
		{"separators collide", func(c *Config) { c.CSV.DecimalSeparator = "," }, "decimal separator must be set"},
		{"missing malformed policy", func(c *Config) { c.Ingest.MalformedPolicy = "" }, "ingest.malformed_policy must be"},
		{"empty overhead label", func(c *Config) { c.Classification.Overhead = " " }, "classification.overhead must not be empty"},
		{"labels collide", func(c *Config) { c.Classification.Unclassified = "Overhead" }, "must differ"},
		{"negative workers", func(c *Config) { c.Matcher.Workers = -1 }, "matcher.workers must be >= 0"},
		{"too many places", func(c *Config) { c.Allocation.Places = 12 }, "allocation.places must be between 0 and 8"},
		{"negative overrun", func(c *Config) { c.Report.MildOverrunRatio = -0.1 }, "report.mild_overrun_ratio must be >= 0"},
		{"bad report format", func(c *Config) { c.Report.Format = "pdf" }, "report.format must be"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			require.NoError(t, validateConfig(config))

			tt.modifyConfig(config)
			err := validateConfig(config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestConfigureLoggingFromConfig(t *testing.T) {
	config := Default()
	config.Log.Level = "debug"
	config.Log.Format = "json"

	logger := ConfigureLoggingFromConfig(config)
	require.NotNil(t, logger)
	assert.Equal(t, "debug", logger.GetLevel().String())
}

func TestGetEnv(t *testing.T) {
	t.Setenv("BUDGET_TEST_VALUE", "set")
	assert.Equal(t, "set", GetEnv("BUDGET_TEST_VALUE", "fallback"))
	assert.Equal(t, "fallback", GetEnv("BUDGET_TEST_UNSET_VALUE", "fallback"))
}

// clearTestEnvVars blanks every variable the tests above set, restoring them
// when the test ends.
func clearTestEnvVars(t *testing.T) {
	for _, envVar := range []string{
		"BUDGET_LOG_LEVEL",
		"BUDGET_LOG_FORMAT",
		"BUDGET_CSV_DELIMITER",
		"BUDGET_CSV_ENCODING",
		"BUDGET_INGEST_MALFORMED_POLICY",
		"BUDGET_MATCHER_WORKERS",
		"BUDGET_REPORT_FORMAT",
		"BUDGET_REPORT_MILD_OVERRUN_RATIO",
	} {
		if value, ok := os.LookupEnv(envVar); ok {
			t.Setenv(envVar, value)
			require.NoError(t, os.Unsetenv(envVar))
		}
	}
}
