// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Malformed-value policies accepted by ingest.malformed_policy.
const (
	PolicyReject = "reject"
	PolicyCoerce = "coerce"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	CSV struct {
		Delimiter          string `mapstructure:"delimiter" yaml:"delimiter"`
		OutputDelimiter    string `mapstructure:"output_delimiter" yaml:"output_delimiter"`
		Encoding           string `mapstructure:"encoding" yaml:"encoding"`
		ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`
		DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	} `mapstructure:"csv" yaml:"csv"`

	Ingest struct {
		MalformedPolicy string   `mapstructure:"malformed_policy" yaml:"malformed_policy"`
		ExcludedGroups  []string `mapstructure:"excluded_groups" yaml:"excluded_groups"`
		Columns         struct {
			Transactions map[string]string `mapstructure:"transactions" yaml:"transactions"`
			Budget       map[string]string `mapstructure:"budget" yaml:"budget"`
		} `mapstructure:"columns" yaml:"columns"`
	} `mapstructure:"ingest" yaml:"ingest"`

	Classification struct {
		Overhead     string `mapstructure:"overhead" yaml:"overhead"`
		Unclassified string `mapstructure:"unclassified" yaml:"unclassified"`
	} `mapstructure:"classification" yaml:"classification"`

	Matcher struct {
		Workers           int `mapstructure:"workers" yaml:"workers"`
		ParallelThreshold int `mapstructure:"parallel_threshold" yaml:"parallel_threshold"`
	} `mapstructure:"matcher" yaml:"matcher"`

	Allocation struct {
		Places int32 `mapstructure:"places" yaml:"places"`
	} `mapstructure:"allocation" yaml:"allocation"`

	Report struct {
		Format           string  `mapstructure:"format" yaml:"format"`
		MildOverrunRatio float64 `mapstructure:"mild_overrun_ratio" yaml:"mild_overrun_ratio"`
	} `mapstructure:"report" yaml:"report"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	return InitializeConfigFrom("")
}

// InitializeConfigFrom behaves like InitializeConfig but reads the given file
// instead of searching the standard locations when path is not empty.
func InitializeConfigFrom(path string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.budget-monitor")
		v.AddConfigPath(".budget-monitor")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix("BUDGET")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless explicitly given)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			if path != "" {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns the built-in configuration without reading any file or
// environment variable.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		panic(fmt.Sprintf("default configuration does not decode: %v", err))
	}
	return &config
}

// DefaultTransactionColumns maps internal field names to the ledger export's
// column headers.
func DefaultTransactionColumns() map[string]string {
	return map[string]string{
		"fiscal_year":    "Ejercicio",
		"period":         "Periodo",
		"cost_class":     "Clase de coste",
		"cost_center":    "Centro de coste",
		"cost_group":     "Grupo_Ceco",
		"area":           "Area",
		"account_family": "Familia_Cuenta",
		"description":    "Denominacion",
		"amount":         "Valor/mon.inf.",
		"order_ref":      "Orden",
	}
}

// DefaultBudgetColumns maps internal budget field names to source headers.
func DefaultBudgetColumns() map[string]string {
	return map[string]string{
		"year":       "year",
		"month":      "month",
		"amount":     "amount",
		"process":    "process",
		"site":       "site",
		"area":       "area",
		"cost_class": "cost_class",
	}
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("csv.delimiter", ";")
	v.SetDefault("csv.output_delimiter", ",")
	v.SetDefault("csv.encoding", "latin1")
	v.SetDefault("csv.thousands_separator", ",")
	v.SetDefault("csv.decimal_separator", ".")

	v.SetDefault("ingest.malformed_policy", PolicyReject)
	v.SetDefault("ingest.excluded_groups", []string{
		"Abastecimiento y contratos",
		"Finanzas",
		"Servicios generales",
	})
	v.SetDefault("ingest.columns.transactions", DefaultTransactionColumns())
	v.SetDefault("ingest.columns.budget", DefaultBudgetColumns())

	v.SetDefault("classification.overhead", "Overhead")
	v.SetDefault("classification.unclassified", "Unclassified")

	v.SetDefault("matcher.workers", 0)
	v.SetDefault("matcher.parallel_threshold", 64)

	v.SetDefault("allocation.places", 2)

	v.SetDefault("report.format", "json")
	v.SetDefault("report.mild_overrun_ratio", 0.10)
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len([]rune(config.CSV.Delimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %q", config.CSV.Delimiter)
	}
	if len([]rune(config.CSV.OutputDelimiter)) != 1 {
		return fmt.Errorf("CSV output delimiter must be a single character, got: %q", config.CSV.OutputDelimiter)
	}

	switch strings.ToLower(config.CSV.Encoding) {
	case "latin1", "iso-8859-1", "utf8", "utf-8":
	default:
		return fmt.Errorf("unsupported CSV encoding: %s (must be 'latin1' or 'utf8')", config.CSV.Encoding)
	}

	if config.CSV.DecimalSeparator == "" || config.CSV.DecimalSeparator == config.CSV.ThousandsSeparator {
		return fmt.Errorf("decimal separator must be set and differ from the thousands separator")
	}

	if config.Ingest.MalformedPolicy != PolicyReject && config.Ingest.MalformedPolicy != PolicyCoerce {
		return fmt.Errorf("ingest.malformed_policy must be '%s' or '%s', got: %q",
			PolicyReject, PolicyCoerce, config.Ingest.MalformedPolicy)
	}

	if strings.TrimSpace(config.Classification.Overhead) == "" {
		return fmt.Errorf("classification.overhead must not be empty")
	}
	if strings.TrimSpace(config.Classification.Unclassified) == "" {
		return fmt.Errorf("classification.unclassified must not be empty")
	}
	if config.Classification.Overhead == config.Classification.Unclassified {
		return fmt.Errorf("overhead and unclassified labels must differ")
	}

	if config.Matcher.Workers < 0 {
		return fmt.Errorf("matcher.workers must be >= 0, got: %d", config.Matcher.Workers)
	}

	if config.Allocation.Places < 0 || config.Allocation.Places > 8 {
		return fmt.Errorf("allocation.places must be between 0 and 8, got: %d", config.Allocation.Places)
	}

	if config.Report.MildOverrunRatio < 0 {
		return fmt.Errorf("report.mild_overrun_ratio must be >= 0, got: %f", config.Report.MildOverrunRatio)
	}

	switch config.Report.Format {
	case "json", "xml", "yaml":
	default:
		return fmt.Errorf("report.format must be 'json', 'xml' or 'yaml', got: %s", config.Report.Format)
	}

	return nil
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
