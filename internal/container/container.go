// Package container provides dependency injection for the budget-monitor
// application. It centralizes the creation and wiring of the loader, the
// pipeline and the output writers so commands receive them ready to use.
package container

import (
	"fmt"

	"fjacquet/budget-monitor/internal/common"
	"fjacquet/budget-monitor/internal/config"
	"fjacquet/budget-monitor/internal/ingest"
	"fjacquet/budget-monitor/internal/logging"
	"fjacquet/budget-monitor/internal/models"
	"fjacquet/budget-monitor/internal/pipeline"
	"fjacquet/budget-monitor/internal/report"
	"fjacquet/budget-monitor/internal/store"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger          logging.Logger
	config          *config.Config
	loaderOptions   ingest.Options
	pipeline        *pipeline.Pipeline
	outputDelimiter rune
}

// NewContainer creates and wires all application dependencies from cfg.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	logger := logging.NewLogrusAdapterFromLogger(config.ConfigureLoggingFromConfig(cfg))

	inputDelimiter, err := common.ParseDelimiter(cfg.CSV.Delimiter)
	if err != nil {
		return nil, fmt.Errorf("invalid csv.delimiter: %w", err)
	}
	outputDelimiter, err := common.ParseDelimiter(cfg.CSV.OutputDelimiter)
	if err != nil {
		return nil, fmt.Errorf("invalid csv.output_delimiter: %w", err)
	}

	loaderOptions := ingest.Options{
		Policy:    ingest.Policy(cfg.Ingest.MalformedPolicy),
		Delimiter: inputDelimiter,
		Encoding:  cfg.CSV.Encoding,
		AmountFormat: models.AmountFormat{
			ThousandsSeparator: cfg.CSV.ThousandsSeparator,
			DecimalSeparator:   cfg.CSV.DecimalSeparator,
		},
		TransactionColumns: cfg.Ingest.Columns.Transactions,
		BudgetColumns:      cfg.Ingest.Columns.Budget,
	}
	if _, err := ingest.ParsePolicy(string(loaderOptions.Policy)); err != nil {
		return nil, err
	}

	p := pipeline.New(pipeline.OptionsFromConfig(cfg), logger)

	logger.Info("Container initialized successfully",
		logging.F("malformed_policy", cfg.Ingest.MalformedPolicy),
		logging.F(logging.FieldDelimiter, cfg.CSV.Delimiter),
		logging.F(logging.FieldWorkers, cfg.Matcher.Workers))

	return &Container{
		logger:          logger,
		config:          cfg,
		loaderOptions:   loaderOptions,
		pipeline:        p,
		outputDelimiter: outputDelimiter,
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetPipeline returns the shared pipeline.
func (c *Container) GetPipeline() *pipeline.Pipeline {
	return c.pipeline
}

// NewLoader returns a loader using the configured malformed value policy,
// or policy when it is not empty.
func (c *Container) NewLoader(policy string) (*ingest.Loader, error) {
	opts := c.loaderOptions
	if policy != "" {
		opts.Policy = ingest.Policy(policy)
	}
	return ingest.NewLoader(opts, c.logger.WithField(logging.FieldStage, "ingest"))
}

// NewLookupStore returns a YAML lookup store for file; an empty file means
// store.DefaultLookupFile.
func (c *Container) NewLookupStore(file string) *store.LookupStore {
	if file == "" {
		file = store.DefaultLookupFile
	}
	return store.NewLookupStore(file, c.logger)
}

// NewWriter returns an output writer for dir using the configured output
// delimiter.
func (c *Container) NewWriter(dir string) *report.Writer {
	return report.NewWriter(dir, c.outputDelimiter, c.logger.WithField(logging.FieldStage, "report"))
}

// Close performs cleanup of container resources.
func (c *Container) Close() error {
	c.logger.Debug("Container closed")
	return nil
}
