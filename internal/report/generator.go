package report

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"time"

	"fjacquet/budget-monitor/internal/filter"
	"fjacquet/budget-monitor/internal/logging"
	"fjacquet/budget-monitor/internal/models"
	"fjacquet/budget-monitor/internal/pipeline"
	"fjacquet/budget-monitor/internal/reconcile"

	"gopkg.in/yaml.v3"
)

// Supported summary formats.
const (
	FormatJSON = "json"
	FormatXML  = "xml"
	FormatYAML = "yaml"
)

// Summary is the run-level view written next to the CSV outputs. Amounts are
// rendered with two decimals.
type Summary struct {
	XMLName          xml.Name               `json:"-" yaml:"-" xml:"summary"`
	GeneratedAt      time.Time              `json:"generated_at" yaml:"generated_at" xml:"generated_at"`
	AsOf             string                 `json:"as_of,omitempty" yaml:"as_of,omitempty" xml:"as_of,omitempty"`
	CumulativeActual string                 `json:"cumulative_actual" yaml:"cumulative_actual" xml:"cumulative_actual"`
	CumulativeBudget string                 `json:"cumulative_budget" yaml:"cumulative_budget" xml:"cumulative_budget"`
	Ratio            string                 `json:"ratio" yaml:"ratio" xml:"ratio"`
	RatioDefined     bool                   `json:"ratio_defined" yaml:"ratio_defined" xml:"ratio_defined"`
	Utilisation      string                 `json:"utilisation_percent,omitempty" yaml:"utilisation_percent,omitempty" xml:"utilisation_percent,omitempty"`
	Status           reconcile.Status       `json:"status" yaml:"status" xml:"status"`
	Periods          int                    `json:"periods" yaml:"periods" xml:"periods"`
	Filter           filter.Dimensions      `json:"filter" yaml:"filter" xml:"filter"`
	Diagnostics      pipeline.Diagnostics   `json:"diagnostics" yaml:"diagnostics" xml:"diagnostics"`
	Classification   models.ResolutionStats `json:"classification" yaml:"classification" xml:"classification"`
	LookupDuplicates models.DuplicateCounts `json:"lookup_duplicates" yaml:"lookup_duplicates" xml:"lookup_duplicates"`
}

// NewSummary condenses a pipeline result. lookups may be nil.
func NewSummary(result *pipeline.Result, dims filter.Dimensions, lookups *models.LookupTables, now time.Time) *Summary {
	s := &Summary{
		GeneratedAt:    now.UTC(),
		Filter:         dims,
		Diagnostics:    result.Diagnostics,
		Classification: result.Resolution,
	}
	if lookups != nil {
		s.LookupDuplicates = lookups.Duplicates
	}
	if r := result.Report; r != nil {
		if r.AsOf != nil {
			s.AsOf = r.AsOf.String()
		}
		s.CumulativeActual = r.CumulativeActual.StringFixed(2)
		s.CumulativeBudget = r.CumulativeBudget.StringFixed(2)
		s.Ratio = r.Ratio.String()
		s.RatioDefined = r.Ratio.Defined
		if pct := r.Ratio.Percent(); pct != nil {
			s.Utilisation = pct.StringFixed(2)
		}
		s.Status = r.Status
		s.Periods = len(r.Rows)
	}
	return s
}

// ReportGenerator renders summaries in the supported formats.
type ReportGenerator struct {
	logger logging.Logger
}

// NewReportGenerator creates a new instance of ReportGenerator.
func NewReportGenerator(logger logging.Logger) *ReportGenerator {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &ReportGenerator{
		logger: logger.WithField("component", "ReportGenerator"),
	}
}

// GenerateReport renders the summary as json, xml or yaml.
func (g *ReportGenerator) GenerateReport(summary *Summary, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return g.generateJSONReport(summary)
	case FormatXML:
		return g.generateXMLReport(summary)
	case FormatYAML:
		return g.generateYAMLReport(summary)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

func (g *ReportGenerator) generateJSONReport(summary *Summary) ([]byte, error) {
	jsonReport, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return jsonReport, nil
}

func (g *ReportGenerator) generateXMLReport(summary *Summary) ([]byte, error) {
	xmlReport, err := xml.MarshalIndent(summary, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal XML report")
		return nil, fmt.Errorf("failed to marshal XML report: %w", err)
	}
	return []byte(xml.Header + string(xmlReport)), nil
}

func (g *ReportGenerator) generateYAMLReport(summary *Summary) ([]byte, error) {
	yamlReport, err := yaml.Marshal(summary)
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal YAML report")
		return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
	}
	return yamlReport, nil
}
