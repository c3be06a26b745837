// Package store loads classification lookup tables from a single YAML file.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/budget-monitor/internal/fileutils"
	"fjacquet/budget-monitor/internal/logging"
	"fjacquet/budget-monitor/internal/models"
	"fjacquet/budget-monitor/internal/parsererror"

	"gopkg.in/yaml.v3"
)

// DefaultLookupFile is searched for when no explicit path is configured.
const DefaultLookupFile = "lookups.yaml"

// Sections every lookup file must define, even if empty.
const (
	SectionOrders  = "orders"
	SectionUnits   = "units"
	SectionCenters = "centers"
)

type orderEntry struct {
	Order string `yaml:"order"`
	Unit  string `yaml:"unit"`
}

type unitEntry struct {
	Unit    string `yaml:"unit"`
	Process string `yaml:"process"`
	Site    string `yaml:"site"`
}

type centerEntry struct {
	Center  string `yaml:"center"`
	Process string `yaml:"process"`
	Site    string `yaml:"site"`
}

// LookupStore manages loading of the lookup tables file.
type LookupStore struct {
	File   string
	logger logging.Logger
}

// NewLookupStore creates a store for the given file. An empty file name
// means DefaultLookupFile in the standard locations.
func NewLookupStore(file string, logger logging.Logger) *LookupStore {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &LookupStore{File: file, logger: logger}
}

// FindConfigFile looks for a configuration file in standard locations
func (s *LookupStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
		filepath.Join(".budget-monitor", filename),
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".config", "budget-monitor", filename)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}
	}

	return "", os.ErrNotExist
}

// Load reads the lookup file. A missing file, or a file missing one of the
// three sections, is a SchemaViolationError: the resolver cannot run
// without its tables.
func (s *LookupStore) Load() (*models.LookupTables, error) {
	filename := s.File
	if filename == "" {
		filename = DefaultLookupFile
	}

	filePath, err := s.FindConfigFile(filename)
	if err != nil {
		s.logger.Warn("Lookup file not found", logging.F(logging.FieldFile, filename))
		return nil, &parsererror.SchemaViolationError{Source: filename, Reason: "lookup file not found"}
	}

	data, err := fileutils.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading lookup file: %w", err)
	}

	tables, err := Parse(data, filePath)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Loaded lookup tables",
		logging.F(logging.FieldFile, filePath),
		logging.F("orders", len(tables.OrderToUnit)),
		logging.F("units", len(tables.UnitToClass)),
		logging.F("centers", len(tables.CenterToClass)),
		logging.F("duplicate_orders", tables.Duplicates.Orders),
		logging.F("duplicate_units", tables.Duplicates.Units),
		logging.F("duplicate_centers", tables.Duplicates.Centers))
	return tables, nil
}

// Parse decodes lookup tables from YAML. Entries are lists rather than
// mappings so that repeated keys reach the tables and resolve
// last-write-wins.
func Parse(data []byte, source string) (*models.LookupTables, error) {
	var sections map[string]yaml.Node
	if err := yaml.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("error parsing lookup file %s: %w", source, err)
	}
	for _, name := range []string{SectionOrders, SectionUnits, SectionCenters} {
		if _, ok := sections[name]; !ok {
			return nil, &parsererror.SchemaViolationError{Source: source, Column: name, Reason: "section is missing"}
		}
	}

	var orders []orderEntry
	var units []unitEntry
	var centers []centerEntry
	if err := decodeSection(sections, SectionOrders, &orders, source); err != nil {
		return nil, err
	}
	if err := decodeSection(sections, SectionUnits, &units, source); err != nil {
		return nil, err
	}
	if err := decodeSection(sections, SectionCenters, &centers, source); err != nil {
		return nil, err
	}

	tables := models.NewLookupTables()
	for _, e := range orders {
		if key := strings.TrimSpace(e.Order); key != "" {
			tables.PutOrder(key, strings.TrimSpace(e.Unit))
		}
	}
	for _, e := range units {
		if key := strings.TrimSpace(e.Unit); key != "" {
			tables.PutUnit(key, models.Classification{Process: strings.TrimSpace(e.Process), Site: strings.TrimSpace(e.Site)})
		}
	}
	for _, e := range centers {
		if key := strings.TrimSpace(e.Center); key != "" {
			tables.PutCenter(key, models.Classification{Process: strings.TrimSpace(e.Process), Site: strings.TrimSpace(e.Site)})
		}
	}
	return tables, nil
}

func decodeSection(sections map[string]yaml.Node, name string, out interface{}, source string) error {
	node := sections[name]
	// "orders:" with no value decodes as a null scalar; treat it as empty.
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		return nil
	}
	if node.Kind != yaml.SequenceNode {
		return &parsererror.SchemaViolationError{Source: source, Column: name, Reason: "section must be a list"}
	}
	if err := node.Decode(out); err != nil {
		return fmt.Errorf("error decoding %s section of %s: %w", name, source, err)
	}
	return nil
}
