// Package validation checks command-line inputs before any file is parsed.
package validation

import (
	"fmt"
	"os"
	"strings"

	"fjacquet/budget-monitor/internal/fileutils"
	"fjacquet/budget-monitor/internal/parsererror"
)

// IsValidInputFile checks that path names an existing regular file.
func IsValidInputFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return &parsererror.ValidationError{FilePath: path, Reason: "input file path is empty"}
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return &parsererror.ValidationError{FilePath: path, Reason: "path does not exist"}
	}
	if err != nil {
		return fmt.Errorf("error checking path %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return &parsererror.ValidationError{FilePath: path, Reason: "not a regular file"}
	}
	return nil
}

// IsValidOutputFormat checks if the given summary format is supported.
func IsValidOutputFormat(format string) error {
	switch format {
	case "json", "xml", "yaml":
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s. Supported formats are 'json', 'xml', 'yaml'", format)
	}
}

// LookupSources validates the lookup flags: either a single YAML file or all
// three CSV tables, never both.
func LookupSources(yamlFile, orders, units, centers string) error {
	csvSet := 0
	for _, p := range []string{orders, units, centers} {
		if p != "" {
			csvSet++
		}
	}
	switch {
	case yamlFile != "" && csvSet > 0:
		return fmt.Errorf("use either --lookups or --orders/--units/--centers, not both")
	case yamlFile != "":
		if !fileutils.HasExtension(yamlFile, ".yaml", ".yml") {
			return &parsererror.ValidationError{FilePath: yamlFile, Reason: "lookup file must have a .yaml or .yml extension"}
		}
		return IsValidInputFile(yamlFile)
	case csvSet == 0:
		// The lookup store searches its default locations.
		return nil
	case csvSet != 3:
		return fmt.Errorf("--orders, --units and --centers must be given together")
	}
	for _, p := range []string{orders, units, centers} {
		if err := IsValidInputFile(p); err != nil {
			return err
		}
	}
	return nil
}
