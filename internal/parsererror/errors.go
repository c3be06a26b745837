// Package parsererror defines the typed errors raised while loading ledger,
// budget and lookup sources.
package parsererror

import (
	"errors"
	"fmt"
)

var (
	// ErrSchemaViolation matches any SchemaViolationError via errors.Is.
	ErrSchemaViolation = errors.New("schema violation")

	// ErrMalformedValue matches any MalformedValueError via errors.Is.
	ErrMalformedValue = errors.New("malformed value")
)

// SchemaViolationError is raised when a source lacks a required column or a
// required lookup table is absent. It is the only fatal error kind.
type SchemaViolationError struct {
	Source string
	Column string
	Reason string
}

func (e *SchemaViolationError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("schema violation in %s: %s", e.Source, e.Reason)
	}
	if e.Reason == "" {
		return fmt.Sprintf("schema violation in %s: required column '%s' is missing", e.Source, e.Column)
	}
	return fmt.Sprintf("schema violation in %s: column '%s': %s", e.Source, e.Column, e.Reason)
}

// Is reports ErrSchemaViolation as a match.
func (e *SchemaViolationError) Is(target error) bool {
	return target == ErrSchemaViolation
}

// MalformedValueError describes an amount or period that could not be parsed.
// Line is the 1-based data row number in the source (header excluded).
type MalformedValueError struct {
	Source string
	Line   int
	Field  string
	Value  string
	Err    error
}

func (e *MalformedValueError) Error() string {
	return fmt.Sprintf("%s: row %d: failed to parse %s='%s': %v",
		e.Source, e.Line, e.Field, e.Value, e.Err)
}

func (e *MalformedValueError) Unwrap() error {
	return e.Err
}

// Is reports ErrMalformedValue as a match.
func (e *MalformedValueError) Is(target error) bool {
	return target == ErrMalformedValue
}

// ValidationError represents an invalid input or output argument.
type ValidationError struct {
	FilePath string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.FilePath, e.Reason)
}
