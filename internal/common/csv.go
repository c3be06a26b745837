// Package common provides the CSV plumbing shared by the loaders and the
// report writers.
package common

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/budget-monitor/internal/logging"
	"fjacquet/budget-monitor/internal/models"
	"fjacquet/budget-monitor/internal/parsererror"

	"github.com/gocarina/gocsv"
	"golang.org/x/text/encoding/charmap"
)

// Supported source encodings.
const (
	EncodingLatin1 = "latin1"
	EncodingUTF8   = "utf8"
)

// ReadOptions controls how a delimited source is decoded.
type ReadOptions struct {
	// Source names the input in errors and logs.
	Source string
	// Delimiter separates fields; zero means ','.
	Delimiter rune
	// Encoding is latin1 or utf8; empty means utf8.
	Encoding string
	// Columns maps internal column names to source header names. Internal
	// names not present in the map are expected verbatim.
	Columns map[string]string
	// Required lists internal column names that must be present.
	Required []string
}

// DecodeReader wraps r so that it yields UTF-8 regardless of the source
// encoding.
func DecodeReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case "", EncodingUTF8, "utf-8":
		return r, nil
	case EncodingLatin1, "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder().Reader(r), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}

// HeaderMappingReader is a gocsv.CSVReader that renames the header row from
// source names to internal names and checks that required columns exist.
type HeaderMappingReader struct {
	reader   *csv.Reader
	source   string
	rename   map[string]string
	required []string
	header   bool
}

// NewHeaderMappingReader builds a reader over r using opts.
func NewHeaderMappingReader(r io.Reader, opts ReadOptions) *HeaderMappingReader {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rename := make(map[string]string, len(opts.Columns))
	for internal, header := range opts.Columns {
		rename[strings.TrimSpace(header)] = internal
	}

	return &HeaderMappingReader{
		reader:   reader,
		source:   opts.Source,
		rename:   rename,
		required: opts.Required,
	}
}

// Read returns the next record; the first call returns the renamed header.
func (h *HeaderMappingReader) Read() ([]string, error) {
	record, err := h.reader.Read()
	if err != nil {
		if !h.header && errors.Is(err, io.EOF) {
			return nil, &parsererror.SchemaViolationError{Source: h.source, Reason: "file is empty"}
		}
		return nil, err
	}
	if h.header {
		return record, nil
	}
	h.header = true
	return h.mapHeader(record)
}

// ReadAll returns every remaining record.
func (h *HeaderMappingReader) ReadAll() ([][]string, error) {
	var records [][]string
	for {
		record, err := h.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
}

func (h *HeaderMappingReader) mapHeader(record []string) ([]string, error) {
	header := make([]string, len(record))
	present := make(map[string]bool, len(record))
	for i, cell := range record {
		name := strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff"))
		if internal, ok := h.rename[name]; ok {
			name = internal
		}
		header[i] = name
		present[name] = true
	}

	for _, column := range h.required {
		if !present[column] {
			return nil, &parsererror.SchemaViolationError{Source: h.source, Column: column}
		}
	}
	return header, nil
}

// ReadCSV decodes delimited data from r into a slice of T using gocsv.
func ReadCSV[T any](r io.Reader, opts ReadOptions, logger logging.Logger) ([]T, error) {
	decoded, err := DecodeReader(r, opts.Encoding)
	if err != nil {
		return nil, err
	}

	var rows []T
	if err := gocsv.UnmarshalCSV(NewHeaderMappingReader(decoded, opts), &rows); err != nil {
		var schemaErr *parsererror.SchemaViolationError
		if errors.As(err, &schemaErr) {
			return nil, err
		}
		return nil, fmt.Errorf("error parsing CSV %s: %w", opts.Source, err)
	}

	if logger != nil {
		logger.Debug("Decoded CSV rows",
			logging.F(logging.FieldSource, opts.Source),
			logging.F(logging.FieldCount, len(rows)))
	}
	return rows, nil
}

// ReadCSVFile opens filePath and decodes it with ReadCSV. An empty
// opts.Source defaults to the file path.
func ReadCSVFile[T any](filePath string, opts ReadOptions, logger logging.Logger) ([]T, error) {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	logger.Info("Reading CSV file", logging.F(logging.FieldFile, filePath))

	file, err := os.Open(filePath) // #nosec G304 -- path is provided by the operator
	if err != nil {
		logger.WithError(err).Error("Failed to open CSV file")
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file")
		}
	}()

	if opts.Source == "" {
		opts.Source = filePath
	}
	rows, err := ReadCSV[T](file, opts, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to parse CSV file")
		return nil, err
	}

	logger.Info("Successfully read CSV data",
		logging.F(logging.FieldFile, filePath),
		logging.F(logging.FieldCount, len(rows)))
	return rows, nil
}

// WriteCSV marshals rows to w with the given delimiter, header included.
func WriteCSV[T any](w io.Writer, rows []T, delimiter rune) error {
	csvWriter := csv.NewWriter(w)
	if delimiter != 0 {
		csvWriter.Comma = delimiter
	}
	if rows == nil {
		rows = []T{}
	}
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}

// WriteCSVFile creates csvFile (and its directory) and writes rows to it.
func WriteCSVFile[T any](csvFile string, rows []T, delimiter rune, logger logging.Logger) error {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	dir := filepath.Dir(csvFile)
	if err := os.MkdirAll(dir, models.PermissionDirectory); err != nil {
		logger.WithError(err).Error("Failed to create directory")
		return fmt.Errorf("error creating directory: %w", err)
	}

	file, err := os.OpenFile(csvFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, models.PermissionReportFile) // #nosec G304
	if err != nil {
		logger.WithError(err).Error("Failed to create CSV file")
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file")
		}
	}()

	if err := WriteCSV(file, rows, delimiter); err != nil {
		logger.WithError(err).Error("Failed to marshal rows to CSV")
		return err
	}

	logger.Info("Wrote CSV file",
		logging.F(logging.FieldOutputFile, csvFile),
		logging.F(logging.FieldCount, len(rows)))
	return nil
}

// ParseDelimiter returns the single rune of s.
func ParseDelimiter(s string) (rune, error) {
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	return runes[0], nil
}
