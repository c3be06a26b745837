// Package ingest loads ledger transactions, budget entries and lookup tables
// from delimited sources into the internal schema.
package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"fjacquet/budget-monitor/internal/common"
	"fjacquet/budget-monitor/internal/logging"
	"fjacquet/budget-monitor/internal/models"
	"fjacquet/budget-monitor/internal/parsererror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Policy controls what happens to a row whose amount cannot be parsed.
type Policy string

const (
	// PolicyReject drops the row and records it in Rejected.
	PolicyReject Policy = "reject"
	// PolicyCoerce keeps the row with a zero amount and records it in Coerced.
	PolicyCoerce Policy = "coerce"
)

// ParsePolicy validates s. There is no default: an empty policy is an error.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyReject:
		return PolicyReject, nil
	case PolicyCoerce:
		return PolicyCoerce, nil
	case "":
		return "", fmt.Errorf("malformed value policy is required (%q or %q)", PolicyReject, PolicyCoerce)
	default:
		return "", fmt.Errorf("unknown malformed value policy %q (want %q or %q)", s, PolicyReject, PolicyCoerce)
	}
}

// Options configures a Loader.
type Options struct {
	Policy             Policy
	Delimiter          rune
	Encoding           string
	AmountFormat       models.AmountFormat
	TransactionColumns map[string]string
	BudgetColumns      map[string]string
	// NewID generates transaction ids; nil means uuid v4.
	NewID func() string
}

// Issue records one malformed value and the row it came from.
type Issue struct {
	TransactionID string                           `json:"transaction_id,omitempty" yaml:"transaction_id,omitempty"`
	Err           *parsererror.MalformedValueError `json:"-" yaml:"-"`
}

func (i Issue) String() string {
	return i.Err.Error()
}

// Loader reads the sources of one reconciliation run.
type Loader struct {
	opts   Options
	logger logging.Logger
}

// NewLoader validates opts and returns a Loader.
func NewLoader(opts Options, logger logging.Logger) (*Loader, error) {
	policy, err := ParsePolicy(string(opts.Policy))
	if err != nil {
		return nil, err
	}
	opts.Policy = policy
	if opts.AmountFormat.DecimalSeparator == "" {
		opts.AmountFormat = models.DefaultAmountFormat
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Loader{opts: opts, logger: logger}, nil
}

// Policy returns the configured malformed value policy.
func (l *Loader) Policy() Policy {
	return l.opts.Policy
}

func (l *Loader) readOptions(source string, columns map[string]string, required []string) common.ReadOptions {
	return common.ReadOptions{
		Source:    source,
		Delimiter: l.opts.Delimiter,
		Encoding:  l.opts.Encoding,
		Columns:   columns,
		Required:  required,
	}
}

// parseAmount applies the policy. ok is false when the row must be dropped.
func (l *Loader) parseAmount(source string, line int, raw string) (amount decimal.Decimal, issue *parsererror.MalformedValueError, ok bool) {
	value, err := models.ParseAmount(raw, l.opts.AmountFormat)
	if err == nil {
		return value, nil, true
	}
	issue = &parsererror.MalformedValueError{Source: source, Line: line, Field: "amount", Value: raw, Err: err}
	if l.opts.Policy == PolicyCoerce {
		return decimal.Zero, issue, true
	}
	return decimal.Zero, issue, false
}

func parsePeriod(source string, line int, field, raw string) (int, *parsererror.MalformedValueError) {
	p, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &parsererror.MalformedValueError{Source: source, Line: line, Field: field, Value: raw, Err: err}
	}
	if !models.ValidPeriod(p) {
		return 0, &parsererror.MalformedValueError{
			Source: source, Line: line, Field: field, Value: raw,
			Err: fmt.Errorf("out of range %d..%d", models.MinPeriod, models.MaxPeriod),
		}
	}
	return p, nil
}

func parseYear(source string, line int, field, raw string) (int, *parsererror.MalformedValueError) {
	y, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &parsererror.MalformedValueError{Source: source, Line: line, Field: field, Value: raw, Err: err}
	}
	return y, nil
}
