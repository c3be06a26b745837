package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Ratio is a quotient that may be undefined because its denominator is zero.
// Value is meaningful only when Defined is true.
type Ratio struct {
	Value   decimal.Decimal `json:"value" yaml:"value" xml:"value"`
	Defined bool            `json:"defined" yaml:"defined" xml:"defined"`
}

// NewRatio divides num by den, rounding to places decimals. A zero
// denominator yields an undefined ratio.
func NewRatio(num, den decimal.Decimal, places int32) Ratio {
	if den.IsZero() {
		return Ratio{}
	}
	return Ratio{Value: num.DivRound(den, places), Defined: true}
}

// Percent returns the ratio in percent, or nil when undefined.
func (r Ratio) Percent() *decimal.Decimal {
	if !r.Defined {
		return nil
	}
	p := r.Value.Mul(decimal.NewFromInt(100))
	return &p
}

// String renders the ratio, "undefined" when the denominator was zero.
func (r Ratio) String() string {
	if !r.Defined {
		return "undefined"
	}
	return r.Value.String()
}

// MarshalJSON writes null for an undefined ratio value so consumers never see
// a spurious zero.
func (r Ratio) MarshalJSON() ([]byte, error) {
	type wire struct {
		Value   *decimal.Decimal `json:"value"`
		Defined bool             `json:"defined"`
	}
	w := wire{Defined: r.Defined}
	if r.Defined {
		w.Value = &r.Value
	}
	return json.Marshal(w)
}
