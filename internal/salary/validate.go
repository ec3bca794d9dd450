// Package salary asks a chat model for monthly salary comparisons and
// validates what comes back.
package salary

import (
	"encoding/json"
	"math"

	"github.com/mitchellh/mapstructure"
)

// DefaultCeiling is the exclusive upper bound for a monthly salary in USD.
const DefaultCeiling = 10000

const (
	comparisonKey   = "salary_comparison"
	philippinesKey  = "philippines"
	unitedStatesKey = "united_states"
)

// Comparison holds monthly median salaries in whole USD for both markets.
type Comparison struct {
	Philippines  int `json:"philippines" mapstructure:"philippines"`
	UnitedStates int `json:"united_states" mapstructure:"united_states"`
}

type rawComparison struct {
	Philippines  float64 `mapstructure:"philippines"`
	UnitedStates float64 `mapstructure:"united_states"`
}

type rawPayload struct {
	SalaryComparison rawComparison `mapstructure:"salary_comparison"`
}

// HasStructure reports whether obj carries salary_comparison with both markets.
func HasStructure(obj map[string]any) bool {
	nested, ok := obj[comparisonKey].(map[string]any)
	if !ok {
		return false
	}

	_, ph := nested[philippinesKey]
	_, us := nested[unitedStatesKey]
	return ph && us
}

// Validate accepts a decoded object, a JSON string or JSON bytes. The result
// is valid when both salaries are whole, non-negative and below ceiling.
// A non-positive ceiling means DefaultCeiling.
func Validate(input any, ceiling int) (*Comparison, bool) {
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}

	var obj map[string]any
	switch v := input.(type) {
	case map[string]any:
		obj = v
	case string:
		if err := json.Unmarshal([]byte(v), &obj); err != nil {
			return nil, false
		}
	case []byte:
		if err := json.Unmarshal(v, &obj); err != nil {
			return nil, false
		}
	default:
		return nil, false
	}

	if !HasStructure(obj) {
		return nil, false
	}

	var payload rawPayload
	if err := mapstructure.Decode(obj, &payload); err != nil {
		return nil, false
	}

	ph, ok := wholeBelow(payload.SalaryComparison.Philippines, ceiling)
	if !ok {
		return nil, false
	}
	us, ok := wholeBelow(payload.SalaryComparison.UnitedStates, ceiling)
	if !ok {
		return nil, false
	}

	return &Comparison{Philippines: ph, UnitedStates: us}, true
}

func wholeBelow(v float64, ceiling int) (int, bool) {
	if math.IsNaN(v) || v < 0 || v >= float64(ceiling) || math.Trunc(v) != v {
		return 0, false
	}
	return int(v), true
}
