package analytics

import (
	"encoding/json"
	"math"
	"strconv"
)

// Ratio is a metric that may be undefined (NaN) or unbounded (+Inf).
// It encodes as null when undefined and as the string "Infinity" when
// unbounded, so "no data" is never confused with zero.
type Ratio float64

// Undefined is the "no data" ratio.
func Undefined() Ratio { return Ratio(math.NaN()) }

// Defined reports whether r carries a value.
func (r Ratio) Defined() bool { return !math.IsNaN(float64(r)) }

// Finite reports whether r is a regular number.
func (r Ratio) Finite() bool {
	f := float64(r)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// IsInf reports whether r is +Inf.
func (r Ratio) IsInf() bool { return math.IsInf(float64(r), 1) }

func (r Ratio) MarshalJSON() ([]byte, error) {
	f := float64(r)
	switch {
	case math.IsNaN(f):
		return []byte("null"), nil
	case math.IsInf(f, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Infinity"`), nil
	}
	return json.Marshal(f)
}

func (r *Ratio) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "null":
		*r = Undefined()
		return nil
	case `"Infinity"`:
		*r = Ratio(math.Inf(1))
		return nil
	case `"-Infinity"`:
		*r = Ratio(math.Inf(-1))
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*r = Ratio(f)
	return nil
}

func divide(num, den float64) Ratio {
	if den == 0 {
		return Undefined()
	}
	return Ratio(num / den)
}
