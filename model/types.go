package model

import (
	"bytes"
	"fmt"
	"math"
	"slices"
	"strconv"

	gojson "github.com/goccy/go-json"
)

// Result is the outcome of a single local minimization.
type Result struct {
	// Pos is the converged position.
	Pos []float64 `json:"pos"`
	// Value is the objective value at Pos.
	Value float64 `json:"value"`
	// Success is false when the minimizer ran out of budget before converging.
	Success bool `json:"success"`
}

// String returns a compact representation of the result.
func (r Result) String() string {
	return fmt.Sprintf("Result(pos=%v, value=%g, success=%t)", r.Pos, r.Value, r.Success)
}

type resultJSON struct {
	Pos     []float64 `json:"pos"`
	Value   Float     `json:"value"`
	Success bool      `json:"success"`
}

// MarshalJSON encodes r, writing non-finite values as strings.
func (r Result) MarshalJSON() ([]byte, error) {
	return gojson.Marshal(resultJSON{Pos: r.Pos, Value: Float(r.Value), Success: r.Success})
}

// UnmarshalJSON decodes r, accepting the string forms written by MarshalJSON.
func (r *Result) UnmarshalJSON(data []byte) error {
	var aux resultJSON
	if err := gojson.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = Result{Pos: aux.Pos, Value: float64(aux.Value), Success: aux.Success}
	return nil
}

// Float is a float64 whose JSON form also covers NaN and the infinities,
// encoded as "nan", "inf" and "-inf".
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte(`"nan"`), nil
	case math.IsInf(v, 1):
		return []byte(`"inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-inf"`), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Float) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		switch s := string(data[1 : len(data)-1]); s {
		case "nan", "NaN":
			*f = Float(math.NaN())
		case "inf", "+inf", "Infinity":
			*f = Float(math.Inf(1))
		case "-inf", "-Infinity":
			*f = Float(math.Inf(-1))
		default:
			return fmt.Errorf("model: invalid float %q", s)
		}
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("model: invalid float %s: %w", data, err)
	}
	*f = Float(v)
	return nil
}

// WithPos returns a copy of r located at pos.
func (r Result) WithPos(pos []float64) Result {
	return Result{Pos: pos, Value: r.Value, Success: r.Success}
}

// Simplex is a configuration of d+1 vertices in d dimensions.
type Simplex [][]float64

// Dim returns the dimension of the space the simplex lives in.
func (s Simplex) Dim() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

// Translate returns a copy of s shifted by offset.
func (s Simplex) Translate(offset []float64) Simplex {
	out := make(Simplex, len(s))
	for i, v := range s {
		w := make([]float64, len(v))
		for j := range v {
			w[j] = v[j] + offset[j]
		}
		out[i] = w
	}
	return out
}

// Clone returns a deep copy of s.
func (s Simplex) Clone() Simplex {
	out := make(Simplex, len(s))
	for i, v := range s {
		out[i] = slices.Clone(v)
	}
	return out
}

// Equal reports whether both simplices have identical vertices.
func (s Simplex) Equal(o Simplex) bool {
	return slices.EqualFunc(s, o, func(a, b []float64) bool { return slices.Equal(a, b) })
}
