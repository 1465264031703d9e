package nelsonsiegel

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/agbru/yieldfit/internal/errors"
)

// NumParams is the number of model parameters.
const NumParams = 4

// ParamNames lists the parameter names in vector order.
var ParamNames = [NumParams]string{"a1", "a2", "a3", "b"}

// Params is one point of the model's parameter space. It is a value type:
// every update produces a new Params and no two fits share one.
type Params struct {
	A1 float64 `json:"a1" toml:"a1" yaml:"a1"`
	A2 float64 `json:"a2" toml:"a2" yaml:"a2"`
	A3 float64 `json:"a3" toml:"a3" yaml:"a3"`
	B  float64 `json:"b" toml:"b" yaml:"b"`
}

// DefaultStart is the starting point used when none is configured.
var DefaultStart = Params{A1: 0.5, A2: 0.5, A3: 0.5, B: 1.0}

// At returns the i-th parameter in vector order. It panics if i is out of range.
func (p Params) At(i int) float64 {
	switch i {
	case 0:
		return p.A1
	case 1:
		return p.A2
	case 2:
		return p.A3
	case 3:
		return p.B
	}
	panic(fmt.Sprintf("nelsonsiegel: parameter index %d out of range", i))
}

// WithAt returns a copy of p with the i-th parameter set to v.
func (p Params) WithAt(i int, v float64) Params {
	switch i {
	case 0:
		p.A1 = v
	case 1:
		p.A2 = v
	case 2:
		p.A3 = v
	case 3:
		p.B = v
	default:
		panic(fmt.Sprintf("nelsonsiegel: parameter index %d out of range", i))
	}
	return p
}

// Index returns the vector position of the named parameter.
func Index(name string) (int, bool) {
	for i, n := range ParamNames {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// Get returns the named parameter.
func (p Params) Get(name string) (float64, bool) {
	i, ok := Index(name)
	if !ok {
		return 0, false
	}
	return p.At(i), true
}

// With returns a copy of p with the named parameter set to v. Unknown names
// leave p unchanged.
func (p Params) With(name string, v float64) Params {
	i, ok := Index(name)
	if !ok {
		return p
	}
	return p.WithAt(i, v)
}

// Vector returns the parameters as a freshly allocated slice in the order of
// ParamNames.
func (p Params) Vector() []float64 {
	return []float64{p.A1, p.A2, p.A3, p.B}
}

// FromVector builds Params from a slice in the order of ParamNames.
func FromVector(v []float64) (Params, error) {
	if len(v) != NumParams {
		return Params{}, apperrors.NewValidationError("params",
			fmt.Sprintf("expected %d values, got %d", NumParams, len(v)), len(v))
	}
	return Params{A1: v[0], A2: v[1], A3: v[2], B: v[3]}, nil
}

// IsFinite reports whether every parameter is a finite number.
func (p Params) IsFinite() bool {
	for i := 0; i < NumParams; i++ {
		v := p.At(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// String formats the parameters as "a1=… a2=… a3=… b=…".
func (p Params) String() string {
	var sb strings.Builder
	for i, name := range ParamNames {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(name)
		sb.WriteByte('=')
		sb.WriteString(strconv.FormatFloat(p.At(i), 'g', 8, 64))
	}
	return sb.String()
}

// ParseParams parses a comma separated list "a1,a2,a3,b".
func ParseParams(s string) (Params, error) {
	fields := strings.Split(s, ",")
	if len(fields) != NumParams {
		return Params{}, apperrors.NewValidationError("start",
			fmt.Sprintf("expected %d comma separated values, got %d", NumParams, len(fields)), s)
	}
	v := make([]float64, NumParams)
	for i, f := range fields {
		x, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
			return Params{}, apperrors.NewValidationError("start",
				fmt.Sprintf("invalid value %q for %s", strings.TrimSpace(f), ParamNames[i]), f)
		}
		v[i] = x
	}
	return FromVector(v)
}
