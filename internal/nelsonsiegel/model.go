// Package nelsonsiegel evaluates the four-parameter Nelson-Siegel yield
// curve model
//
//	yield(t) = a1 + (a2+a3)·(b/t)·(1 − e^(−t/b)) − a3·e^(−t/b)
//
// where a1 is the long-run level, a2+a3 drives the slope, a3 the curvature
// and b the decay time in years.
package nelsonsiegel

import (
	"math"

	apperrors "github.com/agbru/yieldfit/internal/errors"
)

const (
	// MinDecay is the smallest |b| accepted by Yield.
	MinDecay = 1e-9
	// MaxMaturity is the default upper bound of the evaluation domain, in years.
	MaxMaturity = 30
)

// Yield evaluates the model at maturity t (years) for parameters p.
// A non-positive or non-finite maturity is invalid input; a decay parameter
// closer to zero than MinDecay, or a non-finite result, is a numeric
// instability.
func Yield(t float64, p Params) (float64, error) {
	if t <= 0 || math.IsNaN(t) || math.IsInf(t, 0) {
		return 0, apperrors.NewValidationError("maturity", "maturity must be a positive finite number of years", t)
	}
	if math.IsNaN(p.B) || math.Abs(p.B) < MinDecay {
		return 0, apperrors.NewNumericError("yield", "b", p.B)
	}
	decay := math.Exp(-t / p.B)
	y := p.A1 + (p.A2+p.A3)*(p.B/t)*(1-decay) - p.A3*decay
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, apperrors.NewNumericError("yield", "result", y)
	}
	return y, nil
}

// YieldAt is Yield for callers that have already validated their inputs.
// It returns NaN where Yield would fail.
func (p Params) YieldAt(t float64) float64 {
	y, err := Yield(t, p)
	if err != nil {
		return math.NaN()
	}
	return y
}

// Point is one (maturity, yield) sample of a curve.
type Point struct {
	Maturity float64 `json:"maturity"`
	Yield    float64 `json:"yield"`
}

// SampleCount returns the number of maturities Curve visits between from
// and to inclusive, every step years. Non-finite bounds, a non-positive step
// and a reversed range are invalid input.
func SampleCount(from, to, step float64) (int, error) {
	for _, b := range []struct {
		name string
		v    float64
	}{{"from", from}, {"to", to}, {"step", step}} {
		if math.IsNaN(b.v) || math.IsInf(b.v, 0) {
			return 0, apperrors.NewValidationError(b.name, "must be a finite number", b.v)
		}
	}
	if step <= 0 {
		return 0, apperrors.NewValidationError("step", "step must be positive", step)
	}
	if to < from {
		return 0, apperrors.NewValidationError("to", "upper bound is below lower bound", to)
	}
	n := math.Floor((to-from)/step+1e-9) + 1
	if n > math.MaxInt32 {
		return 0, apperrors.NewValidationError("step", "too many points", step)
	}
	return int(n), nil
}

// Curve samples the model from maturity from to maturity to inclusive, every
// step years.
func Curve(p Params, from, to, step float64) ([]Point, error) {
	n, err := SampleCount(from, to, step)
	if err != nil {
		return nil, err
	}
	points := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		t := from + float64(i)*step
		y, err := Yield(t, p)
		if err != nil {
			return nil, err
		}
		points = append(points, Point{Maturity: t, Yield: y})
	}
	return points, nil
}
