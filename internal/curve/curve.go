// Package curve holds observed yield curves: validated, immutable sets of
// (maturity, yield) points ready to be fitted.
package curve

import (
	"fmt"
	"math"
	"sort"

	apperrors "github.com/agbru/yieldfit/internal/errors"
	"github.com/agbru/yieldfit/internal/nelsonsiegel"
)

// Point is one observation: a maturity in whole years and its yield in percent.
type Point struct {
	Maturity int     `json:"maturity"`
	Yield    float64 `json:"yield"`
}

// Curve is an observed yield curve. Points are sorted by maturity so that
// any summation over them runs in a fixed order. A Curve is never modified
// after New returns it.
type Curve struct {
	name        string
	maxMaturity int
	points      []Point
}

// Option configures a Curve under construction.
type Option func(*Curve)

// WithName labels the curve for reports.
func WithName(name string) Option {
	return func(c *Curve) {
		c.name = name
	}
}

// WithMaxMaturity overrides the upper bound of the evaluation domain.
// Values below 1 are ignored.
func WithMaxMaturity(years int) Option {
	return func(c *Curve) {
		if years >= 1 {
			c.maxMaturity = years
		}
	}
}

// New validates parallel sequences of maturities and yields and builds a
// Curve from them. It fails with an ErrInvalidInput-classified error when
// the sequences are empty or differ in length, when a maturity is repeated
// or falls outside 1..MaxMaturity, or when a yield is not finite.
func New(terms []int, yields []float64, opts ...Option) (*Curve, error) {
	c := &Curve{maxMaturity: nelsonsiegel.MaxMaturity}
	for _, opt := range opts {
		opt(c)
	}

	if len(terms) != len(yields) {
		return nil, apperrors.NewValidationError("yields",
			fmt.Sprintf("got %d yields for %d maturities", len(yields), len(terms)), len(yields))
	}
	if len(terms) == 0 {
		return nil, apperrors.NewValidationError("terms", "at least one observation is required", nil)
	}

	seen := make(map[int]struct{}, len(terms))
	points := make([]Point, len(terms))
	for i, term := range terms {
		if term < 1 || term > c.maxMaturity {
			return nil, apperrors.NewValidationError("terms",
				fmt.Sprintf("maturity %d outside 1..%d", term, c.maxMaturity), term)
		}
		if _, dup := seen[term]; dup {
			return nil, apperrors.NewValidationError("terms",
				fmt.Sprintf("duplicate maturity %d", term), term)
		}
		seen[term] = struct{}{}
		y := yields[i]
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return nil, apperrors.NewValidationError("yields",
				fmt.Sprintf("yield for maturity %d is not finite", term), y)
		}
		points[i] = Point{Maturity: term, Yield: y}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Maturity < points[j].Maturity })
	c.points = points
	return c, nil
}

// Name returns the curve label, possibly empty.
func (c *Curve) Name() string { return c.name }

// Len returns the number of observations.
func (c *Curve) Len() int { return len(c.points) }

// MaxMaturity returns the upper bound of the curve's evaluation domain.
func (c *Curve) MaxMaturity() int { return c.maxMaturity }

// At returns the i-th observation in maturity order.
func (c *Curve) At(i int) Point { return c.points[i] }

// Points returns a copy of the observations in maturity order.
func (c *Curve) Points() []Point {
	out := make([]Point, len(c.points))
	copy(out, c.points)
	return out
}

// Terms returns the maturities in ascending order.
func (c *Curve) Terms() []int {
	out := make([]int, len(c.points))
	for i, p := range c.points {
		out[i] = p.Maturity
	}
	return out
}

// Yields returns the yields in maturity order.
func (c *Curve) Yields() []float64 {
	out := make([]float64, len(c.points))
	for i, p := range c.points {
		out[i] = p.Yield
	}
	return out
}

// Synthetic builds the curve that p produces exactly at the given maturities.
// It is used for tests and for checking solvers against a known answer.
func Synthetic(p nelsonsiegel.Params, terms []int, opts ...Option) (*Curve, error) {
	yields := make([]float64, len(terms))
	for i, t := range terms {
		y, err := nelsonsiegel.Yield(float64(t), p)
		if err != nil {
			return nil, err
		}
		yields[i] = y
	}
	return New(terms, yields, opts...)
}
