package fit

import (
	"testing"

	"github.com/agbru/yieldfit/internal/curve"
	"github.com/agbru/yieldfit/internal/nelsonsiegel"
)

var (
	referenceTerms  = []int{1, 2, 3, 5, 7, 10, 20, 30}
	referenceYields = []float64{2.03, 1.90, 1.87, 1.91, 2.03, 2.15, 2.42, 2.62}
)

func referenceCurve(t testing.TB) *curve.Curve {
	t.Helper()
	c, err := curve.New(referenceTerms, referenceYields)
	if err != nil {
		t.Fatalf("building reference curve: %v", err)
	}
	return c
}

func syntheticCurve(t testing.TB, p nelsonsiegel.Params) *curve.Curve {
	t.Helper()
	c, err := curve.Synthetic(p, referenceTerms)
	if err != nil {
		t.Fatalf("building synthetic curve: %v", err)
	}
	return c
}

// bowl is a separable quadratic with minimum at center and weights w; its
// gradient is 2·w·(p − center).
func bowl(center nelsonsiegel.Params, w [4]float64) Objective {
	return func(p nelsonsiegel.Params) (float64, error) {
		var s float64
		for i := 0; i < nelsonsiegel.NumParams; i++ {
			d := p.At(i) - center.At(i)
			s += w[i] * d * d
		}
		return s, nil
	}
}
