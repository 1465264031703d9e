package fit

import (
	"math"

	"github.com/agbru/yieldfit/internal/curve"
	"github.com/agbru/yieldfit/internal/nelsonsiegel"
	"github.com/agbru/yieldfit/internal/parallel"
)

// DefaultEpsilon is the perturbation used for central differences.
const DefaultEpsilon = 0.01

// Gradient holds one partial derivative per parameter, in the order of
// nelsonsiegel.ParamNames.
type Gradient [nelsonsiegel.NumParams]float64

// Get returns the partial derivative for the named parameter.
func (g Gradient) Get(name string) (float64, bool) {
	i, ok := nelsonsiegel.Index(name)
	if !ok {
		return 0, false
	}
	return g[i], true
}

// Norm returns the Euclidean norm of g.
func (g Gradient) Norm() float64 {
	var s float64
	for _, v := range g {
		s += v * v
	}
	return math.Sqrt(s)
}

// CentralDifference estimates the gradient of obj at p with the symmetric
// difference (obj(p+ε·eᵢ) − obj(p−ε·eᵢ)) / 2ε for each parameter i.
// It evaluates obj twice per parameter.
func CentralDifference(obj Objective, p nelsonsiegel.Params, eps float64) (Gradient, error) {
	var g Gradient
	for i := range g {
		d, err := partial(obj, p, i, eps)
		if err != nil {
			return Gradient{}, err
		}
		g[i] = d
	}
	return g, nil
}

// CentralDifferenceParallel computes the same estimate as CentralDifference
// with every perturbed evaluation on its own goroutine. Each evaluation
// writes its own slot and the quotients are formed afterwards in the same
// order, so the result is identical to the sequential one.
func CentralDifferenceParallel(obj Objective, p nelsonsiegel.Params, eps float64) (Gradient, error) {
	const n = nelsonsiegel.NumParams
	values, err := parallel.Map(2*n, func(k int) (float64, error) {
		i, sign := k/2, 1.0
		if k%2 == 1 {
			sign = -1
		}
		return obj(p.WithAt(i, p.At(i)+sign*eps))
	})
	if err != nil {
		return Gradient{}, err
	}
	var g Gradient
	for i := range g {
		g[i] = (values[2*i] - values[2*i+1]) / (2 * eps)
	}
	return g, nil
}

// ErrorGradient is the central-difference gradient of SSE against c.
func ErrorGradient(p nelsonsiegel.Params, c *curve.Curve, eps float64) (Gradient, error) {
	return CentralDifference(SSEObjective(c), p, eps)
}

func partial(obj Objective, p nelsonsiegel.Params, i int, eps float64) (float64, error) {
	upper, err := obj(p.WithAt(i, p.At(i)+eps))
	if err != nil {
		return 0, err
	}
	lower, err := obj(p.WithAt(i, p.At(i)-eps))
	if err != nil {
		return 0, err
	}
	return (upper - lower) / (2 * eps), nil
}
