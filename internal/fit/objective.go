package fit

import (
	"fmt"

	"github.com/agbru/yieldfit/internal/curve"
	"github.com/agbru/yieldfit/internal/nelsonsiegel"
)

// Objective is a scalar function of the model parameters, minimized by the
// solvers. SSE bound to a curve is the objective used for fitting.
type Objective func(p nelsonsiegel.Params) (float64, error)

// SSE returns the sum of squared differences between the model and every
// observed point of c. Points are visited in maturity order, so the result is
// bit-for-bit reproducible.
func SSE(p nelsonsiegel.Params, c *curve.Curve) (float64, error) {
	var sum float64
	for i := 0; i < c.Len(); i++ {
		pt := c.At(i)
		y, err := nelsonsiegel.Yield(float64(pt.Maturity), p)
		if err != nil {
			return 0, fmt.Errorf("evaluating maturity %d: %w", pt.Maturity, err)
		}
		r := y - pt.Yield
		sum += r * r
	}
	return sum, nil
}

// SSEObjective binds SSE to a curve.
func SSEObjective(c *curve.Curve) Objective {
	return func(p nelsonsiegel.Params) (float64, error) {
		return SSE(p, c)
	}
}

// Residual compares the fitted model with one observation.
type Residual struct {
	Maturity int     `json:"maturity"`
	Observed float64 `json:"observed"`
	Fitted   float64 `json:"fitted"`
	Residual float64 `json:"residual"`
}

// Residuals evaluates p at every observed maturity of c.
func Residuals(p nelsonsiegel.Params, c *curve.Curve) ([]Residual, error) {
	out := make([]Residual, c.Len())
	for i := range out {
		pt := c.At(i)
		y, err := nelsonsiegel.Yield(float64(pt.Maturity), p)
		if err != nil {
			return nil, fmt.Errorf("evaluating maturity %d: %w", pt.Maturity, err)
		}
		out[i] = Residual{Maturity: pt.Maturity, Observed: pt.Yield, Fitted: y, Residual: y - pt.Yield}
	}
	return out, nil
}
