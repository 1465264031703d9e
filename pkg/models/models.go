/*
Package models defines the JSON documents exchanged with the yieldfit HTTP
API.

These models are used for:
- **Fit requests**: observed maturities and yields plus optional solver settings.
- **Fit responses**: fitted parameters, diagnostics and per-maturity residuals.
- **Curve evaluation**: modeled yields for a given parameter set.
*/
package models

// Params is a Nelson-Siegel parameter set.
type Params struct {
	A1 float64 `json:"a1"` // Long-run level.
	A2 float64 `json:"a2"` // Short-end slope.
	A3 float64 `json:"a3"` // Medium-term hump.
	B  float64 `json:"b"`  // Decay, in years.
}

// FitRequest is the body of POST /fit. Zero-valued settings select the
// server defaults.
type FitRequest struct {
	Terms         []int     `json:"terms"`                    // Maturities in whole years.
	Yields        []float64 `json:"yields"`                   // Observed yields, one per term.
	Solver        string    `json:"solver,omitempty"`         // Registered solver name.
	Start         *Params   `json:"start,omitempty"`          // Initial parameters.
	Speed         float64   `json:"speed,omitempty"`          // Descent step size.
	Tolerance     float64   `json:"tolerance,omitempty"`      // Convergence threshold on SSE.
	MaxIterations int       `json:"max_iterations,omitempty"` // Iteration budget.
	Stagnation    string    `json:"stagnation,omitempty"`     // "literal" or "rolling".
}

// Residual compares one observation with the fitted curve.
type Residual struct {
	Maturity int     `json:"maturity"`
	Observed float64 `json:"observed"`
	Fitted   float64 `json:"fitted"`
	Residual float64 `json:"residual"`
}

// FitResponse is the result of a fit. A fit that stopped on its iteration
// budget has Converged false, Status "not_converged" and carries the best
// parameters reached.
type FitResponse struct {
	RunID       string     `json:"run_id"`
	Solver      string     `json:"solver"`
	Status      string     `json:"status"`
	Message     string     `json:"message,omitempty"`
	Converged   bool       `json:"converged"`
	Params      Params     `json:"params"`
	SSE         float64    `json:"sse"`
	Iterations  int        `json:"iterations"`
	Evaluations int        `json:"evaluations"`
	Duration    string     `json:"duration"`
	Cached      bool       `json:"cached,omitempty"`
	Residuals   []Residual `json:"residuals,omitempty"`
}

// Point is one modeled (maturity, yield) sample.
type Point struct {
	Maturity float64 `json:"maturity"`
	Yield    float64 `json:"yield"`
}

// EvaluateResponse is the result of GET /evaluate.
type EvaluateResponse struct {
	Params Params  `json:"params"`
	Points []Point `json:"points"`
}

// SolversResponse lists the registered solvers for GET /solvers.
type SolversResponse struct {
	Solvers []SolverInfo `json:"solvers"`
	Default string       `json:"default"`
}

// SolverInfo describes one registered solver.
type SolverInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
