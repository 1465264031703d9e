package fit

import "github.com/agbru/yieldfit/internal/nelsonsiegel"

// Step moves p against the gradient: every parameter v becomes
// v − speed·g[v]. It returns a new value and leaves p untouched. No bounds
// are applied; a step that leaves the model domain fails on the next
// evaluation.
func Step(p nelsonsiegel.Params, g Gradient, speed float64) nelsonsiegel.Params {
	next := p
	for i := range g {
		next = next.WithAt(i, p.At(i)-speed*g[i])
	}
	return next
}
