package fit

import (
	"fmt"
	"math"
)

// StagnationPolicy adapts the descent speed when the error stops moving.
// Adjust receives the errors recorded so far (oldest first), the current
// speed and the configured base speed, and returns the speed for the next
// step.
type StagnationPolicy interface {
	Name() string
	Adjust(history []float64, speed, base float64) float64
}

// Policy names accepted by NewStagnationPolicy.
const (
	PolicyLiteral = "literal"
	PolicyRolling = "rolling"
)

const (
	// DefaultStagnationThreshold is the error change below which progress
	// counts as stalled.
	DefaultStagnationThreshold = 0.01
	// DefaultEscalationFactor multiplies the speed on a stall.
	DefaultEscalationFactor = 20
	// DefaultStagnationMinHistory is the number of recorded errors the
	// literal policy waits for before it may escalate.
	DefaultStagnationMinHistory = 10
	// DefaultRollingWindow is the look-back of the rolling policy.
	DefaultRollingWindow = 10
	// DefaultMaxSpeed caps the rolling policy.
	DefaultMaxSpeed = 8.0
)

// LiteralPolicy compares the newest error with the first error ever
// recorded. Once more than MinHistory errors exist and the two differ by
// less than Threshold, the speed is multiplied by Factor, again on every
// step the condition holds. It never slows down.
type LiteralPolicy struct {
	MinHistory int
	Threshold  float64
	Factor     float64
}

// NewLiteralPolicy returns the literal policy with its default constants.
func NewLiteralPolicy() LiteralPolicy {
	return LiteralPolicy{
		MinHistory: DefaultStagnationMinHistory,
		Threshold:  DefaultStagnationThreshold,
		Factor:     DefaultEscalationFactor,
	}
}

// Name returns "literal".
func (LiteralPolicy) Name() string { return PolicyLiteral }

// Adjust implements StagnationPolicy.
func (l LiteralPolicy) Adjust(history []float64, speed, _ float64) float64 {
	if len(history) > l.MinHistory && math.Abs(history[len(history)-1]-history[0]) < l.Threshold {
		return speed * l.Factor
	}
	return speed
}

// RollingPolicy compares the newest error with the one Window steps back.
// A stall multiplies the speed by Factor up to MaxSpeed; renewed progress
// divides it by Factor down to the base speed.
type RollingPolicy struct {
	Window    int
	Threshold float64
	Factor    float64
	MaxSpeed  float64
}

// NewRollingPolicy returns the rolling policy with its default constants.
func NewRollingPolicy() RollingPolicy {
	return RollingPolicy{
		Window:    DefaultRollingWindow,
		Threshold: DefaultStagnationThreshold,
		Factor:    DefaultEscalationFactor,
		MaxSpeed:  DefaultMaxSpeed,
	}
}

// Name returns "rolling".
func (RollingPolicy) Name() string { return PolicyRolling }

// Adjust implements StagnationPolicy.
func (r RollingPolicy) Adjust(history []float64, speed, base float64) float64 {
	if len(history) <= r.Window {
		return speed
	}
	newest := history[len(history)-1]
	previous := history[len(history)-1-r.Window]
	if math.Abs(newest-previous) < r.Threshold {
		return math.Min(speed*r.Factor, math.Max(r.MaxSpeed, base))
	}
	if speed > base {
		return math.Max(speed/r.Factor, base)
	}
	return speed
}

// NewStagnationPolicy returns the named policy with default constants.
// An empty name selects the literal policy.
func NewStagnationPolicy(name string) (StagnationPolicy, error) {
	switch name {
	case "", PolicyLiteral:
		return NewLiteralPolicy(), nil
	case PolicyRolling:
		return NewRollingPolicy(), nil
	}
	return nil, fmt.Errorf("unknown stagnation policy %q (want %s or %s)", name, PolicyLiteral, PolicyRolling)
}
