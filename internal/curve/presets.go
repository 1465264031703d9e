package curve

import (
	"fmt"
	"sort"

	apperrors "github.com/agbru/yieldfit/internal/errors"
)

type preset struct {
	terms  []int
	yields []float64
}

var presets = map[string]preset{
	// Treasury par yields used as the reference dataset.
	"reference": {
		terms:  []int{1, 2, 3, 5, 7, 10, 20, 30},
		yields: []float64{2.03, 1.90, 1.87, 1.91, 2.03, 2.15, 2.42, 2.62},
	},
	"normal": {
		terms:  []int{1, 2, 3, 5, 7, 10, 20, 30},
		yields: []float64{1.20, 1.55, 1.82, 2.21, 2.48, 2.71, 3.05, 3.15},
	},
	"inverted": {
		terms:  []int{1, 2, 3, 5, 7, 10, 20, 30},
		yields: []float64{5.10, 4.80, 4.55, 4.25, 4.10, 4.00, 3.95, 3.90},
	},
}

// DefaultPreset is the dataset used when no curve is configured.
const DefaultPreset = "reference"

// PresetNames returns the names of the built-in datasets, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns a built-in dataset by name.
func Preset(name string) (*Curve, error) {
	p, ok := presets[name]
	if !ok {
		return nil, apperrors.NewValidationError("preset",
			fmt.Sprintf("unknown preset %q (available: %v)", name, PresetNames()), name)
	}
	return New(p.terms, p.yields, WithName(name))
}
