package nelsonsiegel

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/agbru/yieldfit/internal/errors"
)

type goldenCase struct {
	Name   string  `json:"name"`
	Params Params  `json:"params"`
	Points []Point `json:"points"`
}

func TestYieldAgainstGoldenFile(t *testing.T) {
	t.Parallel()
	goldenPath := filepath.Join("testdata", "golden_curves.json")
	file, err := os.Open(goldenPath)
	if err != nil {
		t.Fatalf("Failed to open golden file: %v. Did you run 'go run ./cmd/generate-golden'?", err)
	}
	defer file.Close()

	var cases []goldenCase
	if err := json.NewDecoder(file).Decode(&cases); err != nil {
		t.Fatalf("Failed to decode golden file: %v", err)
	}
	if len(cases) == 0 {
		t.Fatal("golden file holds no cases")
	}

	for _, gc := range cases {
		t.Run(gc.Name, func(t *testing.T) {
			t.Parallel()
			for _, pt := range gc.Points {
				got, err := Yield(pt.Maturity, gc.Params)
				if err != nil {
					t.Fatalf("Yield(%v) failed: %v", pt.Maturity, err)
				}
				if diff := math.Abs(got - pt.Yield); diff > 1e-12*math.Max(1, math.Abs(pt.Yield)) {
					t.Errorf("Yield(%v) = %.17g, want %.17g", pt.Maturity, got, pt.Yield)
				}
			}
		})
	}
}

func TestYieldKnownValues(t *testing.T) {
	t.Parallel()
	// With a2 = a3 = 0 the curve is flat at a1.
	flat := Params{A1: 2.5, B: 1.7}
	for _, m := range []float64{1, 5, 30} {
		if got := flat.YieldAt(m); math.Abs(got-2.5) > 1e-15 {
			t.Errorf("flat curve at %v = %v, want 2.5", m, got)
		}
	}

	// Short end tends to a1+a2, long end to a1.
	p := Params{A1: 3, A2: -1, A3: 2, B: 2}
	if got := p.YieldAt(1e-6); math.Abs(got-2) > 1e-5 {
		t.Errorf("short end = %v, want about 2", got)
	}
	if got := p.YieldAt(1e6); math.Abs(got-3) > 1e-5 {
		t.Errorf("long end = %v, want about 3", got)
	}
}

func TestYieldDomainErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		t        float64
		p        Params
		sentinel error
	}{
		{"zero maturity", 0, DefaultStart, apperrors.ErrInvalidInput},
		{"negative maturity", -1, DefaultStart, apperrors.ErrInvalidInput},
		{"NaN maturity", math.NaN(), DefaultStart, apperrors.ErrInvalidInput},
		{"infinite maturity", math.Inf(1), DefaultStart, apperrors.ErrInvalidInput},
		{"zero decay", 5, DefaultStart.With("b", 0), apperrors.ErrNumericInstability},
		{"tiny decay", 5, DefaultStart.With("b", MinDecay/2), apperrors.ErrNumericInstability},
		{"NaN decay", 5, DefaultStart.With("b", math.NaN()), apperrors.ErrNumericInstability},
		{"overflowing decay", 30, Params{A1: 1, A2: 1, A3: 1, B: -0.01}, apperrors.ErrNumericInstability},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			y, err := Yield(tt.t, tt.p)
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("Yield() error = %v, want %v", err, tt.sentinel)
			}
			if y != 0 {
				t.Errorf("Yield() value = %v on error, want 0", y)
			}
			if !math.IsNaN(tt.p.YieldAt(tt.t)) {
				t.Error("YieldAt should return NaN where Yield fails")
			}
		})
	}
}

func TestCurve(t *testing.T) {
	t.Parallel()
	points, err := Curve(DefaultStart, 1, MaxMaturity, 1)
	if err != nil {
		t.Fatalf("Curve() error: %v", err)
	}
	if len(points) != MaxMaturity {
		t.Fatalf("len(points) = %d, want %d", len(points), MaxMaturity)
	}
	for i, pt := range points {
		if pt.Maturity != float64(i+1) {
			t.Errorf("points[%d].Maturity = %v", i, pt.Maturity)
		}
		if pt.Yield != DefaultStart.YieldAt(pt.Maturity) {
			t.Errorf("points[%d].Yield = %v, want %v", i, pt.Yield, DefaultStart.YieldAt(pt.Maturity))
		}
	}

	fine, err := Curve(DefaultStart, 1, 2, 0.1)
	if err != nil || len(fine) != 11 {
		t.Errorf("Curve(1,2,0.1) = %d points, %v; want 11", len(fine), err)
	}

	nan, inf := math.NaN(), math.Inf(1)
	for _, bad := range []struct{ from, to, step float64 }{
		{1, 30, 0}, {5, 1, 1}, {0, 30, 1},
		{nan, 30, 1}, {1, nan, 1}, {1, 30, nan},
		{-inf, 30, 1}, {1, inf, 1}, {1, 30, inf}, {1, inf, inf},
	} {
		if _, err := Curve(DefaultStart, bad.from, bad.to, bad.step); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("Curve(%v,%v,%v) error = %v, want invalid input", bad.from, bad.to, bad.step, err)
		}
	}
}

func ExampleYield() {
	y, err := Yield(10, Params{A1: 3, A2: 0, A3: 0, B: 2})
	fmt.Println(y, err)
	// Output: 3 <nil>
}
