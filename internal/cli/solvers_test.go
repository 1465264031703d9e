package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/agbru/yieldfit/internal/config"
	"github.com/agbru/yieldfit/internal/curve"
	"github.com/agbru/yieldfit/internal/fit"
	"github.com/agbru/yieldfit/internal/testutil"
)

func TestGetSolversToRun(t *testing.T) {
	t.Parallel()
	factory := fit.NewDefaultFactory()
	tests := []struct {
		solver string
		want   []string
	}{
		{config.AllSolvers, []string{"bfgs", "descent", "nelder-mead"}},
		{"descent", []string{"descent"}},
		{"unknown", nil},
	}
	for _, tt := range tests {
		t.Run(tt.solver, func(t *testing.T) {
			t.Parallel()
			solvers := GetSolversToRun(config.AppConfig{Solver: tt.solver}, factory)
			if len(solvers) != len(tt.want) {
				t.Fatalf("got %d solvers, want %v", len(solvers), tt.want)
			}
			for i, s := range solvers {
				if s.Name() != tt.want[i] {
					t.Errorf("solver %d = %s, want %s", i, s.Name(), tt.want[i])
				}
			}
		})
	}
}

func TestPrintExecution(t *testing.T) {
	t.Parallel()
	c, err := curve.Preset(curve.DefaultPreset)
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.AppConfig{Timeout: time.Minute, Tolerance: 0.0039, Speed: 0.02, Epsilon: 0.01, MaxIterations: 10000}
	var out bytes.Buffer
	PrintExecutionConfig(cfg, c, &out)
	factory := fit.NewDefaultFactory()
	PrintExecutionMode(GetSolversToRun(config.AppConfig{Solver: "descent"}, factory), &out)
	PrintExecutionMode(GetSolversToRun(config.AppConfig{Solver: config.AllSolvers}, factory), &out)

	text := testutil.StripAnsiCodes(out.String())
	for _, want := range []string{
		"Fitting curve reference",
		"timeout of 1m0s",
		"Tolerance 0.0039, step size 0.02, epsilon 0.01, at most 10000 iterations.",
		"Single fit with the descent solver",
		"Parallel comparison of 3 solvers",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}
