package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// GoldenParams is the parameter set of one golden case.
type GoldenParams struct {
	A1 float64 `json:"a1"`
	A2 float64 `json:"a2"`
	A3 float64 `json:"a3"`
	B  float64 `json:"b"`
}

// GoldenPoint is one expected model value.
type GoldenPoint struct {
	Maturity float64 `json:"maturity"`
	Yield    float64 `json:"yield"`
}

// GoldenCase represents a single test case in the golden file.
type GoldenCase struct {
	Name   string        `json:"name"`
	Params GoldenParams  `json:"params"`
	Points []GoldenPoint `json:"points"`
}

func main() {
	outputDir := flag.String("out", "internal/nelsonsiegel/testdata", "Output directory for the golden file")
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	filename := filepath.Join(*outputDir, "golden_curves.json")
	file, err := os.Create(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	// Shapes worth pinning: the default start, the fitted reference curve,
	// flat, inverted and humped curves, and a negative decay.
	cases := []struct {
		name   string
		params GoldenParams
	}{
		{"default-start", GoldenParams{0.5, 0.5, 0.5, 1.0}},
		{"reference-fit", GoldenParams{2.8293929655597525, -0.5680177631674802, -2.236880581355693, 2.6200831732627528}},
		{"flat", GoldenParams{3.0, 0.0, 0.0, 2.0}},
		{"inverted", GoldenParams{4.0, 1.5, -0.75, 1.5}},
		{"humped", GoldenParams{5.0, -2.0, 6.0, 3.0}},
		{"negative-decay", GoldenParams{1.0, 0.25, 0.25, -40.0}},
	}
	maturities := []float64{0.25, 0.5, 1, 2, 3, 5, 7, 10, 20, 30}

	fmt.Println("Generating golden data...")

	data := make([]GoldenCase, 0, len(cases))
	for _, c := range cases {
		gc := GoldenCase{Name: c.name, Params: c.params}
		for _, t := range maturities {
			gc.Points = append(gc.Points, GoldenPoint{Maturity: t, Yield: factorYield(t, c.params)})
		}
		data = append(data, gc)
		fmt.Printf("Generated %s\n", c.name)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully generated golden file at %s\n", filename)
}

// factorYield evaluates the model through its factor loadings
//
//	a1 + a2·(1−e^−x)/x + a3·((1−e^−x)/x − e^−x),  x = t/b
//
// a different arrangement of the same formula, so the golden values act as
// an oracle for the package implementation.
func factorYield(t float64, p GoldenParams) float64 {
	x := t / p.B
	e := math.Exp(-x)
	slope := (1 - e) / x
	return p.A1 + p.A2*slope + p.A3*(slope-e)
}
