package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/agbru/yieldfit/internal/nelsonsiegel"
	"github.com/agbru/yieldfit/internal/report"
	"github.com/agbru/yieldfit/internal/ui"
)

// OutputConfig selects how a report is shown and saved.
type OutputConfig struct {
	// OutputFile saves the report to this path (empty for none). A .json
	// extension, or JSON mode, writes JSON; anything else plain text.
	OutputFile string
	// Plot writes a PNG chart to this path (empty for none).
	Plot string
	// JSON prints the report as JSON.
	JSON bool
	// Quiet prints the parameters only, for scripts.
	Quiet bool
	// Verbose adds residuals and the error history.
	Verbose bool
}

// FormatQuietResult formats parameters as four space separated numbers in
// the order a1 a2 a3 b.
func FormatQuietResult(p nelsonsiegel.Params) string {
	fields := make([]string, nelsonsiegel.NumParams)
	for i := range fields {
		fields[i] = strconv.FormatFloat(p.At(i), 'g', -1, 64)
	}
	return strings.Join(fields, " ")
}

// DisplayReport prints r according to cfg and writes the requested files.
func DisplayReport(out io.Writer, r report.Report, cfg OutputConfig) error {
	var renderer report.Renderer
	switch {
	case cfg.Quiet:
		fmt.Fprintln(out, FormatQuietResult(r.Params))
	case cfg.JSON:
		renderer = &report.JSONRenderer{Indent: true}
	default:
		renderer = &report.TextRenderer{Verbose: cfg.Verbose}
	}
	if renderer != nil {
		if err := renderer.Render(out, r); err != nil {
			return err
		}
	}

	if cfg.OutputFile != "" {
		var fileRenderer report.Renderer = &report.TextRenderer{Verbose: true, Plain: true}
		if cfg.JSON || strings.EqualFold(filepath.Ext(cfg.OutputFile), ".json") {
			fileRenderer = &report.JSONRenderer{Indent: true}
		}
		if err := WriteToFile(cfg.OutputFile, fileRenderer, r); err != nil {
			return err
		}
		announceFile(out, cfg, "Report", cfg.OutputFile)
	}
	if cfg.Plot != "" {
		if err := WriteToFile(cfg.Plot, report.NewChartRenderer(), r); err != nil {
			return err
		}
		announceFile(out, cfg, "Chart", cfg.Plot)
	}
	return nil
}

func announceFile(out io.Writer, cfg OutputConfig, what, path string) {
	if cfg.Quiet || cfg.JSON {
		return
	}
	fmt.Fprintf(out, "\n%s saved to: %s\n", what, ui.Paint(ui.ColorValue(), path))
}

// WriteToFile renders r into path, creating parent directories. The file
// is only created once rendering has succeeded.
func WriteToFile(path string, renderer report.Renderer, r report.Report) error {
	var buf bytes.Buffer
	if err := renderer.Render(&buf, r); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
