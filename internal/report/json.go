package report

import (
	"encoding/json"
	"io"
)

// JSONRenderer writes the report as one JSON document.
type JSONRenderer struct {
	Indent bool
}

// Render implements Renderer.
func (j *JSONRenderer) Render(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	if j.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(r)
}
