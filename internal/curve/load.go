package curve

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/yieldfit/internal/errors"
)

// Format identifies a curve file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

// maxFileSize bounds curve files; real curves hold a few dozen points.
const maxFileSize = 1 << 20

// Document is the structured form of a curve file (JSON, TOML, YAML):
//
//	name = "treasury"
//	terms = [1, 2, 3, 5, 7, 10, 20, 30]
//	yields = [2.03, 1.90, 1.87, 1.91, 2.03, 2.15, 2.42, 2.62]
type Document struct {
	Name        string    `json:"name,omitempty" toml:"name,omitempty" yaml:"name,omitempty"`
	MaxMaturity int       `json:"max_maturity,omitempty" toml:"max_maturity,omitempty" yaml:"max_maturity,omitempty"`
	Terms       []int     `json:"terms" toml:"terms" yaml:"terms"`
	Yields      []float64 `json:"yields" toml:"yields" yaml:"yields"`
}

// Curve validates the document and builds the Curve it describes.
func (d Document) Curve() (*Curve, error) {
	opts := []Option{WithName(d.Name)}
	if d.MaxMaturity != 0 {
		opts = append(opts, WithMaxMaturity(d.MaxMaturity))
	}
	return New(d.Terms, d.Yields, opts...)
}

// FormatFromPath infers the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", apperrors.NewValidationError("curve-file",
		fmt.Sprintf("unsupported curve file extension %q (want .json, .toml, .yaml, .yml or .csv)", filepath.Ext(path)), path)
}

// Load reads a curve file, picking the decoder from its extension. The file
// name without extension becomes the curve name unless the file sets one.
func Load(path string) (*Curve, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening curve file: %w", err)
	}
	defer f.Close()

	doc, err := DecodeDocument(f, format)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if doc.Name == "" {
		doc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return doc.Curve()
}

// Decode reads a curve in the given format.
func Decode(r io.Reader, format Format) (*Curve, error) {
	doc, err := DecodeDocument(r, format)
	if err != nil {
		return nil, err
	}
	return doc.Curve()
}

// DecodeDocument reads a curve document without validating it.
func DecodeDocument(r io.Reader, format Format) (Document, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxFileSize+1))
	if err != nil {
		return Document{}, err
	}
	if len(data) > maxFileSize {
		return Document{}, apperrors.NewValidationError("curve-file", "file exceeds 1 MiB", len(data))
	}

	var doc Document
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	case FormatTOML:
		err = toml.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatCSV:
		doc, err = parseCSV(data)
	default:
		return Document{}, apperrors.NewValidationError("format", fmt.Sprintf("unknown format %q", format), format)
	}
	if err != nil {
		var verr apperrors.ValidationError
		if errors.As(err, &verr) {
			return Document{}, err
		}
		return Document{}, apperrors.NewValidationError("curve-file",
			fmt.Sprintf("malformed %s: %v", format, err), nil)
	}
	return doc, nil
}

// parseCSV reads "maturity,yield" rows. A first row whose maturity column is
// not an integer is treated as a header; lines starting with '#' are comments.
func parseCSV(data []byte) (Document, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comment = '#'
	r.FieldsPerRecord = 2
	r.TrimLeadingSpace = true

	var doc Document
	for line := 0; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Document{}, err
		}
		term, terr := strconv.Atoi(strings.TrimSpace(rec[0]))
		if terr != nil {
			if line == 0 {
				continue
			}
			return Document{}, apperrors.NewValidationError("terms",
				fmt.Sprintf("row %d: invalid maturity %q", line+1, rec[0]), rec[0])
		}
		y, yerr := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if yerr != nil {
			return Document{}, apperrors.NewValidationError("yields",
				fmt.Sprintf("row %d: invalid yield %q", line+1, rec[1]), rec[1])
		}
		doc.Terms = append(doc.Terms, term)
		doc.Yields = append(doc.Yields, y)
	}
	return doc, nil
}
