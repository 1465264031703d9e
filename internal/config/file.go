package config

import (
	"flag"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	apperrors "github.com/agbru/yieldfit/internal/errors"
)

// FileConfig is the TOML settings file. Keys mirror the long flag names;
// absent keys leave the defaults alone.
//
//	solver = "all"
//	preset = "reference"
//	tolerance = 0.0039
//	timeout = "30s"
//
//	[server]
//	port = "9090"
type FileConfig struct {
	Solver           *string  `toml:"solver"`
	Terms            *string  `toml:"terms"`
	Yields           *string  `toml:"yields"`
	CurveFile        *string  `toml:"curve_file"`
	Preset           *string  `toml:"preset"`
	Start            *string  `toml:"start"`
	Speed            *float64 `toml:"speed"`
	Tolerance        *float64 `toml:"tolerance"`
	MaxIterations    *int     `toml:"max_iterations"`
	Epsilon          *float64 `toml:"epsilon"`
	ParallelGradient *bool    `toml:"parallel_gradient"`
	Stagnation       *string  `toml:"stagnation"`
	TraceEvery       *int     `toml:"trace_every"`
	Timeout          *string  `toml:"timeout"`
	Plot             *string  `toml:"plot"`
	JSON             *bool    `toml:"json"`
	Output           *string  `toml:"output"`
	Verbose          *bool    `toml:"verbose"`

	Log struct {
		Level *string `toml:"level"`
		JSON  *bool   `toml:"json"`
	} `toml:"log"`

	UI struct {
		NoColor *bool   `toml:"no_color"`
		Theme   *string `toml:"theme"`
	} `toml:"ui"`

	Server struct {
		Enabled *bool   `toml:"enabled"`
		Port    *string `toml:"port"`
	} `toml:"server"`

	timeout time.Duration
}

// LoadFile reads and decodes a TOML settings file.
func LoadFile(path string) (FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, apperrors.NewConfigError("reading config file: %v", err)
	}
	var fc FileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return FileConfig{}, apperrors.NewConfigError("parsing config file %s: %v", path, err)
	}
	if fc.Timeout != nil {
		d, err := time.ParseDuration(*fc.Timeout)
		if err != nil {
			return FileConfig{}, apperrors.NewConfigError("config file %s: invalid timeout %q", path, *fc.Timeout)
		}
		fc.timeout = d
	}
	return fc, nil
}

// apply copies every value present in the file into config unless the
// matching flag was set on the command line.
func (fc FileConfig) apply(config *AppConfig, fs *flag.FlagSet) {
	setString := func(dst *string, v *string, flags ...string) {
		if v != nil && !isFlagSet(fs, flags...) {
			*dst = *v
		}
	}
	setFloat := func(dst *float64, v *float64, name string) {
		if v != nil && !isFlagSet(fs, name) {
			*dst = *v
		}
	}
	setInt := func(dst *int, v *int, name string) {
		if v != nil && !isFlagSet(fs, name) {
			*dst = *v
		}
	}
	setBool := func(dst *bool, v *bool, flags ...string) {
		if v != nil && !isFlagSet(fs, flags...) {
			*dst = *v
		}
	}

	setString(&config.Solver, fc.Solver, "solver")
	setString(&config.Terms, fc.Terms, "terms")
	setString(&config.Yields, fc.Yields, "yields")
	setString(&config.CurveFile, fc.CurveFile, "curve-file")
	setString(&config.Preset, fc.Preset, "preset")
	setString(&config.Start, fc.Start, "start")
	setFloat(&config.Speed, fc.Speed, "speed")
	setFloat(&config.Tolerance, fc.Tolerance, "tolerance")
	setInt(&config.MaxIterations, fc.MaxIterations, "max-iterations")
	setFloat(&config.Epsilon, fc.Epsilon, "epsilon")
	setBool(&config.ParallelGradient, fc.ParallelGradient, "parallel-gradient")
	setString(&config.Stagnation, fc.Stagnation, "stagnation")
	setInt(&config.TraceEvery, fc.TraceEvery, "trace-every")
	if fc.Timeout != nil && !isFlagSet(fs, "timeout") {
		config.Timeout = fc.timeout
	}
	setString(&config.Plot, fc.Plot, "plot")
	setBool(&config.JSONOutput, fc.JSON, "json")
	setString(&config.OutputFile, fc.Output, "output", "o")
	setBool(&config.Verbose, fc.Verbose, "v")
	setString(&config.LogLevel, fc.Log.Level, "log-level")
	setBool(&config.LogJSON, fc.Log.JSON, "log-json")
	setBool(&config.NoColor, fc.UI.NoColor, "no-color")
	setString(&config.Theme, fc.UI.Theme, "theme")
	setBool(&config.ServerMode, fc.Server.Enabled, "server")
	setString(&config.Port, fc.Server.Port, "port")
}
