package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Environment Variable Utilities
// ─────────────────────────────────────────────────────────────────────────────

// getEnvString returns EnvPrefix+key, or defaultVal if unset.
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt returns EnvPrefix+key parsed as int, or defaultVal if unset or
// invalid.
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvFloat returns EnvPrefix+key parsed as float64, or defaultVal if
// unset or invalid.
func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvBool returns EnvPrefix+key parsed as bool, or defaultVal if unset.
// Accepts "true", "1", "yes" as true; "false", "0", "no" as false
// (case-insensitive).
func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultVal
}

// getEnvDuration returns EnvPrefix+key parsed as time.Duration ("5m",
// "30s"), or defaultVal if unset or invalid.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// isFlagSet checks if a flag was explicitly set on the command line.
func isFlagSet(fs *flag.FlagSet, names ...string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		for _, name := range names {
			if f.Name == name {
				found = true
			}
		}
	})
	return found
}

// applyEnvOverrides applies environment variables to every setting whose
// flag was not given on the command line.
//
// Supported environment variables:
//   - YIELDFIT_CONFIG: TOML settings file (string)
//   - YIELDFIT_SOLVER: solver name or "all" (string)
//   - YIELDFIT_TERMS, YIELDFIT_YIELDS: inline curve (comma lists)
//   - YIELDFIT_CURVE_FILE, YIELDFIT_PRESET: curve source (string)
//   - YIELDFIT_START: initial parameters a1,a2,a3,b (string)
//   - YIELDFIT_SPEED, YIELDFIT_TOLERANCE, YIELDFIT_EPSILON (float)
//   - YIELDFIT_MAX_ITERATIONS, YIELDFIT_TRACE_EVERY (int)
//   - YIELDFIT_STAGNATION: literal or rolling (string)
//   - YIELDFIT_PARALLEL_GRADIENT (bool)
//   - YIELDFIT_TIMEOUT (duration: "5m", "30s")
//   - YIELDFIT_PLOT, YIELDFIT_OUTPUT (path)
//   - YIELDFIT_JSON, YIELDFIT_QUIET, YIELDFIT_VERBOSE (bool)
//   - YIELDFIT_SERVER (bool), YIELDFIT_PORT (string)
//   - YIELDFIT_LOG_LEVEL (string), YIELDFIT_LOG_JSON (bool)
//   - YIELDFIT_NO_COLOR (bool), YIELDFIT_THEME (string)
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	applyNumericOverrides(config, fs)
	applyStringOverrides(config, fs)
	applyBooleanOverrides(config, fs)
	if !isFlagSet(fs, "timeout") {
		config.Timeout = getEnvDuration("TIMEOUT", config.Timeout)
	}
}

func applyNumericOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "speed") {
		config.Speed = getEnvFloat("SPEED", config.Speed)
	}
	if !isFlagSet(fs, "tolerance") {
		config.Tolerance = getEnvFloat("TOLERANCE", config.Tolerance)
	}
	if !isFlagSet(fs, "epsilon") {
		config.Epsilon = getEnvFloat("EPSILON", config.Epsilon)
	}
	if !isFlagSet(fs, "max-iterations") {
		config.MaxIterations = getEnvInt("MAX_ITERATIONS", config.MaxIterations)
	}
	if !isFlagSet(fs, "trace-every") {
		config.TraceEvery = getEnvInt("TRACE_EVERY", config.TraceEvery)
	}
}

func applyStringOverrides(config *AppConfig, fs *flag.FlagSet) {
	for _, o := range []struct {
		flag, env string
		dst       *string
	}{
		{"solver", "SOLVER", &config.Solver},
		{"terms", "TERMS", &config.Terms},
		{"yields", "YIELDS", &config.Yields},
		{"curve-file", "CURVE_FILE", &config.CurveFile},
		{"preset", "PRESET", &config.Preset},
		{"start", "START", &config.Start},
		{"stagnation", "STAGNATION", &config.Stagnation},
		{"plot", "PLOT", &config.Plot},
		{"port", "PORT", &config.Port},
		{"log-level", "LOG_LEVEL", &config.LogLevel},
		{"theme", "THEME", &config.Theme},
	} {
		if !isFlagSet(fs, o.flag) {
			*o.dst = getEnvString(o.env, *o.dst)
		}
	}
	if !isFlagSet(fs, "output", "o") {
		config.OutputFile = getEnvString("OUTPUT", config.OutputFile)
	}
}

func applyBooleanOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "parallel-gradient") {
		config.ParallelGradient = getEnvBool("PARALLEL_GRADIENT", config.ParallelGradient)
	}
	if !isFlagSet(fs, "json") {
		config.JSONOutput = getEnvBool("JSON", config.JSONOutput)
	}
	if !isFlagSet(fs, "quiet", "q") {
		config.Quiet = getEnvBool("QUIET", config.Quiet)
	}
	if !isFlagSet(fs, "v") {
		config.Verbose = getEnvBool("VERBOSE", config.Verbose)
	}
	if !isFlagSet(fs, "server") {
		config.ServerMode = getEnvBool("SERVER", config.ServerMode)
	}
	if !isFlagSet(fs, "log-json") {
		config.LogJSON = getEnvBool("LOG_JSON", config.LogJSON)
	}
	if !isFlagSet(fs, "no-color") {
		config.NoColor = getEnvBool("NO_COLOR", config.NoColor)
	}
}
