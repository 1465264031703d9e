// Package app wires configuration, solvers and output into the yieldfit
// command. It dispatches between a single fit, the comparison of every
// solver, the HTTP server and shell completion.
package app

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/agbru/yieldfit/internal/fit"
	"github.com/agbru/yieldfit/internal/nelsonsiegel"
)

// Build metadata, set with -ldflags:
//
//	go build -ldflags="-X github.com/agbru/yieldfit/internal/app.Version=v0.3.0 -X github.com/agbru/yieldfit/internal/app.Commit=$(git rev-parse --short HEAD)" ./cmd/yieldfit
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// ModelName identifies the fitted model in version output.
const ModelName = "nelson-siegel"

// HasVersionFlag reports whether args request the version. It is checked
// before flag parsing so that --version wins over otherwise invalid flags
// (e.g. "yieldfit --solver nope --version"). Arguments after "--" are not
// flags.
func HasVersionFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--" {
			return false
		}
		switch arg {
		case "--version", "-version", "-V", "--version=true", "-version=true":
			return true
		}
	}
	return false
}

// PrintVersion writes the build metadata, the model and the registered
// solvers of the global factory.
func PrintVersion(out io.Writer) {
	info := GetVersionInfo()
	fmt.Fprintf(out, "yieldfit %s\n", info.Version)
	fmt.Fprintf(out, "  Commit:     %s\n", info.Commit)
	fmt.Fprintf(out, "  Built:      %s\n", info.BuildDate)
	fmt.Fprintf(out, "  Go version: %s\n", info.GoVersion)
	fmt.Fprintf(out, "  OS/Arch:    %s/%s\n", info.OS, info.Arch)
	fmt.Fprintf(out, "  Model:      %s (%d parameters)\n", info.Model, nelsonsiegel.NumParams)
	fmt.Fprintf(out, "  Solvers:    %s\n", strings.Join(info.Solvers, ", "))
}

// VersionData holds build, runtime and model details.
type VersionData struct {
	Version   string   `json:"version"`
	Commit    string   `json:"commit"`
	BuildDate string   `json:"build_date"`
	GoVersion string   `json:"go_version"`
	OS        string   `json:"os"`
	Arch      string   `json:"arch"`
	Model     string   `json:"model"`
	Solvers   []string `json:"solvers"`
}

// GetVersionInfo returns the current version information.
func GetVersionInfo() VersionData {
	return VersionData{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		Model:     ModelName,
		Solvers:   fit.GlobalFactory().List(),
	}
}
