package config

import (
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
)

// flagGroups orders the usage text; flags missing here land in "Other".
var flagGroups = []struct {
	title string
	flags []string
}{
	{"Curve", []string{"terms", "yields", "curve-file", "preset"}},
	{"Fit", []string{"solver", "start", "speed", "tolerance", "max-iterations", "epsilon", "stagnation", "parallel-gradient", "timeout"}},
	{"Output", []string{"json", "quiet", "q", "v", "output", "o", "plot", "trace-every"}},
	{"Server", []string{"server", "port"}},
	{"General", []string{"config", "log-level", "log-json", "no-color", "theme", "completion", "version"}},
}

// setCustomUsage replaces the flag package's alphabetical dump with
// grouped sections.
func setCustomUsage(fs *flag.FlagSet) {
	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "Usage: %s [options]\n\n", fs.Name())
		fmt.Fprintf(out, "Fits the Nelson-Siegel yield curve model to observed yields.\n")

		seen := make(map[string]bool)
		for _, g := range flagGroups {
			fmt.Fprintf(out, "\n%s:\n", g.title)
			for _, name := range g.flags {
				if f := fs.Lookup(name); f != nil {
					printFlag(out, f)
					seen[name] = true
				}
			}
		}

		var rest []string
		fs.VisitAll(func(f *flag.Flag) {
			if !seen[f.Name] {
				rest = append(rest, f.Name)
			}
		})
		if len(rest) > 0 {
			sort.Strings(rest)
			fmt.Fprintf(out, "\nOther:\n")
			for _, name := range rest {
				printFlag(out, fs.Lookup(name))
			}
		}
		fmt.Fprintf(out, "\nEnvironment variables %s<FLAG> override defaults; flags override both.\n", EnvPrefix)
	}
}

func printFlag(out io.Writer, f *flag.Flag) {
	prefix := "--"
	if len(f.Name) == 1 {
		prefix = "-"
	}
	line := fmt.Sprintf("  %s%s", prefix, f.Name)
	if name, _ := flag.UnquoteUsage(f); name != "" {
		line += " " + name
	}
	usage := f.Usage
	if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" {
		usage += fmt.Sprintf(" (default %s)", f.DefValue)
	}
	fmt.Fprintf(out, "%-28s %s\n", line, strings.TrimSpace(usage))
}
