package cli

import (
	"fmt"
	"io"
	"strings"
)

// completionFlag describes one flag for the completion generators.
type completionFlag struct {
	long, short string
	help        string
	// values lists suggested arguments; files requests path completion.
	// A flag with neither takes no argument.
	values []string
	files  bool
	arg    bool
}

// completionFlags builds the flag table, with the solver and preset names
// known at runtime.
func completionFlags(solvers, presets []string) []completionFlag {
	return []completionFlag{
		{long: "help", short: "h", help: "Show help message"},
		{long: "version", help: "Show version information"},
		{long: "config", help: "TOML settings file", files: true},
		{long: "solver", help: "Solver to use", values: append(append([]string{}, solvers...), "all")},
		{long: "terms", help: "Comma separated maturities", arg: true},
		{long: "yields", help: "Comma separated yields", arg: true},
		{long: "curve-file", help: "Curve file", files: true},
		{long: "preset", help: "Built-in curve", values: presets},
		{long: "start", help: "Initial parameters a1,a2,a3,b", arg: true},
		{long: "speed", help: "Descent step size", values: []string{"0.005", "0.01", "0.02", "0.05"}},
		{long: "tolerance", help: "Convergence threshold", values: []string{"0.001", "0.0039", "0.01"}},
		{long: "max-iterations", help: "Iteration budget", values: []string{"1000", "5000", "10000", "50000"}},
		{long: "epsilon", help: "Central-difference perturbation", values: []string{"0.001", "0.01"}},
		{long: "stagnation", help: "Speed-up policy", values: []string{"literal", "rolling"}},
		{long: "parallel-gradient", help: "Concurrent gradient evaluation"},
		{long: "trace-every", help: "Log every Nth iteration", values: []string{"1", "10", "100", "1000"}},
		{long: "timeout", help: "Maximum execution time", values: []string{"10s", "30s", "1m", "2m", "5m"}},
		{long: "plot", help: "PNG chart output", files: true},
		{long: "json", help: "Output in JSON format"},
		{long: "output", short: "o", help: "Report output file", files: true},
		{long: "quiet", short: "q", help: "Print parameters only"},
		{long: "v", help: "Show residuals and error history"},
		{long: "server", help: "Start HTTP server mode"},
		{long: "port", help: "Server port", values: []string{"8080", "3000", "9000"}},
		{long: "log-level", help: "Log level", values: []string{"debug", "info", "warn", "error"}},
		{long: "log-json", help: "Log JSON lines"},
		{long: "no-color", help: "Disable colored output"},
		{long: "theme", help: "Color theme", values: []string{"dark", "light", "none"}},
		{long: "completion", help: "Generate completion script", values: []string{"bash", "zsh", "fish", "powershell"}},
	}
}

func (f completionFlag) dashed() string {
	if len(f.long) == 1 {
		return "-" + f.long
	}
	return "--" + f.long
}

// GenerateCompletion writes a completion script for shell: bash, zsh, fish
// or powershell.
func GenerateCompletion(out io.Writer, shell string, solvers, presets []string) error {
	flags := completionFlags(solvers, presets)
	switch shell {
	case "bash":
		return generateBashCompletion(out, flags)
	case "zsh":
		return generateZshCompletion(out, flags)
	case "fish":
		return generateFishCompletion(out, flags)
	case "powershell", "ps":
		return generatePowerShellCompletion(out, flags)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish, powershell)", shell)
	}
}

func generateBashCompletion(out io.Writer, flags []completionFlag) error {
	var opts []string
	var cases strings.Builder
	for _, f := range flags {
		names := []string{f.dashed()}
		if f.short != "" {
			names = append(names, "-"+f.short)
		}
		opts = append(opts, names...)
		switch {
		case f.files:
			fmt.Fprintf(&cases, "        %s)\n            COMPREPLY=( $(compgen -f -- \"${cur}\") )\n            return 0\n            ;;\n", strings.Join(names, "|"))
		case len(f.values) > 0:
			fmt.Fprintf(&cases, "        %s)\n            COMPREPLY=( $(compgen -W \"%s\" -- \"${cur}\") )\n            return 0\n            ;;\n", strings.Join(names, "|"), strings.Join(f.values, " "))
		}
	}

	_, err := fmt.Fprintf(out, `# Bash completion script for yieldfit
# Add this to your ~/.bashrc or ~/.bash_completion

_yieldfit_completions() {
    local cur prev opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"
    opts="%s"

    case "${prev}" in
%s    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
        return 0
    fi
}

complete -F _yieldfit_completions yieldfit
`, strings.Join(opts, " "), cases.String())
	return err
}

func generateZshCompletion(out io.Writer, flags []completionFlag) error {
	var specs []string
	for _, f := range flags {
		desc := "[" + f.help + "]"
		switch {
		case f.files:
			desc += ":file:_files"
		case len(f.values) > 0:
			desc += ":value:(" + strings.Join(f.values, " ") + ")"
		case f.arg:
			desc += ":value:"
		}
		if f.short != "" {
			specs = append(specs, fmt.Sprintf("'(-%s %s)'{-%s,%s}'%s'", f.short, f.dashed(), f.short, f.dashed(), desc))
		} else {
			specs = append(specs, fmt.Sprintf("'%s%s'", f.dashed(), desc))
		}
	}

	_, err := fmt.Fprintf(out, `#compdef yieldfit

# Zsh completion script for yieldfit
# Add this to your ~/.zshrc or place in $fpath

_yieldfit() {
    _arguments -s \
        %s
}

_yieldfit "$@"
`, strings.Join(specs, " \\\n        "))
	return err
}

func generateFishCompletion(out io.Writer, flags []completionFlag) error {
	var sb strings.Builder
	sb.WriteString("# Fish completion script for yieldfit\n")
	sb.WriteString("# Save to ~/.config/fish/completions/yieldfit.fish\n\n")
	sb.WriteString("complete -c yieldfit -f\n")
	for _, f := range flags {
		line := "complete -c yieldfit"
		if len(f.long) == 1 {
			line += " -o " + f.long
		} else {
			line += " -l " + f.long
		}
		if f.short != "" {
			line += " -s " + f.short
		}
		switch {
		case f.files:
			line += " -r -F"
		case len(f.values) > 0:
			line += fmt.Sprintf(" -x -a '%s'", strings.Join(f.values, " "))
		case f.arg:
			line += " -x"
		}
		line += fmt.Sprintf(" -d '%s'\n", f.help)
		sb.WriteString(line)
	}
	_, err := io.WriteString(out, sb.String())
	return err
}

func generatePowerShellCompletion(out io.Writer, flags []completionFlag) error {
	var names, cases strings.Builder
	for i, f := range flags {
		if i > 0 {
			names.WriteString(", ")
		}
		fmt.Fprintf(&names, "'%s'", f.dashed())
		if f.short != "" {
			fmt.Fprintf(&names, ", '-%s'", f.short)
		}
		if len(f.values) > 0 {
			quoted := make([]string, len(f.values))
			for j, v := range f.values {
				quoted[j] = "'" + v + "'"
			}
			fmt.Fprintf(&cases, "        '%s' { $values = @(%s) }\n", f.dashed(), strings.Join(quoted, ", "))
		}
	}

	_, err := fmt.Fprintf(out, `# PowerShell completion script for yieldfit
# Add this to your PowerShell profile

Register-ArgumentCompleter -Native -CommandName yieldfit -ScriptBlock {
    param($wordToComplete, $commandAst, $cursorPosition)

    $elements = $commandAst.CommandElements
    $prev = if ($elements.Count -gt 1) { $elements[$elements.Count - 1].ToString() } else { '' }
    if ($wordToComplete -ne '' -and $elements.Count -gt 2) { $prev = $elements[$elements.Count - 2].ToString() }

    $values = $null
    switch ($prev) {
%s    }
    if ($null -eq $values) { $values = @(%s) }

    $values | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
    }
}
`, cases.String(), names.String())
	return err
}
