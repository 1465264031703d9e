package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestGenerateCompletion(t *testing.T) {
	t.Parallel()
	solvers := []string{"bfgs", "descent"}
	presets := []string{"inverted", "reference"}
	tests := []struct {
		shell string
		want  []string
	}{
		{"bash", []string{"complete -F _yieldfit_completions yieldfit", "--solver)", `compgen -W "bfgs descent all"`, "--output|-o)", "compgen -f"}},
		{"zsh", []string{"#compdef yieldfit", "'--preset[Built-in curve]:value:(inverted reference)'", "'(-q --quiet)'{-q,--quiet}'[Print parameters only]'", "'-v[Show residuals and error history]'"}},
		{"fish", []string{"complete -c yieldfit -l stagnation -x -a 'literal rolling'", "complete -c yieldfit -o v ", "complete -c yieldfit -l plot -r -F"}},
		{"powershell", []string{"Register-ArgumentCompleter -Native -CommandName yieldfit", "'--solver' { $values = @('bfgs', 'descent', 'all') }", "'--output', '-o'"}},
		{"ps", []string{"Register-ArgumentCompleter"}},
	}
	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			if err := GenerateCompletion(&out, tt.shell, solvers, presets); err != nil {
				t.Fatalf("GenerateCompletion(%s) error: %v", tt.shell, err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("%s script missing %q", tt.shell, want)
				}
			}
		})
	}
}

func TestGenerateCompletionUnsupported(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	err := GenerateCompletion(&out, "tcsh", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "unsupported shell: tcsh") {
		t.Errorf("error = %v", err)
	}
	if out.Len() != 0 {
		t.Error("nothing should be written for an unsupported shell")
	}
}
