package ui

import (
	"bytes"
	"os"
	"testing"

	apperrors "github.com/agbru/yieldfit/internal/errors"
)

var _ apperrors.ColorProvider = ErrorColors{}

// Theme tests mutate package state and do not run in parallel.

func TestSetTheme(t *testing.T) {
	defer SetCurrentTheme(GetCurrentTheme())

	for _, name := range ThemeNames() {
		if err := SetTheme(name); err != nil {
			t.Fatalf("SetTheme(%q) error: %v", name, err)
		}
		if got := GetCurrentTheme().Name; got != name {
			t.Errorf("current theme = %q, want %q", got, name)
		}
	}
	if err := SetTheme("neon"); err == nil {
		t.Error("SetTheme(neon) should fail")
	}
}

func TestInitThemeDisablesColor(t *testing.T) {
	defer SetCurrentTheme(GetCurrentTheme())

	InitTheme("light", true, os.Stdout)
	if GetCurrentTheme().Name != "none" {
		t.Error("--no-color should select the none theme")
	}

	// A buffer is never a terminal.
	InitTheme("light", false, &bytes.Buffer{})
	if GetCurrentTheme().Name != "none" {
		t.Error("non-terminal output should select the none theme")
	}
}

func TestColorEnabledHonorsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if ColorEnabled(os.Stdout) {
		t.Error("NO_COLOR should disable color")
	}
}

func TestPaint(t *testing.T) {
	defer SetCurrentTheme(GetCurrentTheme())

	SetCurrentTheme(DarkTheme)
	if got := Paint(ColorGood(), "ok"); got != DarkTheme.Good+"ok"+DarkTheme.Reset {
		t.Errorf("Paint() = %q", got)
	}
	SetCurrentTheme(NoColorTheme)
	if got := Paint(ColorGood(), "ok"); got != "ok" {
		t.Errorf("Paint() without color = %q", got)
	}
	if (ErrorColors{}).Yellow() != "" || (ErrorColors{}).Reset() != "" {
		t.Error("ErrorColors should follow the none theme")
	}
}

func TestTerminalFallbacks(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if IsTerminal(&buf) {
		t.Error("buffer reported as terminal")
	}
	if Width(&buf) != DefaultWidth {
		t.Errorf("Width(buffer) = %d, want %d", Width(&buf), DefaultWidth)
	}
}
