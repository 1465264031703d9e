// Package ui provides theme and color support for the terminal output of
// yieldfit. It defines the color schemes, resolves whether color should be
// used at all (--no-color, NO_COLOR, non-terminal output) and exposes the
// escape codes through small accessor functions.
package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Theme defines a color scheme for UI output.
// Each field contains an ANSI escape code for the corresponding role.
type Theme struct {
	// Name is the identifier of the theme.
	Name string
	// Heading colors section titles.
	Heading string
	// Label colors parameter and column names.
	Label string
	// Value colors numbers the user asked for.
	Value string
	// Good marks converged fits and small residuals.
	Good string
	// Warn marks slow convergence and speed escalations.
	Warn string
	// Bad marks failures and large residuals.
	Bad string
	// Muted is used for secondary details.
	Muted string
	// Bold is the escape code for bold text.
	Bold string
	// Reset clears all formatting.
	Reset string
}

var (
	// DarkTheme is tuned for dark terminal backgrounds.
	DarkTheme = Theme{
		Name:    "dark",
		Heading: "\033[38;5;39m",
		Label:   "\033[38;5;141m",
		Value:   "\033[38;5;51m",
		Good:    "\033[38;5;82m",
		Warn:    "\033[38;5;220m",
		Bad:     "\033[38;5;196m",
		Muted:   "\033[38;5;245m",
		Bold:    "\033[1m",
		Reset:   "\033[0m",
	}

	// LightTheme uses darker tones for light backgrounds.
	LightTheme = Theme{
		Name:    "light",
		Heading: "\033[38;5;27m",
		Label:   "\033[38;5;54m",
		Value:   "\033[38;5;30m",
		Good:    "\033[38;5;28m",
		Warn:    "\033[38;5;130m",
		Bad:     "\033[38;5;124m",
		Muted:   "\033[38;5;240m",
		Bold:    "\033[1m",
		Reset:   "\033[0m",
	}

	// NoColorTheme disables all color output.
	NoColorTheme = Theme{Name: "none"}

	themes = map[string]Theme{
		DarkTheme.Name:    DarkTheme,
		LightTheme.Name:   LightTheme,
		NoColorTheme.Name: NoColorTheme,
	}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme replaces the active theme. Tests use it to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// SetTheme activates a theme by name: "dark", "light" or "none".
func SetTheme(name string) error {
	t, ok := themes[name]
	if !ok {
		return fmt.Errorf("unknown theme %q", name)
	}
	SetCurrentTheme(t)
	return nil
}

// ThemeNames lists the names accepted by SetTheme.
func ThemeNames() []string {
	return []string{DarkTheme.Name, LightTheme.Name, NoColorTheme.Name}
}

// InitTheme selects the theme for output written to out. Colors are
// disabled when noColor is set, when NO_COLOR is present in the environment
// (https://no-color.org/), or when out is not a terminal. Otherwise the
// named theme is used, falling back to dark.
func InitTheme(name string, noColor bool, out io.Writer) {
	if noColor || !ColorEnabled(out) {
		SetCurrentTheme(NoColorTheme)
		return
	}
	if err := SetTheme(name); err != nil {
		SetCurrentTheme(DarkTheme)
	}
}

// ColorEnabled reports whether escape codes should be written to out.
func ColorEnabled(out io.Writer) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	return IsTerminal(out)
}
