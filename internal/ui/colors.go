package ui

// Color functions return ANSI escape codes from the current theme.

// ColorReset returns the reset escape code.
func ColorReset() string { return GetCurrentTheme().Reset }

// ColorHeading returns the section title color.
func ColorHeading() string { return GetCurrentTheme().Heading }

// ColorLabel returns the parameter name color.
func ColorLabel() string { return GetCurrentTheme().Label }

// ColorValue returns the number color.
func ColorValue() string { return GetCurrentTheme().Value }

// ColorGood returns the success color.
func ColorGood() string { return GetCurrentTheme().Good }

// ColorWarn returns the warning color.
func ColorWarn() string { return GetCurrentTheme().Warn }

// ColorBad returns the failure color.
func ColorBad() string { return GetCurrentTheme().Bad }

// ColorMuted returns the secondary detail color.
func ColorMuted() string { return GetCurrentTheme().Muted }

// ColorBold returns the bold escape code.
func ColorBold() string { return GetCurrentTheme().Bold }

// Paint wraps s in color and a reset. An empty color returns s unchanged.
func Paint(color, s string) string {
	if color == "" {
		return s
	}
	return color + s + ColorReset()
}

// ErrorColors adapts the current theme to apperrors.ColorProvider.
type ErrorColors struct{}

// Yellow returns the warning color.
func (ErrorColors) Yellow() string { return ColorWarn() }

// Reset returns the reset code.
func (ErrorColors) Reset() string { return ColorReset() }
