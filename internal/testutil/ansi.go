// Package testutil provides shared testing utilities used across the project.
package testutil

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

// ansiRegex matches CSI escape sequences: ESC [ parameters letter.
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripAnsiCodes removes ANSI escape codes from s so CLI output can be
// asserted on without the theme getting in the way.
func StripAnsiCodes(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// UpdateGoldens reports whether golden files should be rewritten, which is
// requested with YIELDFIT_UPDATE_GOLDENS=1.
func UpdateGoldens() bool {
	return os.Getenv("YIELDFIT_UPDATE_GOLDENS") == "1"
}

// AssertGolden compares got with testdata/<name>, rewriting the file first
// when UpdateGoldens is set.
func AssertGolden(t testing.TB, name string, got []byte) {
	t.Helper()
	path := filepath.Join("testdata", name)
	if UpdateGoldens() {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("creating golden dir: %v", err)
		}
		if err := os.WriteFile(path, got, 0o644); err != nil {
			t.Fatalf("updating golden %s: %v", path, err)
		}
	}
	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading golden %s: %v", path, err)
	}
	if string(got) != string(want) {
		t.Errorf("output differs from %s\n--- got ---\n%s\n--- want ---\n%s", path, got, want)
	}
}
