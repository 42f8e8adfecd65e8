// ABOUTME: Tests for the .env loader: line parsing, quote stripping, and no-clobber semantics.
// ABOUTME: Uses unique variable names and unsets them on cleanup.
package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDotEnvLine(t *testing.T) {
	tests := []struct {
		line      string
		key, val  string
		wantParse bool
	}{
		{"MARBLE_PORT=8080", "MARBLE_PORT", "8080", true},
		{"  export MARBLE_STYLE = theme.yaml ", "MARBLE_STYLE", "theme.yaml", true},
		{`QUOTED="a b"`, "QUOTED", "a b", true},
		{"SINGLE='x=y'", "SINGLE", "x=y", true},
		{"EMPTY=", "EMPTY", "", true},
		{"# comment", "", "", false},
		{"", "", "", false},
		{"no-equals", "", "", false},
		{"=value", "", "", false},
	}
	for _, tt := range tests {
		key, val, ok := parseDotEnvLine(tt.line)
		if ok != tt.wantParse || key != tt.key || val != tt.val {
			t.Errorf("parseDotEnvLine(%q) = %q, %q, %v; want %q, %q, %v", tt.line, key, val, ok, tt.key, tt.val, tt.wantParse)
		}
	}
}

func TestLoadDotEnvNoClobber(t *testing.T) {
	const fresh, existing = "MARBLE_TEST_FRESH_VAR", "MARBLE_TEST_EXISTING_VAR"
	t.Setenv(existing, "keep")
	os.Unsetenv(fresh)
	t.Cleanup(func() { os.Unsetenv(fresh) })

	path := filepath.Join(t.TempDir(), ".env")
	content := "# marble settings\n" + fresh + "=new\n" + existing + "=replaced\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if n := loadDotEnv(path); n != 1 {
		t.Errorf("loadDotEnv set %d variables, want 1", n)
	}
	if got := os.Getenv(fresh); got != "new" {
		t.Errorf("%s = %q, want new", fresh, got)
	}
	if got := os.Getenv(existing); got != "keep" {
		t.Errorf("%s = %q, want keep", existing, got)
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	if n := loadDotEnv(filepath.Join(t.TempDir(), "absent.env")); n != 0 {
		t.Errorf("missing file set %d variables", n)
	}
}
