// ABOUTME: Tests for loading value mappings and style overrides from YAML and JSON files.
// ABOUTME: Covers inline JSON precedence and the errors surfaced for malformed input.
package main

import (
	"testing"
)

func TestLoadValuesFromYAMLWithInlineOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeTempMarble(t, dir, "values.yaml", "a: Hello\nb: 2\n")

	values, err := loadValues(path, `{"b": "two", "c": true}`)
	if err != nil {
		t.Fatalf("loadValues: %v", err)
	}
	if values["a"] != "Hello" || values["b"] != "two" || values["c"] != true {
		t.Errorf("values = %v", values)
	}
}

func TestLoadValuesFromJSON(t *testing.T) {
	path := writeTempMarble(t, t.TempDir(), "values.json", `{"x": 1.5}`)
	values, err := loadValues(path, "")
	if err != nil {
		t.Fatalf("loadValues: %v", err)
	}
	if values["x"] != 1.5 {
		t.Errorf("values = %v", values)
	}
}

func TestLoadValuesEmpty(t *testing.T) {
	values, err := loadValues("", "  ")
	if err != nil || values != nil {
		t.Errorf("expected nil mapping, got %v (%v)", values, err)
	}
}

func TestLoadValuesErrors(t *testing.T) {
	bad := writeTempMarble(t, t.TempDir(), "bad.json", `{"x":`)
	if _, err := loadValues(bad, ""); err == nil {
		t.Error("expected error for malformed values file")
	}
	if _, err := loadValues("", `"scalar"`); err == nil {
		t.Error("expected error for non-object inline JSON")
	}
	if _, err := loadValues("/nonexistent/values.yaml", ""); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadStyle(t *testing.T) {
	dir := t.TempDir()

	yamlPath := writeTempMarble(t, dir, "style.yml", "width: 400\nmarkers:\n  fill: \"#ffcc00\"\n")
	ov, err := loadStyle(yamlPath)
	if err != nil {
		t.Fatalf("loadStyle yaml: %v", err)
	}
	if ov.Width == nil || *ov.Width != 400 || ov.Markers == nil || *ov.Markers.Fill != "#ffcc00" {
		t.Errorf("yaml overrides = %+v", ov)
	}

	jsonPath := writeTempMarble(t, dir, "style.json", `{"frameWidth": 40}`)
	ov, err = loadStyle(jsonPath)
	if err != nil {
		t.Fatalf("loadStyle json: %v", err)
	}
	if ov.FrameWidth == nil || *ov.FrameWidth != 40 || ov.Width != nil {
		t.Errorf("json overrides = %+v", ov)
	}

	if ov, err := loadStyle(""); ov != nil || err != nil {
		t.Errorf("empty path should mean defaults, got %v %v", ov, err)
	}
}

func TestBaseRequest(t *testing.T) {
	cfg := mustParseFlags(t, "-format", "md", "-error", "boom", "-no-subscription", "-values-json", `{"a":1}`)
	req, err := baseRequest(cfg)
	if err != nil {
		t.Fatalf("baseRequest: %v", err)
	}
	if req.Format != "markdown" || req.ErrorMessage != "boom" || !req.ExcludeSubscription || req.Values["a"] != 1.0 {
		t.Errorf("request = %+v", req)
	}
}
