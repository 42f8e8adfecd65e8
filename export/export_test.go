// ABOUTME: Tests for export formats: name parsing, per-format encodings, and error mapping.
// ABOUTME: Decodes JSON/YAML output back through the event wire form to check content, not bytes.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/2389-research/marble/marble"
	"github.com/2389-research/marble/render"
	"gopkg.in/yaml.v3"
)

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"":         FormatSVG,
		"SVG":      FormatSVG,
		"json":     FormatJSON,
		"yml":      FormatYAML,
		".yaml":    FormatYAML,
		"md":       FormatMarkdown,
		"markdown": FormatMarkdown,
		"htm":      FormatHTML,
		"marble":   FormatNotation,
		"notation": FormatNotation,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}

	if _, err := ParseFormat("png"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestFormatMetadata(t *testing.T) {
	for _, f := range Formats() {
		if ContentType(f) == "" {
			t.Errorf("%s has no content type", f)
		}
		if !strings.HasPrefix(Extension(f), ".") {
			t.Errorf("%s extension %q lacks a dot", f, Extension(f))
		}
		if back, err := ParseFormat(string(f)); err != nil || back != f {
			t.Errorf("ParseFormat(%q) did not round-trip", f)
		}
	}
	if Extension(FormatMarkdown) != ".md" || Extension(FormatNotation) != ".marble" {
		t.Error("unexpected extensions for markdown/notation")
	}
	if ContentType(FormatSVG) != "image/svg+xml" {
		t.Errorf("svg content type = %q", ContentType(FormatSVG))
	}
}

func TestRenderSVGMatchesRenderer(t *testing.T) {
	ov := &render.Overrides{Width: render.Float(500)}
	got, err := Render(context.Background(), Request{Notation: "--a--|", Style: ov})
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	events, _ := marble.Parse("--a--|")
	if string(got) != render.SVG(events, ov) {
		t.Errorf("SVG export differs from renderer output")
	}
}

func TestRenderJSON(t *testing.T) {
	got, err := Render(context.Background(), Request{
		Notation:     "a-#",
		Values:       map[string]any{"a": 1.0},
		ErrorMessage: "boom",
		Format:       FormatJSON,
	})
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	var doc Document
	if err := json.Unmarshal(got, &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, got)
	}
	if doc.Notation != "a-#" || doc.MaxFrame != 2 || len(doc.Events) != 2 {
		t.Fatalf("unexpected document %+v", doc)
	}
	if doc.Events[0].Value != 1.0 {
		t.Errorf("value = %v, want 1", doc.Events[0].Value)
	}
	if doc.Events[1].Kind != marble.KindError || doc.Events[1].Err != "boom" {
		t.Errorf("error event = %+v", doc.Events[1])
	}
}

func TestRenderEmptyJSONHasEventArray(t *testing.T) {
	got, err := Render(context.Background(), Request{Notation: "", Format: FormatJSON})
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if !bytes.Contains(got, []byte(`"events": []`)) {
		t.Errorf("expected empty events array, got %s", got)
	}
}

func TestRenderYAML(t *testing.T) {
	got, err := Render(context.Background(), Request{Notation: "^-a-!", Format: FormatYAML})
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	var doc struct {
		MaxFrame int `yaml:"maxFrame"`
		Events   []struct {
			Frame int    `yaml:"frame"`
			Kind  string `yaml:"kind"`
			Label string `yaml:"label"`
		} `yaml:"events"`
	}
	if err := yaml.Unmarshal(got, &doc); err != nil {
		t.Fatalf("invalid YAML: %v\n%s", err, got)
	}
	if doc.MaxFrame != 4 || len(doc.Events) != 3 {
		t.Fatalf("unexpected document %+v", doc)
	}
	if doc.Events[0].Label != "subscribe" || doc.Events[1].Kind != "next" || doc.Events[2].Kind != "unsubscribe" {
		t.Errorf("unexpected events %+v", doc.Events)
	}
}

func TestRenderExcludeSubscription(t *testing.T) {
	got, err := Render(context.Background(), Request{Notation: "^-a-!", ExcludeSubscription: true, Format: FormatJSON})
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if bytes.Contains(got, []byte("subscribe")) {
		t.Errorf("subscription events should be excluded: %s", got)
	}
}

func TestRenderMarkdown(t *testing.T) {
	got, err := Render(context.Background(), Request{
		Notation: "a-#",
		Values:   map[string]any{"a": "x|y"},
		Format:   FormatMarkdown,
	})
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	want := "| Frame | Kind | Value |\n" +
		"|------:|------|-------|\n" +
		"| 0 | next | x\\|y |\n" +
		"| 2 | error | marble error |\n"
	if string(got) != want {
		t.Errorf("markdown =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderHTML(t *testing.T) {
	got, err := Render(context.Background(), Request{
		Notation: "a-b|",
		Values:   map[string]any{"b": "<b>"},
		Format:   FormatHTML,
	})
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	page := string(got)
	for _, want := range []string{"<!DOCTYPE html>", "<svg", "<table>", "<td>a</td>", "&lt;b&gt;"} {
		if !strings.Contains(page, want) {
			t.Errorf("expected %q in page:\n%s", want, page)
		}
	}
	if strings.Contains(page, "<b>") {
		t.Error("raw value markup leaked into the page")
	}
}

func TestRenderNotationIgnoresValues(t *testing.T) {
	got, err := Render(context.Background(), Request{
		Notation: "--a-(bc)--| ",
		Values:   map[string]any{"a": 1, "b": 2, "c": 3},
		Format:   FormatNotation,
	})
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if string(got) != "--a-(bc)--|\n" {
		t.Errorf("notation = %q", got)
	}
}

func TestRenderErrors(t *testing.T) {
	ctx := context.Background()
	if _, err := Render(ctx, Request{Notation: "a?"}); !errors.Is(err, marble.ErrSyntax) {
		t.Errorf("expected ErrSyntax, got %v", err)
	}
	if _, err := Render(ctx, Request{Notation: "a", Format: "gif"}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := Render(cancelled, Request{Notation: "a"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestEventsNotationNotSerializable(t *testing.T) {
	var buf bytes.Buffer
	err := Events(&buf, FormatNotation, []marble.Event{marble.Next(0, "long value")}, nil)
	if !errors.Is(err, marble.ErrNotSerializable) {
		t.Errorf("expected ErrNotSerializable, got %v", err)
	}
}

func TestEventsUnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Events(&buf, "pdf", nil, nil); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}
