// ABOUTME: Turns marble notation or parsed events into a chosen output format (SVG, JSON, YAML, Markdown, HTML, notation).
// ABOUTME: Request bundles the notation with its parse and style options so callers and caches share one shape.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/2389-research/marble/marble"
	"github.com/2389-research/marble/render"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

// Request describes one diagram to export.
type Request struct {
	Notation            string            `json:"notation"`
	Values              map[string]any    `json:"values,omitempty"`
	ErrorMessage        string            `json:"error,omitempty"`
	ExcludeSubscription bool              `json:"excludeSubscription,omitempty"`
	Style               *render.Overrides `json:"style,omitempty"`
	Format              Format            `json:"format,omitempty"`
}

// ParseOptions converts the request's parse settings. An empty ErrorMessage
// keeps the default error payload.
func (r Request) ParseOptions() marble.ParseOptions {
	opts := marble.DefaultParseOptions()
	opts.Values = r.Values
	opts.ExcludeSubscriptionEvents = r.ExcludeSubscription
	if r.ErrorMessage != "" {
		opts.Error = errors.New(r.ErrorMessage)
	}
	return opts
}

// Document is the JSON and YAML export shape.
type Document struct {
	Notation string         `json:"notation,omitempty" yaml:"notation,omitempty"`
	MaxFrame int            `json:"maxFrame" yaml:"maxFrame"`
	Events   []marble.Event `json:"events" yaml:"events"`
}

// Render parses req.Notation and encodes it in req.Format.
func Render(ctx context.Context, req Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	format, err := ParseFormat(string(req.Format))
	if err != nil {
		return nil, err
	}

	// Value mappings would make most frames unprintable, so the canonical
	// notation is always derived from the raw characters.
	opts := req.ParseOptions()
	if format == FormatNotation {
		opts.Values = nil
	}

	events, err := marble.ParseWith(req.Notation, opts)
	if err != nil {
		return nil, fmt.Errorf("parse notation: %w", err)
	}

	var buf bytes.Buffer
	if format == FormatJSON || format == FormatYAML {
		err = encodeDocument(&buf, format, Document{Notation: req.Notation, MaxFrame: marble.MaxFrame(events), Events: nonNil(events)})
	} else {
		err = Events(&buf, format, events, req.Style)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Events encodes already-parsed events in format f. style only affects SVG and HTML.
func Events(w io.Writer, f Format, events []marble.Event, style *render.Overrides) error {
	switch f {
	case FormatSVG, "":
		_, err := io.WriteString(w, render.SVG(events, style))
		return err
	case FormatJSON, FormatYAML:
		return encodeDocument(w, f, Document{MaxFrame: marble.MaxFrame(events), Events: nonNil(events)})
	case FormatMarkdown:
		_, err := io.WriteString(w, MarkdownTable(events))
		return err
	case FormatHTML:
		return writeHTML(w, events, style)
	case FormatNotation:
		s, err := marble.Serialize(events)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, s+"\n")
		return err
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

func encodeDocument(w io.Writer, f Format, doc Document) error {
	if f == FormatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func nonNil(events []marble.Event) []marble.Event {
	if events == nil {
		return []marble.Event{}
	}
	return events
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"|", `\|`,
	"<", `\<`,
	">", `\>`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"&", `\&`,
	"\n", " ",
)

// MarkdownTable renders events as a GitHub-flavoured Markdown table.
func MarkdownTable(events []marble.Event) string {
	var b strings.Builder
	b.WriteString("| Frame | Kind | Value |\n")
	b.WriteString("|------:|------|-------|\n")
	for _, e := range events {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", strconv.Itoa(e.Frame), e.Kind, markdownEscaper.Replace(EventText(e)))
	}
	return b.String()
}

// EventText is the human-readable payload of an event: the value of a next,
// the message of an error, or the label of a subscription marker.
func EventText(e marble.Event) string {
	switch e.Kind {
	case marble.KindNext:
		return render.TextOf(e.Value)
	case marble.KindError:
		return render.TextOf(e.Err)
	default:
		return e.Label()
	}
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

func writeHTML(w io.Writer, events []marble.Event, style *render.Overrides) error {
	var table bytes.Buffer
	if err := markdown.Convert([]byte(MarkdownTable(events)), &table); err != nil {
		return fmt.Errorf("convert markdown: %w", err)
	}
	_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Marble diagram</title>
<style>body{font-family:sans-serif;margin:2rem}table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:.25rem .5rem}</style>
</head>
<body>
<figure>%s</figure>
%s</body>
</html>
`, render.SVG(events, style), table.String())
	return err
}
