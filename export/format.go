// ABOUTME: Output formats a marble diagram can be exported to, with parsing, MIME types, and file extensions.
// ABOUTME: Unknown names fail with ErrUnsupportedFormat so HTTP and CLI callers can map it to a usage error.
package export

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedFormat is returned for format names that are not recognised.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format names an export encoding.
type Format string

const (
	FormatSVG      Format = "svg"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatNotation Format = "notation"
)

// Formats returns every supported format in display order.
func Formats() []Format {
	return []Format{FormatSVG, FormatJSON, FormatYAML, FormatMarkdown, FormatHTML, FormatNotation}
}

// ParseFormat resolves a format name or common alias ("md", "yml", "htm", "marble").
// An empty string selects SVG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "svg":
		return FormatSVG, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	case "notation", "marble", "txt":
		return FormatNotation, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ContentType returns the HTTP Content-Type for f.
func ContentType(f Format) string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Extension returns the file extension for f, including the leading dot.
func Extension(f Format) string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatNotation:
		return ".marble"
	case "":
		return ".svg"
	default:
		return "." + string(f)
	}
}
