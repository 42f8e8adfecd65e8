// ABOUTME: Help display for the marble CLI with grouped flags, examples, and environment defaults.
// ABOUTME: Provides printHelp for usage output and envStatus for showing MARBLE_* settings.
package main

import (
	"fmt"
	"io"
	"os"
)

const marbleBanner = `
   ---o-----o---(oo)---|--->
`

// printHelp writes a formatted help message to w, including usage patterns,
// grouped flags, examples, and environment defaults.
func printHelp(w io.Writer, ver string) {
	fmt.Fprint(w, marbleBanner)
	fmt.Fprintf(w, "marble %s: marble diagram notation to SVG\n", ver)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  marble [flags] -n '<notation>'        Render inline notation")
	fmt.Fprintln(w, "  marble [flags] file.marble ...        Render files (concurrently)")
	fmt.Fprintln(w, "  marble -lint [-n '<notation>'] ...    Print diagnostics, exit 1 on errors")
	fmt.Fprintln(w, "  marble -watch file.marble ...         Re-render on change")
	fmt.Fprintln(w, "  marble -serve [-port 4173] [-db path] Start the web viewer")
	fmt.Fprintln(w, "  marble -tui [-o out.svg]              Interactive playground")
	fmt.Fprintln(w, "  marble -mcp                           MCP stdio tool server")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Parse Flags:")
	fmt.Fprintln(w, "  -values <file>        YAML or JSON value mapping")
	fmt.Fprintln(w, "  -values-json <json>   Inline JSON value mapping (wins over -values)")
	fmt.Fprintln(w, "  -error <message>      Message carried by error events")
	fmt.Fprintln(w, "  -no-subscription      Drop subscribe/unsubscribe events")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Output Flags:")
	fmt.Fprintln(w, "  -format <name>        svg, json, yaml, markdown, html, notation (default: svg)")
	fmt.Fprintln(w, "  -style <file>         YAML or JSON style overrides")
	fmt.Fprintln(w, "  -o <path>             Output file (inline, tui) or directory (files)")
	fmt.Fprintln(w, "  -jobs <n>             Files rendered concurrently (default: CPU count)")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Viewer Flags:")
	fmt.Fprintln(w, "  -port <port>          Viewer port (default: 4173)")
	fmt.Fprintln(w, "  -db <path>            SQLite database (default: <data-dir>/marble.db)")
	fmt.Fprintln(w, "  -data-dir <dir>       Data directory (default: $XDG_DATA_HOME/marble)")
	fmt.Fprintln(w, "  -memory               Keep diagrams in memory only")
	fmt.Fprintln(w, "  -cache-ttl <dur>      How long rendered exports are cached (default: 10m)")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Other:")
	fmt.Fprintln(w, "  -verbose              Verbose output")
	fmt.Fprintln(w, "  -version              Print version and exit")
	fmt.Fprintln(w, "  -help                 Show this help")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  marble -n '--a--b--|' > stream.svg")
	fmt.Fprintln(w, `  marble -n '---(abc)---|' -values-json '{"a":1,"b":2,"c":3}' -format yaml`)
	fmt.Fprintln(w, "  marble -format html -o out/ diagrams/*.marble")
	fmt.Fprintln(w, "  marble -watch -style theme.yaml hot.marble")
	fmt.Fprintln(w, "  marble -serve -memory -port 8080")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment:")
	fmt.Fprintf(w, "  MARBLE_PORT           %s\n", envStatus("MARBLE_PORT"))
	fmt.Fprintf(w, "  MARBLE_DATA_DIR       %s\n", envStatus("MARBLE_DATA_DIR"))
	fmt.Fprintf(w, "  MARBLE_STYLE          %s\n", envStatus("MARBLE_STYLE"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Variables are also read from .env files in the working directory and its parents.")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Docs: https://github.com/2389-research/marble")
}

// envStatus returns the variable's value in brackets, or "[not set]".
func envStatus(key string) string {
	if v := os.Getenv(key); v != "" {
		return "[" + v + "]"
	}
	return "[not set]"
}
