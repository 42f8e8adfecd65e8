// ABOUTME: CLI entrypoint for marble: render notation to SVG and other formats, lint, watch, serve, playground, MCP.
// ABOUTME: Parses flags with MARBLE_* environment defaults, installs signal handling, and dispatches to a mode.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"
)

var version = "dev"

const (
	defaultPort     = 4173
	defaultCacheTTL = 10 * time.Minute
)

// config holds all CLI configuration parsed from flags and positional arguments.
type config struct {
	notation       string
	valuesFile     string
	valuesJSON     string
	errorMessage   string
	noSubscription bool
	styleFile      string
	format         string
	output         string
	jobs           int

	lintMode  bool
	watchMode bool
	serveMode bool
	tuiMode   bool
	mcpMode   bool

	port     int
	dbPath   string
	dataDir  string
	memStore bool
	cacheTTL time.Duration

	verbose     bool
	showVersion bool
	files       []string
}

func main() {
	loadDotEnvAuto()

	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if cfg.showVersion {
		fmt.Printf("marble %s\n", version)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()

	code := run(ctx, cfg, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// envInt returns the integer value of key, or def when unset or malformed.
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// parseFlags parses args (without the program name). MARBLE_PORT,
// MARBLE_DATA_DIR and MARBLE_STYLE supply defaults for their flags.
func parseFlags(args []string) (config, error) {
	var cfg config

	fs := flag.NewFlagSet("marble", flag.ContinueOnError)
	fs.StringVar(&cfg.notation, "n", "", "Inline marble notation to render")
	fs.StringVar(&cfg.valuesFile, "values", "", "YAML or JSON file mapping value characters to values")
	fs.StringVar(&cfg.valuesJSON, "values-json", "", "Inline JSON object mapping value characters to values")
	fs.StringVar(&cfg.errorMessage, "error", "", "Message carried by error events")
	fs.BoolVar(&cfg.noSubscription, "no-subscription", false, "Drop subscribe/unsubscribe events")
	fs.StringVar(&cfg.styleFile, "style", os.Getenv("MARBLE_STYLE"), "YAML or JSON style overrides file")
	fs.StringVar(&cfg.format, "format", "svg", "Output format: svg, json, yaml, markdown, html, notation")
	fs.StringVar(&cfg.output, "o", "", "Output file (inline/tui) or directory (files)")
	fs.IntVar(&cfg.jobs, "jobs", runtime.NumCPU(), "Files rendered concurrently")
	fs.BoolVar(&cfg.lintMode, "lint", false, "Print diagnostics instead of rendering")
	fs.BoolVar(&cfg.watchMode, "watch", false, "Re-render files whenever they change")
	fs.BoolVar(&cfg.serveMode, "serve", false, "Start the web viewer")
	fs.BoolVar(&cfg.tuiMode, "tui", false, "Start the interactive terminal playground")
	fs.BoolVar(&cfg.mcpMode, "mcp", false, "Serve MCP tools over stdio")
	fs.IntVar(&cfg.port, "port", envInt("MARBLE_PORT", defaultPort), "Viewer port")
	fs.StringVar(&cfg.dbPath, "db", "", "SQLite database path for saved diagrams")
	fs.StringVar(&cfg.dataDir, "data-dir", os.Getenv("MARBLE_DATA_DIR"), "Data directory (default: $XDG_DATA_HOME/marble)")
	fs.BoolVar(&cfg.memStore, "memory", false, "Keep viewer diagrams in memory instead of SQLite")
	fs.DurationVar(&cfg.cacheTTL, "cache-ttl", defaultCacheTTL, "How long the viewer keeps rendered exports")
	fs.BoolVar(&cfg.verbose, "verbose", false, "Verbose output")
	fs.BoolVar(&cfg.showVersion, "version", false, "Print version and exit")

	fs.Usage = func() {
		printHelp(fs.Output(), version)
	}

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	cfg.files = fs.Args()
	if cfg.jobs < 1 {
		cfg.jobs = 1
	}

	return cfg, nil
}

// run dispatches to the selected mode and returns the process exit code.
func run(ctx context.Context, cfg config, stdout, stderr io.Writer) int {
	switch {
	case cfg.mcpMode:
		return runMCP(ctx, stderr)
	case cfg.serveMode:
		return runServe(ctx, cfg, stderr)
	case cfg.tuiMode:
		return runTUI(ctx, cfg, stderr)
	case cfg.lintMode:
		return runLint(cfg, stdout, stderr)
	}

	if cfg.notation == "" && len(cfg.files) == 0 {
		printHelp(stderr, version)
		return 0
	}

	req, err := baseRequest(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	if cfg.watchMode {
		if len(cfg.files) == 0 {
			fmt.Fprintln(stderr, "error: -watch needs at least one file")
			return 2
		}
		if err := runWatch(ctx, cfg, req, stderr); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}

	if cfg.notation != "" {
		return renderInline(ctx, cfg, req, stdout, stderr)
	}
	if err := renderBatch(ctx, cfg, req, stderr); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
