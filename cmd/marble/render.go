// ABOUTME: One-shot rendering for the CLI: inline notation to stdout or a file, and concurrent batch rendering of files.
// ABOUTME: Batch output lands beside each input, or in the -o directory, with the format's extension.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/2389-research/marble/export"
	"golang.org/x/sync/errgroup"
)

// renderInline renders the -n notation to -o or stdout.
func renderInline(ctx context.Context, cfg config, req export.Request, stdout, stderr io.Writer) int {
	req.Notation = cfg.notation
	out, err := export.Render(ctx, req)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	if cfg.output == "" {
		if _, err := stdout.Write(out); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}
	if err := os.WriteFile(cfg.output, out, 0o644); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if cfg.verbose {
		log.Printf("marble rendered out=%s format=%s bytes=%d", cfg.output, req.Format, len(out))
	}
	return 0
}

// outputPath returns where the rendering of input goes. outDir, when set,
// replaces the input's directory.
func outputPath(input, outDir string, f export.Format) (string, error) {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + export.Extension(f)
	dir := filepath.Dir(input)
	if outDir != "" {
		dir = outDir
	}
	out := filepath.Join(dir, base)
	if filepath.Clean(out) == filepath.Clean(input) {
		return "", fmt.Errorf("%s: output would overwrite the input", input)
	}
	return out, nil
}

// renderFile reads one notation file and writes its rendering. It returns the output path.
func renderFile(ctx context.Context, cfg config, req export.Request, input string) (string, error) {
	data, err := os.ReadFile(input)
	if err != nil {
		return "", err
	}
	out, err := outputPath(input, cfg.output, req.Format)
	if err != nil {
		return "", err
	}

	req.Notation = string(data)
	body, err := export.Render(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", input, err)
	}
	if err := os.WriteFile(out, body, 0o644); err != nil {
		return "", err
	}
	if cfg.verbose {
		log.Printf("marble rendered in=%s out=%s format=%s bytes=%d", input, out, req.Format, len(body))
	}
	return out, nil
}

// renderBatch renders every file concurrently, at most cfg.jobs at a time.
// All files are attempted; the first failure is returned.
func renderBatch(ctx context.Context, cfg config, req export.Request, stderr io.Writer) error {
	if cfg.output != "" {
		if err := os.MkdirAll(cfg.output, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	report := func(format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(stderr, format, args...)
	}

	g.SetLimit(cfg.jobs)
	for _, input := range cfg.files {
		g.Go(func() error {
			out, err := renderFile(ctx, cfg, req, input)
			if err != nil {
				report("error: %v\n", err)
				return err
			}
			report("%s -> %s\n", input, out)
			return nil
		})
	}
	return g.Wait()
}
