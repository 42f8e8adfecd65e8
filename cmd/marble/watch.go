// ABOUTME: -watch mode: renders each file once, then re-renders it whenever it changes on disk.
// ABOUTME: Watches parent directories so editors that replace files by rename are still seen; bursts are debounced.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"time"

	"github.com/2389-research/marble/export"
	"github.com/fsnotify/fsnotify"
)

var (
	watchDebounce = 200 * time.Millisecond
	watchTick     = 50 * time.Millisecond
)

// runWatch blocks until ctx is cancelled. Render failures are reported and
// the watch continues.
func runWatch(ctx context.Context, cfg config, req export.Request, stderr io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	tracked := make(map[string]string) // absolute path -> path as given
	dirs := make(map[string]bool)
	for _, f := range cfg.files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		tracked[abs] = f
		dir := filepath.Dir(abs)
		if !dirs[dir] {
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
			dirs[dir] = true
		}
	}

	rerender := func(input string) {
		out, err := renderFile(ctx, cfg, req, input)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return
		}
		fmt.Fprintf(stderr, "%s -> %s\n", input, out)
	}

	for _, f := range cfg.files {
		rerender(f)
	}

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(watchTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			input, isTracked := tracked[filepath.Clean(event.Name)]
			if !isTracked {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				pending[input] = time.Now()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("marble watch error=%v", err)

		case <-ticker.C:
			now := time.Now()
			for input, at := range pending {
				if now.Sub(at) >= watchDebounce {
					delete(pending, input)
					rerender(input)
				}
			}
		}
	}
}
