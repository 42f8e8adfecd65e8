// ABOUTME: Long-running CLI modes: the web viewer, the terminal playground, and the MCP stdio server.
// ABOUTME: The viewer uses SQLite in the data directory unless -memory asks for an in-memory store.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/2389-research/marble/mcptools"
	"github.com/2389-research/marble/store"
	"github.com/2389-research/marble/tui"
	"github.com/2389-research/marble/viewer"
)

const (
	memoryStoreCapacity = 500
	memoryStoreTTL      = 24 * time.Hour
	cleanupInterval     = 10 * time.Minute
)

// openStore opens the diagram store for the viewer. The returned func
// releases it.
func openStore(cfg config) (store.Store, func(), error) {
	if cfg.memStore {
		st := store.NewMemoryStore(memoryStoreCapacity, memoryStoreTTL)
		stop := st.StartCleanup(cleanupInterval)
		return st, func() {
			stop()
			_ = st.Close()
		}, nil
	}

	path, err := resolveDBPath(cfg.dbPath, cfg.dataDir)
	if err != nil {
		return nil, nil, err
	}
	st, err := store.OpenSQLite(path)
	if err != nil {
		return nil, nil, err
	}
	if cfg.verbose {
		log.Printf("marble store=sqlite path=%s", path)
	}
	return st, func() { _ = st.Close() }, nil
}

func runServe(ctx context.Context, cfg config, stderr io.Writer) int {
	st, closeStore, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer closeStore()

	srv, err := viewer.NewServer(st, viewer.WithCacheTTL(cfg.cacheTTL))
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.port)
	fmt.Fprintf(stderr, "marble viewer listening on http://%s\n", addr)
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func runTUI(ctx context.Context, cfg config, stderr io.Writer) int {
	req, err := baseRequest(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	err = tui.Run(ctx, tui.Options{
		Notation:            cfg.notation,
		Values:              req.Values,
		ErrorMessage:        req.ErrorMessage,
		ExcludeSubscription: req.ExcludeSubscription,
		Style:               req.Style,
		OutputPath:          cfg.output,
	})
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func runMCP(ctx context.Context, stderr io.Writer) int {
	if err := mcptools.Run(ctx, version); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
