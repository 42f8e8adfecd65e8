// ABOUTME: Tests for -watch: initial render, re-render after an edit, and clean shutdown on cancel.
// ABOUTME: Polls the output file rather than sleeping for fixed intervals.
package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards stderr writes from the watch goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitForFile(t *testing.T, path, want string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if data, err := os.ReadFile(path); err == nil && strings.Contains(string(data), want) {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	data, _ := os.ReadFile(path)
	t.Fatalf("%s never contained %q; last content %q", path, want, data)
}

func TestRunWatchRerendersOnChange(t *testing.T) {
	dir := t.TempDir()
	input := writeTempMarble(t, dir, "stream.marble", "a|")
	output := filepath.Join(dir, "stream.md")

	cfg := mustParseFlags(t, "-watch", "-format", "markdown", input)
	req, err := baseRequest(cfg)
	if err != nil {
		t.Fatalf("baseRequest: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	stderr := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- runWatch(ctx, cfg, req, stderr) }()

	waitForFile(t, output, "| 0 | next | a |")

	if err := os.WriteFile(input, []byte("--z--|"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitForFile(t, output, "| 2 | next | z |")

	// A broken edit is reported and the watch keeps going.
	if err := os.WriteFile(input, []byte("--?"), 0o644); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(stderr.String(), "position 2") && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if !strings.Contains(stderr.String(), "position 2") {
		t.Errorf("syntax error not reported: %q", stderr.String())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("runWatch returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runWatch did not stop after cancel")
	}
}

func TestRunWatchMissingDirectory(t *testing.T) {
	cfg := mustParseFlags(t, "-watch", filepath.Join(t.TempDir(), "nope", "x.marble"))
	req, err := baseRequest(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := runWatch(context.Background(), cfg, req, &syncBuffer{}); err == nil {
		t.Error("expected error watching a missing directory")
	}
}
