// ABOUTME: XDG-based data directory resolution for the marble CLI's SQLite diagram store.
// ABOUTME: Honours -data-dir and MARBLE_DATA_DIR, then XDG_DATA_HOME, then ~/.local/share/marble.
package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// dbFileName is the SQLite file created inside the data directory.
const dbFileName = "marble.db"

// defaultDataDir returns $XDG_DATA_HOME/marble, falling back to ~/.local/share/marble.
func defaultDataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "marble"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(home, ".local", "share", "marble"), nil
}

// resolveDBPath picks the database file: an explicit path wins, then the
// data directory override, then the XDG default. The parent directory is created.
func resolveDBPath(dbPath, dataDir string) (string, error) {
	if dbPath == "" {
		dir := dataDir
		if dir == "" {
			var err error
			if dir, err = defaultDataDir(); err != nil {
				return "", err
			}
		}
		dbPath = filepath.Join(dir, dbFileName)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return dbPath, nil
}
