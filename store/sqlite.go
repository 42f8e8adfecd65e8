// ABOUTME: SQLite-backed diagram store using WAL mode and ULID primary keys.
// ABOUTME: Values and style overrides are kept as JSON text columns; timestamps as unix nanoseconds.
package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/2389-research/marble/render"
)

// SQLiteStore persists diagrams in a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and ensures the schema exists.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS diagrams (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			notation TEXT NOT NULL,
			values_json TEXT,
			error_message TEXT NOT NULL DEFAULT '',
			exclude_subscription INTEGER NOT NULL DEFAULT 0,
			style_json TEXT,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS diagrams_updated_at ON diagrams(updated_at);`

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Create validates d and inserts it under a new ULID.
func (s *SQLiteStore) Create(ctx context.Context, d Diagram) (*Diagram, error) {
	if err := validate(&d); err != nil {
		return nil, err
	}
	valuesJSON, styleJSON, err := encodeColumns(&d)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	d.ID = ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()
	d.CreatedAt = now
	d.UpdatedAt = now

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO diagrams (id, title, notation, values_json, error_message, exclude_subscription, style_json, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Title, d.Notation, valuesJSON, d.ErrorMessage, d.ExcludeSubscription, styleJSON,
		now.UnixNano(), now.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert diagram: %w", err)
	}
	return clone(&d), nil
}

// Get loads one diagram by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Diagram, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, notation, values_json, error_message, exclude_subscription, style_json, created_at, updated_at
		 FROM diagrams WHERE id = ?`, id)
	d, err := scanDiagram(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get diagram: %w", err)
	}
	return d, nil
}

// Update rewrites every mutable column of the diagram with d.ID.
func (s *SQLiteStore) Update(ctx context.Context, d Diagram) (*Diagram, error) {
	if err := validate(&d); err != nil {
		return nil, err
	}
	valuesJSON, styleJSON, err := encodeColumns(&d)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE diagrams SET title = ?, notation = ?, values_json = ?, error_message = ?,
			exclude_subscription = ?, style_json = ?, updated_at = ?
		 WHERE id = ?`,
		d.Title, d.Notation, valuesJSON, d.ErrorMessage, d.ExcludeSubscription, styleJSON, now.UnixNano(), d.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update diagram: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, d.ID)
	}
	return s.Get(ctx, d.ID)
}

// Delete removes a diagram.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM diagrams WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete diagram: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// List returns every diagram, most recently updated first.
func (s *SQLiteStore) List(ctx context.Context) ([]*Diagram, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, notation, values_json, error_message, exclude_subscription, style_json, created_at, updated_at
		 FROM diagrams ORDER BY updated_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list diagrams: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Diagram
	for rows.Next() {
		d, err := scanDiagram(rows)
		if err != nil {
			return nil, fmt.Errorf("scan diagram: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list diagrams: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDiagram(row rowScanner) (*Diagram, error) {
	var (
		d                  Diagram
		valuesJSON         sql.NullString
		styleJSON          sql.NullString
		createdAt, updated int64
	)
	if err := row.Scan(&d.ID, &d.Title, &d.Notation, &valuesJSON, &d.ErrorMessage,
		&d.ExcludeSubscription, &styleJSON, &createdAt, &updated); err != nil {
		return nil, err
	}
	if valuesJSON.Valid && valuesJSON.String != "" {
		if err := json.Unmarshal([]byte(valuesJSON.String), &d.Values); err != nil {
			return nil, fmt.Errorf("decode values: %w", err)
		}
	}
	if styleJSON.Valid && styleJSON.String != "" {
		d.Style = &render.Overrides{}
		if err := json.Unmarshal([]byte(styleJSON.String), d.Style); err != nil {
			return nil, fmt.Errorf("decode style: %w", err)
		}
	}
	d.CreatedAt = time.Unix(0, createdAt).UTC()
	d.UpdatedAt = time.Unix(0, updated).UTC()
	return &d, nil
}

// encodeColumns marshals the JSON columns; absent values and style become NULL.
func encodeColumns(d *Diagram) (values, style sql.NullString, err error) {
	if len(d.Values) > 0 {
		b, err := json.Marshal(d.Values)
		if err != nil {
			return values, style, fmt.Errorf("encode values: %w", err)
		}
		values = sql.NullString{String: string(b), Valid: true}
	}
	if d.Style != nil {
		b, err := json.Marshal(d.Style)
		if err != nil {
			return values, style, fmt.Errorf("encode style: %w", err)
		}
		style = sql.NullString{String: string(b), Valid: true}
	}
	return values, style, nil
}
