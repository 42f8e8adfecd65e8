// ABOUTME: Saved marble diagrams and the Store interface implemented by the memory and SQLite backends.
// ABOUTME: A Diagram carries its notation plus everything needed to parse and style it again later.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/2389-research/marble/export"
	"github.com/2389-research/marble/marble"
	"github.com/2389-research/marble/render"
)

// ErrNotFound is returned when no diagram has the requested ID.
var ErrNotFound = errors.New("diagram not found")

// Diagram is a saved marble diagram.
type Diagram struct {
	ID                  string            `json:"id"`
	Title               string            `json:"title"`
	Notation            string            `json:"notation"`
	Values              map[string]any    `json:"values,omitempty"`
	ErrorMessage        string            `json:"error,omitempty"`
	ExcludeSubscription bool              `json:"excludeSubscription,omitempty"`
	Style               *render.Overrides `json:"style,omitempty"`
	CreatedAt           time.Time         `json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
}

// Store persists diagrams. Create and Update reject notation that does not parse.
type Store interface {
	Create(ctx context.Context, d Diagram) (*Diagram, error)
	Get(ctx context.Context, id string) (*Diagram, error)
	Update(ctx context.Context, d Diagram) (*Diagram, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Diagram, error)
	Close() error
}

// Request returns the export request that reproduces this diagram in format f.
func (d *Diagram) Request(f export.Format) export.Request {
	return export.Request{
		Notation:            d.Notation,
		Values:              d.Values,
		ErrorMessage:        d.ErrorMessage,
		ExcludeSubscription: d.ExcludeSubscription,
		Style:               d.Style,
		Format:              f,
	}
}

// ParseOptions returns the parse settings saved with the diagram.
func (d *Diagram) ParseOptions() marble.ParseOptions {
	return d.Request(export.FormatSVG).ParseOptions()
}

// Events parses the diagram's notation with its saved options.
func (d *Diagram) Events() ([]marble.Event, error) {
	return marble.ParseWith(d.Notation, d.ParseOptions())
}

// DisplayTitle returns the title, or a placeholder for untitled diagrams.
func (d *Diagram) DisplayTitle() string {
	if t := strings.TrimSpace(d.Title); t != "" {
		return t
	}
	return "Untitled diagram"
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// FileName returns a download file name for the diagram with extension ext.
func (d *Diagram) FileName(ext string) string {
	slug := strings.Trim(slugUnsafe.ReplaceAllString(strings.ToLower(d.Title), "-"), "-")
	if slug == "" {
		slug = "marble-diagram"
	}
	return slug + ext
}

// validate checks that the notation parses with the diagram's options.
func validate(d *Diagram) error {
	if _, err := d.Events(); err != nil {
		return fmt.Errorf("invalid notation: %w", err)
	}
	return nil
}

// clone returns a copy whose Values map is not shared with d.
func clone(d *Diagram) *Diagram {
	out := *d
	if d.Values != nil {
		out.Values = make(map[string]any, len(d.Values))
		for k, v := range d.Values {
			out.Values[k] = v
		}
	}
	return &out
}
