// ABOUTME: Behavioural tests shared by every Store backend plus Diagram helper tests.
// ABOUTME: Each backend runs the same CRUD, validation, and ordering checks through a factory.
package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/2389-research/marble/export"
	"github.com/2389-research/marble/marble"
	"github.com/2389-research/marble/render"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type factory func(t *testing.T) Store

func backends() map[string]factory {
	return map[string]factory{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore(100, time.Hour)
		},
		"sqlite": func(t *testing.T) Store {
			s, err := OpenSQLite(filepath.Join(t.TempDir(), "marble.db"))
			if err != nil {
				t.Fatalf("OpenSQLite: %v", err)
			}
			return s
		},
	}
}

func forEachBackend(t *testing.T, fn func(t *testing.T, s Store)) {
	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			s := mk(t)
			t.Cleanup(func() { _ = s.Close() })
			fn(t, s)
		})
	}
}

func TestStoreCreateAndGet(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		created, err := s.Create(ctx, Diagram{
			Title:               "Basic",
			Notation:            "--a--b--|",
			Values:              map[string]any{"a": "Hello", "b": 2.0},
			ErrorMessage:        "boom",
			ExcludeSubscription: true,
			Style:               &render.Overrides{Markers: &render.MarkerOverrides{Radius: render.Float(9)}},
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if created.ID == "" || created.CreatedAt.IsZero() || !created.CreatedAt.Equal(created.UpdatedAt) {
			t.Fatalf("unexpected created diagram %+v", created)
		}

		got, err := s.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Title != "Basic" || got.Notation != "--a--b--|" || got.ErrorMessage != "boom" || !got.ExcludeSubscription {
			t.Errorf("round-trip mismatch: %+v", got)
		}
		if got.Values["a"] != "Hello" || got.Values["b"] != 2.0 {
			t.Errorf("values = %v", got.Values)
		}
		if got.Style == nil || got.Style.Markers == nil || *got.Style.Markers.Radius != 9 {
			t.Errorf("style = %+v", got.Style)
		}
	})
}

func TestStoreCreateRejectsBadNotation(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		_, err := s.Create(context.Background(), Diagram{Notation: "--a--?"})
		if !errors.Is(err, marble.ErrSyntax) {
			t.Fatalf("expected ErrSyntax, got %v", err)
		}
		var se *marble.SyntaxError
		if !errors.As(err, &se) || se.Position != 5 {
			t.Errorf("expected SyntaxError at 5, got %v", err)
		}
	})
}

func TestStoreUpdate(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		created, err := s.Create(ctx, Diagram{Title: "v1", Notation: "a|"})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		time.Sleep(2 * time.Millisecond)

		updated, err := s.Update(ctx, Diagram{ID: created.ID, Title: "v2", Notation: "ab#"})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if updated.Title != "v2" || updated.Notation != "ab#" {
			t.Errorf("update not applied: %+v", updated)
		}
		if !updated.CreatedAt.Equal(created.CreatedAt) || !updated.UpdatedAt.After(created.UpdatedAt) {
			t.Errorf("timestamps: created %v/%v updated %v/%v",
				created.CreatedAt, created.UpdatedAt, updated.CreatedAt, updated.UpdatedAt)
		}

		if _, err := s.Update(ctx, Diagram{ID: created.ID, Notation: "("}); err != nil {
			t.Errorf("unclosed group should still parse: %v", err)
		}
		if _, err := s.Update(ctx, Diagram{ID: created.ID, Notation: "a*"}); !errors.Is(err, marble.ErrSyntax) {
			t.Errorf("expected ErrSyntax, got %v", err)
		}
		if _, err := s.Update(ctx, Diagram{ID: "missing", Notation: "a"}); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestStoreDelete(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		created, err := s.Create(ctx, Diagram{Notation: "a"})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := s.Delete(ctx, created.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := s.Get(ctx, created.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		if err := s.Delete(ctx, created.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestStoreListNewestFirst(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		list, err := s.List(ctx)
		if err != nil || len(list) != 0 {
			t.Fatalf("empty List = %v, %v", list, err)
		}

		var ids []string
		for _, n := range []string{"a", "b", "c"} {
			d, err := s.Create(ctx, Diagram{Title: n, Notation: n})
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			ids = append(ids, d.ID)
			time.Sleep(2 * time.Millisecond)
		}
		if _, err := s.Update(ctx, Diagram{ID: ids[0], Title: "a2", Notation: "a"}); err != nil {
			t.Fatalf("Update: %v", err)
		}

		list, err = s.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		var titles []string
		for _, d := range list {
			titles = append(titles, d.Title)
		}
		want := []string{"a2", "c", "b"}
		if len(titles) != len(want) {
			t.Fatalf("titles = %v, want %v", titles, want)
		}
		for i := range want {
			if titles[i] != want[i] {
				t.Fatalf("titles = %v, want %v", titles, want)
			}
		}
	})
}

func TestStoreReturnsCopies(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		created, err := s.Create(ctx, Diagram{Notation: "a", Values: map[string]any{"a": "x"}})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		created.Values["a"] = "mutated"

		got, err := s.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Values["a"] != "x" {
			t.Errorf("stored values changed through returned copy: %v", got.Values)
		}
	})
}

func TestDiagramEventsUseSavedOptions(t *testing.T) {
	d := Diagram{Notation: "^a#!", Values: map[string]any{"a": 1}, ErrorMessage: "bad", ExcludeSubscription: true}
	events, err := d.Events()
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected subscription events excluded, got %v", events)
	}
	if events[0].Value != 1 {
		t.Errorf("value = %v", events[0].Value)
	}
	if err, ok := events[1].Err.(error); !ok || err.Error() != "bad" {
		t.Errorf("error payload = %v", events[1].Err)
	}
}

func TestDiagramRequest(t *testing.T) {
	d := Diagram{Notation: "a", ErrorMessage: "x", ExcludeSubscription: true}
	req := d.Request(export.FormatJSON)
	if req.Notation != "a" || req.ErrorMessage != "x" || !req.ExcludeSubscription || req.Format != export.FormatJSON {
		t.Errorf("request = %+v", req)
	}
}

func TestDiagramFileNameAndTitle(t *testing.T) {
	tests := []struct {
		title, file, display string
	}{
		{"", "marble-diagram.svg", "Untitled diagram"},
		{"  ", "marble-diagram.svg", "Untitled diagram"},
		{"Hot Observable!", "hot-observable.svg", "Hot Observable!"},
		{"../etc/passwd", "etc-passwd.svg", "../etc/passwd"},
	}
	for _, tt := range tests {
		d := Diagram{Title: tt.title}
		if got := d.FileName(".svg"); got != tt.file {
			t.Errorf("FileName(%q) = %q, want %q", tt.title, got, tt.file)
		}
		if got := d.DisplayTitle(); got != tt.display {
			t.Errorf("DisplayTitle(%q) = %q, want %q", tt.title, got, tt.display)
		}
	}
}
