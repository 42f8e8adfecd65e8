// ABOUTME: HTTP viewer for marble diagrams: chi router, diagram store, export cache, and embedded templates.
// ABOUTME: Serves HTML pages for saving and viewing diagrams plus a JSON API for parse, render, and lint.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/2389-research/marble/export"
	"github.com/2389-research/marble/marble"
	"github.com/2389-research/marble/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodySize caps every request body the viewer reads.
const maxBodySize = 1 << 20

// FormData echoes the create form back to the page after a failed submit.
type FormData struct {
	Title               string
	Notation            string
	Values              string
	ErrorMessage        string
	ExcludeSubscription bool
}

// PageData is passed to every page template.
type PageData struct {
	Title       string
	Error       string
	Form        FormData
	Examples    []marble.Example
	Diagrams    []*store.Diagram
	Diagram     *store.Diagram
	SVG         template.HTML
	Events      []marble.Event
	Diagnostics []marble.Diagnostic
	Formats     []export.Format
}

// ServerOption configures optional Server behaviour.
type ServerOption func(*Server)

// WithCacheTTL sets how long rendered exports are cached.
func WithCacheTTL(ttl time.Duration) ServerOption {
	return func(s *Server) {
		s.cacheTTL = ttl
	}
}

// WithoutRequestLog disables the per-request log line.
func WithoutRequestLog() ServerOption {
	return func(s *Server) {
		s.quiet = true
	}
}

// Server holds the router, the diagram store, and the parsed page templates.
// landingTmpl and diagramTmpl are clones of the shared layout and partials,
// each adding the page that defines "content".
type Server struct {
	router      chi.Router
	store       store.Store
	cache       *export.Cache
	cacheTTL    time.Duration
	quiet       bool
	landingTmpl *template.Template
	diagramTmpl *template.Template
}

// NewServer creates a Server with all routes configured and templates parsed.
func NewServer(st store.Store, opts ...ServerOption) (*Server, error) {
	s := &Server{
		store:    st,
		cacheTTL: 10 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = export.NewCache(export.Render, s.cacheTTL)

	funcs := template.FuncMap{"eventText": export.EventText}
	shared, err := template.New("").Funcs(funcs).ParseFS(ContentFS, "templates/layout.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	if s.landingTmpl, err = pageTemplate(shared, "templates/landing.html"); err != nil {
		return nil, err
	}
	if s.diagramTmpl, err = pageTemplate(shared, "templates/diagram.html"); err != nil {
		return nil, err
	}

	static, err := fs.Sub(ContentFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if !s.quiet {
		r.Use(requestLogger)
	}
	r.Use(middleware.Recoverer)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	r.Get("/health", s.handleHealth)

	r.Get("/", s.handleLanding)
	r.Post("/diagrams", s.handleCreateDiagram)
	r.Get("/diagrams/{id}", s.handleDiagramPage)
	r.Get("/diagrams/{id}/svg", s.handleDiagramSVG)
	r.Get("/diagrams/{id}/export", s.handleDiagramExport)
	r.Post("/diagrams/{id}/delete", s.handleDeleteDiagram)

	r.Route("/api", func(r chi.Router) {
		r.Post("/parse", s.handleAPIParse)
		r.Post("/render", s.handleAPIRender)
		r.Post("/lint", s.handleAPILint)
		r.Get("/examples", s.handleAPIExamples)
		r.Get("/formats", s.handleAPIFormats)
	})

	s.router = r
	return s, nil
}

func pageTemplate(shared *template.Template, page string) (*template.Template, error) {
	clone, err := shared.Clone()
	if err != nil {
		return nil, fmt.Errorf("clone templates: %w", err)
	}
	if _, err := clone.ParseFS(ContentFS, page); err != nil {
		return nil, fmt.Errorf("parse %s: %w", page, err)
	}
	return clone, nil
}

// ServeHTTP delegates to the chi router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
// Expired cache entries are pruned while the server runs.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pruneEvery := s.cacheTTL
	if pruneEvery <= 0 {
		pruneEvery = time.Minute
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(pruneEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := s.cache.Prune(); n > 0 {
					log.Printf("viewer cache pruned=%d", n)
				}
			case <-ctx.Done():
				shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancelShutdown()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					log.Printf("viewer shutdown error=%v", err)
				}
				return
			}
		}
	}()

	err := srv.ListenAndServe()
	cancel()
	<-done
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
