// ABOUTME: HTML handlers for the viewer: landing form, diagram create/view/delete, and SVG and export downloads.
// ABOUTME: Syntax errors re-render the form with the message and a 422 status instead of losing the input.
package viewer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strings"

	"github.com/2389-research/marble/export"
	"github.com/2389-research/marble/marble"
	"github.com/2389-research/marble/marble/validator"
	"github.com/2389-research/marble/store"
	"github.com/go-chi/chi/v5"
)

// handleLanding renders the create form. ?example=<name> pre-fills it from the catalogue.
func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	data := s.landingData(r)
	if name := r.URL.Query().Get("example"); name != "" {
		ex, ok := marble.FindExample(name)
		if !ok {
			data.Error = fmt.Sprintf("unknown example %q", name)
			s.renderPage(w, s.landingTmpl, data, http.StatusNotFound)
			return
		}
		data.Form = FormData{Title: ex.Name, Notation: ex.Notation, Values: valuesText(ex.Values)}
	}
	s.renderPage(w, s.landingTmpl, data, http.StatusOK)
}

// handleCreateDiagram saves a diagram from the posted form and redirects to it.
func (s *Server) handleCreateDiagram(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := r.ParseForm(); err != nil {
		var tooLarge *http.MaxBytesError
		data := s.landingData(r)
		if errors.As(err, &tooLarge) {
			data.Error = "Request too large (max 1MB)"
			s.renderPage(w, s.landingTmpl, data, http.StatusRequestEntityTooLarge)
			return
		}
		data.Error = "failed to parse form"
		s.renderPage(w, s.landingTmpl, data, http.StatusBadRequest)
		return
	}

	form := FormData{
		Title:               strings.TrimSpace(r.FormValue("title")),
		Notation:            r.FormValue("notation"),
		Values:              r.FormValue("values"),
		ErrorMessage:        strings.TrimSpace(r.FormValue("error")),
		ExcludeSubscription: r.FormValue("exclude_subscription") != "",
	}
	fail := func(msg string) {
		data := s.landingData(r)
		data.Form = form
		data.Error = msg
		s.renderPage(w, s.landingTmpl, data, http.StatusUnprocessableEntity)
	}

	if strings.TrimSpace(form.Notation) == "" {
		fail("Notation is required")
		return
	}
	var values map[string]any
	if strings.TrimSpace(form.Values) != "" {
		if err := json.Unmarshal([]byte(form.Values), &values); err != nil {
			fail(fmt.Sprintf("Values must be a JSON object: %v", err))
			return
		}
	}

	opts := marble.DefaultParseOptions()
	opts.ExcludeSubscriptionEvents = form.ExcludeSubscription
	if events, err := marble.ParseWith(form.Notation, opts); err == nil {
		if err := checkFrames(events); err != nil {
			fail(err.Error())
			return
		}
	}

	d, err := s.store.Create(r.Context(), store.Diagram{
		Title:               form.Title,
		Notation:            form.Notation,
		Values:              values,
		ErrorMessage:        form.ErrorMessage,
		ExcludeSubscription: form.ExcludeSubscription,
	})
	if err != nil {
		if errors.Is(err, marble.ErrSyntax) {
			fail(err.Error())
			return
		}
		log.Printf("viewer create error=%v", err)
		http.Error(w, "failed to save diagram", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/diagrams/"+d.ID, http.StatusSeeOther)
}

// handleDiagramPage shows the rendered diagram with its events and lint findings.
func (s *Server) handleDiagramPage(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookup(w, r)
	if !ok {
		return
	}

	svg, err := s.cache.Render(r.Context(), d.Request(export.FormatSVG))
	if err != nil {
		s.writeError(w, err)
		return
	}
	events, err := d.Events()
	if err != nil {
		s.writeError(w, err)
		return
	}

	data := PageData{
		Title:       d.DisplayTitle(),
		Diagram:     d,
		SVG:         template.HTML(svg),
		Events:      events,
		Diagnostics: validator.Lint(d.Notation),
		Formats:     export.Formats(),
	}
	s.renderPage(w, s.diagramTmpl, data, http.StatusOK)
}

// handleDiagramSVG serves the diagram image; ?download=1 makes it an attachment.
func (s *Server) handleDiagramSVG(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookup(w, r)
	if !ok {
		return
	}
	svg, err := s.cache.Render(r.Context(), d.Request(export.FormatSVG))
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType(export.FormatSVG))
	if r.URL.Query().Get("download") != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, d.FileName(".svg")))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(svg)
}

// handleDiagramExport downloads the diagram in any export format.
func (s *Server) handleDiagramExport(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookup(w, r)
	if !ok {
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	body, err := s.cache.Render(r.Context(), d.Request(format))
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, d.FileName(export.Extension(format))))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// handleDeleteDiagram removes a diagram and returns to the landing page.
func (s *Server) handleDeleteDiagram(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// lookup loads the {id} diagram, writing a 404 when it does not exist.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*store.Diagram, bool) {
	d, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return d, true
}

func (s *Server) landingData(r *http.Request) PageData {
	data := PageData{Examples: marble.Examples()}
	diagrams, err := s.store.List(r.Context())
	if err != nil {
		log.Printf("viewer list error=%v", err)
	}
	data.Diagrams = diagrams
	return data
}

// renderPage executes the layout of tmpl into a buffer so template errors
// never produce a half-written page.
func (s *Server) renderPage(w http.ResponseWriter, tmpl *template.Template, data PageData, status int) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		http.Error(w, fmt.Sprintf("template error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// writeError maps domain errors to a plain-text HTTP error.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("viewer error=%v", err)
	}
	http.Error(w, err.Error(), status)
}

// statusFor maps package sentinel errors to HTTP status codes.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, marble.ErrSyntax), errors.Is(err, marble.ErrNotSerializable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, export.ErrUnsupportedFormat), errors.Is(err, errTooManyFrames):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// valuesText pretty-prints a value mapping for the form's textarea.
func valuesText(values map[string]any) string {
	if len(values) == 0 {
		return ""
	}
	b, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}
