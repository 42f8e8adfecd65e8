// ABOUTME: JSON API handlers: parse notation to events, render notation or raw events, lint, and list examples.
// ABOUTME: Bad JSON is a 400, unparseable notation a 422 carrying the syntax error position.
package viewer

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2389-research/marble/export"
	"github.com/2389-research/marble/marble"
	"github.com/2389-research/marble/marble/validator"
)

// renderRequest is the /api/render body. When Events is present it is
// rendered directly and Notation, Values and ErrorMessage are ignored.
type renderRequest struct {
	export.Request
	Events []marble.Event `json:"events,omitempty"`
}

type lintRequest struct {
	Notation string `json:"notation"`
}

type lintResponse struct {
	Diagnostics []marble.Diagnostic `json:"diagnostics"`
	HasErrors   bool                `json:"hasErrors"`
}

type errorResponse struct {
	Error    string `json:"error"`
	Position *int   `json:"position,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAPIParse returns the events for a notation as an export document.
func (s *Server) handleAPIParse(w http.ResponseWriter, r *http.Request) {
	var req export.Request
	if !decodeJSON(w, r, &req) {
		return
	}
	events, err := marble.ParseWith(req.Notation, req.ParseOptions())
	if err != nil {
		noteFailure(r, err)
		writeAPIError(w, err)
		return
	}
	if events == nil {
		events = []marble.Event{}
	}
	noteDiagram(r, string(export.FormatJSON), marble.MaxFrame(events), len(events))
	writeJSON(w, http.StatusOK, export.Document{
		Notation: req.Notation,
		MaxFrame: marble.MaxFrame(events),
		Events:   events,
	})
}

// handleAPIRender returns the diagram in the requested format (SVG by default).
// Notation is parsed up front so the frame limit applies before the cache renders it.
func (s *Server) handleAPIRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	body, format, err := s.renderAPI(r, req)
	if err != nil {
		noteFailure(r, err)
		writeAPIError(w, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) renderAPI(r *http.Request, req renderRequest) ([]byte, export.Format, error) {
	format, err := export.ParseFormat(string(req.Format))
	if err != nil {
		return nil, "", err
	}

	events := req.Events
	if events == nil {
		if events, err = marble.ParseWith(req.Notation, req.ParseOptions()); err != nil {
			return nil, format, err
		}
	}
	if err := checkFrames(events); err != nil {
		return nil, format, err
	}
	noteDiagram(r, string(format), marble.MaxFrame(events), len(events))

	if req.Events != nil {
		var buf bytes.Buffer
		if err := export.Events(&buf, format, req.Events, req.Style); err != nil {
			return nil, format, err
		}
		return buf.Bytes(), format, nil
	}
	req.Format = format
	body, err := s.cache.Render(r.Context(), req.Request)
	return body, format, err
}

// handleAPILint runs the notation linter.
func (s *Server) handleAPILint(w http.ResponseWriter, r *http.Request) {
	var req lintRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	diags := validator.Lint(req.Notation)
	if diags == nil {
		diags = []marble.Diagnostic{}
	}
	writeJSON(w, http.StatusOK, lintResponse{Diagnostics: diags, HasErrors: validator.HasErrors(diags)})
}

func (s *Server) handleAPIExamples(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, marble.Examples())
}

func (s *Server) handleAPIFormats(w http.ResponseWriter, r *http.Request) {
	type formatInfo struct {
		Name        export.Format `json:"name"`
		ContentType string        `json:"contentType"`
		Extension   string        `json:"extension"`
	}
	var out []formatInfo
	for _, f := range export.Formats() {
		out = append(out, formatInfo{Name: f, ContentType: export.ContentType(f), Extension: export.Extension(f)})
	}
	writeJSON(w, http.StatusOK, out)
}

// decodeJSON reads a size-capped JSON body into v, writing a 400 or 413 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func writeAPIError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}
	var se *marble.SyntaxError
	if errors.As(err, &se) {
		pos := se.Position
		resp.Position = &pos
	}
	writeJSON(w, statusFor(err), resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
