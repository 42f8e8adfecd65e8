// ABOUTME: Request logging middleware writing one key=value log.Printf line per request.
// ABOUTME: Handlers attach diagram details (format, frames, events, failure) that the line reports after the route.
package viewer

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// requestNote carries what a handler learned about the diagram it served.
type requestNote struct {
	format  string
	frames  int
	events  int
	failure string
	set     bool
}

type noteKey struct{}

// noteFor returns the request's note, or nil when request logging is off.
func noteFor(r *http.Request) *requestNote {
	n, _ := r.Context().Value(noteKey{}).(*requestNote)
	return n
}

// noteDiagram records the output format and parse outcome for the log line.
func noteDiagram(r *http.Request, format string, frames, events int) {
	if n := noteFor(r); n != nil {
		n.format, n.frames, n.events, n.set = format, frames, events, true
	}
}

// noteFailure records why the diagram could not be served.
func noteFailure(r *http.Request, err error) {
	if n := noteFor(r); n != nil && err != nil {
		n.failure = err.Error()
		n.set = true
	}
}

func (n *requestNote) fields() string {
	if n == nil || !n.set {
		return ""
	}
	var out string
	if n.format != "" {
		out = " format=" + n.format
	}
	if n.failure != "" {
		return out + fmt.Sprintf(" failure=%q", n.failure)
	}
	return out + fmt.Sprintf(" frames=%d events=%d", n.frames, n.events)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		note := &requestNote{}
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), noteKey{}, note)))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		log.Printf("viewer request id=%s method=%s route=%s status=%d bytes=%d duration=%s%s",
			middleware.GetReqID(r.Context()),
			r.Method,
			route,
			status,
			ww.BytesWritten(),
			time.Since(start).Round(time.Microsecond),
			note.fields(),
		)
	})
}
