// ABOUTME: Test suite for the viewer's HTML routes: landing, create, diagram page, downloads, and delete.
// ABOUTME: Uses httptest against the chi router with an in-memory store.
package viewer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/2389-research/marble/store"
)

// newTestServer creates a quiet server backed by a fresh memory store.
func newTestServer(t *testing.T) (*Server, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore(100, time.Hour)
	srv, err := NewServer(st, WithoutRequestLog())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv, st
}

// createDiagram stores a diagram directly and returns it.
func createDiagram(t *testing.T, st store.Store, d store.Diagram) *store.Diagram {
	t.Helper()
	created, err := st.Create(context.Background(), d)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return created
}

func do(t *testing.T, srv *Server, req *http.Request) (*http.Response, string) {
	t.Helper()
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func postForm(t *testing.T, srv *Server, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return do(t, srv, req)
}

func TestLandingPage(t *testing.T) {
	srv, st := newTestServer(t)
	createDiagram(t, st, store.Diagram{Title: "Saved one", Notation: "a|"})

	resp, body := do(t, srv, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	for _, want := range []string{"marble viewer", `action="/diagrams"`, "/?example=basic", "Saved one"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in landing page", want)
		}
	}
}

func TestLandingExamplePrefill(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := do(t, srv, httptest.NewRequest(http.MethodGet, "/?example=basic", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, ">---a---b---|</textarea>") {
		t.Errorf("expected notation prefilled:\n%s", body)
	}

	resp, _ = do(t, srv, httptest.NewRequest(http.MethodGet, "/?example=nope", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown example, got %d", resp.StatusCode)
	}
}

func TestStaticCSS(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := do(t, srv, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, ".topbar") {
		t.Fatalf("expected stylesheet, got %d", resp.StatusCode)
	}
}

func TestCreateDiagramRedirects(t *testing.T) {
	srv, st := newTestServer(t)

	resp, _ := postForm(t, srv, "/diagrams", url.Values{
		"title":                {"My stream"},
		"notation":             {"--a--b--|"},
		"values":               {`{"a": "Hello"}`},
		"exclude_subscription": {"1"},
	})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	loc := resp.Header.Get("Location")
	if !strings.HasPrefix(loc, "/diagrams/") {
		t.Fatalf("unexpected redirect %q", loc)
	}

	d, err := st.Get(context.Background(), strings.TrimPrefix(loc, "/diagrams/"))
	if err != nil {
		t.Fatalf("diagram not stored: %v", err)
	}
	if d.Title != "My stream" || d.Values["a"] != "Hello" || !d.ExcludeSubscription {
		t.Errorf("stored diagram = %+v", d)
	}
}

func TestCreateDiagramRejectsInput(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"syntax error", url.Values{"notation": {"--a--?"}}, "at position 5"},
		{"empty notation", url.Values{"notation": {"  "}}, "Notation is required"},
		{"bad values", url.Values{"notation": {"a"}, "values": {"[1,2"}}, "Values must be a JSON object"},
		{"frames past limit", url.Values{"notation": {strings.Repeat("-", maxFrames+1) + "a"}}, "too many frames"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, st := newTestServer(t)
			resp, body := postForm(t, srv, "/diagrams", tt.form)
			if resp.StatusCode != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d", resp.StatusCode)
			}
			if !strings.Contains(body, tt.want) {
				t.Errorf("expected %q in body:\n%s", tt.want, body)
			}
			if st.Len() != 0 {
				t.Error("nothing should be stored")
			}
		})
	}
}

func TestCreateDiagramKeepsFormOnError(t *testing.T) {
	srv, _ := newTestServer(t)
	_, body := postForm(t, srv, "/diagrams", url.Values{"title": {"Keep me"}, "notation": {"ab*"}})
	if !strings.Contains(body, `value="Keep me"`) || !strings.Contains(body, ">ab*</textarea>") {
		t.Errorf("form input should be echoed back:\n%s", body)
	}
}

func TestCreateDiagramBodyTooLarge(t *testing.T) {
	srv, _ := newTestServer(t)
	big := url.Values{"notation": {strings.Repeat("-", maxBodySize+1)}}
	resp, _ := postForm(t, srv, "/diagrams", big)
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", resp.StatusCode)
	}
}

func TestDiagramPage(t *testing.T) {
	srv, st := newTestServer(t)
	d := createDiagram(t, st, store.Diagram{Title: "Page", Notation: "--a--|--b", Values: map[string]any{"a": "<x>"}})

	resp, body := do(t, srv, httptest.NewRequest(http.MethodGet, "/diagrams/"+d.ID, nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	for _, want := range []string{
		"<svg",
		`<tr class="kind-next"><td>2</td><td>next</td><td>&lt;x&gt;</td></tr>`,
		"after_terminal",
		"/diagrams/" + d.ID + "/svg?download=1",
		"/diagrams/" + d.ID + "/export?format=yaml",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in diagram page", want)
		}
	}
	if strings.Contains(body, "<x>") {
		t.Error("value markup leaked unescaped")
	}
}

func TestDiagramNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, path := range []string{"/diagrams/missing", "/diagrams/missing/svg", "/diagrams/missing/export?format=json"} {
		resp, _ := do(t, srv, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, resp.StatusCode)
		}
	}
}

func TestDiagramSVG(t *testing.T) {
	srv, st := newTestServer(t)
	d := createDiagram(t, st, store.Diagram{Notation: "a|"})

	resp, body := do(t, srv, httptest.NewRequest(http.MethodGet, "/diagrams/"+d.ID+"/svg", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Content-Type") != "image/svg+xml" {
		t.Errorf("content type = %q", resp.Header.Get("Content-Type"))
	}
	if resp.Header.Get("Content-Disposition") != "" {
		t.Error("inline SVG should not be an attachment")
	}
	if !strings.HasPrefix(body, "<svg") {
		t.Errorf("unexpected body %q", body)
	}

	resp, _ = do(t, srv, httptest.NewRequest(http.MethodGet, "/diagrams/"+d.ID+"/svg?download=1", nil))
	if got := resp.Header.Get("Content-Disposition"); got != `attachment; filename="marble-diagram.svg"` {
		t.Errorf("Content-Disposition = %q", got)
	}
}

func TestDiagramExport(t *testing.T) {
	srv, st := newTestServer(t)
	d := createDiagram(t, st, store.Diagram{Title: "Hot Stream", Notation: "a-b|"})

	resp, body := do(t, srv, httptest.NewRequest(http.MethodGet, "/diagrams/"+d.ID+"/export?format=json", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Disposition"); got != `attachment; filename="hot-stream.json"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	var doc struct {
		Events []map[string]any `json:"events"`
	}
	if err := json.Unmarshal([]byte(body), &doc); err != nil || len(doc.Events) != 3 {
		t.Errorf("unexpected export %s (%v)", body, err)
	}

	resp, _ = do(t, srv, httptest.NewRequest(http.MethodGet, "/diagrams/"+d.ID+"/export?format=gif", nil))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown format, got %d", resp.StatusCode)
	}
}

func TestDeleteDiagram(t *testing.T) {
	srv, st := newTestServer(t)
	d := createDiagram(t, st, store.Diagram{Notation: "a"})

	resp, _ := postForm(t, srv, "/diagrams/"+d.ID+"/delete", nil)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/" {
		t.Fatalf("expected redirect to /, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	if st.Len() != 0 {
		t.Error("diagram not deleted")
	}

	resp, _ = postForm(t, srv, "/diagrams/"+d.ID+"/delete", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", resp.StatusCode)
	}
}
