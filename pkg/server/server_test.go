package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/formtabs/internal/errors"
	"github.com/vango-dev/formtabs/pkg/catalog"
	"github.com/vango-dev/formtabs/pkg/formdef"
	"github.com/vango-dev/formtabs/pkg/formtabs"
)

const postYAML = `
fields:
  title: Title
  slug: Slug
tabs:
  icons:
    Content: icon-pencil
  paneCssClass:
    0: first
  fields:
    content:
      type: richeditor
      tab: Content
    published:
      type: switch
      tab: Meta
secondaryTabs:
  fields:
    tags:
      tab: Tags
`

func newTestServer(t *testing.T) (*Server, *catalog.Catalog) {
	t.Helper()
	fsys := fstest.MapFS{
		"post.yaml":   {Data: []byte(postYAML)},
		"broken.yaml": {Data: []byte("fields: [a, b]")},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cat := catalog.New(formdef.NewFSSource(fsys, "forms"), catalog.Options{Logger: logger})
	s := New(cat, &Config{Metrics: true, HeartbeatInterval: time.Second})
	s.SetLogger(logger)
	return s, cat
}

func do(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return v
}

func TestListForms(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/forms")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := decode[listResponse](t, rec)
	if len(body.Forms) != 2 || body.Forms[0] != "broken" || body.Forms[1] != "post" {
		t.Errorf("forms = %v", body.Forms)
	}
}

func TestGetForm(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/forms/post")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	snap := decode[formdef.Snapshot](t, rec)
	if snap.Name != "post" {
		t.Errorf("Name = %q", snap.Name)
	}
	if len(snap.Primary.Tabs) != 2 || snap.Primary.Tabs[0].Icon != "icon-pencil" || snap.Primary.Tabs[0].PaneClass != "first" {
		t.Errorf("primary tabs = %+v", snap.Primary.Tabs)
	}
}

func TestGetSection(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/forms/post/Secondary")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	snap := decode[formtabs.Snapshot[*formdef.Field]](t, rec)
	if snap.Section != formtabs.SectionSecondary || len(snap.Tabs) != 1 || snap.Tabs[0].Label != "Tags" {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestViewGroupedAndFlat(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/forms/post/primary/view")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var grouped struct {
		SuppressTabs bool `json:"suppressTabs"`
		Entries      []struct {
			Tab    string                    `json:"tab"`
			Fields map[string]*formdef.Field `json:"fields"`
		} `json:"entries"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&grouped); err != nil {
		t.Fatal(err)
	}
	if grouped.SuppressTabs || len(grouped.Entries) != 2 {
		t.Fatalf("grouped view = %+v", grouped)
	}
	if grouped.Entries[0].Tab != "Content" || grouped.Entries[0].Fields["content"].Type != "richeditor" {
		t.Errorf("first entry = %+v", grouped.Entries[0])
	}

	rec = do(t, s, http.MethodGet, "/forms/post/outside/view")
	var flat struct {
		SuppressTabs bool `json:"suppressTabs"`
		Entries      []struct {
			Name  string         `json:"name"`
			Field *formdef.Field `json:"field"`
		} `json:"entries"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&flat); err != nil {
		t.Fatal(err)
	}
	if !flat.SuppressTabs || len(flat.Entries) != 2 || flat.Entries[0].Name != "title" || flat.Entries[1].Field.Label != "Slug" {
		t.Errorf("flat view = %+v", flat)
	}
}

func TestViewKeepsTabOrderInJSON(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/forms/post/primary/view")
	body := rec.Body.String()
	if strings.Index(body, `"Content"`) > strings.Index(body, `"Meta"`) {
		t.Errorf("tabs out of order:\n%s", body)
	}
}

func TestRemoveField(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodDelete, "/forms/post/fields/published")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	snap := decode[formdef.Snapshot](t, rec)
	if len(snap.Primary.Tabs) != 1 {
		t.Errorf("primary tabs after delete = %+v", snap.Primary.Tabs)
	}

	rec = do(t, s, http.MethodDelete, "/forms/post/fields/published")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d", rec.Code)
	}
	body := decode[errorBody](t, rec)
	if body.Error.Code != "E022" {
		t.Errorf("error code = %q", body.Error.Code)
	}
}

func TestReload(t *testing.T) {
	s, _ := newTestServer(t)
	do(t, s, http.MethodDelete, "/forms/post/fields/title")

	rec := do(t, s, http.MethodPost, "/forms/post/reload")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	snap := decode[formdef.Snapshot](t, rec)
	if got := snap.Outside.Tabs[0].Fields[0].Name; got != "title" {
		t.Errorf("first outside field after reload = %q", got)
	}
}

func TestErrors(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		method string
		target string
		status int
		code   string
	}{
		{http.MethodGet, "/forms/psot", http.StatusNotFound, "E020"},
		{http.MethodGet, "/forms/post/sidebar", http.StatusNotFound, "E021"},
		{http.MethodGet, "/forms/post/sidebar/view", http.StatusNotFound, "E021"},
		{http.MethodGet, "/forms/broken", http.StatusUnprocessableEntity, "E004"},
		{http.MethodPost, "/forms/missing/reload", http.StatusNotFound, "E020"},
		{http.MethodGet, "/nowhere", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		rec := do(t, s, tt.method, tt.target)
		if rec.Code != tt.status {
			t.Errorf("%s %s status = %d, want %d", tt.method, tt.target, rec.Code, tt.status)
			continue
		}
		body := decode[errorBody](t, rec)
		if body.Error.Code != tt.code {
			t.Errorf("%s %s code = %q, want %q", tt.method, tt.target, body.Error.Code, tt.code)
		}
	}

	rec := do(t, s, http.MethodGet, "/forms/psot")
	if body := decode[errorBody](t, rec); body.Error.Suggestion != "Did you mean post?" {
		t.Errorf("suggestion = %q", body.Error.Suggestion)
	}

	rec = do(t, s, http.MethodGet, "/forms/post/sidebar/view")
	if body := decode[errorBody](t, rec); body.Error.Example != "GET /forms/post/primary/view" {
		t.Errorf("example = %q", body.Error.Example)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New("E001"), http.StatusNotFound},
		{errors.New("E002"), http.StatusUnprocessableEntity},
		{errors.New("E040"), http.StatusBadGateway},
		{errors.New("E041"), http.StatusServiceUnavailable},
		{errors.New("E120"), http.StatusInternalServerError},
		{errors.Newf(errors.CategoryLookup, "gone"), http.StatusNotFound},
		{context.Canceled, http.StatusServiceUnavailable},
		{io.EOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	do(t, s, http.MethodGet, "/forms/post")
	do(t, s, http.MethodGet, "/forms/post/primary")
	do(t, s, http.MethodDelete, "/forms/post/fields/slug")

	rec := do(t, s, http.MethodGet, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`formtabs_http_requests_total{method="GET",route="/forms/{form}",status="200"} 1`,
		`formtabs_http_requests_total{method="GET",route="/forms/{form}/{section}",status="200"} 1`,
		`formtabs_http_requests_total{method="DELETE",route="/forms/{form}/fields/{field}",status="200"} 1`,
		`formtabs_fields_removed_total{form="post"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestReloadMetricsSkipUnknownForms(t *testing.T) {
	s, _ := newTestServer(t)
	for _, name := range []string{"nosucha", "nosuchb", "nosuchc"} {
		if rec := do(t, s, http.MethodPost, "/forms/"+name+"/reload"); rec.Code != http.StatusNotFound {
			t.Fatalf("reload %s status = %d", name, rec.Code)
		}
	}
	do(t, s, http.MethodPost, "/forms/post/reload")
	do(t, s, http.MethodPost, "/forms/broken/reload")

	body := do(t, s, http.MethodGet, "/metrics").Body.String()
	if strings.Contains(body, "nosuch") {
		t.Errorf("unknown form names leaked into metrics:\n%s", body)
	}
	if got := strings.Count(body, "formtabs_reloads_total{"); got != 2 {
		t.Errorf("reload series = %d, want 2", got)
	}
	for _, want := range []string{
		`formtabs_reloads_total{form="post",result="success"} 1`,
		`formtabs_reloads_total{form="broken",result="error"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestFieldDefaultsWithNonStringKeys(t *testing.T) {
	fsys := fstest.MapFS{
		"opts.yaml": {Data: []byte("fields:\n  size:\n    default: {1: small, 2: large}\n")},
	}
	cat := catalog.New(formdef.NewFSSource(fsys, "forms"), catalog.Options{})
	s := New(cat, &Config{})
	s.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := do(t, s, http.MethodGet, "/forms/opts")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	snap := decode[formdef.Snapshot](t, rec)
	def, ok := snap.Outside.Tabs[0].Fields[0].Value.Default.(map[string]any)
	if !ok || def["1"] != "small" || def["2"] != "large" {
		t.Errorf("Default = %#v", snap.Outside.Tabs[0].Fields[0].Value.Default)
	}
}

func TestWriteJSONEncodeFailure(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.writeJSON(rec, httptest.NewRequest(http.MethodGet, "/forms/x", nil), http.StatusOK, math.Inf(1))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	body := decode[errorBody](t, rec)
	if body.Error.Code != "E120" || body.Error.Cause == "" {
		t.Errorf("error = %+v", body.Error)
	}
}

func TestMetricsDisabled(t *testing.T) {
	cat := catalog.New(formdef.NewFSSource(fstest.MapFS{}, "forms"), catalog.Options{})
	s := New(cat, &Config{Metrics: false})
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestWatch(t *testing.T) {
	s, cat := newTestServer(t)
	ts := httptest.NewServer(s)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/forms/post/watch"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first watchMessage
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read first: %v", err)
	}
	if first.Type != "snapshot" || first.Sequence != 1 || first.Snapshot.Name != "post" {
		t.Errorf("first message = %+v", first)
	}

	if _, err := cat.RemoveField(context.Background(), "post", "content"); err != nil {
		t.Fatal(err)
	}
	var second watchMessage
	if err := conn.ReadJSON(&second); err != nil {
		t.Fatalf("read second: %v", err)
	}
	if second.Sequence != 2 || len(second.Snapshot.Primary.Tabs) != 1 {
		t.Errorf("second message = %+v", second)
	}

	cat.Close()
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("expected going-away close, got %v", err)
	}
}

func TestWatchUnknownForm(t *testing.T) {
	s, _ := newTestServer(t)
	ts := httptest.NewServer(s)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/forms/nope/watch"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("response = %+v", resp)
	}
}
