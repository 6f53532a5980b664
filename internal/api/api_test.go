package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/fluxlab/flowsheet/pkg/flow"
	"github.com/fluxlab/flowsheet/pkg/pipeline"
	"github.com/fluxlab/flowsheet/pkg/store"
)

const testSnapshot = `{
  "name": "district",
  "components": [
    {"name": "grid", "tags": ["Profile"], "carrier": "electricity"},
    {"name": "elec", "tags": ["Node"], "carrier": "electricity"},
    {"name": "heat", "tags": ["Node"], "carrier": "heat"},
    {"name": "hp", "tags": ["Unit"]}
  ],
  "flows": [
    {"component": "grid", "node": "elec", "direction": "out"},
    {"component": "hp", "node": "elec", "direction": "in"},
    {"component": "hp", "node": "heat", "direction": "out"}
  ]
}`

func testServer(t *testing.T, st store.Store) *httptest.Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(nil, nil, logger)
	runner.Store = st

	srv := httptest.NewServer(NewServer(runner, st, logger).Router())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthz(t *testing.T) {
	srv := testServer(t, nil)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

func TestLayoutEndpoint(t *testing.T) {
	srv := testServer(t, nil)

	resp := postJSON(t, srv.URL+"/v1/layout", `{"snapshot": `+testSnapshot+`}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body LayoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.SnapshotHash == "" {
		t.Error("snapshot hash missing")
	}
	if body.VertexCount != 4 || body.EdgeCount != 3 {
		t.Errorf("counts = (%d, %d), want (4, 3)", body.VertexCount, body.EdgeCount)
	}
	if len(body.Positions) != 4 {
		t.Errorf("positions = %d entries, want 4", len(body.Positions))
	}
	if body.Positions["grid"] != (flow.Point{X: 0, Y: 0}) {
		t.Errorf("grid position = %v, want origin", body.Positions["grid"])
	}
}

func TestLayoutEndpointRejectsBadInput(t *testing.T) {
	srv := testServer(t, nil)

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{
			name:     "invalid json body",
			body:     `{`,
			wantCode: "INVALID_INPUT",
		},
		{
			name:     "missing snapshot",
			body:     `{}`,
			wantCode: "INVALID_INPUT",
		},
		{
			name:     "invalid snapshot",
			body:     `{"snapshot": {"components": [{"name": "a", "tags": []}], "flows": [{"component": "a", "node": "b", "direction": "sideways"}]}}`,
			wantCode: "INVALID_SNAPSHOT",
		},
		{
			name:     "duplicate component",
			body:     `{"snapshot": {"components": [{"name": "a", "tags": ["Node"]}, {"name": "a", "tags": ["Node"]}]}}`,
			wantCode: "DUPLICATE_COMPONENT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/v1/layout", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}

			var body struct {
				Code string `json:"code"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
		})
	}
}

func TestDiagramEndpoint(t *testing.T) {
	srv := testServer(t, nil)

	resp := postJSON(t, srv.URL+"/v1/diagram", `{"snapshot": `+testSnapshot+`}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/xml" {
		t.Errorf("content type = %q, want application/xml", ct)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(data), "mxGraphModel") {
		t.Error("diagram should contain mxGraphModel")
	}
}

func TestDiagramEndpointDOTFormat(t *testing.T) {
	srv := testServer(t, nil)

	resp := postJSON(t, srv.URL+"/v1/diagram", `{"snapshot": `+testSnapshot+`, "format": "dot"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/vnd.graphviz" {
		t.Errorf("content type = %q, want text/vnd.graphviz", ct)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(data), "digraph flowsheet") {
		t.Error("dot output should contain digraph header")
	}
}

func TestDiagramEndpointRejectsUnknownFormat(t *testing.T) {
	srv := testServer(t, nil)

	resp := postJSON(t, srv.URL+"/v1/diagram", `{"snapshot": `+testSnapshot+`, "format": "pdf"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetLayoutEndpoint(t *testing.T) {
	st := store.NewMemoryStore()
	srv := testServer(t, st)

	// Archive a layout through the pipeline first.
	resp := postJSON(t, srv.URL+"/v1/layout", `{"snapshot": `+testSnapshot+`}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("layout status = %d, want 200", resp.StatusCode)
	}
	var layout LayoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&layout); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec, err := st.FindByHash(t.Context(), layout.SnapshotHash)
	if err != nil {
		t.Fatalf("FindByHash: %v", err)
	}

	getResp, err := http.Get(srv.URL + "/v1/layouts/" + rec.ID)
	if err != nil {
		t.Fatalf("GET layout: %v", err)
	}
	defer getResp.Body.Close()
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", getResp.StatusCode)
	}

	var got store.Record
	if err := json.NewDecoder(getResp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.SnapshotHash != layout.SnapshotHash {
		t.Errorf("record hash = %q, want %q", got.SnapshotHash, layout.SnapshotHash)
	}
}

func TestGetLayoutNotFound(t *testing.T) {
	srv := testServer(t, store.NewMemoryStore())

	resp, err := http.Get(srv.URL + "/v1/layouts/nope")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGetLayoutWithoutStore(t *testing.T) {
	srv := testServer(t, nil)

	resp, err := http.Get(srv.URL + "/v1/layouts/any")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", resp.StatusCode)
	}
}

// wrappingStore decorates a store and wraps lookup errors with context,
// the way a remote backend reports them.
type wrappingStore struct {
	store.Store
}

func (s wrappingStore) Get(ctx context.Context, id string) (store.Record, error) {
	rec, err := s.Store.Get(ctx, id)
	if err != nil {
		return rec, fmt.Errorf("lookup %s: %w", id, err)
	}
	return rec, nil
}

func (s wrappingStore) FindByHash(ctx context.Context, hash string) (store.Record, error) {
	rec, err := s.Store.FindByHash(ctx, hash)
	if err != nil {
		return rec, fmt.Errorf("lookup snapshot %s: %w", hash, err)
	}
	return rec, nil
}

func TestGetLayoutNotFoundWrapped(t *testing.T) {
	srv := testServer(t, wrappingStore{store.NewMemoryStore()})

	resp, err := http.Get(srv.URL + "/v1/layouts/nope")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for wrapped not-found error", resp.StatusCode)
	}
}

func TestFindLayoutEndpoint(t *testing.T) {
	st := store.NewMemoryStore()
	srv := testServer(t, st)

	resp := postJSON(t, srv.URL+"/v1/layout", `{"snapshot": `+testSnapshot+`}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("layout status = %d, want 200", resp.StatusCode)
	}
	var layout LayoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&layout); err != nil {
		t.Fatalf("decode: %v", err)
	}

	findResp, err := http.Get(srv.URL + "/v1/layouts?hash=" + layout.SnapshotHash)
	if err != nil {
		t.Fatalf("GET layouts: %v", err)
	}
	defer findResp.Body.Close()
	if findResp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", findResp.StatusCode)
	}

	var got store.Record
	if err := json.NewDecoder(findResp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.SnapshotHash != layout.SnapshotHash {
		t.Errorf("record hash = %q, want %q", got.SnapshotHash, layout.SnapshotHash)
	}
	if got.Name != "district" {
		t.Errorf("record name = %q, want district", got.Name)
	}
}

func TestFindLayoutRequiresHash(t *testing.T) {
	srv := testServer(t, store.NewMemoryStore())

	resp, err := http.Get(srv.URL + "/v1/layouts")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestFindLayoutNotFound(t *testing.T) {
	srv := testServer(t, store.NewMemoryStore())

	resp, err := http.Get(srv.URL + "/v1/layouts?hash=deadbeef")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
