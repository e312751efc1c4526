package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/flowedit/internal/metrics"
	"github.com/matzehuels/flowedit/pkg/diagram"
	"github.com/matzehuels/flowedit/pkg/editor"
	"github.com/matzehuels/flowedit/pkg/layout"
	"github.com/matzehuels/flowedit/pkg/observability"
)

type testServer struct {
	t   *testing.T
	srv *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := log.New(io.Discard)
	reg := editor.NewRegistry(editor.Options{
		Logger:   logger,
		Viewport: diagram.Viewport{Width: 1000, Height: 800},
		Layout:   layout.DefaultOptions(),
	})
	s := New(Options{
		Registry:       reg,
		Logger:         logger,
		AllowedOrigins: []string{"http://localhost:3000"},
		Gatherer:       prometheus.NewRegistry(),
	})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv}
}

func (ts *testServer) do(method, path string, body any) (*http.Response, map[string]any) {
	ts.t.Helper()
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(ts.t, err)
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, rdr)
	require.NoError(ts.t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(ts.t, err)
	defer resp.Body.Close()

	var out map[string]any
	data, err := io.ReadAll(resp.Body)
	require.NoError(ts.t, err)
	if len(data) > 0 {
		require.NoError(ts.t, json.Unmarshal(data, &out), string(data))
	}
	return resp, out
}

func (ts *testServer) createSession() string {
	ts.t.Helper()
	resp, body := ts.do(http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(ts.t, http.StatusCreated, resp.StatusCode)
	id, ok := body["id"].(string)
	require.True(ts.t, ok)
	return id
}

func (ts *testServer) addNode(sid, kind string) string {
	ts.t.Helper()
	resp, body := ts.do(http.MethodPost, "/api/v1/sessions/"+sid+"/nodes", map[string]string{"kind": kind})
	require.Equal(ts.t, http.StatusOK, resp.StatusCode, body)
	return body["node_id"].(string)
}

func nodesOf(body map[string]any) []any {
	return body["state"].(map[string]any)["nodes"].([]any)
}

func edgesOf(body map[string]any) []any {
	return body["state"].(map[string]any)["edges"].([]any)
}

func errorOf(body map[string]any) map[string]any {
	return body["error"].(map[string]any)
}

func TestCreateAndGetSession(t *testing.T) {
	ts := newTestServer(t)
	sid := ts.createSession()

	resp, body := ts.do(http.MethodGet, "/api/v1/sessions/"+sid, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, sid, body["id"])
	assert.Empty(t, nodesOf(body))
	assert.Empty(t, edgesOf(body))
	assert.Equal(t, false, body["can_undo"])
}

func TestUnknownSession(t *testing.T) {
	ts := newTestServer(t)
	resp, body := ts.do(http.MethodGet, "/api/v1/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "SESSION_NOT_FOUND", errorOf(body)["code"])
}

func TestDeleteSession(t *testing.T) {
	ts := newTestServer(t)
	sid := ts.createSession()

	resp, _ := ts.do(http.MethodDelete, "/api/v1/sessions/"+sid, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = ts.do(http.MethodDelete, "/api/v1/sessions/"+sid, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAddNode(t *testing.T) {
	ts := newTestServer(t)
	sid := ts.createSession()

	assert.Equal(t, "node_1", ts.addNode(sid, "imageNode"))

	_, body := ts.do(http.MethodGet, "/api/v1/sessions/"+sid, nil)
	nodes := nodesOf(body)
	require.Len(t, nodes, 1)
	n := nodes[0].(map[string]any)
	assert.Equal(t, "imageNode", n["type"])
	assert.Equal(t, "ImageNode Node 1", n["label"])
	assert.Equal(t, diagram.DefaultImageURL, n["image_url"])
	assert.Equal(t, true, body["can_undo"])
}

func TestAddNodeValidation(t *testing.T) {
	ts := newTestServer(t)
	sid := ts.createSession()

	tests := []struct {
		name string
		body any
	}{
		{"missing kind", map[string]string{}},
		{"unknown kind", map[string]string{"kind": "hexagon"}},
		{"unknown field", map[string]string{"kind": "default", "color": "red"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := ts.do(http.MethodPost, "/api/v1/sessions/"+sid+"/nodes", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "INVALID_INPUT", errorOf(body)["code"])
		})
	}
}

func TestRequestBodyLimit(t *testing.T) {
	ts := newTestServer(t)
	sid := ts.createSession()

	huge := map[string]string{"kind": strings.Repeat("a", maxBodyBytes)}
	resp, body := ts.do(http.MethodPost, "/api/v1/sessions/"+sid+"/nodes", huge)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_INPUT", errorOf(body)["code"])
	assert.Contains(t, errorOf(body)["message"], "too large")

	_, body = ts.do(http.MethodGet, "/api/v1/sessions/"+sid, nil)
	assert.Empty(t, nodesOf(body))
}

func TestConnectScenario(t *testing.T) {
	ts := newTestServer(t)
	sid := ts.createSession()
	base := "/api/v1/sessions/" + sid

	n1 := ts.addNode(sid, "default")
	n2 := ts.addNode(sid, "circular")
	resp, _ := ts.do(http.MethodPost, base+"/edges", map[string]string{"source": n1, "target": n2})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	n3 := ts.addNode(sid, "default")
	resp, body := ts.do(http.MethodPost, base+"/edges", map[string]string{"source": n2, "target": n3})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "branch_node_3", body["branch"])
	require.Len(t, edgesOf(body), 2)

	resp, body = ts.do(http.MethodPost, base+"/edges", map[string]string{"source": n3, "target": n2})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "VALIDATION_REJECTED", errorOf(body)["code"])
	assert.Equal(t, "reverse_edge", errorOf(body)["rule"])
}

func TestConnectDuplicateAndUnknown(t *testing.T) {
	ts := newTestServer(t)
	sid := ts.createSession()
	base := "/api/v1/sessions/" + sid
	a, b := ts.addNode(sid, "default"), ts.addNode(sid, "default")

	ts.do(http.MethodPost, base+"/edges", map[string]string{"source": a, "target": b})
	resp, body := ts.do(http.MethodPost, base+"/edges", map[string]string{"source": a, "target": b})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "edge already exists", body["notice"])
	assert.Len(t, edgesOf(body), 1)

	resp, body = ts.do(http.MethodPost, base+"/edges", map[string]string{"source": a, "target": "node_99"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["notice"])

	resp, _ = ts.do(http.MethodPost, base+"/edges", map[string]string{"source": a, "target": "bogus"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMoveNode(t *testing.T) {
	ts := newTestServer(t)
	sid := ts.createSession()
	base := "/api/v1/sessions/" + sid
	id := ts.addNode(sid, "input")

	resp, body := ts.do(http.MethodPut, base+"/nodes/"+id+"/position", map[string]float64{"x": 12, "y": 34})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	pos := nodesOf(body)[0].(map[string]any)["position"].(map[string]any)
	assert.Equal(t, 12.0, pos["x"])
	assert.Equal(t, 34.0, pos["y"])

	resp, body = ts.do(http.MethodPut, base+"/nodes/node_5/position", map[string]float64{"x": 1, "y": 1})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["notice"])

	resp, _ = ts.do(http.MethodPut, base+"/nodes/"+id+"/position", map[string]float64{"x": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLayoutUndoRedo(t *testing.T) {
	ts := newTestServer(t)
	sid := ts.createSession()
	base := "/api/v1/sessions/" + sid

	resp, body := ts.do(http.MethodPost, base+"/layout", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["notice"], "layout without root should be a notice")

	a, b := ts.addNode(sid, "input"), ts.addNode(sid, "output")
	ts.do(http.MethodPost, base+"/edges", map[string]string{"source": a, "target": b})

	resp, body = ts.do(http.MethodPost, base+"/layout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for _, n := range nodesOf(body) {
		pos := n.(map[string]any)["position"].(map[string]any)
		assert.Equal(t, 500.0, pos["x"])
	}

	resp, body = ts.do(http.MethodPost, base+"/undo", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["can_redo"])

	resp, body = ts.do(http.MethodPost, base+"/redo", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["can_redo"])

	_, body = ts.do(http.MethodPost, base+"/redo", nil)
	assert.Equal(t, "nothing to redo", body["notice"])

	_, body = ts.do(http.MethodGet, base+"/history", nil)
	entries := body["entries"].([]any)
	assert.Len(t, entries, 5)
	assert.Equal(t, "layout", entries[4].(map[string]any)["action"])
}

func TestLayoutCycle(t *testing.T) {
	ts := newTestServer(t)
	sid := ts.createSession()
	base := "/api/v1/sessions/" + sid
	ids := []string{ts.addNode(sid, "input"), ts.addNode(sid, "default"), ts.addNode(sid, "default"), ts.addNode(sid, "default")}
	for _, e := range [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 1}} {
		resp, _ := ts.do(http.MethodPost, base+"/edges", map[string]string{"source": ids[e[0]], "target": ids[e[1]]})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, body := ts.do(http.MethodPost, base+"/layout", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CYCLE_DETECTED", errorOf(body)["code"])
}

func TestViewport(t *testing.T) {
	ts := newTestServer(t)
	sid := ts.createSession()
	base := "/api/v1/sessions/" + sid

	resp, body := ts.do(http.MethodPut, base+"/viewport", map[string]float64{"width": 640, "height": 480})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 640.0, body["viewport"].(map[string]any)["width"])

	resp, _ = ts.do(http.MethodPut, base+"/viewport", map[string]float64{"width": 0, "height": 480})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthAndCORS(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])

	req, err := http.NewRequest(http.MethodOptions, ts.srv.URL+"/api/v1/sessions", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	pre, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	pre.Body.Close()
	assert.Equal(t, "http://localhost:3000", pre.Header.Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	defer observability.Reset()
	reg := prometheus.NewRegistry()
	metrics.New(reg).Install()

	logger := log.New(io.Discard)
	s := New(Options{
		Registry: editor.NewRegistry(editor.Options{Logger: logger, Viewport: diagram.Viewport{Width: 100, Height: 100}}),
		Logger:   logger,
		Gatherer: reg,
	})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/sessions", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.Contains(text, "flowedit_active_sessions 1"), text)
	assert.True(t, strings.Contains(text, `flowedit_http_requests_total{method="POST",route="/api/v1/sessions`), text)
	assert.True(t, strings.Contains(text, `status="201"`), text)
}
