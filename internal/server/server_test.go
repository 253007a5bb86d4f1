package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/chazu/nodal/pkg/function"
	"github.com/chazu/nodal/pkg/graph"
)

func testRepo() *function.Registry {
	return function.NewRegistry(function.NewNamespace("test", map[string]function.Function{
		"frame": function.Func(func(args []any) (any, error) {
			return args[0].(function.Context).Frame(), nil
		}),
		"echo": function.Func(func(args []any) (any, error) {
			return args[0], nil
		}),
		"fail": function.Func(func([]any) (any, error) {
			return nil, errors.New("boom")
		}),
	}))
}

func testLibrary(t *testing.T) *graph.Library {
	t.Helper()
	ctxPort := graph.NewPort("context", graph.ContextType)
	f := graph.Must(graph.Must(graph.Root().WithName("f")).WithFunction("test/frame").WithInputAdded(ctxPort))
	bad := graph.Must(graph.Root().WithName("bad")).WithFunction("test/fail")
	n := graph.Must(graph.Must(graph.Root().WithName("n")).WithFunction("test/echo").WithInputAdded(graph.FloatPort("value", 1)))
	root := graph.Must(graph.Root().WithName("root"))
	for _, c := range []*graph.Node{f, bad, n} {
		root = graph.Must(root.WithChildAdded(c))
	}
	root = graph.Must(root.WithRenderedChildName("f"))
	return graph.NewLibrary("test", root)
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	_, ts := startServer(t)
	return ts
}

func startServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := New(context.Background(), testLibrary(t), testRepo(), WithConcurrency(2), WithFrame(4))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Close()
	})
	return s, ts
}

func send(t *testing.T, method, url, body string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatal(err)
		}
	}
	return resp.StatusCode, out
}

func postRender(t *testing.T, ts *httptest.Server, body string) (int, renderResponse) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/render", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out renderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestFunctions(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/functions")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body struct {
		Functions []string `json:"functions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"test/echo", "test/fail", "test/frame"}, body.Functions); diff != "" {
		t.Errorf("functions mismatch (-want +got):\n%s", diff)
	}
}

func TestRender(t *testing.T) {
	ts := newTestServer(t)
	status, out := postRender(t, ts, `{"node": "/", "frame": 3}`)
	if status != http.StatusOK {
		t.Fatalf("status = %d, error %q", status, out.Error)
	}
	if diff := cmp.Diff([]any{3.0}, out.Values); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
	if out.ID == "" || out.Frame != 3 {
		t.Errorf("response = %+v", out)
	}
}

func TestRenderDefaultsToRootAndServerFrame(t *testing.T) {
	ts := newTestServer(t)
	status, out := postRender(t, ts, `{}`)
	if status != http.StatusOK || out.Node != "/" || out.Frame != 4 {
		t.Errorf("status %d, response %+v", status, out)
	}
}

func TestRenderErrors(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"failing node", `{"node": "/bad"}`, http.StatusUnprocessableEntity},
		{"missing node", `{"node": "/missing"}`, http.StatusNotFound},
		{"relative path", `{"node": "f"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, out := postRender(t, ts, tt.body)
			if status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
			if out.Error == "" {
				t.Error("missing error message")
			}
		})
	}
}

func TestRenderBadBody(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Post(ts.URL+"/render", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestGraph(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/graph")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `"f" [label="f"`) {
		t.Errorf("unexpected DOT:\n%s", body)
	}

	resp, err = http.Get(ts.URL + "/graph?format=png")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestSetPort(t *testing.T) {
	s, ts := startServer(t)

	if status, _ := send(t, http.MethodGet, ts.URL+"/preview", ""); status != http.StatusNoContent {
		t.Errorf("preview before any edit: status = %d", status)
	}

	status, out := send(t, http.MethodPut, ts.URL+"/ports", `{"node": "/n", "port": "value", "value": "7.5"}`)
	if status != http.StatusOK || out["value"] != "7.5" {
		t.Fatalf("status %d, response %v", status, out)
	}
	n, err := s.Library().NodeForPath("/n")
	if err != nil {
		t.Fatal(err)
	}
	if p, _ := n.Input("value"); p.FloatValue() != 7.5 {
		t.Errorf("value = %v, want 7.5", p.FloatValue())
	}

	s.WaitPreview()
	status, out = send(t, http.MethodGet, ts.URL+"/preview", "")
	if status != http.StatusOK {
		t.Fatalf("preview status = %d", status)
	}
	if diff := cmp.Diff([]any{4.0}, out["values"]); diff != "" {
		t.Errorf("preview values mismatch (-want +got):\n%s", diff)
	}
	if out["id"] == "" {
		t.Error("preview has no id")
	}

	status, out = send(t, http.MethodPost, ts.URL+"/render", `{"node": "/n"}`)
	if status != http.StatusOK {
		t.Fatalf("render status = %d", status)
	}
	if diff := cmp.Diff([]any{7.5}, out["values"]); diff != "" {
		t.Errorf("render after edit mismatch (-want +got):\n%s", diff)
	}
}

func TestRevertPort(t *testing.T) {
	_, ts := startServer(t)
	if status, _ := send(t, http.MethodPut, ts.URL+"/ports", `{"node": "/n", "port": "value", "value": "3"}`); status != http.StatusOK {
		t.Fatalf("set status = %d", status)
	}
	status, out := send(t, http.MethodPost, ts.URL+"/ports/revert", `{"node": "/n", "port": "value"}`)
	if status != http.StatusOK || out["value"] != "0" {
		t.Errorf("status %d, response %v", status, out)
	}
}

func TestSetPortErrors(t *testing.T) {
	_, ts := startServer(t)
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"bad value", `{"node": "/n", "port": "value", "value": "many"}`, http.StatusBadRequest},
		{"unknown port", `{"node": "/n", "port": "size", "value": "1"}`, http.StatusNotFound},
		{"unknown node", `{"node": "/zzz", "port": "value", "value": "1"}`, http.StatusNotFound},
		{"bad body", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, out := send(t, http.MethodPut, ts.URL+"/ports", tt.body)
			if status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
			if out["error"] == nil {
				t.Error("missing error message")
			}
		})
	}
}
