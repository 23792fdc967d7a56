package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/depends/pkg/graph"
	"github.com/matzehuels/depends/pkg/render"
)

func sampleGraph() *graph.Graph {
	root := graph.NewProject("App.csproj")
	json := graph.NewPackage("Newtonsoft.Json", "13.0.1")
	memory := graph.NewPackage("System.Memory", "4.5.4")
	dll := graph.NewAssembly("Newtonsoft.Json.dll")
	lib := graph.NewProject("Lib.csproj")
	return graph.NewBuilder(root).
		AddNodes(json, memory, dll, lib).
		AddEdge(graph.NewLabeledEdge(root, json, "13.0.1")).
		AddEdge(graph.NewEdge(root, lib)).
		AddEdge(graph.NewEdge(json, dll)).
		AddEdge(graph.NewLabeledEdge(json, memory, "[4.5.4, )")).
		AddEdge(graph.NewLabeledEdge(memory, json, "13.0.1")).
		Build()
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func TestGraphRoute(t *testing.T) {
	h := New(sampleGraph(), Options{}).Handler()
	rec := get(t, h, "/api/graph")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	d := decode[render.Diagram](t, rec)
	if d.Root != "app.csproj" || len(d.Nodes) != 5 || len(d.Edges) != 5 {
		t.Errorf("diagram = root %s, %d nodes, %d edges", d.Root, len(d.Nodes), len(d.Edges))
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("missing request id header")
	}
}

func TestRequestIDPropagated(t *testing.T) {
	h := New(sampleGraph(), Options{}).Handler()
	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want abc-123", got)
	}
}

func TestNodeRoutes(t *testing.T) {
	h := New(sampleGraph(), Options{}).Handler()

	tests := []struct {
		path string
		want []string // "start->end"
	}{
		{"/api/nodes/Newtonsoft.Json/outgoing", []string{"newtonsoft.json->newtonsoft.json.dll", "newtonsoft.json->system.memory"}},
		{"/api/nodes/newtonsoft.json/outgoing?kind=assembly", []string{"newtonsoft.json->newtonsoft.json.dll"}},
		{"/api/nodes/NEWTONSOFT.JSON/incoming", []string{"app.csproj->newtonsoft.json", "system.memory->newtonsoft.json"}},
		{"/api/nodes/newtonsoft.json/incoming?kind=project", []string{"app.csproj->newtonsoft.json"}},
		{"/api/nodes/lib.csproj/outgoing", nil},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, h, tt.path)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}
			var got []string
			for _, e := range decode[[]render.EdgeRecord](t, rec) {
				got = append(got, e.StartKey+"->"+e.EndKey)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("edges = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNodeErrors(t *testing.T) {
	h := New(sampleGraph(), Options{}).Handler()

	tests := []struct {
		path   string
		status int
		code   string
	}{
		{"/api/nodes/missing", http.StatusNotFound, "NOT_FOUND"},
		{"/api/nodes/missing/outgoing", http.StatusNotFound, "NOT_FOUND"},
		{"/api/nodes/app.csproj/outgoing?kind=widget", http.StatusBadRequest, "INVALID_INPUT"},
		{"/nope", http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		rec := get(t, h, tt.path)
		if rec.Code != tt.status {
			t.Errorf("%s: status = %d, want %d", tt.path, rec.Code, tt.status)
			continue
		}
		if body := decode[errorBody](t, rec); body.Code != tt.code {
			t.Errorf("%s: code = %q, want %q", tt.path, body.Code, tt.code)
		}
	}
}

func TestNodeLookup(t *testing.T) {
	h := New(sampleGraph(), Options{}).Handler()
	n := decode[render.NodeInfo](t, get(t, h, "/api/nodes/SYSTEM.MEMORY"))
	if n.ID != "System.Memory" || n.DisplayLabel != "System.Memory.4.5.4" {
		t.Errorf("node = %+v", n)
	}
	nodes := decode[[]render.NodeInfo](t, get(t, h, "/api/nodes"))
	if len(nodes) != 5 {
		t.Errorf("len(nodes) = %d, want 5", len(nodes))
	}
}

func TestStats(t *testing.T) {
	h := New(sampleGraph(), Options{}).Handler()
	st := decode[Stats](t, get(t, h, "/api/stats"))
	if st.Nodes != 5 || st.Edges != 5 {
		t.Errorf("counts = %d, %d", st.Nodes, st.Edges)
	}
	if st.ByKind[graph.KindPackage] != 2 || st.ByKind[graph.KindProject] != 2 {
		t.Errorf("by kind = %v", st.ByKind)
	}
	if len(st.Cycles) != 1 || strings.Join(st.Cycles[0], ",") != "Newtonsoft.Json,System.Memory" {
		t.Errorf("cycles = %v", st.Cycles)
	}
}

func TestDOT(t *testing.T) {
	h := New(sampleGraph(), Options{}).Handler()
	rec := get(t, h, "/api/dot")
	if !strings.HasPrefix(rec.Body.String(), `digraph "depends" {`) {
		t.Errorf("body = %s", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/vnd.graphviz") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestMetricsRoute(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("depends_up 1\n"))
	})
	h := New(sampleGraph(), Options{Metrics: metrics}).Handler()
	if rec := get(t, h, "/metrics"); rec.Body.String() != "depends_up 1\n" {
		t.Errorf("body = %q", rec.Body.String())
	}

	if rec := get(t, New(sampleGraph(), Options{}).Handler(), "/metrics"); rec.Code != http.StatusNotFound {
		t.Errorf("status without metrics = %d, want 404", rec.Code)
	}
}

func TestSetGraph(t *testing.T) {
	s := New(sampleGraph(), Options{})
	h := s.Handler()

	s.SetGraph(graph.NewBuilder(graph.NewProject("Other.csproj")).Build())
	d := decode[render.Diagram](t, get(t, h, "/api/graph"))
	if d.Root != "other.csproj" || len(d.Edges) != 0 {
		t.Errorf("diagram after SetGraph = %+v", d)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- New(sampleGraph(), Options{}).ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-errc:
		if err != context.Canceled {
			t.Errorf("ListenAndServe() = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ListenAndServe() did not return after cancel")
	}
}
