package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/depends/pkg/config"
	derrors "github.com/matzehuels/depends/pkg/errors"
	"github.com/matzehuels/depends/pkg/graph"
	graphio "github.com/matzehuels/depends/pkg/io"
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

// execute runs the root command with args and returns what it wrote
// through cmd.OutOrStdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	var out bytes.Buffer
	root := New(io.Discard, log.InfoLevel).RootCommand()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := graphio.ExportJSON(sampleGraph(), path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOutputResolve(t *testing.T) {
	tests := []struct {
		name    string
		opts    outputOpts
		want    string
		wantErr bool
	}{
		{"fallback", outputOpts{}, formatJSON, false},
		{"explicit format", outputOpts{format: "DOT"}, formatDOT, false},
		{"format beats extension", outputOpts{format: "svg", path: "out.json"}, formatSVG, false},
		{"from extension", outputOpts{path: "out/graph.png"}, formatPNG, false},
		{"gv extension", outputOpts{path: "graph.gv"}, formatDOT, false},
		{"unknown extension", outputOpts{path: "graph.txt"}, formatJSON, false},
		{"unknown format", outputOpts{format: "html"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.opts.resolve(formatJSON)
			if tt.wantErr {
				if !derrors.Is(err, derrors.ErrCodeInvalidInput) {
					t.Errorf("resolve() error = %v, want INVALID_INPUT", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("resolve() = %q, %v; want %q", got, err, tt.want)
			}
		})
	}
}

func TestEncodeGraph(t *testing.T) {
	g := sampleGraph()

	data, err := encodeGraph(context.Background(), g, formatJSON, &outputOpts{})
	if err != nil {
		t.Fatalf("encode json: %v", err)
	}
	back, err := graphio.ReadJSON(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if back.NodeCount() != g.NodeCount() || back.EdgeCount() != g.EdgeCount() {
		t.Errorf("round trip = %d nodes, %d edges", back.NodeCount(), back.EdgeCount())
	}

	data, err = encodeGraph(context.Background(), g, formatDOT, &outputOpts{ranked: true})
	if err != nil {
		t.Fatalf("encode dot: %v", err)
	}
	if !strings.HasPrefix(string(data), "digraph") || !strings.Contains(string(data), "rank=same") {
		t.Errorf("dot output:\n%s", data)
	}
}

func TestBinaryOutputNeedsFile(t *testing.T) {
	err := (&outputOpts{}).write(context.Background(), sampleGraph(), formatPNG)
	if !derrors.Is(err, derrors.ErrCodeInvalidInput) {
		t.Errorf("write() error = %v, want INVALID_INPUT", err)
	}
}

func TestRenderCommand(t *testing.T) {
	in := writeSample(t)
	out := filepath.Join(t.TempDir(), "nested", "graph.dot")

	if _, err := execute(t, "render", in, "-o", out); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`digraph "depends"`, `"Newtonsoft.Json.13.0.1"`, `color="blue"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("output missing %s:\n%s", want, data)
		}
	}
}

func TestRenderCommandErrors(t *testing.T) {
	in := writeSample(t)
	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"render", filepath.Join(t.TempDir(), "nope.json")}},
		{"unknown format", []string{"render", in, "--format", "bmp"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestConfigShow(t *testing.T) {
	out, err := execute(t, "config", "show", "--cache-backend", "none")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	for _, want := range []string{`framework = "` + config.DefaultFramework + `"`, `backend = "none"`, `policy = "lowest"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
}

func TestCachePath(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "cache", "path", "--cache-dir", dir)
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if strings.TrimSpace(out) != dir {
		t.Errorf("cache path = %q, want %q", out, dir)
	}
}

func TestCacheClear(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.json", "b.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := execute(t, "cache", "clear", "--cache-dir", dir); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("%d entries left after clear", len(entries))
	}
}

func TestTimeoutError(t *testing.T) {
	cfg := &config.Config{Timeout: time.Second}

	err := timeoutError(context.Background(), context.DeadlineExceeded, cfg)
	if !derrors.Is(err, derrors.ErrCodeTimeout) {
		t.Errorf("expired deadline = %v, want TIMEOUT", err)
	}

	parent, cancel := context.WithCancel(context.Background())
	cancel()
	err = timeoutError(parent, context.Canceled, cfg)
	if derrors.Is(err, derrors.ErrCodeTimeout) || !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled parent = %v, want context.Canceled", err)
	}
}

func TestStatsLine(t *testing.T) {
	line := statsLine(sampleGraph())
	for _, want := range []string{"5 nodes", "5 edges", "2 package", "1 cycles"} {
		if !strings.Contains(line, want) {
			t.Errorf("statsLine() = %q, missing %q", line, want)
		}
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m browseModel, keys ...string) browseModel {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(browseModel)
	}
	return m
}

func TestBrowseModel(t *testing.T) {
	m := newBrowseModel(sampleGraph())
	if got := m.selected().ID; got != "App.csproj" {
		t.Fatalf("initial selection = %s, want the root", got)
	}

	// App's dependency pane lists packages and assemblies only, so the
	// project reference to Lib is hidden.
	if out := m.outgoing(); len(out) != 1 || out[0].End.ID != "Newtonsoft.Json" {
		t.Fatalf("outgoing = %v", out)
	}

	m = press(m, "tab", "enter")
	if got := m.selected().ID; got != "Newtonsoft.Json" {
		t.Fatalf("after follow = %s, want Newtonsoft.Json", got)
	}
	if m.focus != paneNodes {
		t.Errorf("focus = %d, want the node pane", m.focus)
	}

	// Newtonsoft.Json is used by App and System.Memory.
	m = press(m, "tab", "tab", "j", "enter")
	if got := m.selected().ID; got != "System.Memory" {
		t.Errorf("after following incoming = %s, want System.Memory", got)
	}

	if view := m.View(); !strings.Contains(view, "Used by (1)") {
		t.Errorf("view missing incoming pane title:\n%s", view)
	}
}

func TestBrowseModelQuit(t *testing.T) {
	_, cmd := newBrowseModel(sampleGraph()).Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestWatchFiles(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "project.assets.json")
	other := filepath.Join(dir, "unrelated.txt")
	if err := os.WriteFile(target, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- watchFiles(ctx, log.New(io.Discard), func() []string { return []string{target} }, func() error {
			changed <- struct{}{}
			return nil
		})
	}()
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(other, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-changed:
		t.Fatal("unrelated file triggered a rebuild")
	case <-time.After(2 * watchDebounce):
	}

	for range 3 {
		if err := os.WriteFile(target, []byte(`{"version":3}`), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no rebuild after the watched file changed")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("watchFiles() = %v, want context.Canceled", err)
	}
}

func TestCompletion(t *testing.T) {
	out, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(out, "__start_depends") {
		t.Error("bash completion should define __start_depends")
	}
}
