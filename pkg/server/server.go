package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/depends/pkg/graph"
	"github.com/matzehuels/depends/pkg/render"
)

const shutdownTimeout = 5 * time.Second

// Options configures a [Server].
type Options struct {
	Logger  *log.Logger  // Request logging (optional)
	Metrics http.Handler // Served on /metrics when set
}

// Server serves one graph at a time.
type Server struct {
	opts Options

	mu    sync.RWMutex
	state *snapshot
}

// snapshot is the immutable per-graph state shared by concurrent requests.
type snapshot struct {
	graph   *graph.Graph
	diagram render.Diagram
}

// New creates a server for g.
func New(g *graph.Graph, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	s := &Server{opts: opts}
	s.SetGraph(g)
	return s
}

// SetGraph replaces the served graph.
func (s *Server) SetGraph(g *graph.Graph) {
	st := &snapshot{graph: g, diagram: render.NewDiagram(g)}
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Server) current() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.opts.Logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/graph", s.getGraph)
		r.Get("/stats", s.getStats)
		r.Get("/dot", s.getDOT)
		r.Get("/svg", s.getSVG)
		r.Route("/nodes", func(r chi.Router) {
			r.Get("/", s.listNodes)
			r.Get("/{key}", s.getNode)
			r.Get("/{key}/outgoing", s.getOutgoing)
			r.Get("/{key}/incoming", s.getIncoming)
		})
	})
	if s.opts.Metrics != nil {
		r.Handle("/metrics", s.opts.Metrics)
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.opts.Logger.Info("serving graph", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return ctx.Err()
	}
}
