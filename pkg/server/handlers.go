package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	derrors "github.com/matzehuels/depends/pkg/errors"
	"github.com/matzehuels/depends/pkg/graph"
	"github.com/matzehuels/depends/pkg/render"
	"github.com/matzehuels/depends/pkg/render/dot"
)

// Stats summarizes the served graph.
type Stats struct {
	Root   string             `json:"root"`
	Nodes  int                `json:"nodes"`
	Edges  int                `json:"edges"`
	ByKind map[graph.Kind]int `json:"by_kind"`
	Cycles [][]string         `json:"cycles"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Code: code, Message: msg})
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.current().diagram)
}

func (s *Server) listNodes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.current().diagram.Nodes)
}

func (s *Server) getNode(w http.ResponseWriter, r *http.Request) {
	n, ok := s.lookup(w, r)
	if ok {
		writeJSON(w, http.StatusOK, n)
	}
}

func (s *Server) getOutgoing(w http.ResponseWriter, r *http.Request) {
	n, ok := s.lookup(w, r)
	if !ok {
		return
	}
	d := s.current().diagram
	kinds, ok := kindFilter(w, r)
	if !ok {
		return
	}
	out := []render.EdgeRecord{}
	for _, e := range d.Edges {
		if e.StartKey == n.Key && kinds.match(e.EndKind) {
			out = append(out, e)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getIncoming(w http.ResponseWriter, r *http.Request) {
	n, ok := s.lookup(w, r)
	if !ok {
		return
	}
	d := s.current().diagram
	kinds, ok := kindFilter(w, r)
	if !ok {
		return
	}
	in := []render.EdgeRecord{}
	for _, e := range d.Edges {
		if e.EndKey != n.Key {
			continue
		}
		if start, found := d.Node(e.StartKey); found && !kinds.match(start.Kind) {
			continue
		}
		in = append(in, e)
	}
	writeJSON(w, http.StatusOK, in)
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	st := s.current()
	stats := Stats{
		Root:   st.graph.Root().ID,
		Nodes:  st.graph.NodeCount(),
		Edges:  st.graph.EdgeCount(),
		ByKind: make(map[graph.Kind]int),
		Cycles: [][]string{},
	}
	for _, n := range st.diagram.Nodes {
		stats.ByKind[n.Kind]++
	}
	for _, group := range graph.Cycles(st.graph) {
		ids := make([]string, len(group))
		for i, n := range group {
			ids[i] = n.ID
		}
		stats.Cycles = append(stats.Cycles, ids)
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) getDOT(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := dot.WriteDiagram(&buf, s.current().diagram, dot.Options{}); err != nil {
		writeError(w, http.StatusInternalServerError, string(derrors.ErrCodeInternal), err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) getSVG(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := dot.WriteDiagram(&buf, s.current().diagram, dot.Options{}); err != nil {
		writeError(w, http.StatusInternalServerError, string(derrors.ErrCodeInternal), err.Error())
		return
	}
	svg, err := dot.RenderSVG(r.Context(), buf.String())
	if err != nil {
		writeError(w, http.StatusInternalServerError, string(derrors.GetCode(err)), derrors.UserMessage(err))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (render.NodeInfo, bool) {
	key := strings.ToLower(chi.URLParam(r, "key"))
	n, ok := s.current().diagram.Node(key)
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown node "+chi.URLParam(r, "key"))
	}
	return n, ok
}

type kindSet map[graph.Kind]bool

func (k kindSet) match(kind graph.Kind) bool {
	return len(k) == 0 || k[kind]
}

func kindFilter(w http.ResponseWriter, r *http.Request) (kindSet, bool) {
	set := make(kindSet)
	for _, v := range r.URL.Query()["kind"] {
		k, err := graph.ParseKind(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, string(derrors.ErrCodeInvalidInput), err.Error())
			return nil, false
		}
		set[k] = true
	}
	return set, true
}
