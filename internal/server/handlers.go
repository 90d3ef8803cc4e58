package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/cjmtoolkit/cjmtoolkit/internal/logging"
	"github.com/cjmtoolkit/cjmtoolkit/internal/server/notifier"
	"github.com/cjmtoolkit/cjmtoolkit/pkg/settings"
)

// ChildInfo summarises one child name of a node.
type ChildInfo struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// NodeResponse is the body of GET /api/node.
type NodeResponse struct {
	Path       string            `json:"path"`
	Name       string            `json:"name"`
	Value      string            `json:"value"`
	Attributes map[string]string `json:"attributes"`
	Children   []ChildInfo       `json:"children"`
}

// ValueResponse is the body of GET /api/value.
type ValueResponse struct {
	Path  string `json:"path"`
	Value string `json:"value"`
}

// AttributeResponse is the body of GET /api/attribute.
type AttributeResponse struct {
	Path  string `json:"path"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) routes(r chi.Router) {
	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/tree", s.handleTree)
		r.Get("/node", s.handleNode)
		r.Get("/value", s.handleValue)
		r.Get("/attribute", s.handleAttribute)
		r.Get("/diagnostics", s.handleDiagnostics)
		r.Post("/reload", s.handleReload)
	})
	r.Get("/events", s.handleEvents)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// lookup resolves the path query parameter against the tree root.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (settings.Cursor, bool) {
	path := r.URL.Query().Get("path")
	if _, err := settings.ParsePath(path); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return settings.Cursor{}, false
	}
	c := s.store.Document().Root().Find(path)
	if !c.Valid() {
		writeError(w, http.StatusNotFound, "node not found: "+path)
		return c, false
	}
	return c, true
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.Entries())
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}

	resp := NodeResponse{
		Path:       c.Path(),
		Name:       c.Name(),
		Value:      c.Value(),
		Attributes: make(map[string]string),
		Children:   []ChildInfo{},
	}
	for _, name := range c.AttributeNames() {
		resp.Attributes[name] = c.Attribute(name)
	}
	for _, name := range c.ChildNames() {
		resp.Children = append(resp.Children, ChildInfo{Name: name, Count: c.Count(name)})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleValue(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ValueResponse{Path: c.Path(), Value: c.Value()})
}

func (s *Server) handleAttribute(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing attribute name")
		return
	}
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}
	value, found := c.LookupAttribute(name)
	if !found {
		writeError(w, http.StatusNotFound, "attribute not found: "+name)
		return
	}
	writeJSON(w, http.StatusOK, AttributeResponse{Path: c.Path(), Name: name, Value: value})
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	entries := s.diagnostics()
	if lv := r.URL.Query().Get("level"); lv != "" {
		level, err := logging.ParseLevel(lv)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filtered := entries[:0:0]
		for _, e := range entries {
			if e.Level >= level {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	if entries == nil {
		entries = []logging.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleReload(w http.ResponseWriter, _ *http.Request) {
	if err := s.Reload(); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, struct {
			Snapshot
			Reason string `json:"reason"`
		}{s.store.Snapshot(), err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

// handleEvents is the long-lived SSE endpoint. It patches the client's
// signals with the store snapshot on connect and after every reload.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	updates := s.notifier.Subscribe()
	defer s.notifier.Unsubscribe(updates)

	sse := datastar.NewSSE(w, r)
	if err := sse.MarshalAndPatchSignals(s.store.Snapshot()); err != nil {
		s.logger.Debug("event stream closed", "error", err)
		return
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-updates:
			if !ok {
				return
			}
			if err := sse.MarshalAndPatchSignals(struct {
				Snapshot
				Event notifier.Event `json:"event"`
			}{s.store.Snapshot(), ev}); err != nil {
				_ = sse.ConsoleError(err)
				return
			}
		}
	}
}
