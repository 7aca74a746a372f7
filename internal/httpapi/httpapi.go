// Package httpapi serves the JSON-over-HTTP query endpoint described in
// SPEC_FULL §3.1: POST a query, get back an array of printed bindings.
// Grounded on the teacher's own http/httpsrv.go (a hand-rolled
// net/http.HandleFunc server, kept on stdlib net/http deliberately — see
// DESIGN.md) and on original_source's http/{handler,server}.h/.cpp for the
// request/response shape.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"logicdb/pkg/compiler"
	"logicdb/pkg/engine"
)

// Server wraps a *engine.Store behind a mutex so concurrent queries can run
// while a write (assert, rule-file reload) is excluded, per spec §5's
// "an outer wrapper must serialize writes with respect to reads" guidance.
type Server struct {
	mu        sync.RWMutex
	store     *engine.Store
	providers []engine.StorageProvider
	logger    *zap.Logger
}

// NewServer builds a Server over store, consulting providers (e.g. a
// pgfacts.Provider) after the in-memory store's facts for every goal a
// provider handles.
func NewServer(store *engine.Store, logger *zap.Logger, providers ...engine.StorageProvider) *Server {
	return &Server{store: store, providers: providers, logger: logger}
}

// Swap replaces the live store, e.g. after internal/watch reloads a clause
// file into a fresh Store. Blocks until in-flight reads finish.
func (s *Server) Swap(store *engine.Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = store
}

// Mutex returns the lock guarding reads of the live store, so other writers
// of that same store (e.g. internal/feed/mqttfeed) can serialize against it
// instead of taking a lock of their own.
func (s *Server) Mutex() *sync.RWMutex {
	return &s.mu
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	ID       string              `json:"id"`
	Success  bool                `json:"success"`
	Bindings []map[string]string `json:"bindings"`
	Error    string              `json:"error,omitempty"`
}

// Handler builds the mux for the query and dump endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/query", s.handleQuery)
	mux.HandleFunc("/rules", s.handleRules)
	mux.HandleFunc("/facts/", s.handleFacts)
	return mux
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "expected POST", http.StatusMethodNotAllowed)
		return
	}
	id := uuid.New().String()

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, queryResponse{ID: id, Error: "malformed request body"})
		return
	}

	s.mu.RLock()
	resolver := engine.NewResolver(s.store, s.providers...)
	bindings, err := engine.Query(r.Context(), resolver, req.Query)
	s.mu.RUnlock()

	if err != nil {
		var parseErr *compiler.ParseError
		if errors.As(err, &parseErr) {
			s.logger.Warn("query rejected", zap.String("id", id), zap.Error(err))
			s.writeJSON(w, http.StatusBadRequest, queryResponse{ID: id, Error: err.Error()})
			return
		}
		s.logger.Error("query failed", zap.String("id", id), zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, queryResponse{ID: id, Error: err.Error()})
		return
	}

	out := make([]map[string]string, 0, len(bindings))
	for _, b := range bindings {
		row := make(map[string]string)
		for _, v := range b.Vars() {
			term, _ := b.Get(v)
			row[v] = term.String()
		}
		out = append(out, row)
	}
	s.logger.Info("query answered", zap.String("id", id), zap.Int("solutions", len(out)))
	s.writeJSON(w, http.StatusOK, queryResponse{ID: id, Success: true, Bindings: out})
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "expected GET", http.StatusMethodNotAllowed)
		return
	}
	s.mu.RLock()
	rules := s.store.Rules()
	s.mu.RUnlock()

	lines := make([]string, len(rules))
	for i, rule := range rules {
		lines[i] = rule.String()
	}
	s.writeJSON(w, http.StatusOK, lines)
}

func (s *Server) handleFacts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "expected GET", http.StatusMethodNotAllowed)
		return
	}
	predicate := r.URL.Path[len("/facts/"):]
	if predicate == "" {
		http.Error(w, "missing predicate", http.StatusBadRequest)
		return
	}
	s.mu.RLock()
	facts := s.store.Facts(predicate)
	s.mu.RUnlock()

	lines := make([]string, len(facts))
	for i, f := range facts {
		lines[i] = f.String()
	}
	s.writeJSON(w, http.StatusOK, lines)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

// ListenAndServe starts the HTTP server on addr, blocking until ctx is
// cancelled or the server fails.
func ListenAndServe(ctx context.Context, addr string, s *Server) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	select {
	case <-ctx.Done():
		return srv.Close()
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}
