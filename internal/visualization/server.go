package visualization

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nvandessel/neuropath/internal/logging"
	"github.com/nvandessel/neuropath/internal/metrics"
	"github.com/nvandessel/neuropath/internal/network"
	"github.com/nvandessel/neuropath/internal/ratelimit"
	"github.com/nvandessel/neuropath/internal/store"
)

// ServerOptions configures a Server. The zero value serves an unpersisted
// graph with no metrics.
type ServerOptions struct {
	// Store receives the graph after every mutating request when Persist is
	// set, and search history when RecordSearches is set.
	Store          store.GraphStore
	Persist        bool
	RecordSearches bool

	Metrics *metrics.Collector
	Logger  *slog.Logger
	Version string

	// RateLimiter throttles mutating requests per client. Nil disables it.
	RateLimiter *ratelimit.Limiter

	// ShutdownTimeout bounds graceful shutdown. Default: 5s.
	ShutdownTimeout time.Duration
}

// Server exposes a decision network over HTTP. Every request that touches
// the graph holds mu for its whole duration.
type Server struct {
	mu    sync.Mutex
	graph *network.Graph
	opts  ServerOptions

	router  chi.Router
	started time.Time

	addrMu     sync.Mutex
	httpServer *http.Server
	addr       string
}

// NewServer creates a server around g. The server takes ownership of g; the
// caller must not use it concurrently.
func NewServer(g *network.Graph, opts ServerOptions) *Server {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	s := &Server{
		graph:   g,
		opts:    opts,
		started: time.Now(),
	}
	if opts.Metrics != nil {
		opts.Metrics.SetSize(g.NodeCount(), g.EdgeCount())
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Addr returns the address the server is listening on.
// Returns empty string if the server hasn't started yet.
func (s *Server) Addr() string {
	s.addrMu.Lock()
	defer s.addrMu.Unlock()
	return s.addr
}

// ListenAndServe listens on addr ("localhost:0" when empty) and blocks until
// the context is cancelled. A clean shutdown returns nil.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = "localhost:0"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	s.addrMu.Lock()
	s.addr = ln.Addr().String()
	s.httpServer = &http.Server{Handler: s, ReadHeaderTimeout: 10 * time.Second}
	srv := s.httpServer
	s.addrMu.Unlock()

	s.opts.Logger.Info("serving decision network", "addr", ln.Addr().String())

	// Graceful shutdown when context is cancelled.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	err = srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/graph", s.handleGraph)
		r.Get("/graph.dot", s.handleGraphDOT)
		r.Get("/history", s.handleHistory)

		r.Group(func(r chi.Router) {
			r.Use(ratelimit.Middleware(s.opts.RateLimiter))
			r.Post("/neurons", s.handleAddNeurons)
			r.Post("/connections", s.handleConnect)
			r.Post("/strengthen", s.handleStrengthen)
			r.Post("/decay", s.handleDecay)
			r.Post("/path", s.handlePath)
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	neurons, synapses := s.graph.NodeCount(), s.graph.EdgeCount()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  s.opts.Version,
		"uptime":   time.Since(s.started).Seconds(),
		"neurons":  neurons,
		"synapses": synapses,
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	html, err := RenderHTML(s.snapshot())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, RenderJSON(s.snapshot()))
}

func (s *Server) handleGraphDOT(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.Write([]byte(RenderDOT(s.snapshot())))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.opts.Store == nil {
		writeJSON(w, http.StatusOK, map[string]any{"searches": []store.SearchRecord{}})
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	records, err := s.opts.Store.ListSearches(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []store.SearchRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"searches": records})
}

func (s *Server) handleAddNeurons(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Keys []string `json:"keys"`
	}
	if !decode(w, r, &req) {
		return
	}
	if len(req.Keys) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "keys required"})
		return
	}

	// The batch is all or nothing.
	for _, key := range req.Keys {
		if err := network.ValidateKey(key); err != nil {
			writeError(w, err)
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.graph.Snapshot()
	for _, key := range req.Keys {
		if err := s.graph.AddNode(key); err != nil {
			s.rollback(before)
			writeError(w, err)
			return
		}
	}
	if err := s.commit(r.Context(), before); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"neurons": s.graph.NodeCount()})
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		A      string   `json:"a"`
		B      string   `json:"b"`
		Weight *float64 `json:"weight,omitempty"`
	}
	if !decode(w, r, &req) {
		return
	}

	var opts []network.ConnectionOption
	if req.Weight != nil {
		opts = append(opts, network.WithWeight(*req.Weight))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.graph.Snapshot()
	if err := s.graph.AddConnection(req.A, req.B, opts...); err != nil {
		writeError(w, err)
		return
	}
	if err := s.commit(r.Context(), before); err != nil {
		writeError(w, err)
		return
	}
	weight, _ := s.graph.Weight(req.A, req.B)
	writeJSON(w, http.StatusCreated, map[string]any{"a": req.A, "b": req.B, "weight": weight})
}

func (s *Server) handleStrengthen(w http.ResponseWriter, r *http.Request) {
	var req struct {
		A string `json:"a"`
		B string `json:"b"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.graph.Snapshot()
	changed := s.graph.StrengthenConnection(req.A, req.B)
	resp := map[string]any{"strengthened": changed}
	if changed {
		if err := s.commit(r.Context(), before); err != nil {
			writeError(w, err)
			return
		}
		if s.opts.Metrics != nil {
			s.opts.Metrics.ObserveReinforcement()
		}
		weight, _ := s.graph.Weight(req.A, req.B)
		resp["weight"] = weight
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDecay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rate *float64 `json:"rate,omitempty"`
	}
	// An empty body means the configured rate.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.graph.Snapshot()
	if req.Rate != nil {
		if err := s.graph.DecayConnectionsBy(*req.Rate); err != nil {
			writeError(w, err)
			return
		}
	} else {
		s.graph.DecayConnections()
	}
	if err := s.commit(r.Context(), before); err != nil {
		writeError(w, err)
		return
	}
	if s.opts.Metrics != nil {
		s.opts.Metrics.ObserveDecay()
	}
	writeJSON(w, http.StatusOK, map[string]any{"edges": s.graph.Edges()})
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.graph.Snapshot()
	res, err := s.graph.Search(r.Context(), req.Start, req.End)
	if err == nil && res.Found {
		err = s.commit(r.Context(), before)
	}
	if err != nil {
		if s.opts.Metrics != nil {
			s.opts.Metrics.ObserveSearchError()
		}
		writeError(w, err)
		return
	}
	if s.opts.Metrics != nil {
		s.opts.Metrics.ObserveSearch(res)
	}
	if s.opts.Store != nil && s.opts.RecordSearches {
		if err := s.opts.Store.RecordSearch(r.Context(), store.NewSearchRecord(res, time.Now())); err != nil {
			s.opts.Logger.Warn("failed to record search", "start", req.Start, "end", req.End, "error", err)
		}
	}

	if !res.Found {
		writeJSON(w, http.StatusNotFound, map[string]any{"found": false, "start": req.Start, "end": req.End})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// snapshot copies the graph under the lock.
func (s *Server) snapshot() network.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Snapshot()
}

// commit persists the graph after a mutation and refreshes the size gauges.
// If saving fails the graph is rolled back to before, so memory never holds
// changes the store rejected. Callers hold mu.
func (s *Server) commit(ctx context.Context, before network.Snapshot) error {
	if s.opts.Persist && s.opts.Store != nil {
		if err := store.SaveGraph(ctx, s.opts.Store, s.graph); err != nil {
			s.rollback(before)
			return fmt.Errorf("persist network: %w", err)
		}
	}
	s.refreshSize()
	return nil
}

// rollback restores the graph to before. Callers hold mu.
func (s *Server) rollback(before network.Snapshot) {
	if err := s.graph.Restore(before); err != nil {
		s.opts.Logger.Error("failed to roll back network", "error", err)
	}
	s.refreshSize()
}

func (s *Server) refreshSize() {
	if s.opts.Metrics != nil {
		s.opts.Metrics.SetSize(s.graph.NodeCount(), s.graph.EdgeCount())
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return false
	}
	return true
}

// writeError maps network errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, network.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, network.ErrPreconditionFailed):
		status = http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
