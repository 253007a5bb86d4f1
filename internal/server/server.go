// Package server exposes a loaded document over HTTP.
//
//	GET  /healthz                          liveness
//	GET  /functions                        resolvable function identifiers
//	POST /render  {"node","frame"}         render one node at one frame
//	GET  /graph?network=/&format=svg       network structure as DOT or SVG
//	PUT  /ports   {"node","port","value"}  edit a port value
//	POST /ports/revert {"node","port"}     restore a port's default value
//	GET  /preview                          latest render after an edit
//
// Edits go through a controller, so renders always see a consistent
// snapshot. Every edit requests a preview render of the root; bursts of
// edits are coalesced into one render of the latest state.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/semaphore"

	"github.com/chazu/nodal/pkg/controller"
	"github.com/chazu/nodal/pkg/eval"
	"github.com/chazu/nodal/pkg/export"
	"github.com/chazu/nodal/pkg/function"
	"github.com/chazu/nodal/pkg/graph"
	"github.com/chazu/nodal/pkg/render"
)

// DefaultConcurrency bounds simultaneous renders when no option overrides it.
const DefaultConcurrency = 4

const shutdownTimeout = 5 * time.Second

// Functions is the function repository a server renders with.
type Functions interface {
	function.Repository
	Identifiers() []string
}

// Server serves renders and edits of one document.
type Server struct {
	ctl    *controller.Controller
	repo   Functions
	sem    *semaphore.Weighted
	frame  float64
	logger *log.Logger
	router chi.Router

	preview *render.Scheduler
	mu      sync.Mutex
	latest  *render.Result
}

// Option configures a Server.
type Option func(*Server)

// WithConcurrency bounds how many renders run at once. Further requests
// wait for a slot or their own cancellation.
func WithConcurrency(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithFrame sets the frame used when a request names none.
func WithFrame(frame float64) Option {
	return func(s *Server) { s.frame = frame }
}

// New builds a server editing lib. The logger is taken from ctx, and
// preview renders stop when ctx is cancelled.
func New(ctx context.Context, lib *graph.Library, repo Functions, opts ...Option) *Server {
	s := &Server{
		ctl:    controller.New(lib),
		repo:   repo,
		sem:    semaphore.NewWeighted(DefaultConcurrency),
		frame:  1,
		logger: log.FromContext(ctx).WithPrefix("server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.preview = render.NewScheduler(ctx, repo, "/", s.storePreview)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Get("/healthz", s.health)
	r.Get("/functions", s.functions)
	r.Post("/render", s.renderNode)
	r.Get("/graph", s.structure)
	r.Route("/ports", func(r chi.Router) {
		r.Put("/", s.setPort)
		r.Post("/revert", s.revertPort)
	})
	r.Get("/preview", s.latestPreview)
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Library returns the current document snapshot.
func (s *Server) Library() *graph.Library { return s.ctl.Library() }

// Close stops preview rendering.
func (s *Server) Close() { s.preview.Close() }

// WaitPreview blocks until no preview render is running or pending.
func (s *Server) WaitPreview() { s.preview.Wait() }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("Listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down")
	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"id", middleware.GetReqID(r.Context()),
			"elapsed", time.Since(start).Round(time.Microsecond))
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (s *Server) functions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"functions": s.repo.Identifiers()})
}

type renderRequest struct {
	Node  string   `json:"node"`
	Frame *float64 `json:"frame"`
}

type renderResponse struct {
	ID      string  `json:"id"`
	Node    string  `json:"node"`
	Frame   float64 `json:"frame"`
	Values  []any   `json:"values"`
	Error   string  `json:"error,omitempty"`
	Elapsed string  `json:"elapsed"`
}

func (s *Server) renderNode(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if req.Node == "" {
		req.Node = "/"
	}
	frame := s.frame
	if req.Frame != nil {
		frame = *req.Frame
	}

	if err := s.sem.Acquire(r.Context(), 1); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	res := render.Once(r.Context(), s.ctl.Library(), s.repo, req.Node, frame)
	s.sem.Release(1)

	resp := newRenderResponse(req.Node, res)
	status := http.StatusOK
	if res.Err != nil {
		status = renderStatus(res.Err)
		s.logger.Warn("Render failed", "id", resp.ID, "node", req.Node, "err", res.Err)
	}
	writeJSON(w, status, resp)
}

func newRenderResponse(node string, res render.Result) renderResponse {
	resp := renderResponse{
		ID:      res.ID.String(),
		Node:    node,
		Frame:   res.Frame,
		Values:  render.EncodeAll(res.Values),
		Elapsed: res.Elapsed.String(),
	}
	if res.Err != nil {
		resp.Error = res.Err.Error()
	}
	return resp
}

func renderStatus(err error) int {
	var renderErr *eval.RenderError
	switch {
	case errors.As(err, &renderErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, graph.ErrChildNotFound), errors.Is(err, graph.ErrInvalidPath):
		return http.StatusNotFound
	case errors.Is(err, eval.ErrInterrupted):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) structure(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("network")
	if path == "" {
		path = "/"
	}
	network, err := s.ctl.Node(path)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	dot := export.ToDOT(network, export.Options{Detailed: r.URL.Query().Get("detailed") == "true"})

	switch format := r.URL.Query().Get("format"); format {
	case "", "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		fmt.Fprint(w, dot)
	case "svg":
		svg, err := export.RenderSVG(r.Context(), dot)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write(svg)
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown format %q", format))
	}
}

type portRequest struct {
	Node  string `json:"node"`
	Port  string `json:"port"`
	Value string `json:"value"`
}

func (s *Server) setPort(w http.ResponseWriter, r *http.Request) {
	var req portRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	s.editPort(w, req, func() error {
		return s.ctl.SetPortValueString(req.Node, req.Port, req.Value)
	})
}

func (s *Server) revertPort(w http.ResponseWriter, r *http.Request) {
	var req portRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	s.editPort(w, req, func() error {
		return s.ctl.RevertToDefaultPortValue(req.Node, req.Port)
	})
}

// editPort applies edit, requests a preview of the new snapshot and
// reports the port's resulting value.
func (s *Server) editPort(w http.ResponseWriter, req portRequest, edit func() error) {
	if err := edit(); err != nil {
		writeError(w, editStatus(err), err)
		return
	}
	lib := s.ctl.Library()
	id := s.preview.Request(lib, s.frame)

	n, err := lib.NodeForPath(req.Node)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	p, _ := n.Input(req.Port)
	writeJSON(w, http.StatusOK, map[string]string{
		"node":    req.Node,
		"port":    req.Port,
		"value":   p.ValueString(),
		"preview": id.String(),
	})
}

func editStatus(err error) int {
	switch {
	case errors.Is(err, graph.ErrChildNotFound), errors.Is(err, graph.ErrPortNotFound), errors.Is(err, graph.ErrInvalidPath):
		return http.StatusNotFound
	case errors.Is(err, graph.ErrInvalidValue):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) storePreview(res render.Result) {
	s.mu.Lock()
	s.latest = &res
	s.mu.Unlock()
	if res.Err != nil {
		s.logger.Warn("Preview failed", "id", res.ID, "err", res.Err)
	}
}

func (s *Server) latestPreview(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	latest := s.latest
	s.mu.Unlock()
	if latest == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, newRenderResponse("/", *latest))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
