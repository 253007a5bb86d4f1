package render

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/chazu/nodal/pkg/eval"
	"github.com/chazu/nodal/pkg/function"
	"github.com/chazu/nodal/pkg/graph"
)

type request struct {
	id    uuid.UUID
	lib   *graph.Library
	frame float64
}

// Scheduler renders one node path of successive library snapshots. Only
// one render runs at a time; a request made while one is running replaces
// any request already waiting. It is safe for concurrent use.
type Scheduler struct {
	ctx      context.Context
	repo     function.Repository
	path     string
	onResult func(Result)
	logger   *log.Logger

	mu      sync.Mutex
	idle    *sync.Cond
	running bool
	cancel  context.CancelFunc
	pending *request
	closed  bool
}

// NewScheduler returns a scheduler rendering the node at path. onResult is
// called on the render goroutine after every completed or failed render.
// Renders inherit ctx, including its logger.
func NewScheduler(ctx context.Context, repo function.Repository, path string, onResult func(Result)) *Scheduler {
	s := &Scheduler{
		ctx:      ctx,
		repo:     repo,
		path:     path,
		onResult: onResult,
		logger:   log.FromContext(ctx).WithPrefix("render"),
	}
	s.idle = sync.NewCond(&s.mu)
	return s
}

// Request asks for lib to be rendered at frame and returns the request id.
// If a render is running, the request waits for it to finish; an earlier
// waiting request is dropped. Requests after Close are ignored.
func (s *Scheduler) Request(lib *graph.Library, frame float64) uuid.UUID {
	req := &request{id: uuid.New(), lib: lib, frame: frame}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return req.id
	}
	if s.running {
		if s.pending != nil {
			s.logger.Debug("coalesced request", "dropped", s.pending.id, "id", req.id)
		}
		s.pending = req
		return req.id
	}
	s.start(req)
	return req.id
}

// start launches req. Callers hold s.mu.
func (s *Scheduler) start(req *request) {
	ctx, cancel := context.WithCancel(s.ctx)
	s.running = true
	s.cancel = cancel
	go s.run(ctx, cancel, req)
}

func (s *Scheduler) run(ctx context.Context, cancel context.CancelFunc, req *request) {
	defer cancel()
	s.logger.Debug("render started", "id", req.id, "path", s.path, "frame", req.frame)

	start := time.Now()
	values, err := eval.New(ctx, req.lib, s.repo, req.frame).RenderPath(s.path)
	res := Result{ID: req.id, Frame: req.frame, Values: values, Err: err, Elapsed: time.Since(start)}

	if err != nil {
		s.logger.Debug("render failed", "id", req.id, "err", err, "elapsed", res.Elapsed)
	} else {
		s.logger.Debug("render finished", "id", req.id, "values", len(values), "elapsed", res.Elapsed)
	}
	if s.onResult != nil {
		s.onResult(res)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.cancel = nil
	if next := s.pending; next != nil && !s.closed {
		s.pending = nil
		s.start(next)
		return
	}
	s.idle.Broadcast()
}

// Cancel interrupts the running render, if any. Its result is still
// delivered, with an error wrapping eval.ErrInterrupted. A waiting request
// starts afterwards as usual.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// Wait blocks until no render is running or waiting.
func (s *Scheduler) Wait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.running {
		s.idle.Wait()
	}
}

// Close drops any waiting request, cancels the running render and waits
// for it to finish.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.pending = nil
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	s.Wait()
}
