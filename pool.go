// Package pool implements a fixed-size worker pool for long-lived,
// CPU-bound, stateful pool items. Each worker owns an exclusive set of
// items for its entire lifetime - no work stealing, no dynamic resizing.
// Callers communicate with items through typed request/response messages
// routed by item id; see Item, SenderReceiver and Pool.Shutdown.
package pool

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/cainem/messagingpool/internal/poolmetrics"
)

// ErrPoolClosed is returned by any send against a pool that has already
// completed Shutdown.
var ErrPoolClosed = errors.New("messagingpool: pool is shut down")

// ErrWorkerGone is returned (wrapped) when a request could not be enqueued
// because its target worker has already exited, e.g. after a panic.
var ErrWorkerGone = errors.New("messagingpool: worker inbox closed")

// Pool is a fixed-size worker pool over pool-item type P, whose add-item
// requests are of type Init and whose item messages are of type Msg.
type Pool[Init Identified, Msg Identified, P Item[Init, Msg]] struct {
	mu      sync.RWMutex
	closed  bool
	workers []*worker[Init, Msg, P]
	router  RouterFunc
	logger  *zap.Logger
	metrics *poolmetrics.Metrics
}

type poolConfig[Init Identified, Msg Identified, P Item[Init, Msg]] struct {
	router     RouterFunc
	missing    func(Msg) Msg
	hooks      Hooks
	logger     *zap.Logger
	registerer prometheus.Registerer
	poolName   string
}

// Option configures a Pool at construction time.
type Option[Init Identified, Msg Identified, P Item[Init, Msg]] func(*poolConfig[Init, Msg, P])

// WithRouter overrides the default id-mod-worker-count dispatch function.
func WithRouter[Init Identified, Msg Identified, P Item[Init, Msg]](r RouterFunc) Option[Init, Msg, P] {
	return func(c *poolConfig[Init, Msg, P]) { c.router = r }
}

// WithMissingHandler overrides the default fail-fast behavior when a
// message targets an id not present on its worker.
func WithMissingHandler[Init Identified, Msg Identified, P Item[Init, Msg]](fn func(Msg) Msg) Option[Init, Msg, P] {
	return func(c *poolConfig[Init, Msg, P]) { c.missing = fn }
}

// WithHooks installs per-worker lifecycle hooks.
func WithHooks[Init Identified, Msg Identified, P Item[Init, Msg]](h Hooks) Option[Init, Msg, P] {
	return func(c *poolConfig[Init, Msg, P]) { c.hooks = h }
}

// WithLogger installs a structured logger; nil (the default) is equivalent
// to zap.NewNop().
func WithLogger[Init Identified, Msg Identified, P Item[Init, Msg]](l *zap.Logger) Option[Init, Msg, P] {
	return func(c *poolConfig[Init, Msg, P]) { c.logger = l }
}

// WithMetrics registers the pool's Prometheus collectors against reg,
// labeled with poolName. A nil reg (the default) disables metrics.
func WithMetrics[Init Identified, Msg Identified, P Item[Init, Msg]](reg prometheus.Registerer, poolName string) Option[Init, Msg, P] {
	return func(c *poolConfig[Init, Msg, P]) {
		c.registerer = reg
		c.poolName = poolName
	}
}

// New spawns workerCount workers, each running its own message loop
// goroutine, and returns a Pool ready to accept add/remove/send/shutdown
// calls. factory constructs a new P from an Init request; it runs on the
// target worker's own goroutine.
func New[Init Identified, Msg Identified, P Item[Init, Msg]](
	workerCount int,
	factory func(Init) (P, error),
	opts ...Option[Init, Msg, P],
) (*Pool[Init, Msg, P], error) {
	if workerCount < 1 {
		return nil, fmt.Errorf("messagingpool: worker count must be >= 1, got %d", workerCount)
	}
	if factory == nil {
		return nil, errors.New("messagingpool: factory must not be nil")
	}

	cfg := poolConfig[Init, Msg, P]{router: defaultRouter, logger: zap.NewNop(), poolName: "default"}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	var metrics *poolmetrics.Metrics
	if cfg.registerer != nil {
		metrics = poolmetrics.New(cfg.registerer, cfg.poolName)
	}

	workers := make([]*worker[Init, Msg, P], workerCount)
	for i := range workers {
		w := newWorker[Init, Msg, P](i, factory, cfg.missing, cfg.hooks, cfg.logger, metrics)
		workers[i] = w
		go w.run()
		cfg.logger.Info("spawned pool worker", zap.Int("worker", i))
	}

	return &Pool[Init, Msg, P]{
		workers: workers,
		router:  cfg.router,
		logger:  cfg.logger,
		metrics: metrics,
	}, nil
}

// WorkerCount returns the fixed number of workers this pool was built with.
func (p *Pool[Init, Msg, P]) WorkerCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.workers)
}

func (p *Pool[Init, Msg, P]) routeID(e envelope[Init, Msg]) ID {
	switch e.kind {
	case kindItemMessage:
		return e.msg.TargetID()
	case kindAdd:
		return e.addInit.TargetID()
	case kindRemove:
		return e.removeID
	case kindEcho:
		return e.echoID
	default:
		panic("messagingpool: envelope kind is not routable")
	}
}

// sendRawBatch enqueues each request onto its routed worker's inbox,
// sharing one reply channel across the whole batch so responses can be
// read back in completion order. It returns the number of requests that
// were actually enqueued, which may be less than len(reqs) if a target
// worker has already exited; callers that need exactly len(reqs) responses
// must check the returned error.
func (p *Pool[Init, Msg, P]) sendRawBatch(reqs []envelope[Init, Msg]) (chan envelope[Init, Msg], int, error) {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return nil, 0, ErrPoolClosed
	}
	workers := p.workers
	n := len(workers)
	p.mu.RUnlock()

	reply := make(chan envelope[Init, Msg], len(reqs))
	sent := 0
	var firstErr error
	for _, r := range reqs {
		idx := p.router(p.routeID(r), n)
		if workers[idx].inbox.Send(senderCouplet[Init, Msg]{req: r, replyTo: reply}) {
			sent++
		} else if firstErr == nil {
			firstErr = fmt.Errorf("%w: worker %d", ErrWorkerGone, idx)
		}
	}
	return reply, sent, firstErr
}

// Shutdown gracefully stops every worker: each is sent a thread-shutdown
// request, given the chance to call ShutdownPool on its smallest-id item,
// and joined. It is idempotent - a second call returns an empty slice
// without re-contacting any worker.
func (p *Pool[Init, Msg, P]) Shutdown() []ShutdownReport {
	start := time.Now()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	workers := p.workers
	p.workers = nil
	p.closed = true
	p.mu.Unlock()

	reports := make([]ShutdownReport, 0, len(workers))
	for _, w := range workers {
		reply := make(chan envelope[Init, Msg], 1)
		sent := w.inbox.Send(senderCouplet[Init, Msg]{
			req:     envelope[Init, Msg]{kind: kindShutdown, workerIdx: w.index},
			replyTo: reply,
		})
		if !sent {
			// the worker already exited (e.g. a prior panic); it still owes
			// a report, just one with no nested children to offer.
			<-w.exited
			reports = append(reports, ShutdownReport{Index: uint64(w.index)})
			continue
		}
		select {
		case resp := <-reply:
			reports = append(reports, resp.shutdownReport)
		case <-w.exited:
			// worker panicked while handling the shutdown request itself.
			reports = append(reports, ShutdownReport{Index: uint64(w.index)})
		}
		<-w.exited
	}

	if p.logger != nil {
		p.logger.Info("pool shut down", zap.Int("workers", len(workers)))
	}
	if p.metrics != nil {
		p.metrics.ShutdownSeconds.Observe(time.Since(start).Seconds())
	}
	return reports
}

// AbortWorker sends an ungraceful thread-abort to a single worker by
// index, for tests: the worker acknowledges and exits immediately,
// leaving its item map intact rather than calling any shutdown hooks.
func (p *Pool[Init, Msg, P]) AbortWorker(index int) (int, error) {
	p.mu.RLock()
	if p.closed || index < 0 || index >= len(p.workers) {
		p.mu.RUnlock()
		return 0, fmt.Errorf("messagingpool: invalid worker index %d", index)
	}
	w := p.workers[index]
	p.mu.RUnlock()

	reply := make(chan envelope[Init, Msg], 1)
	req := envelope[Init, Msg]{kind: kindAbort, workerIdx: index}
	if !w.inbox.Send(senderCouplet[Init, Msg]{req: req, replyTo: reply}) {
		return 0, fmt.Errorf("%w: worker %d", ErrWorkerGone, index)
	}
	resp := <-reply
	<-w.exited
	return resp.workerIdx, nil
}
