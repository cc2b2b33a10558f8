package pool

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/cainem/messagingpool/internal/poolmetrics"
	"github.com/cainem/messagingpool/internal/unboundedqueue"
)

// worker owns an exclusive, non-overlapping set of items for its entire
// lifetime and runs a single message loop on its own goroutine.
type worker[Init Identified, Msg Identified, P Item[Init, Msg]] struct {
	index   int
	inbox   *unboundedqueue.Queue[senderCouplet[Init, Msg]]
	items   *itemTable[P]
	factory func(Init) (P, error)
	missing func(Msg) Msg
	hooks   Hooks
	logger  *zap.Logger
	metrics *poolmetrics.Metrics

	exited   chan struct{}
	panicked atomic.Bool

	// pendingReply/pendingReq track the in-flight request so a panic
	// recovered in run's defer can still tombstone a response onto the
	// shared per-batch reply channel, rather than leaving the sender
	// blocked forever waiting on a response that will now never come.
	pendingReply chan envelope[Init, Msg]
	pendingReq   envelope[Init, Msg]
}

func newWorker[Init Identified, Msg Identified, P Item[Init, Msg]](
	index int,
	factory func(Init) (P, error),
	missing func(Msg) Msg,
	hooks Hooks,
	logger *zap.Logger,
	metrics *poolmetrics.Metrics,
) *worker[Init, Msg, P] {
	return &worker[Init, Msg, P]{
		index:   index,
		inbox:   unboundedqueue.New[senderCouplet[Init, Msg]](),
		items:   newItemTable[P](),
		factory: factory,
		missing: missing,
		hooks:   hooks,
		logger:  logger,
		metrics: metrics,
		exited:  make(chan struct{}),
	}
}

// run is the message loop. A panic inside item construction or message
// processing unwinds only this goroutine: it is recovered here, logged,
// and turned into a dead inbox so that subsequent sends fail fast rather
// than blocking forever: a panic kills only its own worker goroutine.
func (w *worker[Init, Msg, P]) run() {
	var state any
	if w.hooks.ThreadStart != nil {
		state = w.hooks.ThreadStart(w.index)
	}

	defer func() {
		if r := recover(); r != nil {
			w.panicked.Store(true)
			if w.logger != nil {
				w.logger.Error("pool worker panicked; terminating this worker only",
					zap.Int("worker", w.index), zap.Any("panic", r))
			}
			if w.metrics != nil {
				w.metrics.WorkerPanics.Inc()
			}
			if w.pendingReply != nil {
				w.pendingReply <- w.tombstone(w.pendingReq)
			}
		}
		remaining := w.inbox.Close()
		for _, couplet := range remaining {
			couplet.replyTo <- w.tombstone(couplet.req)
		}
		close(w.exited)
	}()

	for couplet := range w.inbox.Recv() {
		req := couplet.req
		var resp envelope[Init, Msg]

		switch req.kind {
		case kindItemMessage, kindAdd, kindRemove, kindEcho:
			w.pendingReply, w.pendingReq = couplet.replyTo, req
			switch req.kind {
			case kindItemMessage:
				resp = w.handleItemMessage(req, &state)
			case kindAdd:
				resp = w.handleAdd(req)
			case kindRemove:
				resp = w.handleRemove(req)
			case kindEcho:
				resp = envelope[Init, Msg]{
					kind:                 kindEcho,
					ok:                   true,
					echoID:               req.echoID,
					echoPayload:          req.echoPayload,
					echoRespondingWorker: w.index,
				}
			}
			w.pendingReply = nil
		case kindShutdown:
			children := w.shutdownSmallestItem()
			w.items.clear()
			resp = envelope[Init, Msg]{
				kind:           kindShutdown,
				shutdownReport: ShutdownReport{Index: uint64(w.index), Children: children},
			}
			couplet.replyTo <- resp
			return
		case kindAbort:
			resp = envelope[Init, Msg]{kind: kindAbort, workerIdx: w.index}
			couplet.replyTo <- resp
			return
		default:
			panic(fmt.Sprintf("pool worker %d: unknown envelope kind %d", w.index, req.kind))
		}

		couplet.replyTo <- resp
	}

	panic(fmt.Sprintf("pool worker %d: inbox drained without an orderly shutdown", w.index))
}

func (w *worker[Init, Msg, P]) handleItemMessage(req envelope[Init, Msg], state *any) envelope[Init, Msg] {
	id := req.msg.TargetID()
	item, ok := w.items.get(id)
	if !ok {
		if w.missing != nil {
			return envelope[Init, Msg]{kind: kindItemMessage, ok: true, msg: w.missing(req.msg)}
		}
		panic(fmt.Sprintf("pool worker %d: no item with id %d", w.index, id))
	}

	ctx := withCurrentItemID(context.Background(), id)
	if w.hooks.PreProcess != nil {
		w.hooks.PreProcess(ctx, id, state)
	}
	out := item.ProcessMessage(ctx, req.msg)
	if w.hooks.PostProcess != nil {
		w.hooks.PostProcess(ctx, id, state)
	}
	if w.metrics != nil {
		w.metrics.Dispatched.Inc()
	}
	return envelope[Init, Msg]{kind: kindItemMessage, ok: true, msg: out}
}

func (w *worker[Init, Msg, P]) handleAdd(req envelope[Init, Msg]) envelope[Init, Msg] {
	id := req.addInit.TargetID()
	if _, exists := w.items.get(id); exists {
		panic(fmt.Sprintf("pool worker %d: duplicate add for id %d", w.index, id))
	}

	item, err := w.factory(req.addInit)
	if err != nil {
		return envelope[Init, Msg]{kind: kindAdd, ok: true, addResult: AddResult{ID: id, Err: err}}
	}

	w.items.insert(id, item)
	if w.logger != nil {
		w.logger.Debug("inserted pool item", zap.Uint64("id", id), zap.Int("worker", w.index))
	}
	if w.metrics != nil {
		w.metrics.ItemsAdded.Inc()
	}
	return envelope[Init, Msg]{kind: kindAdd, ok: true, addResult: AddResult{ID: id}}
}

func (w *worker[Init, Msg, P]) handleRemove(req envelope[Init, Msg]) envelope[Init, Msg] {
	existed := w.items.remove(req.removeID)
	if existed && w.metrics != nil {
		w.metrics.ItemsRemoved.Inc()
	}
	return envelope[Init, Msg]{kind: kindRemove, ok: true, removeResult: RemoveResult{ID: req.removeID, Existed: existed}}
}

// tombstone builds the response pushed onto a request's reply channel when
// the worker's own goroutine panics before it could be handled: it
// preserves enough identity for the caller to account for it, with ok left
// false. It is used both for the in-flight request at panic time and for
// every other request still sitting in the inbox when the worker exits, so
// that a panic never leaves a caller waiting on a response that will now
// never come.
func (w *worker[Init, Msg, P]) tombstone(req envelope[Init, Msg]) envelope[Init, Msg] {
	switch req.kind {
	case kindAdd:
		return envelope[Init, Msg]{
			kind:      kindAdd,
			addResult: AddResult{ID: req.addInit.TargetID(), Err: fmt.Errorf("pool worker %d: panicked while adding item %d", w.index, req.addInit.TargetID())},
		}
	case kindRemove:
		return envelope[Init, Msg]{kind: kindRemove, removeResult: RemoveResult{ID: req.removeID}}
	case kindEcho:
		return envelope[Init, Msg]{kind: kindEcho, echoID: req.echoID, echoRespondingWorker: -1}
	default:
		return envelope[Init, Msg]{kind: kindItemMessage}
	}
}

// shutdownSmallestItem calls ShutdownPool on the smallest-id item, if one
// exists and implements ShutdownPooler, collecting its nested reports.
func (w *worker[Init, Msg, P]) shutdownSmallestItem() []ShutdownReport {
	_, item, ok := w.items.smallest()
	if !ok {
		return nil
	}
	if sp, ok := any(item).(ShutdownPooler); ok {
		return sp.ShutdownPool()
	}
	return nil
}
