package pool

import "context"

// ID identifies a pool item, and the target of a message addressed to one.
type ID = uint64

// Identified is implemented by anything that carries the id of the item it
// targets: item messages, add-item requests, and remove-item requests alike.
type Identified interface {
	TargetID() ID
}

// Item is a long-lived, stateful value pinned to exactly one worker for its
// entire lifetime. Init is the pool-item-specific add-item request type;
// Msg is the pool-item-specific message (request/response) type.
//
// Go has no associated types, so the request/response pairing contract is
// expressed here with type parameters instead: a concrete item type P
// satisfies Item[Init, Msg] for exactly one Init and one Msg, and
// ProcessMessage is the only place the pairing is enforced, via a type
// switch over Msg's concrete implementations.
type Item[Init Identified, Msg Identified] interface {
	Identified

	// ProcessMessage handles one message addressed to this item and
	// returns the response. It runs on the item's own worker goroutine;
	// it must not block on anything outside the item's own state.
	ProcessMessage(ctx context.Context, msg Msg) Msg
}

// ShutdownPooler is implemented by a pool item that owns a nested pool. On
// a graceful shutdown, the smallest-id item on each worker has its
// ShutdownPool hook called, and the reports it returns are nested under
// that worker's own shutdown report.
type ShutdownPooler interface {
	ShutdownPool() []ShutdownReport
}

// ShutdownReport is returned by a graceful Shutdown, one per worker, each
// possibly carrying nested reports contributed by that worker's
// smallest-id item (if it owns a nested pool). The same shape is reused for
// both levels: Index is a worker index at the outer level and an item id at
// any nested level.
type ShutdownReport struct {
	Index    uint64
	Children []ShutdownReport
}

// RouterFunc is the dispatch function: given an item id and the worker
// count, it returns the index of the worker that owns (or will own) that
// id. The default, id mod worker count, is overridable per pool via
// WithRouter. A static, per-pool-item-type override has no instance to
// dispatch through before any item exists, so it is supplied as a
// constructor option instead.
type RouterFunc func(id ID, workerCount int) int

func defaultRouter(id ID, workerCount int) int {
	return int(id % ID(workerCount))
}
