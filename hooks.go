package pool

import "context"

// Hooks are optional lifecycle callbacks a Pool invokes around item-message
// processing: thread start, and pre/post message hooks. Each is a no-op
// unless supplied via WithHooks.
type Hooks struct {
	// ThreadStart runs once per worker before its message loop starts,
	// returning arbitrary ancillary state (e.g. a per-worker diagnostics
	// handle) threaded into PreProcess/PostProcess as a *any.
	ThreadStart func(workerIndex int) any

	// PreProcess runs immediately before an item's ProcessMessage, with
	// the context carrying CurrentItemID.
	PreProcess func(ctx context.Context, itemID ID, state *any)

	// PostProcess runs immediately after an item's ProcessMessage.
	PostProcess func(ctx context.Context, itemID ID, state *any)
}
