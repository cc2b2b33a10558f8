// Package randomsbatch is a sample pool item that owns a nested pool of
// randoms.Randoms items. It demonstrates a pool item driving a second pool
// concurrently from whichever worker happens to be processing it, through
// the pool.SenderReceiver abstraction rather than a concrete *pool.Pool, so
// a pool.SenderReceiverMock can stand in during tests.
package randomsbatch

import (
	"context"
	"fmt"
	"math/big"

	pool "github.com/cainem/messagingpool"
	"github.com/cainem/messagingpool/idprovider"
	"github.com/cainem/messagingpool/samples/randoms"
)

// InnerPool is the shape of the nested randoms pool a RandomsBatch item
// drives - satisfied by both *pool.Pool[randoms.Init, randoms.Msg,
// *randoms.Randoms] and *pool.SenderReceiverMock[randoms.Init, randoms.Msg].
type InnerPool = pool.SenderReceiver[randoms.Init, randoms.Msg]

// Init is the add-item request for a RandomsBatch item.
type Init struct {
	ID                   uint64
	NumberOfRandomItems  int
	IDProvider           idprovider.Provider
	Inner                InnerPool
}

// TargetID implements pool.Identified.
func (i Init) TargetID() pool.ID { return i.ID }

// RandomsBatch owns a fixed set of ids in a shared, nested randoms pool,
// and answers requests about the aggregate of their individual results.
type RandomsBatch struct {
	id           uint64
	containedIDs []uint64
	inner        InnerPool
}

// TargetID implements pool.Identified.
func (b *RandomsBatch) TargetID() pool.ID { return b.id }

// NewItem is the pool.Item factory for RandomsBatch: it adds
// NumberOfRandomItems fresh randoms.Randoms items to the inner pool,
// recording their ids as it hands them out through its id provider.
func NewItem(init Init) (*RandomsBatch, error) {
	b := &RandomsBatch{id: init.ID, inner: init.Inner}

	inits := make([]randoms.Init, init.NumberOfRandomItems)
	for i := range inits {
		inits[i] = randoms.Init{ID: init.IDProvider.NextID()}
	}

	results, err := b.inner.AddBatch(inits)
	if err != nil {
		return nil, fmt.Errorf("randomsbatch: adding contained randoms items: %w", err)
	}
	for _, r := range results {
		if r.Err != nil {
			return nil, fmt.Errorf("randomsbatch: contained randoms item %d failed to add: %w", r.ID, r.Err)
		}
		b.containedIDs = append(b.containedIDs, r.ID)
	}
	return b, nil
}

// Msg is the item-message type for RandomsBatch.
type Msg interface {
	pool.Identified
}

// SumOfSumsRequest asks for the sum, across every contained randoms item,
// of that item's own sequence sum.
type SumOfSumsRequest struct{ ID uint64 }

// TargetID implements pool.Identified.
func (r SumOfSumsRequest) TargetID() pool.ID { return r.ID }

// SumOfSumsResponse carries the aggregate sum.
type SumOfSumsResponse struct {
	ID     uint64
	Result *big.Int
}

// TargetID implements pool.Identified.
func (r SumOfSumsResponse) TargetID() pool.ID { return r.ID }

// ProcessMessage implements pool.Item.
func (b *RandomsBatch) ProcessMessage(_ context.Context, msg Msg) Msg {
	switch msg.(type) {
	case SumOfSumsRequest:
		reqs := make([]randoms.Msg, len(b.containedIDs))
		for i, id := range b.containedIDs {
			reqs[i] = randoms.SumRequest{ID: id}
		}
		ch, err := b.inner.SendAndReceive(reqs)
		if err != nil {
			panic(fmt.Sprintf("randomsbatch: item %d: inner pool send failed: %v", b.id, err))
		}
		total := new(big.Int)
		for resp := range ch {
			sr, ok := resp.(randoms.SumResponse)
			if !ok {
				panic(fmt.Sprintf("randomsbatch: item %d: unexpected inner response type %T", b.id, resp))
			}
			total.Add(total, sr.Result)
		}
		return SumOfSumsResponse{ID: b.id, Result: total}
	default:
		panic(fmt.Sprintf("randomsbatch: unhandled message type %T", msg))
	}
}

// ShutdownPool implements pool.ShutdownPooler with a single report carrying
// the item's own id and no children. It does not shut down the inner pool
// or report on its workers; the inner pool is shut down separately by
// whoever built it.
func (b *RandomsBatch) ShutdownPool() []pool.ShutdownReport {
	return []pool.ShutdownReport{{Index: b.id}}
}

// HashRouter is an alternative RouterFunc: it spreads sparse or clustered
// ids across workers more evenly than plain id-mod-worker-count.
func HashRouter(id pool.ID, workerCount int) int {
	h := id*2654435761 ^ (id >> 16)
	return int(h % pool.ID(workerCount))
}
