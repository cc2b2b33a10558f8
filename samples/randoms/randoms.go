// Package randoms is a sample pool item: each item holds a deterministic
// sequence of pseudo-random numbers derived from its own id, and answers
// Mean, Sum, and (deliberately) Panic requests about that sequence.
package randoms

import (
	"context"
	"fmt"
	"math/big"

	pool "github.com/cainem/messagingpool"
)

// numbersPerItem is the fixed sequence length per item.
const numbersPerItem = 10000

// Init is the add-item request for a Randoms item: just its id. The
// sequence itself is derived deterministically from the id, so two items
// constructed with the same id always hold identical numbers.
type Init struct {
	ID uint64
}

// TargetID implements pool.Identified.
func (i Init) TargetID() pool.ID { return i.ID }

// Randoms holds a fixed, id-seeded sequence of pseudo-random numbers.
type Randoms struct {
	id      uint64
	numbers []uint64
}

// TargetID implements pool.Identified.
func (r *Randoms) TargetID() pool.ID { return r.id }

// NewItem is the pool.Item factory for Randoms.
func NewItem(init Init) (*Randoms, error) {
	return &Randoms{id: init.ID, numbers: seededSequence(init.ID, numbersPerItem)}, nil
}

// seededSequence deterministically derives numbersPerItem pseudo-random
// values from seed using splitmix64. The exact generator is not part of
// any contract other pool items depend on - only reproducibility for a
// given id matters.
func seededSequence(seed uint64, n int) []uint64 {
	state := seed
	out := make([]uint64, n)
	for i := range out {
		state += 0x9E3779B97F4A7C15
		z := state
		z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
		z = (z ^ (z >> 27)) * 0x94D049BB133111EB
		z = z ^ (z >> 31)
		out[i] = z
	}
	return out
}

func (r *Randoms) sum() *big.Int {
	sum := new(big.Int)
	for _, n := range r.numbers {
		sum.Add(sum, new(big.Int).SetUint64(n))
	}
	return sum
}

func (r *Randoms) mean() *big.Int {
	sum := r.sum()
	return sum.Div(sum, big.NewInt(int64(len(r.numbers))))
}

// Msg is the item-message type for Randoms: the closed set of concrete
// requests/responses below.
type Msg interface {
	pool.Identified
}

// MeanRequest asks for the sequence's mean.
type MeanRequest struct{ ID uint64 }

// TargetID implements pool.Identified.
func (r MeanRequest) TargetID() pool.ID { return r.ID }

// MeanResponse carries the sequence's mean.
type MeanResponse struct {
	ID     uint64
	Result *big.Int
}

// TargetID implements pool.Identified.
func (r MeanResponse) TargetID() pool.ID { return r.ID }

// SumRequest asks for the sequence's sum.
type SumRequest struct{ ID uint64 }

// TargetID implements pool.Identified.
func (r SumRequest) TargetID() pool.ID { return r.ID }

// SumResponse carries the sequence's sum.
type SumResponse struct {
	ID     uint64
	Result *big.Int
}

// TargetID implements pool.Identified.
func (r SumResponse) TargetID() pool.ID { return r.ID }

// PanicRequest deliberately crashes its handler, for exercising panic
// containment.
type PanicRequest struct{ ID uint64 }

// TargetID implements pool.Identified.
func (r PanicRequest) TargetID() pool.ID { return r.ID }

// PanicResponse is never actually produced; it exists only so PanicRequest
// has a paired response type.
type PanicResponse struct{ ID uint64 }

// TargetID implements pool.Identified.
func (r PanicResponse) TargetID() pool.ID { return r.ID }

// ProcessMessage implements pool.Item.
func (r *Randoms) ProcessMessage(_ context.Context, msg Msg) Msg {
	switch msg.(type) {
	case MeanRequest:
		return MeanResponse{ID: r.id, Result: r.mean()}
	case SumRequest:
		return SumResponse{ID: r.id, Result: r.sum()}
	case PanicRequest:
		panic(fmt.Sprintf("randoms: item %d received a panic request", r.id))
	default:
		panic(fmt.Sprintf("randoms: unhandled message type %T", msg))
	}
}

// ShutdownPool implements pool.ShutdownPooler with a single nested report
// carrying the item's own id and no children, since a Randoms item owns no
// nested pool.
func (r *Randoms) ShutdownPool() []pool.ShutdownReport {
	return []pool.ShutdownReport{{Index: r.id}}
}
