// Package idprovider hands out item ids to pool items that create other
// pool items, such as samples/randomsbatch.
package idprovider

import (
	"sync"

	"github.com/google/uuid"
)

// Provider can peek at, or consume, the next id to hand out.
type Provider interface {
	// NextID consumes and returns the next id.
	NextID() uint64
	// PeekNextID returns the next id without consuming it.
	PeekNextID() uint64
}

// MutexProvider is a simple mutex-guarded monotonic counter.
type MutexProvider struct {
	mu      sync.Mutex
	counter uint64
}

// NewMutexProvider builds a MutexProvider whose first NextID() returns
// start.
func NewMutexProvider(start uint64) *MutexProvider {
	return &MutexProvider{counter: start}
}

// NextID implements Provider.
func (p *MutexProvider) NextID() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	v := p.counter
	p.counter++
	return v
}

// PeekNextID implements Provider.
func (p *MutexProvider) PeekNextID() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counter
}

// UUIDProvider hands out ids drawn from version-4 UUIDs truncated to 64
// bits, for callers that want ids spread across the id space rather than
// sequential.
type UUIDProvider struct {
	mu   sync.Mutex
	next uint64
}

// NewUUIDProvider builds a UUIDProvider.
func NewUUIDProvider() *UUIDProvider {
	return &UUIDProvider{next: uuidSeed()}
}

func uuidSeed() uint64 {
	id := uuid.New()
	var v uint64
	for _, b := range id[:8] {
		v = v<<8 | uint64(b)
	}
	return v
}

// NextID implements Provider.
func (p *UUIDProvider) NextID() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	v := p.next
	p.next = uuidSeed()
	return v
}

// PeekNextID implements Provider.
func (p *UUIDProvider) PeekNextID() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.next
}
