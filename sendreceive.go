package pool

import "fmt"

// SenderReceiver is the abstraction a pool item uses to drive a nested
// pool (or a mock standing in for one) without depending on *Pool
// concretely, so a SenderReceiverMock can substitute for a real pool
// inside tests.
type SenderReceiver[Init Identified, Msg Identified] interface {
	// SendAndReceive enqueues msgs, routed independently, and returns a
	// channel yielding their responses in completion order, closed once
	// every enqueued request has been accounted for. It yields one response
	// per successfully enqueued request, except that a request whose worker
	// panicked before answering it is left out; a non-nil error reports
	// that at least one request could not be enqueued, naming the first
	// worker that refused one.
	SendAndReceive(msgs []Msg) (<-chan Msg, error)

	// SendAndReceiveOne is a convenience wrapper for exactly one request;
	// it panics if more than one response comes back for it.
	SendAndReceiveOne(msg Msg) (Msg, error)

	// AddBatch adds a batch of new items, routed independently by each
	// Init's own target id.
	AddBatch(inits []Init) ([]AddResult, error)
}

// SendAndReceive implements SenderReceiver.
func (p *Pool[Init, Msg, P]) SendAndReceive(msgs []Msg) (<-chan Msg, error) {
	envs := make([]envelope[Init, Msg], len(msgs))
	for i, m := range msgs {
		envs[i] = envelope[Init, Msg]{kind: kindItemMessage, msg: m}
	}
	replies, sent, err := p.sendRawBatch(envs)
	if sent == 0 && err != nil {
		return nil, err
	}

	out := make(chan Msg, sent)
	go func() {
		defer close(out)
		for i := 0; i < sent; i++ {
			e := <-replies
			if !e.ok {
				// the target worker panicked while handling this request;
				// it is dropped from the sequence rather than delivered.
				continue
			}
			out <- e.msg
		}
	}()
	return out, err
}

// SendAndReceiveOne implements SenderReceiver.
func (p *Pool[Init, Msg, P]) SendAndReceiveOne(msg Msg) (Msg, error) {
	ch, err := p.SendAndReceive([]Msg{msg})
	if err != nil {
		var zero Msg
		return zero, err
	}
	resp, ok := <-ch
	if !ok {
		var zero Msg
		return zero, fmt.Errorf("messagingpool: no response received for id %d", msg.TargetID())
	}
	if _, ok := <-ch; ok {
		panic("messagingpool: more than one response received for a single request")
	}
	return resp, nil
}

// AddBatch implements SenderReceiver.
func (p *Pool[Init, Msg, P]) AddBatch(inits []Init) ([]AddResult, error) {
	envs := make([]envelope[Init, Msg], len(inits))
	for i, in := range inits {
		envs[i] = envelope[Init, Msg]{kind: kindAdd, addInit: in}
	}
	replies, sent, err := p.sendRawBatch(envs)
	results := make([]AddResult, 0, sent)
	for i := 0; i < sent; i++ {
		results = append(results, (<-replies).addResult)
	}
	return results, err
}

// Add adds a single item.
func (p *Pool[Init, Msg, P]) Add(init Init) (AddResult, error) {
	results, err := p.AddBatch([]Init{init})
	if len(results) == 0 {
		return AddResult{}, err
	}
	return results[0], err
}

// RemoveBatch removes a batch of items, routed independently by id.
func (p *Pool[Init, Msg, P]) RemoveBatch(ids []ID) ([]RemoveResult, error) {
	envs := make([]envelope[Init, Msg], len(ids))
	for i, id := range ids {
		envs[i] = envelope[Init, Msg]{kind: kindRemove, removeID: id}
	}
	replies, sent, err := p.sendRawBatch(envs)
	results := make([]RemoveResult, 0, sent)
	for i := 0; i < sent; i++ {
		results = append(results, (<-replies).removeResult)
	}
	return results, err
}

// Remove removes a single item.
func (p *Pool[Init, Msg, P]) Remove(id ID) (RemoveResult, error) {
	results, err := p.RemoveBatch([]ID{id})
	if len(results) == 0 {
		return RemoveResult{}, err
	}
	return results[0], err
}

// EchoBatch routes each request by its own id, exactly like an item
// message, and answers with the worker that actually handled it.
func (p *Pool[Init, Msg, P]) EchoBatch(reqs []EchoRequest) ([]EchoResponse, error) {
	envs := make([]envelope[Init, Msg], len(reqs))
	for i, r := range reqs {
		envs[i] = envelope[Init, Msg]{kind: kindEcho, echoID: r.ID, echoPayload: r.Payload}
	}
	replies, sent, err := p.sendRawBatch(envs)
	results := make([]EchoResponse, 0, sent)
	for i := 0; i < sent; i++ {
		e := <-replies
		results = append(results, EchoResponse{ID: e.echoID, Payload: e.echoPayload, RespondingWorker: e.echoRespondingWorker})
	}
	return results, err
}

// Echo sends a single echo request.
func (p *Pool[Init, Msg, P]) Echo(req EchoRequest) (EchoResponse, error) {
	results, err := p.EchoBatch([]EchoRequest{req})
	if len(results) == 0 {
		return EchoResponse{}, err
	}
	return results[0], err
}
