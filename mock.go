package pool

import (
	"fmt"
	"reflect"
	"sync"
)

// SenderReceiverMock is a SenderReceiver test double: queue the responses
// it should hand back, optionally the requests it should expect, and use
// it wherever
// a pool item or test would otherwise need a live *Pool.
//
// Two modes:
//   - NewSenderReceiverMock(responses) only plays back responses, ignoring
//     whatever requests come in.
//   - NewSenderReceiverMockWithExpectedRequests(expected, responses) also
//     asserts, panicking on mismatch, that each request received equals the
//     corresponding expected one in order.
type SenderReceiverMock[Init Identified, Msg Identified] struct {
	mu sync.Mutex

	assertRequestsEqual bool
	wasCalled           bool
	expectedRequests    []Msg
	returnedResponses   []Msg
	addResponses        []AddResult
}

// NewSenderReceiverMock builds a response-only mock.
func NewSenderReceiverMock[Init Identified, Msg Identified](responses []Msg) *SenderReceiverMock[Init, Msg] {
	return &SenderReceiverMock[Init, Msg]{returnedResponses: responses}
}

// NewSenderReceiverMockWithExpectedRequests builds a mock that also
// verifies incoming requests against expected, in order. len(expected)
// must equal len(responses).
func NewSenderReceiverMockWithExpectedRequests[Init Identified, Msg Identified](expected, responses []Msg) *SenderReceiverMock[Init, Msg] {
	if len(expected) != len(responses) {
		panic("messagingpool: number of expected requests does not match number of responses")
	}
	return &SenderReceiverMock[Init, Msg]{
		assertRequestsEqual: true,
		expectedRequests:    expected,
		returnedResponses:   responses,
	}
}

// SendAndReceive implements SenderReceiver.
func (m *SenderReceiverMock[Init, Msg]) SendAndReceive(msgs []Msg) (<-chan Msg, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wasCalled = true

	n := len(msgs)
	if m.assertRequestsEqual {
		if len(m.expectedRequests) < n {
			panic(fmt.Sprintf("messagingpool: count of expected [%d] less than actual requests [%d]", len(m.expectedRequests), n))
		}
		for i := 0; i < n; i++ {
			if !reflect.DeepEqual(m.expectedRequests[i], msgs[i]) {
				panic(fmt.Sprintf("messagingpool: expected and actual requests differ: expected %#v, got %#v", m.expectedRequests[i], msgs[i]))
			}
		}
		m.expectedRequests = m.expectedRequests[n:]
	}

	if len(m.returnedResponses) < n {
		panic(fmt.Sprintf("messagingpool: not enough queued responses: wanted %d, have %d", n, len(m.returnedResponses)))
	}
	out := make(chan Msg, n)
	for i := 0; i < n; i++ {
		out <- m.returnedResponses[i]
	}
	m.returnedResponses = m.returnedResponses[n:]
	close(out)
	return out, nil
}

// SendAndReceiveOne implements SenderReceiver.
func (m *SenderReceiverMock[Init, Msg]) SendAndReceiveOne(msg Msg) (Msg, error) {
	ch, err := m.SendAndReceive([]Msg{msg})
	if err != nil {
		var zero Msg
		return zero, err
	}
	resp, ok := <-ch
	if !ok {
		panic("messagingpool: mock produced no response")
	}
	if _, ok := <-ch; ok {
		panic("messagingpool: mock produced more than one response")
	}
	return resp, nil
}

// AddBatch implements SenderReceiver, consuming queued AddResults in order.
func (m *SenderReceiverMock[Init, Msg]) AddBatch(inits []Init) ([]AddResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wasCalled = true

	n := len(inits)
	if len(m.addResponses) < n {
		panic(fmt.Sprintf("messagingpool: not enough queued add responses: wanted %d, have %d", n, len(m.addResponses)))
	}
	out := append([]AddResult(nil), m.addResponses[:n]...)
	m.addResponses = m.addResponses[n:]
	return out, nil
}

// WithAddResponses queues the AddResults AddBatch/Add will hand back, in
// order, and returns the mock for chaining at construction time.
func (m *SenderReceiverMock[Init, Msg]) WithAddResponses(responses []AddResult) *SenderReceiverMock[Init, Msg] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addResponses = responses
	return m
}

// WasCalled reports whether any send method has been invoked.
func (m *SenderReceiverMock[Init, Msg]) WasCalled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wasCalled
}

// IsComplete reports whether every queued response has been consumed.
func (m *SenderReceiverMock[Init, Msg]) IsComplete() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.returnedResponses) == 0 && len(m.addResponses) == 0
}

// AssertComplete panics, naming the number of unused responses, if the
// mock was not fully drained.
func (m *SenderReceiverMock[Init, Msg]) AssertComplete() {
	m.mu.Lock()
	defer m.mu.Unlock()
	remaining := len(m.returnedResponses) + len(m.addResponses)
	if remaining != 0 {
		panic(fmt.Sprintf("messagingpool: mock has %d unused queued responses", remaining))
	}
}
