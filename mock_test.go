package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockResponseOnlyPlaybackInOrder(t *testing.T) {
	mock := NewSenderReceiverMock[counterInit, counterMsg]([]counterMsg{
		incrementResponse{ID: 0, Total: 1},
		incrementResponse{ID: 1, Total: 2},
	})

	ch, err := mock.SendAndReceive([]counterMsg{
		incrementRequest{ID: 0, By: 1},
		incrementRequest{ID: 1, By: 2},
	})
	require.NoError(t, err)

	var got []counterMsg
	for resp := range ch {
		got = append(got, resp)
	}
	require.Len(t, got, 2)
	assert.Equal(t, incrementResponse{ID: 0, Total: 1}, got[0])
	assert.Equal(t, incrementResponse{ID: 1, Total: 2}, got[1])
	assert.True(t, mock.WasCalled())
	assert.True(t, mock.IsComplete())
}

func TestMockVerifiesExpectedRequests(t *testing.T) {
	mock := NewSenderReceiverMockWithExpectedRequests[counterInit, counterMsg](
		[]counterMsg{incrementRequest{ID: 0, By: 1}},
		[]counterMsg{incrementResponse{ID: 0, Total: 1}},
	)

	_, err := mock.SendAndReceive([]counterMsg{incrementRequest{ID: 0, By: 1}})
	require.NoError(t, err)
	assert.True(t, mock.IsComplete())
}

func TestMockPanicsOnRequestMismatch(t *testing.T) {
	mock := NewSenderReceiverMockWithExpectedRequests[counterInit, counterMsg](
		[]counterMsg{incrementRequest{ID: 0, By: 1}},
		[]counterMsg{incrementResponse{ID: 0, Total: 1}},
	)

	assert.Panics(t, func() {
		_, _ = mock.SendAndReceive([]counterMsg{incrementRequest{ID: 0, By: 999}})
	})
}

func TestMockPanicsOnTooManyRequests(t *testing.T) {
	mock := NewSenderReceiverMockWithExpectedRequests[counterInit, counterMsg](
		[]counterMsg{incrementRequest{ID: 0, By: 1}},
		[]counterMsg{incrementResponse{ID: 0, Total: 1}},
	)

	assert.Panics(t, func() {
		_, _ = mock.SendAndReceive([]counterMsg{
			incrementRequest{ID: 0, By: 1},
			incrementRequest{ID: 1, By: 1},
		})
	})
}

func TestMockConstructorPanicsOnLengthMismatch(t *testing.T) {
	assert.Panics(t, func() {
		NewSenderReceiverMockWithExpectedRequests[counterInit, counterMsg](
			[]counterMsg{incrementRequest{ID: 0, By: 1}},
			[]counterMsg{},
		)
	})
}

func TestMockSendAndReceiveOne(t *testing.T) {
	mock := NewSenderReceiverMock[counterInit, counterMsg]([]counterMsg{
		incrementResponse{ID: 0, Total: 7},
	})

	resp, err := mock.SendAndReceiveOne(incrementRequest{ID: 0, By: 7})
	require.NoError(t, err)
	assert.Equal(t, incrementResponse{ID: 0, Total: 7}, resp)
}

func TestMockAddBatchPlaysBackQueuedResults(t *testing.T) {
	mock := NewSenderReceiverMock[counterInit, counterMsg](nil)
	mock.WithAddResponses([]AddResult{{ID: 0}, {ID: 1}})

	results, err := mock.AddBatch([]counterInit{{ID: 0}, {ID: 1}})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.NoError(t, results[1].Err)
	assert.True(t, mock.IsComplete())
}

func TestMockAssertCompletePanicsWhenResponsesRemain(t *testing.T) {
	mock := NewSenderReceiverMock[counterInit, counterMsg]([]counterMsg{
		incrementResponse{ID: 0, Total: 1},
	})
	assert.Panics(t, func() { mock.AssertComplete() })
}
