package main

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pool "github.com/cainem/messagingpool"
	"github.com/cainem/messagingpool/internal/tracewriters"
	"github.com/cainem/messagingpool/samples/randoms"
)

type memWriteCloser struct{ buf *bytes.Buffer }

func (m *memWriteCloser) Write(p []byte) (int, error) { return m.buf.Write(p) }
func (m *memWriteCloser) Close() error                { return nil }

// TestTracingHooksWriteStartAndEndLinesForProcessedItem exercises the
// tracewriters.Cache wiring into PreProcess/PostProcess end to end: sending
// one item message through a pool built with tracingHooks should leave a
// start and an end line behind for that item's id.
func TestTracingHooksWriteStartAndEndLinesForProcessedItem(t *testing.T) {
	buf := &bytes.Buffer{}
	traces := tracewriters.New(time.Minute, func(id uint64) (io.WriteCloser, error) {
		return &memWriteCloser{buf: buf}, nil
	})
	defer traces.Close()

	p, err := pool.New[randoms.Init, randoms.Msg, *randoms.Randoms](1, randoms.NewItem,
		pool.WithHooks[randoms.Init, randoms.Msg, *randoms.Randoms](tracingHooks(traces)),
	)
	require.NoError(t, err)
	defer p.Shutdown()

	_, err = p.Add(randoms.Init{ID: 7})
	require.NoError(t, err)

	_, err = p.SendAndReceiveOne(randoms.SumRequest{ID: 7})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "start item 7")
	assert.Contains(t, out, "end item 7")
}

// TestTracingHooksSkipMessagesOutsideItemProcessing confirms the hooks are
// no-ops when CurrentItemID isn't set, rather than writing garbage.
func TestTracingHooksSkipMessagesOutsideItemProcessing(t *testing.T) {
	buf := &bytes.Buffer{}
	traces := tracewriters.New(time.Minute, func(id uint64) (io.WriteCloser, error) {
		return &memWriteCloser{buf: buf}, nil
	})
	defer traces.Close()

	hooks := tracingHooks(traces)
	hooks.PreProcess(context.Background(), 0, nil)
	hooks.PostProcess(context.Background(), 0, nil)

	assert.Empty(t, buf.String())
}
