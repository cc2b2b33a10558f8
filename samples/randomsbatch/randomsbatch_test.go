package randomsbatch

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pool "github.com/cainem/messagingpool"
	"github.com/cainem/messagingpool/idprovider"
	"github.com/cainem/messagingpool/samples/randoms"
)

func TestNewItemWithMockInnerAddsExpectedCount(t *testing.T) {
	mock := pool.NewSenderReceiverMock[randoms.Init, randoms.Msg](nil)
	mock.WithAddResponses([]pool.AddResult{{ID: 0}, {ID: 1}, {ID: 2}})

	b, err := NewItem(Init{
		ID:                  100,
		NumberOfRandomItems: 3,
		IDProvider:          idprovider.NewMutexProvider(0),
		Inner:               mock,
	})
	require.NoError(t, err)
	assert.Len(t, b.containedIDs, 3)
	assert.Equal(t, []uint64{0, 1, 2}, b.containedIDs)
}

func TestNewItemPropagatesInnerAddFailure(t *testing.T) {
	mock := pool.NewSenderReceiverMock[randoms.Init, randoms.Msg](nil)
	mock.WithAddResponses([]pool.AddResult{{ID: 0, Err: assert.AnError}})

	_, err := NewItem(Init{
		ID:                  1,
		NumberOfRandomItems: 1,
		IDProvider:          idprovider.NewMutexProvider(0),
		Inner:               mock,
	})
	assert.Error(t, err)
}

func TestProcessMessageSumOfSumsWithMockInner(t *testing.T) {
	mock := pool.NewSenderReceiverMock[randoms.Init, randoms.Msg](nil)
	mock.WithAddResponses([]pool.AddResult{{ID: 0}, {ID: 1}})

	b, err := NewItem(Init{
		ID:                  7,
		NumberOfRandomItems: 2,
		IDProvider:          idprovider.NewMutexProvider(0),
		Inner:               mock,
	})
	require.NoError(t, err)

	sumMock := pool.NewSenderReceiverMock[randoms.Init, randoms.Msg]([]randoms.Msg{
		randoms.SumResponse{ID: 0, Result: big.NewInt(10)},
		randoms.SumResponse{ID: 1, Result: big.NewInt(20)},
	})
	b.inner = sumMock

	resp := b.ProcessMessage(context.Background(), SumOfSumsRequest{ID: 7}).(SumOfSumsResponse)
	assert.Equal(t, uint64(7), resp.ID)
	assert.Equal(t, 0, resp.Result.Cmp(big.NewInt(30)))
}

func TestProcessMessageWithRealInnerPool(t *testing.T) {
	inner, err := pool.New[randoms.Init, randoms.Msg, *randoms.Randoms](2, randoms.NewItem)
	require.NoError(t, err)
	defer inner.Shutdown()

	b, err := NewItem(Init{
		ID:                  1,
		NumberOfRandomItems: 4,
		IDProvider:          idprovider.NewMutexProvider(0),
		Inner:               inner,
	})
	require.NoError(t, err)
	require.Len(t, b.containedIDs, 4)

	resp := b.ProcessMessage(context.Background(), SumOfSumsRequest{ID: 1}).(SumOfSumsResponse)
	assert.Equal(t, uint64(1), resp.ID)
	assert.NotNil(t, resp.Result)
	assert.Equal(t, 1, resp.Result.Sign())
}

func TestShutdownPoolReportsOwnIndex(t *testing.T) {
	mock := pool.NewSenderReceiverMock[randoms.Init, randoms.Msg](nil)
	mock.WithAddResponses([]pool.AddResult{{ID: 0}})

	b, err := NewItem(Init{
		ID:                  9,
		NumberOfRandomItems: 1,
		IDProvider:          idprovider.NewMutexProvider(0),
		Inner:               mock,
	})
	require.NoError(t, err)

	reports := b.ShutdownPool()
	require.Len(t, reports, 1)
	assert.Equal(t, uint64(9), reports[0].Index)
}

func TestHashRouterStaysWithinRange(t *testing.T) {
	for _, id := range []pool.ID{0, 1, 2, 100, 1 << 40} {
		w := HashRouter(id, 8)
		assert.GreaterOrEqual(t, w, 0)
		assert.Less(t, w, 8)
	}
}
