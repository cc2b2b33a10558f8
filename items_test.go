package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemTableInsertGetRemove(t *testing.T) {
	tbl := newItemTable[*counterItem]()

	_, ok := tbl.get(1)
	assert.False(t, ok)

	tbl.insert(1, &counterItem{id: 1})
	item, ok := tbl.get(1)
	require.True(t, ok)
	assert.Equal(t, ID(1), item.id)
	assert.Equal(t, 1, tbl.len())

	assert.True(t, tbl.remove(1))
	assert.False(t, tbl.remove(1))
	assert.Equal(t, 0, tbl.len())
}

func TestItemTableSmallestTracksInsertOrderIndependence(t *testing.T) {
	tbl := newItemTable[*counterItem]()

	tbl.insert(5, &counterItem{id: 5})
	tbl.insert(1, &counterItem{id: 1})
	tbl.insert(3, &counterItem{id: 3})

	id, item, ok := tbl.smallest()
	require.True(t, ok)
	assert.Equal(t, ID(1), id)
	assert.Equal(t, ID(1), item.id)

	tbl.remove(1)
	id, _, ok = tbl.smallest()
	require.True(t, ok)
	assert.Equal(t, ID(3), id)
}

func TestItemTableSmallestEmpty(t *testing.T) {
	tbl := newItemTable[*counterItem]()
	_, _, ok := tbl.smallest()
	assert.False(t, ok)
}

func TestItemTableClear(t *testing.T) {
	tbl := newItemTable[*counterItem]()
	tbl.insert(1, &counterItem{id: 1})
	tbl.insert(2, &counterItem{id: 2})

	tbl.clear()
	assert.Equal(t, 0, tbl.len())
	_, ok := tbl.get(1)
	assert.False(t, ok)
	_, _, ok = tbl.smallest()
	assert.False(t, ok)
}
