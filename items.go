package pool

import "sort"

// itemTable holds the items pinned to one worker, keyed by id for dispatch
// and kept in ascending-id order so the smallest-id item can be found in
// O(1) for the shutdown-report hook.
type itemTable[P any] struct {
	byID  map[ID]P
	order []ID
}

func newItemTable[P any]() *itemTable[P] {
	return &itemTable[P]{byID: make(map[ID]P)}
}

func (t *itemTable[P]) get(id ID) (P, bool) {
	v, ok := t.byID[id]
	return v, ok
}

func (t *itemTable[P]) insert(id ID, item P) {
	t.byID[id] = item
	idx := sort.Search(len(t.order), func(i int) bool { return t.order[i] >= id })
	t.order = append(t.order, 0)
	copy(t.order[idx+1:], t.order[idx:])
	t.order[idx] = id
}

func (t *itemTable[P]) remove(id ID) bool {
	if _, ok := t.byID[id]; !ok {
		return false
	}
	delete(t.byID, id)
	idx := sort.Search(len(t.order), func(i int) bool { return t.order[i] >= id })
	t.order = append(t.order[:idx], t.order[idx+1:]...)
	return true
}

func (t *itemTable[P]) smallest() (ID, P, bool) {
	var zero P
	if len(t.order) == 0 {
		return 0, zero, false
	}
	id := t.order[0]
	return id, t.byID[id], true
}

func (t *itemTable[P]) clear() {
	t.byID = make(map[ID]P)
	t.order = nil
}

func (t *itemTable[P]) len() int {
	return len(t.order)
}
