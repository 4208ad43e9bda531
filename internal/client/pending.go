package client

import (
	"sync"

	"textchecker/internal/contracts"
)

type outcome struct {
	resp contracts.Response
	err  error
}

// pendingEntry is one outstanding command waiting for its response.
type pendingEntry struct {
	expected contracts.ResponseKind
	ch       chan outcome
}

// pendingTable maps command IDs to waiting callers. Every entry is resolved
// at most once: whoever removes it from the map owns the single send.
type pendingTable struct {
	mu      sync.Mutex
	entries map[uint64]*pendingEntry
	closed  error
}

func newPendingTable() *pendingTable {
	return &pendingTable{entries: make(map[uint64]*pendingEntry)}
}

// register adds an entry for id. It fails with the close cause once the table
// has been failed.
func (t *pendingTable) register(id uint64, expected contracts.ResponseKind) (<-chan outcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed != nil {
		return nil, t.closed
	}
	entry := &pendingEntry{expected: expected, ch: make(chan outcome, 1)}
	t.entries[id] = entry
	return entry.ch, nil
}

// unregister drops interest in id. A response arriving later is discarded.
func (t *pendingTable) unregister(id uint64) {
	t.mu.Lock()
	delete(t.entries, id)
	t.mu.Unlock()
}

// take removes and returns the entry for id.
func (t *pendingTable) take(id uint64) (*pendingEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.entries[id]
	if ok {
		delete(t.entries, id)
	}
	return entry, ok
}

// failAll rejects every outstanding entry with err and makes later register
// calls fail with it too.
func (t *pendingTable) failAll(err error) int {
	t.mu.Lock()
	if t.closed == nil {
		t.closed = err
	}
	entries := t.entries
	t.entries = make(map[uint64]*pendingEntry)
	t.mu.Unlock()

	for _, entry := range entries {
		entry.resolve(outcome{err: err})
	}
	return len(entries)
}

func (t *pendingTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

func (e *pendingEntry) resolve(o outcome) {
	select {
	case e.ch <- o:
	default:
	}
}
