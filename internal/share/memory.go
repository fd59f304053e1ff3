package share

import (
	"context"
	"sync"

	"github.com/piwi3910/PanelCut/internal/model"
)

// MemoryStore keeps shared results in process memory. Expired entries are
// dropped when they are next read or by Purge.
type MemoryStore struct {
	opts options

	mu      sync.Mutex
	entries map[string]Shared
}

// NewMemoryStore returns an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &MemoryStore{opts: o, entries: make(map[string]Shared)}
}

func (m *MemoryStore) Put(ctx context.Context, result model.OptimizationResult, projectName string) (Ticket, error) {
	if err := ctx.Err(); err != nil {
		return Ticket{}, err
	}
	entry := m.opts.stamp(result, projectName)
	id := m.opts.newID()

	m.mu.Lock()
	m.entries[id] = entry
	m.mu.Unlock()

	return Ticket{ID: id, ExpiresAt: entry.ExpiresAt}, nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (Shared, error) {
	if err := ctx.Err(); err != nil {
		return Shared{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[id]
	if !ok {
		return Shared{}, ErrNotFound
	}
	if entry.expired(m.opts.now()) {
		delete(m.entries, id)
		return Shared{}, ErrNotFound
	}
	return entry, nil
}

// Purge removes every expired entry and reports how many were removed.
func (m *MemoryStore) Purge(ctx context.Context) (int, error) {
	now := m.opts.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, entry := range m.entries {
		if entry.expired(now) {
			delete(m.entries, id)
			n++
		}
	}
	return n, ctx.Err()
}

// Len returns the number of entries held, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
