package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps best scores and runs in memory. Safe for concurrent use.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]int
	runs   []Run
	closed bool
}

var (
	_ Backend     = (*MemoryStore)(nil)
	_ RunRecorder = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]int)}
}

// Get returns the value stored under key.
func (m *MemoryStore) Get(_ context.Context, key string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, false, ErrClosed
	}
	v, ok := m.values[key]
	return v, ok, nil
}

// Set stores value under key unless a larger value is already stored.
func (m *MemoryStore) Set(_ context.Context, key string, value int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if cur, ok := m.values[key]; !ok || value > cur {
		m.values[key] = value
	}
	return nil
}

// RecordRun appends a run.
func (m *MemoryStore) RecordRun(_ context.Context, run Run) (Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return run, ErrClosed
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	m.runs = append(m.runs, run)
	return run, nil
}

// TopRuns returns the best runs, ties in recording order.
func (m *MemoryStore) TopRuns(_ context.Context, limit int) ([]Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 10
	}
	out := make([]Run, len(m.runs))
	copy(out, m.runs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// RecentRuns returns the newest runs first.
func (m *MemoryStore) RecentRuns(_ context.Context, limit int) ([]Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 20
	}
	out := make([]Run, 0, limit)
	for i := len(m.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.runs[i])
	}
	return out, nil
}

// Close marks the store closed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
