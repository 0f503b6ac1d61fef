package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/i474232898/statewise/internal/snapshot"
)

var _ snapshot.Store = (*MemoryStore)(nil)

// stateHistory holds the ids of one state's snapshots, oldest first.
type stateHistory struct {
	ids []int64
}

// MemoryStore is a concurrency-safe in-memory snapshot store.
type MemoryStore struct {
	mu sync.RWMutex

	nextID int64
	byID   map[int64]snapshot.Snapshot

	// key: folded state, value: history
	byState map[string]*stateHistory

	// max snapshots kept per state (<= 0 = unlimited)
	maxHistory int

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int) *MemoryStore {
	return &MemoryStore{
		byID:       make(map[int64]snapshot.Snapshot),
		byState:    make(map[string]*stateHistory),
		maxHistory: maxHistory,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a copy of s under the next id and enforces per-state retention.
func (m *MemoryStore) Create(_ context.Context, s snapshot.Snapshot) (snapshot.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	s.ID = m.nextID
	s.CreatedAt = m.now()
	s.Activities = append([]snapshot.Activity{}, s.Activities...)
	m.byID[s.ID] = s

	key := stateKey(s.State)
	history, ok := m.byState[key]
	if !ok {
		history = &stateHistory{}
		m.byState[key] = history
	}
	history.ids = append(history.ids, s.ID)

	// Enforce retention by count.
	if m.maxHistory > 0 && len(history.ids) > m.maxHistory {
		over := len(history.ids) - m.maxHistory
		for _, id := range history.ids[:over] {
			delete(m.byID, id)
		}
		history.ids = history.ids[over:]
	}

	return s, nil
}

// Get returns the snapshot with the given id.
func (m *MemoryStore) Get(_ context.Context, id int64) (snapshot.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.byID[id]
	if !ok {
		return snapshot.Snapshot{}, snapshot.ErrNotFound
	}
	return s, nil
}

// ListByState returns up to limit snapshots, newest first. An empty state lists all states.
func (m *MemoryStore) ListByState(_ context.Context, state string, limit int) ([]snapshot.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []int64
	if state == "" {
		ids = make([]int64, 0, len(m.byID))
		for id := range m.byID {
			ids = append(ids, id)
		}
	} else if history, ok := m.byState[stateKey(state)]; ok {
		ids = append(ids, history.ids...)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	result := make([]snapshot.Snapshot, 0, len(ids))
	for _, id := range ids {
		result = append(result, m.byID[id])
	}
	return result, nil
}

func stateKey(state string) string {
	return strings.ToLower(strings.TrimSpace(state))
}
