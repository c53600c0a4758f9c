package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nvandessel/neuropath/internal/network"
)

// InMemoryGraphStore implements GraphStore for testing and for servers run
// without persistence.
type InMemoryGraphStore struct {
	mu       sync.RWMutex
	snap     network.Snapshot
	searches []SearchRecord
}

// NewInMemoryGraphStore creates a new in-memory store.
func NewInMemoryGraphStore() *InMemoryGraphStore {
	return &InMemoryGraphStore{
		snap: network.Snapshot{Nodes: []network.Node{}, Edges: []network.Edge{}},
	}
}

// Load returns a copy of the stored snapshot.
func (s *InMemoryGraphStore) Load(ctx context.Context) (network.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySnapshot(s.snap), nil
}

// Save replaces the stored snapshot.
func (s *InMemoryGraphStore) Save(ctx context.Context, snap network.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = copySnapshot(snap)
	return nil
}

// RecordSearch appends a search to history.
func (s *InMemoryGraphStore) RecordSearch(ctx context.Context, rec SearchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.At.IsZero() {
		rec.At = time.Now().UTC()
	}
	rec.Path = append([]string(nil), rec.Path...)
	s.searches = append(s.searches, rec)
	return nil
}

// ListSearches returns recorded searches, newest first.
func (s *InMemoryGraphStore) ListSearches(ctx context.Context, limit int) ([]SearchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]SearchRecord, len(s.searches))
	for i, rec := range s.searches {
		out[len(s.searches)-1-i] = rec
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.After(out[j].At) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close is a no-op for in-memory storage.
func (s *InMemoryGraphStore) Close() error {
	return nil
}

func copySnapshot(snap network.Snapshot) network.Snapshot {
	return network.Snapshot{
		Nodes: append([]network.Node{}, snap.Nodes...),
		Edges: append([]network.Edge{}, snap.Edges...),
	}
}
