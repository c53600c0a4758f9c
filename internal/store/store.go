// Package store persists decision networks and their path search history.
// The network package never depends on it; commands and servers load a
// snapshot, operate on a network.Graph, and save the result.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nvandessel/neuropath/internal/network"
)

// SearchRecord is one decision path search as recorded in history.
type SearchRecord struct {
	ID    string    `json:"id"`
	Start string    `json:"start"`
	End   string    `json:"end"`
	Path  []string  `json:"path,omitempty"`
	Found bool      `json:"found"`
	Cost  float64   `json:"cost"`
	At    time.Time `json:"at"`
}

// NewSearchRecord converts a search result into a history record with a fresh ID.
func NewSearchRecord(res network.SearchResult, at time.Time) SearchRecord {
	return SearchRecord{
		ID:    uuid.NewString(),
		Start: res.Start,
		End:   res.End,
		Path:  res.Path,
		Found: res.Found,
		Cost:  res.Cost,
		At:    at.UTC(),
	}
}

// GraphStore defines the interface for persisting a decision network.
type GraphStore interface {
	// Load returns the stored network. An empty store yields an empty snapshot.
	Load(ctx context.Context) (network.Snapshot, error)

	// Save replaces the stored network with the snapshot.
	Save(ctx context.Context, snap network.Snapshot) error

	// RecordSearch appends a search to history. A record without an ID is
	// assigned one.
	RecordSearch(ctx context.Context, rec SearchRecord) error

	// ListSearches returns the most recent searches, newest first.
	// A limit <= 0 returns all of them.
	ListSearches(ctx context.Context, limit int) ([]SearchRecord, error)

	Close() error
}
