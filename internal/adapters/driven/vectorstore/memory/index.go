// Package memory provides an in-memory vector index using brute-force
// cosine distance. Used by tests and ephemeral ingestion runs.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/lexsearch-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is a mutex-guarded, map-backed vector index.
type Index struct {
	mu      sync.RWMutex
	entries map[string]driven.IndexEntry
}

// NewIndex creates an empty in-memory index.
func NewIndex() *Index {
	return &Index{
		entries: make(map[string]driven.IndexEntry),
	}
}

// Upsert inserts or replaces entries by id.
func (x *Index) Upsert(_ context.Context, entries []driven.IndexEntry) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, e := range entries {
		x.entries[e.ID] = e
	}
	return nil
}

// Search returns up to k entries by ascending cosine distance, restricted
// to exact metadata matches for every filter.
func (x *Index) Search(_ context.Context, vector []float32, k int, filters map[string]string) ([]driven.Hit, error) {
	if k <= 0 {
		k = 5
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	hits := make([]driven.Hit, 0, len(x.entries))
	for _, e := range x.entries {
		if !matches(e.Metadata, filters) {
			continue
		}
		hits = append(hits, driven.Hit{
			ID:       e.ID,
			Text:     e.Text,
			Metadata: e.Metadata,
			Distance: cosineDistance(vector, e.Vector),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].ID < hits[j].ID
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// DeleteByDocument removes every entry whose doc_name metadata matches.
func (x *Index) DeleteByDocument(_ context.Context, docName string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	for id, e := range x.entries {
		if e.Metadata["doc_name"] == docName {
			delete(x.entries, id)
		}
	}
	return nil
}

// Stats returns aggregate index statistics.
func (x *Index) Stats(_ context.Context) (driven.Stats, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	stats := driven.Stats{
		TotalChunks: len(x.entries),
		Documents:   make(map[string]int),
	}
	for _, e := range x.entries {
		stats.Documents[e.Metadata["doc_name"]]++
	}
	return stats, nil
}

// Close releases resources.
func (x *Index) Close() error {
	return nil
}

// matches reports whether metadata satisfies every filter exactly.
func matches(metadata, filters map[string]string) bool {
	for key, want := range filters {
		if want == "" {
			continue
		}
		if metadata[key] != want {
			return false
		}
	}
	return true
}

// cosineDistance is 1 minus the cosine similarity of a and b.
func cosineDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
