package vector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/soundprediction/relato/pkg/types"
)

type memoryEntry struct {
	embedding []float32
	metadata  map[string]interface{}
}

// MemoryIndex is a thread-safe brute-force cosine similarity index. It is
// meant for embedded deployments and tests; swap in a remote Index
// implementation for large corpora.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryIndex creates an empty index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{entries: make(map[string]memoryEntry)}
}

// Upsert inserts or replaces an entry. The embedding is copied.
func (m *MemoryIndex) Upsert(ctx context.Context, id string, embedding []float32, metadata map[string]interface{}) error {
	if id == "" {
		return fmt.Errorf("vector upsert: empty id: %w", types.ErrInvalidArgument)
	}
	if len(embedding) == 0 {
		return fmt.Errorf("vector upsert %q: empty embedding: %w", id, types.ErrInvalidArgument)
	}

	entry := memoryEntry{embedding: append([]float32(nil), embedding...)}
	if metadata != nil {
		entry.metadata = make(map[string]interface{}, len(metadata))
		for k, v := range metadata {
			entry.metadata[k] = v
		}
	}

	m.mu.Lock()
	m.entries[id] = entry
	m.mu.Unlock()
	return nil
}

// Delete removes an entry if present.
func (m *MemoryIndex) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Search scans all entries and returns the topK by cosine similarity,
// descending, ties broken by ascending id. Entries whose dimensionality
// does not match the query are skipped.
func (m *MemoryIndex) Search(ctx context.Context, queryVector []float32, topK int, filter map[string]interface{}) ([]Hit, error) {
	if len(queryVector) == 0 {
		return nil, fmt.Errorf("vector search: empty query vector: %w", types.ErrInvalidArgument)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("vector search: top_k %d: %w", topK, types.ErrInvalidArgument)
	}

	m.mu.RLock()
	hits := make([]Hit, 0, len(m.entries))
	for id, entry := range m.entries {
		if len(entry.embedding) != len(queryVector) {
			continue
		}
		if !matchesFilter(entry.metadata, filter) {
			continue
		}
		hits = append(hits, Hit{ID: id, Score: CosineSimilarity(queryVector, entry.embedding)})
	}
	m.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func matchesFilter(metadata, filter map[string]interface{}) bool {
	if len(filter) == 0 {
		return true
	}
	for k, want := range filter {
		got, ok := metadata[k]
		if !ok || got != want {
			return false
		}
	}
	return true
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0
// when the lengths differ or either vector has zero magnitude.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
