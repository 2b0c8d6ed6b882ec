package vector

import "context"

// Hit is a single vector search result. Score is a similarity where higher
// means more similar; callers of distance-based backends normalize before
// returning.
type Hit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Index is the search contract the retrieval pipeline depends on. Ids
// returned by Search map to graph node ids.
type Index interface {
	// Search returns the topK entries most similar to queryVector, ordered
	// by descending score. The optional filter restricts candidates to
	// entries whose metadata matches every given key/value pair.
	Search(ctx context.Context, queryVector []float32, topK int, filter map[string]interface{}) ([]Hit, error)
}

// Store extends Index with the write operations an in-process index needs
// to stay in sync with the entity store.
type Store interface {
	Index

	// Upsert inserts or replaces an entry.
	Upsert(ctx context.Context, id string, embedding []float32, metadata map[string]interface{}) error

	// Delete removes an entry. Removing an absent id is not an error.
	Delete(ctx context.Context, id string) error

	// Len returns the number of stored entries.
	Len() int
}
