package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/soundprediction/relato/pkg/types"
	"github.com/soundprediction/relato/pkg/vector"
)

// ScoringMode selects how graph relevance is derived from a traversal path.
type ScoringMode string

const (
	// ScoringWeightedPath scores a reached node as the sum of the edge
	// weights along its discovery path divided by its hop distance.
	ScoringWeightedPath ScoringMode = "weighted_path"

	// ScoringDecay scores by hop distance alone: 1.0 within one hop, 0.5 at
	// two hops, 0 beyond.
	ScoringDecay ScoringMode = "decay"
)

// Valid reports whether the mode is one of the defined constants.
func (m ScoringMode) Valid() bool {
	return m == ScoringWeightedPath || m == ScoringDecay
}

// HybridOptions configures a hybrid retrieval run.
type HybridOptions struct {
	// TopK is the number of vector hits used to seed the traversal.
	// Defaults to 10.
	TopK int

	// Limit caps the number of returned results. Defaults to TopK.
	Limit int

	// MaxDepth bounds the graph expansion around each seed. Defaults to 2.
	MaxDepth int

	// Direction selects which edges the expansion follows. Defaults to
	// DirectionBoth.
	Direction types.Direction

	// EdgeTypes restricts expansion to the listed edge types. Empty means
	// all types.
	EdgeTypes []string

	// VectorWeight and GraphWeight blend the two score components. They
	// default to 0.7 and 0.3 and are not renormalized.
	VectorWeight float64
	GraphWeight  float64

	// Scoring selects the graph relevance formula. Defaults to
	// ScoringWeightedPath.
	Scoring ScoringMode

	// Filter is passed through to the vector index.
	Filter map[string]interface{}

	// IncludeNodes attaches the full node payload to each result.
	IncludeNodes bool
}

// Merge returns a copy of o with the non-zero fields of override applied on
// top. The weights travel as a pair: setting either one overrides both, so a
// deliberate single zero is honored. A nil override returns o unchanged.
func (o HybridOptions) Merge(override *HybridOptions) HybridOptions {
	if override == nil {
		return o
	}
	merged := o
	if override.TopK != 0 {
		merged.TopK = override.TopK
	}
	if override.Limit != 0 {
		merged.Limit = override.Limit
	}
	if override.MaxDepth != 0 {
		merged.MaxDepth = override.MaxDepth
	}
	if override.Direction != "" {
		merged.Direction = override.Direction
	}
	if len(override.EdgeTypes) > 0 {
		merged.EdgeTypes = override.EdgeTypes
	}
	if override.VectorWeight != 0 || override.GraphWeight != 0 {
		merged.VectorWeight = override.VectorWeight
		merged.GraphWeight = override.GraphWeight
	}
	if override.Scoring != "" {
		merged.Scoring = override.Scoring
	}
	if override.Filter != nil {
		merged.Filter = override.Filter
	}
	if override.IncludeNodes {
		merged.IncludeNodes = true
	}
	return merged
}

func (o *HybridOptions) withDefaults() (HybridOptions, error) {
	opts := *o
	if opts.TopK == 0 {
		opts.TopK = 10
	}
	if opts.TopK < 0 {
		return opts, fmt.Errorf("hybrid search: top_k %d: %w", opts.TopK, types.ErrInvalidArgument)
	}
	if opts.Limit == 0 {
		opts.Limit = opts.TopK
	}
	if opts.Limit < 0 {
		return opts, fmt.Errorf("hybrid search: limit %d: %w", opts.Limit, types.ErrInvalidArgument)
	}
	if opts.MaxDepth == 0 {
		opts.MaxDepth = 2
	}
	if opts.MaxDepth < 0 {
		return opts, fmt.Errorf("hybrid search: max depth %d: %w", opts.MaxDepth, types.ErrInvalidArgument)
	}
	if opts.Direction == "" {
		opts.Direction = types.DirectionBoth
	}
	if !opts.Direction.Valid() {
		return opts, fmt.Errorf("hybrid search: direction %q: %w", opts.Direction, types.ErrInvalidArgument)
	}
	if opts.VectorWeight == 0 && opts.GraphWeight == 0 {
		opts.VectorWeight = 0.7
		opts.GraphWeight = 0.3
	}
	if opts.VectorWeight < 0 || opts.GraphWeight < 0 {
		return opts, fmt.Errorf("hybrid search: negative weight: %w", types.ErrInvalidArgument)
	}
	if opts.Scoring == "" {
		opts.Scoring = ScoringWeightedPath
	}
	if !opts.Scoring.Valid() {
		return opts, fmt.Errorf("hybrid search: scoring mode %q: %w", opts.Scoring, types.ErrInvalidArgument)
	}
	return opts, nil
}

// Retriever merges vector similarity with graph relevance. Vector hits seed a
// bounded BFS around each hit independently; a node reachable from several
// seeds keeps the best graph score any seed gives it.
type Retriever struct {
	graph  GraphSource
	index  vector.Index
	logger *slog.Logger
}

// NewRetriever builds a retriever over the given graph and vector index.
func NewRetriever(g GraphSource, idx vector.Index, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{graph: g, index: idx, logger: logger}
}

// Search runs the hybrid pipeline: vector search, per-seed graph expansion,
// score merge, and ranking. Index failures are returned to the caller without
// retry or fallback to graph-only results.
func (r *Retriever) Search(ctx context.Context, queryVector []float32, options HybridOptions) ([]*types.ScoredNode, error) {
	opts, err := options.withDefaults()
	if err != nil {
		return nil, err
	}
	if len(queryVector) == 0 {
		return nil, fmt.Errorf("hybrid search: empty query vector: %w", types.ErrInvalidArgument)
	}

	hits, err := r.index.Search(ctx, queryVector, opts.TopK, opts.Filter)
	if err != nil {
		return nil, fmt.Errorf("hybrid search: vector index: %w", err)
	}

	vectorScores := make(map[string]float64, len(hits))
	graphScores := make(map[string]float64, len(hits))
	hops := make(map[string]int, len(hits))
	for _, hit := range hits {
		vectorScores[hit.ID] = hit.Score
		// A seed is its own neighborhood at distance zero, whether or not
		// the graph knows it.
		graphScores[hit.ID] = 1.0
		hops[hit.ID] = 0
	}

	traversal := TraversalOptions{
		MaxDepth:  opts.MaxDepth,
		Direction: opts.Direction,
		EdgeTypes: opts.EdgeTypes,
	}
	for _, hit := range hits {
		visited, err := Traverse(r.graph, []string{hit.ID}, traversal)
		if err != nil {
			return nil, err
		}
		for id, visit := range visited {
			score := graphScore(visit, opts.Scoring)
			if prev, ok := graphScores[id]; !ok || score > prev {
				graphScores[id] = score
			}
			if prev, ok := hops[id]; !ok || visit.Hops < prev {
				hops[id] = visit.Hops
			}
		}
	}

	results := make([]*types.ScoredNode, 0, len(graphScores))
	for id, gScore := range graphScores {
		vScore := vectorScores[id]
		scored := &types.ScoredNode{
			ID:          id,
			VectorScore: vScore,
			GraphScore:  gScore,
			FinalScore:  opts.VectorWeight*vScore + opts.GraphWeight*gScore,
			Hops:        hops[id],
		}
		if opts.IncludeNodes {
			if node, err := r.graph.GetNode(id); err == nil {
				scored.Node = node
			}
		}
		results = append(results, scored)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].FinalScore != results[j].FinalScore {
			return results[i].FinalScore > results[j].FinalScore
		}
		return results[i].ID < results[j].ID
	})
	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}

	r.logger.Debug("hybrid search complete",
		"hits", len(hits),
		"candidates", len(graphScores),
		"returned", len(results))
	return results, nil
}

// graphScore converts one traversal visit into a graph relevance score.
func graphScore(visit *types.Visit, mode ScoringMode) float64 {
	if visit.Hops == 0 {
		return 1.0
	}
	switch mode {
	case ScoringDecay:
		switch {
		case visit.Hops <= 1:
			return 1.0
		case visit.Hops == 2:
			return 0.5
		default:
			return 0
		}
	default:
		return visit.PathWeight() / float64(visit.Hops)
	}
}
