package search

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/soundprediction/relato/pkg/graph"
	"github.com/soundprediction/relato/pkg/types"
	"github.com/soundprediction/relato/pkg/vector"
)

// fakeIndex returns canned hits or a canned error.
type fakeIndex struct {
	hits []vector.Hit
	err  error
}

func (f *fakeIndex) Search(ctx context.Context, queryVector []float32, topK int, filter map[string]interface{}) ([]vector.Hit, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.hits) > topK {
		return f.hits[:topK], nil
	}
	return f.hits, nil
}

// scoreStore builds A -> B (1.0) -> C (0.5).
func scoreStore(t *testing.T) *graph.Store {
	t.Helper()
	s := graph.NewStore(graph.Options{})
	for _, id := range []string{"A", "B", "C"} {
		_, err := s.CreateNode(graph.NodeInput{ID: id, Text: "node " + id})
		require.NoError(t, err)
	}
	_, err := s.CreateEdge("A", "B", "rel", 1.0)
	require.NoError(t, err)
	_, err = s.CreateEdge("B", "C", "rel", 0.5)
	require.NoError(t, err)
	return s
}

func approx(t *testing.T, want, got float64) {
	t.Helper()
	assert.InDelta(t, want, got, 1e-9)
}

func TestHybridWeightedPath(t *testing.T) {
	s := scoreStore(t)
	r := NewRetriever(s, &fakeIndex{hits: []vector.Hit{{ID: "A", Score: 0.9}}}, nil)

	results, err := r.Search(context.Background(), []float32{1, 0}, HybridOptions{
		TopK:         10,
		MaxDepth:     2,
		Direction:    types.DirectionOut,
		VectorWeight: 0.7,
		GraphWeight:  0.3,
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	// A: 0.7*0.9 + 0.3*1.0
	assert.Equal(t, "A", results[0].ID)
	approx(t, 0.93, results[0].FinalScore)
	approx(t, 1.0, results[0].GraphScore)
	assert.Equal(t, 0, results[0].Hops)

	// B: path weight 1.0 over 1 hop, no vector score.
	assert.Equal(t, "B", results[1].ID)
	approx(t, 1.0, results[1].GraphScore)
	approx(t, 0.3, results[1].FinalScore)
	assert.Equal(t, 1, results[1].Hops)

	// C: (1.0 + 0.5) / 2 hops.
	assert.Equal(t, "C", results[2].ID)
	approx(t, 0.75, results[2].GraphScore)
	approx(t, 0.225, results[2].FinalScore)
	assert.Equal(t, 2, results[2].Hops)
}

func TestHybridSeedOutsideGraph(t *testing.T) {
	s := scoreStore(t)
	// The index knows an id the graph does not.
	r := NewRetriever(s, &fakeIndex{hits: []vector.Hit{{ID: "orphan", Score: 0.8}}}, nil)

	results, err := r.Search(context.Background(), []float32{1}, HybridOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)

	// Vector hits keep the hop-zero baseline even when absent from the graph.
	assert.Equal(t, "orphan", results[0].ID)
	approx(t, 1.0, results[0].GraphScore)
	approx(t, 0.7*0.8+0.3*1.0, results[0].FinalScore)
}

func TestHybridMaxMergeAcrossSeeds(t *testing.T) {
	// Two seeds reach M over paths of different quality; M keeps the best.
	s := graph.NewStore(graph.Options{})
	for _, id := range []string{"s1", "s2", "M"} {
		_, err := s.CreateNode(graph.NodeInput{ID: id})
		require.NoError(t, err)
	}
	_, err := s.CreateEdge("s1", "M", "rel", 0.2)
	require.NoError(t, err)
	_, err = s.CreateEdge("s2", "M", "rel", 0.9)
	require.NoError(t, err)

	r := NewRetriever(s, &fakeIndex{hits: []vector.Hit{
		{ID: "s1", Score: 0.9},
		{ID: "s2", Score: 0.8},
	}}, nil)

	results, err := r.Search(context.Background(), []float32{1}, HybridOptions{
		Direction: types.DirectionOut,
	})
	require.NoError(t, err)

	var m *types.ScoredNode
	for _, res := range results {
		if res.ID == "M" {
			m = res
		}
	}
	require.NotNil(t, m)
	approx(t, 0.9, m.GraphScore)
	assert.Equal(t, 1, m.Hops)
}

func TestHybridDecayScoring(t *testing.T) {
	s := scoreStore(t)
	r := NewRetriever(s, &fakeIndex{hits: []vector.Hit{{ID: "A", Score: 0.9}}}, nil)

	results, err := r.Search(context.Background(), []float32{1}, HybridOptions{
		MaxDepth:  3,
		Direction: types.DirectionOut,
		Scoring:   ScoringDecay,
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	scores := map[string]float64{}
	for _, res := range results {
		scores[res.ID] = res.GraphScore
	}
	approx(t, 1.0, scores["A"])
	approx(t, 1.0, scores["B"])
	approx(t, 0.5, scores["C"])
}

func TestHybridDefaultDirectionBoth(t *testing.T) {
	s := scoreStore(t)
	// Seeding on the middle of the chain reaches both ends when no direction
	// is given.
	r := NewRetriever(s, &fakeIndex{hits: []vector.Hit{{ID: "B", Score: 0.9}}}, nil)

	results, err := r.Search(context.Background(), []float32{1}, HybridOptions{})
	require.NoError(t, err)
	require.Len(t, results, 3)

	ids := map[string]bool{}
	for _, res := range results {
		ids[res.ID] = true
	}
	assert.True(t, ids["A"])
	assert.True(t, ids["C"])
}

func TestHybridOptionsMerge(t *testing.T) {
	base := HybridOptions{
		TopK:      5,
		MaxDepth:  3,
		Direction: types.DirectionOut,
		Scoring:   ScoringDecay,
	}

	merged := base.Merge(nil)
	assert.Equal(t, base, merged)

	merged = base.Merge(&HybridOptions{TopK: 20, IncludeNodes: true})
	assert.Equal(t, 20, merged.TopK)
	assert.Equal(t, 3, merged.MaxDepth)
	assert.Equal(t, types.DirectionOut, merged.Direction)
	assert.Equal(t, ScoringDecay, merged.Scoring)
	assert.True(t, merged.IncludeNodes)

	merged = base.Merge(&HybridOptions{Scoring: ScoringWeightedPath, EdgeTypes: []string{"rel"}})
	assert.Equal(t, ScoringWeightedPath, merged.Scoring)
	assert.Equal(t, []string{"rel"}, merged.EdgeTypes)

	// Setting either weight carries both, so a deliberate zero survives.
	withWeights := HybridOptions{VectorWeight: 0.5, GraphWeight: 0.5}
	merged = withWeights.Merge(&HybridOptions{VectorWeight: 1.0})
	approx(t, 1.0, merged.VectorWeight)
	approx(t, 0.0, merged.GraphWeight)

	// Both zero leaves the configured pair in place.
	merged = withWeights.Merge(&HybridOptions{TopK: 3})
	approx(t, 0.5, merged.VectorWeight)
	approx(t, 0.5, merged.GraphWeight)
}

func TestHybridTieBreakByID(t *testing.T) {
	s := graph.NewStore(graph.Options{})
	for _, id := range []string{"b", "a", "c"} {
		_, err := s.CreateNode(graph.NodeInput{ID: id, Embedding: []float32{1}})
		require.NoError(t, err)
	}
	r := NewRetriever(s, &fakeIndex{hits: []vector.Hit{
		{ID: "c", Score: 0.5},
		{ID: "a", Score: 0.5},
		{ID: "b", Score: 0.5},
	}}, nil)

	results, err := r.Search(context.Background(), []float32{1}, HybridOptions{})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].ID)
	assert.Equal(t, "b", results[1].ID)
	assert.Equal(t, "c", results[2].ID)
}

func TestHybridLimit(t *testing.T) {
	s := scoreStore(t)
	r := NewRetriever(s, &fakeIndex{hits: []vector.Hit{{ID: "A", Score: 0.9}}}, nil)

	results, err := r.Search(context.Background(), []float32{1}, HybridOptions{
		Direction: types.DirectionOut,
		MaxDepth:  2,
		Limit:     2,
	})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestHybridIncludeNodes(t *testing.T) {
	s := scoreStore(t)
	r := NewRetriever(s, &fakeIndex{hits: []vector.Hit{{ID: "A", Score: 0.9}}}, nil)

	results, err := r.Search(context.Background(), []float32{1}, HybridOptions{
		Direction:    types.DirectionOut,
		IncludeNodes: true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	require.NotNil(t, results[0].Node)
	assert.Equal(t, "node A", results[0].Node.Text)
}

func TestHybridIndexErrorPropagates(t *testing.T) {
	s := scoreStore(t)
	indexErr := errors.New("backend down")
	r := NewRetriever(s, &fakeIndex{err: indexErr}, nil)

	_, err := r.Search(context.Background(), []float32{1}, HybridOptions{})
	require.ErrorIs(t, err, indexErr)
}

func TestHybridEmptyIndex(t *testing.T) {
	s := scoreStore(t)
	r := NewRetriever(s, &fakeIndex{}, nil)

	results, err := r.Search(context.Background(), []float32{1}, HybridOptions{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestHybridInvalidOptions(t *testing.T) {
	s := scoreStore(t)
	r := NewRetriever(s, &fakeIndex{}, nil)

	_, err := r.Search(context.Background(), nil, HybridOptions{})
	require.ErrorIs(t, err, types.ErrInvalidArgument)

	_, err = r.Search(context.Background(), []float32{1}, HybridOptions{TopK: -1})
	require.ErrorIs(t, err, types.ErrInvalidArgument)

	_, err = r.Search(context.Background(), []float32{1}, HybridOptions{Scoring: "fancy"})
	require.ErrorIs(t, err, types.ErrInvalidArgument)

	_, err = r.Search(context.Background(), []float32{1}, HybridOptions{VectorWeight: -0.1, GraphWeight: 0.5})
	require.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestGraphScoreModes(t *testing.T) {
	tests := []struct {
		name  string
		visit types.Visit
		mode  ScoringMode
		want  float64
	}{
		{"seed weighted", types.Visit{Hops: 0}, ScoringWeightedPath, 1.0},
		{"seed decay", types.Visit{Hops: 0}, ScoringDecay, 1.0},
		{"one hop weighted", types.Visit{Hops: 1, PathWeights: []float64{0.8}}, ScoringWeightedPath, 0.8},
		{"two hops weighted", types.Visit{Hops: 2, PathWeights: []float64{0.8, 0.4}}, ScoringWeightedPath, 0.6},
		{"one hop decay", types.Visit{Hops: 1}, ScoringDecay, 1.0},
		{"two hops decay", types.Visit{Hops: 2}, ScoringDecay, 0.5},
		{"three hops decay", types.Visit{Hops: 3}, ScoringDecay, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graphScore(&tt.visit, tt.mode)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("graphScore() = %v, want %v", got, tt.want)
			}
		})
	}
}
