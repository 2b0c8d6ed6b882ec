package search

import (
	"fmt"
	"sort"

	"github.com/soundprediction/relato/pkg/types"
)

// GraphSource is the read surface the traversal engine needs from the
// entity store.
type GraphSource interface {
	HasNode(id string) bool
	GetNode(id string) (*types.Node, error)
	Neighbors(id string, direction types.Direction) ([]*types.Edge, error)
}

// TraversalOptions bounds and filters a traversal.
type TraversalOptions struct {
	// MaxDepth is the maximum hop distance from any seed. Zero means the
	// seeds themselves and nothing else.
	MaxDepth int

	// Direction selects which adjacency index to follow. Defaults to
	// DirectionBoth.
	Direction types.Direction

	// EdgeTypes restricts expansion to edges whose type is listed. Empty
	// means all types.
	EdgeTypes []string
}

func (o *TraversalOptions) withDefaults() (TraversalOptions, error) {
	opts := *o
	if opts.Direction == "" {
		opts.Direction = types.DirectionBoth
	}
	if !opts.Direction.Valid() {
		return opts, fmt.Errorf("traverse: direction %q: %w", opts.Direction, types.ErrInvalidArgument)
	}
	if opts.MaxDepth < 0 {
		return opts, fmt.Errorf("traverse: max depth %d: %w", opts.MaxDepth, types.ErrInvalidArgument)
	}
	return opts, nil
}

func (o *TraversalOptions) matchesType(edgeType string) bool {
	if len(o.EdgeTypes) == 0 {
		return true
	}
	for _, t := range o.EdgeTypes {
		if t == edgeType {
			return true
		}
	}
	return false
}

// Traverse runs a multi-source BFS from seeds and returns every node
// reachable within MaxDepth hops, mapped to how it was reached. Seeds enter
// the visited set at hop 0 in the order supplied; unknown seed ids are
// skipped. A node visited at a smaller hop distance is never revisited at a
// larger one.
func Traverse(g GraphSource, seeds []string, options TraversalOptions) (map[string]*types.Visit, error) {
	opts, err := options.withDefaults()
	if err != nil {
		return nil, err
	}

	visited := make(map[string]*types.Visit)
	queue := make([]string, 0, len(seeds))

	for _, seed := range seeds {
		if _, ok := visited[seed]; ok {
			continue
		}
		if !g.HasNode(seed) {
			continue
		}
		visited[seed] = &types.Visit{Hops: 0}
		queue = append(queue, seed)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		visit := visited[current]

		if visit.Hops >= opts.MaxDepth {
			continue
		}

		edges, err := g.Neighbors(current, opts.Direction)
		if err != nil {
			// The node was present when enqueued; a concurrent delete is
			// the only way this fails and the traversal just moves on.
			continue
		}

		for _, edge := range edges {
			if !opts.matchesType(edge.Type) {
				continue
			}
			next := neighborOf(edge, current)
			if _, ok := visited[next]; ok {
				continue
			}
			visited[next] = &types.Visit{
				Hops:        visit.Hops + 1,
				EdgeID:      edge.ID,
				PathTypes:   append(append([]string(nil), visit.PathTypes...), edge.Type),
				PathWeights: append(append([]float64(nil), visit.PathWeights...), edge.Weight),
			}
			queue = append(queue, next)
		}
	}

	return visited, nil
}

// neighborOf returns the endpoint of edge opposite to current. For
// self-loops both endpoints coincide and the result is current itself.
func neighborOf(edge *types.Edge, current string) string {
	if edge.Source == current {
		return edge.Target
	}
	return edge.Source
}

// TraversalNode is one reached node in an exploration result.
type TraversalNode struct {
	ID          string    `json:"id"`
	Hops        int       `json:"hops"`
	EdgeID      string    `json:"edge_id,omitempty"`
	PathTypes   []string  `json:"path_types,omitempty"`
	PathWeights []float64 `json:"path_weights,omitempty"`
}

// TraversalResult is the response of a plain single-start exploration.
type TraversalResult struct {
	StartID string          `json:"start_id"`
	Depth   int             `json:"depth"`
	Nodes   []TraversalNode `json:"nodes"`
}

// Explore runs a BFS from a single start node and returns the reachable
// nodes annotated with hop distance and discovery path, ordered by hop
// distance then node id. Unlike Traverse it fails when the start node does
// not exist.
func Explore(g GraphSource, startID string, options TraversalOptions) (*TraversalResult, error) {
	if !g.HasNode(startID) {
		return nil, fmt.Errorf("explore: node %q: %w", startID, types.ErrNotFound)
	}

	visited, err := Traverse(g, []string{startID}, options)
	if err != nil {
		return nil, err
	}

	result := &TraversalResult{
		StartID: startID,
		Depth:   options.MaxDepth,
		Nodes:   make([]TraversalNode, 0, len(visited)),
	}
	for id, visit := range visited {
		result.Nodes = append(result.Nodes, TraversalNode{
			ID:          id,
			Hops:        visit.Hops,
			EdgeID:      visit.EdgeID,
			PathTypes:   visit.PathTypes,
			PathWeights: visit.PathWeights,
		})
	}
	sort.Slice(result.Nodes, func(i, j int) bool {
		if result.Nodes[i].Hops != result.Nodes[j].Hops {
			return result.Nodes[i].Hops < result.Nodes[j].Hops
		}
		return result.Nodes[i].ID < result.Nodes[j].ID
	})
	return result, nil
}
