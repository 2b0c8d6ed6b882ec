package relato

import (
	"context"

	"github.com/soundprediction/relato/pkg/graph"
	"github.com/soundprediction/relato/pkg/search"
	"github.com/soundprediction/relato/pkg/types"
	"github.com/soundprediction/relato/pkg/vector"
)

// This file defines focused interfaces that follow the Interface Segregation Principle.
// Consumers should depend on the smallest interface that meets their needs.

// NodeManager provides operations for managing nodes in the graph.
type NodeManager interface {
	// CreateNode adds a node to the graph and indexes its embedding.
	CreateNode(ctx context.Context, input graph.NodeInput, options *NodeOptions) (*types.Node, error)

	// GetNode retrieves a node by id.
	GetNode(ctx context.Context, nodeID string) (*types.Node, error)

	// UpdateNode applies a partial update to an existing node.
	UpdateNode(ctx context.Context, nodeID string, update graph.NodeUpdate, options *NodeOptions) (*types.Node, error)

	// DeleteNode removes a node and its incident edges, returning how many
	// edges were removed.
	DeleteNode(ctx context.Context, nodeID string) (int, error)

	// FindNodesByMetadata returns nodes whose metadata has the given
	// key/value pair.
	FindNodesByMetadata(ctx context.Context, key string, value interface{}) ([]*types.Node, error)
}

// EdgeManager provides operations for managing edges in the graph.
type EdgeManager interface {
	// CreateEdge adds a directed edge between two existing nodes.
	CreateEdge(ctx context.Context, source, target, edgeType string, weight float64) (*types.Edge, error)

	// GetEdge retrieves an edge by id.
	GetEdge(ctx context.Context, edgeID string) (*types.Edge, error)

	// UpdateEdgeWeight changes the weight of an existing edge.
	UpdateEdgeWeight(ctx context.Context, edgeID string, weight float64) (*types.Edge, error)

	// DeleteEdge removes an edge by id.
	DeleteEdge(ctx context.Context, edgeID string) error

	// Neighbors lists the edges incident to a node in the given direction.
	Neighbors(ctx context.Context, nodeID string, direction types.Direction) ([]*types.Edge, error)

	// FindEdgesByType returns edges of the given relation type.
	FindEdgesByType(ctx context.Context, edgeType string) ([]*types.Edge, error)
}

// Searcher provides the retrieval operations.
type Searcher interface {
	// Search runs the hybrid pipeline on a query vector.
	Search(ctx context.Context, queryVector []float32, options *search.HybridOptions) ([]*types.ScoredNode, error)

	// SearchText embeds the query text and runs the hybrid pipeline.
	SearchText(ctx context.Context, query string, options *search.HybridOptions) ([]*types.ScoredNode, error)

	// VectorSearch runs a pure similarity query against the index.
	VectorSearch(ctx context.Context, queryVector []float32, topK int, filter map[string]interface{}) ([]vector.Hit, error)

	// Explore runs a bounded BFS from a single node.
	Explore(ctx context.Context, startID string, options search.TraversalOptions) (*search.TraversalResult, error)
}

// Admin provides persistence and maintenance operations.
type Admin interface {
	// Save writes a snapshot to the configured path.
	Save(ctx context.Context) error

	// Load replaces the in-memory state with the configured snapshot.
	Load(ctx context.Context) error

	// LoadIfExists loads the snapshot when present and is a no-op otherwise.
	LoadIfExists(ctx context.Context) error

	// Stats returns graph counts.
	Stats(ctx context.Context) (types.GraphStats, error)

	// Clear removes all nodes, edges, and index entries.
	Clear(ctx context.Context) error

	// Close cleans up resources.
	Close(ctx context.Context) error
}

// Relato composes all focused interfaces.
type Relato interface {
	NodeManager
	EdgeManager
	Searcher
	Admin
}

// Compile-time check that Client satisfies the composed interface.
var _ Relato = (*Client)(nil)
