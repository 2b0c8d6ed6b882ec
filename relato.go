package relato

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/soundprediction/relato/pkg/embedder"
	"github.com/soundprediction/relato/pkg/graph"
	"github.com/soundprediction/relato/pkg/search"
	"github.com/soundprediction/relato/pkg/types"
	"github.com/soundprediction/relato/pkg/vector"
)

// Config holds configuration for the Relato client.
type Config struct {
	// SnapshotPath is where Save and Load read and write the graph when no
	// explicit path is given.
	SnapshotPath string
	// AutoPersist writes a snapshot after every mutation.
	AutoPersist bool
	// GenerateIDs mints node ids server side instead of requiring callers
	// to supply them.
	GenerateIDs bool
	// Retrieval holds the default hybrid search options.
	Retrieval search.HybridOptions
	// Breaker, when set, guards search queries against the vector index
	// with a circuit breaker. Writes bypass the breaker.
	Breaker *vector.BreakerSettings
}

// Client composes the entity store, vector index, embedder, and retrieval
// pipeline into one coherent surface. The embedder is optional; without it
// nodes carry only caller-supplied embeddings.
type Client struct {
	store     *graph.Store
	index     vector.Store
	embedder  embedder.Client
	retriever *search.Retriever
	config    *Config
	logger    *slog.Logger
}

// NewClient creates a new Relato client. index defaults to an in-memory
// brute-force index and embedderClient may be nil.
func NewClient(index vector.Store, embedderClient embedder.Client, config *Config, logger *slog.Logger) *Client {
	if config == nil {
		config = &Config{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if index == nil {
		index = vector.NewMemoryIndex()
	}

	idMode := graph.IDModeCaller
	if config.GenerateIDs {
		idMode = graph.IDModeGenerated
	}
	store := graph.NewStore(graph.Options{
		IDMode:       idMode,
		SnapshotPath: config.SnapshotPath,
		AutoPersist:  config.AutoPersist,
	})

	var searchIndex vector.Index = index
	if config.Breaker != nil {
		searchIndex = vector.NewBreakerIndex(index, *config.Breaker)
	}

	return &Client{
		store:     store,
		index:     index,
		embedder:  embedderClient,
		retriever: search.NewRetriever(store, searchIndex, logger),
		config:    config,
		logger:    logger,
	}
}

// Store exposes the underlying entity store.
func (c *Client) Store() *graph.Store {
	return c.store
}

// Index exposes the underlying vector index.
func (c *Client) Index() vector.Store {
	return c.index
}

// Embedder exposes the embedding client, which may be nil.
func (c *Client) Embedder() embedder.Client {
	return c.embedder
}

// NodeOptions controls embedding behavior on node writes.
type NodeOptions struct {
	// Regenerate re-embeds the node text through the embedding client,
	// replacing any embedding supplied on the input.
	Regenerate bool
}

// CreateNode adds a node to the graph and indexes its embedding. With
// Regenerate set, the embedding is produced from the node text.
func (c *Client) CreateNode(ctx context.Context, input graph.NodeInput, options *NodeOptions) (*types.Node, error) {
	if options != nil && options.Regenerate {
		embedding, err := c.embedText(ctx, input.Text)
		if err != nil {
			return nil, err
		}
		input.Embedding = embedding
	}

	node, err := c.store.CreateNode(input)
	if err != nil {
		return nil, err
	}

	if err := c.syncIndex(ctx, node); err != nil {
		c.logger.Warn("vector index upsert failed", "node_id", node.ID, "error", err)
	}
	return node, nil
}

// GetNode retrieves a node by id.
func (c *Client) GetNode(ctx context.Context, nodeID string) (*types.Node, error) {
	return c.store.GetNode(nodeID)
}

// UpdateNode applies a partial update. With Regenerate set, the node text
// after the update is re-embedded.
func (c *Client) UpdateNode(ctx context.Context, nodeID string, update graph.NodeUpdate, options *NodeOptions) (*types.Node, error) {
	if options != nil && options.Regenerate {
		text := ""
		if update.Text != nil {
			text = *update.Text
		} else {
			existing, err := c.store.GetNode(nodeID)
			if err != nil {
				return nil, err
			}
			text = existing.Text
		}
		embedding, err := c.embedText(ctx, text)
		if err != nil {
			return nil, err
		}
		update.Embedding = embedding
	}

	node, err := c.store.UpdateNode(nodeID, update)
	if err != nil {
		return nil, err
	}

	if err := c.syncIndex(ctx, node); err != nil {
		c.logger.Warn("vector index upsert failed", "node_id", node.ID, "error", err)
	}
	return node, nil
}

// DeleteNode removes a node, its incident edges, and its index entry. It
// returns the number of edges removed.
func (c *Client) DeleteNode(ctx context.Context, nodeID string) (int, error) {
	removed, err := c.store.DeleteNode(nodeID)
	if err != nil {
		return 0, err
	}
	if err := c.index.Delete(ctx, nodeID); err != nil {
		c.logger.Warn("vector index delete failed", "node_id", nodeID, "error", err)
	}
	return removed, nil
}

// CreateEdge adds a directed edge between two existing nodes.
func (c *Client) CreateEdge(ctx context.Context, source, target, edgeType string, weight float64) (*types.Edge, error) {
	return c.store.CreateEdge(source, target, edgeType, weight)
}

// GetEdge retrieves an edge by id.
func (c *Client) GetEdge(ctx context.Context, edgeID string) (*types.Edge, error) {
	return c.store.GetEdge(edgeID)
}

// UpdateEdgeWeight changes the weight of an existing edge.
func (c *Client) UpdateEdgeWeight(ctx context.Context, edgeID string, weight float64) (*types.Edge, error) {
	return c.store.UpdateEdgeWeight(edgeID, weight)
}

// DeleteEdge removes an edge by id.
func (c *Client) DeleteEdge(ctx context.Context, edgeID string) error {
	return c.store.DeleteEdge(edgeID)
}

// Neighbors lists the edges incident to a node in the given direction.
func (c *Client) Neighbors(ctx context.Context, nodeID string, direction types.Direction) ([]*types.Edge, error) {
	return c.store.Neighbors(nodeID, direction)
}

// FindNodesByMetadata returns nodes whose metadata has the given key/value
// pair, in creation order.
func (c *Client) FindNodesByMetadata(ctx context.Context, key string, value interface{}) ([]*types.Node, error) {
	return c.store.FindNodesByMetadata(key, value), nil
}

// FindEdgesByType returns edges of the given type in creation order.
func (c *Client) FindEdgesByType(ctx context.Context, edgeType string) ([]*types.Edge, error) {
	return c.store.FindEdgesByType(edgeType), nil
}

// VectorSearch runs a pure similarity query against the index.
func (c *Client) VectorSearch(ctx context.Context, queryVector []float32, topK int, filter map[string]interface{}) ([]vector.Hit, error) {
	return c.index.Search(ctx, queryVector, topK, filter)
}

// Search runs the hybrid retrieval pipeline. The client's configured
// retrieval options are the baseline; non-zero fields of the given options
// override them per request.
func (c *Client) Search(ctx context.Context, queryVector []float32, options *search.HybridOptions) ([]*types.ScoredNode, error) {
	return c.retriever.Search(ctx, queryVector, c.config.Retrieval.Merge(options))
}

// SearchText embeds the query text and runs the hybrid pipeline on the
// resulting vector. Requires an embedding client.
func (c *Client) SearchText(ctx context.Context, query string, options *search.HybridOptions) ([]*types.ScoredNode, error) {
	embedding, err := c.embedText(ctx, query)
	if err != nil {
		return nil, err
	}
	return c.Search(ctx, embedding, options)
}

// Explore runs a bounded BFS from a single node.
func (c *Client) Explore(ctx context.Context, startID string, options search.TraversalOptions) (*search.TraversalResult, error) {
	return search.Explore(c.store, startID, options)
}

// Save writes a snapshot to the configured path.
func (c *Client) Save(ctx context.Context) error {
	return c.store.Save(c.config.SnapshotPath)
}

// Load replaces the in-memory graph with the configured snapshot and
// reindexes every node that carries an embedding.
func (c *Client) Load(ctx context.Context) error {
	if err := c.store.Load(c.config.SnapshotPath); err != nil {
		return err
	}
	return c.reindex(ctx)
}

// LoadIfExists is Load, except a missing snapshot file leaves the current
// state untouched.
func (c *Client) LoadIfExists(ctx context.Context) error {
	loaded, err := c.store.LoadIfExists()
	if err != nil {
		return err
	}
	if !loaded {
		return nil
	}
	return c.reindex(ctx)
}

// Stats returns graph counts.
func (c *Client) Stats(ctx context.Context) (types.GraphStats, error) {
	return c.store.Stats(), nil
}

// Clear removes all nodes, edges, and index entries.
func (c *Client) Clear(ctx context.Context) error {
	nodes := c.store.Nodes()
	if err := c.store.Clear(); err != nil {
		return err
	}
	for _, node := range nodes {
		if err := c.index.Delete(ctx, node.ID); err != nil {
			c.logger.Warn("vector index delete failed", "node_id", node.ID, "error", err)
		}
	}
	return nil
}

// Close releases the embedding client. The in-memory store needs no
// teardown.
func (c *Client) Close(ctx context.Context) error {
	if c.embedder != nil {
		return c.embedder.Close()
	}
	return nil
}

func (c *Client) embedText(ctx context.Context, text string) ([]float32, error) {
	if c.embedder == nil {
		return nil, fmt.Errorf("embedding requested but no embedding client configured: %w", types.ErrInvalidArgument)
	}
	if text == "" {
		return nil, fmt.Errorf("cannot embed empty text: %w", types.ErrInvalidArgument)
	}
	embedding, err := c.embedder.EmbedSingle(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	return embedding, nil
}

func (c *Client) syncIndex(ctx context.Context, node *types.Node) error {
	if len(node.Embedding) == 0 {
		return c.index.Delete(ctx, node.ID)
	}
	return c.index.Upsert(ctx, node.ID, node.Embedding, node.Metadata)
}

func (c *Client) reindex(ctx context.Context) error {
	for _, node := range c.store.Nodes() {
		if err := c.syncIndex(ctx, node); err != nil {
			return fmt.Errorf("reindex node %q: %w", node.ID, err)
		}
	}
	return nil
}
