package graph

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/soundprediction/relato/pkg/types"
)

// IDMode controls who assigns node identifiers.
type IDMode string

const (
	// IDModeCaller requires every CreateNode call to supply an id.
	IDModeCaller IDMode = "caller"
	// IDModeGenerated has the store mint a UUID for every new node.
	IDModeGenerated IDMode = "generated"
)

// Options configures a Store.
type Options struct {
	// IDMode selects caller-supplied or engine-generated node ids.
	// Defaults to IDModeCaller.
	IDMode IDMode

	// SnapshotPath is the default path used by Save, Load and auto-persist.
	SnapshotPath string

	// AutoPersist triggers a snapshot write after every mutation.
	AutoPersist bool
}

// Store is an in-memory directed multigraph with adjacency indices.
type Store struct {
	mu sync.RWMutex

	nodes map[string]*types.Node
	edges map[string]*types.Edge

	// Per-node edge-id indices in insertion order. Insertion order is what
	// makes traversal tie-breaking reproducible across runs.
	outgoing map[string][]string
	incoming map[string][]string

	// Global creation order, preserved through snapshots so a loaded store
	// traverses identically to the one that saved it.
	nodeOrder []string
	edgeOrder []string

	opts Options
}

// NewStore creates an empty store.
func NewStore(opts Options) *Store {
	if opts.IDMode == "" {
		opts.IDMode = IDModeCaller
	}
	return &Store{
		nodes:    make(map[string]*types.Node),
		edges:    make(map[string]*types.Edge),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		opts:     opts,
	}
}

// NodeInput holds the fields for CreateNode. ID is required in IDModeCaller
// and must be empty in IDModeGenerated.
type NodeInput struct {
	ID        string
	Text      string
	Metadata  map[string]interface{}
	Embedding []float32
}

// NodeUpdate holds a partial update for UpdateNode. Nil fields are left
// unchanged.
type NodeUpdate struct {
	Text      *string
	Metadata  map[string]interface{}
	Embedding []float32
}

// CreateNode adds a node to the store.
func (s *Store) CreateNode(input NodeInput) (*types.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := input.ID
	switch s.opts.IDMode {
	case IDModeGenerated:
		if id != "" {
			return nil, fmt.Errorf("create node: id %q supplied in generated-id mode: %w", id, types.ErrInvalidArgument)
		}
		id = uuid.New().String()
	default:
		if id == "" {
			return nil, fmt.Errorf("create node: id is required in caller-id mode: %w", types.ErrInvalidArgument)
		}
	}

	if _, ok := s.nodes[id]; ok {
		return nil, fmt.Errorf("create node %q: %w", id, types.ErrDuplicateID)
	}

	node := (&types.Node{
		ID:        id,
		Text:      input.Text,
		Metadata:  input.Metadata,
		Embedding: input.Embedding,
	}).Clone()

	s.nodes[id] = node
	s.nodeOrder = append(s.nodeOrder, id)

	if err := s.autoPersistLocked(); err != nil {
		return nil, err
	}
	return node.Clone(), nil
}

// GetNode returns a copy of the node with the given id.
func (s *Store) GetNode(id string) (*types.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node %q: %w", id, types.ErrNotFound)
	}
	return node.Clone(), nil
}

// HasNode reports whether a node with the given id exists.
func (s *Store) HasNode(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.nodes[id]
	return ok
}

// UpdateNode applies a partial update to a node and returns the result.
func (s *Store) UpdateNode(id string, update NodeUpdate) (*types.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[id]
	if !ok {
		return nil, fmt.Errorf("update node %q: %w", id, types.ErrNotFound)
	}

	if update.Text != nil {
		node.Text = *update.Text
	}
	if update.Metadata != nil {
		node.Metadata = (&types.Node{Metadata: update.Metadata}).Clone().Metadata
	}
	if update.Embedding != nil {
		node.Embedding = append([]float32(nil), update.Embedding...)
	}

	if err := s.autoPersistLocked(); err != nil {
		return nil, err
	}
	return node.Clone(), nil
}

// DeleteNode removes a node and every edge referencing it as source or
// target, and returns the number of removed edges. A second delete of the
// same id fails with ErrNotFound.
func (s *Store) DeleteNode(id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[id]; !ok {
		return 0, fmt.Errorf("delete node %q: %w", id, types.ErrNotFound)
	}

	// Collect incident edge ids first; a self-loop appears in both indices
	// but must only be counted once.
	incident := make(map[string]struct{})
	for _, eid := range s.outgoing[id] {
		incident[eid] = struct{}{}
	}
	for _, eid := range s.incoming[id] {
		incident[eid] = struct{}{}
	}

	for eid := range incident {
		s.removeEdgeLocked(eid)
	}

	delete(s.nodes, id)
	delete(s.outgoing, id)
	delete(s.incoming, id)
	s.nodeOrder = removeFromOrder(s.nodeOrder, id)

	if err := s.autoPersistLocked(); err != nil {
		return len(incident), err
	}
	return len(incident), nil
}

// CreateEdge adds a directed edge between two existing nodes. Weight must be
// non-negative; self-loops and parallel edges are allowed.
func (s *Store) CreateEdge(source, target, edgeType string, weight float64) (*types.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if weight < 0 {
		return nil, fmt.Errorf("create edge: negative weight %v: %w", weight, types.ErrInvalidArgument)
	}
	if _, ok := s.nodes[source]; !ok {
		return nil, fmt.Errorf("create edge: source node %q: %w", source, types.ErrNotFound)
	}
	if _, ok := s.nodes[target]; !ok {
		return nil, fmt.Errorf("create edge: target node %q: %w", target, types.ErrNotFound)
	}

	edge := &types.Edge{
		ID:     uuid.New().String(),
		Source: source,
		Target: target,
		Type:   edgeType,
		Weight: weight,
	}

	s.edges[edge.ID] = edge
	s.edgeOrder = append(s.edgeOrder, edge.ID)
	s.outgoing[source] = append(s.outgoing[source], edge.ID)
	s.incoming[target] = append(s.incoming[target], edge.ID)

	if err := s.autoPersistLocked(); err != nil {
		return nil, err
	}
	return edge.Clone(), nil
}

// GetEdge returns a copy of the edge with the given id.
func (s *Store) GetEdge(id string) (*types.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	edge, ok := s.edges[id]
	if !ok {
		return nil, fmt.Errorf("edge %q: %w", id, types.ErrNotFound)
	}
	return edge.Clone(), nil
}

// UpdateEdgeWeight sets a new weight on an existing edge. Weight is the only
// mutable edge attribute.
func (s *Store) UpdateEdgeWeight(id string, weight float64) (*types.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if weight < 0 {
		return nil, fmt.Errorf("update edge %q: negative weight %v: %w", id, weight, types.ErrInvalidArgument)
	}
	edge, ok := s.edges[id]
	if !ok {
		return nil, fmt.Errorf("update edge %q: %w", id, types.ErrNotFound)
	}

	edge.Weight = weight

	if err := s.autoPersistLocked(); err != nil {
		return nil, err
	}
	return edge.Clone(), nil
}

// DeleteEdge removes a single edge.
func (s *Store) DeleteEdge(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.edges[id]; !ok {
		return fmt.Errorf("delete edge %q: %w", id, types.ErrNotFound)
	}
	s.removeEdgeLocked(id)

	return s.autoPersistLocked()
}

// Neighbors returns the edges incident to a node, in index insertion order.
// For DirectionBoth, outgoing edges come first and an edge is listed once
// even when it is a self-loop.
func (s *Store) Neighbors(id string, direction types.Direction) ([]*types.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !direction.Valid() {
		return nil, fmt.Errorf("neighbors: direction %q: %w", direction, types.ErrInvalidArgument)
	}
	if _, ok := s.nodes[id]; !ok {
		return nil, fmt.Errorf("neighbors: node %q: %w", id, types.ErrNotFound)
	}

	var result []*types.Edge
	seen := make(map[string]struct{})
	appendEdges := func(ids []string) {
		for _, eid := range ids {
			if _, dup := seen[eid]; dup {
				continue
			}
			seen[eid] = struct{}{}
			result = append(result, s.edges[eid].Clone())
		}
	}

	if direction == types.DirectionOut || direction == types.DirectionBoth {
		appendEdges(s.outgoing[id])
	}
	if direction == types.DirectionIn || direction == types.DirectionBoth {
		appendEdges(s.incoming[id])
	}
	return result, nil
}

// Nodes returns every node in creation order.
func (s *Store) Nodes() []*types.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*types.Node, 0, len(s.nodeOrder))
	for _, id := range s.nodeOrder {
		result = append(result, s.nodes[id].Clone())
	}
	return result
}

// FindNodesByMetadata returns all nodes whose metadata has the given
// key/value pair, in creation order.
func (s *Store) FindNodesByMetadata(key string, value interface{}) []*types.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*types.Node
	for _, id := range s.nodeOrder {
		node := s.nodes[id]
		if node.Metadata == nil {
			continue
		}
		if v, ok := node.Metadata[key]; ok && v == value {
			result = append(result, node.Clone())
		}
	}
	return result
}

// FindEdgesByType returns all edges with the given relation type, in
// creation order.
func (s *Store) FindEdgesByType(edgeType string) []*types.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*types.Edge
	for _, id := range s.edgeOrder {
		if edge := s.edges[id]; edge.Type == edgeType {
			result = append(result, edge.Clone())
		}
	}
	return result
}

// Stats returns node and edge counts.
func (s *Store) Stats() types.GraphStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return types.GraphStats{Nodes: len(s.nodes), Edges: len(s.edges)}
}

// Clear removes all nodes and edges.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = make(map[string]*types.Node)
	s.edges = make(map[string]*types.Edge)
	s.outgoing = make(map[string][]string)
	s.incoming = make(map[string][]string)
	s.nodeOrder = nil
	s.edgeOrder = nil

	return s.autoPersistLocked()
}

// removeEdgeLocked deletes an edge from the edge map, the order slice and
// both adjacency indices. Caller must hold the write lock.
func (s *Store) removeEdgeLocked(id string) {
	edge := s.edges[id]
	delete(s.edges, id)
	s.edgeOrder = removeFromOrder(s.edgeOrder, id)
	s.outgoing[edge.Source] = removeFromOrder(s.outgoing[edge.Source], id)
	s.incoming[edge.Target] = removeFromOrder(s.incoming[edge.Target], id)
}

func removeFromOrder(order []string, id string) []string {
	for i, v := range order {
		if v == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}
