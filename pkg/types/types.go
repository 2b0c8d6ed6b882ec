package types

// Direction selects which adjacency index a traversal or neighbor lookup
// follows relative to the current node.
type Direction string

const (
	// DirectionOut follows outgoing edges (node is the source).
	DirectionOut Direction = "out"
	// DirectionIn follows incoming edges (node is the target).
	DirectionIn Direction = "in"
	// DirectionBoth follows edges in either orientation.
	DirectionBoth Direction = "both"
)

// Valid reports whether d is one of the supported directions.
func (d Direction) Valid() bool {
	switch d {
	case DirectionOut, DirectionIn, DirectionBoth:
		return true
	}
	return false
}

// Node represents a retrievable entity in the graph.
type Node struct {
	ID        string                 `json:"id"`
	Text      string                 `json:"text"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Embedding []float32              `json:"embedding,omitempty"`
}

// Clone returns a deep copy of the node. The embedding slice and metadata
// map are copied so the result shares no mutable state with the original.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		ID:   n.ID,
		Text: n.Text,
	}
	if n.Metadata != nil {
		out.Metadata = make(map[string]interface{}, len(n.Metadata))
		for k, v := range n.Metadata {
			out.Metadata[k] = v
		}
	}
	if n.Embedding != nil {
		out.Embedding = make([]float32, len(n.Embedding))
		copy(out.Embedding, n.Embedding)
	}
	return out
}

// Edge represents a directed, typed, weighted relation between two nodes.
// Edges are immutable after creation except for Weight.
type Edge struct {
	ID     string  `json:"id"`
	Source string  `json:"source"`
	Target string  `json:"target"`
	Type   string  `json:"type"`
	Weight float64 `json:"weight"`
}

// Clone returns a copy of the edge.
func (e *Edge) Clone() *Edge {
	if e == nil {
		return nil
	}
	out := *e
	return &out
}

// Visit records how a traversal reached a node: the hop distance from the
// nearest seed, the edge that discovered it, and the edge weights along the
// discovery path. Seeds have Hops 0 and an empty path.
type Visit struct {
	Hops        int       `json:"hops"`
	EdgeID      string    `json:"edge_id,omitempty"`
	PathTypes   []string  `json:"path_types,omitempty"`
	PathWeights []float64 `json:"path_weights,omitempty"`
}

// PathWeight returns the sum of edge weights along the discovery path.
func (v *Visit) PathWeight() float64 {
	var total float64
	for _, w := range v.PathWeights {
		total += w
	}
	return total
}

// ScoredNode is a single hybrid retrieval result carrying the constituent
// scores alongside the combined one for debuggability.
type ScoredNode struct {
	ID          string  `json:"id"`
	VectorScore float64 `json:"vector_score"`
	GraphScore  float64 `json:"graph_score"`
	FinalScore  float64 `json:"final_score"`
	Hops        int     `json:"hops"`
	Node        *Node   `json:"node,omitempty"`
}

// GraphStats holds aggregate counts for the store.
type GraphStats struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
}

// ContextKey is the type used for context values set by the transport layer
// and consumed by telemetry.
type ContextKey string

const (
	// ContextKeyRequestID carries the per-request identifier.
	ContextKeyRequestID ContextKey = "request_id"
	// ContextKeyRequestSource names the entry point that produced a request.
	ContextKeyRequestSource ContextKey = "request_source"
)
