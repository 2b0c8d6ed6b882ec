package dto

import (
	"errors"
	"strings"

	"github.com/soundprediction/relato/pkg/types"
)

// MaxTextLength bounds node text accepted over the API.
const MaxTextLength = 65536

// ErrTextTooLong is returned when node text exceeds MaxTextLength.
var ErrTextTooLong = errors.New("text exceeds maximum length")

// CreateNodeRequest is the body of POST /api/v1/nodes
type CreateNodeRequest struct {
	ID        string                 `json:"id"`
	Text      string                 `json:"text"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Embedding []float32              `json:"embedding,omitempty"`

	// Regenerate produces the embedding from text server side.
	Regenerate bool `json:"regenerate,omitempty"`
}

// Validate performs validation on CreateNodeRequest
func (r *CreateNodeRequest) Validate() error {
	if len(r.Text) > MaxTextLength {
		return ErrTextTooLong
	}
	return nil
}

// UpdateNodeRequest is the body of PATCH /api/v1/nodes/:id. Absent fields
// are left unchanged.
type UpdateNodeRequest struct {
	Text       *string                `json:"text,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Embedding  []float32              `json:"embedding,omitempty"`
	Regenerate bool                   `json:"regenerate,omitempty"`
}

// Validate performs validation on UpdateNodeRequest
func (r *UpdateNodeRequest) Validate() error {
	if r.Text != nil && len(*r.Text) > MaxTextLength {
		return ErrTextTooLong
	}
	return nil
}

// NodeResponse is the wire form of a node.
type NodeResponse struct {
	ID        string                 `json:"id"`
	Text      string                 `json:"text"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Embedding []float32              `json:"embedding,omitempty"`
}

// NodeFromType converts a node to its wire form.
func NodeFromType(n *types.Node) NodeResponse {
	return NodeResponse{
		ID:        n.ID,
		Text:      n.Text,
		Metadata:  n.Metadata,
		Embedding: n.Embedding,
	}
}

// DeleteNodeResponse reports the cascade of a node deletion.
type DeleteNodeResponse struct {
	ID                string `json:"id"`
	RemovedEdgesCount int    `json:"removed_edges_count"`
}

// CreateEdgeRequest is the body of POST /api/v1/edges
type CreateEdgeRequest struct {
	Source string `json:"source" binding:"required"`
	Target string `json:"target" binding:"required"`
	Type   string `json:"type" binding:"required"`

	// Weight defaults to 1.0 when omitted.
	Weight *float64 `json:"weight,omitempty"`
}

// Validate performs validation on CreateEdgeRequest
func (r *CreateEdgeRequest) Validate() error {
	if strings.TrimSpace(r.Source) == "" {
		return errors.New("source cannot be empty")
	}
	if strings.TrimSpace(r.Target) == "" {
		return errors.New("target cannot be empty")
	}
	if strings.TrimSpace(r.Type) == "" {
		return errors.New("type cannot be empty")
	}
	return nil
}

// EffectiveWeight applies the default weight.
func (r *CreateEdgeRequest) EffectiveWeight() float64 {
	if r.Weight == nil {
		return 1.0
	}
	return *r.Weight
}

// UpdateEdgeRequest is the body of PATCH /api/v1/edges/:id
type UpdateEdgeRequest struct {
	Weight float64 `json:"weight"`
}

// EdgeResponse is the wire form of an edge.
type EdgeResponse struct {
	ID     string  `json:"id"`
	Source string  `json:"source"`
	Target string  `json:"target"`
	Type   string  `json:"type"`
	Weight float64 `json:"weight"`
}

// EdgeFromType converts an edge to its wire form.
func EdgeFromType(e *types.Edge) EdgeResponse {
	return EdgeResponse{
		ID:     e.ID,
		Source: e.Source,
		Target: e.Target,
		Type:   e.Type,
		Weight: e.Weight,
	}
}

// StatsResponse reports graph counts.
type StatsResponse struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
}
