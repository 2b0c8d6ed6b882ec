package dto

import (
	"errors"
	"strings"
)

// SearchRequest is the body of POST /api/v1/search. Either Query or Vector
// must be set; Query requires an embedding client on the server.
type SearchRequest struct {
	Query  string    `json:"query,omitempty"`
	Vector []float32 `json:"vector,omitempty"`

	TopK         int                    `json:"top_k,omitempty"`
	Limit        int                    `json:"limit,omitempty"`
	MaxDepth     int                    `json:"max_depth,omitempty"`
	Direction    string                 `json:"direction,omitempty"`
	EdgeTypes    []string               `json:"edge_types,omitempty"`
	VectorWeight float64                `json:"vector_weight,omitempty"`
	GraphWeight  float64                `json:"graph_weight,omitempty"`
	Scoring      string                 `json:"scoring,omitempty"`
	Filter       map[string]interface{} `json:"filter,omitempty"`
	IncludeNodes bool                   `json:"include_nodes,omitempty"`
}

// Validate performs validation on SearchRequest
func (r *SearchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" && len(r.Vector) == 0 {
		return errors.New("either query or vector is required")
	}
	if r.Query != "" && len(r.Vector) > 0 {
		return errors.New("query and vector are mutually exclusive")
	}
	return nil
}

// ScoredNodeResponse is one ranked search result.
type ScoredNodeResponse struct {
	ID          string        `json:"id"`
	VectorScore float64       `json:"vector_score"`
	GraphScore  float64       `json:"graph_score"`
	FinalScore  float64       `json:"final_score"`
	Hops        int           `json:"hops"`
	Node        *NodeResponse `json:"node,omitempty"`
}

// SearchResponse is the body returned by POST /api/v1/search
type SearchResponse struct {
	Results []ScoredNodeResponse `json:"results"`
}

// VectorSearchRequest is the body of POST /api/v1/search/vector
type VectorSearchRequest struct {
	Vector []float32              `json:"vector" binding:"required"`
	TopK   int                    `json:"top_k,omitempty"`
	Filter map[string]interface{} `json:"filter,omitempty"`
}

// VectorHitResponse is one similarity hit.
type VectorHitResponse struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}
