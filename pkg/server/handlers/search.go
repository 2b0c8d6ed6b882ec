package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/relato"
	"github.com/soundprediction/relato/pkg/search"
	"github.com/soundprediction/relato/pkg/server/dto"
	"github.com/soundprediction/relato/pkg/types"
)

// SearchHandler handles retrieval requests
type SearchHandler struct {
	client relato.Relato
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(client relato.Relato) *SearchHandler {
	return &SearchHandler{client: client}
}

// Search handles POST /api/v1/search
func (h *SearchHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "invalid_request", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeBadRequest(c, "invalid_request", err.Error())
		return
	}

	opts := &search.HybridOptions{
		TopK:         req.TopK,
		Limit:        req.Limit,
		MaxDepth:     req.MaxDepth,
		Direction:    types.Direction(req.Direction),
		EdgeTypes:    req.EdgeTypes,
		VectorWeight: req.VectorWeight,
		GraphWeight:  req.GraphWeight,
		Scoring:      search.ScoringMode(req.Scoring),
		Filter:       req.Filter,
		IncludeNodes: req.IncludeNodes,
	}

	var (
		results []*types.ScoredNode
		err     error
	)
	if strings.TrimSpace(req.Query) != "" {
		results, err = h.client.SearchText(c.Request.Context(), req.Query, opts)
	} else {
		results, err = h.client.Search(c.Request.Context(), req.Vector, opts)
	}
	if err != nil {
		writeError(c, err, "search_failed")
		return
	}

	resp := dto.SearchResponse{Results: make([]dto.ScoredNodeResponse, 0, len(results))}
	for _, r := range results {
		item := dto.ScoredNodeResponse{
			ID:          r.ID,
			VectorScore: r.VectorScore,
			GraphScore:  r.GraphScore,
			FinalScore:  r.FinalScore,
			Hops:        r.Hops,
		}
		if r.Node != nil {
			node := dto.NodeFromType(r.Node)
			item.Node = &node
		}
		resp.Results = append(resp.Results, item)
	}
	c.JSON(http.StatusOK, resp)
}

// VectorSearch handles POST /api/v1/search/vector
func (h *SearchHandler) VectorSearch(c *gin.Context) {
	var req dto.VectorSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "invalid_request", err.Error())
		return
	}
	if req.TopK <= 0 {
		req.TopK = 10
	}

	hits, err := h.client.VectorSearch(c.Request.Context(), req.Vector, req.TopK, req.Filter)
	if err != nil {
		writeError(c, err, "vector_search_failed")
		return
	}

	out := make([]dto.VectorHitResponse, 0, len(hits))
	for _, hit := range hits {
		out = append(out, dto.VectorHitResponse{ID: hit.ID, Score: hit.Score})
	}
	c.JSON(http.StatusOK, gin.H{"hits": out})
}

// Explore handles GET /api/v1/explore/:id?depth=2&direction=both
func (h *SearchHandler) Explore(c *gin.Context) {
	depth := 2
	if raw := c.Query("depth"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeBadRequest(c, "invalid_request", "depth must be an integer")
			return
		}
		depth = parsed
	}

	result, err := h.client.Explore(c.Request.Context(), c.Param("id"), search.TraversalOptions{
		MaxDepth:  depth,
		Direction: types.Direction(c.DefaultQuery("direction", string(types.DirectionBoth))),
		EdgeTypes: c.QueryArray("edge_type"),
	})
	if err != nil {
		writeError(c, err, "explore_failed")
		return
	}
	c.JSON(http.StatusOK, result)
}
