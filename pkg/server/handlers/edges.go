package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/relato"
	"github.com/soundprediction/relato/pkg/server/dto"
)

// EdgesHandler handles edge CRUD requests
type EdgesHandler struct {
	client relato.Relato
}

// NewEdgesHandler creates a new edges handler
func NewEdgesHandler(client relato.Relato) *EdgesHandler {
	return &EdgesHandler{client: client}
}

// Create handles POST /api/v1/edges
func (h *EdgesHandler) Create(c *gin.Context) {
	var req dto.CreateEdgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "invalid_request", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeBadRequest(c, "invalid_request", err.Error())
		return
	}

	edge, err := h.client.CreateEdge(c.Request.Context(), req.Source, req.Target, req.Type, req.EffectiveWeight())
	if err != nil {
		writeError(c, err, "create_edge_failed")
		return
	}

	c.JSON(http.StatusCreated, dto.EdgeFromType(edge))
}

// Get handles GET /api/v1/edges/:id
func (h *EdgesHandler) Get(c *gin.Context) {
	edge, err := h.client.GetEdge(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "get_edge_failed")
		return
	}
	c.JSON(http.StatusOK, dto.EdgeFromType(edge))
}

// Update handles PATCH /api/v1/edges/:id
func (h *EdgesHandler) Update(c *gin.Context) {
	var req dto.UpdateEdgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "invalid_request", err.Error())
		return
	}

	edge, err := h.client.UpdateEdgeWeight(c.Request.Context(), c.Param("id"), req.Weight)
	if err != nil {
		writeError(c, err, "update_edge_failed")
		return
	}
	c.JSON(http.StatusOK, dto.EdgeFromType(edge))
}

// Delete handles DELETE /api/v1/edges/:id
func (h *EdgesHandler) Delete(c *gin.Context) {
	if err := h.client.DeleteEdge(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err, "delete_edge_failed")
		return
	}
	c.JSON(http.StatusOK, dto.Result{Success: true})
}

// Find handles GET /api/v1/edges?type=...
func (h *EdgesHandler) Find(c *gin.Context) {
	edgeType := c.Query("type")
	if edgeType == "" {
		writeBadRequest(c, "invalid_request", "type query parameter is required")
		return
	}

	edges, err := h.client.FindEdgesByType(c.Request.Context(), edgeType)
	if err != nil {
		writeError(c, err, "find_edges_failed")
		return
	}

	out := make([]dto.EdgeResponse, 0, len(edges))
	for _, edge := range edges {
		out = append(out, dto.EdgeFromType(edge))
	}
	c.JSON(http.StatusOK, gin.H{"edges": out})
}
