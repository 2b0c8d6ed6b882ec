package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/relato"
	"github.com/soundprediction/relato/pkg/graph"
	"github.com/soundprediction/relato/pkg/server/dto"
	"github.com/soundprediction/relato/pkg/types"
)

// NodesHandler handles node CRUD requests
type NodesHandler struct {
	client relato.Relato
}

// NewNodesHandler creates a new nodes handler
func NewNodesHandler(client relato.Relato) *NodesHandler {
	return &NodesHandler{client: client}
}

// Create handles POST /api/v1/nodes
func (h *NodesHandler) Create(c *gin.Context) {
	var req dto.CreateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "invalid_request", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeBadRequest(c, "invalid_request", err.Error())
		return
	}

	node, err := h.client.CreateNode(c.Request.Context(), graph.NodeInput{
		ID:        req.ID,
		Text:      req.Text,
		Metadata:  req.Metadata,
		Embedding: req.Embedding,
	}, &relato.NodeOptions{Regenerate: req.Regenerate})
	if err != nil {
		writeError(c, err, "create_node_failed")
		return
	}

	c.JSON(http.StatusCreated, dto.NodeFromType(node))
}

// Get handles GET /api/v1/nodes/:id
func (h *NodesHandler) Get(c *gin.Context) {
	node, err := h.client.GetNode(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "get_node_failed")
		return
	}
	c.JSON(http.StatusOK, dto.NodeFromType(node))
}

// Update handles PATCH /api/v1/nodes/:id
func (h *NodesHandler) Update(c *gin.Context) {
	var req dto.UpdateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "invalid_request", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeBadRequest(c, "invalid_request", err.Error())
		return
	}

	node, err := h.client.UpdateNode(c.Request.Context(), c.Param("id"), graph.NodeUpdate{
		Text:      req.Text,
		Metadata:  req.Metadata,
		Embedding: req.Embedding,
	}, &relato.NodeOptions{Regenerate: req.Regenerate})
	if err != nil {
		writeError(c, err, "update_node_failed")
		return
	}

	c.JSON(http.StatusOK, dto.NodeFromType(node))
}

// Delete handles DELETE /api/v1/nodes/:id
func (h *NodesHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	removed, err := h.client.DeleteNode(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "delete_node_failed")
		return
	}
	c.JSON(http.StatusOK, dto.DeleteNodeResponse{ID: id, RemovedEdgesCount: removed})
}

// Find handles GET /api/v1/nodes?key=...&value=...
// The value parameter matches string metadata directly and, when it reads as
// a JSON number or boolean, matches that scalar as well.
func (h *NodesHandler) Find(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		writeBadRequest(c, "invalid_request", "key query parameter is required")
		return
	}

	raw := c.Query("value")
	nodes, err := h.client.FindNodesByMetadata(c.Request.Context(), key, raw)
	if err != nil {
		writeError(c, err, "find_nodes_failed")
		return
	}
	if scalar, ok := scalarValue(raw); ok {
		more, err := h.client.FindNodesByMetadata(c.Request.Context(), key, scalar)
		if err != nil {
			writeError(c, err, "find_nodes_failed")
			return
		}
		seen := make(map[string]struct{}, len(nodes))
		for _, node := range nodes {
			seen[node.ID] = struct{}{}
		}
		for _, node := range more {
			if _, dup := seen[node.ID]; !dup {
				nodes = append(nodes, node)
			}
		}
	}

	out := make([]dto.NodeResponse, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, dto.NodeFromType(node))
	}
	c.JSON(http.StatusOK, gin.H{"nodes": out})
}

// scalarValue interprets a query parameter the way a JSON document carries
// it. Metadata arrives through JSON bodies, so numbers are stored as float64
// and booleans as bool.
func scalarValue(raw string) (interface{}, bool) {
	switch raw {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f, true
	}
	return nil, false
}

// Neighbors handles GET /api/v1/nodes/:id/neighbors?direction=out
func (h *NodesHandler) Neighbors(c *gin.Context) {
	direction := types.Direction(c.DefaultQuery("direction", string(types.DirectionBoth)))

	edges, err := h.client.Neighbors(c.Request.Context(), c.Param("id"), direction)
	if err != nil {
		writeError(c, err, "neighbors_failed")
		return
	}

	out := make([]dto.EdgeResponse, 0, len(edges))
	for _, edge := range edges {
		out = append(out, dto.EdgeFromType(edge))
	}
	c.JSON(http.StatusOK, gin.H{"edges": out})
}
