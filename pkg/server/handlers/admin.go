package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/relato"
	"github.com/soundprediction/relato/pkg/server/dto"
)

// AdminHandler handles persistence and maintenance requests
type AdminHandler struct {
	client relato.Relato
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(client relato.Relato) *AdminHandler {
	return &AdminHandler{client: client}
}

// Stats handles GET /api/v1/graph/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.client.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err, "stats_failed")
		return
	}
	c.JSON(http.StatusOK, dto.StatsResponse{Nodes: stats.Nodes, Edges: stats.Edges})
}

// Save handles POST /api/v1/graph/save
func (h *AdminHandler) Save(c *gin.Context) {
	if err := h.client.Save(c.Request.Context()); err != nil {
		writeError(c, err, "save_failed")
		return
	}
	c.JSON(http.StatusOK, dto.Result{Success: true})
}

// Load handles POST /api/v1/graph/load
func (h *AdminHandler) Load(c *gin.Context) {
	if err := h.client.Load(c.Request.Context()); err != nil {
		writeError(c, err, "load_failed")
		return
	}
	c.JSON(http.StatusOK, dto.Result{Success: true})
}

// Clear handles DELETE /api/v1/graph/clear
func (h *AdminHandler) Clear(c *gin.Context) {
	if err := h.client.Clear(c.Request.Context()); err != nil {
		writeError(c, err, "clear_failed")
		return
	}
	c.JSON(http.StatusOK, dto.Result{Success: true})
}
