package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/soundprediction/relato"
	"github.com/soundprediction/relato/pkg/server/dto"
)

func newTestRouter(t *testing.T) (*gin.Engine, *relato.Client) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	client := relato.NewClient(nil, nil, nil, nil)

	router := gin.New()
	nodes := NewNodesHandler(client)
	edges := NewEdgesHandler(client)
	searchH := NewSearchHandler(client)
	admin := NewAdminHandler(client)

	v1 := router.Group("/api/v1")
	v1.POST("/nodes", nodes.Create)
	v1.GET("/nodes", nodes.Find)
	v1.GET("/nodes/:id", nodes.Get)
	v1.PATCH("/nodes/:id", nodes.Update)
	v1.DELETE("/nodes/:id", nodes.Delete)
	v1.GET("/nodes/:id/neighbors", nodes.Neighbors)
	v1.POST("/edges", edges.Create)
	v1.GET("/edges/:id", edges.Get)
	v1.POST("/search", searchH.Search)
	v1.GET("/explore/:id", searchH.Explore)
	v1.GET("/graph/stats", admin.Stats)

	return router, client
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateAndGetNodeEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/nodes", dto.CreateNodeRequest{
		ID:   "n1",
		Text: "hello",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/nodes/n1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var node dto.NodeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &node))
	assert.Equal(t, "hello", node.Text)
}

func TestCreateNodeDuplicateConflict(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/nodes", dto.CreateNodeRequest{ID: "n1"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/nodes", dto.CreateNodeRequest{ID: "n1"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetNodeNotFoundEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/nodes/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateNodeMissingIDBadRequest(t *testing.T) {
	router, _ := newTestRouter(t)

	// Caller-id mode rejects an empty id.
	w := doJSON(t, router, http.MethodPost, "/api/v1/nodes", dto.CreateNodeRequest{Text: "no id"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteNodeCascadeEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, id := range []string{"a", "b"} {
		w := doJSON(t, router, http.MethodPost, "/api/v1/nodes", dto.CreateNodeRequest{ID: id})
		require.Equal(t, http.StatusCreated, w.Code)
	}
	w := doJSON(t, router, http.MethodPost, "/api/v1/edges", dto.CreateEdgeRequest{
		Source: "a", Target: "b", Type: "knows",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/nodes/a", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.DeleteNodeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.RemovedEdgesCount)
}

func TestFindNodesMatchesScalarMetadata(t *testing.T) {
	router, _ := newTestRouter(t)

	// JSON bodies store numbers as float64 and booleans as bool; the query
	// string must still find them.
	w := doJSON(t, router, http.MethodPost, "/api/v1/nodes", dto.CreateNodeRequest{
		ID: "num", Metadata: map[string]interface{}{"count": 3},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, router, http.MethodPost, "/api/v1/nodes", dto.CreateNodeRequest{
		ID: "flag", Metadata: map[string]interface{}{"active": true},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, router, http.MethodPost, "/api/v1/nodes", dto.CreateNodeRequest{
		ID: "text", Metadata: map[string]interface{}{"label": "3"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	findIDs := func(query string) []string {
		w := doJSON(t, router, http.MethodGet, "/api/v1/nodes?"+query, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Nodes []dto.NodeResponse `json:"nodes"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		ids := make([]string, 0, len(resp.Nodes))
		for _, node := range resp.Nodes {
			ids = append(ids, node.ID)
		}
		return ids
	}

	assert.Equal(t, []string{"num"}, findIDs("key=count&value=3"))
	assert.Equal(t, []string{"flag"}, findIDs("key=active&value=true"))
	assert.Equal(t, []string{"text"}, findIDs("key=label&value=3"))
	assert.Empty(t, findIDs("key=count&value=4"))
}

func TestCreateEdgeDefaultWeight(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, id := range []string{"a", "b"} {
		doJSON(t, router, http.MethodPost, "/api/v1/nodes", dto.CreateNodeRequest{ID: id})
	}
	w := doJSON(t, router, http.MethodPost, "/api/v1/edges", dto.CreateEdgeRequest{
		Source: "a", Target: "b", Type: "knows",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var edge dto.EdgeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &edge))
	assert.Equal(t, 1.0, edge.Weight)
}

func TestCreateEdgeMissingEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/api/v1/nodes", dto.CreateNodeRequest{ID: "a"})
	w := doJSON(t, router, http.MethodPost, "/api/v1/edges", dto.CreateEdgeRequest{
		Source: "a", Target: "ghost", Type: "knows",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateEdgeNegativeWeight(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, id := range []string{"a", "b"} {
		doJSON(t, router, http.MethodPost, "/api/v1/nodes", dto.CreateNodeRequest{ID: id})
	}
	weight := -1.0
	w := doJSON(t, router, http.MethodPost, "/api/v1/edges", dto.CreateEdgeRequest{
		Source: "a", Target: "b", Type: "knows", Weight: &weight,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/nodes", dto.CreateNodeRequest{
		ID:        "a",
		Text:      "alpha",
		Embedding: []float32{1, 0},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/search", dto.SearchRequest{
		Vector: []float32{1, 0},
		TopK:   5,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "a", resp.Results[0].ID)
	assert.InDelta(t, 1.0, resp.Results[0].VectorScore, 1e-6)
}

func TestSearchEndpointValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	// Neither query nor vector.
	w := doJSON(t, router, http.MethodPost, "/api/v1/search", dto.SearchRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Both query and vector.
	w = doJSON(t, router, http.MethodPost, "/api/v1/search", dto.SearchRequest{
		Query:  "hello",
		Vector: []float32{1},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExploreEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, id := range []string{"a", "b"} {
		doJSON(t, router, http.MethodPost, "/api/v1/nodes", dto.CreateNodeRequest{ID: id})
	}
	doJSON(t, router, http.MethodPost, "/api/v1/edges", dto.CreateEdgeRequest{
		Source: "a", Target: "b", Type: "knows",
	})

	w := doJSON(t, router, http.MethodGet, "/api/v1/explore/a?depth=2&direction=out", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "a", result["start_id"])

	w = doJSON(t, router, http.MethodGet, "/api/v1/explore/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/api/v1/nodes", dto.CreateNodeRequest{ID: "a"})

	w := doJSON(t, router, http.MethodGet, "/api/v1/graph/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats dto.StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Nodes)
	assert.Equal(t, 0, stats.Edges)
}
