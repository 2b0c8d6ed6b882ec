package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/soundprediction/relato"
	"github.com/soundprediction/relato/pkg/config"
	"github.com/soundprediction/relato/pkg/server/handlers"
	"github.com/soundprediction/relato/pkg/types"
)

// Server represents the HTTP server
type Server struct {
	config *config.Config
	router *gin.Engine
	client relato.Relato
	server *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, client relato.Relato) *Server {
	return &Server{
		config: cfg,
		client: client,
	}
}

// Setup sets up the server routes and middleware
func (s *Server) Setup() {
	// Set gin mode
	gin.SetMode(s.config.Server.Mode)

	// Create router
	s.router = gin.New()

	// Add middleware
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())
	s.router.Use(contextMiddleware())

	// Setup routes
	s.setupRoutes()

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
}

// Router returns the underlying gin engine. Exposed for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// setupRoutes sets up all the routes
func (s *Server) setupRoutes() {
	// Create handlers
	healthHandler := handlers.NewHealthHandler(s.client)
	nodesHandler := handlers.NewNodesHandler(s.client)
	edgesHandler := handlers.NewEdgesHandler(s.client)
	searchHandler := handlers.NewSearchHandler(s.client)
	adminHandler := handlers.NewAdminHandler(s.client)

	// Health endpoints
	s.router.GET("/health", healthHandler.HealthCheck)
	s.router.GET("/ready", healthHandler.ReadinessCheck)
	s.router.GET("/live", healthHandler.LivenessCheck) // Kubernetes liveness probe
	s.router.GET("/health/detailed", healthHandler.DetailedHealthCheck)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		// Node routes
		nodes := v1.Group("/nodes")
		{
			nodes.POST("", nodesHandler.Create)
			nodes.GET("", nodesHandler.Find)
			nodes.GET("/:id", nodesHandler.Get)
			nodes.PATCH("/:id", nodesHandler.Update)
			nodes.DELETE("/:id", nodesHandler.Delete)
			nodes.GET("/:id/neighbors", nodesHandler.Neighbors)
		}

		// Edge routes
		edges := v1.Group("/edges")
		{
			edges.POST("", edgesHandler.Create)
			edges.GET("", edgesHandler.Find)
			edges.GET("/:id", edgesHandler.Get)
			edges.PATCH("/:id", edgesHandler.Update)
			edges.DELETE("/:id", edgesHandler.Delete)
		}

		// Retrieval routes
		v1.POST("/search", searchHandler.Search)
		v1.POST("/search/vector", searchHandler.VectorSearch)
		v1.GET("/explore/:id", searchHandler.Explore)

		// Graph admin routes
		graphGroup := v1.Group("/graph")
		{
			graphGroup.GET("/stats", adminHandler.Stats)
			graphGroup.POST("/save", adminHandler.Save)
			graphGroup.POST("/load", adminHandler.Load)
			graphGroup.DELETE("/clear", adminHandler.Clear)
		}
	}
}

// Start starts the server
func (s *Server) Start() error {
	fmt.Printf("Starting server on %s\n", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	fmt.Println("Stopping server...")
	return s.server.Shutdown(ctx)
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// contextMiddleware attaches request identity to the context
func contextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		ctx = context.WithValue(ctx, types.ContextKeyRequestID, requestID)
		ctx = context.WithValue(ctx, types.ContextKeyRequestSource, "server")

		c.Header("X-Request-ID", requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
