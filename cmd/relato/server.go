package relato

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soundprediction/relato"
	"github.com/soundprediction/relato/pkg/config"
	"github.com/soundprediction/relato/pkg/embedder"
	relatoLogger "github.com/soundprediction/relato/pkg/logger"
	"github.com/soundprediction/relato/pkg/search"
	"github.com/soundprediction/relato/pkg/server"
	"github.com/soundprediction/relato/pkg/telemetry"
	"github.com/soundprediction/relato/pkg/types"
	"github.com/soundprediction/relato/pkg/vector"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the Relato HTTP server",
	Long: `Start the Relato HTTP server to provide REST API access to the retrieval engine.

The server provides endpoints for:
- Managing nodes and edges
- Hybrid and pure vector search
- Graph exploration
- Snapshot save and load
- Health checks

Configuration can be provided through config files, environment variables, or command-line flags.`,
	RunE: runServer,
}

var (
	serverHost string
	serverPort int
	serverMode string
)

func init() {
	rootCmd.AddCommand(serverCmd)

	// Server-specific flags
	serverCmd.Flags().StringVar(&serverHost, "host", "localhost", "Server host")
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Server port")
	serverCmd.Flags().StringVar(&serverMode, "mode", "debug", "Server mode (debug, release, test)")

	// Graph flags
	serverCmd.Flags().String("snapshot-path", "./relato_snapshot.json", "Snapshot file path")
	serverCmd.Flags().Bool("auto-persist", false, "Write a snapshot after every mutation")
	serverCmd.Flags().String("id-mode", "caller", "Node id mode (caller, generated)")

	// Retrieval flags
	serverCmd.Flags().Int("max-depth", 2, "Default traversal depth for hybrid search")
	serverCmd.Flags().Int("top-k", 10, "Default number of vector hits to seed traversal")
	serverCmd.Flags().String("scoring", "weighted_path", "Graph scoring mode (weighted_path, decay)")

	// Embedding flags
	serverCmd.Flags().String("embedding-provider", "local", "Embedding provider (openai, local)")
	serverCmd.Flags().String("embedding-model", "all-MiniLM-L6-v2", "Embedding model")
	serverCmd.Flags().String("embedding-api-key", "", "Embedding API key")
	serverCmd.Flags().String("embedding-base-url", "", "Embedding base URL")
	serverCmd.Flags().String("embedding-cache-path", "", "Path to on-disk embedding cache")

	// Telemetry flags
	serverCmd.Flags().String("telemetry-parquet-path", "", "Path to directory for error telemetry")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	overrideConfigWithFlags(cmd, cfg)

	// Validate configuration
	if err := validateServerConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Initialize client
	fmt.Println("Initializing Relato...")
	client, err := initializeClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize Relato: %w", err)
	}
	defer client.Close(context.Background())

	// Load an existing snapshot when present
	if err := client.LoadIfExists(context.Background()); err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	// Create and setup server
	srv := server.New(cfg, client)
	srv.Setup()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal: %v\n", sig)

		// Create shutdown context with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Shutdown server
		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		fmt.Println("Server stopped gracefully")
		return nil
	}
}

func overrideConfigWithFlags(cmd *cobra.Command, cfg *config.Config) {
	// Server flags
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serverHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = serverPort
	}
	if cmd.Flags().Changed("mode") {
		cfg.Server.Mode = serverMode
	}

	// Graph flags
	if cmd.Flags().Changed("snapshot-path") {
		cfg.Graph.SnapshotPath, _ = cmd.Flags().GetString("snapshot-path")
	}
	if cmd.Flags().Changed("auto-persist") {
		cfg.Graph.AutoPersist, _ = cmd.Flags().GetBool("auto-persist")
	}
	if cmd.Flags().Changed("id-mode") {
		cfg.Graph.IDMode, _ = cmd.Flags().GetString("id-mode")
	}

	// Retrieval flags
	if cmd.Flags().Changed("max-depth") {
		cfg.Retrieval.MaxDepth, _ = cmd.Flags().GetInt("max-depth")
	}
	if cmd.Flags().Changed("top-k") {
		cfg.Retrieval.TopK, _ = cmd.Flags().GetInt("top-k")
	}
	if cmd.Flags().Changed("scoring") {
		cfg.Retrieval.Scoring, _ = cmd.Flags().GetString("scoring")
	}

	// Embedding flags
	if cmd.Flags().Changed("embedding-provider") {
		cfg.Embedding.Provider, _ = cmd.Flags().GetString("embedding-provider")
	}
	if cmd.Flags().Changed("embedding-model") {
		cfg.Embedding.Model, _ = cmd.Flags().GetString("embedding-model")
	}
	if cmd.Flags().Changed("embedding-api-key") {
		cfg.Embedding.APIKey, _ = cmd.Flags().GetString("embedding-api-key")
	}
	if cmd.Flags().Changed("embedding-base-url") {
		cfg.Embedding.BaseURL, _ = cmd.Flags().GetString("embedding-base-url")
	}
	if cmd.Flags().Changed("embedding-cache-path") {
		cfg.Embedding.CachePath, _ = cmd.Flags().GetString("embedding-cache-path")
	}

	// Telemetry flags
	if cmd.Flags().Changed("telemetry-parquet-path") {
		cfg.Telemetry.ParquetPath, _ = cmd.Flags().GetString("telemetry-parquet-path")
	}
}

func validateServerConfig(cfg *config.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}
	if cfg.Graph.IDMode != "caller" && cfg.Graph.IDMode != "generated" {
		return fmt.Errorf("invalid id mode: %s", cfg.Graph.IDMode)
	}
	if !types.Direction(cfg.Retrieval.Direction).Valid() {
		return fmt.Errorf("invalid direction: %s", cfg.Retrieval.Direction)
	}
	if !search.ScoringMode(cfg.Retrieval.Scoring).Valid() {
		return fmt.Errorf("invalid scoring mode: %s", cfg.Retrieval.Scoring)
	}
	return nil
}

func initializeClient(cfg *config.Config) (*relato.Client, error) {
	logger := relatoLogger.New(cfg.Log.Level, cfg.Log.Format)

	// Error telemetry using Parquet
	if cfg.Telemetry.ParquetPath != "" {
		parquetHandler, err := telemetry.NewParquetHandler(logger.Handler(), cfg.Telemetry.ParquetPath)
		if err != nil {
			fmt.Printf("Warning: Failed to initialize error tracking: %v\n", err)
		} else {
			logger = slog.New(parquetHandler)
			fmt.Printf("Error tracking enabled at: %s\n", cfg.Telemetry.ParquetPath)
		}
	}

	// Initialize embedder client
	var embedderClient embedder.Client
	if cfg.Embedding.Provider != "" {
		var err error
		embedderClient, err = embedder.New(&embedder.Config{
			Provider:  cfg.Embedding.Provider,
			Model:     cfg.Embedding.Model,
			APIKey:    cfg.Embedding.APIKey,
			BaseURL:   cfg.Embedding.BaseURL,
			CachePath: cfg.Embedding.CachePath,
		})
		if err != nil {
			// Embeddings are optional; the API still accepts raw vectors.
			fmt.Printf("Warning: embedding client unavailable: %v\n", err)
			embedderClient = nil
		}
	}

	// In-process vector index, optionally behind a circuit breaker
	var index vector.Store = vector.NewMemoryIndex()
	var breakerSettings *vector.BreakerSettings
	if cfg.CircuitBreaker.Enabled {
		breakerSettings = &vector.BreakerSettings{
			MaxRequests:  cfg.CircuitBreaker.MaxRequests,
			Interval:     time.Duration(cfg.CircuitBreaker.Interval) * time.Second,
			Timeout:      time.Duration(cfg.CircuitBreaker.Timeout) * time.Second,
			FailureRatio: cfg.CircuitBreaker.ReadyToTripRatio,
		}
	}

	// Create Relato client
	client := relato.NewClient(index, embedderClient, &relato.Config{
		SnapshotPath: cfg.Graph.SnapshotPath,
		AutoPersist:  cfg.Graph.AutoPersist,
		GenerateIDs:  cfg.Graph.IDMode == "generated",
		Breaker:      breakerSettings,
		Retrieval: search.HybridOptions{
			TopK:         cfg.Retrieval.TopK,
			MaxDepth:     cfg.Retrieval.MaxDepth,
			Direction:    types.Direction(cfg.Retrieval.Direction),
			Scoring:      search.ScoringMode(cfg.Retrieval.Scoring),
			VectorWeight: cfg.Retrieval.VectorWeight,
			GraphWeight:  cfg.Retrieval.GraphWeight,
		},
	}, logger)

	return client, nil
}
