package embedder

import (
	"context"
	"fmt"
	"strings"
)

// Client is the embedding contract. Implementations batch internally based
// on provider limits.
type Client interface {
	// Embed generates one embedding per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle generates an embedding for a single text.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the dimensionality of produced embeddings.
	Dimensions() int

	// Close releases any resources held by the client.
	Close() error
}

// Config holds provider-agnostic embedding settings.
type Config struct {
	// Provider selects the implementation: "openai" or "local".
	Provider string

	// Model is the provider-specific model name.
	Model string

	// APIKey authenticates against hosted providers.
	APIKey string

	// BaseURL overrides the provider endpoint for OpenAI-compatible APIs.
	BaseURL string

	// Dimensions is the expected embedding dimensionality. Zero lets the
	// provider report its own.
	Dimensions int

	// BatchSize caps texts per request. Zero means the provider default.
	BatchSize int

	// CachePath enables the on-disk embedding cache when non-empty.
	CachePath string
}

// New builds a Client from config, wrapping it in the persistent cache when
// CachePath is set.
func New(config *Config) (Client, error) {
	if config == nil {
		return nil, fmt.Errorf("embedder config is required")
	}

	var (
		client Client
		err    error
	)
	switch strings.ToLower(config.Provider) {
	case "", "openai":
		client, err = NewOpenAIClient(config)
	case "local":
		client, err = NewLocalClient(config)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", config.Provider)
	}
	if err != nil {
		return nil, err
	}

	if config.CachePath != "" {
		return NewCachedClient(client, config.CachePath, config.Model)
	}
	return client, nil
}
