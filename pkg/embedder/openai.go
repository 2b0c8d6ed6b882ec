package embedder

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenAIBatchSize = 100

// OpenAIClient embeds text through the OpenAI embeddings API or any
// OpenAI-compatible endpoint.
type OpenAIClient struct {
	client     *openai.Client
	model      string
	batchSize  int
	dimensions int
}

// NewOpenAIClient creates a client for the OpenAI embeddings API.
func NewOpenAIClient(config *Config) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("openai embedder: api key is required")
	}

	model := config.Model
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = defaultOpenAIBatchSize
	}

	var client *openai.Client
	if config.BaseURL != "" {
		clientConfig := openai.DefaultConfig(config.APIKey)
		clientConfig.BaseURL = config.BaseURL
		client = openai.NewClientWithConfig(clientConfig)
	} else {
		client = openai.NewClient(config.APIKey)
	}

	return &OpenAIClient{
		client:     client,
		model:      model,
		batchSize:  batchSize,
		dimensions: config.Dimensions,
	}, nil
}

// Embed generates embeddings for the given texts, batching requests to stay
// within provider limits.
func (c *OpenAIClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.batchSize {
		end := start + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: openai.EmbeddingModel(c.model),
			Input: texts[start:end],
		})
		if err != nil {
			return nil, fmt.Errorf("failed to generate embeddings: %w", err)
		}
		if len(resp.Data) != end-start {
			return nil, fmt.Errorf("expected %d embeddings, got %d", end-start, len(resp.Data))
		}

		for _, item := range resp.Data {
			embeddings = append(embeddings, item.Embedding)
		}
	}

	if c.dimensions == 0 && len(embeddings) > 0 {
		c.dimensions = len(embeddings[0])
	}
	return embeddings, nil
}

// EmbedSingle generates an embedding for a single text.
func (c *OpenAIClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	return embeddings[0], nil
}

// Dimensions returns the number of dimensions in the embeddings.
func (c *OpenAIClient) Dimensions() int {
	return c.dimensions
}

// Close cleans up any resources.
func (c *OpenAIClient) Close() error {
	return nil
}
