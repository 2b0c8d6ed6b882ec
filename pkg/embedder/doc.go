// Package embedder provides text embedding clients for vector representations.
//
// This package defines the Client interface and provides implementations for
// OpenAI-compatible APIs and a local in-process embedding model, plus a
// persistent cache wrapper that deduplicates repeat requests.
//
// # Usage
//
//	client, err := embedder.New(&embedder.Config{
//	    Provider: "openai",
//	    Model:    "text-embedding-3-small",
//	    APIKey:   apiKey,
//	})
//
//	embeddings, err := client.Embed(ctx, []string{"hello world"})
//
// # Batch Processing
//
// The Client interface supports batch embedding for efficiency:
//   - Embed(): Embed multiple texts in a single request
//   - EmbedSingle(): Convenience method for single text
package embedder
