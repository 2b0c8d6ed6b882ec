package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"

	badger "github.com/dgraph-io/badger/v4"
)

// CachedClient wraps a Client with a persistent embedding cache keyed by
// model and text. Re-embedding unchanged text on restart or regeneration is
// the common case this avoids.
type CachedClient struct {
	inner Client
	db    *badger.DB
	model string
}

// NewCachedClient opens (or creates) a cache at path and wraps inner with it.
func NewCachedClient(inner Client, path, model string) (*CachedClient, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedding cache at %s: %w", path, err)
	}

	return &CachedClient{inner: inner, db: db, model: model}, nil
}

// Embed returns cached embeddings where available and forwards only the
// misses to the underlying client. Cache write failures are ignored; the
// cache is an optimization, not a store of record.
func (c *CachedClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	missIdx := make([]int, 0, len(texts))
	missTexts := make([]string, 0, len(texts))

	err := c.db.View(func(txn *badger.Txn) error {
		for i, text := range texts {
			item, err := txn.Get(c.cacheKey(text))
			if err == badger.ErrKeyNotFound {
				missIdx = append(missIdx, i)
				missTexts = append(missTexts, text)
				continue
			}
			if err != nil {
				return err
			}
			if err := item.Value(func(val []byte) error {
				embeddings[i] = decodeEmbedding(val)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("embedding cache read: %w", err)
	}

	if len(missTexts) == 0 {
		return embeddings, nil
	}

	fresh, err := c.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(missTexts), len(fresh))
	}

	_ = c.db.Update(func(txn *badger.Txn) error {
		for i, embedding := range fresh {
			if err := txn.Set(c.cacheKey(missTexts[i]), encodeEmbedding(embedding)); err != nil {
				return err
			}
		}
		return nil
	})

	for i, embedding := range fresh {
		embeddings[missIdx[i]] = embedding
	}
	return embeddings, nil
}

// EmbedSingle generates an embedding for a single text.
func (c *CachedClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
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
func (c *CachedClient) Dimensions() int {
	return c.inner.Dimensions()
}

// Close closes the cache and the underlying client.
func (c *CachedClient) Close() error {
	if err := c.db.Close(); err != nil {
		c.inner.Close()
		return err
	}
	return c.inner.Close()
}

func (c *CachedClient) cacheKey(text string) []byte {
	sum := sha256.Sum256([]byte(c.model + "\x00" + text))
	return sum[:]
}

func encodeEmbedding(embedding []float32) []byte {
	buf := make([]byte, 4*len(embedding))
	for i, v := range embedding {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeEmbedding(buf []byte) []float32 {
	embedding := make([]float32, len(buf)/4)
	for i := range embedding {
		embedding[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return embedding
}
