package openai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/patrickmn/go-cache"
)

type embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CachedEmbedder memoizes embeddings in process memory, keyed by model and text
type CachedEmbedder struct {
	inner embedder
	model string
	cache *cache.Cache
}

func NewCachedEmbedder(inner embedder, model string, ttl time.Duration) *CachedEmbedder {
	return &CachedEmbedder{
		inner: inner,
		model: model,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(c.model, text)

	if cached, ok := c.cache.Get(key); ok {
		ctxzap.Debug(ctx, "embedding cache hit")
		return slices.Clone(cached.([]float32)), nil
	}

	vector, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.cache.SetDefault(key, slices.Clone(vector))
	return vector, nil
}

// Len reports the number of cached embeddings
func (c *CachedEmbedder) Len() int {
	return c.cache.ItemCount()
}

func cacheKey(model, text string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
