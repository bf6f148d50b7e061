package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/oralquiz/grader/internal/cache"
)

// refTTL bounds how long a cached reference embedding lives. Reference
// answers change rarely; a day keeps the cache warm across sessions without
// pinning stale vectors after a bank edit forever.
const refTTL = 24 * time.Hour

// CachedService wraps a Service with a Redis-backed cache keyed by model and
// text hash. Grading embeds the same reference answer on every attempt; the
// cache makes that a single backend call per question.
type CachedService struct {
	svc   *Service
	cache *cache.Cache
}

// NewCachedService wraps svc with c. A nil cache degrades to pass-through.
func NewCachedService(svc *Service, c *cache.Cache) *CachedService {
	return &CachedService{svc: svc, cache: c}
}

// EmbedSingle returns the embedding for text, consulting the cache first.
// Cache failures are logged and ignored; the backend result still flows.
func (c *CachedService) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	if c.cache == nil {
		return c.svc.EmbedSingle(ctx, text)
	}

	key := c.key(text)
	var cached []float32
	if err := c.cache.Get(ctx, key, &cached); err == nil && len(cached) == c.svc.Dimension() {
		return cached, nil
	}

	vec, err := c.svc.EmbedSingle(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, vec, refTTL); err != nil {
		slog.Warn("embedding cache write failed", "error", err)
	}
	return vec, nil
}

// Dimension returns the vector dimension of the underlying service.
func (c *CachedService) Dimension() int { return c.svc.Dimension() }

func (c *CachedService) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("embed:%s:%s", c.svc.Model(), hex.EncodeToString(sum[:8]))
}
