package remote

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/julianshen/fragminer/internal/knowledge"
)

// Cached wraps a Resolver with an LRU of answers keyed by repository and a
// rate limiter applied to cache misses. It is safe for concurrent use.
type Cached struct {
	next    Resolver
	cache   *lru.Cache[string, string]
	limiter *rate.Limiter
}

// NewCached creates a Cached resolver holding up to size answers and
// issuing at most requestsPerSecond lookups. requestsPerSecond <= 0 means
// unlimited.
func NewCached(next Resolver, size int, requestsPerSecond float64) (*Cached, error) {
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("creating branch cache: %w", err)
	}
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Cached{
		next:    next,
		cache:   cache,
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}

// DefaultBranch implements Resolver. Failures are not cached.
func (c *Cached) DefaultBranch(ctx context.Context, id knowledge.Identity) (string, error) {
	key := id.Key()
	if branch, ok := c.cache.Get(key); ok {
		return branch, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	branch, err := c.next.DefaultBranch(ctx, id)
	if err != nil {
		return "", err
	}
	c.cache.Add(key, branch)
	return branch, nil
}
