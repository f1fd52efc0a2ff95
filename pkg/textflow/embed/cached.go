package embed

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cognicore/textflow/pkg/textflow/internalerr"
)

// Cached memoizes another provider's vectors in a bounded LRU. Misses
// (ErrNotFound) are cached too so unknown tokens are not re-requested.
type Cached struct {
	next  Provider
	cache *lru.Cache[string, cachedEntry]
}

type cachedEntry struct {
	vec     []float64
	missing bool
}

// NewCached wraps next with an LRU holding up to size keys.
func NewCached(next Provider, size int) (*Cached, error) {
	c, err := lru.New[string, cachedEntry](size)
	if err != nil {
		return nil, fmt.Errorf("embedding cache: %w", err)
	}
	return &Cached{next: next, cache: c}, nil
}

// Dimension implements Provider.
func (c *Cached) Dimension() int { return c.next.Dimension() }

// Len returns the number of cached keys.
func (c *Cached) Len() int { return c.cache.Len() }

// Embed implements Provider.
func (c *Cached) Embed(ctx context.Context, key string) ([]float64, error) {
	if e, ok := c.cache.Get(key); ok {
		if e.missing {
			return nil, fmt.Errorf("token %q: %w", key, internalerr.ErrNotFound)
		}
		return clone(e.vec), nil
	}
	vec, err := c.next.Embed(ctx, key)
	if errors.Is(err, internalerr.ErrNotFound) {
		c.cache.Add(key, cachedEntry{missing: true})
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, cachedEntry{vec: clone(vec)})
	return vec, nil
}

// EmbedBatch implements BatchProvider. Only uncached keys reach next, in
// one request when next is itself a BatchProvider.
func (c *Cached) EmbedBatch(ctx context.Context, keys []string) ([][]float64, error) {
	out := make([][]float64, len(keys))
	var (
		misses []string
		idx    []int
	)
	for i, key := range keys {
		if e, ok := c.cache.Get(key); ok {
			if !e.missing {
				out[i] = clone(e.vec)
			}
			continue
		}
		misses = append(misses, key)
		idx = append(idx, i)
	}
	if len(misses) == 0 {
		return out, nil
	}

	var fetched [][]float64
	if bp, ok := c.next.(BatchProvider); ok {
		got, err := bp.EmbedBatch(ctx, misses)
		if err != nil {
			return nil, err
		}
		if len(got) != len(misses) {
			return nil, fmt.Errorf("embed batch: %d vectors for %d keys: %w", len(got), len(misses), internalerr.ErrInvalidInput)
		}
		fetched = got
	} else {
		fetched = make([][]float64, len(misses))
		for k, key := range misses {
			vec, err := c.next.Embed(ctx, key)
			if errors.Is(err, internalerr.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			fetched[k] = vec
		}
	}

	for k, vec := range fetched {
		if vec == nil {
			c.cache.Add(misses[k], cachedEntry{missing: true})
			continue
		}
		c.cache.Add(misses[k], cachedEntry{vec: clone(vec)})
		out[idx[k]] = vec
	}
	return out, nil
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
