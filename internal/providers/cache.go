package providers

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

// CachedSearcher memoizes search results per version and query.
type CachedSearcher struct {
	next  Searcher
	cache *cache.Cache
	log   zerolog.Logger
}

type cachedResult struct {
	records []Record
	found   bool
}

func NewCachedSearcher(next Searcher, ttl time.Duration, log zerolog.Logger) *CachedSearcher {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedSearcher{next: next, cache: cache.New(ttl, 2*ttl), log: log}
}

func (c *CachedSearcher) Search(ctx context.Context, version, query string) ([]Record, error) {
	key := cacheKey(version, query)
	if v, ok := c.cache.Get(key); ok {
		hit := v.(cachedResult)
		c.log.Debug().Str("key", key).Msg("search cache hit")
		return cloneRecords(hit.records, hit.found), nil
	}

	records, err := c.next.Search(ctx, version, query)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, cachedResult{records: cloneRecords(records, records != nil), found: records != nil})
	return records, nil
}

func (c *CachedSearcher) Len() int {
	return c.cache.ItemCount()
}

func cacheKey(version, query string) string {
	return normalizeVersion(version) + ":" + strings.ToLower(strings.TrimSpace(query))
}

func cloneRecords(records []Record, found bool) []Record {
	if !found {
		return nil
	}
	out := make([]Record, len(records))
	copy(out, records)
	return out
}
