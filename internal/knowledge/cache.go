package knowledge

import (
	"fmt"
	"strconv"

	"github.com/dgraph-io/ristretto"
)

// queryCache memoizes Query results. Keys embed the store generation, so a
// write makes every earlier entry unreachable without an explicit purge.
// Every entry costs 1, so MaxCost is the entry limit.
// A nil *queryCache is a valid, always-missing cache.
type queryCache struct {
	c *ristretto.Cache
}

func newQueryCache(maxEntries int64) (*queryCache, error) {
	if maxEntries <= 0 {
		return nil, fmt.Errorf("%w: cache max entries must be > 0, got %d", ErrInvalidConfig, maxEntries)
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        maxEntries * 10,
		MaxCost:            maxEntries,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create query cache: %w", err)
	}
	return &queryCache{c: c}, nil
}

func queryCacheKey(generation uint64, tag string, topN int) string {
	return strconv.FormatUint(generation, 10) + "\x00" + strconv.Itoa(topN) + "\x00" + tag
}

// get returns a private copy of the cached contents.
func (q *queryCache) get(key string) ([]string, bool) {
	if q == nil {
		return nil, false
	}
	v, ok := q.c.Get(key)
	if !ok {
		return nil, false
	}
	cached, ok := v.([]string)
	if !ok {
		return nil, false
	}
	out := make([]string, len(cached))
	copy(out, cached)
	return out, true
}

func (q *queryCache) set(key string, contents []string) {
	if q == nil {
		return
	}
	stored := make([]string, len(contents))
	copy(stored, contents)
	q.c.Set(key, stored, 1)
}

func (q *queryCache) clear() {
	if q == nil {
		return
	}
	q.c.Clear()
}

func (q *queryCache) close() {
	if q == nil {
		return
	}
	q.c.Close()
}
