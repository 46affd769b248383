package unminify

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
)

// Cache is a size-bounded LRU of formatted results with a per-entry TTL. Keys are a digest of
// the format and the input, so large payloads are not held twice.
type Cache struct {
	lru    *expirable.LRU[string, string]
	hits   prometheus.Counter
	misses prometheus.Counter
}

// NewCache creates a cache holding at most size entries for ttl each. The hit and miss counters
// are registered on reg when it is non-nil.
func NewCache(size int, ttl time.Duration, reg prometheus.Registerer) (*Cache, error) {
	c := &Cache{
		lru: expirable.NewLRU[string, string](size, nil, ttl),
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "unminify_cache_hits_total",
			Help: "Unminify requests answered from the result cache.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "unminify_cache_misses_total",
			Help: "Unminify requests that had to run a formatter.",
		}),
	}
	if reg != nil {
		for _, col := range []prometheus.Collector{c.hits, c.misses} {
			if err := reg.Register(col); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

func cacheKey(f Format, code string) string {
	sum := sha256.Sum256([]byte(string(f) + "\x00" + code))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached output for code formatted as f.
func (c *Cache) Get(f Format, code string) (string, bool) {
	out, ok := c.lru.Get(cacheKey(f, code))
	if ok {
		c.hits.Inc()
		return out, true
	}
	c.misses.Inc()
	return "", false
}

// Set stores the output for code formatted as f.
func (c *Cache) Set(f Format, code, output string) {
	c.lru.Add(cacheKey(f, code), output)
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}
