package pipeline

import (
	"container/list"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// ResultCache holds extracted text keyed by CacheKey, evicting the least
// recently used entry once full. A nil cache or one with no capacity
// never stores anything.
type ResultCache struct {
	mu      sync.Mutex
	max     int
	entries map[uint64]*list.Element
	order   *list.List

	hits   atomic.Int64
	misses atomic.Int64
}

type cacheEntry struct {
	key  uint64
	text string
}

// CacheStats reports cache effectiveness.
type CacheStats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

func NewResultCache(maxEntries int) *ResultCache {
	return &ResultCache{
		max:     maxEntries,
		entries: make(map[uint64]*list.Element),
		order:   list.New(),
	}
}

// CacheKey identifies one extraction: the document bytes, the format implied
// by its extension, and the strip flag all change the output.
func CacheKey(data []byte, ext string, strip bool) uint64 {
	d := xxhash.New()
	_, _ = d.Write(data)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(strings.ToLower(ext))
	if strip {
		_, _ = d.Write([]byte{1})
	} else {
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

func (c *ResultCache) Get(key uint64) (string, bool) {
	if c == nil || c.max <= 0 {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		return "", false
	}
	c.hits.Add(1)
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).text, true
}

func (c *ResultCache) Put(key uint64, text string) {
	if c == nil || c.max <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).text = text
		c.order.MoveToFront(el)
		return
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, text: text})
	for c.order.Len() > c.max {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

func (c *ResultCache) Stats() CacheStats {
	if c == nil {
		return CacheStats{}
	}
	c.mu.Lock()
	n := len(c.entries)
	c.mu.Unlock()
	return CacheStats{Entries: n, Hits: c.hits.Load(), Misses: c.misses.Load()}
}
