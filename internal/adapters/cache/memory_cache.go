package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/mikey/chainblog/internal/core"
	"go.uber.org/zap"
)

// MemoryCache is a bounded in-memory ResultCache. Entries expire lazily on
// read once older than ttl; the least recently used entry is evicted when
// capacity is exceeded.
type MemoryCache struct {
	mu       sync.Mutex
	entries  map[string]*list.Element
	order    *list.List
	ttl      time.Duration
	capacity int
	logger   *zap.Logger
	now      func() time.Time
}

type memoryItem struct {
	key   string
	entry core.CacheEntry
}

// Option configures a cache
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func applyOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewMemoryCache creates a new in-memory cache. A capacity <= 0 means unbounded.
func NewMemoryCache(ttl time.Duration, capacity int, logger *zap.Logger, opts ...Option) *MemoryCache {
	o := applyOptions(opts)
	return &MemoryCache{
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		ttl:      ttl,
		capacity: capacity,
		logger:   logger,
		now:      o.now,
	}
}

// Get returns the cached verdict for text if it has not expired
func (c *MemoryCache) Get(_ context.Context, text string) (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[text]
	if !ok {
		return false, false
	}

	item := elem.Value.(*memoryItem)
	if !item.entry.Valid(c.now(), c.ttl) {
		c.order.Remove(elem)
		delete(c.entries, text)
		c.logger.Debug("Evicted expired cache entry", zap.Int("text_length", len(text)))
		return false, false
	}

	c.order.MoveToFront(elem)
	return item.entry.Verdict, true
}

// Put stores the verdict for text with the current time
func (c *MemoryCache) Put(_ context.Context, text string, verdict bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := core.CacheEntry{Verdict: verdict, StoredAt: c.now()}
	if elem, ok := c.entries[text]; ok {
		elem.Value.(*memoryItem).entry = entry
		c.order.MoveToFront(elem)
		return
	}

	c.entries[text] = c.order.PushFront(&memoryItem{key: text, entry: entry})

	if c.capacity > 0 && c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*memoryItem).key)
		c.logger.Debug("Evicted least recently used cache entry", zap.Int("capacity", c.capacity))
	}
}

// Len returns the number of stored entries, expired ones included
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
