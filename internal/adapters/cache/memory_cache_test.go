package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestMemoryCache(capacity int) (*MemoryCache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)}
	return NewMemoryCache(time.Hour, capacity, zap.NewNop(), WithClock(clock.Now)), clock
}

func TestMemoryCache_PutThenGet(t *testing.T) {
	c, _ := newTestMemoryCache(10)
	ctx := context.Background()

	for _, verdict := range []bool{true, false} {
		c.Put(ctx, "some text", verdict)
		got, ok := c.Get(ctx, "some text")
		assert.True(t, ok)
		assert.Equal(t, verdict, got)
	}
}

func TestMemoryCache_KeyIsExactText(t *testing.T) {
	c, _ := newTestMemoryCache(10)
	ctx := context.Background()

	c.Put(ctx, "Hello World", true)

	_, ok := c.Get(ctx, "hello world")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "Hello World ")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "Hello World")
	assert.True(t, ok)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c, clock := newTestMemoryCache(10)
	ctx := context.Background()

	c.Put(ctx, "text", true)

	clock.Advance(time.Hour)
	_, ok := c.Get(ctx, "text")
	assert.True(t, ok, "entry is valid at exactly ttl")

	clock.Advance(time.Nanosecond)
	_, ok = c.Get(ctx, "text")
	assert.False(t, ok, "entry expires once ttl has passed despite the earlier read")
	assert.Equal(t, 0, c.Len(), "expired entry is removed on read")
}

func TestMemoryCache_PutRefreshesTimestamp(t *testing.T) {
	c, clock := newTestMemoryCache(10)
	ctx := context.Background()

	c.Put(ctx, "text", true)
	clock.Advance(50 * time.Minute)
	c.Put(ctx, "text", false)
	clock.Advance(50 * time.Minute)

	got, ok := c.Get(ctx, "text")
	assert.True(t, ok)
	assert.False(t, got)
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestMemoryCache(2)
	ctx := context.Background()

	c.Put(ctx, "a", true)
	c.Put(ctx, "b", true)
	_, _ = c.Get(ctx, "a")
	c.Put(ctx, "c", true)

	_, okA := c.Get(ctx, "a")
	_, okB := c.Get(ctx, "b")
	_, okC := c.Get(ctx, "c")

	assert.True(t, okA)
	assert.False(t, okB, "b was least recently used")
	assert.True(t, okC)
	assert.Equal(t, 2, c.Len())
}

func TestMemoryCache_Unbounded(t *testing.T) {
	c, _ := newTestMemoryCache(0)
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c", "d"} {
		c.Put(ctx, k, true)
	}
	assert.Equal(t, 4, c.Len())
}
