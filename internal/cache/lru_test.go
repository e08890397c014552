package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestCache(size int, ttl time.Duration) (*LRUCache[string], *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](size, ttl)
	c.now = clock.now
	return c, clock
}

func TestLRUGetSet(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)

	_, ok := c.Get("all")
	assert.False(t, ok)

	c.Set("all", "bar")
	v, ok := c.Get("all")
	require.True(t, ok)
	assert.Equal(t, "bar", v)

	c.Set("all", "bar2")
	v, _ = c.Get("all")
	assert.Equal(t, "bar2", v)
	assert.Equal(t, 1, c.Size())

	assert.Equal(t, Stats{Hits: 2, Misses: 1}, c.Stats())
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)

	c.Set("INFP", "a")
	c.Set("ENTJ", "b")
	_, _ = c.Get("INFP")
	c.Set("ESTP", "c")

	_, ok := c.Get("ENTJ")
	assert.False(t, ok, "ENTJ should have been evicted")
	_, ok = c.Get("INFP")
	assert.True(t, ok)
	_, ok = c.Get("ESTP")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Size())
}

func TestLRUExpiry(t *testing.T) {
	c, clock := newTestCache(4, time.Minute)

	c.Set("INFP", "a")
	c.Set("ENTJ", "b")
	clock.t = clock.t.Add(2 * time.Minute)
	c.Set("ESTP", "c")

	_, ok := c.Get("INFP")
	assert.False(t, ok)
	assert.Equal(t, 1, c.CleanExpired(), "ENTJ still stored until cleaned")
	assert.Equal(t, 1, c.Size())
}

func TestLRUGetOrCompute(t *testing.T) {
	c, _ := newTestCache(4, time.Minute)

	calls := 0
	compute := func() (string, error) {
		calls++
		return "view", nil
	}

	v, hit, err := c.GetOrCompute("all", compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "view", v)

	v, hit, err = c.GetOrCompute("all", compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "view", v)
	assert.Equal(t, 1, calls)

	boom := errors.New("boom")
	_, _, err = c.GetOrCompute("XXXX", func() (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
	_, ok := c.Get("XXXX")
	assert.False(t, ok, "errors must not be cached")
}

func TestLRUDelete(t *testing.T) {
	c, _ := newTestCache(4, time.Minute)
	c.Set("INFP", "a")
	c.Delete("INFP")
	c.Delete("missing")
	assert.Equal(t, 0, c.Size())
}

func TestManagerCleanNow(t *testing.T) {
	c, clock := newTestCache(4, time.Minute)
	c.Set("INFP", "a")
	c.Set("ENTJ", "b")
	clock.t = clock.t.Add(time.Hour)

	m := NewManager(nil)
	m.Register(c)
	assert.Equal(t, 2, m.CleanNow())
	assert.Equal(t, 0, c.Size())
}

func TestManagerStartStop(t *testing.T) {
	m := NewManager(nil)
	m.Register(NewLRUCache[int](1, time.Minute))
	m.StartCleanup(time.Millisecond)
	m.StartCleanup(time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	m.Stop()
	m.Stop()
}

func TestManagerStopWithoutStart(t *testing.T) {
	m := NewManager(nil)
	done := make(chan struct{})
	go func() {
		m.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked without StartCleanup")
	}
}
