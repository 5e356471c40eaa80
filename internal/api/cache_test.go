package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResponseCache_TTL(t *testing.T) {
	c := NewResponseCache(4, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Put("/v1/campuses?", []byte(`[]`))
	assert.Equal(t, []byte(`[]`), c.Get("/v1/campuses?"))

	now = now.Add(2 * time.Minute)
	assert.Nil(t, c.Get("/v1/campuses?"))
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestResponseCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewResponseCache(2, time.Minute)
	c.Put("a", []byte("1"))
	c.Put("b", []byte("2"))
	c.Get("a")
	c.Put("c", []byte("3"))

	assert.NotNil(t, c.Get("a"))
	assert.Nil(t, c.Get("b"))
	assert.NotNil(t, c.Get("c"))
}

func TestResponseCache_Invalidate(t *testing.T) {
	c := NewResponseCache(8, time.Minute)
	c.Put("/v1/metrics?a", []byte("1"))
	c.Put("/v1/metrics?b", []byte("2"))
	c.Put("/v1/campuses?", []byte("3"))

	assert.Equal(t, 2, c.Invalidate("/v1/metrics"))
	assert.Nil(t, c.Get("/v1/metrics?a"))
	assert.NotNil(t, c.Get("/v1/campuses?"))
	assert.Equal(t, 1, c.Invalidate(""))
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestResponseCache_Stats(t *testing.T) {
	c := NewResponseCache(0, time.Minute)
	c.Put("k", []byte("v"))
	c.Get("k")
	c.Get("missing")

	s := c.Stats()
	assert.Equal(t, 1, s.MaxEntries)
	assert.Equal(t, int64(1), s.Hits)
	assert.Equal(t, int64(1), s.Misses)
	assert.InDelta(t, 0.5, s.HitRate, 1e-9)
}
