package cache

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/catalog-scraper/internal/catalog"
)

func TestKeyIsStableAndPrefixed(t *testing.T) {
	t.Parallel()

	a := Key("https://example.com/shop/page/1/")
	b := Key("https://example.com/shop/page/1/")
	c := Key("https://example.com/shop/page/2/")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, keyPrefix))
	assert.Len(t, strings.TrimPrefix(a, keyPrefix), 64)
}

func TestMemoryExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := NewMemory()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mem.now = func() time.Time { return now }

	require.NoError(t, mem.Set(ctx, "k", []byte("body"), time.Minute))
	require.NoError(t, mem.Set(ctx, "forever", []byte("x"), 0))

	body, ok, err := mem.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "body", string(body))

	body[0] = 'B'
	again, _, _ := mem.Get(ctx, "k")
	assert.Equal(t, "body", string(again), "callers get a copy")

	now = now.Add(time.Minute)
	_, ok, err = mem.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, mem.Len())

	_, ok, _ = mem.Get(ctx, "forever")
	assert.True(t, ok)

	_, ok, _ = mem.Get(ctx, "missing")
	assert.False(t, ok)
}

type stubFetcher struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *stubFetcher) Fetch(_ context.Context, req catalog.FetchRequest) (catalog.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return catalog.Page{}, s.err
	}
	return catalog.Page{URL: req.URL, StatusCode: 200, Body: []byte("<html>" + req.URL + "</html>")}, nil
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("cache down")
}

func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("cache down")
}

func TestFetcherServesFromCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	inner := &stubFetcher{}
	f := NewFetcher(inner, NewMemory(), time.Minute, nil)
	req := catalog.FetchRequest{URL: "https://example.com/shop/page/1/"}

	first, err := f.Fetch(ctx, req)
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := f.Fetch(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Body, second.Body)
	assert.Equal(t, 200, second.StatusCode)
	assert.Equal(t, 1, inner.calls)
}

func TestFetcherDoesNotCacheFailures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	inner := &stubFetcher{err: errors.New("boom")}
	mem := NewMemory()
	f := NewFetcher(inner, mem, time.Minute, nil)
	req := catalog.FetchRequest{URL: "https://example.com/shop/page/1/"}

	_, err := f.Fetch(ctx, req)
	require.Error(t, err)
	_, err = f.Fetch(ctx, req)
	require.Error(t, err)
	assert.Equal(t, 2, inner.calls)
	assert.Zero(t, mem.Len())
}

func TestFetcherIgnoresCacheErrors(t *testing.T) {
	t.Parallel()

	inner := &stubFetcher{}
	f := NewFetcher(inner, brokenCache{}, time.Minute, nil)

	page, err := f.Fetch(context.Background(), catalog.FetchRequest{URL: "https://example.com"})
	require.NoError(t, err)
	assert.False(t, page.FromCache)
	assert.Equal(t, 1, inner.calls)
}

func TestDialRedisRejectsBadURL(t *testing.T) {
	t.Parallel()

	_, err := DialRedis(context.Background(), "not-a-redis-url")
	require.Error(t, err)
}

// TestRedisRoundTrip runs against a live server when SCRAPER_TEST_REDIS_URL is set.
func TestRedisRoundTrip(t *testing.T) {
	rawURL := os.Getenv("SCRAPER_TEST_REDIS_URL")
	if rawURL == "" {
		t.Skip("SCRAPER_TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	r, err := DialRedis(ctx, rawURL)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	key := Key("https://example.com/test/" + time.Now().Format(time.RFC3339Nano))
	_, ok, err := r.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Set(ctx, key, []byte("cached"), time.Minute))
	body, ok, err := r.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "cached", string(body))
}
