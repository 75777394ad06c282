package cache_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/dfiru/simulchip/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrFetch(t *testing.T) {
	c, err := cache.New(t.TempDir())
	require.NoError(t, err)
	key := cache.NewKey("cards")
	fetches := 0
	fetch := func(context.Context) ([]byte, error) {
		fetches++

		return []byte(`{"data":[]}`), nil
	}

	first, err := c.GetOrFetch(context.Background(), key, fetch)
	require.NoError(t, err)
	second, err := c.GetOrFetch(context.Background(), key, fetch)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetches, "second call must be served from disk")
	assert.True(t, c.Contains(key))
}

func TestGetOrFetch_FetchFails(t *testing.T) {
	c, err := cache.New(t.TempDir())
	require.NoError(t, err)
	key := cache.NewEntryKey("decklist", "123")

	_, err = c.GetOrFetch(context.Background(), key, func(context.Context) ([]byte, error) {
		return nil, fmt.Errorf("boom")
	})

	require.Error(t, err)
	assert.False(t, c.Contains(key), "failed fetch must not create an entry")
}

func TestGetOrFetch_NoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	c, err := cache.New(dir)
	require.NoError(t, err)

	_, err = c.GetOrFetch(context.Background(), cache.NewKey("packs"), func(context.Context) ([]byte, error) {
		return []byte("[]"), nil
	})
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(dir, ".tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestInvalidate(t *testing.T) {
	c, err := cache.New(t.TempDir())
	require.NoError(t, err)
	key := cache.NewEntryKey("decklist", "42")
	fetches := 0
	fetch := func(context.Context) ([]byte, error) {
		fetches++

		return []byte(fmt.Sprintf(`{"fetch":%d}`, fetches)), nil
	}

	_, err = c.GetOrFetch(context.Background(), key, fetch)
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(key))

	assert.False(t, c.Contains(key))

	_, err = c.GetOrFetch(context.Background(), key, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, fetches, "invalidated entry must be fetched again")
}

func TestInvalidate_MissingEntry(t *testing.T) {
	c, err := cache.New(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, c.Invalidate(cache.NewKey("nothing")))
}

func TestReset(t *testing.T) {
	dir := t.TempDir()
	c, err := cache.New(dir)
	require.NoError(t, err)
	keys := []cache.Key{
		cache.NewKey("cards"),
		cache.NewEntryKey("decklist", "1"),
		cache.NewEntryKey("images", "01001").WithExt("jpg"),
	}
	for _, key := range keys {
		_, err = c.GetOrFetch(context.Background(), key, func(context.Context) ([]byte, error) {
			return []byte("x"), nil
		})
		require.NoError(t, err)
	}

	require.NoError(t, c.Reset())

	for _, key := range keys {
		assert.False(t, c.Contains(key), "entry %s must be gone", key)
	}
	_, err = os.Stat(dir)
	assert.NoError(t, err, "cache dir itself must survive a reset")
}

func TestStats(t *testing.T) {
	c, err := cache.New(t.TempDir())
	require.NoError(t, err)

	stats, err := c.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Entries)
	assert.Equal(t, int64(0), stats.SizeBytes)

	_, err = c.GetOrFetch(context.Background(), cache.NewKey("cards"), func(context.Context) ([]byte, error) {
		return make([]byte, 1024), nil
	})
	require.NoError(t, err)
	_, err = c.GetOrFetch(context.Background(), cache.NewEntryKey("decklist", "7"), func(context.Context) ([]byte, error) {
		return make([]byte, 512), nil
	})
	require.NoError(t, err)

	stats, err = c.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, int64(1536), stats.SizeBytes)
	assert.InDelta(t, 1536.0/(1024*1024), stats.SizeMB(), 0.0001)
}

func TestEntryPath_StaysInsideCacheDir(t *testing.T) {
	dir := t.TempDir()
	c, err := cache.New(dir)
	require.NoError(t, err)

	cases := []struct {
		name string
		key  cache.Key
	}{
		{name: "parent traversal in id", key: cache.NewEntryKey("decklist", "../../etc/passwd")},
		{name: "parent traversal in kind", key: cache.NewKey("../escape")},
		{name: "empty kind", key: cache.Key{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.EntryPath(tc.key)

			assert.Error(t, err)
		})
	}
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "cards", cache.NewKey("cards").String())
	assert.Equal(t, "decklist/123", cache.NewEntryKey("decklist", "123").String())
}
