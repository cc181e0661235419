package location

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var berlin = Resolved(52.52, 13.405, "Berlin", "Germany", "DE")

func newTestCache(t *testing.T, now time.Time) *Cache {
	t.Helper()
	c := NewCache(filepath.Join(t.TempDir(), "nested", "location.toml"), DefaultTTL, zaptest.NewLogger(t))
	c.now = func() time.Time { return now }
	return c
}

func TestCacheLoadMissingFile(t *testing.T) {
	c := newTestCache(t, time.Now())

	_, ok := c.Load()
	assert.False(t, ok)
}

func TestCacheSaveAndLoad(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	c := newTestCache(t, now)

	require.NoError(t, c.Save(berlin))

	cached, ok := c.Load()
	require.True(t, ok)
	assert.Equal(t, berlin, cached.Location)
	assert.True(t, now.Equal(cached.FetchedAt))
	assert.True(t, c.IsFresh(cached))
}

func TestCacheFileIsTOML(t *testing.T) {
	c := newTestCache(t, time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC))
	require.NoError(t, c.Save(berlin))

	data, err := os.ReadFile(c.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[location]")
	assert.Contains(t, string(data), `city = "Berlin"`)
	assert.Contains(t, string(data), "fetched_at = 2026-10-15T09:30:00Z")
}

func TestCacheSaveLeavesNoTemporaryFiles(t *testing.T) {
	c := newTestCache(t, time.Now())

	require.NoError(t, c.Save(berlin))
	require.NoError(t, c.Save(Resolved(48.85, 2.35, "Paris", "France", "FR")))

	entries, err := os.ReadDir(filepath.Dir(c.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "location.toml", entries[0].Name())

	cached, ok := c.Load()
	require.True(t, ok)
	assert.Equal(t, "Paris", cached.Location.City)
}

func TestCacheCorruptFileIsMiss(t *testing.T) {
	c := newTestCache(t, time.Now())
	require.NoError(t, os.MkdirAll(filepath.Dir(c.Path()), 0o755))

	for _, content := range []string{
		"this is = = not toml",
		"fetched_at = 2026-10-15T09:30:00Z\n",
		"[location]\ncity = \"Berlin\"\n",
		"",
	} {
		require.NoError(t, os.WriteFile(c.Path(), []byte(content), 0o600))

		_, ok := c.Load()
		assert.False(t, ok, "content %q", content)
	}
}

func TestCacheFreshness(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	c := newTestCache(t, now)

	assert.True(t, c.IsFresh(Cached{FetchedAt: now.Add(-23 * time.Hour), Location: berlin}))
	assert.False(t, c.IsFresh(Cached{FetchedAt: now.Add(-24 * time.Hour), Location: berlin}))
	assert.False(t, c.IsFresh(Cached{FetchedAt: now.Add(-25 * time.Hour), Location: berlin}))
}
