package location

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/renameio/v2"
	"go.uber.org/zap"
)

// DefaultTTL is how long a resolved location stays usable.
const DefaultTTL = 24 * time.Hour

// Cached is a resolved location and the time it was obtained.
type Cached struct {
	FetchedAt time.Time `toml:"fetched_at"`
	Location  Location  `toml:"location"`
}

// Cache persists the last resolved location in a single TOML file. Reads tolerate a
// missing or corrupt file; writes replace the file atomically.
type Cache struct {
	path   string
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

func NewCache(path string, ttl time.Duration, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		path:   path,
		ttl:    ttl,
		now:    time.Now,
		logger: logger.Named("location-cache"),
	}
}

func (c *Cache) Path() string {
	return c.path
}

// Load returns the cached entry, or false when the file is absent, unreadable or does
// not parse into a resolved location.
func (c *Cache) Load() (Cached, bool) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("Location cache unreadable, ignoring", zap.String("path", c.path), zap.Error(err))
		}
		return Cached{}, false
	}

	var cached Cached
	if _, err := toml.Decode(string(data), &cached); err != nil {
		c.logger.Warn("Location cache corrupt, ignoring", zap.String("path", c.path), zap.Error(err))
		return Cached{}, false
	}

	if cached.FetchedAt.IsZero() || cached.Location.IsZero() || cached.Location.IsExplicit() {
		c.logger.Warn("Location cache incomplete, ignoring", zap.String("path", c.path))
		return Cached{}, false
	}

	return cached, true
}

// Save records loc as fetched now. The entry is written to a temporary file in the same
// directory and renamed over the cache file.
func (c *Cache) Save(loc Location) error {
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	entry := Cached{FetchedAt: c.now().UTC(), Location: loc}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(entry); err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}
	if err := renameio.WriteFile(c.path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("replacing cache file: %w", err)
	}

	c.logger.Debug("Location cached",
		zap.String("path", c.path),
		zap.String("city", loc.City),
		zap.Time("fetched_at", entry.FetchedAt))

	return nil
}

// IsFresh reports whether less than the TTL has elapsed since cached was fetched.
func (c *Cache) IsFresh(cached Cached) bool {
	return c.now().Sub(cached.FetchedAt) < c.ttl
}
