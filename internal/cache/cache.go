// Package cache implements the durable content cache used for upstream
// datasets. Each entry is a value file plus a JSON sidecar ({key}.meta)
// recording the text encoding and absolute expiry, fronted by an in-memory
// hot layer. Fetch is the only entry point callers need: it reads through
// both layers and populates them on a miss.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"emojigen/internal/logging"
)

// NeverExpires is the meta TTL for entries without expiry.
const NeverExpires int64 = -1

// NeverExpire can be passed as Options.TTL to store an entry without expiry.
const NeverExpire time.Duration = -1

// Meta is the sidecar record stored next to every value file.
type Meta struct {
	// Encoding is the text encoding of the value file; nil for binary payloads.
	Encoding *string `json:"encoding"`
	// TTL is the absolute expiry in Unix milliseconds, or NeverExpires.
	TTL int64 `json:"ttl"`
}

type hotEntry struct {
	value   any
	expires int64
}

// Cache is a two-layer (memory + disk) content cache.
// It is safe for concurrent use.
type Cache struct {
	dir        string
	client     *http.Client
	userAgent  string
	timeout    time.Duration
	defaultTTL time.Duration
	now        func() time.Time

	mu       sync.RWMutex
	hot      map[string]hotEntry
	inflight singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithHTTPClient sets the client used for upstream requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Cache) { c.client = client }
}

// WithUserAgent sets the User-Agent header sent upstream.
func WithUserAgent(ua string) Option {
	return func(c *Cache) { c.userAgent = ua }
}

// WithTimeout bounds every upstream request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Cache) { c.timeout = d }
}

// WithDefaultTTL sets the TTL used when Options.TTL is zero.
// A zero default means entries never expire.
func WithDefaultTTL(d time.Duration) Option {
	return func(c *Cache) { c.defaultTTL = d }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a cache rooted at dir.
func New(dir string, opts ...Option) *Cache {
	c := &Cache{
		dir:       dir,
		client:    http.DefaultClient,
		userAgent: "emojigen/1.0",
		now:       time.Now,
		hot:       make(map[string]hotEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dir returns the cache folder.
func (c *Cache) Dir() string {
	return c.dir
}

func (c *Cache) paths(key string) (value, meta string) {
	value = filepath.Join(c.dir, key)
	return value, value + ".meta"
}

func (c *Cache) expired(ttl int64) bool {
	return ttl != NeverExpires && ttl <= c.now().UnixMilli()
}

// expiry turns a relative TTL into the absolute meta TTL.
func (c *Cache) expiry(ttl time.Duration) int64 {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	if ttl <= 0 {
		return NeverExpires
	}
	return c.now().Add(ttl).UnixMilli()
}

// ReadCache returns the stored payload for key. A missing value file, a
// missing meta file or an expired meta all report ok=false; expired entries
// are deleted before returning.
func (c *Cache) ReadCache(key string) (data []byte, meta Meta, ok bool, err error) {
	valuePath, metaPath := c.paths(key)

	rawMeta, err := os.ReadFile(metaPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, Meta{}, false, nil
		}
		return nil, Meta{}, false, fmt.Errorf("failed to read cache meta %s: %w", key, err)
	}

	if err := json.Unmarshal(rawMeta, &meta); err != nil {
		logging.CacheWarn("Corrupt meta for %s, evicting: %v", key, err)
		c.remove(key)
		return nil, Meta{}, false, nil
	}

	if c.expired(meta.TTL) {
		logging.CacheDebug("Expired: %s", key)
		c.remove(key)
		return nil, Meta{}, false, nil
	}

	data, err = os.ReadFile(valuePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, Meta{}, false, nil
		}
		return nil, Meta{}, false, fmt.Errorf("failed to read cache value %s: %w", key, err)
	}

	return data, meta, true, nil
}

// WriteCache stores data and its meta record, creating the cache folder
// as needed.
func (c *Cache) WriteCache(key string, data []byte, meta Meta) error {
	valuePath, metaPath := c.paths(key)

	if err := os.MkdirAll(filepath.Dir(valuePath), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	rawMeta, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal cache meta: %w", err)
	}

	if err := os.WriteFile(valuePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache value %s: %w", key, err)
	}
	if err := os.WriteFile(metaPath, rawMeta, 0644); err != nil {
		return fmt.Errorf("failed to write cache meta %s: %w", key, err)
	}
	return nil
}

func (c *Cache) remove(key string) {
	valuePath, metaPath := c.paths(key)
	for _, p := range []string{valuePath, metaPath} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			logging.CacheWarn("Failed to evict %s: %v", p, err)
		}
	}
}

func (c *Cache) hotGet(key string) (any, bool) {
	c.mu.RLock()
	entry, ok := c.hot[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.expired(entry.expires) {
		c.mu.Lock()
		delete(c.hot, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.value, true
}

func (c *Cache) hotSet(key string, value any, expires int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hot[key] = hotEntry{value: value, expires: expires}
}

// Len returns the number of entries in the hot layer.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.hot)
}
