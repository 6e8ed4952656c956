package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"emojigen/internal/charset"
	"emojigen/internal/logging"
)

// Options controls a single Fetch call.
type Options[T any] struct {
	// CacheKey defaults to KeyFromURL(url).
	CacheKey string
	// Parser turns the raw response body into the cached value.
	Parser func(raw []byte) (T, error)
	// BypassCache skips both lookups and always fetches live.
	BypassCache bool
	// TTL is relative to now; zero uses the cache default, NeverExpire disables expiry.
	TTL time.Duration
	// Encoding is the text encoding used on disk for non-binary values (default utf-8).
	Encoding string
}

// Fetch returns the parsed value for url, reading through the hot layer and
// the durable store before falling back to an HTTP GET. Concurrent misses for
// the same cache key share one upstream request.
func Fetch[T any](ctx context.Context, c *Cache, url string, opts Options[T]) (T, error) {
	var zero T
	if opts.Parser == nil {
		return zero, ErrNilParser
	}

	key := opts.CacheKey
	if key == "" {
		key = KeyFromURL(url)
	}

	if !opts.BypassCache {
		if v, ok := lookup[T](c, key); ok {
			return v, nil
		}
	}

	// Bypass calls never share a flight with callers that may be served
	// from the hot layer.
	flightKey := key
	if opts.BypassCache {
		flightKey = "bypass:" + key
	}

	// The flight outlives any single caller: it runs detached from the
	// starting caller's cancellation and is bounded by the cache timeout.
	flightCtx := context.WithoutCancel(ctx)
	ch := c.inflight.DoChan(flightKey, func() (any, error) {
		// A flight that finished between our lookup and DoChan already populated the hot layer.
		if !opts.BypassCache {
			if v, ok := c.hotGet(key); ok {
				return v, nil
			}
		}
		return populate(flightCtx, c, url, key, opts)
	})

	var v any
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		if res.Shared {
			logging.CacheDebug("Joined in-flight fetch: %s", key)
		}
		v = res.Val
	}

	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache: entry %s holds %T, not %T", key, v, zero)
	}
	return out, nil
}

func lookup[T any](c *Cache, key string) (T, bool) {
	var zero T

	if v, ok := c.hotGet(key); ok {
		if out, ok := v.(T); ok {
			logging.CacheDebug("Hot hit: %s", key)
			return out, true
		}
	}

	data, meta, ok, err := c.ReadCache(key)
	if err != nil {
		logging.CacheWarn("Durable read failed for %s: %v", key, err)
		return zero, false
	}
	if !ok {
		logging.CacheDebug("Miss: %s", key)
		return zero, false
	}

	out, err := decodeValue[T](data, meta)
	if err != nil {
		logging.CacheWarn("Undecodable entry %s, refetching: %v", key, err)
		return zero, false
	}

	c.hotSet(key, out, meta.TTL)
	logging.CacheDebug("Durable hit: %s", key)
	return out, true
}

func populate[T any](ctx context.Context, c *Cache, url, key string, opts Options[T]) (any, error) {
	raw, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	parsed, err := opts.Parser(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", url, err)
	}

	expires := c.expiry(opts.TTL)
	data, enc, err := encodeValue(parsed, opts.Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cache entry %s: %w", key, err)
	}
	// A failed durable write only costs a refetch next run.
	if err := c.WriteCache(key, data, Meta{Encoding: enc, TTL: expires}); err != nil {
		logging.CacheWarn("%v", err)
	}

	c.hotSet(key, parsed, expires)
	logging.Cache("Stored %s (%d bytes)", key, len(data))
	return parsed, nil
}

func (c *Cache) get(ctx context.Context, url string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	logging.FetchDebug("GET %s", url)
	timer := logging.StartTimer(logging.CategoryFetch, "GET "+url)
	defer timer.StopWithThreshold(10 * time.Second)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		logging.FetchError("GET %s failed: %v", url, err)
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logging.FetchError("GET %s returned %d", url, resp.StatusCode)
		return nil, &FetchError{URL: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Status: resp.StatusCode, Err: err}
	}
	return body, nil
}

// encodeValue serializes a cache value. []byte is stored verbatim with no
// encoding; strings are stored as text; everything else as JSON text.
func encodeValue(v any, encoding string) ([]byte, *string, error) {
	var text []byte
	switch val := v.(type) {
	case []byte:
		return val, nil, nil
	case string:
		text = []byte(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return nil, nil, err
		}
		text = b
	}

	if encoding == "" {
		encoding = "utf-8"
	}
	out, err := charset.Encode(encoding, text)
	if err != nil {
		return nil, nil, err
	}
	return out, &encoding, nil
}

func decodeValue[T any](data []byte, meta Meta) (T, error) {
	var out T

	if _, binary := any(out).([]byte); binary {
		return any(data).(T), nil
	}

	if meta.Encoding != nil {
		decoded, err := charset.Decode(*meta.Encoding, data)
		if err != nil {
			return out, err
		}
		data = decoded
	}

	if _, text := any(out).(string); text {
		return any(string(data)).(T), nil
	}

	if err := json.Unmarshal(data, &out); err != nil {
		return out, err
	}
	return out, nil
}
