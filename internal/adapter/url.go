package adapter

import (
	"path"
	"strings"

	"emojigen/internal/cache"
)

// URLSpec is one upstream resource a transformer needs.
type URLSpec struct {
	URL string
	// CacheKey defaults to cache.KeyFromURL(URL).
	CacheKey string
	// Key names the payload inside the transformer (e.g. "sequences", "zwj");
	// defaults to the URL's file name without extension.
	Key string
}

// URL is shorthand for a URLSpec with derived keys.
func URL(u string) URLSpec {
	return URLSpec{URL: u}
}

// URLWithKey is shorthand for a URLSpec with an explicit key.
func URLWithKey(u, key string) URLSpec {
	return URLSpec{URL: u, Key: key}
}

func (s URLSpec) normalized() URLSpec {
	if s.CacheKey == "" {
		s.CacheKey = cache.KeyFromURL(s.URL)
	}
	if s.Key == "" {
		s.Key = keyFromURL(s.URL)
	}
	return s
}

func keyFromURL(u string) string {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	base := path.Base(strings.TrimRight(u, "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

func normalizeURLs(specs []URLSpec) []URLSpec {
	out := make([]URLSpec, 0, len(specs))
	for _, s := range specs {
		if s.URL == "" {
			continue
		}
		out = append(out, s.normalized())
	}
	return out
}
