package cache

import (
	"net/url"
	"strings"
)

// KeyFromURL derives a filesystem-safe cache key from a URL.
//
// Scheme, port, query string and fragment are dropped; path separators and
// hyphens become underscores. The mapping is deterministic, so two URLs that
// differ only in query or fragment share a key.
func KeyFromURL(raw string) string {
	host, path := splitURL(raw)

	var b strings.Builder
	b.Grow(len(host) + len(path))
	b.WriteString(host)
	if host != "" && path != "" && !strings.HasPrefix(path, "/") {
		b.WriteByte('/')
	}
	b.WriteString(path)

	key := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '_':
			return r
		default:
			return '_'
		}
	}, b.String())

	return strings.Trim(key, "_")
}

func splitURL(raw string) (host, path string) {
	u, err := url.Parse(raw)
	if err == nil && u.Host != "" {
		return u.Hostname(), u.Path
	}

	// No scheme (or unparsable): strip what we can by hand.
	s := raw
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	host, path, _ = strings.Cut(s, "/")
	if i := strings.LastIndex(host, ":"); i >= 0 {
		host = host[:i]
	}
	return host, path
}
