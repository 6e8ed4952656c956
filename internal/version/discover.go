package version

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"emojigen/internal/logging"
)

var versionDirPattern = regexp.MustCompile(`^(\d+\.\d+)/?$`)

// Lister discovers published emoji versions from the upstream emoji/
// directory index.
type Lister struct {
	BaseURL   string
	Client    *http.Client
	UserAgent string
}

// List fetches {BaseURL}/emoji/ and returns one record per version directory
// that has a Unicode mapping, sorted ascending.
func (l *Lister) List(ctx context.Context) ([]EmojiSpecRecord, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}

	url := strings.TrimRight(l.BaseURL, "/") + "/emoji/"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if l.UserAgent != "" {
		req.Header.Set("User-Agent", l.UserAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: HTTP %d", url, resp.StatusCode)
	}

	dirs, err := versionDirs(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse index %s: %w", url, err)
	}

	records := make([]EmojiSpecRecord, 0, len(dirs))
	for _, v := range dirs {
		uv, err := UnicodeFor(v)
		if err != nil {
			logging.VersionDebug("Skipping %s: %v", v, err)
			continue
		}
		records = append(records, EmojiSpecRecord{EmojiVersion: v, UnicodeVersion: uv})
	}
	sortRecords(records)

	logging.Version("Discovered %d emoji versions at %s", len(records), url)
	return records, nil
}

// versionDirs walks an Apache-style directory listing and collects hrefs
// that look like "15.0/".
func versionDirs(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				if m := versionDirPattern.FindStringSubmatch(attr.Val); m != nil && !seen[m[1]] {
					seen[m[1]] = true
					out = append(out, m[1])
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return out, nil
}
