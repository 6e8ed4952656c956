package emoji

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"emojigen/internal/adapter"
	"emojigen/internal/cache"
)

// ShortcodeMap maps a variation-stripped hexcode to its shortcodes.
type ShortcodeMap map[string][]string

// ShortcodeProvider is a third-party shortcode database.
type ShortcodeProvider struct {
	Name  string
	URL   string
	Parse func(raw string) (ShortcodeMap, error)
}

// GitHubProvider reads the gemoji database.
var GitHubProvider = ShortcodeProvider{
	Name:  "github",
	URL:   "https://raw.githubusercontent.com/github/gemoji/master/db/emoji.json",
	Parse: parseGemoji,
}

var providers = map[string]ShortcodeProvider{
	GitHubProvider.Name: GitHubProvider,
}

// Providers returns the registered provider names, sorted.
func Providers() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupProviders resolves provider names.
func LookupProviders(names []string) ([]ShortcodeProvider, error) {
	out := make([]ShortcodeProvider, 0, len(names))
	for _, name := range names {
		p, ok := providers[name]
		if !ok {
			return nil, fmt.Errorf("unknown shortcode provider %q (available: %v)", name, Providers())
		}
		out = append(out, p)
	}
	return out, nil
}

type gemojiEntry struct {
	Emoji   string   `json:"emoji"`
	Aliases []string `json:"aliases"`
}

func parseGemoji(raw string) (ShortcodeMap, error) {
	var entries []gemojiEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("invalid gemoji database: %w", err)
	}
	out := make(ShortcodeMap, len(entries))
	for _, e := range entries {
		if e.Emoji == "" || len(e.Aliases) == 0 {
			continue
		}
		hex := StripVariation(HexcodeOf(e.Emoji))
		out[hex] = append(out[hex], e.Aliases...)
	}
	return out, nil
}

// shortcodesSource fetches every provider through the content cache and
// returns provider name → ShortcodeMap.
func shortcodesSource(list []ShortcodeProvider) func(ctx context.Context, rt *adapter.Runtime, vc adapter.VersionContext) (any, error) {
	return func(ctx context.Context, rt *adapter.Runtime, vc adapter.VersionContext) (any, error) {
		out := make(map[string]ShortcodeMap, len(list))
		if len(list) == 0 {
			return out, nil
		}
		if rt == nil || rt.Cache == nil {
			return nil, adapter.ErrNoRuntime
		}
		for _, p := range list {
			parse := p.Parse
			m, err := cache.Fetch(ctx, rt.Cache, p.URL, cache.Options[ShortcodeMap]{
				CacheKey:    "shortcodes_" + p.Name,
				Parser:      func(raw []byte) (ShortcodeMap, error) { return parse(string(raw)) },
				BypassCache: vc.Force,
			})
			if err != nil {
				return nil, fmt.Errorf("shortcode provider %s: %w", p.Name, err)
			}
			out[p.Name] = m
		}
		return out, nil
	}
}
