package adapter

import (
	"emojigen/internal/cache"
)

// VersionContext identifies the dataset version a run targets.
type VersionContext struct {
	EmojiVersion   string
	UnicodeVersion string
	// Force bypasses the content cache for every fetch in the run.
	Force bool
	// Key is the URLSpec key of the payload being parsed or transformed;
	// empty outside per-URL stages.
	Key string
}

// WithKey returns a copy of vc scoped to one URL.
func (vc VersionContext) WithKey(key string) VersionContext {
	vc.Key = key
	return vc
}

// Runtime carries the services a run needs.
type Runtime struct {
	Cache *cache.Cache
}

func (rt *Runtime) valid() bool {
	return rt != nil && rt.Cache != nil
}
