// Package adapter runs source adapters: named, versioned producers of one
// category of output. An adapter holds an ordered list of (predicate,
// transformer) handlers; a run executes the first handler whose predicate
// matches the emoji version, or the adapter's fallback when none does, and
// validates the result against the adapter's schema before it leaves.
package adapter

import (
	"context"
	"fmt"

	"emojigen/internal/logging"
	"emojigen/internal/persist"
	"emojigen/internal/schema"
	"emojigen/internal/version"
)

// Predicate selects versions a handler applies to.
type Predicate func(emojiVersion string) bool

// Always matches every version.
func Always() Predicate {
	return func(string) bool { return true }
}

// Handler pairs a predicate with a type-erased transformer run.
type Handler[Out any] struct {
	name      string
	predicate Predicate
	run       func(ctx context.Context, rt *Runtime, vc VersionContext) (Out, error)
	err       error
}

// When pairs pred with t.
func When[P, T, Out any](pred Predicate, t Transformer[P, T, Out]) Handler[Out] {
	h := Handler[Out]{name: "custom", predicate: pred, run: t.run}
	if pred == nil {
		h.err = fmt.Errorf("%w: nil predicate", ErrIncompleteTransformer)
	} else if err := t.check(); err != nil {
		h.err = err
	}
	return h
}

// WhenRange pairs a semver constraint (">=5.0, <13.0") with t.
func WhenRange[P, T, Out any](constraint string, t Transformer[P, T, Out]) Handler[Out] {
	match, err := version.Range(constraint)
	if err != nil {
		return Handler[Out]{name: constraint, err: fmt.Errorf("%w: %v", ErrInvalidRange, err)}
	}
	h := When(Predicate(match), t)
	h.name = constraint
	return h
}

// SourceAdapter is an immutable, built adapter.
type SourceAdapter[Out any] struct {
	adapterType string
	handlers    []Handler[Out]
	schema      schema.Schema[Out]
	fallback    func(vc VersionContext) Out
	persistence persist.Plan[Out]
}

// Type returns the adapter type, e.g. "metadata".
func (a *SourceAdapter[Out]) Type() string {
	return a.adapterType
}

// Schemas returns the adapter's persistence schemas.
func (a *SourceAdapter[Out]) Schemas() []*persist.Schema {
	return a.persistence.Schemas
}

// Supports reports whether a handler or fallback covers emojiVersion.
func (a *SourceAdapter[Out]) Supports(emojiVersion string) bool {
	return a.match(emojiVersion) >= 0 || a.fallback != nil
}

func (a *SourceAdapter[Out]) match(emojiVersion string) int {
	for i, h := range a.handlers {
		if h.predicate(emojiVersion) {
			return i
		}
	}
	return -1
}

// Run produces the validated output for vc. Only the first matching
// handler executes.
func (a *SourceAdapter[Out]) Run(ctx context.Context, rt *Runtime, vc VersionContext) (Out, error) {
	var zero Out
	if !rt.valid() {
		return zero, ErrNoRuntime
	}

	var value Out
	idx := a.match(vc.EmojiVersion)
	switch {
	case idx >= 0:
		h := a.handlers[idx]
		logging.AdapterDebug("%s v%s: running handler %q", a.adapterType, vc.EmojiVersion, h.name)
		timer := logging.StartTimer(logging.CategoryAdapter, a.adapterType+" v"+vc.EmojiVersion)
		v, err := h.run(ctx, rt, vc)
		timer.Stop()
		if err != nil {
			return zero, fmt.Errorf("adapter %s (v%s): %w", a.adapterType, vc.EmojiVersion, err)
		}
		value = v
	case a.fallback != nil:
		logging.AdapterWarn("%s v%s: no transformer matched, using fallback", a.adapterType, vc.EmojiVersion)
		value = a.fallback(vc)
	default:
		return zero, &NotImplementedError{Adapter: a.adapterType, Version: vc.EmojiVersion}
	}

	return validateOrFail(value, a.schema, a.adapterType)
}

// Resolve runs the adapter with its output erased to any.
func (a *SourceAdapter[Out]) Resolve(ctx context.Context, rt *Runtime, vc VersionContext) (any, error) {
	return a.Run(ctx, rt, vc)
}

// Persist writes an already validated value.
func (a *SourceAdapter[Out]) Persist(ctx context.Context, value Out, emojiVersion string, opts persist.Options) (*persist.Report, error) {
	return persist.Write(ctx, a.persistence, value, emojiVersion, opts)
}

// Generate runs the adapter and persists its output.
func (a *SourceAdapter[Out]) Generate(ctx context.Context, rt *Runtime, vc VersionContext, opts persist.Options) (*persist.Report, error) {
	value, err := a.Run(ctx, rt, vc)
	if err != nil {
		return nil, err
	}
	report, err := a.Persist(ctx, value, vc.EmojiVersion, opts)
	if err != nil {
		return report, fmt.Errorf("adapter %s (v%s): %w", a.adapterType, vc.EmojiVersion, err)
	}
	logging.Adapter("%s v%s: %d files written, %d skipped", a.adapterType, vc.EmojiVersion, len(report.Written), len(report.Skipped))
	return report, nil
}

// validateOrFail returns the schema-normalized value or a ValidationError.
func validateOrFail[T any](value T, s schema.Schema[T], adapterType string) (T, error) {
	r := s.Validate(value)
	if !r.Success {
		var zero T
		return zero, &ValidationError{Adapter: adapterType, Issues: r.Issues}
	}
	return r.Data, nil
}
