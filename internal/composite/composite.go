// Package composite joins several source adapters and ad-hoc sources into a
// single output. Sources resolve in parallel into one Record; the record is
// then threaded through an ordered transform chain, shaped by Output and
// validated before it is returned or persisted.
package composite

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"emojigen/internal/adapter"
	"emojigen/internal/logging"
	"emojigen/internal/persist"
	"emojigen/internal/schema"
)

var (
	ErrMissingName     = errors.New("composite: name is required")
	ErrMissingOutput   = errors.New("composite: output function is required")
	ErrMissingSchema   = errors.New("composite: output schema is required")
	ErrSourceCollision = errors.New("composite: source name collides")
	ErrNilSource       = errors.New("composite: nil source")
)

// Record holds resolved source values keyed by source name or adapter type.
type Record map[string]any

// Source is a nested adapter. *adapter.SourceAdapter satisfies it, as does
// *Handler, so composites can nest.
type Source interface {
	Type() string
	Resolve(ctx context.Context, rt *adapter.Runtime, vc adapter.VersionContext) (any, error)
}

// SourceFunc resolves one ad-hoc source.
type SourceFunc func(ctx context.Context, rt *adapter.Runtime, vc adapter.VersionContext) (any, error)

// Literal is a source that always resolves to v.
func Literal(v any) SourceFunc {
	return func(context.Context, *adapter.Runtime, adapter.VersionContext) (any, error) { return v, nil }
}

// Transform is one step of the chain; it receives the previous step's result.
type Transform func(vc adapter.VersionContext, value any) (any, error)

// Config describes a composite handler.
type Config[Out any] struct {
	Schema     schema.Schema[Out]
	Sources    map[string]SourceFunc
	Adapters   []Source
	Transforms []Transform
	// Output shapes the last transform's result (the merged Record when there are no transforms).
	Output      func(vc adapter.VersionContext, value any) (Out, error)
	Persistence persist.Plan[Out]
}

// Handler is a validated composite. Construct it with New.
type Handler[Out any] struct {
	name string
	cfg  Config[Out]
}

// New validates cfg and returns the handler.
func New[Out any](name string, cfg Config[Out]) (*Handler[Out], error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrMissingName
	}
	if cfg.Output == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrMissingOutput)
	}
	if cfg.Schema == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrMissingSchema)
	}

	for key, fn := range cfg.Sources {
		if fn == nil {
			return nil, fmt.Errorf("%s: %w %q", name, ErrNilSource, key)
		}
	}
	types := make(map[string]bool, len(cfg.Adapters))
	for i, a := range cfg.Adapters {
		if a == nil {
			return nil, fmt.Errorf("%s: %w at adapter %d", name, ErrNilSource, i)
		}
		t := a.Type()
		if _, clash := cfg.Sources[t]; clash {
			return nil, fmt.Errorf("%s: %w: %q is both a source and an adapter", name, ErrSourceCollision, t)
		}
		if types[t] {
			return nil, fmt.Errorf("%s: %w: adapter %q listed twice", name, ErrSourceCollision, t)
		}
		types[t] = true
	}
	for i, tr := range cfg.Transforms {
		if tr == nil {
			return nil, fmt.Errorf("%s: transform %d is nil", name, i)
		}
	}
	if err := cfg.Persistence.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return &Handler[Out]{name: name, cfg: cfg}, nil
}

// MustNew is New for package-level handlers; it panics on error.
func MustNew[Out any](name string, cfg Config[Out]) *Handler[Out] {
	h, err := New(name, cfg)
	if err != nil {
		panic(err)
	}
	return h
}

// Type returns the composite name.
func (h *Handler[Out]) Type() string {
	return h.name
}

// Schemas returns the persistence schemas.
func (h *Handler[Out]) Schemas() []*persist.Schema {
	return h.cfg.Persistence.Schemas
}

// SourceNames lists ad-hoc source names and adapter types, sorted.
func (h *Handler[Out]) SourceNames() []string {
	names := make([]string, 0, len(h.cfg.Sources)+len(h.cfg.Adapters))
	for k := range h.cfg.Sources {
		names = append(names, k)
	}
	for _, a := range h.cfg.Adapters {
		names = append(names, a.Type())
	}
	sort.Strings(names)
	return names
}

// Run resolves every source, applies the transform chain and returns the
// validated output.
func (h *Handler[Out]) Run(ctx context.Context, rt *adapter.Runtime, vc adapter.VersionContext) (Out, error) {
	var zero Out

	record, err := h.resolve(ctx, rt, vc)
	if err != nil {
		return zero, fmt.Errorf("composite %s (v%s): %w", h.name, vc.EmojiVersion, err)
	}

	var value any = record
	for i, tr := range h.cfg.Transforms {
		value, err = tr(vc, value)
		if err != nil {
			return zero, fmt.Errorf("composite %s (v%s): transform %d: %w", h.name, vc.EmojiVersion, i, err)
		}
	}

	out, err := h.cfg.Output(vc, value)
	if err != nil {
		return zero, fmt.Errorf("composite %s (v%s): output: %w", h.name, vc.EmojiVersion, err)
	}

	r := h.cfg.Schema.Validate(out)
	if !r.Success {
		return zero, &adapter.ValidationError{Adapter: h.name, Issues: r.Issues}
	}
	return r.Data, nil
}

// Resolve runs the composite with its output erased to any.
func (h *Handler[Out]) Resolve(ctx context.Context, rt *adapter.Runtime, vc adapter.VersionContext) (any, error) {
	return h.Run(ctx, rt, vc)
}

// Generate runs the composite and persists its output.
func (h *Handler[Out]) Generate(ctx context.Context, rt *adapter.Runtime, vc adapter.VersionContext, opts persist.Options) (*persist.Report, error) {
	value, err := h.Run(ctx, rt, vc)
	if err != nil {
		return nil, err
	}
	report, err := persist.Write(ctx, h.cfg.Persistence, value, vc.EmojiVersion, opts)
	if err != nil {
		return report, fmt.Errorf("composite %s (v%s): %w", h.name, vc.EmojiVersion, err)
	}
	logging.Composite("%s v%s: %d files written, %d skipped", h.name, vc.EmojiVersion, len(report.Written), len(report.Skipped))
	return report, nil
}

// resolve runs ad-hoc sources and adapters in parallel and merges them.
// Adapter results are applied last so their keys win.
func (h *Handler[Out]) resolve(ctx context.Context, rt *adapter.Runtime, vc adapter.VersionContext) (Record, error) {
	var (
		mu       sync.Mutex
		sources  = make(Record, len(h.cfg.Sources))
		adapters = make(Record, len(h.cfg.Adapters))
	)

	g, gctx := errgroup.WithContext(ctx)
	for name, fn := range h.cfg.Sources {
		name, fn := name, fn
		g.Go(func() error {
			logging.CompositeDebug("%s: resolving source %s", h.name, name)
			v, err := fn(gctx, rt, vc)
			if err != nil {
				return fmt.Errorf("source %s: %w", name, err)
			}
			mu.Lock()
			sources[name] = v
			mu.Unlock()
			return nil
		})
	}
	for _, a := range h.cfg.Adapters {
		a := a
		g.Go(func() error {
			logging.CompositeDebug("%s: resolving adapter %s", h.name, a.Type())
			v, err := a.Resolve(gctx, rt, vc)
			if err != nil {
				return err
			}
			mu.Lock()
			adapters[a.Type()] = v
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for k, v := range adapters {
		sources[k] = v
	}
	return sources, nil
}

// Get fetches a typed value from a record.
func Get[T any](r Record, key string) (T, error) {
	var zero T
	v, ok := r[key]
	if !ok {
		return zero, fmt.Errorf("composite: record has no %q", key)
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("composite: record %q holds %T, not %T", key, v, zero)
	}
	return typed, nil
}
