package adapter

import (
	"fmt"
	"strings"

	"emojigen/internal/persist"
	"emojigen/internal/schema"
)

// Builder assembles a SourceAdapter. Configuration errors surface from Build.
type Builder[Out any] struct {
	adapterType string
	handlers    []Handler[Out]
	schema      schema.Schema[Out]
	fallback    func(vc VersionContext) Out
	persistence persist.Plan[Out]
}

// New starts an adapter of the given type.
func New[Out any](adapterType string) *Builder[Out] {
	return &Builder[Out]{adapterType: adapterType}
}

// Add appends a handler. Handlers are tried in the order added.
func (b *Builder[Out]) Add(h Handler[Out]) *Builder[Out] {
	b.handlers = append(b.handlers, h)
	return b
}

// Schema sets the output schema every result is validated against.
func (b *Builder[Out]) Schema(s schema.Schema[Out]) *Builder[Out] {
	b.schema = s
	return b
}

// Fallback sets the value produced when no handler matches.
func (b *Builder[Out]) Fallback(fn func(vc VersionContext) Out) *Builder[Out] {
	b.fallback = fn
	return b
}

// Persist sets the persistence plan.
func (b *Builder[Out]) Persist(plan persist.Plan[Out]) *Builder[Out] {
	b.persistence = plan
	return b
}

// Build validates the configuration and returns the adapter.
func (b *Builder[Out]) Build() (*SourceAdapter[Out], error) {
	if strings.TrimSpace(b.adapterType) == "" {
		return nil, ErrMissingType
	}
	if len(b.handlers) == 0 {
		return nil, fmt.Errorf("%s: %w", b.adapterType, ErrNoHandlers)
	}
	for i, h := range b.handlers {
		if h.err != nil {
			return nil, fmt.Errorf("%s: handler %d: %w", b.adapterType, i, h.err)
		}
	}
	if b.schema == nil {
		return nil, fmt.Errorf("%s: %w", b.adapterType, ErrMissingSchema)
	}
	if err := b.persistence.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", b.adapterType, ErrInvalidPersistence, err)
	}

	handlers := make([]Handler[Out], len(b.handlers))
	copy(handlers, b.handlers)
	return &SourceAdapter[Out]{
		adapterType: b.adapterType,
		handlers:    handlers,
		schema:      b.schema,
		fallback:    b.fallback,
		persistence: b.persistence,
	}, nil
}

// MustBuild is Build for package-level adapters; it panics on error.
func (b *Builder[Out]) MustBuild() *SourceAdapter[Out] {
	a, err := b.Build()
	if err != nil {
		panic(err)
	}
	return a
}
