package adapter

import (
	"errors"
	"fmt"

	"emojigen/internal/schema"
)

// Configuration errors, returned by Builder.Build.
var (
	ErrMissingType           = errors.New("adapter: type is required")
	ErrNoHandlers            = errors.New("adapter: at least one handler is required")
	ErrMissingSchema         = errors.New("adapter: output schema is required")
	ErrInvalidRange          = errors.New("adapter: invalid version range")
	ErrIncompleteTransformer = errors.New("adapter: incomplete transformer")
	ErrInvalidPersistence    = errors.New("adapter: invalid persistence plan")
)

// Run-time errors.
var (
	// ErrNoURLs means a matched transformer resolved no URLs for the version.
	ErrNoURLs = errors.New("adapter: transformer returned no URLs")
	// ErrAggregateRequired means a transformer returned several URLs but has no Aggregate.
	ErrAggregateRequired = errors.New("adapter: multiple URLs require an aggregate function")
	// ErrNoRuntime means Run was called without a cache.
	ErrNoRuntime = errors.New("adapter: runtime with cache is required")
)

// NotImplementedError means no transformer matches the version and the
// adapter has no fallback.
type NotImplementedError struct {
	Adapter string
	Version string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("adapter %s: not implemented for emoji version %s", e.Adapter, e.Version)
}

// ValidationError reports output that failed the adapter's schema.
type ValidationError struct {
	Adapter string
	Issues  []schema.Issue
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("adapter %s: invalid output: %s", e.Adapter, schema.Summarize(e.Issues, 5))
}

// TransformError wraps a failure raised while transforming one URL's payload.
type TransformError struct {
	URL string
	Key string
	Err error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform %s (%s): %v", e.Key, e.URL, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }
