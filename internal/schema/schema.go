// Package schema defines the validation contract between pipeline stages and
// the schema definitions that guard them. A schema may normalize its input,
// so callers must use Result.Data rather than the value they passed in.
package schema

import (
	"fmt"
	"strings"
)

// Issue is one schema violation.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// Result is the outcome of Validate.
type Result[T any] struct {
	Success bool
	Data    T
	Issues  []Issue
}

// Schema validates, and may normalize, a value.
type Schema[T any] interface {
	Validate(v T) Result[T]
}

// Func adapts a plain function to Schema.
type Func[T any] func(v T) Result[T]

// Validate implements Schema.
func (f Func[T]) Validate(v T) Result[T] { return f(v) }

// OK returns a successful result carrying data.
func OK[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// Fail returns a failed result.
func Fail[T any](issues ...Issue) Result[T] {
	return Result[T]{Issues: issues}
}

// Any accepts every value unchanged.
func Any[T any]() Schema[T] {
	return Func[T](OK[T])
}

// Erase lifts a typed schema to one over any; values of the wrong type fail.
func Erase[T any](s Schema[T]) Schema[any] {
	return Func[any](func(v any) Result[any] {
		typed, ok := v.(T)
		if !ok {
			var zero T
			return Fail[any](Issue{Message: fmt.Sprintf("expected %T, got %T", zero, v)})
		}
		r := s.Validate(typed)
		return Result[any]{Success: r.Success, Data: r.Data, Issues: r.Issues}
	})
}

// Collector accumulates issues while a schema walks a value.
type Collector struct {
	issues []Issue
}

// Addf records an issue at path.
func (c *Collector) Addf(path, format string, args ...any) {
	c.issues = append(c.issues, Issue{Path: path, Message: fmt.Sprintf(format, args...)})
}

// Collect finalizes the collector into a Result for data.
func Collect[T any](c *Collector, data T) Result[T] {
	if len(c.issues) > 0 {
		return Result[T]{Issues: c.issues}
	}
	return OK(data)
}

// Summarize renders issues as a single human-readable line, capped at max entries.
func Summarize(issues []Issue, max int) string {
	if len(issues) == 0 {
		return "no issues"
	}
	shown := issues
	if max > 0 && len(shown) > max {
		shown = shown[:max]
	}
	parts := make([]string, len(shown))
	for i, issue := range shown {
		parts[i] = issue.String()
	}
	out := strings.Join(parts, "; ")
	if len(shown) < len(issues) {
		out += fmt.Sprintf(" (and %d more)", len(issues)-len(shown))
	}
	return out
}
