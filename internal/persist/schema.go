// Package persist maps validated adapter output onto files. Each adapter
// declares named file schemas with templated paths; its Map function turns a
// value into operations that reference those schemas.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"emojigen/internal/schema"
)

// BasePathToken is replaced with {outputDir}/v{version} in file path templates.
const BasePathToken = "<base-path>"

// Kind selects how operation data is serialized.
type Kind string

const (
	KindJSON Kind = "json"
	KindRaw  Kind = "raw"
)

// Checker validates serialized file content, returning any issues found.
type Checker func(data []byte) []schema.Issue

// Schema is a named file descriptor.
type Schema struct {
	Name string
	// Pattern is a glob relative to the base path matching every file this schema produces.
	Pattern string
	// FilePath is a template such as "<base-path>/metadata/{group}.json".
	FilePath string
	Type     Kind
	// Check is optional; it runs before every write and when files are verified.
	Check Checker
}

// Operation is one file write produced by a Plan's Map function.
type Operation struct {
	Reference *Schema
	Data      any
	Params    map[string]string
}

// Plan is the persistence half of an adapter.
type Plan[T any] struct {
	Schemas []*Schema
	Map     func(v T) ([]Operation, error)
}

// ErrInvalidPlan reports a malformed persistence plan.
var ErrInvalidPlan = errors.New("persist: invalid plan")

// Validate checks the plan's shape. A plan with neither schemas nor a map
// function is valid and persists nothing.
func (p Plan[T]) Validate() error {
	if p.Map == nil {
		if len(p.Schemas) > 0 {
			return fmt.Errorf("%w: schemas without a map function", ErrInvalidPlan)
		}
		return nil
	}
	if len(p.Schemas) == 0 {
		return fmt.Errorf("%w: map function without schemas", ErrInvalidPlan)
	}

	seen := make(map[string]bool, len(p.Schemas))
	for _, s := range p.Schemas {
		switch {
		case s == nil:
			return fmt.Errorf("%w: nil schema", ErrInvalidPlan)
		case s.Name == "":
			return fmt.Errorf("%w: schema without name", ErrInvalidPlan)
		case seen[s.Name]:
			return fmt.Errorf("%w: duplicate schema %q", ErrInvalidPlan, s.Name)
		case !strings.HasPrefix(s.FilePath, BasePathToken):
			return fmt.Errorf("%w: schema %q path %q must start with %s", ErrInvalidPlan, s.Name, s.FilePath, BasePathToken)
		case s.Type != KindJSON && s.Type != KindRaw:
			return fmt.Errorf("%w: schema %q has unknown type %q", ErrInvalidPlan, s.Name, s.Type)
		}
		seen[s.Name] = true
	}
	return nil
}

// JSONChecker decodes JSON content into T and validates it with s.
func JSONChecker[T any](s schema.Schema[T]) Checker {
	return func(data []byte) []schema.Issue {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return []schema.Issue{{Message: fmt.Sprintf("invalid JSON: %v", err)}}
		}
		r := s.Validate(v)
		if !r.Success {
			return r.Issues
		}
		return nil
	}
}

// BasePath returns the directory for one version's output.
func BasePath(outputDir, version string) string {
	return filepath.Join(outputDir, "v"+version)
}

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z0-9_-]+)\}`)

// ResolvePath expands BasePathToken and every {name} placeholder.
func ResolvePath(template, basePath string, params map[string]string) (string, error) {
	path := strings.ReplaceAll(template, BasePathToken, basePath)

	var missing []string
	var unsafe []string
	path = placeholderPattern.ReplaceAllStringFunc(path, func(m string) string {
		name := m[1 : len(m)-1]
		value, ok := params[name]
		if !ok {
			missing = append(missing, name)
			return m
		}
		if value == "" || value == "." || value == ".." || strings.ContainsAny(value, `/\`) {
			unsafe = append(unsafe, name)
			return m
		}
		return value
	})

	if len(missing) > 0 {
		return "", &MissingParamError{Template: template, Params: missing}
	}
	if len(unsafe) > 0 {
		return "", fmt.Errorf("persist: unsafe value for path parameter(s) %s in %s", strings.Join(unsafe, ", "), template)
	}
	return filepath.Clean(path), nil
}

// MissingParamError reports placeholders without a value.
type MissingParamError struct {
	Template string
	Params   []string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("persist: missing path parameter(s) %s for %s", strings.Join(e.Params, ", "), e.Template)
}
