package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"emojigen/internal/charset"
	"emojigen/internal/diff"
	"emojigen/internal/logging"
	"emojigen/internal/schema"
)

// Options controls how files are written.
type Options struct {
	OutputDir string
	// Force overwrites existing files; otherwise they are skipped with a warning.
	Force    bool
	Pretty   bool
	Encoding string
}

// Report lists what a Write call did.
type Report struct {
	Written []string
	Skipped []string
	// Unchanged files already held the exact content and were not rewritten.
	Unchanged []string
	// Changes holds line stats for files that were overwritten.
	Changes map[string]diff.Stats
}

type outcome int

const (
	outcomeWritten outcome = iota
	outcomeSkipped
	outcomeUnchanged
)

// ErrNilReference is returned for operations without a schema.
var ErrNilReference = errors.New("persist: operation has no schema reference")

// CheckError reports content rejected by a schema's Checker.
type CheckError struct {
	Schema string
	Path   string
	Issues []schema.Issue
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("persist: %s (%s) failed validation: %s", e.Schema, e.Path, schema.Summarize(e.Issues, 5))
}

// Write maps value to operations and writes them concurrently under
// {OutputDir}/v{version}. Every operation is awaited; all failures are
// returned together.
func Write[T any](ctx context.Context, plan Plan[T], value T, version string, opts Options) (*Report, error) {
	if plan.Map == nil {
		return &Report{}, nil
	}

	ops, err := plan.Map(value)
	if err != nil {
		return nil, fmt.Errorf("persist: map failed: %w", err)
	}

	basePath := BasePath(opts.OutputDir, version)
	report := &Report{Changes: make(map[string]diff.Stats)}

	var (
		mu   sync.Mutex
		errs error
		g    errgroup.Group
	)
	for _, op := range ops {
		op := op
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				mu.Lock()
				multierr.AppendInto(&errs, err)
				mu.Unlock()
				return nil
			}

			path, result, stats, err := writeOne(op, basePath, opts)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				multierr.AppendInto(&errs, err)
				return nil
			}
			switch result {
			case outcomeWritten:
				report.Written = append(report.Written, path)
				if stats != nil {
					report.Changes[path] = *stats
				}
			case outcomeUnchanged:
				report.Unchanged = append(report.Unchanged, path)
			default:
				report.Skipped = append(report.Skipped, path)
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(report.Written)
	sort.Strings(report.Skipped)
	sort.Strings(report.Unchanged)
	logging.PersistDebug("v%s: %d written, %d unchanged, %d skipped, %d failed",
		version, len(report.Written), len(report.Unchanged), len(report.Skipped), len(multierr.Errors(errs)))

	return report, errs
}

// writeOne writes a single operation. Stats are non-nil only when an
// existing file was overwritten with different content.
func writeOne(op Operation, basePath string, opts Options) (string, outcome, *diff.Stats, error) {
	if op.Reference == nil {
		return "", outcomeSkipped, nil, ErrNilReference
	}

	path, err := ResolvePath(op.Reference.FilePath, basePath, op.Params)
	if err != nil {
		return "", outcomeSkipped, nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return path, outcomeSkipped, nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	existing, err := os.ReadFile(path)
	exists := err == nil
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return path, outcomeSkipped, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if exists && !opts.Force {
		logging.PersistWarn("File %s already exists, skipping (use --force to overwrite)", path)
		return path, outcomeSkipped, nil, nil
	}

	data, err := serialize(op.Reference.Type, op.Data, opts.Pretty)
	if err != nil {
		return path, outcomeSkipped, nil, fmt.Errorf("failed to serialize %s: %w", path, err)
	}

	if op.Reference.Check != nil {
		if issues := op.Reference.Check(data); len(issues) > 0 {
			return path, outcomeSkipped, nil, &CheckError{Schema: op.Reference.Name, Path: path, Issues: issues}
		}
	}

	encoded, err := charset.Encode(opts.Encoding, data)
	if err != nil {
		return path, outcomeSkipped, nil, err
	}

	var stats *diff.Stats
	if exists {
		if bytes.Equal(existing, encoded) {
			logging.PersistDebug("Unchanged %s", path)
			return path, outcomeUnchanged, nil, nil
		}
		s := diff.Lines(decodeExisting(existing, opts.Encoding), string(data))
		stats = &s
	}

	if err := os.WriteFile(path, encoded, 0644); err != nil {
		return path, outcomeSkipped, nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if stats != nil {
		logging.Persist("Overwrote %s (%s lines)", path, stats)
	} else {
		logging.PersistDebug("Wrote %s (%d bytes)", path, len(encoded))
	}
	return path, outcomeWritten, stats, nil
}

// decodeExisting returns the previous file content as text, falling back to
// the raw bytes when they are not in the configured encoding.
func decodeExisting(raw []byte, encoding string) string {
	decoded, err := charset.Decode(encoding, raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

func serialize(kind Kind, data any, pretty bool) ([]byte, error) {
	if kind == KindJSON {
		if pretty {
			return json.MarshalIndent(data, "", "  ")
		}
		return json.Marshal(data)
	}

	switch v := data.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case fmt.Stringer:
		return []byte(v.String()), nil
	default:
		return []byte(fmt.Sprint(v)), nil
	}
}
