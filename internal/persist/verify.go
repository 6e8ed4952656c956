package persist

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"emojigen/internal/charset"
	"emojigen/internal/schema"
)

// Finding is the verification outcome for one persisted file.
type Finding struct {
	Schema string
	Path   string
	Issues []schema.Issue
}

// Verify re-reads every file matched by the schemas' patterns under basePath
// and runs their Checkers. Schemas without a pattern or checker are skipped.
// A schema whose pattern matches nothing yields a finding.
func Verify(basePath string, schemas []*Schema, encoding string) ([]Finding, error) {
	var findings []Finding

	for _, s := range schemas {
		if s.Pattern == "" || s.Check == nil {
			continue
		}

		matches, err := filepath.Glob(filepath.Join(basePath, s.Pattern))
		if err != nil {
			return nil, fmt.Errorf("persist: bad pattern %q for %s: %w", s.Pattern, s.Name, err)
		}
		if len(matches) == 0 {
			findings = append(findings, Finding{
				Schema: s.Name,
				Path:   filepath.Join(basePath, s.Pattern),
				Issues: []schema.Issue{{Message: "no files found"}},
			})
			continue
		}
		sort.Strings(matches)

		for _, path := range matches {
			raw, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", path, err)
			}
			data, err := charset.Decode(encoding, raw)
			if err != nil {
				return nil, err
			}
			findings = append(findings, Finding{Schema: s.Name, Path: path, Issues: s.Check(data)})
		}
	}

	return findings, nil
}
