// Package parser implements the line-oriented record grammar shared by the
// Unicode data files: one record per line, fields split on a separator,
// trailing comments after a comment prefix, and section headers expressed
// as specially formatted comment lines.
package parser

import (
	"strconv"
	"strings"
)

// PropertyPrefix maps a comment-line prefix to the property it starts.
type PropertyPrefix struct {
	Prefix   string `json:"prefix"`
	Property string `json:"property"`
}

// Options configures Parse. The zero value uses "#" comments and ";" fields.
type Options struct {
	CommentPrefix string
	Separator     string
	// PropertyMap is checked in order; the first prefix a comment line starts with wins.
	PropertyMap     []PropertyPrefix
	DefaultProperty string
}

// Line is one data record.
type Line struct {
	Comment  string   `json:"comment"`
	Fields   []string `json:"fields"`
	Property string   `json:"property"`
}

// Result is the parsed form of a whole file.
type Result struct {
	TotalLines int    `json:"totalLines"`
	Lines      []Line `json:"lines"`
	// Properties lists every property a section header switched to, in order of first appearance.
	Properties []string `json:"properties,omitempty"`
	// Totals holds "Total ...: N" counts keyed by the property active at that comment.
	Totals map[string]int `json:"totals,omitempty"`
}

func (o Options) withDefaults() Options {
	if o.CommentPrefix == "" {
		o.CommentPrefix = "#"
	}
	if o.Separator == "" {
		o.Separator = ";"
	}
	return o
}

// Parse parses content into records. Blank lines and comment lines never
// produce a Line; comment lines only switch the current property or record
// totals.
func Parse(content string, opts Options) *Result {
	opts = opts.withDefaults()

	result := &Result{Lines: []Line{}}
	current := opts.DefaultProperty
	seen := make(map[string]bool)

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, opts.CommentPrefix) {
			for _, pm := range opts.PropertyMap {
				if strings.HasPrefix(line, pm.Prefix) {
					current = pm.Property
					if !seen[current] {
						seen[current] = true
						result.Properties = append(result.Properties, current)
					}
					break
				}
			}

			if total, ok := parseTotal(line); ok {
				if result.Totals == nil {
					result.Totals = make(map[string]int)
				}
				result.Totals[current] = total
			}
			continue
		}

		var comment string
		if i := strings.Index(line, opts.CommentPrefix); i > 0 {
			comment = strings.TrimSpace(line[i+len(opts.CommentPrefix):])
			line = strings.TrimSpace(line[:i])
		}

		parts := strings.Split(line, opts.Separator)
		fields := make([]string, len(parts))
		for i, p := range parts {
			fields[i] = strings.TrimSpace(p)
		}

		result.Lines = append(result.Lines, Line{
			Comment:  comment,
			Fields:   fields,
			Property: current,
		})
		result.TotalLines++
	}

	return result
}

// parseTotal extracts N from comment lines like "# Total elements: 1234".
// Non-numeric trailing text yields no total.
func parseTotal(line string) (int, bool) {
	if !strings.Contains(line, "Total") {
		return 0, false
	}
	i := strings.LastIndex(line, ":")
	if i < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(line[i+1:]))
	if err != nil {
		return 0, false
	}
	return n, true
}
