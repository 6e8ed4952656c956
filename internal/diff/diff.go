// Package diff summarizes line-level changes between two revisions of a
// generated file using the sergi/go-diff engine.
package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Stats counts changed lines.
type Stats struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
}

// Changed reports whether any line differs.
func (s Stats) Changed() bool {
	return s.Added > 0 || s.Removed > 0
}

func (s Stats) String() string {
	return fmt.Sprintf("+%d/-%d", s.Added, s.Removed)
}

// Engine computes line diffs.
type Engine struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

// NewEngine creates an engine with the diff timeout disabled.
func NewEngine() *Engine {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	return &Engine{dmp: dmp}
}

// DefaultEngine is shared by Lines.
var DefaultEngine = NewEngine()

// Lines counts lines added and removed going from oldContent to newContent.
func (e *Engine) Lines(oldContent, newContent string) Stats {
	if oldContent == newContent {
		return Stats{}
	}

	// Reduce to one rune per line so the diff never splits a line.
	a, b, lineArray := e.dmp.DiffLinesToChars(oldContent, newContent)
	diffs := e.dmp.DiffMain(a, b, false)
	diffs = e.dmp.DiffCharsToLines(diffs, lineArray)

	var s Stats
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			s.Added += countLines(d.Text)
		case diffmatchpatch.DiffDelete:
			s.Removed += countLines(d.Text)
		}
	}
	return s
}

// Lines uses DefaultEngine.
func Lines(oldContent, newContent string) Stats {
	return DefaultEngine.Lines(oldContent, newContent)
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
