package emoji

import (
	"context"
	"fmt"
	"sort"

	"emojigen/internal/adapter"
	"emojigen/internal/composite"
	"emojigen/internal/persist"
)

// Generator names.
const (
	TypeMetadata     = "metadata"
	TypeSequences    = "sequences"
	TypeVariations   = "variations"
	TypeUnicodeNames = "unicode-names"
	TypeEmojis       = "emojis"
)

// Generator produces and persists one dataset for a version.
type Generator interface {
	Type() string
	Generate(ctx context.Context, rt *adapter.Runtime, vc adapter.VersionContext, opts persist.Options) (*persist.Report, error)
	Schemas() []*persist.Schema
}

// Set holds every generator bound to one upstream mirror.
type Set struct {
	Metadata     *adapter.SourceAdapter[MetadataOutput]
	Sequences    *adapter.SourceAdapter[SequencesOutput]
	Variations   *adapter.SourceAdapter[[]Variation]
	UnicodeNames *adapter.SourceAdapter[UnicodeNames]
	Emojis       *composite.Handler[[]Emoji]

	byType map[string]Generator
}

// NewSet builds the generators against baseURL (e.g. https://unicode.org/Public).
func NewSet(baseURL string, shortcodes []ShortcodeProvider) (*Set, error) {
	s := &Set{}
	var err error

	if s.Metadata, err = newMetadataAdapter(baseURL); err != nil {
		return nil, err
	}
	if s.Sequences, err = newSequencesAdapter(baseURL); err != nil {
		return nil, err
	}
	if s.Variations, err = newVariationsAdapter(baseURL); err != nil {
		return nil, err
	}
	if s.UnicodeNames, err = newUnicodeNamesAdapter(baseURL); err != nil {
		return nil, err
	}
	s.Emojis, err = newEmojisComposite([]composite.Source{s.Metadata, s.UnicodeNames, s.Variations}, shortcodes)
	if err != nil {
		return nil, err
	}

	s.byType = map[string]Generator{
		TypeMetadata:     s.Metadata,
		TypeSequences:    s.Sequences,
		TypeVariations:   s.Variations,
		TypeUnicodeNames: s.UnicodeNames,
		TypeEmojis:       s.Emojis,
	}
	return s, nil
}

// Names lists generator names, sorted.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.byType))
	for name := range s.byType {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select resolves generator names; an empty list selects every generator.
func (s *Set) Select(names []string) ([]Generator, error) {
	if len(names) == 0 {
		names = s.Names()
	}
	out := make([]Generator, 0, len(names))
	for _, name := range names {
		g, ok := s.byType[name]
		if !ok {
			return nil, fmt.Errorf("unknown generator %q (available: %v)", name, s.Names())
		}
		out = append(out, g)
	}
	return out, nil
}
