package emoji

import (
	"fmt"
	"sort"

	"emojigen/internal/adapter"
	"emojigen/internal/composite"
	"emojigen/internal/persist"
	"emojigen/internal/schema"
)

const sourceShortcodes = "shortcodes"

// joinState carries the record alongside the rows being built.
type joinState struct {
	record composite.Record
	rows   []Emoji
}

func asRecord(stage string, v any) (composite.Record, error) {
	record, ok := v.(composite.Record)
	if !ok {
		return nil, fmt.Errorf("%w: %s expects composite.Record, got %T", ErrTransformOrder, stage, v)
	}
	return record, nil
}

func asJoinState(stage string, v any) (*joinState, error) {
	state, ok := v.(*joinState)
	if !ok || state == nil {
		return nil, fmt.Errorf("%w: %s expects joined rows, got %T", ErrTransformOrder, stage, v)
	}
	return state, nil
}

// flattenMetadata turns grouped metadata into rows in group, subgroup and
// hexcode order.
func flattenMetadata(_ adapter.VersionContext, v any) (any, error) {
	record, err := asRecord("flattenMetadata", v)
	if err != nil {
		return nil, err
	}
	meta, err := composite.Get[MetadataOutput](record, TypeMetadata)
	if err != nil {
		return nil, err
	}

	var rows []Emoji
	for _, g := range meta.Groups {
		for _, sub := range g.Subgroups {
			entries := meta.Emojis[g.Slug][sub]
			hexcodes := make([]string, 0, len(entries))
			for hex := range entries {
				hexcodes = append(hexcodes, hex)
			}
			sort.Strings(hexcodes)
			for _, hex := range hexcodes {
				m := entries[hex]
				rows = append(rows, Emoji{
					Hexcode:      m.Hexcode,
					Emoji:        m.Emoji,
					Group:        m.Group,
					Subgroup:     m.Subgroup,
					Qualifier:    m.Qualifier,
					EmojiVersion: m.EmojiVersion,
					Description:  m.Description,
				})
			}
		}
	}
	return &joinState{record: record, rows: rows}, nil
}

// attachUnicodeData adds Unicode names for single code point emoji and the
// presentation styles published in the variation sequences.
func attachUnicodeData(_ adapter.VersionContext, v any) (any, error) {
	state, err := asJoinState("attachUnicodeData", v)
	if err != nil {
		return nil, err
	}
	names, err := composite.Get[UnicodeNames](state.record, TypeUnicodeNames)
	if err != nil {
		return nil, err
	}
	variations, err := composite.Get[[]Variation](state.record, TypeVariations)
	if err != nil {
		return nil, err
	}

	styles := make(map[string][]string)
	for _, vr := range variations {
		styles[vr.Hexcode] = append(styles[vr.Hexcode], vr.Style)
	}

	for i := range state.rows {
		base := StripVariation(state.rows[i].Hexcode)
		if name, ok := names[base]; ok {
			state.rows[i].UnicodeName = name
		}
		if s, ok := styles[base]; ok {
			state.rows[i].Variations = s
		}
	}
	return state, nil
}

// attachShortcodes adds shortcodes from every configured provider.
func attachShortcodes(_ adapter.VersionContext, v any) (any, error) {
	state, err := asJoinState("attachShortcodes", v)
	if err != nil {
		return nil, err
	}
	byProvider, err := composite.Get[map[string]ShortcodeMap](state.record, sourceShortcodes)
	if err != nil {
		return nil, err
	}

	for i := range state.rows {
		base := StripVariation(state.rows[i].Hexcode)
		for provider, m := range byProvider {
			codes, ok := m[base]
			if !ok {
				continue
			}
			if state.rows[i].Shortcodes == nil {
				state.rows[i].Shortcodes = make(map[string][]string)
			}
			state.rows[i].Shortcodes[provider] = codes
		}
	}
	return state, nil
}

// EmojisSchema requires at least one row, unique hexcodes and complete rows.
func EmojisSchema() schema.Schema[[]Emoji] {
	return schema.Func[[]Emoji](func(v []Emoji) schema.Result[[]Emoji] {
		var c schema.Collector
		if len(v) == 0 {
			c.Addf("", "no emojis")
		}
		seen := make(map[string]bool, len(v))
		for i, e := range v {
			p := fmt.Sprintf("[%d]", i)
			if e.Hexcode == "" {
				c.Addf(p, "hexcode is empty")
			}
			if seen[e.Hexcode] {
				c.Addf(p, "duplicate hexcode %s", e.Hexcode)
			}
			seen[e.Hexcode] = true
			if e.Emoji == "" {
				c.Addf(p, "emoji is empty")
			}
		}
		return schema.Collect(&c, v)
	})
}

var emojisFile = &persist.Schema{
	Name:     "emojis",
	Pattern:  "emojis.json",
	FilePath: "<base-path>/emojis.json",
	Type:     persist.KindJSON,
	Check:    persist.JSONChecker(EmojisSchema()),
}

func newEmojisComposite(sources []composite.Source, shortcodes []ShortcodeProvider) (*composite.Handler[[]Emoji], error) {
	return composite.New(TypeEmojis, composite.Config[[]Emoji]{
		Schema: EmojisSchema(),
		Sources: map[string]composite.SourceFunc{
			sourceShortcodes: shortcodesSource(shortcodes),
		},
		Adapters:   sources,
		Transforms: []composite.Transform{flattenMetadata, attachUnicodeData, attachShortcodes},
		Output: func(_ adapter.VersionContext, v any) ([]Emoji, error) {
			state, err := asJoinState("output", v)
			if err != nil {
				return nil, err
			}
			return state.rows, nil
		},
		Persistence: persist.Plan[[]Emoji]{
			Schemas: []*persist.Schema{emojisFile},
			Map: func(v []Emoji) ([]persist.Operation, error) {
				return []persist.Operation{{Reference: emojisFile, Data: v}}, nil
			},
		},
	})
}
