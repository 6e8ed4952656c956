package emoji

import (
	"fmt"

	"emojigen/internal/adapter"
	"emojigen/internal/parser"
	"emojigen/internal/persist"
	"emojigen/internal/schema"
)

// Payload keys of the two sequence files.
const (
	keySequences = "sequences"
	keyZWJ       = "zwj"
)

func sequencesFromLines(lines []parser.Line) ([]Sequence, error) {
	out := make([]Sequence, 0, len(lines))
	for i, l := range lines {
		if len(l.Fields) < 2 {
			return nil, &ParseError{Line: i + 1, Text: fmt.Sprint(l.Fields), Reason: "expected at least 2 fields"}
		}
		hexcodes, err := expandRange(l.Fields[0])
		if err != nil {
			return nil, &ParseError{Line: i + 1, Text: l.Fields[0], Reason: err.Error()}
		}

		desc := l.Comment
		if len(l.Fields) > 2 && l.Fields[2] != "" {
			desc = l.Fields[2]
		}
		for _, hex := range hexcodes {
			out = append(out, Sequence{
				Property:    l.Property,
				Hexcode:     hex,
				Type:        l.Fields[1],
				Description: desc,
			})
		}
	}
	return out, nil
}

// SequencesSchema requires every entry to have a hexcode, a type and a known property.
func SequencesSchema() schema.Schema[SequencesOutput] {
	return schema.Func[SequencesOutput](func(v SequencesOutput) schema.Result[SequencesOutput] {
		var c schema.Collector
		check := func(path, property string, seqs []Sequence) {
			for i, s := range seqs {
				p := fmt.Sprintf("%s[%d]", path, i)
				if s.Hexcode == "" {
					c.Addf(p, "hexcode is empty")
				}
				if s.Type == "" {
					c.Addf(p, "type is empty")
				}
				if s.Property != property {
					c.Addf(p, "property %q, want %q", s.Property, property)
				}
			}
		}
		check("sequences", keySequences, v.Sequences)
		check("zwj", keyZWJ, v.ZWJ)
		if len(v.Sequences)+len(v.ZWJ) == 0 {
			c.Addf("", "no sequences")
		}
		return schema.Collect(&c, v)
	})
}

var (
	sequencesFile = &persist.Schema{
		Name:     "sequences",
		Pattern:  "sequences.json",
		FilePath: "<base-path>/sequences.json",
		Type:     persist.KindJSON,
		Check:    persist.JSONChecker[[]Sequence](schema.Any[[]Sequence]()),
	}
	zwjFile = &persist.Schema{
		Name:     "zwj-sequences",
		Pattern:  "zwj-sequences.json",
		FilePath: "<base-path>/zwj-sequences.json",
		Type:     persist.KindJSON,
		Check:    persist.JSONChecker[[]Sequence](schema.Any[[]Sequence]()),
	}
)

func newSequencesAdapter(base string) (*adapter.SourceAdapter[SequencesOutput], error) {
	return adapter.New[SequencesOutput](TypeSequences).
		Add(adapter.WhenRange(">=2.0", adapter.Transformer[*parser.Result, []Sequence, SequencesOutput]{
			URLs: func(vc adapter.VersionContext) []adapter.URLSpec {
				return []adapter.URLSpec{
					adapter.URLWithKey(emojiURL(base, vc.EmojiVersion, "emoji-sequences.txt"), keySequences),
					adapter.URLWithKey(emojiURL(base, vc.EmojiVersion, "emoji-zwj-sequences.txt"), keyZWJ),
				}
			},
			Parser: adapter.GenericParser(func(vc adapter.VersionContext) parser.Options {
				return parser.Options{DefaultProperty: vc.Key}
			}),
			Transform: func(_ adapter.VersionContext, r *parser.Result) ([]Sequence, error) {
				return sequencesFromLines(r.Lines)
			},
			Aggregate: func(_ adapter.VersionContext, items [][]Sequence) ([]Sequence, error) {
				var all []Sequence
				for _, item := range items {
					all = append(all, item...)
				}
				return all, nil
			},
			Output: func(_ adapter.VersionContext, all []Sequence) (SequencesOutput, error) {
				out := SequencesOutput{Sequences: []Sequence{}, ZWJ: []Sequence{}}
				for _, s := range all {
					if s.Property == keyZWJ {
						out.ZWJ = append(out.ZWJ, s)
					} else {
						out.Sequences = append(out.Sequences, s)
					}
				}
				return out, nil
			},
		})).
		Schema(SequencesSchema()).
		Persist(persist.Plan[SequencesOutput]{
			Schemas: []*persist.Schema{sequencesFile, zwjFile},
			Map: func(v SequencesOutput) ([]persist.Operation, error) {
				return []persist.Operation{
					{Reference: sequencesFile, Data: v.Sequences},
					{Reference: zwjFile, Data: v.ZWJ},
				}, nil
			},
		}).
		Build()
}
