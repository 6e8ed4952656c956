package emoji

import (
	"fmt"
	"regexp"
	"strings"

	"emojigen/internal/adapter"
	"emojigen/internal/parser"
	"emojigen/internal/persist"
	"emojigen/internal/schema"
)

const variationsFileName = "emoji-variation-sequences.txt"

// "(1.1) NUMBER SIGN" → "NUMBER SIGN"
var variationCommentPattern = regexp.MustCompile(`^\([\d.]+\)\s*`)

func variationsFromLines(lines []parser.Line) ([]Variation, error) {
	out := make([]Variation, 0, len(lines))
	for i, l := range lines {
		if len(l.Fields) < 2 {
			return nil, &ParseError{Line: i + 1, Text: fmt.Sprint(l.Fields), Reason: "expected at least 2 fields"}
		}
		codepoints := strings.Fields(l.Fields[0])
		if len(codepoints) != 2 {
			return nil, &ParseError{Line: i + 1, Text: l.Fields[0], Reason: "expected base and selector"}
		}
		out = append(out, Variation{
			Hexcode:     strings.ToUpper(codepoints[0]),
			Sequence:    Hexcode(l.Fields[0]),
			Style:       strings.TrimSpace(strings.TrimSuffix(l.Fields[1], "style")),
			Description: variationCommentPattern.ReplaceAllString(l.Comment, ""),
		})
	}
	return out, nil
}

// VariationsSchema accepts an empty list; entries need a hexcode and a known style.
func VariationsSchema() schema.Schema[[]Variation] {
	return schema.Func[[]Variation](func(v []Variation) schema.Result[[]Variation] {
		var c schema.Collector
		for i, e := range v {
			p := fmt.Sprintf("[%d]", i)
			if e.Hexcode == "" {
				c.Addf(p, "hexcode is empty")
			}
			if e.Style != "text" && e.Style != "emoji" {
				c.Addf(p, "unknown style %q", e.Style)
			}
		}
		if v == nil {
			v = []Variation{}
		}
		return schema.Collect(&c, v)
	})
}

var variationsFile = &persist.Schema{
	Name:     "variations",
	Pattern:  "variations.json",
	FilePath: "<base-path>/variations.json",
	Type:     persist.KindJSON,
	Check:    persist.JSONChecker(VariationsSchema()),
}

func variationsTransformer(urls func(vc adapter.VersionContext) []adapter.URLSpec) adapter.Transformer[*parser.Result, []Variation, []Variation] {
	return adapter.Transformer[*parser.Result, []Variation, []Variation]{
		URLs:   urls,
		Parser: adapter.GenericParser(nil),
		Transform: func(_ adapter.VersionContext, r *parser.Result) ([]Variation, error) {
			return variationsFromLines(r.Lines)
		},
		Output: func(_ adapter.VersionContext, v []Variation) ([]Variation, error) {
			return v, nil
		},
	}
}

// newVariationsAdapter covers both publication layouts; versions before 5.0
// published no variation file and get an empty list.
func newVariationsAdapter(base string) (*adapter.SourceAdapter[[]Variation], error) {
	return adapter.New[[]Variation](TypeVariations).
		Add(adapter.WhenRange(">=13.0", variationsTransformer(func(vc adapter.VersionContext) []adapter.URLSpec {
			uv := unicodeVersion(vc)
			if uv == "" {
				return nil
			}
			return []adapter.URLSpec{adapter.URL(ucdURL(base, uv, "emoji/"+variationsFileName))}
		}))).
		Add(adapter.WhenRange(">=5.0, <13.0", variationsTransformer(func(vc adapter.VersionContext) []adapter.URLSpec {
			return []adapter.URLSpec{adapter.URL(emojiURL(base, vc.EmojiVersion, variationsFileName))}
		}))).
		Schema(VariationsSchema()).
		Fallback(func(adapter.VersionContext) []Variation { return []Variation{} }).
		Persist(persist.Plan[[]Variation]{
			Schemas: []*persist.Schema{variationsFile},
			Map: func(v []Variation) ([]persist.Operation, error) {
				return []persist.Operation{{Reference: variationsFile, Data: v}}, nil
			},
		}).
		Build()
}
