package emoji

import (
	"fmt"
	"strings"

	"emojigen/internal/adapter"
	"emojigen/internal/parser"
	"emojigen/internal/persist"
	"emojigen/internal/schema"
)

// namesFromLines reads UnicodeData.txt records. Range markers such as
// "<CJK Ideograph, First>" are skipped; control characters use their
// Unicode 1.0 name when one exists.
func namesFromLines(lines []parser.Line) (UnicodeNames, error) {
	names := make(UnicodeNames, len(lines))
	for i, l := range lines {
		if len(l.Fields) < 2 {
			return nil, &ParseError{Line: i + 1, Text: strings.Join(l.Fields, ";"), Reason: "expected at least 2 fields"}
		}
		hex, name := strings.ToUpper(l.Fields[0]), l.Fields[1]
		if strings.HasPrefix(name, "<") {
			if name != "<control>" || len(l.Fields) < 11 || l.Fields[10] == "" {
				continue
			}
			name = l.Fields[10]
		}
		names[hex] = name
	}
	return names, nil
}

// UnicodeNamesSchema requires a non-empty map without blank names.
func UnicodeNamesSchema() schema.Schema[UnicodeNames] {
	return schema.Func[UnicodeNames](func(v UnicodeNames) schema.Result[UnicodeNames] {
		var c schema.Collector
		if len(v) == 0 {
			c.Addf("", "no names")
		}
		for hex, name := range v {
			if name == "" {
				c.Addf(hex, "name is empty")
			}
		}
		return schema.Collect(&c, v)
	})
}

var unicodeNamesFile = &persist.Schema{
	Name:     "unicode-names",
	Pattern:  "unicode-names.json",
	FilePath: "<base-path>/unicode-names.json",
	Type:     persist.KindJSON,
	Check:    persist.JSONChecker(UnicodeNamesSchema()),
}

func newUnicodeNamesAdapter(base string) (*adapter.SourceAdapter[UnicodeNames], error) {
	return adapter.New[UnicodeNames](TypeUnicodeNames).
		Add(adapter.When(adapter.Always(), adapter.Transformer[*parser.Result, UnicodeNames, UnicodeNames]{
			URLs: func(vc adapter.VersionContext) []adapter.URLSpec {
				uv := unicodeVersion(vc)
				if uv == "" {
					return nil
				}
				return []adapter.URLSpec{adapter.URL(ucdURL(base, uv, "UnicodeData.txt"))}
			},
			Parser: adapter.GenericParser(nil),
			Transform: func(vc adapter.VersionContext, r *parser.Result) (UnicodeNames, error) {
				names, err := namesFromLines(r.Lines)
				if err != nil {
					return nil, fmt.Errorf("unicode %s: %w", unicodeVersion(vc), err)
				}
				return names, nil
			},
			Output: func(_ adapter.VersionContext, v UnicodeNames) (UnicodeNames, error) {
				return v, nil
			},
		})).
		Schema(UnicodeNamesSchema()).
		Persist(persist.Plan[UnicodeNames]{
			Schemas: []*persist.Schema{unicodeNamesFile},
			Map: func(v UnicodeNames) ([]persist.Operation, error) {
				return []persist.Operation{{Reference: unicodeNamesFile, Data: v}}, nil
			},
		}).
		Build()
}
