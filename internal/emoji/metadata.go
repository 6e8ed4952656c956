package emoji

import (
	"bufio"
	"regexp"
	"strings"

	"emojigen/internal/adapter"
	"emojigen/internal/persist"
	"emojigen/internal/schema"
)

// MetadataRow is one emoji-test.txt data line with its section headers.
type MetadataRow struct {
	Group       string `json:"group"`
	Subgroup    string `json:"subgroup"`
	Codepoints  string `json:"codepoints"`
	Qualifier   string `json:"qualifier"`
	Emoji       string `json:"emoji"`
	Version     string `json:"version,omitempty"`
	Description string `json:"description"`
}

// "😀 E1.0 grinning face"; the E-version tag only appears in newer files.
var testCommentPattern = regexp.MustCompile(`^(\S+)\s+(?:E(\d+\.\d+)\s+)?(.+)$`)

// ParseEmojiTest parses emoji-test.txt. Data lines before the first group
// and subgroup headers are an error.
func ParseEmojiTest(content string) ([]MetadataRow, error) {
	var (
		rows     []MetadataRow
		group    string
		subgroup string
	)

	sc := bufio.NewScanner(strings.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			header := strings.TrimSpace(strings.TrimPrefix(line, "#"))
			switch {
			case strings.HasPrefix(header, "group:"):
				group = strings.TrimSpace(strings.TrimPrefix(header, "group:"))
				subgroup = ""
			case strings.HasPrefix(header, "subgroup:"):
				subgroup = strings.TrimSpace(strings.TrimPrefix(header, "subgroup:"))
			}
			continue
		}

		if group == "" || subgroup == "" {
			return nil, &ParseError{Line: n, Text: line, Reason: "data before group and subgroup headers"}
		}

		data, comment, ok := strings.Cut(line, "#")
		if !ok {
			return nil, &ParseError{Line: n, Text: line, Reason: "missing comment"}
		}
		fields := strings.Split(data, ";")
		if len(fields) != 2 {
			return nil, &ParseError{Line: n, Text: line, Reason: "expected 2 fields"}
		}
		m := testCommentPattern.FindStringSubmatch(strings.TrimSpace(comment))
		if m == nil {
			return nil, &ParseError{Line: n, Text: line, Reason: "unexpected comment format"}
		}

		rows = append(rows, MetadataRow{
			Group:       group,
			Subgroup:    subgroup,
			Codepoints:  strings.TrimSpace(fields[0]),
			Qualifier:   strings.TrimSpace(fields[1]),
			Emoji:       m[1],
			Version:     m[2],
			Description: m[3],
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

// groupMetadata builds the grouped output, keeping groups and subgroups in
// file order.
func groupMetadata(rows []MetadataRow) MetadataOutput {
	out := MetadataOutput{Groups: []Group{}, Emojis: map[string]SubgroupMetadata{}}
	index := map[string]int{}

	for _, r := range rows {
		gslug, sslug := Slug(r.Group), Slug(r.Subgroup)

		i, ok := index[gslug]
		if !ok {
			i = len(out.Groups)
			index[gslug] = i
			out.Groups = append(out.Groups, Group{Name: r.Group, Slug: gslug, Subgroups: []string{}})
			out.Emojis[gslug] = SubgroupMetadata{}
		}
		if _, ok := out.Emojis[gslug][sslug]; !ok {
			out.Groups[i].Subgroups = append(out.Groups[i].Subgroups, sslug)
			out.Emojis[gslug][sslug] = map[string]Metadata{}
		}

		hex := Hexcode(r.Codepoints)
		out.Emojis[gslug][sslug][hex] = Metadata{
			Group:        gslug,
			Subgroup:     sslug,
			Qualifier:    r.Qualifier,
			Hexcode:      hex,
			Emoji:        r.Emoji,
			EmojiVersion: r.Version,
			Description:  r.Description,
		}
	}
	return out
}

// MetadataSchema requires at least one group and complete entries.
func MetadataSchema() schema.Schema[MetadataOutput] {
	return schema.Func[MetadataOutput](func(v MetadataOutput) schema.Result[MetadataOutput] {
		var c schema.Collector
		if len(v.Groups) == 0 {
			c.Addf("groups", "must not be empty")
		}
		for _, g := range v.Groups {
			if g.Slug == "" {
				c.Addf("groups", "group %q has an empty slug", g.Name)
			}
			if _, ok := v.Emojis[g.Slug]; !ok {
				c.Addf("emojis."+g.Slug, "missing entries for group")
			}
		}
		for gslug, subgroups := range v.Emojis {
			checkSubgroups(&c, "emojis."+gslug, subgroups)
		}
		return schema.Collect(&c, v)
	})
}

func checkSubgroups(c *schema.Collector, path string, subgroups SubgroupMetadata) {
	for sslug, entries := range subgroups {
		for hex, m := range entries {
			p := path + "." + sslug + "." + hex
			if m.Hexcode != hex {
				c.Addf(p, "hexcode %q does not match key", m.Hexcode)
			}
			if m.Emoji == "" {
				c.Addf(p, "emoji is empty")
			}
			if m.Qualifier == "" {
				c.Addf(p, "qualifier is empty")
			}
		}
	}
}

var (
	groupsFile = &persist.Schema{
		Name:     "groups",
		Pattern:  "groups.json",
		FilePath: "<base-path>/groups.json",
		Type:     persist.KindJSON,
		Check: persist.JSONChecker[[]Group](schema.Func[[]Group](func(v []Group) schema.Result[[]Group] {
			if len(v) == 0 {
				return schema.Fail[[]Group](schema.Issue{Message: "no groups"})
			}
			return schema.OK(v)
		})),
	}
	metadataFile = &persist.Schema{
		Name:     "metadata",
		Pattern:  "metadata/*.json",
		FilePath: "<base-path>/metadata/{group}.json",
		Type:     persist.KindJSON,
		Check: persist.JSONChecker[SubgroupMetadata](schema.Func[SubgroupMetadata](func(v SubgroupMetadata) schema.Result[SubgroupMetadata] {
			var c schema.Collector
			if len(v) == 0 {
				c.Addf("", "no subgroups")
			}
			checkSubgroups(&c, "", v)
			return schema.Collect(&c, v)
		})),
	}
)

func newMetadataAdapter(base string) (*adapter.SourceAdapter[MetadataOutput], error) {
	return adapter.New[MetadataOutput](TypeMetadata).
		Add(adapter.WhenRange(">=4.0", adapter.Transformer[[]MetadataRow, MetadataOutput, MetadataOutput]{
			URLs: func(vc adapter.VersionContext) []adapter.URLSpec {
				return []adapter.URLSpec{adapter.URL(emojiURL(base, vc.EmojiVersion, "emoji-test.txt"))}
			},
			Parser: adapter.CustomParser(func(_ adapter.VersionContext, raw string) ([]MetadataRow, error) {
				return ParseEmojiTest(raw)
			}),
			Transform: func(_ adapter.VersionContext, rows []MetadataRow) (MetadataOutput, error) {
				return groupMetadata(rows), nil
			},
			Output: func(_ adapter.VersionContext, v MetadataOutput) (MetadataOutput, error) {
				return v, nil
			},
		})).
		Schema(MetadataSchema()).
		Persist(persist.Plan[MetadataOutput]{
			Schemas: []*persist.Schema{groupsFile, metadataFile},
			Map: func(v MetadataOutput) ([]persist.Operation, error) {
				ops := []persist.Operation{{Reference: groupsFile, Data: v.Groups}}
				for _, g := range v.Groups {
					ops = append(ops, persist.Operation{
						Reference: metadataFile,
						Data:      v.Emojis[g.Slug],
						Params:    map[string]string{"group": g.Slug},
					})
				}
				return ops, nil
			},
		}).
		Build()
}
