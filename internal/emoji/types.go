// Package emoji defines the concrete adapters that turn the Unicode emoji
// data files into the generated dataset: metadata, sequences, variations,
// unicode-names and the joined emojis composite.
package emoji

// Group is one emoji-test.txt group with its subgroups in file order.
type Group struct {
	Name      string   `json:"name"`
	Slug      string   `json:"slug"`
	Subgroups []string `json:"subgroups"`
}

// Metadata describes one emoji-test.txt entry.
type Metadata struct {
	Group        string `json:"group"`
	Subgroup     string `json:"subgroup"`
	Qualifier    string `json:"qualifier"`
	Hexcode      string `json:"hexcode"`
	Emoji        string `json:"emoji"`
	EmojiVersion string `json:"emojiVersion,omitempty"`
	Description  string `json:"description"`
}

// SubgroupMetadata maps subgroup slug → hexcode → entry.
type SubgroupMetadata map[string]map[string]Metadata

// MetadataOutput is the metadata adapter's result.
type MetadataOutput struct {
	Groups []Group `json:"groups"`
	// Emojis maps group slug → subgroup slug → hexcode → entry.
	Emojis map[string]SubgroupMetadata `json:"emojis"`
}

// Sequence is one entry of emoji-sequences.txt or emoji-zwj-sequences.txt.
type Sequence struct {
	// Property is the source file key: "sequences" or "zwj".
	Property    string `json:"property"`
	Hexcode     string `json:"hexcode"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// SequencesOutput is the sequences adapter's result.
type SequencesOutput struct {
	Sequences []Sequence `json:"sequences"`
	ZWJ       []Sequence `json:"zwj"`
}

// Variation is one emoji-variation-sequences.txt entry.
type Variation struct {
	Hexcode     string `json:"hexcode"`
	Sequence    string `json:"sequence"`
	Style       string `json:"style"`
	Description string `json:"description"`
}

// UnicodeNames maps hexcode → Unicode character name.
type UnicodeNames map[string]string

// Emoji is one row of the joined emojis dataset.
type Emoji struct {
	Hexcode      string              `json:"hexcode"`
	Emoji        string              `json:"emoji"`
	Group        string              `json:"group"`
	Subgroup     string              `json:"subgroup"`
	Qualifier    string              `json:"qualifier"`
	EmojiVersion string              `json:"emojiVersion,omitempty"`
	Description  string              `json:"description"`
	UnicodeName  string              `json:"unicodeName,omitempty"`
	Variations   []string            `json:"variations,omitempty"`
	Shortcodes   map[string][]string `json:"shortcodes,omitempty"`
}
