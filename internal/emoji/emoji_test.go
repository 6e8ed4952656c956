package emoji

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"emojigen/internal/adapter"
	"emojigen/internal/cache"
	"emojigen/internal/composite"
	"emojigen/internal/persist"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

func TestParseEmojiTest(t *testing.T) {
	rows, err := ParseEmojiTest(emojiTestFixture)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	want := MetadataRow{
		Group:       "Smileys & Emotion",
		Subgroup:    "face-smiling",
		Codepoints:  "1F600",
		Qualifier:   "fully-qualified",
		Emoji:       "😀",
		Version:     "1.0",
		Description: "grinning face",
	}
	if diff := cmp.Diff(want, rows[0]); diff != "" {
		t.Errorf("first row mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "family", rows[3].Subgroup)
	assert.Equal(t, "family: man, woman, girl", rows[3].Description)
}

func TestParseEmojiTest_LegacyComment(t *testing.T) {
	rows, err := ParseEmojiTest("# group: Smileys & People\n# subgroup: face-positive\n1F600 ; fully-qualified # 😀 grinning face\n")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].Version)
	assert.Equal(t, "grinning face", rows[0].Description)
}

func TestParseEmojiTest_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		line    int
	}{
		{"data before group", "1F600 ; fully-qualified # 😀 E1.0 grinning face\n", 1},
		{"data before subgroup", "# group: Smileys & Emotion\n1F600 ; fully-qualified # 😀 E1.0 grinning face\n", 2},
		{"too many fields", "# group: g\n# subgroup: s\n1F600 ; fully-qualified ; extra # 😀 E1.0 grinning face\n", 3},
		{"missing comment", "# group: g\n# subgroup: s\n\n1F600 ; fully-qualified\n", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEmojiTest(tt.content)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.line, perr.Line)
		})
	}
}

func TestMetadata_EndToEnd(t *testing.T) {
	m := newMirror(t)
	s := m.set(t)
	out := t.TempDir()

	report, err := s.Metadata.Generate(context.Background(), testRuntime(t), v15(), persist.Options{OutputDir: out, Pretty: true})
	require.NoError(t, err)
	assert.Len(t, report.Written, 3)

	var groups []Group
	readJSON(t, filepath.Join(out, "v15.0", "groups.json"), &groups)
	wantGroups := []Group{
		{Name: "Smileys & Emotion", Slug: "smileys-emotion", Subgroups: []string{"face-smiling"}},
		{Name: "People & Body", Slug: "people-body", Subgroups: []string{"family"}},
	}
	if diff := cmp.Diff(wantGroups, groups); diff != "" {
		t.Errorf("groups.json mismatch (-want +got):\n%s", diff)
	}

	var smileys SubgroupMetadata
	readJSON(t, filepath.Join(out, "v15.0", "metadata", "smileys-emotion.json"), &smileys)
	grinning := smileys["face-smiling"]["1F600"]
	assert.Equal(t, Metadata{
		Group:        "smileys-emotion",
		Subgroup:     "face-smiling",
		Qualifier:    "fully-qualified",
		Hexcode:      "1F600",
		Emoji:        "😀",
		EmojiVersion: "1.0",
		Description:  "grinning face",
	}, grinning)
	assert.Len(t, smileys["face-smiling"], 3)

	findings, err := persist.Verify(persist.BasePath(out, "15.0"), s.Metadata.Schemas(), "utf-8")
	require.NoError(t, err)
	require.Len(t, findings, 3)
	for _, f := range findings {
		assert.Empty(t, f.Issues, f.Path)
	}
}

func TestMetadata_UnsupportedVersion(t *testing.T) {
	s := newMirror(t).set(t)
	_, err := s.Metadata.Run(context.Background(), testRuntime(t), adapter.VersionContext{EmojiVersion: "3.0"})
	var notImpl *adapter.NotImplementedError
	assert.ErrorAs(t, err, &notImpl)
}

func TestSequences(t *testing.T) {
	s := newMirror(t).set(t)

	got, err := s.Sequences.Run(context.Background(), testRuntime(t), v15())
	require.NoError(t, err)

	want := SequencesOutput{
		Sequences: []Sequence{
			{Property: "sequences", Hexcode: "231A", Type: "Basic_Emoji", Description: "watch..hourglass done"},
			{Property: "sequences", Hexcode: "231B", Type: "Basic_Emoji", Description: "watch..hourglass done"},
			{Property: "sequences", Hexcode: "1F1E6-1F1E8", Type: "RGI_Emoji_Flag_Sequence", Description: "flag: Ascension Island"},
		},
		ZWJ: []Sequence{
			{Property: "zwj", Hexcode: "1F468-200D-1F469-200D-1F467", Type: "RGI_Emoji_ZWJ_Sequence", Description: "family: man, woman, girl"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sequences mismatch (-want +got):\n%s", diff)
	}
}

func TestVariations_Layouts(t *testing.T) {
	m := newMirror(t)
	s := m.set(t)
	rt := testRuntime(t)

	want := []Variation{
		{Hexcode: "263A", Sequence: "263A-FE0E", Style: "text", Description: "WHITE SMILING FACE"},
		{Hexcode: "263A", Sequence: "263A-FE0F", Style: "emoji", Description: "WHITE SMILING FACE"},
	}

	modern, err := s.Variations.Run(context.Background(), rt, v15())
	require.NoError(t, err)
	assert.Equal(t, want, modern)

	legacy, err := s.Variations.Run(context.Background(), rt, adapter.VersionContext{EmojiVersion: "12.0"})
	require.NoError(t, err)
	assert.Equal(t, want, legacy)

	hits := m.hits.Load()
	old, err := s.Variations.Run(context.Background(), rt, adapter.VersionContext{EmojiVersion: "4.0"})
	require.NoError(t, err)
	assert.Empty(t, old)
	assert.NotNil(t, old)
	assert.Equal(t, hits, m.hits.Load())
}

func TestUnicodeNames(t *testing.T) {
	s := newMirror(t).set(t)

	got, err := s.UnicodeNames.Run(context.Background(), testRuntime(t), adapter.VersionContext{EmojiVersion: "15.0"})
	require.NoError(t, err)
	assert.Equal(t, UnicodeNames{
		"0000":  "NULL",
		"0023":  "NUMBER SIGN",
		"263A":  "WHITE SMILING FACE",
		"1F600": "GRINNING FACE",
	}, got)
}

func TestEmojis_Composite(t *testing.T) {
	m := newMirror(t)
	s := m.set(t)
	out := t.TempDir()

	_, err := s.Emojis.Generate(context.Background(), testRuntime(t), v15(), persist.Options{OutputDir: out})
	require.NoError(t, err)

	var rows []Emoji
	readJSON(t, filepath.Join(out, "v15.0", "emojis.json"), &rows)
	require.Len(t, rows, 4)

	hexcodes := make([]string, len(rows))
	for i, r := range rows {
		hexcodes[i] = r.Hexcode
	}
	assert.Equal(t, []string{"1F600", "263A", "263A-FE0F", "1F468-200D-1F469-200D-1F467"}, hexcodes)

	assert.Equal(t, "GRINNING FACE", rows[0].UnicodeName)
	assert.Equal(t, map[string][]string{"github": {"grinning"}}, rows[0].Shortcodes)

	assert.Equal(t, []string{"text", "emoji"}, rows[2].Variations)
	assert.Equal(t, map[string][]string{"github": {"relaxed"}}, rows[2].Shortcodes)

	assert.Empty(t, rows[3].UnicodeName)
	assert.Nil(t, rows[3].Shortcodes)
}

func TestEmojis_VersionsFailIndependently(t *testing.T) {
	m := newMirror(t)
	m.gemojiDelay = 150 * time.Millisecond
	s := m.set(t)
	rt := testRuntime(t)

	broken := make(chan error, 1)
	go func() {
		_, err := s.Emojis.Run(context.Background(), rt, adapter.VersionContext{EmojiVersion: "14.0", UnicodeVersion: "14.0.0"})
		broken <- err
	}()
	time.Sleep(30 * time.Millisecond)

	rows, err := s.Emojis.Run(context.Background(), rt, v15())
	require.NoError(t, err)
	assert.Len(t, rows, 4)
	assert.Equal(t, map[string][]string{"github": {"grinning"}}, rows[0].Shortcodes)

	var fetchErr *cache.FetchError
	require.ErrorAs(t, <-broken, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.Status)
}

func TestEmojis_TransformOrder(t *testing.T) {
	_, err := attachUnicodeData(v15(), composite.Record{})
	assert.ErrorIs(t, err, ErrTransformOrder)

	_, err = attachShortcodes(v15(), nil)
	assert.ErrorIs(t, err, ErrTransformOrder)

	_, err = flattenMetadata(v15(), &joinState{})
	assert.ErrorIs(t, err, ErrTransformOrder)
}

func TestEmojis_WithoutProviders(t *testing.T) {
	m := newMirror(t)
	s, err := NewSet(m.srv.URL, nil)
	require.NoError(t, err)

	rows, err := s.Emojis.Run(context.Background(), testRuntime(t), v15())
	require.NoError(t, err)
	for _, r := range rows {
		assert.Nil(t, r.Shortcodes)
	}
}

func TestSetSelect(t *testing.T) {
	s := newMirror(t).set(t)

	all, err := s.Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	picked, err := s.Select([]string{TypeSequences, TypeEmojis})
	require.NoError(t, err)
	assert.Equal(t, TypeSequences, picked[0].Type())
	assert.Equal(t, TypeEmojis, picked[1].Type())

	_, err = s.Select([]string{"nope"})
	assert.Error(t, err)
}

func TestLookupProviders(t *testing.T) {
	got, err := LookupProviders([]string{"github"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, GitHubProvider.URL, got[0].URL)

	_, err = LookupProviders([]string{"discord"})
	assert.Error(t, err)
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, v))
}
