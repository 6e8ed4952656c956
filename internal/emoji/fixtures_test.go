package emoji

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"emojigen/internal/adapter"
	"emojigen/internal/cache"
)

const emojiTestFixture = `# emoji-test.txt
# Date: 2022-08-12
# Version: 15.0

# group: Smileys & Emotion

# subgroup: face-smiling
1F600                                                  ; fully-qualified     # 😀 E1.0 grinning face
263A FE0F                                              ; fully-qualified     # ☺️ E0.6 smiling face
263A                                                   ; unqualified         # ☺ E0.6 smiling face

# Smileys & Emotion subtotal:		3

# group: People & Body

# subgroup: family
1F468 200D 1F469 200D 1F467                            ; fully-qualified     # 👨‍👩‍👧 E2.0 family: man, woman, girl

#EOF
`

const sequencesFixture = `# emoji-sequences.txt
# Basic_Emoji
231A..231B    ; Basic_Emoji                  ; watch..hourglass done          # E0.6   [2] (⌚..⌛)

# Total elements: 2

1F1E6 1F1E8   ; RGI_Emoji_Flag_Sequence      ; flag: Ascension Island         # E2.0   [1] (🇦🇨)
`

const zwjFixture = `# emoji-zwj-sequences.txt
1F468 200D 1F469 200D 1F467 ; RGI_Emoji_ZWJ_Sequence  ; family: man, woman, girl   # E2.0   [1] (👨‍👩‍👧)
`

const variationsFixture = `# emoji-variation-sequences.txt
263A FE0E  ; text style;  # (1.1) WHITE SMILING FACE
263A FE0F  ; emoji style; # (1.1) WHITE SMILING FACE
`

const unicodeDataFixture = `0000;<control>;Cc;0;BN;;;;;N;NULL;;;;
0023;NUMBER SIGN;Po;0;ET;;;;;N;;;;;
263A;WHITE SMILING FACE;So;0;ON;;;;;N;;;;;
3400;<CJK Ideograph Extension A, First>;Lo;0;L;;;;;N;;;;;
1F600;GRINNING FACE;So;0;ON;;;;;N;;;;;
`

const gemojiFixture = `[
  {"emoji": "😀", "description": "grinning face", "aliases": ["grinning"]},
  {"emoji": "☺️", "description": "smiling face", "aliases": ["relaxed"]},
  {"emoji": "🙃", "description": "upside-down face", "aliases": []}
]`

// mirror is a fake Unicode mirror serving one fixture tree.
type mirror struct {
	srv  *httptest.Server
	hits atomic.Int32
	// gemojiDelay holds the shortcode response back; set before the first request.
	gemojiDelay time.Duration
}

func newMirror(t *testing.T) *mirror {
	t.Helper()
	files := map[string]string{
		"/emoji/15.0/emoji-test.txt":                      emojiTestFixture,
		"/emoji/15.0/emoji-sequences.txt":                 sequencesFixture,
		"/emoji/15.0/emoji-zwj-sequences.txt":             zwjFixture,
		"/15.0.0/ucd/emoji/emoji-variation-sequences.txt": variationsFixture,
		"/15.0.0/ucd/UnicodeData.txt":                     unicodeDataFixture,
		"/emoji/12.0/emoji-variation-sequences.txt":       variationsFixture,
		"/gemoji.json":                                    gemojiFixture,
	}

	m := &mirror{}
	m.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.hits.Add(1)
		if r.URL.Path == "/gemoji.json" && m.gemojiDelay > 0 {
			time.Sleep(m.gemojiDelay)
		}
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(m.srv.Close)
	return m
}

func (m *mirror) provider() ShortcodeProvider {
	p := GitHubProvider
	p.URL = m.srv.URL + "/gemoji.json"
	return p
}

func (m *mirror) set(t *testing.T) *Set {
	t.Helper()
	s, err := NewSet(m.srv.URL, []ShortcodeProvider{m.provider()})
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	return s
}

func testRuntime(t *testing.T) *adapter.Runtime {
	t.Helper()
	return &adapter.Runtime{Cache: cache.New(t.TempDir())}
}

func v15() adapter.VersionContext {
	return adapter.VersionContext{EmojiVersion: "15.0", UnicodeVersion: "15.0.0"}
}
