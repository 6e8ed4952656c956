package emoji

import (
	"strings"

	"emojigen/internal/adapter"
	"emojigen/internal/version"
)

// emojiURL addresses a file in the emoji/{version}/ tree.
func emojiURL(base, emojiVersion, file string) string {
	return strings.TrimRight(base, "/") + "/emoji/" + emojiVersion + "/" + file
}

// ucdURL addresses a file in the {unicodeVersion}/ucd/ tree.
func ucdURL(base, unicodeVersion, file string) string {
	return strings.TrimRight(base, "/") + "/" + unicodeVersion + "/ucd/" + file
}

// unicodeVersion prefers the version carried by vc and falls back to the
// static emoji→Unicode mapping.
func unicodeVersion(vc adapter.VersionContext) string {
	if vc.UnicodeVersion != "" {
		return vc.UnicodeVersion
	}
	uv, err := version.UnicodeFor(vc.EmojiVersion)
	if err != nil {
		return ""
	}
	return uv
}
