package emoji

import (
	"fmt"
	"strconv"
	"strings"
)

const variationSelector16 = "FE0F"

// Hexcode joins space separated code points with "-": "1F468 200D 1F469" → "1F468-200D-1F469".
func Hexcode(codepoints string) string {
	return strings.ToUpper(strings.Join(strings.Fields(codepoints), "-"))
}

// HexcodeOf returns the hexcode of an emoji string.
func HexcodeOf(s string) string {
	parts := make([]string, 0, len(s))
	for _, r := range s {
		parts = append(parts, fmt.Sprintf("%04X", r))
	}
	return strings.Join(parts, "-")
}

// FromHexcode decodes a hexcode back to the emoji string.
func FromHexcode(hexcode string) (string, error) {
	var b strings.Builder
	for _, part := range strings.Split(hexcode, "-") {
		n, err := strconv.ParseUint(part, 16, 32)
		if err != nil {
			return "", fmt.Errorf("invalid code point %q: %w", part, err)
		}
		b.WriteRune(rune(n))
	}
	return b.String(), nil
}

// StripVariation removes FE0F selectors so qualified and unqualified forms compare equal.
func StripVariation(hexcode string) string {
	parts := strings.Split(hexcode, "-")
	kept := parts[:0]
	for _, p := range parts {
		if p != variationSelector16 {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "-")
}

// expandRange turns "231A..231B" into ["231A", "231B"]; other input is
// returned as a single hexcode.
func expandRange(field string) ([]string, error) {
	lo, hi, ok := strings.Cut(field, "..")
	if !ok {
		return []string{Hexcode(field)}, nil
	}
	start, err := strconv.ParseUint(strings.TrimSpace(lo), 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid range start %q", lo)
	}
	end, err := strconv.ParseUint(strings.TrimSpace(hi), 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid range end %q", hi)
	}
	if end < start || end > 0x10FFFF {
		return nil, fmt.Errorf("invalid range %s", field)
	}
	out := make([]string, 0, end-start+1)
	for cp := start; cp <= end; cp++ {
		out = append(out, fmt.Sprintf("%04X", cp))
	}
	return out, nil
}

// Slug lowercases s and joins its alphanumeric runs with "-":
// "Smileys & Emotion" → "smileys-emotion".
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
