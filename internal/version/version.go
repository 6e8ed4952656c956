// Package version models emoji spec versions: ordering, range predicates,
// the emoji→Unicode version mapping, the emojis.lock file and discovery of
// published versions upstream.
package version

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
)

// ErrInvalidVersion is returned for strings that are not a version.
var ErrInvalidVersion = errors.New("version: invalid version")

// ErrInvalidRange is returned for unparsable range constraints.
var ErrInvalidRange = errors.New("version: invalid range")

// Parse parses a loose version such as "15.0" or "15.1.0".
func Parse(v string) (*semver.Version, error) {
	parsed, err := semver.NewVersion(v)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidVersion, v, err)
	}
	return parsed, nil
}

// Valid reports whether v parses.
func Valid(v string) bool {
	_, err := semver.NewVersion(v)
	return err == nil
}

// Compare returns -1, 0 or 1. Unparsable versions sort before valid ones.
func Compare(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	switch {
	case errA != nil && errB != nil:
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	}
	return va.Compare(vb)
}

// Sort orders versions ascending in place.
func Sort(versions []string) {
	sort.SliceStable(versions, func(i, j int) bool { return Compare(versions[i], versions[j]) < 0 })
}

// Range compiles a constraint such as ">=5.0, <13.0" into a matcher.
// Versions that do not parse never match.
func Range(constraint string) (func(string) bool, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidRange, constraint, err)
	}
	return func(v string) bool {
		parsed, err := semver.NewVersion(v)
		if err != nil {
			return false
		}
		return c.Check(parsed)
	}, nil
}

// Emoji versions published before the numbering was aligned with Unicode.
var legacyUnicode = map[string]string{
	"1.0":  "8.0.0",
	"2.0":  "8.0.0",
	"3.0":  "9.0.0",
	"4.0":  "9.0.0",
	"5.0":  "10.0.0",
	"13.1": "13.0.0",
}

// UnicodeFor returns the Unicode version an emoji version was published against.
func UnicodeFor(emojiVersion string) (string, error) {
	if uv, ok := legacyUnicode[emojiVersion]; ok {
		return uv, nil
	}
	v, err := Parse(emojiVersion)
	if err != nil {
		return "", err
	}
	if v.Major() < 11 {
		return "", fmt.Errorf("%w: no Unicode mapping for emoji %s", ErrInvalidVersion, emojiVersion)
	}
	return fmt.Sprintf("%d.%d.0", v.Major(), v.Minor()), nil
}
