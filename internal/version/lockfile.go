package version

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// ErrLockfileNotFound is returned when emojis.lock does not exist.
var ErrLockfileNotFound = errors.New("version: lockfile not found")

// EmojiSpecRecord describes one published emoji version.
type EmojiSpecRecord struct {
	EmojiVersion   string `json:"emoji_version"`
	UnicodeVersion string `json:"unicode_version"`
	Draft          bool   `json:"draft"`
}

// Lockfile is the on-disk emojis.lock.
type Lockfile struct {
	UpdatedAt     time.Time         `json:"updated_at"`
	LatestVersion string            `json:"latest_version"`
	Versions      []EmojiSpecRecord `json:"versions"`
}

// NewLockfile sorts records ascending and picks the newest non-draft as latest.
func NewLockfile(records []EmojiSpecRecord, now time.Time) *Lockfile {
	sorted := append([]EmojiSpecRecord(nil), records...)
	sortRecords(sorted)

	lf := &Lockfile{UpdatedAt: now.UTC(), Versions: sorted}
	for i := len(sorted) - 1; i >= 0; i-- {
		if !sorted[i].Draft {
			lf.LatestVersion = sorted[i].EmojiVersion
			break
		}
	}
	return lf
}

func sortRecords(records []EmojiSpecRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return Compare(records[i].EmojiVersion, records[j].EmojiVersion) < 0
	})
}

// Find returns the record for emojiVersion.
func (l *Lockfile) Find(emojiVersion string) (EmojiSpecRecord, bool) {
	for _, r := range l.Versions {
		if r.EmojiVersion == emojiVersion {
			return r, true
		}
	}
	return EmojiSpecRecord{}, false
}

// ReadLockfile loads emojis.lock from path.
func ReadLockfile(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrLockfileNotFound, path)
		}
		return nil, fmt.Errorf("failed to read lockfile: %w", err)
	}

	var lf Lockfile
	if err := json.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("failed to parse lockfile: %w", err)
	}
	return &lf, nil
}

// WriteLockfile saves lf to path as indented JSON.
func WriteLockfile(path string, lf *Lockfile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create lockfile directory: %w", err)
	}

	data, err := json.MarshalIndent(lf, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal lockfile: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write lockfile: %w", err)
	}
	return nil
}
