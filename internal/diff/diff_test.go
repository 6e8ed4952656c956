package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLines(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
		want     Stats
	}{
		{"identical", "a\nb\n", "a\nb\n", Stats{}},
		{"addition", "a\nb\n", "a\nb\nc\n", Stats{Added: 1}},
		{"deletion", "a\nb\nc\n", "a\nc\n", Stats{Removed: 1}},
		{"replacement", "a\nb\nc\n", "a\nB\nc\n", Stats{Added: 1, Removed: 1}},
		{"new file", "", "a\nb", Stats{Added: 2}},
		{"emptied", "a\nb\n", "", Stats{Removed: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Lines(tt.old, tt.new)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Changed(), got.Changed())
		})
	}
}

func TestLines_PrettyJSON(t *testing.T) {
	old := "[\n  \"1F600\",\n  \"263A\"\n]"
	updated := "[\n  \"1F600\",\n  \"263A\",\n  \"1FAE8\"\n]"

	got := Lines(old, updated)
	assert.Equal(t, Stats{Added: 2, Removed: 1}, got)
	assert.Equal(t, "+2/-1", got.String())
}

func TestLines_Large(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 5000; i++ {
		b.WriteString("line\n")
	}
	old := b.String()
	assert.Equal(t, Stats{Added: 1}, Lines(old, old+"tail\n"))
}
