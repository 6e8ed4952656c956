package logging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, enabled map[string]bool) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core), enabled)
	t.Cleanup(func() { SetLogger(nil, nil) })
	return logs
}

func TestCategoriesAreNamed(t *testing.T) {
	logs := observe(t, nil)

	Cache("hit %s", "emoji_15.0_emoji_test.txt")
	PersistWarn("skipping %s", "groups.json")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "cache", entries[0].LoggerName)
	assert.Equal(t, "hit emoji_15.0_emoji_test.txt", entries[0].Message)
	assert.Equal(t, "persist", entries[1].LoggerName)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestDisabledCategoryIsSilent(t *testing.T) {
	logs := observe(t, map[string]bool{"fetch": false})

	Fetch("GET %s", "https://example.test")
	Adapter("still logged")

	require.Equal(t, 1, logs.Len())
	assert.False(t, IsCategoryEnabled(CategoryFetch))
	assert.True(t, IsCategoryEnabled(CategoryAdapter))
}

func TestWithRunIDAddsField(t *testing.T) {
	logs := observe(t, nil)

	id := NewRunID()
	WithRunID(CategoryCLI, id).Infow("generate started")

	entries := logs.FilterField(zap.String("run", id)).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "generate started", entries[0].Message)
}

func TestTimerThreshold(t *testing.T) {
	logs := observe(t, nil)

	timer := StartTimer(CategoryParse, "parse emoji-test.txt")
	timer.start = time.Now().Add(-2 * time.Second)
	elapsed := timer.StopWithThreshold(time.Second)

	assert.GreaterOrEqual(t, elapsed, 2*time.Second)
	require.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestInitializeRejectsUnknownLevel(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil, nil) })
	err := Initialize(Options{Level: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestInitializeJSON(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil, nil) })
	require.NoError(t, Initialize(Options{Level: "debug", Format: "json"}))
	assert.NotNil(t, Logger())
}
