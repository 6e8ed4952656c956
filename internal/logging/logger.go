// Package logging provides config-driven categorized logging for emojigen.
// Every category is a named child of one zap logger, so output can be filtered
// per subsystem. Until Initialize is called all loggers are no-ops.
package logging

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot      Category = "boot"      // Startup, config loading
	CategoryCache     Category = "cache"     // Content cache hits, misses, evictions
	CategoryFetch     Category = "fetch"     // Upstream HTTP requests
	CategoryParse     Category = "parse"     // Record parsing
	CategoryAdapter   Category = "adapter"   // Source adapter dispatch and validation
	CategoryPersist   Category = "persist"   // Output file writes
	CategoryComposite Category = "composite" // Composite orchestration
	CategoryVersion   Category = "version"   // Version discovery and lockfile
	CategoryCLI       Category = "cli"       // Command handlers
)

// Options mirrors config.LoggingConfig to avoid an import cycle.
type Options struct {
	Level      string          // debug, info, warn, error
	Format     string          // json, console
	File       string          // optional extra output path
	Categories map[string]bool // per-category toggles, nil = all enabled
}

var (
	base       = zap.NewNop()
	categories map[string]bool
	loggers    = make(map[Category]*zap.SugaredLogger)
	mu         sync.RWMutex
)

// Initialize builds the root zap logger from opts.
// Should be called once at startup, before any pipeline work.
func Initialize(opts Options) error {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	var cfg zap.Config
	if opts.Format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	if opts.File != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, opts.File)
	}

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	SetLogger(l, opts.Categories)

	Get(CategoryBoot).Debugw("logging initialized", "level", level.String(), "format", opts.Format)
	return nil
}

// SetLogger replaces the root logger. Tests use it with zaptest or observer cores.
func SetLogger(l *zap.Logger, enabled map[string]bool) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	defer mu.Unlock()
	base = l
	categories = enabled
	loggers = make(map[Category]*zap.SugaredLogger)
}

// Logger returns the root logger.
func Logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return categoryEnabled(category)
}

func categoryEnabled(category Category) bool {
	if categories == nil {
		return true
	}
	enabled, exists := categories[string(category)]
	if !exists {
		return true // Enable by default if not specified
	}
	return enabled
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if the category is disabled.
func Get(category Category) *zap.SugaredLogger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	var l *zap.SugaredLogger
	if categoryEnabled(category) {
		l = base.Named(string(category)).Sugar()
	} else {
		l = zap.NewNop().Sugar()
	}
	loggers[category] = l
	return l
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Logger().Sync()
}

// NewRunID returns a fresh correlation id for one generate/validate run.
func NewRunID() string {
	return uuid.NewString()
}

// WithRunID creates a run-scoped logger carrying the correlation id.
func WithRunID(category Category, runID string) *zap.SugaredLogger {
	return Get(category).With("run", runID)
}

// =============================================================================
// CONVENIENCE FUNCTIONS
// =============================================================================

// Boot logs to the boot category
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Infof(format, args...)
}

// BootWarn logs a warning to the boot category
func BootWarn(format string, args ...interface{}) {
	Get(CategoryBoot).Warnf(format, args...)
}

// Cache logs to the cache category
func Cache(format string, args ...interface{}) {
	Get(CategoryCache).Infof(format, args...)
}

// CacheDebug logs debug to the cache category
func CacheDebug(format string, args ...interface{}) {
	Get(CategoryCache).Debugf(format, args...)
}

// CacheWarn logs a warning to the cache category
func CacheWarn(format string, args ...interface{}) {
	Get(CategoryCache).Warnf(format, args...)
}

// Fetch logs to the fetch category
func Fetch(format string, args ...interface{}) {
	Get(CategoryFetch).Infof(format, args...)
}

// FetchDebug logs debug to the fetch category
func FetchDebug(format string, args ...interface{}) {
	Get(CategoryFetch).Debugf(format, args...)
}

// FetchError logs an error to the fetch category
func FetchError(format string, args ...interface{}) {
	Get(CategoryFetch).Errorf(format, args...)
}

// ParseDebug logs debug to the parse category
func ParseDebug(format string, args ...interface{}) {
	Get(CategoryParse).Debugf(format, args...)
}

// Adapter logs to the adapter category
func Adapter(format string, args ...interface{}) {
	Get(CategoryAdapter).Infof(format, args...)
}

// AdapterDebug logs debug to the adapter category
func AdapterDebug(format string, args ...interface{}) {
	Get(CategoryAdapter).Debugf(format, args...)
}

// AdapterWarn logs a warning to the adapter category
func AdapterWarn(format string, args ...interface{}) {
	Get(CategoryAdapter).Warnf(format, args...)
}

// Persist logs to the persist category
func Persist(format string, args ...interface{}) {
	Get(CategoryPersist).Infof(format, args...)
}

// PersistDebug logs debug to the persist category
func PersistDebug(format string, args ...interface{}) {
	Get(CategoryPersist).Debugf(format, args...)
}

// PersistWarn logs a warning to the persist category
func PersistWarn(format string, args ...interface{}) {
	Get(CategoryPersist).Warnf(format, args...)
}

// Composite logs to the composite category
func Composite(format string, args ...interface{}) {
	Get(CategoryComposite).Infof(format, args...)
}

// CompositeDebug logs debug to the composite category
func CompositeDebug(format string, args ...interface{}) {
	Get(CategoryComposite).Debugf(format, args...)
}

// Version logs to the version category
func Version(format string, args ...interface{}) {
	Get(CategoryVersion).Infof(format, args...)
}

// VersionDebug logs debug to the version category
func VersionDebug(format string, args ...interface{}) {
	Get(CategoryVersion).Debugf(format, args...)
}

// =============================================================================
// TIMING HELPERS
// =============================================================================

// Timer helps measure operation duration
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// Stop ends the timer and logs the duration
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debugf("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs warning if duration exceeds threshold
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warnf("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debugf("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
