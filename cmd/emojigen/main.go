package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"emojigen/internal/adapter"
	"emojigen/internal/cache"
	"emojigen/internal/config"
	"emojigen/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string
	outputDir  string
	cacheDir   string
	timeout    time.Duration

	// Loaded in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "emojigen",
	Short: "Generate emoji datasets from the Unicode data files",
	Long: `emojigen fetches the Unicode emoji data files for one or more emoji
versions, validates them and writes a normalized JSON dataset per version.

Upstream files are cached on disk; pass --force to refetch.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if outputDir != "" {
			loaded.Output.Dir = outputDir
		}
		if cacheDir != "" {
			loaded.Cache.Dir = cacheDir
		}
		if verbose {
			loaded.Logging.Level = "debug"
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		if err := logging.Initialize(loaded.Logging.Options()); err != nil {
			return err
		}
		cfg = loaded
		logger = logging.Logger().Named(string(logging.CategoryCLI))
		logging.Boot("Config loaded from %s (upstream %s)", configPath, cfg.Upstream.BaseURL)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "emojigen.yaml", "Config file")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output-dir", "o", "", "Output directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "Cache directory (overrides config)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "Overall operation timeout")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(versionsCmd)
	rootCmd.AddCommand(validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}

// commandContext derives the run context: cancelled on SIGINT/SIGTERM or after --timeout.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

// newRuntime builds the content cache from config.
func newRuntime() *adapter.Runtime {
	return &adapter.Runtime{
		Cache: cache.New(cfg.GetCacheDir(),
			cache.WithDefaultTTL(cfg.GetCacheTTL()),
			cache.WithTimeout(cfg.GetFetchTimeout()),
			cache.WithUserAgent(cfg.Fetch.UserAgent),
		),
	}
}
