package main

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"emojigen/internal/adapter"
	"emojigen/internal/diff"
	"emojigen/internal/emoji"
	"emojigen/internal/logging"
	"emojigen/internal/persist"
	"emojigen/internal/version"
)

var (
	generators         []string
	shortcodeProviders []string
	force              bool
)

// generateCmd generates datasets for the given emoji versions
var generateCmd = &cobra.Command{
	Use:   "generate <versions...>",
	Short: "Generate datasets for one or more emoji versions",
	Long: `Runs the selected generators for every requested emoji version and
writes the results under {output-dir}/v{version}/.

Versions are resolved through the lockfile; "latest" selects its latest
version. Each version runs independently: a failing version is reported
and the others still complete.

Examples:
  emojigen generate 15.0 15.1
  emojigen generate latest --generators metadata,sequences
  emojigen generate 15.1 --force --shortcode-providers github`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringSliceVarP(&generators, "generators", "g", nil,
		fmt.Sprintf("Generators to run (default: all of %s, %s, %s, %s, %s)",
			emoji.TypeMetadata, emoji.TypeSequences, emoji.TypeVariations, emoji.TypeUnicodeNames, emoji.TypeEmojis))
	generateCmd.Flags().StringSliceVar(&shortcodeProviders, "shortcode-providers", []string{emoji.GitHubProvider.Name},
		fmt.Sprintf("Shortcode providers for the emojis generator (available: %v)", emoji.Providers()))
	generateCmd.Flags().BoolVarP(&force, "force", "f", false, "Bypass the cache and overwrite existing files")
}

// runGenerate generates every requested version and prints a summary.
func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	lock, err := version.ReadLockfile(cfg.Lockfile)
	if err != nil {
		if errors.Is(err, version.ErrLockfileNotFound) {
			return fmt.Errorf("%w (run 'emojigen versions --write-lockfile' first)", err)
		}
		return err
	}

	records, err := resolveVersions(lock, args)
	if err != nil {
		return err
	}

	providers, err := emoji.LookupProviders(shortcodeProviders)
	if err != nil {
		return err
	}
	set, err := emoji.NewSet(cfg.Upstream.BaseURL, providers)
	if err != nil {
		return err
	}
	selected, err := set.Select(generators)
	if err != nil {
		return err
	}

	runID := logging.NewRunID()
	log := logger.With(zap.String("run", runID))
	log.Info("Generating", zap.Strings("versions", args), zap.Int("generators", len(selected)), zap.Bool("force", force))

	rt := newRuntime()
	opts := persist.Options{
		OutputDir: cfg.Output.Dir,
		Force:     force,
		Pretty:    cfg.Output.Pretty,
		Encoding:  cfg.Output.Encoding,
	}

	summaries := make([]versionSummary, len(records))
	var g errgroup.Group
	g.SetLimit(4)
	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			summaries[i] = generateVersion(ctx, log, rt, selected, rec, opts)
			return nil
		})
	}
	_ = g.Wait()

	fmt.Fprint(cmd.OutOrStdout(), renderSummary("Generate", summaries))

	for _, s := range summaries {
		if s.failed() {
			return fmt.Errorf("generation failed for one or more versions")
		}
	}
	return nil
}

// generateVersion runs every generator for one version. Unsupported
// generators are skipped; any other error marks the generator failed.
func generateVersion(ctx context.Context, log *zap.Logger, rt *adapter.Runtime, gens []emoji.Generator, rec version.EmojiSpecRecord, opts persist.Options) versionSummary {
	summary := versionSummary{version: rec.EmojiVersion}
	vc := adapter.VersionContext{
		EmojiVersion:   rec.EmojiVersion,
		UnicodeVersion: rec.UnicodeVersion,
		Force:          opts.Force,
	}

	for _, gen := range gens {
		report, err := gen.Generate(ctx, rt, vc, opts)

		var notImpl *adapter.NotImplementedError
		switch {
		case errors.As(err, &notImpl):
			log.Warn("Generator not available for version",
				zap.String("generator", gen.Type()), zap.String("version", rec.EmojiVersion))
			summary.outcomes = append(summary.outcomes, outcome{name: gen.Type(), status: statusSkipped, detail: "not available"})
		case err != nil:
			log.Error("Generator failed",
				zap.String("generator", gen.Type()), zap.String("version", rec.EmojiVersion), zap.Error(err))
			summary.outcomes = append(summary.outcomes, outcome{name: gen.Type(), status: statusFailed, detail: err.Error()})
		default:
			detail := fmt.Sprintf("%d written", len(report.Written))
			if len(report.Changes) > 0 {
				var total diff.Stats
				for _, st := range report.Changes {
					total.Added += st.Added
					total.Removed += st.Removed
				}
				detail += fmt.Sprintf(" (%s lines)", total)
			}
			if n := len(report.Unchanged); n > 0 {
				detail += fmt.Sprintf(", %d unchanged", n)
			}
			if n := len(report.Skipped); n > 0 {
				detail += fmt.Sprintf(", %d skipped (exists)", n)
			}
			summary.outcomes = append(summary.outcomes, outcome{name: gen.Type(), status: statusOK, detail: detail})
		}
	}
	return summary
}

// resolveVersions maps arguments to lockfile records; "latest" selects the
// lockfile's latest version. Duplicates are dropped.
func resolveVersions(lock *version.Lockfile, args []string) ([]version.EmojiSpecRecord, error) {
	seen := make(map[string]bool, len(args))
	var records []version.EmojiSpecRecord
	var unknown []string

	for _, arg := range args {
		v := arg
		if v == "latest" {
			if lock.LatestVersion == "" {
				return nil, fmt.Errorf("lockfile has no latest version")
			}
			v = lock.LatestVersion
		}
		if seen[v] {
			continue
		}
		seen[v] = true

		rec, ok := lock.Find(v)
		if !ok {
			unknown = append(unknown, v)
			continue
		}
		records = append(records, rec)
	}

	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown emoji version(s) %v (not in %s)", unknown, cfg.Lockfile)
	}
	return records, nil
}
