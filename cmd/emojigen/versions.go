package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"emojigen/internal/version"
)

var writeLockfile bool

// versionsCmd lists published emoji versions
var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List published emoji versions",
	Long: `Scans the upstream emoji/ directory for published versions and prints
them with their Unicode versions. With --write-lockfile the result is saved
to the lockfile used by generate.`,
	Args: cobra.NoArgs,
	RunE: runVersions,
}

func init() {
	versionsCmd.Flags().BoolVar(&writeLockfile, "write-lockfile", false, "Write the discovered versions to the lockfile")
}

func runVersions(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	lister := &version.Lister{
		BaseURL:   cfg.Upstream.BaseURL,
		Client:    &http.Client{Timeout: cfg.GetFetchTimeout()},
		UserAgent: cfg.Fetch.UserAgent,
	}
	records, err := lister.List(ctx)
	if err != nil {
		return fmt.Errorf("version discovery failed: %w", err)
	}

	lock := version.NewLockfile(records, time.Now())

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render("Emoji versions"))
	for _, r := range lock.Versions {
		line := fmt.Sprintf("  %s unicode %s", versionStyle.Render(r.EmojiVersion), r.UnicodeVersion)
		if r.EmojiVersion == lock.LatestVersion {
			line += " " + okStyle.Render("(latest)")
		}
		if r.Draft {
			line += " " + warnStyle.Render("(draft)")
		}
		fmt.Fprintln(out, line)
	}

	if writeLockfile {
		if err := version.WriteLockfile(cfg.Lockfile, lock); err != nil {
			return err
		}
		fmt.Fprintln(out, mutedStyle.Render("Wrote "+cfg.Lockfile))
	}
	return nil
}
