package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"emojigen/internal/emoji"
	"emojigen/internal/persist"
	"emojigen/internal/schema"
)

var inputDir string

// validateCmd checks previously generated datasets
var validateCmd = &cobra.Command{
	Use:   "validate <versions...>",
	Short: "Validate generated datasets",
	Long: `Re-reads the files written by generate for each version and checks
them against the schemas of the generators that produced them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&inputDir, "input-dir", "i", "", "Directory holding generated datasets (default: output dir)")
	validateCmd.Flags().StringSliceVarP(&generators, "generators", "g", nil, "Generators to validate (default: all)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	dir := inputDir
	if dir == "" {
		dir = cfg.Output.Dir
	}

	set, err := emoji.NewSet(cfg.Upstream.BaseURL, nil)
	if err != nil {
		return err
	}
	selected, err := set.Select(generators)
	if err != nil {
		return err
	}

	summaries := make([]versionSummary, 0, len(args))
	for _, v := range args {
		summary := versionSummary{version: v}
		base := persist.BasePath(dir, v)

		for _, gen := range selected {
			findings, err := persist.Verify(base, gen.Schemas(), cfg.Output.Encoding)
			if err != nil {
				summary.outcomes = append(summary.outcomes, outcome{name: gen.Type(), status: statusFailed, detail: err.Error()})
				continue
			}
			summary.outcomes = append(summary.outcomes, verifyOutcome(gen.Type(), findings))
		}
		summaries = append(summaries, summary)
	}

	fmt.Fprint(cmd.OutOrStdout(), renderSummary("Validate", summaries))

	for _, s := range summaries {
		if s.failed() {
			return fmt.Errorf("validation failed for one or more versions")
		}
	}
	return nil
}

func verifyOutcome(name string, findings []persist.Finding) outcome {
	var issues []schema.Issue
	files := 0
	for _, f := range findings {
		if len(f.Issues) == 0 {
			files++
			continue
		}
		for _, issue := range f.Issues {
			if issue.Path == "" {
				issue.Path = f.Path
			} else {
				issue.Path = f.Path + "#" + issue.Path
			}
			issues = append(issues, issue)
		}
	}
	if len(issues) > 0 {
		logger.Sugar().Warnf("%s: %d issue(s): %s", name, len(issues), schema.Summarize(issues, 10))
		return outcome{name: name, status: statusFailed, detail: schema.Summarize(issues, 3)}
	}
	return outcome{name: name, status: statusOK, detail: fmt.Sprintf("%d file(s) ok", files)}
}
