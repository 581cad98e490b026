package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kenjpais/okd/internal/harness"
	"github.com/kenjpais/okd/internal/scenario"
)

var flagScenarioName string

var validateCmd = &cobra.Command{
	Use:   "validate <issue>",
	Short: "Re-run the triage checks against an existing issue, skipping creation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		issue, err := strconv.Atoi(args[0])
		if err != nil || issue <= 0 {
			return fmt.Errorf("invalid issue number %q: must be a positive integer", args[0])
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		scenarios, err := loadScenarios(&cfg.Harness)
		if err != nil {
			return err
		}
		sc, ok := scenario.ByName(scenarios, flagScenarioName)
		if !ok {
			return fmt.Errorf("unknown scenario %q", flagScenarioName)
		}

		tracker, err := newTracker(cmd.Context(), &cfg.Harness)
		if err != nil {
			return err
		}

		repo, err := resolveRepo(cmd.Context(), &cfg.Harness, tracker)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		runner := &harness.Runner{
			Tracker:  tracker,
			Cfg:      cfg.Harness,
			Progress: w,
		}

		report := runner.ValidateIssue(cmd.Context(), repo, issue, *sc)

		fmt.Fprintln(w)
		report.Render(w)

		if report.Failed() {
			return fmt.Errorf("validation of issue #%d failed", issue)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&flagScenarioName, "scenario", "", "scenario the issue was created from (required)")
	validateCmd.MarkFlagRequired("scenario")
}
