package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kenjpais/okd/internal/harness"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Create all fixture issues and verify the triage workflow's handling of each",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		tracker, err := newTracker(cmd.Context(), &cfg.Harness)
		if err != nil {
			return err
		}

		repo, err := resolveRepo(cmd.Context(), &cfg.Harness, tracker)
		if err != nil {
			return err
		}

		scenarios, err := loadScenarios(&cfg.Harness)
		if err != nil {
			return err
		}

		history, cleanup, err := openHistory(&cfg.Harness)
		if err != nil {
			return err
		}
		defer cleanup()

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Running %d scenario(s) against %s (workflow %q)\n\n", len(scenarios), repo, cfg.Harness.Workflow)

		runner := &harness.Runner{
			Tracker:  tracker,
			Cfg:      cfg.Harness,
			Progress: w,
		}
		if history != nil {
			runner.Events = history
		}

		report, err := runner.Run(cmd.Context(), repo, scenarios)
		if err != nil {
			return err
		}

		fmt.Fprintln(w)
		report.Render(w)

		if report.Failed() {
			return fmt.Errorf("triage verification failed")
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&flagScenarios, "scenarios", "", "path to a scenario catalog file (default: embedded catalog)")
}
