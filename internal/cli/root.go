// Package cli wires the triagecheck commands.
package cli

import (
	"github.com/spf13/cobra"
)

var version = "dev"

func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "triagecheck",
	Short: "triagecheck — end-to-end verification of the issue triage workflow",
	Long: `triagecheck files fixture issues in a GitHub repository and verifies that
the issue triage workflow handles each one: the triggered workflow run
completes successfully, the expected triage labels are assigned, and an
AI assessment comment with a valid severity-component tag appears.

The exit status is non-zero when any fixture fails any check.`,
}

var (
	flagConfig    string
	flagRepo      string
	flagScenarios string
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default ./triagecheck.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagRepo, "repo", "", "owner/repo to test against (default: auto-detect)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(scenariosCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}
