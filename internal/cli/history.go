package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kenjpais/okd/internal/analytics"
	"github.com/kenjpais/okd/internal/db"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent harness events and per-scenario pass rates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// Runs only record history when harness.history_db is set; reading
		// falls back to the default location.
		path := cfg.Harness.HistoryDB
		if path == "" {
			path, err = db.DefaultDBPath()
			if err != nil {
				return err
			}
		}

		database, err := db.Open(path)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := database.Migrate(); err != nil {
			return err
		}

		w := cmd.OutOrStdout()

		events, err := database.RecentEvents(flagHistoryLimit)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Fprintln(w, "No harness events recorded.")
			return nil
		}

		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tISSUE\tSCENARIO\tSTAGE\tEVENT\tDETAIL")
		for _, e := range events {
			fmt.Fprintf(tw, "%s\t#%d\t%s\t%s\t%s\t%s\n",
				e.Timestamp, e.Issue, e.Scenario, e.Stage, e.Event, e.Detail)
		}
		tw.Flush()

		stats, err := analytics.QueryScenarioStats(database, "")
		if err != nil {
			return err
		}
		if len(stats) == 0 {
			return nil
		}

		fmt.Fprintln(w)
		tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SCENARIO\tRUNS\tPASSED\tPASS RATE\tAVG MINUTES")
		for _, s := range stats {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%.0f%%\t%.1f\n",
				s.Scenario, s.Runs, s.Passed, s.PassRate, s.AvgMinutes)
		}
		return tw.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "maximum number of events to show")
}
