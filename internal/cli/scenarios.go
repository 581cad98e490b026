package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the scenario catalog with expected outcomes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		scenarios, err := loadScenarios(&cfg.Harness)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tTITLE\tEXPECTED ASSESSMENT\tEXPECTED LABELS")
		for _, sc := range scenarios {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				sc.Name, sc.Title, sc.ExpectedAssessment, strings.Join(sc.ExpectedLabels, ","))
		}
		return tw.Flush()
	},
}
