package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"automation-advisor/internal/models"
	"automation-advisor/internal/recommendation/scenario"
)

func newScenarioCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Inspect timeline scenarios",
	}

	resolve := &cobra.Command{
		Use:     "resolve <input>",
		Short:   "Show which scenario an identifier resolves to",
		Example: `  advisor scenario resolve "low-risk"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := scenario.Resolve(args[0])
			out := cmd.OutOrStdout()
			if root.jsonOut {
				return printJSON(out, res)
			}
			if !res.IsValid {
				fmt.Fprintf(out, "%s %s\n", yellow("invalid:"), res.Error)
			}
			fmt.Fprintf(out, "%q -> %s\n", res.Input, bold(res.Corrected))
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List scenario configurations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configs := make([]models.ScenarioConfig, 0, len(models.ScenarioTypes))
			for _, t := range models.ScenarioTypes {
				configs = append(configs, scenario.Config(t))
			}
			out := cmd.OutOrStdout()
			if root.jsonOut {
				return printJSON(out, configs)
			}
			for _, c := range configs {
				fmt.Fprintf(out, "%s (%s)\n", bold(c.Type), c.Label)
				fmt.Fprintf(out, "  risk %s, pace %s, %d months\n", c.RiskTolerance, c.Pace, c.TotalMonths)
				fmt.Fprintf(out, "  focus: %s\n", c.TechnologyFocus)
			}
			return nil
		},
	}

	cmd.AddCommand(resolve, list)
	return cmd
}
