package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"automation-advisor/internal/recommendation/pipeline"
)

func newTimelineCmd(root *rootOptions) *cobra.Command {
	var (
		scenarioType string
		providerName string
		force        bool
	)

	cmd := &cobra.Command{
		Use:   "timeline <profile.json|->",
		Short: "Generate a phased transformation timeline",
		Long: `Timeline generates a transformation timeline for the given scenario
(conservative, balanced, aggressive or an alias such as "safe" or "fast").
When a timeline is cached under a different scenario the command reports the
mismatch instead of regenerating; pass --force to generate the requested
scenario. The timeline cached for the other scenario is kept.`,
		Example: `  advisor timeline --scenario aggressive profile.json
  advisor timeline --scenario safe --force profile.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := readProfile(cmd, args[0])
			if err != nil {
				return err
			}

			components, err := root.openPipeline(cmd.Context())
			if err != nil {
				return err
			}
			defer components.Close()

			resp, err := components.Pipeline.GenerateTimeline(cmd.Context(), pipeline.TimelineRequest{
				Profile:         profile,
				ScenarioType:    scenarioType,
				Provider:        providerName,
				ForceRegenerate: force,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if root.jsonOut {
				if err := printJSON(out, resp); err != nil {
					return err
				}
			} else {
				if resp.ScenarioError != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", yellow("warning:"), resp.ScenarioError)
				} else if resp.ScenarioCorrected {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s scenario %q resolved to %s\n", yellow("note:"), scenarioType, resp.ScenarioType)
				}
				switch {
				case resp.ScenarioMismatch:
					fmt.Fprintf(out, "%s a %s timeline is cached; rerun with --force to generate %s\n",
						yellow("mismatch:"), resp.CachedScenario, resp.ScenarioType)
				case resp.Timeline != nil:
					fmt.Fprintf(out, "(%s)\n", sourceLabel(resp.Cached, resp.Provider, resp.GeneratedAt))
					printTimeline(out, resp.Timeline)
				}
			}
			if resp.SetupRequired {
				return &setupRequiredError{msg: yellow("setup required: ") + resp.SetupMessage}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&scenarioType, "scenario", "s", "balanced", "Scenario type or alias")
	cmd.Flags().StringVarP(&providerName, "provider", "p", "", "Preferred generation provider")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Ignore cached results and regenerate")
	return cmd
}
