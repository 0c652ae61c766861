package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"automation-advisor/internal/recommendation/pipeline"
)

func newRecommendCmd(root *rootOptions) *cobra.Command {
	var (
		providerName string
		force        bool
	)

	cmd := &cobra.Command{
		Use:   "recommend <profile.json|->",
		Short: "Recommend automation workflows for a business profile",
		Long: `Recommend reads a business profile and returns personalized automation
workflows. A cached result for the same provider is returned unless --force
is given.`,
		Example: `  advisor recommend profile.json
  advisor recommend --provider anthropic --force profile.json
  cat profile.json | advisor recommend --json -`,
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

			resp, err := components.Pipeline.GenerateWorkflows(cmd.Context(), pipeline.WorkflowsRequest{
				Profile:           profile,
				PreferredProvider: providerName,
				ForceRegenerate:   force,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if root.jsonOut {
				if err := printJSON(out, resp); err != nil {
					return err
				}
			} else if !resp.SetupRequired {
				fmt.Fprintf(out, "%s %d workflows (%s)\n\n", bold("Recommended"), len(resp.Workflows),
					sourceLabel(resp.Cached, resp.Provider, resp.GeneratedAt))
				printWorkflows(out, resp.Workflows, resp.Analysis)
			}
			if resp.SetupRequired {
				return &setupRequiredError{msg: yellow("setup required: ") + resp.SetupMessage}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&providerName, "provider", "p", "", "Preferred generation provider")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Ignore cached results and regenerate")
	return cmd
}
