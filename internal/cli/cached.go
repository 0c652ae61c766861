package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"automation-advisor/internal/models"
)

func newCachedCmd(root *rootOptions) *cobra.Command {
	var (
		entityID     string
		profilePath  string
		scenarioType string
	)

	cmd := &cobra.Command{
		Use:   "cached <workflows|timeline>",
		Short: "Show the cached recommendation for an entity",
		Long: `Cached prints the newest stored result without calling any provider.
The entity is given with --entity, or derived from a profile with --profile.`,
		Example: `  advisor cached workflows --entity 3f0c...
  advisor cached timeline --profile profile.json --scenario balanced`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(models.KindWorkflows), string(models.KindTimeline)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := models.CacheKind(args[0])
			if kind != models.KindWorkflows && kind != models.KindTimeline {
				return fmt.Errorf("kind must be %s or %s, got %q", models.KindWorkflows, models.KindTimeline, args[0])
			}
			if entityID == "" {
				if profilePath == "" {
					return fmt.Errorf("either --entity or --profile is required")
				}
				profile, err := readProfile(cmd, profilePath)
				if err != nil {
					return err
				}
				entityID = profile.EntityID()
			}

			components, err := root.openPipeline(cmd.Context())
			if err != nil {
				return err
			}
			defer components.Close()

			resp, err := components.Pipeline.LoadCached(cmd.Context(), entityID, kind, scenarioType)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if root.jsonOut {
				return printJSON(out, resp)
			}
			if !resp.Found {
				fmt.Fprintf(out, "No cached %s for %s\n", kind, entityID)
				return nil
			}
			fmt.Fprintf(out, "(%s)\n", sourceLabel(true, resp.Provider, resp.GeneratedAt))
			if resp.Workflows != nil {
				printWorkflows(out, resp.Workflows.Workflows, resp.Workflows.Analysis)
			}
			if resp.Timeline != nil {
				printTimeline(out, resp.Timeline)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&entityID, "entity", "e", "", "Entity id")
	cmd.Flags().StringVar(&profilePath, "profile", "", "Derive the entity id from this profile")
	cmd.Flags().StringVarP(&scenarioType, "scenario", "s", "", "Narrow timeline lookups to a scenario")
	return cmd
}
