package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"automation-advisor/internal/recommendation/patterns"
)

func newPatternsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Browse the workflow pattern catalog",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List catalog patterns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib := patterns.Default()
			out := cmd.OutOrStdout()
			if root.jsonOut {
				return printJSON(out, lib.All())
			}
			fmt.Fprintf(out, "Catalog %s, %d patterns\n", lib.Version(), lib.Len())
			for _, p := range lib.All() {
				fmt.Fprintf(out, "  %-28s %-20s complexity %d, ROI 3y %.0f%%\n",
					p.ID, p.Category, p.ComplexityScore, p.ROIMetrics.ROI3Year)
			}
			return nil
		},
	}

	var limit int
	match := &cobra.Command{
		Use:   "match <profile.json|->",
		Short: "Rank catalog patterns for a profile",
		Long: `Match lists the catalog patterns that fit the profile's industry and
company size, ranked by 3-year ROI per complexity point.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("limit must be positive, got %d", limit)
			}
			profile, err := readProfile(cmd, args[0])
			if err != nil {
				return err
			}

			candidates := patterns.Match(profile, patterns.Default())
			if limit > 0 {
				candidates = patterns.Top(candidates, limit)
			}

			out := cmd.OutOrStdout()
			if root.jsonOut {
				return printJSON(out, candidates)
			}
			fmt.Fprintf(out, "%s size bucket %s\n", bold(profile.Company.Name),
				patterns.SizeBucket(profile.Company.EmployeeCount))
			if len(candidates) == 0 {
				fmt.Fprintln(out, yellow("No patterns fit this profile."))
				return nil
			}
			for i, c := range candidates {
				fmt.Fprintf(out, "%d. %-28s score %.1f\n", i+1, c.Pattern.ID, c.Score)
			}
			return nil
		},
	}
	match.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most N patterns")

	cmd.AddCommand(list, match)
	return cmd
}
