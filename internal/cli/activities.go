package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"automation-advisor/pkg/registry"

	gt "automation-advisor/internal/workers/recommendation/generate-timeline"
	gw "automation-advisor/internal/workers/recommendation/generate-workflows"
	lcr "automation-advisor/internal/workers/recommendation/load-cached-recommendation"
)

const defaultRegistryPath = "configs/activity-registry.json"

// servedTaskTypes are the job types cmd/worker-manager registers.
var servedTaskTypes = []string{gw.TaskType, gt.TaskType, lcr.TaskType}

func newActivitiesCmd(root *rootOptions) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "activities",
		Short: "Maintain the activity registry process modelers use",
	}
	cmd.PersistentFlags().StringVar(&path, "registry", defaultRegistryPath, "Path to the activity registry")

	list := &cobra.Command{
		Use:   "list",
		Short: "List registered activities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return fmt.Errorf("loading registry: %w", err)
			}
			out := cmd.OutOrStdout()
			if root.jsonOut {
				return printJSON(out, reg)
			}
			for _, a := range reg.Activities {
				fmt.Fprintf(out, "%-28s %-12s v%s  timeout %s, retries %d\n",
					a.TaskType, a.ImplementationStatus, a.Version, a.Timeout, a.Retries)
			}
			return nil
		},
	}

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Validate the registry against the served task types",
		Long: `Validate checks registry integrity and that every task type served by the
worker manager is documented.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return fmt.Errorf("loading registry: %w", err)
			}
			if err := reg.Validate(); err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			var missing []string
			for _, tt := range servedTaskTypes {
				if _, ok := reg.Find(tt); !ok {
					missing = append(missing, tt)
				}
			}
			if len(missing) > 0 {
				return fmt.Errorf("registry validation failed: task types not documented: %v", missing)
			}
			fmt.Fprintln(cmd.OutOrStdout(), green("Registry validation passed."))
			return nil
		},
	}

	set := &cobra.Command{
		Use:     "set <id> <field> <value>",
		Short:   "Update one field of an activity",
		Example: `  advisor activities set generate-timeline status verified`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return fmt.Errorf("loading registry: %w", err)
			}
			if err := reg.Update(args[0], args[1], args[2], time.Now()); err != nil {
				return err
			}
			if err := registry.Save(reg, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated activity %s, field %s to %s\n", args[0], args[1], args[2])
			return nil
		},
	}

	cmd.AddCommand(list, validate, set)
	return cmd
}
