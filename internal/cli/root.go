// Package cli implements the advisor command line: one-shot recommendation
// runs against the same pipeline the job workers serve.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"automation-advisor/internal/bootstrap"
	"automation-advisor/internal/common/config"
	"automation-advisor/internal/common/logger"
	"automation-advisor/internal/models"
)

// Exit codes returned by cmd/advisor.
const (
	ExitSuccess          = 0
	ExitFailure          = 1
	ExitSetupRequired    = 2
	ExitInvalidArguments = 3
)

// setupRequiredError marks runs that completed without a configured provider.
type setupRequiredError struct{ msg string }

func (e *setupRequiredError) Error() string { return e.msg }

type rootOptions struct {
	configPath string
	cache      string
	jsonOut    bool
}

// NewRootCmd builds the command tree. Each call returns an independent tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "advisor",
		Short: "Recommend AI automation workflows and transformation timelines",
		Long: `advisor reads a business profile (JSON) and produces personalized automation
workflows or a phased transformation timeline using the configured generation
providers. Results are cached in the configured backend.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file (default: configs/config.yaml)")
	root.PersistentFlags().StringVar(&opts.cache, "cache", "", "Override cache backend (memory, redis, postgres)")
	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "Print raw JSON output")

	root.AddCommand(
		newRecommendCmd(opts),
		newTimelineCmd(opts),
		newCachedCmd(opts),
		newScenarioCmd(opts),
		newPatternsCmd(opts),
		newActivitiesCmd(opts),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorText(err))
		if _, ok := err.(*setupRequiredError); ok {
			return ExitSetupRequired
		}
		return ExitFailure
	}
	return ExitSuccess
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFromFile(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if o.cache != "" {
		cfg.Cache.Backend = o.cache
	}
	return cfg, nil
}

// openPipeline loads config and connects the pipeline. Logs go to stderr so
// stdout stays parseable with --json.
func (o *rootOptions) openPipeline(ctx context.Context) (*bootstrap.Components, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	log := logger.NewStructured(cfg.Logging.Level, "console", "stderr")
	return bootstrap.Build(ctx, cfg, log, bootstrap.Options{ReadyTimeout: 15 * time.Second})
}

// readProfile reads a profile from path, or stdin when path is "-".
func readProfile(cmd *cobra.Command, path string) (*models.Profile, error) {
	if path == "-" {
		return models.DecodeProfile(cmd.InOrStdin())
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening profile: %w", err)
	}
	defer f.Close()
	return models.DecodeProfile(f)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
