package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/internal/config"
	"github.com/goliatone/go-formflow/pkg/portal"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	envFile  string
	logLevel string
	cfg      config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:               "formflow <command> [flags]",
		Short:             "Facility services portal",
		Long:              "Serve the facility services portal or fill its forms from the terminal.",
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
	}
	cmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file read before the environment")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newServeCmd(a),
		newFillCmd(a),
		newRoutesCmd(),
		newFormsCmd(a),
		newLintCmd(),
	)
	return cmd
}

func (a *app) load(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg
	return nil
}

// setup validates the settings and builds the logger and catalog.
func (a *app) setup(ctx context.Context) (*zap.Logger, *portal.Catalog, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger, err := a.cfg.Logger()
	if err != nil {
		return nil, nil, err
	}
	catalog, err := portal.LoadCatalog(ctx,
		portal.WithTiming(a.cfg.Timing()),
		portal.WithLimits(a.cfg.Limits()),
		portal.WithLogger(logger),
	)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, fmt.Errorf("load forms: %w", err)
	}
	return logger, catalog, nil
}
