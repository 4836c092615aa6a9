package main

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/christos-karalis/dataframe/pkg/config"
	"github.com/christos-karalis/dataframe/pkg/logger"
	"github.com/christos-karalis/dataframe/pkg/metrics"
	"github.com/christos-karalis/dataframe/pkg/observability"
)

// app carries the state shared by all subcommands.
type app struct {
	configPath string
	logLevel   string

	cfg *config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "dataframe",
		Short: "In-process columnar tables: build, group, aggregate, sort and select",
		Long: `dataframe builds column-oriented tables from generated sequences or SQL
queries, then groups, aggregates, sorts and filters them in memory.

Configuration is read from a YAML file (--config). Values of the form ${VAR}
are taken from the environment, and a .env file in the working directory is
loaded first.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown(cmd.Context())
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to YAML configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config file")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "dataframe v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})
	root.AddCommand(newGenerateCmd(a))
	root.AddCommand(newQueryCmd(a))

	return root
}

// setup loads the configuration and installs logging, metrics and tracing.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.NewConfig("dataframe")
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
		cfg = loaded
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}

	if err := logger.Init(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		Encoding:    cfg.Logging.Encoding,
		OutputPaths: cfg.Logging.OutputPaths,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	metrics.SetEnabled(cfg.Observability.EnableMetrics)

	tracing := observability.FromConfig(cfg, version)
	// Spans go to stderr so that table output on stdout stays parseable.
	tracing.Writer = cmd.ErrOrStderr()
	if err := observability.Initialize(tracing); err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	a.cfg = cfg
	a.log = logger.With(
		zap.String("component", "dataframe-cli"),
		zap.String("name", cfg.Name),
	)
	return nil
}

func (a *app) teardown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := observability.Shutdown(ctx); err != nil && a.log != nil {
		a.log.Warn("failed to shutdown tracing", zap.Error(err))
	}
	_ = logger.Sync()
	return nil
}
