// Package app is the composition root of the templatehub backend.
package app

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/templatehub/backend/internal/config"
	"github.com/templatehub/backend/internal/db"
	"github.com/templatehub/backend/internal/logging"
	"github.com/templatehub/backend/internal/repositories"
)

// Run executes the CLI with args until ctx is canceled or SIGINT/SIGTERM arrives.
func Run(ctx context.Context, args []string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

// NewRootCmd creates the root command for the templatehub CLI.
func NewRootCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:          "templatehub",
		Short:        "templatehub - a template marketplace backend",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	config.RegisterFlags(cmd.PersistentFlags())

	load := func(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
		cfg, err := config.Load(configFile, cmd.Flags())
		if err != nil {
			return config.Config{}, nil, oops.Code("CONFIG_INVALID").Wrap(err)
		}
		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return config.Config{}, nil, oops.Code("CONFIG_INVALID").Wrap(err)
		}
		logger := logging.New(cmd.OutOrStdout(), level)
		slog.SetDefault(logger)
		return cfg, logger, nil
	}

	cmd.AddCommand(newServeCmd(load))
	cmd.AddCommand(newMigrateCmd(load))
	cmd.AddCommand(newSeedCmd(load))

	return cmd
}

type loader func(cmd *cobra.Command) (config.Config, *slog.Logger, error)

func newServeCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := load(cmd)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, logger)
		},
	}
}

func newMigrateCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|status]",
		Short:     "Apply or inspect database migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := load(cmd)
			if err != nil {
				return err
			}
			if !cfg.UsesDatabase() {
				return oops.Code("CONFIG_INVALID").Errorf("database_url is required to run migrations")
			}

			ctx := cmd.Context()
			pool, err := db.Connect(ctx, cfg.DatabaseURL)
			if err != nil {
				return oops.Code("DB_CONNECT_FAILED").Wrap(err)
			}
			defer pool.Close()

			m := newMigrator(pool, repositories.Migrations, "migrations", cmd.OutOrStdout())
			if len(args) == 1 && args[0] == "status" {
				return m.Status(ctx)
			}
			_, err = m.Up(ctx)
			return err
		},
	}
}

func newSeedCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Populate an empty catalog from the configured seed source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := load(cmd)
			if err != nil {
				return err
			}
			if !cfg.UsesDatabase() {
				return oops.Code("CONFIG_INVALID").Errorf("database_url is required to seed the catalog")
			}

			ctx := logging.WithLogger(cmd.Context(), logger)
			pool, err := db.Connect(ctx, cfg.DatabaseURL)
			if err != nil {
				return oops.Code("DB_CONNECT_FAILED").Wrap(err)
			}
			defer pool.Close()

			seeded, err := seedCatalog(ctx, postgresStores(pool, cfg), cfg)
			if err != nil {
				return err
			}
			cmd.Printf("seeded %d templates\n", seeded)
			return nil
		},
	}
}
