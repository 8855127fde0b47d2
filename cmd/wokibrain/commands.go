package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/perzequiel/woki-brain/internal/app"
	"github.com/perzequiel/woki-brain/internal/config"
)

func newRootCmd(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "wokibrain",
		Short:         "Seat discovery and table allocation service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd(logger))
	root.AddCommand(newMigrateCmd(logger))
	root.AddCommand(newSeedCmd(logger))

	return root
}

func newServeCmd(logger *slog.Logger) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				logger.Error("failed to load config", "error", err)
				return err
			}

			application, err := app.New(cmd.Context(), cfg, logger, app.Options{Migrate: migrate})
			if err != nil {
				logger.Error("failed to create application", "error", err)
				return err
			}

			if err := application.Run(cmd.Context()); err != nil {
				logger.Error("application finished with error", "error", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the postgres schema on startup")
	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}

func newMigrateCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the postgres schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}

			if err := app.Migrate(cmd.Context(), cfg); err != nil {
				return err
			}
			logger.Info("schema migrated")
			return nil
		},
	}
}

func newSeedCmd(logger *slog.Logger) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import a JSON seed file into postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}

			if file == "" {
				file = cfg.Store.SeedFile
			}
			if file == "" {
				return errors.New("no seed file: pass --file or set SEED_FILE")
			}

			if err := app.ImportSeed(cmd.Context(), cfg, file); err != nil {
				return err
			}
			logger.Info("seed imported", slog.String("file", file))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "seed file (defaults to SEED_FILE)")
	return cmd
}
