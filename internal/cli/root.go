// Package cli defines the taskpilot command-line interface.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hfujita/taskpilot/internal/app"
	"github.com/hfujita/taskpilot/internal/infra/config"
	"github.com/hfujita/taskpilot/internal/infra/httpapi"
)

// NewRootCmd creates the root command. Running it without a subcommand
// starts the API server.
func NewRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "taskpilot",
		Short:         "Task management backend with model-assisted classification",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())

	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			container, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer container.Close()

			if err := container.Store.Initialize(cmd.Context()); err != nil {
				return err
			}
			container.Logger.Info("schema ready", "database", cfg.DatabasePath)
			return nil
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	container, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	if err := container.Store.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}

	server := httpapi.NewServer(container.UseCases(), container.Logger)
	container.Logger.Info("listening", "addr", cfg.Addr, "database", cfg.DatabasePath)
	return server.Run(cfg.Addr)
}
