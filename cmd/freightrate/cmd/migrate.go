package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/smallbiznis/freightrate/internal/config"
	"github.com/smallbiznis/freightrate/internal/migration"
	"github.com/smallbiznis/freightrate/internal/observability"
	"github.com/smallbiznis/freightrate/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := fx.New(
			config.Module,
			observability.Module,
			db.Module,
			migration.Module,
			fx.NopLogger,
		)
		if err := app.Err(); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		if err := app.Start(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return app.Stop(ctx)
	},
}
