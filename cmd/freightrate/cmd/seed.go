package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/freightrate/internal/config"
	"github.com/smallbiznis/freightrate/internal/migration"
	"github.com/smallbiznis/freightrate/internal/observability"
	"github.com/smallbiznis/freightrate/internal/seed"
	"github.com/smallbiznis/freightrate/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the accessorial catalog and X12 charge codes",
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			conn *gorm.DB
			node *snowflake.Node
		)
		app := fx.New(
			config.Module,
			observability.Module,
			fx.Provide(RegisterSnowflake),
			db.Module,
			migration.Module,
			fx.NopLogger,
			fx.Populate(&conn, &node),
		)
		if err := app.Err(); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		if err := app.Start(ctx); err != nil {
			return err
		}
		defer app.Stop(context.Background())

		created, err := seed.EnsureReferenceData(ctx, conn, node)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d reference rows\n", created)
		return nil
	},
}
