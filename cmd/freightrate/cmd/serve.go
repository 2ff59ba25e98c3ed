package cmd

import (
	"github.com/smallbiznis/freightrate/internal/migration"
	"github.com/smallbiznis/freightrate/internal/ratelimit"
	"github.com/smallbiznis/freightrate/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the rating HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := fx.New(
			infrastructure(),
			migration.Module,
			domains(),
			ratelimit.Module,
			server.Module,
		)
		if err := app.Err(); err != nil {
			return err
		}
		app.Run()
		return nil
	},
}
