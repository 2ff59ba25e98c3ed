// Package cmd provides the freightrate commands.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "freightrate",
	Short: "Contract-based freight rating engine",
	Long: `freightrate prices LTL, FTL, FCL and LCL shipments against published
customer contracts and commits quotes idempotently.

Examples:
  freightrate serve
  freightrate migrate
  freightrate seed
  freightrate quote --file request.json --commit`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(seedCmd)
}
