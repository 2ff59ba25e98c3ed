package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	ratequotedomain "github.com/smallbiznis/freightrate/internal/ratequote/domain"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
	"github.com/smallbiznis/freightrate/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var (
	quoteFile   string
	quoteCommit bool
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price a request file and print the quote as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(quoteFile)
		if err != nil {
			return fmt.Errorf("read %s: %w", quoteFile, err)
		}
		req, err := server.ParseQuoteRequest(data)
		if err != nil {
			if vErr, ok := err.(*server.ValidationErrors); ok {
				for _, e := range vErr.Errors {
					fmt.Fprintln(cmd.ErrOrStderr(), e.Message)
				}
			}
			return err
		}

		var (
			engine  ratingdomain.Service
			commits ratequotedomain.Service
		)
		app := fx.New(
			infrastructure(),
			domains(),
			fx.Populate(&engine, &commits),
			fx.NopLogger,
		)
		if err := app.Err(); err != nil {
			return err
		}

		startCtx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()
		if err := app.Start(startCtx); err != nil {
			return err
		}
		defer app.Stop(context.Background())

		var out any
		if quoteCommit {
			out, err = commits.Commit(cmd.Context(), req)
		} else {
			out, err = engine.Quote(cmd.Context(), req)
		}
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	quoteCmd.Flags().StringVarP(&quoteFile, "file", "f", "", "path to a JSON quote request")
	quoteCmd.Flags().BoolVar(&quoteCommit, "commit", false, "persist the quote under its request id")
	_ = quoteCmd.MarkFlagRequired("file")
}
