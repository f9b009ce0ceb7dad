package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/gumby/internal/schema"
	"github.com/kailas-cloud/gumby/internal/usecase/lifecycle"
)

var initFailGracefully bool

func init() {
	initCmd.Flags().BoolVar(&initFailGracefully, "fail-gracefully", false,
		"Warn instead of failing when the search engine cannot be reached")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [model...]",
	Short: "Drop and recreate indexes",
	Long: `Drop every listed index together with its documents and create it again
from the declared schema. With no arguments every model is initialized.

With --fail-gracefully an unreachable search engine is reported as a warning
and the command exits successfully.`,
	ValidArgs: schema.Names(),
	RunE:      runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	models, err := schema.Lookup(args...)
	if err != nil {
		return err
	}

	a, ctx, cancel, err := newApp(cmd)
	if err != nil {
		if initFailGracefully && exitCodeFor(err) == ExitConnectionError {
			resp := InitResponse{Initialized: []string{}}
			for _, m := range models {
				w := lifecycle.Warning{Model: m.Name, Err: err}
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
				resp.Warnings = append(resp.Warnings, w.String())
			}
			return outputJSON(cmd.OutOrStdout(), resp)
		}
		return err
	}
	defer a.close(cancel)

	svc := lifecycle.New(a.indexes, a.logger)
	report, err := svc.Initialize(ctx, models, initFailGracefully)
	if err != nil {
		return err
	}

	resp := InitResponse{Initialized: report.Initialized}
	if resp.Initialized == nil {
		resp.Initialized = []string{}
	}
	for _, w := range report.Warnings {
		resp.Warnings = append(resp.Warnings, w.String())
	}
	return outputJSON(cmd.OutOrStdout(), resp)
}
