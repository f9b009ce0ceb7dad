package main

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/gumby/internal/schema"
	"github.com/kailas-cloud/gumby/internal/usecase/loader"
)

var dumpModel string

func init() {
	dumpCmd.Flags().StringVarP(&dumpModel, "model", "m", schema.Individuals.Name, "Model to dump")
	rootCmd.AddCommand(dumpCmd)
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Write every document of an index to stdout as a JSON array",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, ctx, cancel, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close(cancel)
		if err := a.waitForReady(ctx); err != nil {
			return err
		}

		repo, err := a.documents(dumpModel)
		if err != nil {
			return err
		}
		_, err = loader.New(a.individuals, a.sightings, nil, modelLogger(ctx, repo.Model().Name)).Dump(ctx, repo, cmd.OutOrStdout())
		return err
	},
}
