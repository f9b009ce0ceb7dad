package main

import (
	"io"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/gumby/internal/factory"
	"github.com/kailas-cloud/gumby/internal/schema"
	"github.com/kailas-cloud/gumby/internal/usecase/loader"
)

var (
	loadRandomIndividuals   int
	loadRandomMinEncounters int
	loadRandomMaxEncounters int
	loadRandomSightings     int
	loadRandomSeed          uint64

	loadJSONModel string
)

func init() {
	f := loadRandomCmd.Flags()
	f.IntVarP(&loadRandomIndividuals, "count", "n", 0, "Number of individuals (default from config, 50)")
	f.IntVar(&loadRandomMinEncounters, "min-encounters", 0, "Minimum encounters per individual (default from config, 1)")
	f.IntVar(&loadRandomMaxEncounters, "max-encounters", 0, "Maximum encounters per individual (default from config, 20)")
	f.IntVar(&loadRandomSightings, "sightings", 0, "Number of standalone sightings")
	f.Uint64Var(&loadRandomSeed, "seed", 0, "Random seed (default from config, 0 = random)")

	loadJSONCmd.Flags().StringVarP(&loadJSONModel, "model", "m", schema.Individuals.Name, "Model the documents belong to")

	rootCmd.AddCommand(loadRandomCmd)
	rootCmd.AddCommand(loadJSONCmd)
}

var loadRandomCmd = &cobra.Command{
	Use:   "load-random",
	Short: "Load synthetic individuals and sightings",
	Args:  cobra.NoArgs,
	RunE:  runLoadRandom,
}

func runLoadRandom(cmd *cobra.Command, _ []string) error {
	a, ctx, cancel, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close(cancel)
	if err := a.waitForReady(ctx); err != nil {
		return err
	}

	opts := loader.RandomOptions{
		Individuals:   orDefault(loadRandomIndividuals, a.cfg.Factory.Individuals),
		MinEncounters: orDefault(loadRandomMinEncounters, a.cfg.Factory.MinEncounters),
		MaxEncounters: orDefault(loadRandomMaxEncounters, a.cfg.Factory.MaxEncounters),
		Sightings:     loadRandomSightings,
	}
	if opts.MinEncounters > opts.MaxEncounters && !cmd.Flags().Changed("max-encounters") {
		opts.MaxEncounters = opts.MinEncounters
	}
	seed := loadRandomSeed
	if seed == 0 {
		seed = a.cfg.Factory.Seed
	}
	if seed == 0 {
		seed = randomSeed()
	}

	svc := loader.New(a.individuals, a.sightings, factory.New(seed), a.logger)
	res, err := svc.LoadRandom(ctx, opts)
	if err != nil {
		return err
	}
	return outputJSON(cmd.OutOrStdout(), LoadResponse{
		Individuals: res.Individuals,
		Encounters:  res.Encounters,
		Sightings:   res.Sightings,
	})
}

var loadJSONCmd = &cobra.Command{
	Use:   "load-json <file>",
	Short: "Load documents from a JSON array",
	Long: `Load a JSON array of documents, such as the output of dump, into an index.
Each document is validated before it is saved; the first invalid document stops
the load. Use "-" to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runLoadJSON,
}

func runLoadJSON(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	a, ctx, cancel, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close(cancel)
	if err := a.waitForReady(ctx); err != nil {
		return err
	}

	repo, err := a.documents(loadJSONModel)
	if err != nil {
		return err
	}
	svc := loader.New(a.individuals, a.sightings, nil, modelLogger(ctx, repo.Model().Name))
	n, err := svc.LoadJSON(ctx, repo, r)
	if err != nil {
		return err
	}
	return outputJSON(cmd.OutOrStdout(), LoadResponse{Model: repo.Model().Name, Documents: n})
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func randomSeed() uint64 {
	return rand.Uint64()
}
