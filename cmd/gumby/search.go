package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/gumby/internal/domain"
	"github.com/kailas-cloud/gumby/internal/domain/geo"
	domind "github.com/kailas-cloud/gumby/internal/domain/individual"
	"github.com/kailas-cloud/gumby/internal/domain/search/filter"
	"github.com/kailas-cloud/gumby/internal/domain/search/request"
	"github.com/kailas-cloud/gumby/internal/repository/document"
	repoind "github.com/kailas-cloud/gumby/internal/repository/individual"
	"github.com/kailas-cloud/gumby/internal/schema"
	searchuc "github.com/kailas-cloud/gumby/internal/usecase/search"
)

// DefaultRadiusMeters is the --near radius when --radius is not given.
const DefaultRadiusMeters = 10_000

var (
	searchSex       string
	searchTaxonomy  string
	searchAnnotated bool
	searchSubmitter string
	searchSince     string
	searchNear      string
	searchRadius    float64
	searchLimit     int
	searchOffset    int
	searchSort      string
	searchCount     bool
)

func init() {
	f := searchCmd.Flags()
	f.StringVar(&searchSex, "sex", "", "Sex of the individual")
	f.StringVar(&searchTaxonomy, "taxonomy", "", `Encounter taxonomy, e.g. "balaenoptera musculus"`)
	f.BoolVar(&searchAnnotated, "annotated", false, "Encounter has an annotation (set =false to require none)")
	f.StringVar(&searchSubmitter, "submitter", "", "Encounter submitter id")
	f.StringVar(&searchSince, "since", "", "Encounter occurred at or after this date (YYYY-MM-DD or RFC 3339)")
	f.StringVar(&searchNear, "near", "", `Encounter point within --radius of "lat,lon"`)
	f.Float64Var(&searchRadius, "radius", DefaultRadiusMeters, "Radius for --near in meters")
	f.IntVar(&searchLimit, "limit", request.DefaultLimit, "Maximum hits to return")
	f.IntVar(&searchOffset, "offset", 0, "Number of hits to skip")
	f.StringVar(&searchSort, "sort", "", `Sort field, "-" prefix for descending (name, last_sighting)`)
	f.BoolVar(&searchCount, "count", false, "Print only {total}, the exact number of matches")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search individuals",
	Long: `Search individuals and print {total, hits}, or only {total} with --count.

Encounter criteria (--taxonomy, --annotated, --submitter, --since, --near) must
all hold for the same encounter.`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, _ []string) error {
	criteria, err := searchCriteria(cmd)
	if err != nil {
		return err
	}
	// Fail on bad criteria before connecting.
	if _, err := searchuc.BuildRequest(criteria); err != nil {
		return err
	}

	a, ctx, cancel, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close(cancel)
	if err := a.waitForReady(ctx); err != nil {
		return err
	}

	svc := searchuc.New(a.individuals, a.logger)
	if searchCount {
		n, err := svc.Count(ctx, criteria)
		if err != nil {
			return err
		}
		return outputJSON(cmd.OutOrStdout(), CountResponse{Total: n})
	}

	res, err := svc.Search(ctx, criteria)
	if err != nil {
		return err
	}

	out := SearchResponse{Total: res.Total, Hits: make([]map[string]any, 0, len(res.Hits))}
	for _, ind := range res.Hits {
		doc, err := publicIndividual(ind)
		if err != nil {
			return err
		}
		out.Hits = append(out.Hits, doc)
	}
	return outputJSON(cmd.OutOrStdout(), out)
}

func searchCriteria(cmd *cobra.Command) (searchuc.Criteria, error) {
	c := searchuc.Criteria{
		Sex:       searchSex,
		Taxonomy:  searchTaxonomy,
		Submitter: searchSubmitter,
		Limit:     searchLimit,
		Offset:    searchOffset,
		Sort:      searchSort,
	}
	if cmd.Flags().Changed("annotated") {
		annotated := searchAnnotated
		c.Annotated = &annotated
	}
	if searchSince != "" {
		since, err := document.ParseTime(searchSince)
		if err != nil {
			return c, domain.NewValidationError("since", searchSince, "expected YYYY-MM-DD or RFC 3339")
		}
		c.Since = &since
	}
	if searchNear != "" {
		center, err := geo.Parse(searchNear)
		if err != nil {
			return c, err
		}
		c.Near = &filter.Radius{Center: center, Meters: searchRadius}
	}
	return c, nil
}

// publicIndividual renders ind as it appears in dumps.
func publicIndividual(ind *domind.Individual) (map[string]any, error) {
	data, err := repoind.Codec{}.Encode(ind)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", ind.ID, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", ind.ID, err)
	}
	document.StripShadows(schema.Individuals, doc)
	return doc, nil
}
