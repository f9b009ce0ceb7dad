package main

import (
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/gumby/internal/repository/document"
	"github.com/kailas-cloud/gumby/internal/schema"
	"github.com/kailas-cloud/gumby/internal/usecase/health"
	"github.com/kailas-cloud/gumby/internal/usecase/lifecycle"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:       "status [model...]",
	Short:     "Show engine health and index state",
	ValidArgs: schema.Names(),
	RunE:      runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	models, err := schema.Lookup(args...)
	if err != nil {
		return err
	}

	a, ctx, cancel, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close(cancel)

	report := a.health.Check(ctx)
	out := StatusResponse{
		Health:  string(report.Status),
		Checks:  make(map[string]string, len(report.Checks)),
		Indexes: []IndexStatus{},
	}
	for name, res := range report.Checks {
		out.Checks[name] = string(res)
	}
	if report.Status == health.Unhealthy {
		return outputJSON(cmd.OutOrStdout(), out)
	}

	statuses, err := lifecycle.New(a.indexes, a.logger).Status(ctx, models)
	if err != nil {
		return err
	}
	for _, st := range statuses {
		is := IndexStatus{
			Model:    st.Model,
			Index:    st.Index,
			Exists:   st.Exists,
			Docs:     st.Docs,
			Indexing: st.Indexing,
		}
		if st.CreatedAt != nil {
			is.CreatedAt = document.FormatTime(st.CreatedAt.In(time.UTC))
		}
		out.Indexes = append(out.Indexes, is)
	}
	sort.Slice(out.Indexes, func(i, j int) bool { return out.Indexes[i].Model < out.Indexes[j].Model })
	return outputJSON(cmd.OutOrStdout(), out)
}
