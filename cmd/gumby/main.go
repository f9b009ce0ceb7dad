// Package main provides the gumby CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/gumby/internal/version"
)

// Global flags.
var (
	flagEnv         string
	flagConfig      string
	flagPrefix      string
	flagMetricsAddr string
	flagLogLevel    string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "gumby",
	Short: "Manage the wildlife sighting indexes",
	Long: `gumby declares the individuals and sightings indexes, fills them with
synthetic or dumped data, migrates stored documents and dumps them back out.

Connection settings come from config/<env>.yaml and the GUMBY_HOSTS,
GUMBY_USERNAME and GUMBY_PASSWORD environment variables (.env is read too).
Logs go to stderr; command output goes to stdout.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagEnv, "env", "", "Environment name selecting config/<env>.yaml (default $ENV or local)")
	pf.StringVar(&flagConfig, "config", "", "Path to a config file, overrides --env lookup")
	pf.StringVar(&flagPrefix, "prefix", "", "Key prefix for indexes and documents")
	pf.StringVar(&flagMetricsAddr, "metrics-addr", "", "Serve /metrics and /healthz on this address while the command runs")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.Version = version.String()
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}
