package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/gumby/internal/schema"
	"github.com/kailas-cloud/gumby/internal/usecase/migrate"
)

var migrateModel string

func init() {
	migrateCmd.Flags().StringVarP(&migrateModel, "model", "m", schema.Individuals.Name, "Model to migrate")
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate <script>",
	Short: "Rewrite every stored document with a migration script",
	Long: fmt.Sprintf(`Apply a migration script to every document of an index. The argument is
either a built-in script name or a path to a YAML script.

Built-in scripts: %s

Every rewritten document is validated before it is saved. The run stops at the
first failure; documents migrated before it stay migrated.`, strings.Join(migrate.BuiltinNames(), ", ")),
	Args: cobra.ExactArgs(1),
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	script, err := migrate.Resolve(args[0])
	if err != nil {
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

	repo, err := a.documents(migrateModel)
	if err != nil {
		return err
	}
	res, err := migrate.NewRunner(repo, modelLogger(ctx, repo.Model().Name)).Run(ctx, script.Func())
	out := MigrateResponse{
		Model:    repo.Model().Name,
		Script:   script.Name,
		Migrated: res.Migrated,
		Failed:   res.Failed,
	}
	if err != nil {
		_ = outputJSON(cmd.OutOrStdout(), out)
		return err
	}
	return outputJSON(cmd.OutOrStdout(), out)
}
