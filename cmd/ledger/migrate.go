package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/money-movement/internal/cli"
	"github.com/Veraticus/money-movement/internal/common"
	"github.com/Veraticus/money-movement/internal/ledger"
	"github.com/Veraticus/money-movement/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations and seed the default taxonomy",
		Long: `Initialize or update the database schema to the latest version, then
make sure the default statuses, types, categories and subcategories exist.

Both steps are idempotent; running the command again changes nothing.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")
	cmd.Flags().Bool("skip-seed", false, "Do not seed the default taxonomy after migrating")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")
	skipSeed, _ := cmd.Flags().GetBool("skip-seed")
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if status {
		current, err := store.SchemaVersion(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, cli.FormatTitle("Database Migration Status"))
		fmt.Fprintf(out, "Database:        %s\n", store.Path())
		fmt.Fprintf(out, "Current version: %d\n", current)
		fmt.Fprintf(out, "Latest version:  %d\n", storage.ExpectedSchemaVersion)
		if current < storage.ExpectedSchemaVersion {
			fmt.Fprintln(out, cli.FormatWarning("Database needs migration, run 'ledger migrate'"))
		}
		return nil
	}

	slog.Info("Starting database migration", "database", store.Path())
	if err := store.Migrate(ctx); err != nil {
		common.LogError(err, "Migration failed", common.Fields{"database": store.Path()})
		return fmt.Errorf("migration failed: %w", err)
	}
	fmt.Fprintln(out, cli.FormatSuccess("Database migrations completed"))

	if skipSeed {
		return nil
	}
	return runSeed(cmd, store)
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create any missing default taxonomy rows",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			return runSeed(cmd, store)
		},
	}
}

func runSeed(cmd *cobra.Command, store *storage.SQLiteStorage) error {
	report, err := ledger.SeedDefaultTaxonomy(cmd.Context(), store)
	if err != nil {
		common.LogError(err, "Seed failed", common.Fields{"database": store.Path()})
		return fmt.Errorf("seed failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if report.Total() == 0 {
		fmt.Fprintln(out, cli.FormatSuccess("Default taxonomy already present"))
		return nil
	}
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf(
		"Seeded %d statuses, %d types, %d categories, %d subcategories",
		report.Statuses, report.Types, report.Categories, report.SubCategories)))
	return nil
}
