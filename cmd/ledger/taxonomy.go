package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/money-movement/internal/cli"
	"github.com/Veraticus/money-movement/internal/export"
)

func taxonomyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taxonomy",
		Short: "Show the classification tree",
	}

	cmd.AddCommand(listTaxonomyCmd())
	cmd.AddCommand(exportTaxonomyCmd())

	return cmd
}

func listTaxonomyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print types, categories and subcategories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			tax, err := export.LoadTaxonomy(ctx, store)
			if err != nil {
				return fmt.Errorf("failed to load taxonomy: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatTitle("Taxonomy"))
			for _, typ := range tax.Types {
				fmt.Fprintln(out, cli.TitleStyle.Render(typ.Name))
				if len(typ.Categories) == 0 {
					fmt.Fprintln(out, cli.SubtleStyle.Render("  (no categories)"))
				}
				for _, cat := range typ.Categories {
					line := "  " + cat.Name
					if len(cat.SubCategories) > 0 {
						line += cli.SubtleStyle.Render(" → " + strings.Join(cat.SubCategories, ", "))
					}
					fmt.Fprintln(out, line)
				}
			}
			return nil
		},
	}
}

func exportTaxonomyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the taxonomy as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			tax, err := export.LoadTaxonomy(ctx, store)
			if err != nil {
				return fmt.Errorf("failed to load taxonomy: %w", err)
			}
			return export.WriteTaxonomyYAML(cmd.OutOrStdout(), tax)
		},
	}
}
