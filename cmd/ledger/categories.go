package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/money-movement/internal/cli"
	"github.com/Veraticus/money-movement/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage categories",
		Long:  `List, add and delete the categories movements are classified under. Every category belongs to one type.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			categories, err := store.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			if len(categories) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("No categories found. Use 'ledger categories add' to create one."))
				return nil
			}

			table := cli.NewTable("ID", "Type", "Name")
			for _, cat := range categories {
				table.AddRow(strconv.Itoa(cat.ID), cat.TypeName, cat.Name)
			}
			return table.Render(cmd.OutOrStdout())
		},
	}
}

func addCategoryCmd() *cobra.Command {
	var typeRef string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			typ, err := resolveType(ctx, store, typeRef)
			if err != nil {
				return err
			}

			cat, err := store.CreateCategory(ctx, typ.ID, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created category %q (id %d)", cat.String(), cat.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&typeRef, "type", string(model.TypeExpense), "type id, code or name")

	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category and its subcategories",
		Long:  `Delete a category. Its subcategories are removed with it. Categories used by movements cannot be deleted.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return deleteByID(cmd, args[0], "category", func(id int) error {
				store, err := initStorage(cmd.Context())
				if err != nil {
					return err
				}
				defer func() { _ = store.Close() }()
				return store.DeleteCategory(cmd.Context(), id)
			})
		},
	}
}

func subCategoriesCmd() *cobra.Command {
	var categoryID int

	cmd := &cobra.Command{
		Use:     "subcategories",
		Aliases: []string{"subs"},
		Short:   "Manage subcategories",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the subcategories of a category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			subs, err := store.GetSubCategories(ctx, categoryID)
			if err != nil {
				return fmt.Errorf("failed to get subcategories: %w", err)
			}

			table := cli.NewTable("ID", "Category", "Name")
			for _, sub := range subs {
				table.AddRow(strconv.Itoa(sub.ID), sub.CategoryName, sub.Name)
			}
			return table.Render(cmd.OutOrStdout())
		},
	}

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a subcategory to a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			sub, err := store.CreateSubCategory(ctx, categoryID, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created subcategory %q (id %d)", sub.String(), sub.ID)))
			return nil
		},
	}

	for _, c := range []*cobra.Command{list, add} {
		c.Flags().IntVar(&categoryID, "category", 0, "parent category id")
		_ = c.MarkFlagRequired("category")
	}

	cmd.AddCommand(list, add)
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a subcategory no movement uses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return deleteByID(cmd, args[0], "subcategory", func(id int) error {
				store, err := initStorage(cmd.Context())
				if err != nil {
					return err
				}
				defer func() { _ = store.Close() }()
				return store.DeleteSubCategory(cmd.Context(), id)
			})
		},
	})

	return cmd
}
