package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/money-movement/internal/cli"
	"github.com/Veraticus/money-movement/internal/model"
)

func statusesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "statuses",
		Short: "Manage movement statuses",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all statuses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			statuses, err := store.GetStatuses(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get statuses: %w", err)
			}

			table := cli.NewTable("ID", "Code", "Name", "Custom")
			for _, st := range statuses {
				table.AddRow(strconv.Itoa(st.ID), string(st.Code), st.Name, strconv.FormatBool(st.IsCustom))
			}
			return table.Render(cmd.OutOrStdout())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add a custom status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			st := &model.Status{Name: args[0], IsCustom: true}
			if err := store.CreateStatus(cmd.Context(), st); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created status %q (id %d)", st.Name, st.ID)))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a status no movement uses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return deleteByID(cmd, args[0], "status", func(id int) error {
				store, err := initStorage(cmd.Context())
				if err != nil {
					return err
				}
				defer func() { _ = store.Close() }()
				return store.DeleteStatus(cmd.Context(), id)
			})
		},
	})

	return cmd
}

func typesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types",
		Short: "Manage movement types",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all types",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			types, err := store.GetTypes(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get types: %w", err)
			}

			table := cli.NewTable("ID", "Code", "Name", "Custom")
			for _, typ := range types {
				table.AddRow(strconv.Itoa(typ.ID), string(typ.Code), typ.Name, strconv.FormatBool(typ.IsCustom))
			}
			return table.Render(cmd.OutOrStdout())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add a custom type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			typ := &model.Type{Name: args[0], IsCustom: true}
			if err := store.CreateType(cmd.Context(), typ); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created type %q (id %d)", typ.Name, typ.ID)))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a type no category or movement uses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return deleteByID(cmd, args[0], "type", func(id int) error {
				store, err := initStorage(cmd.Context())
				if err != nil {
					return err
				}
				defer func() { _ = store.Close() }()
				return store.DeleteType(cmd.Context(), id)
			})
		},
	})

	return cmd
}

// deleteByID parses arg as an id, runs del and reports the outcome.
func deleteByID(cmd *cobra.Command, arg, what string, del func(id int) error) error {
	id, ok := parseID(arg)
	if !ok {
		return fmt.Errorf("invalid %s id %q", what, arg)
	}
	if err := del(id); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted %s %d", what, id)))
	return nil
}
