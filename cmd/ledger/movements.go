package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Veraticus/money-movement/internal/cli"
	"github.com/Veraticus/money-movement/internal/export"
	"github.com/Veraticus/money-movement/internal/ledger"
	"github.com/Veraticus/money-movement/internal/model"
	"github.com/Veraticus/money-movement/internal/service"
	"github.com/Veraticus/money-movement/internal/storage"
)

func movementsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "movements",
		Short: "Record and inspect money movements",
	}

	cmd.AddCommand(addMovementCmd())
	cmd.AddCommand(listMovementsCmd())
	cmd.AddCommand(exportMovementsCmd())
	cmd.AddCommand(deleteMovementCmd())

	return cmd
}

type movementFlags struct {
	status      string
	typ         string
	category    string
	subCategory string
	amount      string
	date        string
	comment     string
}

func addMovementCmd() *cobra.Command {
	var flags movementFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a movement",
		Long: `Record a movement. The category must belong to the given type and the
subcategory, if any, to the category; amounts are positive with at most two
decimal places.`,
		Example: `  ledger movements add --status business --type expense --category Infrastructure --subcategory VPS --amount 12.50`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			m, err := buildMovement(cmd, store, flags)
			if err != nil {
				return err
			}

			if err := ledger.New(store).Record(ctx, m); err != nil {
				return err
			}

			saved, err := store.GetMovementByID(ctx, m.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Recorded #%d %s", saved.ID, saved.String())))
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.status, "status", "", "status id, code or name")
	cmd.Flags().StringVar(&flags.typ, "type", "", "type id, code or name")
	cmd.Flags().StringVar(&flags.category, "category", "", "category id or name")
	cmd.Flags().StringVar(&flags.subCategory, "subcategory", "", "subcategory id or name")
	cmd.Flags().StringVar(&flags.amount, "amount", "", "amount, e.g. 1500.00")
	cmd.Flags().StringVar(&flags.date, "date", "", "date as YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&flags.comment, "comment", "", "free text comment")
	for _, name := range []string{"status", "type", "category", "amount"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func buildMovement(cmd *cobra.Command, store *storage.SQLiteStorage, flags movementFlags) (*model.Movement, error) {
	ctx := cmd.Context()

	amount, err := decimal.NewFromString(flags.amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", flags.amount, err)
	}

	m := &model.Movement{Amount: amount, Comment: flags.comment}
	if flags.date != "" {
		m.Date, err = time.Parse(model.DateLayout, flags.date)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", flags.date, err)
		}
	}

	st, err := resolveStatus(ctx, store, flags.status)
	if err != nil {
		return nil, err
	}
	typ, err := resolveType(ctx, store, flags.typ)
	if err != nil {
		return nil, err
	}
	cat, err := resolveCategory(ctx, store, typ, flags.category)
	if err != nil {
		return nil, err
	}
	m.StatusID, m.TypeID, m.CategoryID = st.ID, typ.ID, cat.ID

	if flags.subCategory != "" {
		sub, err := resolveSubCategory(ctx, store, cat, flags.subCategory)
		if err != nil {
			return nil, err
		}
		id := sub.ID
		m.SubCategoryID = &id
	}
	return m, nil
}

type listFlags struct {
	from     string
	to       string
	status   string
	typ      string
	category string
	limit    int
	offset   int
}

// filter turns the flags into a MovementFilter, resolving classifier
// references against store.
func (f listFlags) filter(ctx context.Context, store *storage.SQLiteStorage) (service.MovementFilter, error) {
	filter := service.MovementFilter{Limit: f.limit, Offset: f.offset}
	if f.limit < 0 || f.offset < 0 {
		return filter, fmt.Errorf("limit and offset cannot be negative")
	}

	for _, d := range []struct {
		dst **time.Time
		raw string
	}{{&filter.StartDate, f.from}, {&filter.EndDate, f.to}} {
		if d.raw == "" {
			continue
		}
		t, err := time.Parse(model.DateLayout, d.raw)
		if err != nil {
			return filter, fmt.Errorf("invalid date %q: %w", d.raw, err)
		}
		*d.dst = &t
	}

	if f.status != "" {
		st, err := resolveStatus(ctx, store, f.status)
		if err != nil {
			return filter, err
		}
		filter.StatusID = st.ID
	}

	var typ *model.Type
	if f.typ != "" {
		var err error
		if typ, err = resolveType(ctx, store, f.typ); err != nil {
			return filter, err
		}
		filter.TypeID = typ.ID
	}

	if f.category != "" {
		cat, err := resolveCategory(ctx, store, typ, f.category)
		if err != nil {
			return filter, err
		}
		filter.CategoryID = cat.ID
	}
	return filter, nil
}

func addListFlags(cmd *cobra.Command, flags *listFlags) {
	cmd.Flags().StringVar(&flags.from, "from", "", "first date to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.to, "to", "", "last date to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.status, "status", "", "only movements with this status id, code or name")
	cmd.Flags().StringVar(&flags.typ, "type", "", "only movements of this type id, code or name")
	cmd.Flags().StringVar(&flags.category, "category", "", "only movements in this category id or name")
	cmd.Flags().IntVar(&flags.limit, "limit", 0, "maximum number of movements (0 for all)")
	cmd.Flags().IntVar(&flags.offset, "offset", 0, "number of movements to skip")
}

// loadMovements opens the store and returns the movements selected by flags.
func loadMovements(ctx context.Context, flags listFlags) ([]model.Movement, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	filter, err := flags.filter(ctx, store)
	if err != nil {
		return nil, err
	}

	movements, err := store.GetMovements(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get movements: %w", err)
	}
	return movements, nil
}

func listMovementsCmd() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List movements, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			movements, err := loadMovements(cmd.Context(), flags)
			if err != nil {
				return err
			}

			table := cli.NewTable("ID", "Date", "Status", "Type", "Category", "Subcategory", "Amount", "Comment")
			for _, row := range export.MovementRows(movements) {
				table.AddRow(fmt.Sprint(row.ID), row.Date, row.Status, row.Type, row.Category, row.SubCategory, row.Amount, row.Comment)
			}
			if table.Len() == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("No movements found."))
				return nil
			}
			return table.Render(cmd.OutOrStdout())
		},
	}
	addListFlags(cmd, &flags)

	return cmd
}

func exportMovementsCmd() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write movements as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			movements, err := loadMovements(cmd.Context(), flags)
			if err != nil {
				return err
			}
			return export.WriteMovementsCSV(cmd.OutOrStdout(), movements)
		},
	}
	addListFlags(cmd, &flags)

	return cmd
}

func deleteMovementCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a movement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return deleteByID(cmd, args[0], "movement", func(id int) error {
				store, err := initStorage(cmd.Context())
				if err != nil {
					return err
				}
				defer func() { _ = store.Close() }()
				return store.DeleteMovement(cmd.Context(), id)
			})
		},
	}
}
