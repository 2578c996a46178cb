package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/money-movement/internal/common"
	"github.com/Veraticus/money-movement/internal/model"
)

const subCategorySelect = `
		SELECT sc.id, sc.category_id, c.name, sc.name
		FROM subcategories sc
		JOIN categories c ON c.id = sc.category_id`

func scanSubCategory(row interface{ Scan(...any) error }) (model.SubCategory, error) {
	var sub model.SubCategory
	err := row.Scan(&sub.ID, &sub.CategoryID, &sub.CategoryName, &sub.Name)
	return sub, err
}

func getSubCategories(ctx context.Context, q querier, categoryID int) ([]model.SubCategory, error) {
	if err := validateID(categoryID, "categoryID"); err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, subCategorySelect+` WHERE sc.category_id = ? ORDER BY c.name, sc.name`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subcategories: %w", err)
	}
	defer rows.Close()

	var subs []model.SubCategory
	for rows.Next() {
		sub, err := scanSubCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subcategory: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subcategories: %w", err)
	}

	return subs, nil
}

func getSubCategoryByID(ctx context.Context, q querier, id int) (*model.SubCategory, error) {
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	sub, err := scanSubCategory(q.QueryRowContext(ctx, subCategorySelect+` WHERE sc.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("subcategory %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query subcategory: %w", err)
	}
	return &sub, nil
}

func getSubCategoryByName(ctx context.Context, q querier, categoryID int, name string) (*model.SubCategory, error) {
	if err := validateID(categoryID, "categoryID"); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	sub, err := scanSubCategory(q.QueryRowContext(ctx, subCategorySelect+` WHERE sc.category_id = ? AND sc.name = ?`, categoryID, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query subcategory: %w", err)
	}
	return &sub, nil
}

func createSubCategory(ctx context.Context, q querier, categoryID int, name string) (*model.SubCategory, error) {
	if err := validateID(categoryID, "categoryID"); err != nil {
		return nil, err
	}
	if err := checkName("subcategories", name); err != nil {
		return nil, err
	}

	result, err := q.ExecContext(ctx, `INSERT INTO subcategories (category_id, name) VALUES (?, ?)`, categoryID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create subcategory: %w",
			nameMissingReference(ctx, q, translateWriteError(err, "subcategories"),
				parentRef{field: "category", table: "categories", id: &categoryID}))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get subcategory ID: %w", err)
	}

	slog.Info("created new subcategory", "name", name, "category_id", categoryID, "id", id)
	return getSubCategoryByID(ctx, q, int(id))
}

// GetSubCategories returns the subcategories of a category ordered by name.
func (s *SQLiteStorage) GetSubCategories(ctx context.Context, categoryID int) ([]model.SubCategory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getSubCategories(ctx, s.db, categoryID)
}

// GetSubCategoryByID returns a subcategory by its ID.
func (s *SQLiteStorage) GetSubCategoryByID(ctx context.Context, id int) (*model.SubCategory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getSubCategoryByID(ctx, s.db, id)
}

// GetSubCategoryByName returns the named subcategory of a category, or nil.
func (s *SQLiteStorage) GetSubCategoryByName(ctx context.Context, categoryID int, name string) (*model.SubCategory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getSubCategoryByName(ctx, s.db, categoryID, name)
}

// CreateSubCategory creates a new subcategory under a category.
func (s *SQLiteStorage) CreateSubCategory(ctx context.Context, categoryID int, name string) (*model.SubCategory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return createSubCategory(ctx, s.db, categoryID, name)
}

// DeleteSubCategory deletes a subcategory that no movement references.
func (s *SQLiteStorage) DeleteSubCategory(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteRow(ctx, s.db, "subcategories", id)
}

// Transaction implementations for subcategory operations

func (t *sqliteTransaction) GetSubCategories(ctx context.Context, categoryID int) ([]model.SubCategory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getSubCategories(ctx, t.tx, categoryID)
}

func (t *sqliteTransaction) GetSubCategoryByID(ctx context.Context, id int) (*model.SubCategory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getSubCategoryByID(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetSubCategoryByName(ctx context.Context, categoryID int, name string) (*model.SubCategory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getSubCategoryByName(ctx, t.tx, categoryID, name)
}

func (t *sqliteTransaction) CreateSubCategory(ctx context.Context, categoryID int, name string) (*model.SubCategory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return createSubCategory(ctx, t.tx, categoryID, name)
}

func (t *sqliteTransaction) DeleteSubCategory(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteRow(ctx, t.tx, "subcategories", id)
}
