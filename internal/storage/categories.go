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

const categorySelect = `
		SELECT c.id, c.type_id, t.name, c.name
		FROM categories c
		JOIN types t ON t.id = c.type_id`

func scanCategory(row interface{ Scan(...any) error }) (model.Category, error) {
	var cat model.Category
	err := row.Scan(&cat.ID, &cat.TypeID, &cat.TypeName, &cat.Name)
	return cat, err
}

func queryCategories(ctx context.Context, q querier, query string, args ...any) ([]model.Category, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

func getCategories(ctx context.Context, q querier) ([]model.Category, error) {
	return queryCategories(ctx, q, categorySelect+` ORDER BY t.name, c.name`)
}

func getCategoriesByType(ctx context.Context, q querier, typeID int) ([]model.Category, error) {
	if err := validateID(typeID, "typeID"); err != nil {
		return nil, err
	}
	return queryCategories(ctx, q, categorySelect+` WHERE c.type_id = ? ORDER BY c.name`, typeID)
}

func getCategoryByID(ctx context.Context, q querier, id int) (*model.Category, error) {
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	cat, err := scanCategory(q.QueryRowContext(ctx, categorySelect+` WHERE c.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return &cat, nil
}

func getCategoryByName(ctx context.Context, q querier, typeID int, name string) (*model.Category, error) {
	if err := validateID(typeID, "typeID"); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("category name cannot be empty")
	}

	cat, err := scanCategory(q.QueryRowContext(ctx, categorySelect+` WHERE c.type_id = ? AND c.name = ?`, typeID, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Category not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return &cat, nil
}

func createCategory(ctx context.Context, q querier, typeID int, name string) (*model.Category, error) {
	if err := validateID(typeID, "typeID"); err != nil {
		return nil, err
	}
	if err := checkName("categories", name); err != nil {
		return nil, err
	}

	result, err := q.ExecContext(ctx, `INSERT INTO categories (type_id, name) VALUES (?, ?)`, typeID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w",
			nameMissingReference(ctx, q, translateWriteError(err, "categories"),
				parentRef{field: "type", table: "types", id: &typeID}))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category ID: %w", err)
	}

	slog.Info("created new category", "name", name, "type_id", typeID, "id", id)
	return getCategoryByID(ctx, q, int(id))
}

// deleteCategory removes a category and, through the schema cascade, its subcategories.
func deleteCategory(ctx context.Context, q querier, id int) error {
	var subCount int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM subcategories WHERE category_id = ?`, id).Scan(&subCount); err != nil {
		return fmt.Errorf("failed to count subcategories: %w", err)
	}

	if err := deleteRow(ctx, q, "categories", id); err != nil {
		return err
	}

	if subCount > 0 {
		slog.Info("cascaded category delete", "id", id, "subcategories", subCount)
	}
	return nil
}

// GetCategories returns all categories ordered by type name, then name.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategories(ctx, s.db)
}

// GetCategoriesByType returns the categories of one type ordered by name.
func (s *SQLiteStorage) GetCategoriesByType(ctx context.Context, typeID int) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategoriesByType(ctx, s.db, typeID)
}

// GetCategoryByID returns a category by its ID.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id int) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategoryByID(ctx, s.db, id)
}

// GetCategoryByName returns the category with the given name under a type, or nil.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, typeID int, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategoryByName(ctx, s.db, typeID, name)
}

// CreateCategory creates a new category under a type.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, typeID int, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return createCategory(ctx, s.db, typeID, name)
}

// DeleteCategory deletes a category and its subcategories.
// It fails with a protected ConstraintViolation while movements reference it.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteCategory(ctx, s.db, id)
}

// Transaction implementations for category operations

func (t *sqliteTransaction) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategories(ctx, t.tx)
}

func (t *sqliteTransaction) GetCategoriesByType(ctx context.Context, typeID int) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategoriesByType(ctx, t.tx, typeID)
}

func (t *sqliteTransaction) GetCategoryByID(ctx context.Context, id int) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategoryByID(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetCategoryByName(ctx context.Context, typeID int, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategoryByName(ctx, t.tx, typeID, name)
}

func (t *sqliteTransaction) CreateCategory(ctx context.Context, typeID int, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return createCategory(ctx, t.tx, typeID, name)
}

func (t *sqliteTransaction) DeleteCategory(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteCategory(ctx, t.tx, id)
}
