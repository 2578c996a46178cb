package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/money-movement/internal/common"
	"github.com/Veraticus/money-movement/internal/config"
	"github.com/Veraticus/money-movement/internal/model"
	"github.com/Veraticus/money-movement/internal/storage"
)

// openStorage opens the configured database without touching its schema.
func openStorage() (*storage.SQLiteStorage, error) {
	dbPath := config.ExpandPath(viper.GetString("database.path"))
	if dbPath == "" {
		dbPath = config.ExpandPath(config.DefaultDatabasePath)
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}

// initStorage opens the database and refuses to continue until it has been
// migrated, so that data commands never run against a half-initialized store.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := openStorage()
	if err != nil {
		return nil, err
	}

	version, err := store.SchemaVersion(ctx)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if version != storage.ExpectedSchemaVersion {
		_ = store.Close()
		return nil, common.NewUserError(
			"database is not initialized, run 'ledger migrate' first",
			fmt.Errorf("schema version %d, expected %d", version, storage.ExpectedSchemaVersion))
	}
	return store, nil
}

// parseID returns the numeric value of s, or false when s is not an id.
func parseID(s string) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// resolveStatus finds a status by id, code or name.
func resolveStatus(ctx context.Context, store *storage.SQLiteStorage, ref string) (*model.Status, error) {
	if id, ok := parseID(ref); ok {
		return store.GetStatusByID(ctx, id)
	}
	if code := model.StatusCode(ref); code.Valid() {
		st, err := store.GetStatusByCode(ctx, code)
		if err != nil || st != nil {
			return st, err
		}
	}
	st, err := store.GetStatusByName(ctx, ref)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, common.NewUserError(fmt.Sprintf("status %q not found", ref), common.ErrNotFound)
	}
	return st, nil
}

// resolveType finds a type by id, code or name.
func resolveType(ctx context.Context, store *storage.SQLiteStorage, ref string) (*model.Type, error) {
	if id, ok := parseID(ref); ok {
		return store.GetTypeByID(ctx, id)
	}
	if code := model.TypeCode(ref); code.Valid() {
		typ, err := store.GetTypeByCode(ctx, code)
		if err != nil || typ != nil {
			return typ, err
		}
	}
	typ, err := store.GetTypeByName(ctx, ref)
	if err != nil {
		return nil, err
	}
	if typ == nil {
		return nil, common.NewUserError(fmt.Sprintf("type %q not found", ref), common.ErrNotFound)
	}
	return typ, nil
}

// resolveCategory finds a category by id, or by name under typ. A name that
// only exists under another type is still returned so that ledger validation
// can report the mismatch instead of the CLI hiding it.
func resolveCategory(ctx context.Context, store *storage.SQLiteStorage, typ *model.Type, ref string) (*model.Category, error) {
	if id, ok := parseID(ref); ok {
		return store.GetCategoryByID(ctx, id)
	}

	if typ != nil {
		cat, err := store.GetCategoryByName(ctx, typ.ID, ref)
		if err != nil || cat != nil {
			return cat, err
		}
	}

	all, err := store.GetCategories(ctx)
	if err != nil {
		return nil, err
	}
	var matches []model.Category
	for _, cat := range all {
		if cat.Name == ref {
			matches = append(matches, cat)
		}
	}
	switch len(matches) {
	case 0:
		return nil, common.NewUserError(fmt.Sprintf("category %q not found", ref), common.ErrNotFound)
	case 1:
		return &matches[0], nil
	}
	return nil, common.NewUserError(fmt.Sprintf("category %q is ambiguous, use its id", ref), nil)
}

// resolveSubCategory finds a subcategory by id, or by name under cat, falling
// back to a name that is unique across the other categories.
func resolveSubCategory(ctx context.Context, store *storage.SQLiteStorage, cat *model.Category, ref string) (*model.SubCategory, error) {
	if id, ok := parseID(ref); ok {
		return store.GetSubCategoryByID(ctx, id)
	}

	sub, err := store.GetSubCategoryByName(ctx, cat.ID, ref)
	if err != nil || sub != nil {
		return sub, err
	}

	siblings, err := store.GetCategories(ctx)
	if err != nil {
		return nil, err
	}
	var matches []model.SubCategory
	for _, other := range siblings {
		if other.ID == cat.ID {
			continue
		}
		found, err := store.GetSubCategoryByName(ctx, other.ID, ref)
		if err != nil {
			return nil, err
		}
		if found != nil {
			matches = append(matches, *found)
		}
	}
	switch len(matches) {
	case 0:
		return nil, common.NewUserError(fmt.Sprintf("subcategory %q not found", ref), common.ErrNotFound)
	case 1:
		return &matches[0], nil
	}
	return nil, common.NewUserError(fmt.Sprintf("subcategory %q is ambiguous, use its id", ref), nil)
}
