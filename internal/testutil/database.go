// Package testutil provides test helpers shared by the ledger packages.
package testutil

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/money-movement/internal/model"
	"github.com/Veraticus/money-movement/internal/storage"
)

// TestDB is a migrated in-memory database.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database with all migrations applied.
// The database is closed when the test finishes.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Storage: store, t: t}
}

// MustStatus returns the status with the given code or fails the test.
func (db *TestDB) MustStatus(code model.StatusCode) *model.Status {
	db.t.Helper()
	st, err := db.Storage.GetStatusByCode(context.Background(), code)
	if err != nil || st == nil {
		db.t.Fatalf("status %q not found: %v", code, err)
	}
	return st
}

// MustType returns the type with the given code or fails the test.
func (db *TestDB) MustType(code model.TypeCode) *model.Type {
	db.t.Helper()
	typ, err := db.Storage.GetTypeByCode(context.Background(), code)
	if err != nil || typ == nil {
		db.t.Fatalf("type %q not found: %v", code, err)
	}
	return typ
}

// MustCategory returns the named category of a type or fails the test.
func (db *TestDB) MustCategory(code model.TypeCode, name string) *model.Category {
	db.t.Helper()
	typ := db.MustType(code)
	cat, err := db.Storage.GetCategoryByName(context.Background(), typ.ID, name)
	if err != nil || cat == nil {
		db.t.Fatalf("category %q not found: %v", name, err)
	}
	return cat
}

// MustSubCategory returns the named subcategory of a category or fails the test.
func (db *TestDB) MustSubCategory(cat *model.Category, name string) *model.SubCategory {
	db.t.Helper()
	sub, err := db.Storage.GetSubCategoryByName(context.Background(), cat.ID, name)
	if err != nil || sub == nil {
		db.t.Fatalf("subcategory %q not found: %v", name, err)
	}
	return sub
}

// Movement builds an unsaved movement for the given classification.
// sub may be nil.
func Movement(st *model.Status, cat *model.Category, sub *model.SubCategory, amount string) *model.Movement {
	m := &model.Movement{
		StatusID:   st.ID,
		TypeID:     cat.TypeID,
		CategoryID: cat.ID,
		Amount:     decimal.RequireFromString(amount),
	}
	if sub != nil {
		id := sub.ID
		m.SubCategoryID = &id
	}
	return m
}
