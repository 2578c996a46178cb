package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/money-movement/internal/common"
	"github.com/Veraticus/money-movement/internal/model"
	"github.com/Veraticus/money-movement/internal/service"
)

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestSaveMovement(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	f := createFixture(t, store)

	m := f.movement("12.50")
	m.Date = date("2024-03-15")
	m.Comment = "monthly VPS"
	require.NoError(t, store.SaveMovement(ctx, m))
	require.Positive(t, m.ID)

	got, err := store.GetMovementByID(ctx, m.ID)
	require.NoError(t, err)

	assert.Equal(t, "2024-03-15", got.Date.Format("2006-01-02"))
	assert.True(t, decimal.RequireFromString("12.5").Equal(got.Amount), "amount %s", got.Amount)
	assert.Equal(t, "Business", got.StatusName)
	assert.Equal(t, "Expense", got.TypeName)
	assert.Equal(t, "Infrastructure", got.CategoryName)
	assert.Equal(t, "VPS", got.SubCategoryName)
	require.NotNil(t, got.SubCategoryID)
	assert.Equal(t, f.vps.ID, *got.SubCategoryID)
	assert.Equal(t, "monthly VPS", got.Comment)
	assert.False(t, got.CreatedAt.IsZero())
	assert.Equal(t, "2024-03-15: Expense 12.50р (Business)", got.String())
}

func TestSaveMovement_WithoutSubCategory(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	f := createFixture(t, store)

	m := f.movement("100")
	m.SubCategoryID = nil
	require.NoError(t, store.SaveMovement(ctx, m))

	got, err := store.GetMovementByID(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, got.HasSubCategory())
	assert.Empty(t, got.SubCategoryName)
	assert.Empty(t, got.Comment)
}

func TestSaveMovement_DefaultsDateToToday(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	f := createFixture(t, store)

	original := now
	now = func() time.Time { return time.Date(2025, 6, 30, 23, 10, 0, 0, time.UTC) }
	defer func() { now = original }()

	m := f.movement("1.00")
	require.NoError(t, store.SaveMovement(ctx, m))

	got, err := store.GetMovementByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-30", got.Date.Format("2006-01-02"))
}

func TestSaveMovement_AmountConstraints(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantErr bool
	}{
		{name: "minimum", amount: "0.01"},
		{name: "whole", amount: "250"},
		{name: "largest", amount: "99999999.99"},
		{name: "zero", amount: "0", wantErr: true},
		{name: "below minimum", amount: "0.009", wantErr: true},
		{name: "negative", amount: "-5.00", wantErr: true},
		{name: "three places", amount: "10.125", wantErr: true},
		{name: "too many digits", amount: "100000000.00", wantErr: true},
	}

	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	f := createFixture(t, store)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := f.movement(tt.amount)
			err := store.SaveMovement(ctx, m)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			cv := requireViolation(t, err, common.ConstraintRange, "amount")
			assert.Equal(t, "movements", cv.Table)
			assert.Zero(t, m.ID)
		})
	}
}

func TestMovementAmountCheckConstraint(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	f := createFixture(t, store)

	// Bypass the Go-side checks to reach the schema backstop.
	for _, cents := range []int64{0, -100, 10000000000} {
		_, err := store.db.ExecContext(ctx, `
			INSERT INTO movements (date, status_id, type_id, category_id, amount_cents)
			VALUES ('2024-01-01', ?, ?, ?, ?)`,
			f.business.ID, f.expense.ID, f.infra.ID, cents)
		requireViolation(t, translateWriteError(err, "movements"), common.ConstraintRange, "amount")
	}
}

func TestSaveMovement_RequiredReferences(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	f := createFixture(t, store)

	t.Run("unset status", func(t *testing.T) {
		m := f.movement("5")
		m.StatusID = 0
		requireViolation(t, store.SaveMovement(ctx, m), common.ConstraintRequired, "status")
	})

	t.Run("unset category", func(t *testing.T) {
		m := f.movement("5")
		m.CategoryID = 0
		requireViolation(t, store.SaveMovement(ctx, m), common.ConstraintRequired, "category")
	})

	missing := []struct {
		field  string
		mutate func(m *model.Movement)
	}{
		{"status", func(m *model.Movement) { m.StatusID = 9999 }},
		{"type", func(m *model.Movement) { m.TypeID = 9999 }},
		{"category", func(m *model.Movement) { m.CategoryID = 9999 }},
		{"subcategory", func(m *model.Movement) { id := 9999; m.SubCategoryID = &id }},
	}
	for _, tt := range missing {
		t.Run("missing "+tt.field, func(t *testing.T) {
			m := f.movement("5")
			tt.mutate(m)
			requireViolation(t, store.SaveMovement(ctx, m), common.ConstraintRequired, tt.field)
		})
	}

	t.Run("nil movement", func(t *testing.T) {
		assert.ErrorIs(t, store.SaveMovement(ctx, nil), common.ErrNilParameter)
	})
}

func TestUpdateMovement(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	f := createFixture(t, store)

	m := f.movement("10")
	m.Date = date("2024-01-10")
	require.NoError(t, store.SaveMovement(ctx, m))

	m.Amount = decimal.RequireFromString("11.25")
	m.Comment = "corrected"
	m.SubCategoryID = nil
	require.NoError(t, store.UpdateMovement(ctx, m))

	got, err := store.GetMovementByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "11.25", got.Amount.StringFixed(2))
	assert.Equal(t, "corrected", got.Comment)
	assert.Nil(t, got.SubCategoryID)

	t.Run("zero date", func(t *testing.T) {
		edit := *got
		edit.Date = time.Time{}
		requireViolation(t, store.UpdateMovement(ctx, &edit), common.ConstraintRequired, "date")
	})

	t.Run("bad amount", func(t *testing.T) {
		edit := *got
		edit.Amount = decimal.Zero
		requireViolation(t, store.UpdateMovement(ctx, &edit), common.ConstraintRange, "amount")
	})

	t.Run("unknown id", func(t *testing.T) {
		edit := *got
		edit.ID = 9999
		assert.ErrorIs(t, store.UpdateMovement(ctx, &edit), common.ErrNotFound)
	})
}

func TestGetMovements(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	f := createFixture(t, store)

	save := func(day, amount string, income bool) int {
		m := f.movement(amount)
		m.Date = date(day)
		if income {
			sub := f.sales.ID
			m.TypeID = f.income.ID
			m.CategoryID = f.receipts.ID
			m.SubCategoryID = &sub
		}
		require.NoError(t, store.SaveMovement(ctx, m))
		return m.ID
	}

	jan := save("2024-01-01", "1", false)
	mar := save("2024-03-01", "3", true)
	feb := save("2024-02-01", "2", false)
	marLater := save("2024-03-01", "4", false)

	ids := func(filter service.MovementFilter) []int {
		t.Helper()
		movements, err := store.GetMovements(ctx, filter)
		require.NoError(t, err)
		out := make([]int, 0, len(movements))
		for _, m := range movements {
			out = append(out, m.ID)
		}
		return out
	}

	t.Run("newest first", func(t *testing.T) {
		assert.Equal(t, []int{marLater, mar, feb, jan}, ids(service.MovementFilter{}))
	})

	t.Run("date range", func(t *testing.T) {
		start, end := date("2024-02-01"), date("2024-02-28")
		assert.Equal(t, []int{feb}, ids(service.MovementFilter{StartDate: &start, EndDate: &end}))
	})

	t.Run("by type", func(t *testing.T) {
		assert.Equal(t, []int{mar}, ids(service.MovementFilter{TypeID: f.income.ID}))
	})

	t.Run("by category", func(t *testing.T) {
		assert.Equal(t, []int{marLater, feb, jan}, ids(service.MovementFilter{CategoryID: f.infra.ID}))
	})

	t.Run("limit and offset", func(t *testing.T) {
		assert.Equal(t, []int{mar, feb}, ids(service.MovementFilter{Limit: 2, Offset: 1}))
	})

	t.Run("offset without limit", func(t *testing.T) {
		assert.Equal(t, []int{feb, jan}, ids(service.MovementFilter{Offset: 2}))
	})

	t.Run("inverted range", func(t *testing.T) {
		start, end := date("2024-03-01"), date("2024-01-01")
		_, err := store.GetMovements(ctx, service.MovementFilter{StartDate: &start, EndDate: &end})
		assert.ErrorIs(t, err, ErrInvalidDateRange)
	})
}

func TestDeleteProtectedByMovement(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	f := createFixture(t, store)

	m := f.movement("42")
	require.NoError(t, store.SaveMovement(ctx, m))

	tests := []struct {
		name  string
		del   func() error
		table string
		field string
	}{
		{
			name:  "status",
			del:   func() error { return store.DeleteStatus(ctx, f.business.ID) },
			table: "statuses",
			field: "movements.status_id",
		},
		{
			name:  "category",
			del:   func() error { return store.DeleteCategory(ctx, f.infra.ID) },
			table: "categories",
			field: "movements.category_id",
		},
		{
			name:  "subcategory",
			del:   func() error { return store.DeleteSubCategory(ctx, f.vps.ID) },
			table: "subcategories",
			field: "movements.subcategory_id",
		},
		{
			name:  "type",
			del:   func() error { return store.DeleteType(ctx, f.expense.ID) },
			table: "types",
			field: "categories.type_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cv := requireViolation(t, tt.del(), common.ConstraintProtected, tt.field)
			assert.Equal(t, tt.table, cv.Table)
		})
	}

	// Nothing was removed, including the subcategories under the protected category
	_, err := store.GetSubCategoryByID(ctx, f.vps.ID)
	require.NoError(t, err)

	// Once the movement is gone the subcategory can be deleted
	require.NoError(t, store.DeleteMovement(ctx, m.ID))
	require.NoError(t, store.DeleteSubCategory(ctx, f.vps.ID))
	assert.ErrorIs(t, store.DeleteMovement(ctx, m.ID), common.ErrNotFound)
}

func TestDeleteCategory_ProtectedThroughSubCategory(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	f := createFixture(t, store)

	// Storage does not check the hierarchy, so a movement may point at a
	// subcategory of a category it is not filed under.
	m := f.movement("3")
	m.TypeID = f.income.ID
	m.CategoryID = f.receipts.ID
	require.NoError(t, store.SaveMovement(ctx, m))

	err := store.DeleteCategory(ctx, f.infra.ID)
	cv := requireViolation(t, err, common.ConstraintProtected, "movements.subcategory_id")
	assert.Equal(t, "categories", cv.Table)

	_, err = store.GetCategoryByID(ctx, f.infra.ID)
	require.NoError(t, err)
}
