package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/money-movement/internal/common"
	"github.com/Veraticus/money-movement/internal/model"
	"github.com/Veraticus/money-movement/internal/testutil"
)

type rowCounts struct {
	statuses, types, categories, subcategories int
}

func countRows(t *testing.T, db *testutil.TestDB) rowCounts {
	t.Helper()
	ctx := context.Background()

	statuses, err := db.Storage.GetStatuses(ctx)
	require.NoError(t, err)
	types, err := db.Storage.GetTypes(ctx)
	require.NoError(t, err)
	categories, err := db.Storage.GetCategories(ctx)
	require.NoError(t, err)

	counts := rowCounts{statuses: len(statuses), types: len(types), categories: len(categories)}
	for _, c := range categories {
		subs, err := db.Storage.GetSubCategories(ctx, c.ID)
		require.NoError(t, err)
		counts.subcategories += len(subs)
	}
	return counts
}

func TestSeedDefaultTaxonomy_EmptyStore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	report, err := SeedDefaultTaxonomy(ctx, db.Storage)
	require.NoError(t, err)
	assert.Equal(t, SeedReport{Statuses: 3, Types: 2, Categories: 3, SubCategories: 5}, report)
	assert.Equal(t, 13, report.Total())

	statuses, err := db.Storage.GetStatuses(ctx)
	require.NoError(t, err)
	codes := make([]model.StatusCode, 0, len(statuses))
	for _, st := range statuses {
		codes = append(codes, st.Code)
		assert.False(t, st.IsCustom)
	}
	assert.ElementsMatch(t, []model.StatusCode{model.StatusBusiness, model.StatusPersonal, model.StatusTax}, codes)

	types, err := db.Storage.GetTypes(ctx)
	require.NoError(t, err)
	typeCodes := make([]model.TypeCode, 0, len(types))
	for _, typ := range types {
		typeCodes = append(typeCodes, typ.Code)
	}
	assert.ElementsMatch(t, []model.TypeCode{model.TypeIncome, model.TypeExpense}, typeCodes)

	tests := []struct {
		typ      model.TypeCode
		category string
		subs     []string
	}{
		{model.TypeExpense, "Infrastructure", []string{"VPS", "Proxy"}},
		{model.TypeExpense, "Marketing", []string{"Farpost", "Avito"}},
		{model.TypeIncome, "Receipts", []string{"Sales"}},
	}
	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			cat := db.MustCategory(tt.typ, tt.category)
			subs, err := db.Storage.GetSubCategories(ctx, cat.ID)
			require.NoError(t, err)
			names := make([]string, 0, len(subs))
			for _, s := range subs {
				names = append(names, s.Name)
			}
			assert.ElementsMatch(t, tt.subs, names)
		})
	}
}

func TestSeedDefaultTaxonomy_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	_, err := SeedDefaultTaxonomy(ctx, db.Storage)
	require.NoError(t, err)
	afterOne := countRows(t, db)

	for i := 0; i < 9; i++ {
		report, err := SeedDefaultTaxonomy(ctx, db.Storage)
		require.NoError(t, err)
		assert.Zero(t, report.Total(), "run %d created rows", i+2)
	}

	assert.Equal(t, afterOne, countRows(t, db))
	assert.Equal(t, rowCounts{statuses: 3, types: 2, categories: 3, subcategories: 5}, afterOne)
}

func TestSeedDefaultTaxonomy_FillsGaps(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	expense := &model.Type{Code: model.TypeExpense, Name: "Expense"}
	require.NoError(t, db.Storage.CreateType(ctx, expense))
	infra, err := db.Storage.CreateCategory(ctx, expense.ID, "Infrastructure")
	require.NoError(t, err)
	_, err = db.Storage.CreateSubCategory(ctx, infra.ID, "VPS")
	require.NoError(t, err)
	// Extra rows are left alone
	_, err = db.Storage.CreateSubCategory(ctx, infra.ID, "CDN")
	require.NoError(t, err)

	report, err := SeedDefaultTaxonomy(ctx, db.Storage)
	require.NoError(t, err)
	assert.Equal(t, SeedReport{Statuses: 3, Types: 1, Categories: 2, SubCategories: 4}, report)

	assert.Equal(t, expense.ID, db.MustType(model.TypeExpense).ID)
	subs, err := db.Storage.GetSubCategories(ctx, infra.ID)
	require.NoError(t, err)
	assert.Len(t, subs, 3)
}

func TestSeedDefaultTaxonomy_RollsBackOnConflict(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	// A custom status holding a canonical name blocks the seed.
	require.NoError(t, db.Storage.CreateStatus(ctx, &model.Status{Name: "Tax", IsCustom: true}))

	_, err := SeedDefaultTaxonomy(ctx, db.Storage)
	require.Error(t, err)
	cv, ok := common.AsConstraintViolation(err)
	require.True(t, ok, "expected ConstraintViolation, got %v", err)
	assert.Equal(t, common.ConstraintUnique, cv.Kind)
	assert.Equal(t, "name", cv.Field)

	// Business and Personal were inserted before the failure and rolled back.
	assert.Equal(t, rowCounts{statuses: 1}, countRows(t, db))
}
