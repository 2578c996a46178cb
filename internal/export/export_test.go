package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Veraticus/money-movement/internal/ledger"
	"github.com/Veraticus/money-movement/internal/model"
	"github.com/Veraticus/money-movement/internal/testutil"
)

func TestLoadTaxonomy(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	_, err := ledger.SeedDefaultTaxonomy(ctx, db.Storage)
	require.NoError(t, err)
	require.NoError(t, db.Storage.CreateType(ctx, &model.Type{Name: "Transfer", IsCustom: true}))

	tax, err := LoadTaxonomy(ctx, db.Storage)
	require.NoError(t, err)

	require.Len(t, tax.Statuses, 3)
	assert.Equal(t, TaxonomyStatus{Code: "business", Name: "Business"}, tax.Statuses[0])

	require.Len(t, tax.Types, 3)
	assert.Equal(t, TaxonomyType{
		Code: "expense",
		Name: "Expense",
		Categories: []TaxonomyCategory{
			{Name: "Infrastructure", SubCategories: []string{"Proxy", "VPS"}},
			{Name: "Marketing", SubCategories: []string{"Avito", "Farpost"}},
		},
	}, tax.Types[0])
	assert.Equal(t, "Income", tax.Types[1].Name)
	assert.Equal(t, TaxonomyType{Name: "Transfer", Custom: true}, tax.Types[2])
}

func TestWriteTaxonomyYAML(t *testing.T) {
	tax := &Taxonomy{
		Statuses: []TaxonomyStatus{{Code: "tax", Name: "Tax"}},
		Types: []TaxonomyType{{
			Code:       "income",
			Name:       "Income",
			Categories: []TaxonomyCategory{{Name: "Receipts", SubCategories: []string{"Sales"}}},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTaxonomyYAML(&buf, tax))

	out := buf.String()
	assert.Contains(t, out, "code: tax")
	assert.Contains(t, out, "name: Receipts")
	assert.Contains(t, out, "- Sales")
	assert.NotContains(t, out, "custom:")

	var decoded Taxonomy
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, *tax, decoded)
}

func TestWriteMovementsCSV(t *testing.T) {
	sub := 4
	movements := []model.Movement{
		{
			ID:              2,
			Date:            time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			StatusName:      "Business",
			TypeName:        "Expense",
			CategoryName:    "Infrastructure",
			SubCategoryID:   &sub,
			SubCategoryName: "VPS",
			Amount:          decimal.RequireFromString("12.5"),
			Comment:         "hetzner, monthly",
		},
		{
			ID:           1,
			Date:         time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			StatusName:   "Tax",
			TypeName:     "Income",
			CategoryName: "Receipts",
			Amount:       decimal.RequireFromString("300"),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMovementsCSV(&buf, movements))

	want := "id,date,status,type,category,subcategory,amount,comment\n" +
		"2,2024-02-01,Business,Expense,Infrastructure,VPS,12.50,\"hetzner, monthly\"\n" +
		"1,2024-01-15,Tax,Income,Receipts,,300.00,\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteMovementsCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMovementsCSV(&buf, nil))
	assert.Equal(t, "id,date,status,type,category,subcategory,amount,comment\n", buf.String())
}

func TestMovementRows_SubCategoryOnlyWhenReferenced(t *testing.T) {
	rows := MovementRows([]model.Movement{{
		Date:            time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Amount:          decimal.RequireFromString("1"),
		SubCategoryName: "stale",
	}})

	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].SubCategory)
	assert.Equal(t, "1.00", rows[0].Amount)
}
