package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCodesValid(t *testing.T) {
	for _, choice := range StatusChoices {
		assert.True(t, choice.Code.Valid(), choice.Code)
	}
	for _, choice := range TypeChoices {
		assert.True(t, choice.Code.Valid(), choice.Code)
	}

	assert.False(t, StatusCode("").Valid())
	assert.False(t, StatusCode("Business").Valid())
	assert.False(t, TypeCode("").Valid())
	assert.False(t, TypeCode("transfer").Valid())
}

func TestStrings(t *testing.T) {
	sub := 3
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"status", Status{Name: "Business"}.String(), "Business"},
		{"type", Type{Name: "Expense"}.String(), "Expense"},
		{"category", Category{Name: "Marketing", TypeName: "Expense"}.String(), "Expense - Marketing"},
		{"category without type", Category{Name: "Marketing"}.String(), "Marketing"},
		{"subcategory", SubCategory{Name: "Avito", CategoryName: "Marketing"}.String(), "Marketing - Avito"},
		{
			"movement",
			Movement{
				Date:          time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
				TypeName:      "Income",
				StatusName:    "Tax",
				Amount:        decimal.RequireFromString("1500.5"),
				SubCategoryID: &sub,
			}.String(),
			"2024-05-01: Income 1500.50р (Tax)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestAmountLimits(t *testing.T) {
	assert.Equal(t, "0.01", MinAmount.String())
	assert.True(t, MaxAmount.Equal(decimal.NewFromInt(100000000)))
}
