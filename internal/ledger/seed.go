package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/money-movement/internal/model"
	"github.com/Veraticus/money-movement/internal/service"
)

// Branch is one category of the default taxonomy with its subcategories.
type Branch struct {
	Type          model.TypeCode
	Category      string
	SubCategories []string
}

// DefaultTaxonomy is created by SeedDefaultTaxonomy.
var DefaultTaxonomy = []Branch{
	{Type: model.TypeExpense, Category: "Infrastructure", SubCategories: []string{"VPS", "Proxy"}},
	{Type: model.TypeExpense, Category: "Marketing", SubCategories: []string{"Farpost", "Avito"}},
	{Type: model.TypeIncome, Category: "Receipts", SubCategories: []string{"Sales"}},
}

// SeedReport counts the rows a seed run created.
type SeedReport struct {
	Statuses      int
	Types         int
	Categories    int
	SubCategories int
}

// Total returns the number of rows created.
func (r SeedReport) Total() int {
	return r.Statuses + r.Types + r.Categories + r.SubCategories
}

// SeedDefaultTaxonomy makes sure the canonical statuses and types and the
// DefaultTaxonomy categories exist. Statuses and types are matched by code,
// categories by type and name, subcategories by category and name; only
// missing rows are inserted. Everything runs in one transaction, so a failed
// call leaves the store untouched.
//
// Concurrent seeds are not serialized here: the loser of a race gets a
// unique ConstraintViolation from storage and may simply retry.
func SeedDefaultTaxonomy(ctx context.Context, store service.Storage) (report SeedReport, err error) {
	tx, err := store.BeginTx(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, choice := range model.StatusChoices {
		existing, getErr := tx.GetStatusByCode(ctx, choice.Code)
		if getErr != nil {
			return report, fmt.Errorf("failed to look up status %q: %w", choice.Code, getErr)
		}
		if existing != nil {
			continue
		}
		if err = tx.CreateStatus(ctx, &model.Status{Code: choice.Code, Name: choice.Name}); err != nil {
			return report, fmt.Errorf("failed to seed status %q: %w", choice.Code, err)
		}
		report.Statuses++
	}

	types := make(map[model.TypeCode]*model.Type, len(model.TypeChoices))
	for _, choice := range model.TypeChoices {
		typ, getErr := tx.GetTypeByCode(ctx, choice.Code)
		if getErr != nil {
			return report, fmt.Errorf("failed to look up type %q: %w", choice.Code, getErr)
		}
		if typ == nil {
			typ = &model.Type{Code: choice.Code, Name: choice.Name}
			if err = tx.CreateType(ctx, typ); err != nil {
				return report, fmt.Errorf("failed to seed type %q: %w", choice.Code, err)
			}
			report.Types++
		}
		types[choice.Code] = typ
	}

	for _, branch := range DefaultTaxonomy {
		if err = seedBranch(ctx, tx, types[branch.Type], branch, &report); err != nil {
			return report, err
		}
	}

	if err = tx.Commit(); err != nil {
		return report, fmt.Errorf("failed to commit seed: %w", err)
	}

	slog.Info("seeded default taxonomy",
		"statuses", report.Statuses,
		"types", report.Types,
		"categories", report.Categories,
		"subcategories", report.SubCategories)
	return report, nil
}

func seedBranch(ctx context.Context, tx service.Transaction, typ *model.Type, branch Branch, report *SeedReport) error {
	if typ == nil {
		return fmt.Errorf("no type for code %q", branch.Type)
	}

	category, err := tx.GetCategoryByName(ctx, typ.ID, branch.Category)
	if err != nil {
		return fmt.Errorf("failed to look up category %q: %w", branch.Category, err)
	}
	if category == nil {
		category, err = tx.CreateCategory(ctx, typ.ID, branch.Category)
		if err != nil {
			return fmt.Errorf("failed to seed category %q: %w", branch.Category, err)
		}
		report.Categories++
	}

	for _, name := range branch.SubCategories {
		sub, err := tx.GetSubCategoryByName(ctx, category.ID, name)
		if err != nil {
			return fmt.Errorf("failed to look up subcategory %q: %w", name, err)
		}
		if sub != nil {
			continue
		}
		if _, err := tx.CreateSubCategory(ctx, category.ID, name); err != nil {
			return fmt.Errorf("failed to seed subcategory %q: %w", name, err)
		}
		report.SubCategories++
	}
	return nil
}
