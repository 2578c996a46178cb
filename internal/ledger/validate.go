package ledger

import (
	"fmt"

	"github.com/Veraticus/money-movement/internal/common"
	"github.com/Veraticus/money-movement/internal/model"
)

// ValidateMovement checks that the classification of a movement is coherent:
// the category belongs to the declared type and, when a subcategory is given,
// the subcategory belongs to the category.
//
// It has no side effects and never corrects the input. Amount and uniqueness
// rules are left to storage.
func ValidateMovement(m *model.Movement, category *model.Category, typ *model.Type, sub *model.SubCategory) error {
	if m == nil {
		return fmt.Errorf("%w: movement", common.ErrNilParameter)
	}
	if category == nil {
		return fmt.Errorf("%w: category", common.ErrNilParameter)
	}
	if typ == nil {
		return fmt.Errorf("%w: type", common.ErrNilParameter)
	}

	if category.TypeID != typ.ID {
		return &common.IntegrityError{
			Err:        common.ErrCategoryTypeMismatch,
			Child:      "category",
			ChildName:  category.Name,
			Parent:     "type",
			ParentName: typ.Name,
		}
	}

	if sub != nil && sub.CategoryID != category.ID {
		return &common.IntegrityError{
			Err:        common.ErrSubCategoryMismatch,
			Child:      "subcategory",
			ChildName:  sub.Name,
			Parent:     "category",
			ParentName: category.Name,
		}
	}

	return nil
}
