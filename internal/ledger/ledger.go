package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/money-movement/internal/common"
	"github.com/Veraticus/money-movement/internal/model"
	"github.com/Veraticus/money-movement/internal/service"
)

// Ledger is the write path for movements. Every create or edit is validated
// against the records it references inside the same transaction that persists it.
type Ledger struct {
	store service.Storage
}

// New creates a ledger on top of store.
func New(store service.Storage) *Ledger {
	return &Ledger{store: store}
}

// Record validates and inserts a new movement, setting its ID.
func (l *Ledger) Record(ctx context.Context, m *model.Movement) error {
	return l.write(ctx, m, func(tx service.Transaction) error {
		return tx.SaveMovement(ctx, m)
	})
}

// Update validates and rewrites an existing movement.
func (l *Ledger) Update(ctx context.Context, m *model.Movement) error {
	return l.write(ctx, m, func(tx service.Transaction) error {
		return tx.UpdateMovement(ctx, m)
	})
}

func (l *Ledger) write(ctx context.Context, m *model.Movement, persist func(service.Transaction) error) (err error) {
	if m == nil {
		return fmt.Errorf("%w: movement", common.ErrNilParameter)
	}

	tx, err := l.store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	category, typ, sub, err := resolve(ctx, tx, m)
	if err != nil {
		return err
	}
	if err = ValidateMovement(m, category, typ, sub); err != nil {
		return err
	}
	if err = persist(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// reference is a movement column pointing at another record.
type reference struct {
	field string
	id    int
}

// resolve loads the status, type, category and optional subcategory a
// movement points at. Unset or unknown references are reported as required
// ConstraintViolations naming the field.
func resolve(ctx context.Context, tx service.Transaction, m *model.Movement) (*model.Category, *model.Type, *model.SubCategory, error) {
	refs := []reference{
		{"status", m.StatusID},
		{"type", m.TypeID},
		{"category", m.CategoryID},
	}
	if m.SubCategoryID != nil {
		refs = append(refs, reference{"subcategory", *m.SubCategoryID})
	}
	for _, ref := range refs {
		if ref.id <= 0 {
			return nil, nil, nil, missingReference(ref.field, nil)
		}
	}

	if _, err := tx.GetStatusByID(ctx, m.StatusID); err != nil {
		return nil, nil, nil, missingReference("status", err)
	}
	typ, err := tx.GetTypeByID(ctx, m.TypeID)
	if err != nil {
		return nil, nil, nil, missingReference("type", err)
	}
	category, err := tx.GetCategoryByID(ctx, m.CategoryID)
	if err != nil {
		return nil, nil, nil, missingReference("category", err)
	}

	var sub *model.SubCategory
	if m.SubCategoryID != nil {
		sub, err = tx.GetSubCategoryByID(ctx, *m.SubCategoryID)
		if err != nil {
			return nil, nil, nil, missingReference("subcategory", err)
		}
	}
	return category, typ, sub, nil
}

// missingReference reports an unset (err == nil) or absent referenced row as
// a required violation on field. Other lookup failures pass through wrapped.
func missingReference(field string, err error) error {
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("movement %s: %w", field, err)
	}
	detail := field + " is required"
	if err != nil {
		detail = field + " does not exist"
	}
	return &common.ConstraintViolation{
		Err:    err,
		Kind:   common.ConstraintRequired,
		Table:  "movements",
		Field:  field,
		Detail: detail,
	}
}
