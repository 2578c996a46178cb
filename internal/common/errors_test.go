package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegrityError(t *testing.T) {
	err := &IntegrityError{
		Err:        ErrCategoryTypeMismatch,
		Child:      "category",
		ChildName:  "Infrastructure",
		Parent:     "type",
		ParentName: "Income",
	}

	assert.Equal(t, `category does not belong to declared type: category "Infrastructure", type "Income"`, err.Error())

	wrapped := fmt.Errorf("recording movement: %w", err)
	assert.ErrorIs(t, wrapped, ErrCategoryTypeMismatch)
	assert.NotErrorIs(t, wrapped, ErrSubCategoryMismatch)
}

func TestConstraintViolation(t *testing.T) {
	driverErr := errors.New("UNIQUE constraint failed: statuses.name")
	cv := &ConstraintViolation{
		Err:    driverErr,
		Kind:   ConstraintUnique,
		Table:  "statuses",
		Field:  "name",
		Detail: "duplicate",
	}

	assert.Equal(t, "unique constraint violated on statuses.name: duplicate", cv.Error())
	assert.ErrorIs(t, cv, ErrConstraint)
	assert.ErrorIs(t, cv, driverErr)

	wrapped := fmt.Errorf("failed to create status: %w", cv)
	got, ok := AsConstraintViolation(wrapped)
	require.True(t, ok)
	assert.Same(t, cv, got)

	noDetail := &ConstraintViolation{Kind: ConstraintRange, Table: "movements", Field: "amount"}
	assert.Equal(t, "range constraint violated on movements.amount", noDetail.Error())

	_, ok = AsConstraintViolation(errors.New("plain"))
	assert.False(t, ok)
}

func TestUserError(t *testing.T) {
	cause := errors.New("schema version 0")
	err := NewUserError("run 'ledger migrate' first", cause)

	assert.Equal(t, "run 'ledger migrate' first: schema version 0", err.Error())
	assert.ErrorIs(t, err, cause)

	var userErr *UserError
	require.True(t, errors.As(err, &userErr))
	assert.Equal(t, "run 'ledger migrate' first", userErr.UserMessage)

	assert.Equal(t, "just a message", NewUserError("just a message", nil).Error())
}
