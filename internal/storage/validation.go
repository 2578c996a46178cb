// Package storage provides the data persistence layer for the money movement ledger.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/money-movement/internal/common"
	"github.com/Veraticus/money-movement/internal/model"
)

// Column limits.
const (
	maxCodeLength = 20
	maxNameLength = 100
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrInvalidID        = errors.New("id must be positive")
	ErrInvalidDateRange = errors.New("start date must be before end date")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateID ensures an identifier refers to a persisted row.
func validateID(id int, paramName string) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s=%d", ErrInvalidID, paramName, id)
	}
	return nil
}

// checkName enforces the non-blank and length rules shared by every name column.
func checkName(table, name string) error {
	if strings.TrimSpace(name) == "" {
		return &common.ConstraintViolation{
			Kind:   common.ConstraintRequired,
			Table:  table,
			Field:  "name",
			Detail: "name cannot be blank",
		}
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return &common.ConstraintViolation{
			Kind:   common.ConstraintRange,
			Table:  table,
			Field:  "name",
			Detail: fmt.Sprintf("name exceeds %d characters", maxNameLength),
		}
	}
	return nil
}

// checkCode enforces that canonical rows carry a known code and custom rows carry none.
func checkCode(table, code string, valid, isCustom bool) error {
	switch {
	case isCustom && code != "":
		return &common.ConstraintViolation{
			Kind:   common.ConstraintFormat,
			Table:  table,
			Field:  "code",
			Detail: fmt.Sprintf("custom rows cannot carry code %q", code),
		}
	case !isCustom && !valid:
		return &common.ConstraintViolation{
			Kind:   common.ConstraintFormat,
			Table:  table,
			Field:  "code",
			Detail: fmt.Sprintf("unknown code %q", code),
		}
	case len(code) > maxCodeLength:
		return &common.ConstraintViolation{
			Kind:   common.ConstraintRange,
			Table:  table,
			Field:  "code",
			Detail: fmt.Sprintf("code exceeds %d characters", maxCodeLength),
		}
	}
	return nil
}

// checkAmount enforces the minimum and the fixed precision of movement amounts.
func checkAmount(amount decimal.Decimal) error {
	violation := func(detail string) error {
		return &common.ConstraintViolation{
			Kind:   common.ConstraintRange,
			Table:  "movements",
			Field:  "amount",
			Detail: detail,
		}
	}

	if amount.LessThan(model.MinAmount) {
		return violation(fmt.Sprintf("amount %s is below %s", amount.String(), model.MinAmount.StringFixed(model.AmountPlaces)))
	}
	if !amount.Equal(amount.Truncate(model.AmountPlaces)) {
		return violation(fmt.Sprintf("amount %s has more than %d decimal places", amount.String(), model.AmountPlaces))
	}
	if amount.GreaterThanOrEqual(model.MaxAmount) {
		return violation(fmt.Sprintf("amount %s exceeds %d digits", amount.String(), model.AmountDigits))
	}
	return nil
}

// validateMovementFields checks the columns of a movement that do not depend on other rows.
func validateMovementFields(m *model.Movement) error {
	if m == nil {
		return fmt.Errorf("%w: movement", common.ErrNilParameter)
	}
	for _, ref := range []struct {
		field string
		id    int
	}{
		{"status", m.StatusID},
		{"type", m.TypeID},
		{"category", m.CategoryID},
	} {
		if ref.id <= 0 {
			return &common.ConstraintViolation{
				Kind:   common.ConstraintRequired,
				Table:  "movements",
				Field:  ref.field,
				Detail: ref.field + " is required",
			}
		}
	}
	return checkAmount(m.Amount)
}
