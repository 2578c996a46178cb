package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/Veraticus/money-movement/internal/common"
)

// reference is a foreign key pointing at a table from another table.
type reference struct {
	table  string
	column string
}

// protectingReferences lists, per table, the RESTRICT foreign keys that block deletes.
// subcategories.category_id cascades and is not listed.
var protectingReferences = map[string][]reference{
	"statuses":      {{"movements", "status_id"}},
	"types":         {{"categories", "type_id"}, {"movements", "type_id"}},
	"categories":    {{"movements", "category_id"}},
	"subcategories": {{"movements", "subcategory_id"}},
}

// cascadingChildren lists, per table, the child rows removed by ON DELETE
// CASCADE whose own references can still block the delete.
var cascadingChildren = map[string][]reference{
	"categories": {{"subcategories", "category_id"}},
}

// isForeignKeyFailure reports whether err is a foreign key violation. SQLite
// raises ON DELETE RESTRICT through its trigger code rather than the
// foreign key one.
func isForeignKeyFailure(err sqlite3.Error) bool {
	switch err.ExtendedCode {
	case sqlite3.ErrConstraintForeignKey:
		return true
	case sqlite3.ErrConstraintTrigger:
		return strings.Contains(err.Error(), "FOREIGN KEY")
	}
	return false
}

// translateWriteError converts SQLite constraint failures raised by an
// insert or update on table into a ConstraintViolation.
func translateWriteError(err error, table string) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code != sqlite3.ErrConstraint {
		return err
	}

	cv := &common.ConstraintViolation{
		Err:    err,
		Table:  table,
		Detail: sqliteErr.Error(),
	}

	if isForeignKeyFailure(sqliteErr) {
		// SQLite does not say which key failed.
		cv.Kind = common.ConstraintRequired
		cv.Field = "reference"
		cv.Detail = "referenced row does not exist"
		return cv
	}

	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		cv.Kind = common.ConstraintUnique
		cv.Field = failedColumns(sqliteErr.Error())
	case sqlite3.ErrConstraintCheck:
		cv.Kind = common.ConstraintRange
		cv.Field = checkedColumn(sqliteErr.Error())
	case sqlite3.ErrConstraintNotNull:
		cv.Kind = common.ConstraintRequired
		cv.Field = failedColumns(sqliteErr.Error())
	default:
		cv.Kind = common.ConstraintFormat
	}
	return cv
}

// translateDeleteError converts a foreign key failure on delete into a
// protected ConstraintViolation naming the reference that still holds the row.
func translateDeleteError(ctx context.Context, q querier, err error, table string, id int) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || !isForeignKeyFailure(sqliteErr) {
		return translateWriteError(err, table)
	}

	field := "reference"
	if ref, found := findProtectingReference(ctx, q, table, id); found {
		field = ref.table + "." + ref.column
	}

	return &common.ConstraintViolation{
		Err:    err,
		Kind:   common.ConstraintProtected,
		Table:  table,
		Field:  field,
		Detail: fmt.Sprintf("%s row %d is still referenced", table, id),
	}
}

func findProtectingReference(ctx context.Context, q querier, table string, id int) (reference, bool) {
	for _, ref := range protectingReferences[table] {
		var n int
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", ref.table, ref.column)
		if err := q.QueryRowContext(ctx, query, id).Scan(&n); err == nil && n > 0 {
			return ref, true
		}
	}
	for _, child := range cascadingChildren[table] {
		for _, ref := range protectingReferences[child.table] {
			var n int
			query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s IN (SELECT id FROM %s WHERE %s = ?)",
				ref.table, ref.column, child.table, child.column)
			if err := q.QueryRowContext(ctx, query, id).Scan(&n); err == nil && n > 0 {
				return ref, true
			}
		}
	}
	return reference{}, false
}

// missingReference returns the first field whose id has no row in table,
// for naming the parent of a failed insert.
func missingReference(ctx context.Context, q querier, refs []parentRef) (string, bool) {
	for _, ref := range refs {
		if ref.id == nil {
			continue
		}
		var n int
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id = ?", ref.table)
		if err := q.QueryRowContext(ctx, query, *ref.id).Scan(&n); err == nil && n == 0 {
			return ref.field, true
		}
	}
	return "", false
}

// parentRef is a foreign key value about to be written.
type parentRef struct {
	field string
	table string
	id    *int
}

// nameMissingReference rewrites the generic "reference" field of a required
// violation to the field whose parent row does not exist.
func nameMissingReference(ctx context.Context, q querier, err error, refs ...parentRef) error {
	cv, ok := common.AsConstraintViolation(err)
	if !ok || cv.Kind != common.ConstraintRequired || cv.Field != "reference" {
		return err
	}
	if field, found := missingReference(ctx, q, refs); found {
		cv.Field = field
		cv.Detail = field + " does not exist"
	}
	return err
}

// failedColumns extracts "name" or "type_id, name" from messages such as
// "UNIQUE constraint failed: categories.type_id, categories.name".
func failedColumns(msg string) string {
	_, list, found := strings.Cut(msg, ": ")
	if !found {
		return ""
	}

	parts := strings.Split(list, ",")
	columns := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if _, column, ok := strings.Cut(part, "."); ok {
			part = column
		}
		columns = append(columns, part)
	}
	return strings.Join(columns, ", ")
}

// checkedColumn maps a failed CHECK constraint back to the column it guards.
func checkedColumn(msg string) string {
	switch {
	case strings.Contains(msg, "amount"):
		return "amount"
	case strings.Contains(msg, "code"):
		return "code"
	case strings.Contains(msg, "name"):
		return "name"
	}
	return ""
}
