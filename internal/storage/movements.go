package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/money-movement/internal/common"
	"github.com/Veraticus/money-movement/internal/model"
	"github.com/Veraticus/money-movement/internal/service"
)

// now is replaced in tests.
var now = time.Now

// today returns the current calendar date at midnight UTC.
func today() time.Time {
	y, m, d := now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const movementSelect = `
		SELECT m.id, m.date, m.status_id, s.name, m.type_id, t.name,
			m.category_id, c.name, m.subcategory_id, sc.name,
			m.amount_cents, m.comment, m.created_at
		FROM movements m
		JOIN statuses s ON s.id = m.status_id
		JOIN types t ON t.id = m.type_id
		JOIN categories c ON c.id = m.category_id
		LEFT JOIN subcategories sc ON sc.id = m.subcategory_id`

func scanMovement(row interface{ Scan(...any) error }) (model.Movement, error) {
	var (
		m         model.Movement
		date      string
		subID     sql.NullInt64
		subName   sql.NullString
		cents     int64
		comment   sql.NullString
		createdAt sql.NullTime
	)

	err := row.Scan(&m.ID, &date, &m.StatusID, &m.StatusName, &m.TypeID, &m.TypeName,
		&m.CategoryID, &m.CategoryName, &subID, &subName,
		&cents, &comment, &createdAt)
	if err != nil {
		return m, err
	}

	m.Date, err = time.Parse(model.DateLayout, date)
	if err != nil {
		return m, fmt.Errorf("invalid movement date %q: %w", date, err)
	}
	if subID.Valid {
		id := int(subID.Int64)
		m.SubCategoryID = &id
		m.SubCategoryName = subName.String
	}
	m.Amount = centsToAmount(cents)
	m.Comment = comment.String
	m.CreatedAt = createdAt.Time
	return m, nil
}

// movementParents lists the rows a movement points at, in the order field
// errors are reported.
func movementParents(m *model.Movement) []parentRef {
	return []parentRef{
		{field: "status", table: "statuses", id: &m.StatusID},
		{field: "type", table: "types", id: &m.TypeID},
		{field: "category", table: "categories", id: &m.CategoryID},
		{field: "subcategory", table: "subcategories", id: m.SubCategoryID},
	}
}

func amountToCents(amount decimal.Decimal) int64 {
	return amount.Shift(model.AmountPlaces).IntPart()
}

func centsToAmount(cents int64) decimal.Decimal {
	return decimal.New(cents, -model.AmountPlaces)
}

func saveMovement(ctx context.Context, q querier, m *model.Movement) error {
	if err := validateMovementFields(m); err != nil {
		return err
	}
	if m.Date.IsZero() {
		m.Date = today()
	}

	result, err := q.ExecContext(ctx, `
		INSERT INTO movements (date, status_id, type_id, category_id, subcategory_id, amount_cents, comment)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.Date.Format(model.DateLayout), m.StatusID, m.TypeID, m.CategoryID,
		nullInt(m.SubCategoryID), amountToCents(m.Amount), nullString(m.Comment))
	if err != nil {
		return fmt.Errorf("failed to save movement: %w",
			nameMissingReference(ctx, q, translateWriteError(err, "movements"), movementParents(m)...))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get movement ID: %w", err)
	}
	m.ID = int(id)

	slog.Info("saved movement",
		"id", id,
		"date", m.Date.Format(model.DateLayout),
		"amount", m.Amount.StringFixed(model.AmountPlaces))
	return nil
}

func updateMovement(ctx context.Context, q querier, m *model.Movement) error {
	if err := validateMovementFields(m); err != nil {
		return err
	}
	if err := validateID(m.ID, "id"); err != nil {
		return err
	}
	if m.Date.IsZero() {
		return &common.ConstraintViolation{
			Kind:   common.ConstraintRequired,
			Table:  "movements",
			Field:  "date",
			Detail: "date is required",
		}
	}

	result, err := q.ExecContext(ctx, `
		UPDATE movements
		SET date = ?, status_id = ?, type_id = ?, category_id = ?, subcategory_id = ?, amount_cents = ?, comment = ?
		WHERE id = ?`,
		m.Date.Format(model.DateLayout), m.StatusID, m.TypeID, m.CategoryID,
		nullInt(m.SubCategoryID), amountToCents(m.Amount), nullString(m.Comment), m.ID)
	if err != nil {
		return fmt.Errorf("failed to update movement: %w",
			nameMissingReference(ctx, q, translateWriteError(err, "movements"), movementParents(m)...))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("movement %d: %w", m.ID, common.ErrNotFound)
	}
	return nil
}

func getMovementByID(ctx context.Context, q querier, id int) (*model.Movement, error) {
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	m, err := scanMovement(q.QueryRowContext(ctx, movementSelect+` WHERE m.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("movement %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query movement: %w", err)
	}
	return &m, nil
}

func getMovements(ctx context.Context, q querier, filter service.MovementFilter) ([]model.Movement, error) {
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, *filter.EndDate, *filter.StartDate)
	}

	var (
		conditions []string
		args       []any
	)
	if filter.StartDate != nil {
		conditions = append(conditions, "m.date >= ?")
		args = append(args, filter.StartDate.Format(model.DateLayout))
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "m.date <= ?")
		args = append(args, filter.EndDate.Format(model.DateLayout))
	}
	if filter.StatusID > 0 {
		conditions = append(conditions, "m.status_id = ?")
		args = append(args, filter.StatusID)
	}
	if filter.TypeID > 0 {
		conditions = append(conditions, "m.type_id = ?")
		args = append(args, filter.TypeID)
	}
	if filter.CategoryID > 0 {
		conditions = append(conditions, "m.category_id = ?")
		args = append(args, filter.CategoryID)
	}

	query := movementSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY m.date DESC, m.id DESC"
	switch {
	case filter.Limit > 0:
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	case filter.Offset > 0:
		query += " LIMIT -1 OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements: %w", err)
	}
	defer rows.Close()

	var movements []model.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating movements: %w", err)
	}

	slog.Debug("retrieved movements", "count", len(movements))
	return movements, nil
}

// SaveMovement inserts a movement and sets its ID. A zero date becomes today.
// Callers are expected to run ledger validation first; this only enforces
// column constraints.
func (s *SQLiteStorage) SaveMovement(ctx context.Context, m *model.Movement) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return saveMovement(ctx, s.db, m)
}

// UpdateMovement rewrites every column of an existing movement.
func (s *SQLiteStorage) UpdateMovement(ctx context.Context, m *model.Movement) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return updateMovement(ctx, s.db, m)
}

// GetMovementByID returns a movement by its ID.
func (s *SQLiteStorage) GetMovementByID(ctx context.Context, id int) (*model.Movement, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getMovementByID(ctx, s.db, id)
}

// GetMovements returns movements newest first.
func (s *SQLiteStorage) GetMovements(ctx context.Context, filter service.MovementFilter) ([]model.Movement, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getMovements(ctx, s.db, filter)
}

// DeleteMovement deletes a movement.
func (s *SQLiteStorage) DeleteMovement(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteRow(ctx, s.db, "movements", id)
}

// Transaction implementations for movement operations

func (t *sqliteTransaction) SaveMovement(ctx context.Context, m *model.Movement) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return saveMovement(ctx, t.tx, m)
}

func (t *sqliteTransaction) UpdateMovement(ctx context.Context, m *model.Movement) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return updateMovement(ctx, t.tx, m)
}

func (t *sqliteTransaction) GetMovementByID(ctx context.Context, id int) (*model.Movement, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getMovementByID(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetMovements(ctx context.Context, filter service.MovementFilter) ([]model.Movement, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getMovements(ctx, t.tx, filter)
}

func (t *sqliteTransaction) DeleteMovement(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteRow(ctx, t.tx, "movements", id)
}
