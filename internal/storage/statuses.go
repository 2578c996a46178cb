package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/money-movement/internal/common"
	"github.com/Veraticus/money-movement/internal/model"
)

const statusColumns = `id, code, name, is_custom`

func scanStatus(row interface{ Scan(...any) error }) (model.Status, error) {
	var (
		st   model.Status
		code sql.NullString
	)
	if err := row.Scan(&st.ID, &code, &st.Name, &st.IsCustom); err != nil {
		return st, err
	}
	st.Code = model.StatusCode(code.String)
	return st, nil
}

func getStatuses(ctx context.Context, q querier) ([]model.Status, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+statusColumns+` FROM statuses ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query statuses: %w", err)
	}
	defer rows.Close()

	var statuses []model.Status
	for rows.Next() {
		st, err := scanStatus(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan status: %w", err)
		}
		statuses = append(statuses, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating statuses: %w", err)
	}

	slog.Debug("retrieved statuses", "count", len(statuses))
	return statuses, nil
}

func getStatusWhere(ctx context.Context, q querier, where string, arg any) (*model.Status, error) {
	st, err := scanStatus(q.QueryRowContext(ctx, `SELECT `+statusColumns+` FROM statuses WHERE `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Status not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query status: %w", err)
	}
	return &st, nil
}

func getStatusByID(ctx context.Context, q querier, id int) (*model.Status, error) {
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}
	st, err := getStatusWhere(ctx, q, "id = ?", id)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("status %d: %w", id, common.ErrNotFound)
	}
	return st, nil
}

func createStatus(ctx context.Context, q querier, st *model.Status) error {
	if st == nil {
		return fmt.Errorf("%w: status", common.ErrNilParameter)
	}
	if err := checkName("statuses", st.Name); err != nil {
		return err
	}
	if err := checkCode("statuses", string(st.Code), st.Code.Valid(), st.IsCustom); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx,
		`INSERT INTO statuses (code, name, is_custom) VALUES (?, ?, ?)`,
		nullString(string(st.Code)), st.Name, st.IsCustom)
	if err != nil {
		return fmt.Errorf("failed to create status: %w", translateWriteError(err, "statuses"))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get status ID: %w", err)
	}
	st.ID = int(id)

	slog.Info("created status", "name", st.Name, "code", st.Code, "id", id)
	return nil
}

func deleteStatus(ctx context.Context, q querier, id int) error {
	return deleteRow(ctx, q, "statuses", id)
}

// GetStatuses returns all statuses ordered by name.
func (s *SQLiteStorage) GetStatuses(ctx context.Context) ([]model.Status, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getStatuses(ctx, s.db)
}

// GetStatusByID returns the status with the given id or common.ErrNotFound.
func (s *SQLiteStorage) GetStatusByID(ctx context.Context, id int) (*model.Status, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getStatusByID(ctx, s.db, id)
}

// GetStatusByCode returns the canonical status with the given code, or nil if absent.
func (s *SQLiteStorage) GetStatusByCode(ctx context.Context, code model.StatusCode) (*model.Status, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(string(code), "code"); err != nil {
		return nil, err
	}
	return getStatusWhere(ctx, s.db, "code = ?", string(code))
}

// GetStatusByName returns the status with the given name, or nil if absent.
func (s *SQLiteStorage) GetStatusByName(ctx context.Context, name string) (*model.Status, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return getStatusWhere(ctx, s.db, "name = ?", name)
}

// CreateStatus inserts a status and sets its ID.
func (s *SQLiteStorage) CreateStatus(ctx context.Context, st *model.Status) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return createStatus(ctx, s.db, st)
}

// DeleteStatus removes a status that no movement references.
func (s *SQLiteStorage) DeleteStatus(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteStatus(ctx, s.db, id)
}

// Transaction implementations for status operations

func (t *sqliteTransaction) GetStatuses(ctx context.Context) ([]model.Status, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getStatuses(ctx, t.tx)
}

func (t *sqliteTransaction) GetStatusByID(ctx context.Context, id int) (*model.Status, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getStatusByID(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetStatusByCode(ctx context.Context, code model.StatusCode) (*model.Status, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(string(code), "code"); err != nil {
		return nil, err
	}
	return getStatusWhere(ctx, t.tx, "code = ?", string(code))
}

func (t *sqliteTransaction) GetStatusByName(ctx context.Context, name string) (*model.Status, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return getStatusWhere(ctx, t.tx, "name = ?", name)
}

func (t *sqliteTransaction) CreateStatus(ctx context.Context, st *model.Status) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return createStatus(ctx, t.tx, st)
}

func (t *sqliteTransaction) DeleteStatus(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteStatus(ctx, t.tx, id)
}
