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

const typeColumns = `id, code, name, is_custom`

func scanType(row interface{ Scan(...any) error }) (model.Type, error) {
	var (
		typ  model.Type
		code sql.NullString
	)
	if err := row.Scan(&typ.ID, &code, &typ.Name, &typ.IsCustom); err != nil {
		return typ, err
	}
	typ.Code = model.TypeCode(code.String)
	return typ, nil
}

func getTypes(ctx context.Context, q querier) ([]model.Type, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+typeColumns+` FROM types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query types: %w", err)
	}
	defer rows.Close()

	var types []model.Type
	for rows.Next() {
		typ, err := scanType(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan type: %w", err)
		}
		types = append(types, typ)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating types: %w", err)
	}

	slog.Debug("retrieved types", "count", len(types))
	return types, nil
}

func getTypeWhere(ctx context.Context, q querier, where string, arg any) (*model.Type, error) {
	typ, err := scanType(q.QueryRowContext(ctx, `SELECT `+typeColumns+` FROM types WHERE `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Type not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query type: %w", err)
	}
	return &typ, nil
}

func getTypeByID(ctx context.Context, q querier, id int) (*model.Type, error) {
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}
	typ, err := getTypeWhere(ctx, q, "id = ?", id)
	if err != nil {
		return nil, err
	}
	if typ == nil {
		return nil, fmt.Errorf("type %d: %w", id, common.ErrNotFound)
	}
	return typ, nil
}

func createType(ctx context.Context, q querier, typ *model.Type) error {
	if typ == nil {
		return fmt.Errorf("%w: type", common.ErrNilParameter)
	}
	if err := checkName("types", typ.Name); err != nil {
		return err
	}
	if err := checkCode("types", string(typ.Code), typ.Code.Valid(), typ.IsCustom); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx,
		`INSERT INTO types (code, name, is_custom) VALUES (?, ?, ?)`,
		nullString(string(typ.Code)), typ.Name, typ.IsCustom)
	if err != nil {
		return fmt.Errorf("failed to create type: %w", translateWriteError(err, "types"))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get type ID: %w", err)
	}
	typ.ID = int(id)

	slog.Info("created type", "name", typ.Name, "code", typ.Code, "id", id)
	return nil
}

func deleteType(ctx context.Context, q querier, id int) error {
	return deleteRow(ctx, q, "types", id)
}

// GetTypes returns all types ordered by name.
func (s *SQLiteStorage) GetTypes(ctx context.Context) ([]model.Type, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getTypes(ctx, s.db)
}

// GetTypeByID returns the type with the given id or common.ErrNotFound.
func (s *SQLiteStorage) GetTypeByID(ctx context.Context, id int) (*model.Type, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getTypeByID(ctx, s.db, id)
}

// GetTypeByCode returns the canonical type with the given code, or nil if absent.
func (s *SQLiteStorage) GetTypeByCode(ctx context.Context, code model.TypeCode) (*model.Type, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(string(code), "code"); err != nil {
		return nil, err
	}
	return getTypeWhere(ctx, s.db, "code = ?", string(code))
}

// GetTypeByName returns the type with the given name, or nil if absent.
func (s *SQLiteStorage) GetTypeByName(ctx context.Context, name string) (*model.Type, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return getTypeWhere(ctx, s.db, "name = ?", name)
}

// CreateType inserts a type and sets its ID.
func (s *SQLiteStorage) CreateType(ctx context.Context, typ *model.Type) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return createType(ctx, s.db, typ)
}

// DeleteType removes a type that no category or movement references.
func (s *SQLiteStorage) DeleteType(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteType(ctx, s.db, id)
}

// Transaction implementations for type operations

func (t *sqliteTransaction) GetTypes(ctx context.Context) ([]model.Type, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getTypes(ctx, t.tx)
}

func (t *sqliteTransaction) GetTypeByID(ctx context.Context, id int) (*model.Type, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getTypeByID(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetTypeByCode(ctx context.Context, code model.TypeCode) (*model.Type, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(string(code), "code"); err != nil {
		return nil, err
	}
	return getTypeWhere(ctx, t.tx, "code = ?", string(code))
}

func (t *sqliteTransaction) GetTypeByName(ctx context.Context, name string) (*model.Type, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return getTypeWhere(ctx, t.tx, "name = ?", name)
}

func (t *sqliteTransaction) CreateType(ctx context.Context, typ *model.Type) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return createType(ctx, t.tx, typ)
}

func (t *sqliteTransaction) DeleteType(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteType(ctx, t.tx, id)
}
