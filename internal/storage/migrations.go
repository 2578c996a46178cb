package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Classification tables",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS statuses (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					code TEXT UNIQUE CHECK (code IS NULL OR length(code) <= 20),
					name TEXT NOT NULL UNIQUE CHECK (length(name) <= 100),
					is_custom BOOLEAN NOT NULL DEFAULT 0
				)`,
				`CREATE TABLE IF NOT EXISTS types (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					code TEXT UNIQUE CHECK (code IS NULL OR length(code) <= 20),
					name TEXT NOT NULL UNIQUE CHECK (length(name) <= 100),
					is_custom BOOLEAN NOT NULL DEFAULT 0
				)`,
				`CREATE TABLE IF NOT EXISTS categories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					type_id INTEGER NOT NULL REFERENCES types(id) ON DELETE RESTRICT,
					name TEXT NOT NULL CHECK (length(name) <= 100),
					UNIQUE (type_id, name)
				)`,
				`CREATE INDEX idx_categories_type ON categories(type_id)`,
				`CREATE TABLE IF NOT EXISTS subcategories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
					name TEXT NOT NULL CHECK (length(name) <= 100),
					UNIQUE (category_id, name)
				)`,
				`CREATE INDEX idx_subcategories_category ON subcategories(category_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Money movements ledger",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS movements (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					date TEXT NOT NULL,
					status_id INTEGER NOT NULL REFERENCES statuses(id) ON DELETE RESTRICT,
					type_id INTEGER NOT NULL REFERENCES types(id) ON DELETE RESTRICT,
					category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
					subcategory_id INTEGER REFERENCES subcategories(id) ON DELETE RESTRICT,
					amount_cents INTEGER NOT NULL
						CONSTRAINT movements_amount_min CHECK (amount_cents >= 1)
						CONSTRAINT movements_amount_digits CHECK (amount_cents <= 9999999999),
					comment TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_movements_date ON movements(date)`,
				`CREATE INDEX idx_movements_status ON movements(status_id)`,
				`CREATE INDEX idx_movements_type ON movements(type_id)`,
				`CREATE INDEX idx_movements_category ON movements(category_id)`,
				`CREATE INDEX idx_movements_subcategory ON movements(subcategory_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
}

// SchemaVersion returns the schema version recorded in the database.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	// Apply migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		// Update version
		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	// Verify we're at the expected schema version
	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
