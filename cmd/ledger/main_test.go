package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/money-movement/internal/common"
)

// run executes the CLI with args against a fresh command tree.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func setupCLI(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	return filepath.Join(t.TempDir(), "ledger.db")
}

func TestRootCommand_Structure(t *testing.T) {
	root := newRootCmd()

	want := []string{"migrate", "seed", "taxonomy", "statuses", "types", "categories", "subcategories", "movements", "version"}
	var got []string
	for _, cmd := range root.Commands() {
		got = append(got, cmd.Name())
	}
	for _, name := range want {
		assert.Contains(t, got, name)
	}

	for _, flag := range []string{"config", "env-file", "database", "log-level", "log-format"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "missing flag %s", flag)
	}

	movements, _, err := root.Find([]string{"movements", "add"})
	require.NoError(t, err)
	assert.Equal(t, "add", movements.Name())
	assert.NotNil(t, movements.Flags().Lookup("subcategory"))
}

func TestVersion(t *testing.T) {
	setupCLI(t)
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "ledger dev\n", out)
}

func TestMigrateAndRecord(t *testing.T) {
	db := setupCLI(t)

	out, err := run(t, "--database", db, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Database migrations completed")
	assert.Contains(t, out, "Seeded 3 statuses, 2 types, 3 categories, 5 subcategories")

	out, err = run(t, "--database", db, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Default taxonomy already present")

	out, err = run(t, "--database", db, "movements", "add",
		"--status", "business", "--type", "expense",
		"--category", "Infrastructure", "--subcategory", "VPS",
		"--amount", "12.50", "--date", "2024-05-01", "--comment", "monthly")
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded #1 2024-05-01: Expense 12.50р (Business)")

	t.Run("category of another type", func(t *testing.T) {
		_, err := run(t, "--database", db, "movements", "add",
			"--status", "business", "--type", "expense",
			"--category", "Receipts", "--amount", "5")
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrCategoryTypeMismatch)
	})

	t.Run("amount out of range", func(t *testing.T) {
		_, err := run(t, "--database", db, "movements", "add",
			"--status", "tax", "--type", "income",
			"--category", "Receipts", "--amount", "0.001")
		cv, ok := common.AsConstraintViolation(err)
		require.True(t, ok, "expected ConstraintViolation, got %v", err)
		assert.Equal(t, "amount", cv.Field)
	})

	out, err = run(t, "--database", db, "movements", "export")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1,2024-05-01,Business,Expense,Infrastructure,VPS,12.50,monthly", lines[1])

	out, err = run(t, "--database", db, "movements", "list", "--from", "2024-06-01")
	require.NoError(t, err)
	assert.NotContains(t, out, "2024-05-01")
	assert.Contains(t, out, "No movements found.")

	t.Run("export filters", func(t *testing.T) {
		_, err := run(t, "--database", db, "movements", "add",
			"--status", "tax", "--type", "income",
			"--category", "Receipts", "--subcategory", "Sales",
			"--amount", "300", "--date", "2024-05-02")
		require.NoError(t, err)

		tests := []struct {
			name  string
			args  []string
			lines int
		}{
			{"all", nil, 3},
			{"by status", []string{"--status", "business"}, 2},
			{"by type", []string{"--type", "income"}, 2},
			{"by category", []string{"--type", "expense", "--category", "Infrastructure"}, 2},
			{"by category name alone", []string{"--category", "Marketing"}, 1},
			{"offset", []string{"--offset", "1"}, 2},
			{"limit", []string{"--limit", "1"}, 2},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				args := append([]string{"--database", db, "movements", "export"}, tt.args...)
				out, err := run(t, args...)
				require.NoError(t, err)
				assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), tt.lines)
			})
		}

		out, err := run(t, "--database", db, "movements", "export", "--offset", "1")
		require.NoError(t, err)
		assert.Contains(t, out, "1,2024-05-01,Business")
		assert.NotContains(t, out, "2024-05-02")

		_, err = run(t, "--database", db, "movements", "export", "--status", "charity")
		assert.ErrorIs(t, err, common.ErrNotFound)

		out, err = run(t, "--database", db, "movements", "delete", "2")
		require.NoError(t, err)
		assert.Contains(t, out, "Deleted movement 2")
	})

	t.Run("protected category", func(t *testing.T) {
		out, err := run(t, "--database", db, "taxonomy", "export")
		require.NoError(t, err)
		assert.Contains(t, out, "name: Infrastructure")

		_, err = run(t, "--database", db, "types", "delete", "1")
		cv, ok := common.AsConstraintViolation(err)
		require.True(t, ok, "expected ConstraintViolation, got %v", err)
		assert.Equal(t, common.ConstraintProtected, cv.Kind)
	})

	_, err = run(t, "--database", db, "movements", "delete", "1")
	require.NoError(t, err)
	out, err = run(t, "--database", db, "movements", "export")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 1)
}

func TestMigrateStatus(t *testing.T) {
	db := setupCLI(t)

	out, err := run(t, "--database", db, "migrate", "--status")
	require.NoError(t, err)
	assert.Contains(t, out, "Current version: 0")
	assert.Contains(t, out, "Database needs migration")

	_, err = run(t, "--database", db, "migrate")
	require.NoError(t, err)

	out, err = run(t, "--database", db, "migrate", "--status")
	require.NoError(t, err)
	assert.Contains(t, out, "Current version: 2")
	assert.NotContains(t, out, "Database needs migration")
}

func TestDataCommandsRequireMigration(t *testing.T) {
	db := setupCLI(t)

	_, err := run(t, "--database", db, "movements", "list")
	require.Error(t, err)

	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.UserMessage, "ledger migrate")
}

func TestResolveHelpers(t *testing.T) {
	id, ok := parseID(" 12 ")
	assert.True(t, ok)
	assert.Equal(t, 12, id)

	_, ok = parseID("Infrastructure")
	assert.False(t, ok)
	_, ok = parseID("0")
	assert.False(t, ok)
}
