package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	err = db.RunMigrations()
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// TestMigrations verifies that migrations run successfully
func TestMigrations(t *testing.T) {
	db := NewTestDB(t)

	tables := []string{
		"projects",
		"records",
		"activity_log",
		"api_keys",
	}

	for _, table := range tables {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err, "failed to query table %s", table)
		require.Equal(t, 1, count, "table %s not found", table)
	}
}

// TestMigrationsAreRepeatable verifies startup can re-apply the schema
func TestMigrationsAreRepeatable(t *testing.T) {
	db := NewTestDB(t)
	require.NoError(t, db.RunMigrations())
}

// TestForeignKeys verifies that foreign key constraints are enabled
func TestForeignKeys(t *testing.T) {
	db := NewTestDB(t)

	var enabled int
	err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled)
	require.NoError(t, err)
	require.Equal(t, 1, enabled, "foreign keys not enabled")
}

// TestForeignKeysOnEveryConnection verifies pooled connections all enforce
// foreign keys, not just the first one opened
func TestForeignKeysOnEveryConnection(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "jobsite.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	ctx := context.Background()

	first, err := db.Conn(ctx)
	require.NoError(t, err)
	defer first.Close()
	second, err := db.Conn(ctx)
	require.NoError(t, err)
	defer second.Close()

	for _, conn := range []*sql.Conn{first, second} {
		var enabled int
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&enabled))
		require.Equal(t, 1, enabled)
	}
}

func TestWithForeignKeys(t *testing.T) {
	require.Equal(t, "a.db?_pragma=foreign_keys(1)", withForeignKeys("a.db"))
	require.Equal(t, "file:a.db?mode=rwc&_pragma=foreign_keys(1)", withForeignKeys("file:a.db?mode=rwc"))
}

// TestRecordsTable verifies the records table rejects unknown projects
func TestRecordsTable(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `INSERT INTO projects (id, name) VALUES (?, ?)`, "p1", "Harbor Tower")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx,
		`INSERT INTO records (id, module, project_id, status, payload) VALUES (?, ?, ?, ?, ?)`,
		"r1", "permit", "p1", "pending", `{}`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx,
		`INSERT INTO records (id, module, project_id, status, payload) VALUES (?, ?, ?, ?, ?)`,
		"r2", "permit", "missing", "pending", `{}`)
	require.Error(t, err, "should fail with invalid project_id")
}
