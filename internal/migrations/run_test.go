package migrations

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func getTestDB(t *testing.T) (*sql.DB, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)

	cleanup := func() {
		_ = db.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return db, cleanup
}

func getMigrationsPath(t *testing.T) string {
	projectRoot, err := filepath.Abs("../..")
	require.NoError(t, err)

	migrationsPath := filepath.Join(projectRoot, "migrations")
	t.Logf("Migrations path: %s", migrationsPath)
	return migrationsPath
}

func tableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()
	var exists bool
	err := db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)
	`, table).Scan(&exists)
	require.NoError(t, err)
	return exists
}

func TestRunMigrations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping migration tests in short mode")
	}
	db, cleanup := getTestDB(t)
	defer cleanup()

	err := Run(db, getMigrationsPath(t))
	require.NoError(t, err)

	for _, table := range []string{"users", "groups", "group_members", "subscriptions", "group_creation_intents", "owner_applications"} {
		require.Truef(t, tableExists(t, db, table), "table %q should exist", table)
	}

	var exists bool
	err = db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM pg_indexes
			WHERE schemaname = 'public'
			AND tablename = 'group_creation_intents'
			AND indexname = 'idx_intents_in_flight'
		)
	`).Scan(&exists)
	require.NoError(t, err)
	require.True(t, exists, "in-flight index should exist")
}

func TestMigration_SubscriptionCascadesWithGroup(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping migration tests in short mode")
	}
	db, cleanup := getTestDB(t)
	defer cleanup()
	require.NoError(t, Run(db, getMigrationsPath(t)))

	var uid string
	err := db.QueryRow(`
		INSERT INTO users (auth_id, email, username, password_hash)
		VALUES ('auth|1', 'a@b.c', 'alice', 'x') RETURNING uid
	`).Scan(&uid)
	require.NoError(t, err)

	var groupID int64
	err = db.QueryRow(`
		INSERT INTO groups (owner_uid, name, category) VALUES ($1, 'Go', 'tech') RETURNING id
	`, uid).Scan(&groupID)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO subscriptions (group_id, price, currency) VALUES ($1, 100, 'INR')`, groupID)
	require.NoError(t, err)

	_, err = db.Exec(`DELETE FROM groups WHERE id = $1`, groupID)
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM subscriptions WHERE group_id = $1`, groupID).Scan(&count))
	require.Zero(t, count)
}

func TestMigrationIdempotency(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping migration tests in short mode")
	}
	db, cleanup := getTestDB(t)
	defer cleanup()

	migrationsPath := getMigrationsPath(t)
	require.NoError(t, Run(db, migrationsPath))
	require.NoError(t, Run(db, migrationsPath), "running migrations twice should not fail")
	require.True(t, tableExists(t, db, "subscriptions"))
}
