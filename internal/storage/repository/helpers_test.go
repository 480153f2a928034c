package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/nexus/internal/migrations"
	"github.com/magabrotheeeer/nexus/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping storage tests in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))
	require.NoError(t, CheckDatabaseReady(ctx, storage))

	return storage
}

// TestDataFactory создаёт тестовые данные напрямую в базе.
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создаёт пользователя без платёжного метода.
func (f *TestDataFactory) CreateUser(t *testing.T, username string) *models.User {
	t.Helper()
	u := models.User{
		AuthID:       "auth|" + uuid.NewString(),
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "hashedpassword",
	}
	uid, err := f.storage.CreateUser(context.Background(), u)
	require.NoError(t, err)
	u.UUID = uid
	return &u
}

// CreatePayingUser создаёт пользователя с customer и token.
func (f *TestDataFactory) CreatePayingUser(t *testing.T, username string) *models.User {
	t.Helper()
	u := f.CreateUser(t, username)
	_, err := f.storage.DB.Exec(`UPDATE users SET customer_ref = $2, token_ref = $3, trial_end_date = $4 WHERE uid = $1`,
		u.UUID, "cust_"+username, "token_"+username, time.Now().Add(7*24*time.Hour))
	require.NoError(t, err)
	u.CustomerRef = "cust_" + username
	u.TokenRef = "token_" + username
	return u
}

// CreateGroup создаёт группу в обход проверки платёжного метода.
func (f *TestDataFactory) CreateGroup(t *testing.T, ownerUID, name, category string, privacy models.Privacy) int64 {
	t.Helper()
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO groups (owner_uid, name, category, privacy)
		VALUES ($1, $2, $3, $4) RETURNING id`, ownerUID, name, category, string(privacy)).Scan(&id)
	require.NoError(t, err)
	_, err = f.storage.DB.Exec(`INSERT INTO group_members (group_id, user_uid) VALUES ($1, $2)`, id, ownerUID)
	require.NoError(t, err)
	return id
}

// CreateSubscription создаёт подписку группы.
func (f *TestDataFactory) CreateSubscription(t *testing.T, groupID int64, externalRef string) int64 {
	t.Helper()
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO subscriptions (group_id, status, trial_end_date, price, currency, external_ref)
		VALUES ($1, 'TRIAL', $2, 49900, 'INR', $3) RETURNING id`,
		groupID, time.Now().Add(7*24*time.Hour), externalRef).Scan(&id)
	require.NoError(t, err)
	return id
}

// Intent читает запись журнала создания группы.
func (f *TestDataFactory) Intent(t *testing.T, id string) *models.GroupCreationIntent {
	t.Helper()
	intent, err := scanIntent(f.storage.DB.QueryRow(`SELECT `+intentColumns+` FROM group_creation_intents WHERE id = $1`, id))
	require.NoError(t, err)
	return intent
}

// CountRows возвращает число строк таблицы по условию.
func (f *TestDataFactory) CountRows(t *testing.T, table, where string, args ...any) int {
	t.Helper()
	var count int
	err := f.storage.DB.QueryRow(`SELECT COUNT(*) FROM `+table+` WHERE `+where, args...).Scan(&count)
	require.NoError(t, err)
	return count
}
