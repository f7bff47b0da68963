package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guitarworks/api/internal/database"
	"guitarworks/api/internal/repository"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	_ = godotenv.Load("../../.env.test")

	dsn := os.Getenv("GUITARWORKS_TEST_DSN")
	if dsn == "" {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect test database: %v\n", err)
		os.Exit(1)
	}
	if err := database.Migrate(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "migrate test database: %v\n", err)
		os.Exit(1)
	}
	testPool = pool

	code := m.Run()
	pool.Close()
	os.Exit(code)
}

func requireDB(t *testing.T) {
	t.Helper()
	if testPool == nil {
		t.Skip("skipping integration test (requires GUITARWORKS_TEST_DSN)")
	}
}

func uniqueUsername() string {
	return "it" + uuid.NewString()[:8]
}

func createUser(t *testing.T, users *repository.UserRepository) int64 {
	t.Helper()
	user, err := users.Create(context.Background(), uniqueUsername(), []byte("$2a$10$hash"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = users.Delete(context.Background(), user.ID) })
	return user.ID
}

func TestUserRepository(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	users := repository.NewUserRepository(testPool)

	username := uniqueUsername()
	created, err := users.Create(ctx, username, []byte("$2a$10$hash"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = users.Delete(ctx, created.ID) })
	assert.Positive(t, created.ID)
	assert.Equal(t, []byte("$2a$10$hash"), created.PasswordHash)

	_, err = users.Create(ctx, username, []byte("other"))
	assert.ErrorIs(t, err, repository.ErrUsernameTaken)

	found, err := users.FindByUsername(ctx, username)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = users.FindByUsername(ctx, uniqueUsername())
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	list, err := users.List(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, list)
}

func TestDeletingUserCascadesToSessions(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	users := repository.NewUserRepository(testPool)
	sessions := repository.NewSessionRepository(testPool)

	userID := createUser(t, users)
	token := uuid.NewString()
	_, err := sessions.Create(ctx, token, userID)
	require.NoError(t, err)

	require.NoError(t, users.Delete(ctx, userID))
	assert.ErrorIs(t, users.Delete(ctx, userID), repository.ErrUserNotFound)

	_, err = sessions.FindWithUser(ctx, token)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestSessionRepository(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	users := repository.NewUserRepository(testPool)
	sessions := repository.NewSessionRepository(testPool)

	userID := createUser(t, users)
	token := uuid.NewString()

	created, err := sessions.Create(ctx, token, userID)
	require.NoError(t, err)
	assert.Equal(t, token, created.ID)

	found, err := sessions.FindWithUser(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, found.User.ID)
	assert.Equal(t, userID, found.UserID)

	list, err := sessions.List(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, list)

	require.NoError(t, sessions.Delete(ctx, token))
	assert.ErrorIs(t, sessions.Delete(ctx, token), repository.ErrSessionNotFound)

	_, err = sessions.Create(ctx, uuid.NewString(), -1)
	assert.Error(t, err)
}

func TestDeleteOlderThan(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	users := repository.NewUserRepository(testPool)
	sessions := repository.NewSessionRepository(testPool)

	userID := createUser(t, users)
	token := uuid.NewString()
	_, err := sessions.Create(ctx, token, userID)
	require.NoError(t, err)

	removed, err := sessions.DeleteOlderThan(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = sessions.FindWithUser(ctx, token)
	require.NoError(t, err, "fresh session must survive a sweep with an older cutoff (removed %d)", removed)

	removed, err = sessions.DeleteOlderThan(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, removed, int64(1))
	_, err = sessions.FindWithUser(ctx, token)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}
