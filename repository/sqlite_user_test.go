package repository

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/rtctoken/database"
	"github.com/akinalp/rtctoken/models"
	"github.com/akinalp/rtctoken/pkg"
)

func newTestRepo(t *testing.T) UserRepository {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewSQLiteUserRepo(db.Conn)
}

func newUser(id, email string, createdAt time.Time) *models.User {
	return &models.User{
		ID:           id,
		Name:         "User " + id,
		Email:        email,
		PasswordHash: "$2a$04$hash-" + id,
		CreatedAt:    createdAt,
	}
}

func TestSQLiteUserRepo_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.Create(ctx, newUser("u1", "a@example.com", now)))

	byEmail, err := repo.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.ID)
	assert.Equal(t, "$2a$04$hash-u1", byEmail.PasswordHash)
	assert.Equal(t, "User u1", byEmail.Name)
	assert.True(t, now.Equal(byEmail.CreatedAt.UTC()))
}

func TestSQLiteUserRepo_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.GetByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestSQLiteUserRepo_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	now := time.Now()
	require.NoError(t, repo.Create(ctx, newUser("u1", "a@example.com", now)))

	err := repo.Create(ctx, newUser("u2", "a@example.com", now))
	assert.ErrorIs(t, err, pkg.ErrAlreadyExists)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestSQLiteUserRepo_EmailMatchIsExact(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.Create(ctx, newUser("u1", "Case@Example.com", time.Now())))

	_, err := repo.GetByEmail(ctx, "case@example.com")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestSQLiteUserRepo_ListOrdered(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	base := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.Create(ctx, newUser("u2", "b@example.com", base.Add(time.Second))))
	require.NoError(t, repo.Create(ctx, newUser("u1", "a@example.com", base)))

	users, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u1", users[0].ID)
	assert.Equal(t, "u2", users[1].ID)
}
