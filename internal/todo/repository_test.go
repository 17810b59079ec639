package todo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/go-todo-auth/internal/config"
	"github.com/redmonkez12/go-todo-auth/internal/database/dbtest"
)

// newTestRepository returns a repository whose clock advances one second per
// call so created_at ordering is deterministic.
func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	repo := NewRepository(dbtest.New(t, config.ServiceTodos))
	clock := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return repo
}

func ptr[T any](v T) *T { return &v }

func TestRepository_CreateAndList(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	owner := uuid.New()

	first, err := repo.Create(ctx, owner, "buy milk")
	require.NoError(t, err)
	assert.Equal(t, owner, first.OwnerID)
	assert.False(t, first.Completed)
	assert.Equal(t, first.CreatedAt, first.UpdatedAt)

	second, err := repo.Create(ctx, owner, "walk dog")
	require.NoError(t, err)

	_, err = repo.Create(ctx, uuid.New(), "someone else's")
	require.NoError(t, err)

	todos, err := repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, todos, 2)
	assert.Equal(t, first.ID, todos[0].ID)
	assert.Equal(t, second.ID, todos[1].ID)
	assert.Equal(t, "buy milk", todos[0].Content)
}

func TestRepository_ListEmptyIsNotNil(t *testing.T) {
	repo := newTestRepository(t)

	todos, err := repo.ListByOwner(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, todos)
	assert.Empty(t, todos)
}

func TestRepository_UpdatePartial(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	owner := uuid.New()

	created, err := repo.Create(ctx, owner, "draft")
	require.NoError(t, err)

	updated, err := repo.Update(ctx, created.ID, owner, UpdateInput{Completed: ptr(true)})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, "draft", updated.Content, "content untouched when not supplied")
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))

	updated, err = repo.Update(ctx, created.ID, owner, UpdateInput{Content: ptr("final")})
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Content)
	assert.True(t, updated.Completed, "completed untouched when not supplied")
}

func TestRepository_OwnershipIsEnforced(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	owner, intruder := uuid.New(), uuid.New()

	created, err := repo.Create(ctx, owner, "private")
	require.NoError(t, err)

	_, err = repo.Update(ctx, created.ID, intruder, UpdateInput{Content: ptr("hijacked")})
	assert.ErrorIs(t, err, ErrNotFound)

	err = repo.Delete(ctx, created.ID, intruder)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.GetByIDAndOwner(ctx, created.ID, intruder)
	assert.ErrorIs(t, err, ErrNotFound)

	stored, err := repo.GetByIDAndOwner(ctx, created.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "private", stored.Content)
	assert.False(t, stored.Completed)
}

func TestRepository_Delete(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	owner := uuid.New()

	created, err := repo.Create(ctx, owner, "temporary")
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID, owner))

	err = repo.Delete(ctx, created.ID, owner)
	assert.ErrorIs(t, err, ErrNotFound)

	todos, err := repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, todos)
}

func TestRepository_UnknownID(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Update(ctx, uuid.New(), uuid.New(), UpdateInput{Completed: ptr(true)})
	assert.ErrorIs(t, err, ErrNotFound)
}
