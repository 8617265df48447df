package repo

import (
	"context"
	"testing"

	"github.com/bookstore/backend/internal/db"
	"github.com/bookstore/backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserUniqueEmail(t *testing.T) {
	database := setupTestDB(t)
	users := NewUserRepository(database, logger.NewLogger("test", "error"))
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &db.User{Name: "Ann", Email: "ann@example.com", Password: "hash"}))

	err := users.Create(ctx, &db.User{Name: "Other Ann", Email: "ann@example.com", Password: "hash"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	all, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUserGetByEmail(t *testing.T) {
	database := setupTestDB(t)
	users := NewUserRepository(database, logger.NewLogger("test", "error"))
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &db.User{Name: "Ann", Email: "ann@example.com", Password: "hash"}))

	got, err := users.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.Name)

	_, err = users.GetByEmail(ctx, "bob@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserUpdatePatch(t *testing.T) {
	database := setupTestDB(t)
	users := NewUserRepository(database, logger.NewLogger("test", "error"))
	ctx := context.Background()

	user := &db.User{Name: "Ann", Email: "ann@example.com", Password: "hash", Phone: "111"}
	require.NoError(t, users.Create(ctx, user))

	require.NoError(t, users.Update(ctx, user.ID, UserPatch{Phone: strPtr("222")}))

	got, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "222", got.Phone)
	assert.Equal(t, "Ann", got.Name)
	assert.Equal(t, "hash", got.Password)
}

func TestUserUpdateMissing(t *testing.T) {
	database := setupTestDB(t)
	users := NewUserRepository(database, logger.NewLogger("test", "error"))

	err := users.Update(context.Background(), "nope", UserPatch{Phone: strPtr("222")})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserDelete(t *testing.T) {
	database := setupTestDB(t)
	users := NewUserRepository(database, logger.NewLogger("test", "error"))
	ctx := context.Background()

	user := &db.User{Name: "Ann", Email: "ann@example.com", Password: "hash"}
	require.NoError(t, users.Create(ctx, user))

	require.NoError(t, users.Delete(ctx, user.ID))

	_, err := users.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	err = users.Delete(ctx, user.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
