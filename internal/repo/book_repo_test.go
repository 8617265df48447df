package repo

import (
	"context"
	"testing"

	"github.com/bookstore/backend/internal/db"
	"github.com/bookstore/backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *db.DB {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	database := &db.DB{DB: gormDB}
	require.NoError(t, db.RunMigrations(database))

	return database
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func boolPtr(b bool) *bool { return &b }

func TestBookRoundTrip(t *testing.T) {
	database := setupTestDB(t)
	books := NewBookRepository(database, logger.NewLogger("test", "error"))
	ctx := context.Background()

	book := &db.Book{Title: "T", Author: "A", Price: 10, InStock: true}
	require.NoError(t, books.Create(ctx, book))
	assert.NotEmpty(t, book.ID)

	got, err := books.GetByTitle(ctx, "T")
	require.NoError(t, err)
	assert.Equal(t, "T", got.Title)
	assert.Equal(t, "A", got.Author)
	assert.Equal(t, 10.0, got.Price)

	updated, err := books.UpdateByTitle(ctx, "T", BookPatch{Price: floatPtr(20)})
	require.NoError(t, err)
	assert.Equal(t, 20.0, updated.Price)
	assert.Equal(t, "A", updated.Author)

	got, err = books.GetByTitle(ctx, "T")
	require.NoError(t, err)
	assert.Equal(t, 20.0, got.Price)

	require.NoError(t, books.DeleteByTitle(ctx, "T"))

	_, err = books.GetByTitle(ctx, "T")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestBookDuplicateTitle(t *testing.T) {
	database := setupTestDB(t)
	books := NewBookRepository(database, logger.NewLogger("test", "error"))
	ctx := context.Background()

	require.NoError(t, books.Create(ctx, &db.Book{Title: "T", Author: "A", Price: 10}))

	err := books.Create(ctx, &db.Book{Title: "T", Author: "B", Price: 12})
	assert.ErrorIs(t, err, ErrBookExists)
}

func TestBookUpdateRename(t *testing.T) {
	database := setupTestDB(t)
	books := NewBookRepository(database, logger.NewLogger("test", "error"))
	ctx := context.Background()

	require.NoError(t, books.Create(ctx, &db.Book{Title: "Old", Author: "A", Price: 10}))

	updated, err := books.UpdateByTitle(ctx, "Old", BookPatch{Title: strPtr("New"), InStock: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.False(t, updated.InStock)

	_, err = books.GetByTitle(ctx, "Old")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestBookUpdateMissing(t *testing.T) {
	database := setupTestDB(t)
	books := NewBookRepository(database, logger.NewLogger("test", "error"))

	_, err := books.UpdateByTitle(context.Background(), "nope", BookPatch{Price: floatPtr(5)})
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestBookDeleteMissing(t *testing.T) {
	database := setupTestDB(t)
	books := NewBookRepository(database, logger.NewLogger("test", "error"))

	err := books.DeleteByTitle(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestBookList(t *testing.T) {
	database := setupTestDB(t)
	books := NewBookRepository(database, logger.NewLogger("test", "error"))
	ctx := context.Background()

	require.NoError(t, books.Create(ctx, &db.Book{Title: "One", Author: "A", Price: 1}))
	require.NoError(t, books.Create(ctx, &db.Book{Title: "Two", Author: "B", Price: 2}))

	all, err := books.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
