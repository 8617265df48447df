package repo

import (
	"context"
	"testing"

	"github.com/bookstore/backend/internal/db"
	"github.com/bookstore/backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCatalog(t *testing.T, database *db.DB) (*BookRepository, *db.Book, *db.Book) {
	t.Helper()
	books := NewBookRepository(database, logger.NewLogger("test", "error"))
	ctx := context.Background()

	first := &db.Book{Title: "First", Author: "A", Price: 10}
	second := &db.Book{Title: "Second", Author: "B", Price: 25.5}
	require.NoError(t, books.Create(ctx, first))
	require.NoError(t, books.Create(ctx, second))

	return books, first, second
}

func TestCreateOrderComputesTotal(t *testing.T) {
	database := setupTestDB(t)
	_, first, second := seedCatalog(t, database)
	orders := NewOrderRepository(database, logger.NewLogger("test", "error"))
	ctx := context.Background()

	order, err := orders.Create(ctx, "user-1", []ItemRequest{
		{BookID: first.ID, Quantity: 2},
		{BookID: second.ID, Quantity: 1},
	}, "42 Main St", "card")
	require.NoError(t, err)

	assert.Equal(t, "user-1", order.UserID)
	assert.Equal(t, "Pending", order.Status)
	assert.Equal(t, "Pending", order.PaymentStatus)
	assert.Equal(t, 2*10.0+25.5, order.TotalAmount)
	require.Len(t, order.Items, 2)
	assert.Equal(t, 10.0, order.Items[0].Price)
	assert.Equal(t, 25.5, order.Items[1].Price)
}

func TestOrderPriceLockedAtCreation(t *testing.T) {
	database := setupTestDB(t)
	books, first, _ := seedCatalog(t, database)
	orders := NewOrderRepository(database, logger.NewLogger("test", "error"))
	ctx := context.Background()

	order, err := orders.Create(ctx, "user-1", []ItemRequest{
		{BookID: first.ID, Quantity: 3},
	}, "42 Main St", "card")
	require.NoError(t, err)

	// Raise the catalog price after the order was placed
	_, err = books.UpdateByTitle(ctx, "First", BookPatch{Price: floatPtr(99)})
	require.NoError(t, err)

	got, err := orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 30.0, got.TotalAmount)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 10.0, got.Items[0].Price)
}

func TestCreateOrderUnknownBookAborts(t *testing.T) {
	database := setupTestDB(t)
	_, first, _ := seedCatalog(t, database)
	orders := NewOrderRepository(database, logger.NewLogger("test", "error"))
	ctx := context.Background()

	_, err := orders.Create(ctx, "user-1", []ItemRequest{
		{BookID: first.ID, Quantity: 1},
		{BookID: "no-such-book", Quantity: 1},
	}, "42 Main St", "card")
	assert.ErrorIs(t, err, ErrBookRefNotFound)

	// No partial order may exist
	var orderCount, itemCount int64
	require.NoError(t, database.Model(&db.Order{}).Count(&orderCount).Error)
	require.NoError(t, database.Model(&db.OrderItem{}).Count(&itemCount).Error)
	assert.Zero(t, orderCount)
	assert.Zero(t, itemCount)
}

func TestCreateOrderValidation(t *testing.T) {
	database := setupTestDB(t)
	_, first, _ := seedCatalog(t, database)
	orders := NewOrderRepository(database, logger.NewLogger("test", "error"))
	ctx := context.Background()

	_, err := orders.Create(ctx, "user-1", nil, "42 Main St", "card")
	assert.ErrorIs(t, err, ErrEmptyOrder)

	_, err = orders.Create(ctx, "user-1", []ItemRequest{
		{BookID: first.ID, Quantity: 0},
	}, "42 Main St", "card")
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestOrderLifecycle(t *testing.T) {
	database := setupTestDB(t)
	_, first, _ := seedCatalog(t, database)
	orders := NewOrderRepository(database, logger.NewLogger("test", "error"))
	ctx := context.Background()

	order, err := orders.Create(ctx, "user-1", []ItemRequest{
		{BookID: first.ID, Quantity: 1},
	}, "42 Main St", "card")
	require.NoError(t, err)

	// Patch only the status, payment status untouched
	require.NoError(t, orders.Update(ctx, order.ID, OrderPatch{Status: strPtr("Shipped")}))

	got, err := orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shipped", got.Status)
	assert.Equal(t, "Pending", got.PaymentStatus)

	// Items and total survive status updates
	assert.Equal(t, 10.0, got.TotalAmount)
	require.Len(t, got.Items, 1)

	require.NoError(t, orders.Delete(ctx, order.ID))

	_, err = orders.GetByID(ctx, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	var itemCount int64
	require.NoError(t, database.Model(&db.OrderItem{}).Count(&itemCount).Error)
	assert.Zero(t, itemCount)
}

func TestOrderUpdateMissing(t *testing.T) {
	database := setupTestDB(t)
	orders := NewOrderRepository(database, logger.NewLogger("test", "error"))

	err := orders.Update(context.Background(), "nope", OrderPatch{Status: strPtr("Shipped")})
	assert.ErrorIs(t, err, ErrOrderNotFound)

	err = orders.Delete(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestListOrdersByUser(t *testing.T) {
	database := setupTestDB(t)
	_, first, _ := seedCatalog(t, database)
	orders := NewOrderRepository(database, logger.NewLogger("test", "error"))
	ctx := context.Background()

	_, err := orders.Create(ctx, "user-1", []ItemRequest{{BookID: first.ID, Quantity: 1}}, "a", "card")
	require.NoError(t, err)
	_, err = orders.Create(ctx, "user-2", []ItemRequest{{BookID: first.ID, Quantity: 2}}, "b", "cash")
	require.NoError(t, err)

	mine, err := orders.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "user-1", mine[0].UserID)

	all, err := orders.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
