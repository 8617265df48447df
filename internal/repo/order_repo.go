package repo

import (
	"context"
	"errors"

	"github.com/bookstore/backend/internal/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrOrderNotFound is returned when an order is not found
	ErrOrderNotFound = errors.New("order not found")

	// ErrBookRefNotFound is returned when an order references an unknown book id
	ErrBookRefNotFound = errors.New("book not found")

	// ErrEmptyOrder is returned when an order request contains no items
	ErrEmptyOrder = errors.New("order contains no items")

	// ErrInvalidQuantity is returned when a line item quantity is below one
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// ItemRequest is one requested line of a new order
type ItemRequest struct {
	BookID   string `json:"bookId"`
	Quantity int    `json:"quantity"`
}

// OrderPatch enumerates the mutable order fields. Nil fields are left untouched.
type OrderPatch struct {
	Status        *string `json:"status"`
	PaymentStatus *string `json:"paymentStatus"`
}

// OrderRepository handles order aggregation and lifecycle operations
type OrderRepository struct {
	db  *db.DB
	log *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(database *db.DB, logger *zap.Logger) *OrderRepository {
	return &OrderRepository{
		db:  database,
		log: logger,
	}
}

// Create resolves the requested items against the catalog, locks each unit
// price as read at this instant, computes the total and persists the order
// with its items in one transaction. If any book id is unknown the whole
// order is aborted and nothing is written. A catalog price change between
// the lookup and the commit is not re-validated.
func (r *OrderRepository) Create(ctx context.Context, userID string, items []ItemRequest, address, paymentMethod string) (*db.Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
	}

	// Distinct requested ids, single batch lookup
	seen := make(map[string]struct{}, len(items))
	bookIDs := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.BookID]; ok {
			continue
		}
		seen[item.BookID] = struct{}{}
		bookIDs = append(bookIDs, item.BookID)
	}

	var books []*db.Book
	if err := r.db.WithContext(ctx).Where("id IN ?", bookIDs).Find(&books).Error; err != nil {
		r.log.Error("Failed to resolve order books", zap.Error(err))
		return nil, err
	}

	byID := make(map[string]*db.Book, len(books))
	for _, book := range books {
		byID[book.ID] = book
	}

	orderItems := make([]db.OrderItem, 0, len(items))
	var total float64
	for _, item := range items {
		book, ok := byID[item.BookID]
		if !ok {
			return nil, ErrBookRefNotFound
		}
		orderItems = append(orderItems, db.OrderItem{
			BookID:   book.ID,
			Quantity: item.Quantity,
			Price:    book.Price,
		})
		total += book.Price * float64(item.Quantity)
	}

	order := &db.Order{
		UserID:        userID,
		Items:         orderItems,
		Address:       address,
		PaymentMethod: paymentMethod,
		TotalAmount:   total,
		Status:        "Pending",
		PaymentStatus: "Pending",
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
	if err != nil {
		r.log.Error("Failed to create order", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	r.log.Info("Order created",
		zap.String("id", order.ID),
		zap.String("user_id", userID),
		zap.Int("items", len(orderItems)),
		zap.Float64("total", total),
	)
	return order, nil
}

// GetByID retrieves an order with its items
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*db.Order, error) {
	var order db.Order
	err := r.db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		r.log.Error("Failed to get order", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return &order, nil
}

// ListAll returns every order irrespective of owner
func (r *OrderRepository) ListAll(ctx context.Context) ([]*db.Order, error) {
	var orders []*db.Order
	if err := r.db.WithContext(ctx).Preload("Items").Order("created_at DESC").Find(&orders).Error; err != nil {
		r.log.Error("Failed to list orders", zap.Error(err))
		return nil, err
	}
	return orders, nil
}

// ListByUser returns the orders owned by the given user
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]*db.Order, error) {
	var orders []*db.Order
	err := r.db.WithContext(ctx).Preload("Items").Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error
	if err != nil {
		r.log.Error("Failed to list user orders", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return orders, nil
}

// Update overwrites the status fields provided in the patch. The item list
// and total are never touched here.
func (r *OrderRepository) Update(ctx context.Context, id string, patch OrderPatch) error {
	updates := make(map[string]interface{})
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}
	if patch.PaymentStatus != nil {
		updates["payment_status"] = *patch.PaymentStatus
	}
	if len(updates) == 0 {
		_, err := r.GetByID(ctx, id)
		return err
	}

	result := r.db.WithContext(ctx).Model(&db.Order{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		r.log.Error("Failed to update order", zap.String("id", id), zap.Error(result.Error))
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}

	r.log.Info("Order updated", zap.String("id", id))
	return nil
}

// Delete removes an order and its items
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&db.Order{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrOrderNotFound
		}
		return tx.Where("order_id = ?", id).Delete(&db.OrderItem{}).Error
	})
	if err != nil {
		if !errors.Is(err, ErrOrderNotFound) {
			r.log.Error("Failed to delete order", zap.String("id", id), zap.Error(err))
		}
		return err
	}

	r.log.Info("Order deleted", zap.String("id", id))
	return nil
}
