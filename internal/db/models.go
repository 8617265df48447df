package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a registered account. The password column holds a bcrypt
// hash and is never serialized to clients.
type User struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Email     string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_users_email" json:"email"`
	Password  string    `gorm:"type:varchar(255);not null" json:"-"`
	Phone     string    `gorm:"type:varchar(50)" json:"phone"`
	IsAdmin   bool      `gorm:"not null;default:false" json:"isAdmin"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// BeforeCreate hook to assign an id and set timestamps
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}
	return nil
}

// BeforeUpdate hook to update timestamp
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

// Book represents a catalog entry, uniquely identified by title for all
// public lookups.
type Book struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title     string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_books_title" json:"title"`
	Author    string    `gorm:"type:varchar(255);not null;index:idx_books_author" json:"author"`
	Price     float64   `gorm:"not null" json:"price"`
	InStock   bool      `gorm:"not null;default:true" json:"inStock"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName specifies the table name for Book model
func (Book) TableName() string {
	return "books"
}

// BeforeCreate hook to assign an id and set timestamps
func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	now := time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = now
	}
	return nil
}

// BeforeUpdate hook to update timestamp
func (b *Book) BeforeUpdate(tx *gorm.DB) error {
	b.UpdatedAt = time.Now()
	return nil
}

// Order is a snapshot of a purchase. Items and TotalAmount are fixed at
// creation; only Status and PaymentStatus change afterwards.
type Order struct {
	ID            string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID        string      `gorm:"type:varchar(36);not null;index:idx_orders_user" json:"userId"`
	Items         []OrderItem `gorm:"foreignKey:OrderID" json:"books"`
	Address       string      `gorm:"type:text;not null" json:"address"`
	PaymentMethod string      `gorm:"type:varchar(100);not null" json:"paymentMethod"`
	TotalAmount   float64     `gorm:"not null" json:"totalAmount"`
	Status        string      `gorm:"type:varchar(50);not null;default:'Pending'" json:"status"`
	PaymentStatus string      `gorm:"type:varchar(50);not null;default:'Pending'" json:"paymentStatus"`
	CreatedAt     time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_orders_created_at" json:"createdAt"`
	UpdatedAt     time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName specifies the table name for Order model
func (Order) TableName() string {
	return "orders"
}

// BeforeCreate hook to assign an id and set timestamps
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	now := time.Now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = now
	}
	return nil
}

// BeforeUpdate hook to update timestamp
func (o *Order) BeforeUpdate(tx *gorm.DB) error {
	o.UpdatedAt = time.Now()
	return nil
}

// OrderItem is one line of an order. Price is the catalog unit price captured
// when the order was created, not a live reference.
type OrderItem struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OrderID   string    `gorm:"type:varchar(36);not null;index:idx_order_items_order" json:"-"`
	BookID    string    `gorm:"type:varchar(36);not null" json:"bookId"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Price     float64   `gorm:"not null" json:"price"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName specifies the table name for OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// BeforeCreate hook to assign an id
func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	if i.CreatedAt.IsZero() {
		i.CreatedAt = time.Now()
	}
	return nil
}
