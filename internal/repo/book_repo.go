package repo

import (
	"context"
	"errors"

	"github.com/bookstore/backend/internal/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrBookNotFound is returned when a book is not found
	ErrBookNotFound = errors.New("book not found")

	// ErrBookExists is returned when trying to create a book whose title is taken
	ErrBookExists = errors.New("book already exists")
)

// BookRepository handles catalog operations, keyed by unique title
type BookRepository struct {
	db  *db.DB
	log *zap.Logger
}

// NewBookRepository creates a new catalog repository
func NewBookRepository(database *db.DB, logger *zap.Logger) *BookRepository {
	return &BookRepository{
		db:  database,
		log: logger,
	}
}

// BookPatch enumerates the mutable book fields. Nil fields are left untouched.
type BookPatch struct {
	Title   *string  `json:"title"`
	Author  *string  `json:"author"`
	Price   *float64 `json:"price"`
	InStock *bool    `json:"inStock"`
}

// List returns all books in the catalog
func (r *BookRepository) List(ctx context.Context) ([]*db.Book, error) {
	var books []*db.Book
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&books).Error; err != nil {
		r.log.Error("Failed to list books", zap.Error(err))
		return nil, err
	}
	return books, nil
}

// GetByTitle retrieves a book by its title
func (r *BookRepository) GetByTitle(ctx context.Context, title string) (*db.Book, error) {
	var book db.Book
	err := r.db.WithContext(ctx).Where("title = ?", title).First(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		r.log.Error("Failed to get book", zap.String("title", title), zap.Error(err))
		return nil, err
	}
	return &book, nil
}

// Create adds a new book to the catalog
func (r *BookRepository) Create(ctx context.Context, book *db.Book) error {
	// Check if a book with this title already exists
	var existing db.Book
	err := r.db.WithContext(ctx).Where("title = ?", book.Title).First(&existing).Error
	if err == nil {
		return ErrBookExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		r.log.Error("Failed to check book existence", zap.String("title", book.Title), zap.Error(err))
		return err
	}

	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		r.log.Error("Failed to create book", zap.String("title", book.Title), zap.Error(err))
		return err
	}

	r.log.Info("Book created", zap.String("id", book.ID), zap.String("title", book.Title))
	return nil
}

// UpdateByTitle applies the non-nil patch fields to the book with the given
// title and returns the updated record
func (r *BookRepository) UpdateByTitle(ctx context.Context, title string, patch BookPatch) (*db.Book, error) {
	updates := make(map[string]interface{})
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Author != nil {
		updates["author"] = *patch.Author
	}
	if patch.Price != nil {
		updates["price"] = *patch.Price
	}
	if patch.InStock != nil {
		updates["in_stock"] = *patch.InStock
	}
	if len(updates) == 0 {
		return r.GetByTitle(ctx, title)
	}

	result := r.db.WithContext(ctx).Model(&db.Book{}).Where("title = ?", title).Updates(updates)
	if result.Error != nil {
		r.log.Error("Failed to update book", zap.String("title", title), zap.Error(result.Error))
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrBookNotFound
	}

	// Re-read under the possibly renamed title
	lookup := title
	if patch.Title != nil {
		lookup = *patch.Title
	}
	book, err := r.GetByTitle(ctx, lookup)
	if err != nil {
		return nil, err
	}

	r.log.Info("Book updated", zap.String("title", lookup))
	return book, nil
}

// DeleteByTitle removes the book with the given title
func (r *BookRepository) DeleteByTitle(ctx context.Context, title string) error {
	result := r.db.WithContext(ctx).Where("title = ?", title).Delete(&db.Book{})
	if result.Error != nil {
		r.log.Error("Failed to delete book", zap.String("title", title), zap.Error(result.Error))
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}

	r.log.Info("Book deleted", zap.String("title", title))
	return nil
}
