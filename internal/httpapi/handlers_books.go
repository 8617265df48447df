package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bookstore/backend/internal/db"
	"github.com/bookstore/backend/internal/repo"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type createBookRequest struct {
	Title   string  `json:"title"`
	Author  string  `json:"author"`
	Price   float64 `json:"price"`
	InStock *bool   `json:"inStock"`
}

// ListBooks returns the whole catalog
func (s *Server) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.books.List(r.Context())
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to fetch books")
		return
	}
	respondOK(w, "All the books fetched successfully", books)
}

// GetBook fetches a single book by title
func (s *Server) GetBook(w http.ResponseWriter, r *http.Request) {
	book, err := s.books.GetByTitle(r.Context(), chi.URLParam(r, "title"))
	if err != nil {
		if errors.Is(err, repo.ErrBookNotFound) {
			respondError(w, http.StatusNotFound, "Book not found")
			return
		}
		respondError(w, http.StatusBadRequest, "Failed to fetch book")
		return
	}
	respondOK(w, "Book fetched successfully", book)
}

// CreateBook adds a new catalog entry
func (s *Server) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req createBookRequest
	if err := decodeStrict(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == "" || req.Author == "" {
		respondError(w, http.StatusBadRequest, "Title and author are required")
		return
	}
	if req.Price <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid price value")
		return
	}

	book := &db.Book{
		Title:   req.Title,
		Author:  req.Author,
		Price:   req.Price,
		InStock: true,
	}
	if req.InStock != nil {
		book.InStock = *req.InStock
	}

	if err := s.books.Create(r.Context(), book); err != nil {
		if errors.Is(err, repo.ErrBookExists) {
			respondError(w, http.StatusBadRequest, "Book already exists")
			return
		}
		respondError(w, http.StatusBadRequest, "Failed to create book")
		return
	}

	s.publishAsync(func(ctx context.Context) error {
		return s.publisher.PublishBookCreated(ctx, book.ID, book.Title, book.Author, book.Price, book.InStock)
	})

	respondCreated(w, "New book created successfully", book)
}

// UpdateBook patches a book's fields, keyed by its current title
func (s *Server) UpdateBook(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")

	var patch repo.BookPatch
	if err := decodeStrict(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if patch.Price != nil && *patch.Price <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid price value")
		return
	}

	book, err := s.books.UpdateByTitle(r.Context(), title, patch)
	if err != nil {
		if errors.Is(err, repo.ErrBookNotFound) {
			respondError(w, http.StatusNotFound, "Book not found")
			return
		}
		respondError(w, http.StatusBadRequest, "Failed to update book")
		return
	}

	s.publishAsync(func(ctx context.Context) error {
		return s.publisher.PublishBookUpdated(ctx, book.Title, map[string]interface{}{
			"price":    book.Price,
			"in_stock": book.InStock,
		})
	})

	respondOK(w, "Book updated successfully", book)
}

// DeleteBook removes a book by title
func (s *Server) DeleteBook(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")

	if err := s.books.DeleteByTitle(r.Context(), title); err != nil {
		if errors.Is(err, repo.ErrBookNotFound) {
			respondError(w, http.StatusNotFound, "Book not found")
			return
		}
		respondError(w, http.StatusBadRequest, "Failed to delete book")
		return
	}

	s.publishAsync(func(ctx context.Context) error {
		return s.publisher.PublishBookDeleted(ctx, title)
	})

	respondOK(w, "Book deleted successfully", nil)
}

// publishAsync fires an event without blocking or failing the request
func (s *Server) publishAsync(publish func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := publish(ctx); err != nil {
			s.log.Error("Failed to publish event", zap.Error(err))
		}
	}()
}
