package httpapi

import (
	"net/http"

	"github.com/bookstore/backend/internal/auth"
	"github.com/bookstore/backend/internal/db"
	"github.com/bookstore/backend/internal/events"
	"github.com/bookstore/backend/internal/repo"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server bundles the repositories and services behind the HTTP handlers
type Server struct {
	users     *repo.UserRepository
	books     *repo.BookRepository
	orders    *repo.OrderRepository
	hasher    *auth.Hasher
	tokens    *auth.Tokens
	publisher events.EventPublisher
	database  *db.DB
	log       *zap.Logger
}

// NewServer creates the HTTP server facade
func NewServer(
	users *repo.UserRepository,
	books *repo.BookRepository,
	orders *repo.OrderRepository,
	hasher *auth.Hasher,
	tokens *auth.Tokens,
	publisher events.EventPublisher,
	database *db.DB,
	log *zap.Logger,
) *Server {
	return &Server{
		users:     users,
		books:     books,
		orders:    orders,
		hasher:    hasher,
		tokens:    tokens,
		publisher: publisher,
		database:  database,
		log:       log,
	}
}

// Routes builds the chi router with all middleware and endpoints
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	r.Use(RequestLogger(s.log))
	r.Use(Metrics)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/healthz", s.Healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/books", func(r chi.Router) {
		r.Get("/", s.ListBooks)
		r.Get("/{title}", s.GetBook)

		r.Group(func(r chi.Router) {
			r.Use(s.RequireAuth, s.RequireAdmin)
			r.Put("/", s.CreateBook)
			r.Patch("/{title}", s.UpdateBook)
			r.Delete("/{title}", s.DeleteBook)
		})
	})

	r.Route("/user", func(r chi.Router) {
		r.Post("/signup", s.Signup)
		r.Post("/signin", s.Signin)

		r.Group(func(r chi.Router) {
			r.Use(s.RequireAuth)
			r.Get("/", s.ListUsers)
			r.Get("/{id}", s.GetUser)
			r.Patch("/{id}", s.UpdateUser)
			r.Delete("/{id}", s.DeleteUser)
		})
	})

	r.Route("/order", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.RequireAuth)
			r.Post("/", s.CreateOrder)
			r.Get("/user/order", s.ListUserOrders)
			r.Get("/{id}", s.GetOrder)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.RequireAuth, s.RequireAdmin)
			r.Get("/", s.ListAllOrders)
			r.Patch("/{id}", s.UpdateOrder)
			r.Delete("/{id}", s.DeleteOrder)
		})
	})

	return r
}

// Healthz reports whether the store and the event broker are reachable
func (s *Server) Healthz(w http.ResponseWriter, _ *http.Request) {
	if err := s.database.Ping(); err != nil {
		s.log.Error("Database health check failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("unhealthy: database connection failed"))
		return
	}
	if !s.publisher.IsHealthy() {
		s.log.Error("Event publisher health check failed")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("unhealthy: event broker connection failed"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("healthy"))
}
