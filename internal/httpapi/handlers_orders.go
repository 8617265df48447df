package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/bookstore/backend/internal/repo"
	"github.com/go-chi/chi/v5"
)

type createOrderRequest struct {
	ItemList      []repo.ItemRequest `json:"itemList"`
	Address       string             `json:"address"`
	PaymentMethod string             `json:"paymentMethod"`
}

// CreateOrder resolves the requested items against the catalog and persists
// an order snapshot for the authenticated principal
func (s *Server) CreateOrder(w http.ResponseWriter, r *http.Request) {
	principal := principalFrom(r.Context())
	if principal == nil {
		respondError(w, http.StatusBadRequest, "User not found")
		return
	}

	var req createOrderRequest
	if err := decodeStrict(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Address == "" || req.PaymentMethod == "" {
		respondError(w, http.StatusBadRequest, "Address and payment method are required")
		return
	}

	order, err := s.orders.Create(r.Context(), principal.ID, req.ItemList, req.Address, req.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrBookRefNotFound):
			respondError(w, http.StatusNotFound, "Book not found")
		case errors.Is(err, repo.ErrEmptyOrder), errors.Is(err, repo.ErrInvalidQuantity):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusBadRequest, "Failed to create order")
		}
		return
	}

	s.publishAsync(func(ctx context.Context) error {
		return s.publisher.PublishOrderCreated(ctx, order.ID, order.UserID, order.TotalAmount, len(order.Items))
	})

	respondCreated(w, "Order created successfully", order)
}

// ListAllOrders returns every order irrespective of owner. Admin only.
func (s *Server) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.orders.ListAll(r.Context())
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to fetch orders")
		return
	}
	respondOK(w, "Orders fetched successfully", orders)
}

// ListUserOrders returns the orders owned by the authenticated principal
func (s *Server) ListUserOrders(w http.ResponseWriter, r *http.Request) {
	principal := principalFrom(r.Context())
	if principal == nil {
		respondError(w, http.StatusBadRequest, "User not found")
		return
	}

	orders, err := s.orders.ListByUser(r.Context(), principal.ID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to fetch orders")
		return
	}
	respondOK(w, "User orders fetched successfully", orders)
}

// GetOrder fetches a single order. Only its owner may read it; being an
// admin grants no override here.
func (s *Server) GetOrder(w http.ResponseWriter, r *http.Request) {
	principal := principalFrom(r.Context())
	if principal == nil {
		respondError(w, http.StatusBadRequest, "User not found")
		return
	}

	order, err := s.orders.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repo.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "Order not found")
			return
		}
		respondError(w, http.StatusBadRequest, "Failed to fetch order")
		return
	}

	if order.UserID != principal.ID {
		respondError(w, http.StatusForbidden, "Not authorized")
		return
	}

	respondOK(w, "Order fetched successfully", order)
}

// UpdateOrder overwrites an order's status fields. Admin only.
func (s *Server) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	var patch repo.OrderPatch
	if err := decodeStrict(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.orders.Update(r.Context(), id, patch); err != nil {
		if errors.Is(err, repo.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "Order not found")
			return
		}
		respondError(w, http.StatusBadRequest, "Failed to update order")
		return
	}

	s.publishAsync(func(ctx context.Context) error {
		return s.publisher.PublishOrderUpdated(ctx, id, patch.Status, patch.PaymentStatus)
	})

	respondOK(w, "Order updated successfully", nil)
}

// DeleteOrder removes an order. The admin requirement is enforced here as
// well as at the route so that it cannot be lost to middleware rewiring.
func (s *Server) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	principal := principalFrom(r.Context())
	if principal == nil {
		respondError(w, http.StatusBadRequest, "User not found")
		return
	}
	if !principal.IsAdmin {
		respondError(w, http.StatusForbidden, "Admin access required")
		return
	}

	if err := s.orders.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, repo.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "Order not found")
			return
		}
		respondError(w, http.StatusBadRequest, "Failed to delete order")
		return
	}

	respondOK(w, "Order deleted successfully", nil)
}
