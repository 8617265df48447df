package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bookstore/backend/internal/db"
	"github.com/bookstore/backend/internal/repo"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	IsAdmin  bool   `json:"isAdmin"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userDetails struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

// Signup registers a new user
func (s *Server) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeStrict(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Name, email and password are required")
		return
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		respondError(w, http.StatusBadRequest, "Failed to sign up")
		return
	}

	user := &db.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
		Phone:    req.Phone,
		IsAdmin:  req.IsAdmin,
	}
	if err := s.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			respondError(w, http.StatusConflict, "User already exists")
			return
		}
		respondError(w, http.StatusBadRequest, "Failed to sign up")
		return
	}

	respondCreated(w, fmt.Sprintf("%s signed up successfully", user.Name), nil)
}

// Signin authenticates a user and returns a bearer token
func (s *Server) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := decodeStrict(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := s.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid email")
		return
	}
	if !s.hasher.Verify(req.Password, user.Password) {
		respondError(w, http.StatusBadRequest, "Invalid password")
		return
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.log.Error("Failed to issue token", zap.Error(err))
		respondError(w, http.StatusBadRequest, "Failed to sign in")
		return
	}

	respondOK(w, "User sign-in successful", map[string]interface{}{
		"token": token,
		"userDetails": userDetails{
			ID:      user.ID,
			Name:    user.Name,
			Email:   user.Email,
			IsAdmin: user.IsAdmin,
		},
	})
}

// GetUser fetches a single user by id
func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		respondError(w, http.StatusBadRequest, "Failed to fetch user")
		return
	}
	respondOK(w, "User fetched successfully", user)
}

// ListUsers returns all users, passwords excluded
func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to fetch users")
		return
	}
	respondOK(w, "All users fetched successfully", users)
}

// UpdateUser patches a user's mutable fields. Only the user themselves or an
// admin may do this.
func (s *Server) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	principal := principalFrom(r.Context())
	if principal == nil || (principal.ID != id && !principal.IsAdmin) {
		respondError(w, http.StatusForbidden, "Not authorized")
		return
	}

	var patch repo.UserPatch
	if err := decodeStrict(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Replacing the password stores a fresh hash, never the raw value
	if patch.Password != nil {
		hash, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			s.log.Error("Failed to hash password", zap.Error(err))
			respondError(w, http.StatusBadRequest, "Failed to update user")
			return
		}
		patch.Password = &hash
	}

	if err := s.users.Update(r.Context(), id, patch); err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		respondError(w, http.StatusBadRequest, "Failed to update user")
		return
	}

	respondOK(w, "User updated successfully", nil)
}

// DeleteUser removes a user. Only the user themselves or an admin may do this.
func (s *Server) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	principal := principalFrom(r.Context())
	if principal == nil || (principal.ID != id && !principal.IsAdmin) {
		respondError(w, http.StatusForbidden, "Not authorized")
		return
	}

	if err := s.users.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		respondError(w, http.StatusBadRequest, "Failed to delete user")
		return
	}

	respondOK(w, "User deleted successfully", nil)
}
