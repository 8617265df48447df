package repo

import (
	"context"
	"errors"

	"github.com/bookstore/backend/internal/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when signing up with an email that already exists
	ErrEmailTaken = errors.New("user already exists")
)

// UserRepository handles user account operations
type UserRepository struct {
	db  *db.DB
	log *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(database *db.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:  database,
		log: logger,
	}
}

// UserPatch enumerates the mutable user fields. Nil fields are left
// untouched. Password must already be hashed by the caller.
type UserPatch struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Password *string `json:"password"`
}

// Create stores a new user after checking the email is not taken
func (r *UserRepository) Create(ctx context.Context, user *db.User) error {
	var existing db.User
	err := r.db.WithContext(ctx).Where("email = ?", user.Email).First(&existing).Error
	if err == nil {
		return ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		r.log.Error("Failed to check user existence", zap.String("email", user.Email), zap.Error(err))
		return err
	}

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		r.log.Error("Failed to create user", zap.String("email", user.Email), zap.Error(err))
		return err
	}

	r.log.Info("User created", zap.String("id", user.ID), zap.String("email", user.Email))
	return nil
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id string) (*db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		r.log.Error("Failed to get user", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		r.log.Error("Failed to get user by email", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	return &user, nil
}

// List returns all users
func (r *UserRepository) List(ctx context.Context) ([]*db.User, error) {
	var users []*db.User
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		r.log.Error("Failed to list users", zap.Error(err))
		return nil, err
	}
	return users, nil
}

// Update applies the non-nil patch fields to the stored user
func (r *UserRepository) Update(ctx context.Context, id string, patch UserPatch) error {
	updates := make(map[string]interface{})
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Email != nil {
		updates["email"] = *patch.Email
	}
	if patch.Phone != nil {
		updates["phone"] = *patch.Phone
	}
	if patch.Password != nil {
		updates["password"] = *patch.Password
	}
	if len(updates) == 0 {
		// Nothing to change, but the user must still exist
		_, err := r.GetByID(ctx, id)
		return err
	}

	result := r.db.WithContext(ctx).Model(&db.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		r.log.Error("Failed to update user", zap.String("id", id), zap.Error(result.Error))
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	r.log.Info("User updated", zap.String("id", id))
	return nil
}

// Delete removes a user by id
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&db.User{})
	if result.Error != nil {
		r.log.Error("Failed to delete user", zap.String("id", id), zap.Error(result.Error))
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	r.log.Info("User deleted", zap.String("id", id))
	return nil
}
