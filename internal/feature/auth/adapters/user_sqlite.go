// Package adapters provides the repository implementations for the auth feature.
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/k1300k/smart-stocks/internal/feature/auth/domain/entity"
	"github.com/k1300k/smart-stocks/internal/feature/auth/usecase"
)

// userSQLite is the sqlite implementation of the UserRepository interface,
// backed by GORM.
type userSQLite struct {
	db *gorm.DB
}

// Compile-time check that userSQLite implements UserRepository.
var _ usecase.UserRepository = (*userSQLite)(nil)

// NewUserSQLite creates a new userSQLite instance with the given gorm.DB handle.
func NewUserSQLite(db *gorm.DB) *userSQLite {
	return &userSQLite{db: db}
}

// Create inserts the user into the database.
// Returns usecase.ErrEmailAlreadyExists when the email is already taken.
func (r *userSQLite) Create(ctx context.Context, u *entity.User) error {
	// The sqlite driver does not translate unique-constraint violations into
	// a typed error, so the duplicate check runs up front. Single-writer
	// local database, so the window between check and insert is acceptable.
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.User{}).
		Where("email = ?", u.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return usecase.ErrEmailAlreadyExists
	}
	return r.db.WithContext(ctx).Create(u).Error
}

// FindByEmail fetches a user by email address.
// Returns usecase.ErrUserNotFound when no user exists.
func (r *userSQLite) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByID fetches a user by ID.
// Returns usecase.ErrUserNotFound when no user exists.
func (r *userSQLite) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
