// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/pressroom-io/pressroom/internal/model"
)

// UserRepository provides account storage access.
type UserRepository interface {
	// Create inserts a new user and returns the generated id.
	Create(ctx context.Context, u *model.User) (int64, error)
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id int64) (*model.User, error)
	// GetByUsername loads a user by username.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// List returns all users ordered by id.
	List(ctx context.Context) ([]model.User, error)
	// Delete removes a user; owned posts go with it.
	Delete(ctx context.Context, id int64) error
}
