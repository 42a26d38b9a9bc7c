package repository

import (
	"context"

	"github.com/pressroom-io/pressroom/internal/model"
)

// PostRepository provides post storage access.
type PostRepository interface {
	// Create inserts a new post and returns the generated id.
	Create(ctx context.Context, p *model.Post) (int64, error)
	// GetByID loads a post by ID.
	GetByID(ctx context.Context, id int64) (*model.Post, error)
	// Update rewrites caller-editable fields; owner_id is never touched.
	Update(ctx context.Context, id int64, in model.PostInput) (*model.Post, error)
	// Delete removes a post.
	Delete(ctx context.Context, id int64) error
	// List returns all posts.
	List(ctx context.Context) ([]model.Post, error)
	// ListPublic returns posts visible without authentication.
	ListPublic(ctx context.Context) ([]model.Post, error)
	// ListByOwner returns posts owned by the given user.
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Post, error)
}
