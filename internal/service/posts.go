package service

import (
	"context"
	"errors"

	"github.com/pressroom-io/pressroom/internal/errs"
	"github.com/pressroom-io/pressroom/internal/model"
	"github.com/pressroom-io/pressroom/internal/repository"
)

// PostService defines operations over posts. Every mutation resolves the
// post first and consults the access engine before any write; there is no
// mutation path around that check.
type PostService interface {
	// Create stores a new post owned by the acting principal.
	Create(ctx context.Context, p model.Principal, in model.PostInput) (*model.Post, error)
	// Update rewrites post fields if the principal may mutate it.
	Update(ctx context.Context, p model.Principal, id int64, in model.PostInput) (*model.Post, error)
	// Delete removes a post if the principal may mutate it.
	Delete(ctx context.Context, p model.Principal, id int64) error
	// Get returns a single post by id.
	Get(ctx context.Context, id int64) (*model.Post, error)
	// List returns all posts.
	List(ctx context.Context) ([]model.Post, error)
	// ListPublic returns publicly visible posts.
	ListPublic(ctx context.Context) ([]model.Post, error)
	// ListByOwner returns posts owned by the given user.
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Post, error)
}

type PostServiceImpl struct {
	repo   repository.PostRepository
	access *AccessEngine
}

// NewPostService constructs PostService with its repository and access engine.
func NewPostService(repo repository.PostRepository, access *AccessEngine) *PostServiceImpl {
	return &PostServiceImpl{repo: repo, access: access}
}

// Create stores a new post. Ownership is pinned to the acting principal at
// creation and never changes afterwards.
func (s *PostServiceImpl) Create(ctx context.Context, p model.Principal, in model.PostInput) (*model.Post, error) {
	if in.Title == "" {
		return nil, errors.New("validation: empty title")
	}
	post := &model.Post{
		OwnerID:  p.ID,
		Title:    in.Title,
		Content:  in.Content,
		IsPublic: in.IsPublic,
	}
	id, err := s.repo.Create(ctx, post)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Update checks not-found before the access decision, keeping the two
// failure kinds orthogonal for the transport layer.
func (s *PostServiceImpl) Update(ctx context.Context, p model.Principal, id int64, in model.PostInput) (*model.Post, error) {
	if in.Title == "" {
		return nil, errors.New("validation: empty title")
	}
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d := s.access.CanMutate(p, post); !d.Allowed {
		return nil, errs.ErrForbidden
	}
	return s.repo.Update(ctx, id, in)
}

// Delete removes a post under the same owner-or-admin rule as Update.
func (s *PostServiceImpl) Delete(ctx context.Context, p model.Principal, id int64) error {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if d := s.access.CanMutate(p, post); !d.Allowed {
		return errs.ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

// Get fetches a single post by id.
func (s *PostServiceImpl) Get(ctx context.Context, id int64) (*model.Post, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all posts.
func (s *PostServiceImpl) List(ctx context.Context) ([]model.Post, error) {
	return s.repo.List(ctx)
}

// ListPublic returns posts visible without authentication.
func (s *PostServiceImpl) ListPublic(ctx context.Context) ([]model.Post, error) {
	return s.repo.ListPublic(ctx)
}

// ListByOwner returns posts owned by the given user.
func (s *PostServiceImpl) ListByOwner(ctx context.Context, ownerID int64) ([]model.Post, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}
