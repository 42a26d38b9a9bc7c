package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/pressroom-io/pressroom/internal/errs"
	"github.com/pressroom-io/pressroom/internal/model"
	"github.com/pressroom-io/pressroom/internal/repository"
)

// UserService exposes account lookup and admin account management.
type UserService interface {
	// Get returns a single account by id.
	Get(ctx context.Context, id int64) (*model.User, error)
	// List returns all accounts. Admin only.
	List(ctx context.Context, p model.Principal) ([]model.User, error)
	// Delete removes an account and, via cascade, its posts. Admin only.
	Delete(ctx context.Context, p model.Principal, id int64) error
}

type UserServiceImpl struct {
	repo repository.UserRepository
	log  *zap.Logger
}

// NewUserService constructs UserService. A nil logger is replaced with a no-op.
func NewUserService(repo repository.UserRepository, log *zap.Logger) *UserServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserServiceImpl{repo: repo, log: log}
}

// Get fetches a single account by id.
func (s *UserServiceImpl) Get(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns every account. The role gate runs before any read, so
// non-admins learn nothing about the user table.
func (s *UserServiceImpl) List(ctx context.Context, p model.Principal) ([]model.User, error) {
	if err := s.requireAdmin(p, 0); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

// Delete removes an account. The role gate runs before the existence check,
// so non-admins get ErrForbidden even for ids that do not exist.
func (s *UserServiceImpl) Delete(ctx context.Context, p model.Principal, id int64) error {
	if err := s.requireAdmin(p, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// requireAdmin denies everyone but admins. Unknown roles deny and are
// logged as anomalies rather than silently swallowed.
func (s *UserServiceImpl) requireAdmin(p model.Principal, targetID int64) error {
	if p.Role == model.RoleAdmin {
		return nil
	}
	if p.Role != model.RoleUser {
		s.log.Warn("denying admin operation for principal with unknown role",
			zap.Int64("principal_id", p.ID),
			zap.String("role", string(p.Role)),
			zap.Int64("target_id", targetID),
		)
	}
	return errs.ErrForbidden
}
