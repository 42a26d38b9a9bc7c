// Package service contains application services for authentication,
// access decisions and posts.
package service

import (
	"context"
	"errors"
	"time"

	pkgcrypto "github.com/pressroom-io/pressroom/internal/crypto"
	"github.com/pressroom-io/pressroom/internal/errs"
	"github.com/pressroom-io/pressroom/internal/limiter"
	"github.com/pressroom-io/pressroom/internal/model"
	"github.com/pressroom-io/pressroom/internal/repository"
	"github.com/pressroom-io/pressroom/internal/token"
)

// AuthService defines registration and session issuance operations.
type AuthService interface {
	// Register creates a new user with secure password hashing.
	Register(ctx context.Context, username, password string) (int64, error)
	// Login applies rate limiting, checks credentials and issues a token pair.
	Login(ctx context.Context, username, password, ip string) (model.Tokens, error)
	// Refresh rotates a refresh token into a brand-new token pair.
	Refresh(ctx context.Context, refreshToken string) (model.Tokens, error)
}

type AuthServiceImpl struct {
	users      repository.UserRepository
	codec      *token.Codec
	accessTTL  time.Duration
	refreshTTL time.Duration
	lim        limiter.Limiter
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, codec *token.Codec, accessTTL, refreshTTL time.Duration, lim limiter.Limiter) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, codec: codec, accessTTL: accessTTL, refreshTTL: refreshTTL, lim: lim}
}

// Register creates a new user record with a per-user salt and the USER role.
func (s *AuthServiceImpl) Register(ctx context.Context, username, password string) (int64, error) {
	if username == "" || password == "" {
		return 0, errors.New("empty username/password")
	}
	salt, err := pkgcrypto.NewSalt()
	if err != nil {
		return 0, err
	}
	u := &model.User{
		Username: username,
		PwdHash:  pkgcrypto.HashPassword([]byte(password), salt),
		SaltAuth: salt,
		Role:     model.RoleUser,
	}
	return s.users.Create(ctx, u)
}

// Login authenticates with rate limiting by (username, ip). Unknown username
// and wrong password are indistinguishable to the caller.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password, ip string) (model.Tokens, error) {
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, username, ipHash)
	if err != nil {
		return model.Tokens{}, err
	}
	if !allowed {
		return model.Tokens{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil || !pkgcrypto.VerifyPassword([]byte(password), u.SaltAuth, u.PwdHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, username, ipHash); ferr == nil && blocked {
			return model.Tokens{}, errs.ErrRateLimited
		}
		// lookup errors are masked the same way as a wrong password
		return model.Tokens{}, errs.ErrInvalidCredentials
	}

	// Success: reset counters (best-effort).
	_ = s.lim.Success(ctx, username, ipHash)

	return s.issuePair(u.ID)
}

// Refresh verifies a refresh token, re-resolves its subject and rotates the
// pair. A consumed token is never reissued; every call mints fresh tokens.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (model.Tokens, error) {
	userID, err := s.codec.Verify(refreshToken, token.ClassRefresh)
	if err != nil {
		return model.Tokens{}, errs.ErrInvalidToken
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		// subject no longer resolves; do not leak the distinction
		return model.Tokens{}, errs.ErrInvalidToken
	}
	return s.issuePair(userID)
}

func (s *AuthServiceImpl) issuePair(userID int64) (model.Tokens, error) {
	access, exp, err := s.codec.Issue(userID, token.ClassAccess, s.accessTTL)
	if err != nil {
		return model.Tokens{}, err
	}
	refresh, _, err := s.codec.Issue(userID, token.ClassRefresh, s.refreshTTL)
	if err != nil {
		return model.Tokens{}, err
	}
	return model.Tokens{AccessToken: access, RefreshToken: refresh, ExpiresAt: exp}, nil
}
