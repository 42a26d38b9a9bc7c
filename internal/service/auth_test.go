package service

import (
	"context"
	"errors"
	"testing"
	"time"

	pkgcrypto "github.com/pressroom-io/pressroom/internal/crypto"
	"github.com/pressroom-io/pressroom/internal/errs"
	"github.com/pressroom-io/pressroom/internal/limiter"
	"github.com/pressroom-io/pressroom/internal/model"
	"github.com/pressroom-io/pressroom/internal/repository"
	"github.com/pressroom-io/pressroom/internal/token"
)

type fakeUsers struct {
	byName map[string]*model.User
	nextID int64

	createErr error
	getErr    error

	deleteCalls int
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func (f *fakeUsers) Create(_ context.Context, u *model.User) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	if f.byName == nil {
		f.byName = map[string]*model.User{}
	}
	if _, exists := f.byName[u.Username]; exists {
		return 0, errs.ErrAlreadyExists
	}
	f.nextID++
	cpy := *u
	cpy.ID = f.nextID
	f.byName[u.Username] = &cpy
	return cpy.ID, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	for _, u := range f.byName {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) List(context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(f.byName))
	for _, u := range f.byName {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUsers) Delete(_ context.Context, id int64) error {
	f.deleteCalls++
	for name, u := range f.byName {
		if u.ID == id {
			delete(f.byName, name)
			return nil
		}
	}
	return errs.ErrNotFound
}

type fakeLimiter struct {
	allowOK  bool
	allowErr error

	failBlocked bool
	failErr     error

	allowCalls   int
	failureCalls int
	successCalls int
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	l.allowCalls++
	return l.allowOK, 0, l.allowErr
}
func (l *fakeLimiter) Success(context.Context, string, []byte) error {
	l.successCalls++
	return nil
}
func (l *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	l.failureCalls++
	return l.failBlocked, 0, l.failErr
}

func seedUser(t *testing.T, users *fakeUsers, username, password string, role model.Role) int64 {
	t.Helper()
	salt, err := pkgcrypto.NewSalt()
	if err != nil {
		t.Fatalf("NewSalt: %v", err)
	}
	id, err := users.Create(context.Background(), &model.User{
		Username: username,
		PwdHash:  pkgcrypto.HashPassword([]byte(password), salt),
		SaltAuth: salt,
		Role:     role,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return id
}

func newAuth(users *fakeUsers, lim limiter.Limiter) *AuthServiceImpl {
	codec := token.New([]byte("test-secret"), nil)
	return NewAuthService(users, codec, 15*time.Minute, 24*time.Hour, lim)
}

func TestAuth_Register_Basics(t *testing.T) {
	t.Parallel()

	users := &fakeUsers{byName: map[string]*model.User{}}
	s := newAuth(users, &fakeLimiter{})

	if _, err := s.Register(context.Background(), "", ""); err == nil {
		t.Fatalf("want validation error on empty username/password")
	}

	id, err := s.Register(context.Background(), "alice", "pwd")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if id == 0 {
		t.Fatalf("empty user id")
	}
	if got := users.byName["alice"].Role; got != model.RoleUser {
		t.Fatalf("new users must get USER role, got %s", got)
	}

	if _, err := s.Register(context.Background(), "alice", "pwd2"); !errors.Is(err, errs.ErrAlreadyExists) {
		t.Fatalf("want ErrAlreadyExists on duplicate username, got %v", err)
	}

	users.createErr = errors.New("boom")
	if _, err := s.Register(context.Background(), "bob", "pwd"); err == nil {
		t.Fatalf("want propagated repo error")
	}
}

func TestAuth_Login_RateLimiterAndCreds(t *testing.T) {
	t.Parallel()

	users := &fakeUsers{byName: map[string]*model.User{}}
	seedUser(t, users, "alice", "correct", model.RoleUser)
	lim := &fakeLimiter{allowOK: true}
	s := newAuth(users, lim)

	lim.allowErr = errors.New("lim-err")
	if _, err := s.Login(context.Background(), "alice", "correct", "1.2.3.4"); err == nil {
		t.Fatalf("want limiter error propagate")
	}
	lim.allowErr = nil

	lim.allowOK = false
	if _, err := s.Login(context.Background(), "alice", "correct", "1.2.3.4"); !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("want ErrRateLimited, got %v", err)
	}
	lim.allowOK = true

	lim.failBlocked = true
	if _, err := s.Login(context.Background(), "alice", "wrong", ""); !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("want ErrRateLimited on blocked after failure, got %v", err)
	}
	lim.failBlocked = false

	tok, err := s.Login(context.Background(), "alice", "correct", "127.0.0.1:123")
	if err != nil {
		t.Fatalf("Login success: %v", err)
	}
	if tok.AccessToken == "" || tok.RefreshToken == "" || tok.ExpiresAt.Before(time.Now()) {
		t.Fatalf("bad tokens: %+v", tok)
	}
	if lim.successCalls == 0 {
		t.Fatalf("expected Success() to be called")
	}
}

func TestAuth_Login_UnknownUserIndistinguishableFromWrongPassword(t *testing.T) {
	t.Parallel()

	users := &fakeUsers{byName: map[string]*model.User{}}
	seedUser(t, users, "alice", "correct", model.RoleUser)
	s := newAuth(users, &fakeLimiter{allowOK: true})

	_, errMissing := s.Login(context.Background(), "nobody", "whatever", "")
	_, errWrongPw := s.Login(context.Background(), "alice", "wrong", "")

	if !errors.Is(errMissing, errs.ErrInvalidCredentials) {
		t.Fatalf("missing user: want ErrInvalidCredentials, got %v", errMissing)
	}
	if !errors.Is(errWrongPw, errs.ErrInvalidCredentials) {
		t.Fatalf("wrong password: want ErrInvalidCredentials, got %v", errWrongPw)
	}
}

func TestAuth_Login_TokenClassesResolveToUser(t *testing.T) {
	t.Parallel()

	users := &fakeUsers{byName: map[string]*model.User{}}
	id := seedUser(t, users, "alice", "correct", model.RoleUser)
	s := newAuth(users, &fakeLimiter{allowOK: true})

	tok, err := s.Login(context.Background(), "alice", "correct", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if got, err := s.codec.Verify(tok.AccessToken, token.ClassAccess); err != nil || got != id {
		t.Fatalf("access token: id=%d err=%v", got, err)
	}
	if got, err := s.codec.Verify(tok.RefreshToken, token.ClassRefresh); err != nil || got != id {
		t.Fatalf("refresh token: id=%d err=%v", got, err)
	}
	if _, err := s.codec.Verify(tok.AccessToken, token.ClassRefresh); !errors.Is(err, token.ErrWrongClass) {
		t.Fatalf("access token must not pass as refresh: %v", err)
	}
}

func TestAuth_Refresh_RotatesPair(t *testing.T) {
	t.Parallel()

	users := &fakeUsers{byName: map[string]*model.User{}}
	id := seedUser(t, users, "alice", "correct", model.RoleUser)
	s := newAuth(users, &fakeLimiter{allowOK: true})

	first, err := s.Login(context.Background(), "alice", "correct", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	second, err := s.Refresh(context.Background(), first.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatalf("refresh token not rotated")
	}
	if second.AccessToken == first.AccessToken {
		t.Fatalf("access token not reissued")
	}
	if got, err := s.codec.Verify(second.RefreshToken, token.ClassRefresh); err != nil || got != id {
		t.Fatalf("rotated refresh token: id=%d err=%v", got, err)
	}
}

func TestAuth_Refresh_Rejections(t *testing.T) {
	t.Parallel()

	users := &fakeUsers{byName: map[string]*model.User{}}
	seedUser(t, users, "alice", "correct", model.RoleUser)
	s := newAuth(users, &fakeLimiter{allowOK: true})

	tok, err := s.Login(context.Background(), "alice", "correct", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	// access token presented as refresh
	if _, err := s.Refresh(context.Background(), tok.AccessToken); !errors.Is(err, errs.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken for access token, got %v", err)
	}

	// garbage token
	if _, err := s.Refresh(context.Background(), "garbage"); !errors.Is(err, errs.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken for garbage, got %v", err)
	}

	// subject deleted between issuance and refresh
	delete(users.byName, "alice")
	if _, err := s.Refresh(context.Background(), tok.RefreshToken); !errors.Is(err, errs.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken for vanished subject, got %v", err)
	}
}
