// Package httpserver exposes the JSON HTTP API handlers.
package httpserver

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pressroom-io/pressroom/internal/errs"
	"github.com/pressroom-io/pressroom/internal/model"
	"github.com/pressroom-io/pressroom/internal/service"
	"github.com/pressroom-io/pressroom/internal/token"
)

// Server wires services into HTTP handlers.
type Server struct {
	auth     service.AuthService
	posts    service.PostService
	users    service.UserService
	codec    *token.Codec
	log      *zap.Logger
	validate *validator.Validate
}

// New constructs an HTTP server with injected services.
func New(auth service.AuthService, posts service.PostService, users service.UserService, codec *token.Codec, log *zap.Logger) *Server {
	return &Server{
		auth:     auth,
		posts:    posts,
		users:    users,
		codec:    codec,
		log:      log,
		validate: validator.New(),
	}
}

// Router assembles the API routes and middleware chain.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(Recover(s.log), Logging(s.log))

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/refresh", s.handleRefresh)

		r.Get("/posts", s.handleListPublic)
		r.Get("/posts/{id}", s.handleGetPost)
		r.Get("/users/{id}", s.handleGetUser)
		r.Get("/users/{id}/posts", s.handleListByOwner)

		r.Group(func(r chi.Router) {
			r.Use(s.Authenticate)
			r.Get("/posts/all", s.handleListAll)
			r.Post("/posts", s.handleCreatePost)
			r.Put("/posts/{id}", s.handleUpdatePost)
			r.Delete("/posts/{id}", s.handleDeletePost)
			r.Get("/users", s.handleListUsers)
			r.Delete("/users/{id}", s.handleDeleteUser)
		})
	})
	return r
}

// --- DTOs ---

type credentialsRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type tokensResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type registerResponse struct {
	ID int64 `json:"id"`
}

type postRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Content  string `json:"content"`
	IsPublic bool   `json:"is_public"`
}

type postResponse struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	IsPublic  bool      `json:"is_public"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// userResponse carries the public account fields; credential material
// (hash, salt) never leaves the service layer.
type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Role: string(u.Role)}
}

func toPostResponse(p *model.Post) postResponse {
	return postResponse{
		ID:        p.ID,
		OwnerID:   p.OwnerID,
		Title:     p.Title,
		Content:   p.Content,
		IsPublic:  p.IsPublic,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toPostList(ps []model.Post) []postResponse {
	out := make([]postResponse, 0, len(ps))
	for i := range ps {
		out = append(out, toPostResponse(&ps[i]))
	}
	return out
}

// --- Auth handlers ---

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !s.decode(w, r, &req) {
		return
	}
	id, err := s.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, registerResponse{ID: id})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !s.decode(w, r, &req) {
		return
	}
	tok, err := s.auth.Login(r.Context(), req.Username, req.Password, clientIP(r.RemoteAddr))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tokensResponse{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.ExpiresAt,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !s.decode(w, r, &req) {
		return
	}
	tok, err := s.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tokensResponse{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.ExpiresAt,
	})
}

// --- User handlers ---

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	u, err := s.users.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.principal(w, r)
	if !ok {
		return
	}
	us, err := s.users.List(r.Context(), principal)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]userResponse, 0, len(us))
	for i := range us {
		out = append(out, toUserResponse(&us[i]))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.principal(w, r)
	if !ok {
		return
	}
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.users.Delete(r.Context(), principal, id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Post handlers ---

func (s *Server) handleListPublic(w http.ResponseWriter, r *http.Request) {
	ps, err := s.posts.ListPublic(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toPostList(ps))
}

func (s *Server) handleListAll(w http.ResponseWriter, r *http.Request) {
	ps, err := s.posts.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toPostList(ps))
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	p, err := s.posts.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toPostResponse(p))
}

func (s *Server) handleListByOwner(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	ps, err := s.posts.ListByOwner(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toPostList(ps))
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.principal(w, r)
	if !ok {
		return
	}
	var req postRequest
	if !s.decode(w, r, &req) {
		return
	}
	p, err := s.posts.Create(r.Context(), principal, model.PostInput{Title: req.Title, Content: req.Content, IsPublic: req.IsPublic})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toPostResponse(p))
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.principal(w, r)
	if !ok {
		return
	}
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req postRequest
	if !s.decode(w, r, &req) {
		return
	}
	p, err := s.posts.Update(r.Context(), principal, id, model.PostInput{Title: req.Title, Content: req.Content, IsPublic: req.IsPublic})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toPostResponse(p))
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.principal(w, r)
	if !ok {
		return
	}
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.posts.Delete(r.Context(), principal, id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- helpers ---

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return false
	}
	return true
}

// clientIP strips the ephemeral port from RemoteAddr so limiter keys stay
// stable across connections from the same host.
func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad id"})
		return 0, false
	}
	return id, true
}

func (s *Server) principal(w http.ResponseWriter, r *http.Request) (model.Principal, bool) {
	p, ok := PrincipalFromCtx(r.Context())
	if !ok {
		// middleware missing from the chain; fail closed
		s.log.Error("no principal in authenticated route", zap.String("path", r.URL.Path))
		s.unauthenticated(w)
		return model.Principal{}, false
	}
	return p, true
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) unauthenticated(w http.ResponseWriter) {
	s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
}

// writeError maps sentinel errors onto HTTP outcomes. Causes are collapsed
// to generic messages so the response leaks nothing beyond the status.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrInvalidCredentials), errors.Is(err, errs.ErrInvalidToken):
		s.unauthenticated(w)
	case errors.Is(err, errs.ErrForbidden):
		s.writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
	case errors.Is(err, errs.ErrNotFound):
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, errs.ErrAlreadyExists):
		s.writeJSON(w, http.StatusConflict, errorResponse{Error: "already exists"})
	case errors.Is(err, errs.ErrRateLimited):
		s.writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limited"})
	default:
		s.log.Error("internal error", zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal"})
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response", zap.Error(err))
	}
}
