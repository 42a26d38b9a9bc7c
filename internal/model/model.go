// Package model defines domain entities used by services and repositories.
package model

import "time"

// Role classifies an account's privilege level.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Principal is the verified identity acting on a request. It is threaded
// explicitly from token verification down to the access check, never read
// from ambient state.
type Principal struct {
	ID   int64
	Role Role
}

// Reason explains why a mutation was allowed or denied.
type Reason string

const (
	ReasonOwner  Reason = "OWNER"
	ReasonAdmin  Reason = "ADMIN"
	ReasonDenied Reason = "DENIED"
)

// AccessDecision is the outcome of the mutation check. Computed per
// request, never persisted.
type AccessDecision struct {
	Allowed bool
	Reason  Reason
}

// Tokens collects an issued access/refresh token pair.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time // access token expiry (for diagnostics)
}

// User represents an account stored on the server.
type User struct {
	ID        int64  // PK
	Username  string // unique
	PwdHash   []byte // Argon2id(password, SaltAuth)
	SaltAuth  []byte // per-user auth salt
	Role      Role
	CreatedAt time.Time
}

// Principal returns the identity carried by this account.
func (u *User) Principal() Principal {
	return Principal{ID: u.ID, Role: u.Role}
}

// Post is a single content entry owned by a user. Ownership is set at
// creation and never changes afterwards.
type Post struct {
	ID        int64
	OwnerID   int64
	Title     string
	Content   string
	IsPublic  bool // affects read visibility only, never mutation rights
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PostInput carries caller-supplied post fields for create and update.
type PostInput struct {
	Title    string
	Content  string
	IsPublic bool
}
