// Package token issues and verifies signed, expiring session tokens.
// Tokens are self-contained: no server-side state, no revocation list.
package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
)

// Class separates access tokens from refresh tokens. A token presented for
// the wrong use is rejected even when otherwise valid.
type Class string

const (
	ClassAccess  Class = "access"
	ClassRefresh Class = "refresh"
)

// Verification failures. Kinds stay distinct so audit logging can tell a
// forged token from a merely expired one; callers collapse them before
// anything reaches the client.
var (
	ErrBadSignature = errors.New("token: bad signature")
	ErrExpired      = errors.New("token: expired")
	ErrWrongClass   = errors.New("token: wrong class")
)

type claims struct {
	jwt.RegisteredClaims
	TokenClass Class `json:"token_class"`
}

// Codec signs and verifies HS256 tokens with a process-wide secret.
// The clock is injected so tests control time deterministically.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// New constructs a Codec. A nil clock defaults to time.Now.
func New(secret []byte, now func() time.Time) *Codec {
	if now == nil {
		now = time.Now
	}
	return &Codec{secret: secret, now: now}
}

// Issue creates a signed token for the subject with the given class and TTL.
// Every token carries a fresh jti, so rotated refresh tokens never repeat
// and a replay check on the last-issued jti can be added later.
func (c *Codec) Issue(subjectID int64, class Class, ttl time.Duration) (string, time.Time, error) {
	jti, err := uuid.NewV4()
	if err != nil {
		return "", time.Time{}, err
	}
	now := c.now()
	exp := now.Add(ttl)
	cl := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(subjectID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        jti.String(),
		},
		TokenClass: class,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(c.secret)
	return signed, exp, err
}

// Verify checks signature, expiry and class and returns the subject id.
// The signature is always checked; an expired token only surfaces as
// ErrExpired when its signature verified.
func (c *Codec) Verify(raw string, want Class) (int64, error) {
	var cl claims
	parsed, err := jwt.ParseWithClaims(raw, &cl, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpired
		}
		return 0, ErrBadSignature
	}
	if !parsed.Valid {
		return 0, ErrBadSignature
	}
	if cl.TokenClass != want {
		return 0, ErrWrongClass
	}
	id, err := strconv.ParseInt(cl.Subject, 10, 64)
	if err != nil {
		return 0, ErrBadSignature
	}
	return id, nil
}
