package service

import (
	"go.uber.org/zap"

	"github.com/pressroom-io/pressroom/internal/model"
)

// AccessEngine decides whether a principal may mutate a post. It holds no
// mutable state and performs no I/O; callers resolve the post first, so a
// missing post never reaches the engine.
type AccessEngine struct {
	log *zap.Logger
}

// NewAccessEngine constructs the engine. A nil logger is replaced with a no-op.
func NewAccessEngine(log *zap.Logger) *AccessEngine {
	if log == nil {
		log = zap.NewNop()
	}
	return &AccessEngine{log: log}
}

// CanMutate reports whether the principal may update or delete the post.
// The admin check runs before the owner check so an admin who also owns the
// post is recorded as ADMIN in audit reasons. Unknown roles deny and are
// logged as anomalies rather than silently swallowed.
func (e *AccessEngine) CanMutate(p model.Principal, post *model.Post) model.AccessDecision {
	if p.Role == model.RoleAdmin {
		return model.AccessDecision{Allowed: true, Reason: model.ReasonAdmin}
	}
	if post.OwnerID == p.ID {
		return model.AccessDecision{Allowed: true, Reason: model.ReasonOwner}
	}
	if p.Role != model.RoleUser {
		e.log.Warn("denying mutation for principal with unknown role",
			zap.Int64("principal_id", p.ID),
			zap.String("role", string(p.Role)),
			zap.Int64("post_id", post.ID),
		)
	}
	return model.AccessDecision{Allowed: false, Reason: model.ReasonDenied}
}
