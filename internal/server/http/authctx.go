package httpserver

import (
	"context"

	"github.com/pressroom-io/pressroom/internal/model"
)

type ctxKey string

const principalKey ctxKey = "pr.principal"

// WithPrincipal stores the verified acting principal in context.
func WithPrincipal(ctx context.Context, p model.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromCtx fetches the acting principal from context.
func PrincipalFromCtx(ctx context.Context) (model.Principal, bool) {
	v := ctx.Value(principalKey)
	if v == nil {
		return model.Principal{}, false
	}
	p, ok := v.(model.Principal)
	return p, ok
}
