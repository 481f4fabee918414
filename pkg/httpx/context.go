package httpx

import (
	"context"

	"github.com/aussiebroadwan/keyward/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyOwnerID ctxKey = "owner_id"
	CtxKeyClaims  ctxKey = "claims"
	CtxKeyAdmin   ctxKey = "admin"
)

// OwnerIDFromContext returns the bearer-token subject set by OwnerAuth.
func OwnerIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(CtxKeyOwnerID).(string)
	return v, ok && v != ""
}

// ClaimsFromContext returns the full verified owner claims.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims)
	return c, ok
}

// IsAdmin reports whether AdminAuth admitted the request.
func IsAdmin(ctx context.Context) bool {
	v, _ := ctx.Value(CtxKeyAdmin).(bool)
	return v
}
