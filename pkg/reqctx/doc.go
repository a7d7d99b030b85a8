// Package reqctx carries request-scoped data through context.Context:
// request metadata set by HTTP middleware and the caller's auth claims.
//
// Setting values (typically in middleware):
//
//	ctx = reqctx.WithRequestMeta(ctx, &reqctx.RequestMeta{RequestID: rid})
//	ctx = reqctx.WithClaims(ctx, claims)
//
// Getting values in services:
//
//	owner, ok := reqctx.OwnerFromContext(ctx)
//	rid := reqctx.RequestIDFromContext(ctx)
//
// RequestMeta is set for every HTTP request. Claims are set only for
// authenticated requests. Background callers (workers, CLI) carry neither.
package reqctx
