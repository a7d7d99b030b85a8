package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	pasetotoken "github.com/Alijeyrad/serviceflow_backend/pkg/paseto"
	"github.com/Alijeyrad/serviceflow_backend/pkg/reqctx"
)

// TokenVerifier is satisfied by *pasetotoken.Manager.
type TokenVerifier interface {
	Verify(token string) (*pasetotoken.Claims, error)
}

// SessionChecker is satisfied by *redis.SessionStore.
type SessionChecker interface {
	Active(ctx context.Context, id uuid.UUID) (bool, error)
}

// AuthRequired validates a Bearer PASETO access token and, when the token
// names a session and sessions is non-nil, checks that the session is live.
// On success, claims are stored in c.Locals(pasetotoken.CtxKeyClaims) and
// in the request context.
func AuthRequired(mgr TokenVerifier, sessions SessionChecker) fiber.Handler {
	return func(c fiber.Ctx) error {
		h := c.Get("Authorization")
		if h == "" {
			return fiber.ErrUnauthorized
		}

		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.ErrUnauthorized
		}

		claims, err := mgr.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			return fiber.ErrUnauthorized
		}

		// Only access tokens are accepted on protected routes
		if claims.Type != pasetotoken.TokenTypeAccess {
			return fiber.ErrUnauthorized
		}

		if claims.SessionID != nil && sessions != nil {
			live, err := sessions.Active(c.Context(), *claims.SessionID)
			if err != nil || !live {
				return fiber.ErrUnauthorized
			}
		}

		c.Locals(pasetotoken.CtxKeyClaims, claims)
		c.SetContext(reqctx.WithClaims(c.Context(), claims))
		return c.Next()
	}
}
