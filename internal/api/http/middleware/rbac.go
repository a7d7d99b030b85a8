package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/serviceflow_backend/pkg/authorize"
	pasetotoken "github.com/Alijeyrad/serviceflow_backend/pkg/paseto"
)

// RequirePermission checks that the authenticated user holds resource:action
// in the business domain named by the token. A nil auth allows everything.
func RequirePermission(auth authorize.IAuthorization, resource authorize.Resource, action authorize.Action) fiber.Handler {
	return func(c fiber.Ctx) error {
		claims, ok := pasetotoken.ClaimsFromFiber(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		if auth == nil {
			return c.Next()
		}

		subject := authorize.GroupSubject(claims.UserID.String())
		domain := authorize.BusinessDomain(claims.BusinessID.String())
		if err := auth.MustEnforce(c.Context(), subject, domain, resource, action); err != nil {
			if errors.Is(err, authorize.ErrForbidden) {
				return fiber.ErrForbidden
			}
			return err
		}

		return c.Next()
	}
}
