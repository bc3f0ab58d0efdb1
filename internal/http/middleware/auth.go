package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"fuelapi/internal/auth"
)

// PrincipalLocalKey is the fiber locals key holding the auth.Principal.
const PrincipalLocalKey = "principal"

// TokenParser verifies a bearer token.
type TokenParser interface {
	Parse(raw string) (auth.Principal, error)
}

// Auth requires a valid bearer token. The resolved principal is stored in
// locals and in the request's user context; failures yield a 401 fiber error
// for the global error handler to render.
func Auth(tokens TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			return fiber.ErrUnauthorized
		}

		p, err := tokens.Parse(strings.TrimSpace(raw))
		if err != nil {
			rid, _ := c.Locals(RequestIDLocalKey).(string)
			zap.L().Debug("auth_rejected", zap.String("request_id", rid), zap.Error(err))
			return fiber.ErrUnauthorized
		}

		c.Locals(PrincipalLocalKey, p)
		c.SetUserContext(auth.WithPrincipal(c.UserContext(), p))
		return c.Next()
	}
}
