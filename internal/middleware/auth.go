package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/chlachla/chlachla-backend/internal/services"
)

// CallerIDKey is the Locals key under which the authenticated caller's
// identity key (phone or email) is stashed.
const CallerIDKey = "callerID"

// RequireAuth validates the Bearer verification token on protected
// routes and stores the caller's subject key in the request context.
func RequireAuth(issuer services.TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		claims, err := issuer.Validate(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil || !claims.Verified {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		c.Locals(CallerIDKey, claims.SubjectKey)
		return c.Next()
	}
}

// CallerID returns the authenticated caller's identity key, or "" if
// the request did not pass RequireAuth.
func CallerID(c *fiber.Ctx) string {
	id, _ := c.Locals(CallerIDKey).(string)
	return id
}
