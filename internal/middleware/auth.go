package middleware

import (
	"strings"

	"movie-booking/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by JWTAuth and OptionalAuth.
const (
	LocalUserID = "user_id"
	LocalRole   = "role"
	LocalEmail  = "email"
)

// JWTAuth rejects requests without a valid Bearer access token and stores the
// caller identity in c.Locals.
func JWTAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, ok := bearerToken(c)
		if !ok {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Missing or malformed Authorization header")
		}
		if !authenticate(c, secret, raw) {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid or expired token")
		}
		return c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and lets
// anonymous requests through otherwise.
func OptionalAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if raw, ok := bearerToken(c); ok {
			authenticate(c, secret, raw)
		}
		return c.Next()
	}
}

// RequireRole must run after JWTAuth.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalRole).(string)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Admin access required")
	}
}

// UserID returns the authenticated user id, or 0 for anonymous requests.
func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(LocalUserID).(uint)
	return id
}

func Email(c *fiber.Ctx) string {
	email, _ := c.Locals(LocalEmail).(string)
	return email
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	header := c.Get(fiber.HeaderAuthorization)
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func authenticate(c *fiber.Ctx, secret, raw string) bool {
	claims, err := utils.ParseAccessToken(secret, raw)
	if err != nil {
		return false
	}
	id, err := claims.UserID()
	if err != nil {
		return false
	}
	c.Locals(LocalUserID, id)
	c.Locals(LocalRole, claims.Role)
	c.Locals(LocalEmail, claims.Email)
	return true
}
