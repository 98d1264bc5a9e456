package middleware

import (
	"strings"

	"smartcontact/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	localUserID   = "user_id"
	localUserName = "user_name"
)

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(authService *services.AuthService, logger *zap.Logger) fiber.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "Authorization header is required", nil)
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return unauthorized(c, "Authorization header format must be 'Bearer <token>'", nil)
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			logger.Debug("JWT validation failed", zap.Error(err))
			return unauthorized(c, "Invalid or expired token", err)
		}
		userID, err := services.UserIDFromClaims(claims)
		if err != nil {
			return unauthorized(c, "Invalid or expired token", err)
		}

		c.Locals(localUserID, userID)
		if name, ok := claims["user_name"].(string); ok {
			c.Locals(localUserName, name)
		}
		return c.Next()
	}
}

// UserID returns the authenticated user's ID stored by AuthRequired.
func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(localUserID).(uint)
	return id, ok
}

// UserName returns the authenticated user's name stored by AuthRequired.
func UserName(c *fiber.Ctx) string {
	name, _ := c.Locals(localUserName).(string)
	return name
}

func unauthorized(c *fiber.Ctx, message string, err error) error {
	body := fiber.Map{
		"message": message,
		"success": false,
	}
	if err != nil {
		body["error"] = err.Error()
	}
	return c.Status(fiber.StatusUnauthorized).JSON(body)
}
