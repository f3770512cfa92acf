package middleware

import (
	"errors"
	"strings"

	"replate-api/internal/config"
	"replate-api/internal/core/domain"
	"replate-api/internal/pkg/jwt"
	"replate-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware requires a session token in the Authorization header
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return response.Unauthorized(c, "Access denied. No token provided.")
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			return response.Unauthorized(c, "Access denied. No token provided.")
		}

		claims, err := jwt.Validate(token, cfg.JWT.Secret, jwt.PurposeSession)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return response.Unauthorized(c, "Token expired. Please login again.")
			}
			return response.Unauthorized(c, "Invalid token.")
		}

		c.Locals("userID", claims.UserID)
		c.Locals("email", claims.Email)
		c.Locals("role", claims.Role)

		return c.Next()
	}
}

// RoleMiddleware allows only the given roles through
func RoleMiddleware(allowedRoles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, allowedRole := range allowedRoles {
			if role == string(allowedRole) {
				return c.Next()
			}
		}

		return response.Forbidden(c, "Access forbidden. You do not have the required role.")
	}
}

// AdminOnly allows only the admin role
func AdminOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleAdmin)
}

// MerchantOnly allows only the merchant role
func MerchantOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleMerchant)
}
