package middleware

import (
	"errors"
	"strings"

	"dormdesk-lendtrack/internal/core/domain"
	"dormdesk-lendtrack/internal/core/services"
	"dormdesk-lendtrack/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Context keys set by AuthMiddleware
const (
	LocalUserID = "userID"
	LocalEmail  = "email"
	LocalRole   = "role"
)

// AuthMiddleware verifies the access token and confirms the identity is
// still active. Every protected route passes through here before any
// role check.
func AuthMiddleware(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := extractAccessToken(c)
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		claims, err := authService.Verify(c.Context(), accessToken)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrTokenExpired):
				return response.Unauthorized(c, "Access token expired")
			case errors.Is(err, domain.ErrUserInactive):
				return response.Forbidden(c, "User account is inactive")
			default:
				return response.Unauthorized(c, "Invalid access token")
			}
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalEmail, claims.Email)
		c.Locals(LocalRole, claims.Role)

		return c.Next()
	}
}

// RequireRoles authorizes the authenticated role against an allowed
// set. Must run after AuthMiddleware; denial is terminal.
func RequireRoles(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roleStr, ok := c.Locals(LocalRole).(string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		role, err := domain.ParseRole(roleStr)
		if err != nil {
			return response.Forbidden(c, "You don't have permission to access this resource")
		}
		if err := domain.Authorize(role, allowed...); err != nil {
			return response.Forbidden(c, "You don't have permission to access this resource")
		}

		return c.Next()
	}
}

// AdminOnly middleware allows only the ADMIN role
func AdminOnly() fiber.Handler {
	return RequireRoles(domain.AdminRoles...)
}

// ClerkOrAdmin middleware allows CLERK or ADMIN roles
func ClerkOrAdmin() fiber.Handler {
	return RequireRoles(domain.ClerkOrAdminRoles...)
}

// AuditReview middleware allows the roles permitted to read the audit trail
func AuditReview() fiber.Handler {
	return RequireRoles(domain.RoleAdmin, domain.RoleAuditor)
}

// CurrentUserID returns the authenticated user ID from the context
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(LocalUserID).(uint)
	return id, ok
}

func extractAccessToken(c *fiber.Ctx) string {
	// Cookie first, then Authorization header
	if token := c.Cookies("access_token"); token != "" {
		return token
	}
	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
