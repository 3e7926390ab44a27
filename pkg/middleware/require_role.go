package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/salonlink/backend/pkg/models"
)

// RequireRole ensures the authenticated user holds one of the given roles.
// Apply AFTER the JWT middleware, which stores the role in the context.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("user_role").(string)
			if !ok || role == "" {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:   "unauthorized",
					Message: "Authentication required",
				})
			}

			if !allowed[role] {
				return c.JSON(http.StatusForbidden, models.ErrorResponse{
					Error:   "insufficient_permissions",
					Message: "You do not have access to this resource",
				})
			}

			return next(c)
		}
	}
}

// RequireAdmin allows admin and superadmin accounts
func RequireAdmin() echo.MiddlewareFunc {
	return RequireRole(models.RoleAdmin, models.RoleSuperAdmin)
}

// RequireSuperAdmin allows only superadmin accounts. Use for destructive
// operations like bulk-clearing the lead list.
func RequireSuperAdmin() echo.MiddlewareFunc {
	return RequireRole(models.RoleSuperAdmin)
}
