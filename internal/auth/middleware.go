package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"nomod-backend/internal/models"
)

// Context key for the authenticated user
const ContextKeyUser = "user"

// RequireAuth middleware resolves the session cookie to an active user.
// Anything short of a valid, unexpired session for an active user is a 401;
// storage failures are treated the same way.
func RequireAuth(authSvc *Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := authSvc.ValidateToken(TokenFromRequest(c))
			if err != nil {
				c.Logger().Error("session validation error: ", err)
				user = nil
			}
			if user == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "authentication required",
				})
			}

			c.Set(ContextKeyUser, user)
			return next(c)
		}
	}
}

// RequireRole middleware checks for specific user roles
// Must be used after RequireAuth
func RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := GetUserFromContext(c)
			if user == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "authentication required",
				})
			}

			for _, role := range roles {
				if user.Role == role {
					return next(c)
				}
			}

			return c.JSON(http.StatusForbidden, map[string]string{
				"error": "insufficient permissions",
			})
		}
	}
}

// RequireAdmin is a convenience middleware that requires the admin role
func RequireAdmin() echo.MiddlewareFunc {
	return RequireRole(models.RoleAdmin)
}

// TokenFromRequest extracts the session token from the cookie. The token is
// cookie-delivered only; there is no bearer-header fallback.
func TokenFromRequest(c echo.Context) string {
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	return cookie.Value
}

// GetUserFromContext retrieves the authenticated user from the context
func GetUserFromContext(c echo.Context) *models.User {
	user, ok := c.Get(ContextKeyUser).(*models.User)
	if !ok {
		return nil
	}
	return user
}
