package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"nomod-backend/internal/auth"
	"nomod-backend/internal/models"
)

// loginHandler handles POST /api/auth/login
func loginHandler(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "email and password are required",
		})
	}

	fingerprint := auth.Fingerprint(c.RealIP(), c.Request().UserAgent())

	if state := loginLimiter.CheckState(fingerprint); state.Limited {
		return tooManyAttempts(c, state)
	}

	user, err := authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			state, rlErr := loginLimiter.RecordFailure(fingerprint)
			if rlErr != nil {
				c.Logger().Error("rate limit write error: ", rlErr)
				return c.JSON(http.StatusInternalServerError, map[string]string{
					"error": "authentication failed",
				})
			}
			if state.Limited {
				return tooManyAttempts(c, state)
			}
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "Invalid credentials",
			})
		}
		c.Logger().Error("login error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "authentication failed",
		})
	}

	// Successful login always forgets the fingerprint's counter.
	if err := loginLimiter.Clear(fingerprint); err != nil {
		c.Logger().Error("rate limit clear error: ", err)
	}

	token, _, err := authService.IssueSession(user, c.Request().UserAgent())
	if err != nil {
		c.Logger().Error("issue session error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "authentication failed",
		})
	}

	c.SetCookie(authService.SessionCookie(token))

	if err := auditRepo.Log(user.ID, user.Email, models.ActionLogin, user.Email, nil, c.RealIP()); err != nil {
		c.Logger().Error("audit log error: ", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"user": user,
	})
}

func tooManyAttempts(c echo.Context, state models.RateLimitState) error {
	minutes := (state.RetryAfterSeconds + 59) / 60
	c.Response().Header().Set("Retry-After", strconv.Itoa(state.RetryAfterSeconds))
	return c.JSON(http.StatusTooManyRequests, map[string]any{
		"error":       fmt.Sprintf("too many login attempts, try again in %d minutes", minutes),
		"retry_after": state.RetryAfterSeconds,
	})
}

// logoutHandler handles POST /api/auth/logout
func logoutHandler(c echo.Context) error {
	token := auth.TokenFromRequest(c)

	if user, err := authService.ValidateToken(token); err == nil && user != nil {
		if err := auditRepo.Log(user.ID, user.Email, models.ActionLogout, user.Email, nil, c.RealIP()); err != nil {
			c.Logger().Error("audit log error: ", err)
		}
	}

	// Deleting an absent session is fine; logout is idempotent.
	if err := authService.ClearSession(token); err != nil {
		c.Logger().Error("logout error: ", err)
	}

	c.SetCookie(authService.ClearedSessionCookie())

	return c.JSON(http.StatusOK, map[string]string{
		"message": "logged out",
	})
}

// sessionInfoHandler handles GET /api/auth/session. The payload answers
// "who is this cookie?" for the admin frontend and is never cached.
func sessionInfoHandler(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-store")

	info := models.SessionInfo{}

	user, err := authService.ValidateToken(auth.TokenFromRequest(c))
	if err != nil {
		c.Logger().Error("session introspection error: ", err)
		return c.JSON(http.StatusOK, info)
	}
	if user != nil {
		role := string(user.Role)
		name := user.Name
		info = models.SessionInfo{Authenticated: true, Role: &role, Name: &name}
	}

	return c.JSON(http.StatusOK, info)
}

// getCurrentUser handles GET /api/auth/me
func getCurrentUser(c echo.Context) error {
	user := auth.GetUserFromContext(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "not authenticated",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"user": user,
	})
}
