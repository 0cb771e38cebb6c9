package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"nomod-backend/internal/auth"
	"nomod-backend/internal/database"
	"nomod-backend/internal/models"
)

// listUsersHandler handles GET /api/users
func listUsersHandler(c echo.Context) error {
	users, err := userRepo.List()
	if err != nil {
		c.Logger().Error("list users error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to list users",
		})
	}

	return c.JSON(http.StatusOK, users)
}

// createUserHandler handles POST /api/users
func createUserHandler(c echo.Context) error {
	var req models.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "a valid email is required",
		})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "password must be at least 8 characters",
		})
	}

	role := req.Role
	if role == "" {
		role = models.RoleEditor
	}
	if !role.Valid() {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "role must be admin or editor",
		})
	}

	name := req.Name
	if name == "" {
		name = req.Email
	}

	hash, salt, err := auth.HashPassword(req.Password, "")
	if err != nil {
		c.Logger().Error("hash password error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to create user",
		})
	}

	user := &models.User{
		Email:        req.Email,
		Name:         name,
		Role:         role,
		PasswordHash: hash,
		PasswordSalt: salt,
		IsActive:     true,
	}

	if err := userRepo.Create(user); err != nil {
		if errors.Is(err, database.ErrUserAlreadyExists) {
			return c.JSON(http.StatusConflict, map[string]string{
				"error": "email already in use",
			})
		}
		c.Logger().Error("create user error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to create user",
		})
	}

	auditLog(c, models.ActionUserCreate, user.Email, map[string]any{
		"user_id": user.ID,
		"role":    user.Role,
	})

	return c.JSON(http.StatusCreated, user)
}

// getUserHandler handles GET /api/users/:id
func getUserHandler(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid user ID",
		})
	}

	user, err := userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "user not found",
			})
		}
		c.Logger().Error("get user error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to get user",
		})
	}

	return c.JSON(http.StatusOK, user)
}

// updateUserHandler handles PUT /api/users/:id
func updateUserHandler(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid user ID",
		})
	}

	user, err := userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "user not found",
			})
		}
		c.Logger().Error("get user error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to get user",
		})
	}

	var req models.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if req.Role != nil && !req.Role.Valid() {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "role must be admin or editor",
		})
	}

	demoting := req.Role != nil && *req.Role != models.RoleAdmin
	deactivating := req.IsActive != nil && !*req.IsActive
	if demoting || deactivating {
		if err := lastActiveAdminGuard(user); err != nil {
			if errors.Is(err, database.ErrLastActiveAdmin) {
				return c.JSON(http.StatusConflict, map[string]string{
					"error": "cannot demote or deactivate the last active admin",
				})
			}
			c.Logger().Error("count admins error: ", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "failed to update user",
			})
		}
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != nil && *req.Password != "" {
		if len(*req.Password) < 8 {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "password must be at least 8 characters",
			})
		}
		hash, salt, err := auth.HashPassword(*req.Password, "")
		if err != nil {
			c.Logger().Error("hash password error: ", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "failed to update user",
			})
		}
		user.PasswordHash = hash
		user.PasswordSalt = salt
	}

	if err := userRepo.Update(user); err != nil {
		c.Logger().Error("update user error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to update user",
		})
	}

	// Revoke sessions eagerly; orphan pruning would only catch them on the
	// next issue or validate.
	if deactivating {
		if err := sessionRepo.DeleteAllForUser(user.ID); err != nil {
			c.Logger().Error("revoke sessions error: ", err)
		}
	}

	auditLog(c, models.ActionUserUpdate, user.Email, map[string]any{
		"user_id": user.ID,
	})

	return c.JSON(http.StatusOK, user)
}

// deleteUserHandler handles DELETE /api/users/:id
func deleteUserHandler(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid user ID",
		})
	}

	// Prevent self-deletion
	currentUser := auth.GetUserFromContext(c)
	if currentUser != nil && currentUser.ID == id {
		return c.JSON(http.StatusForbidden, map[string]string{
			"error": "cannot delete your own account",
		})
	}

	target, err := userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "user not found",
			})
		}
		c.Logger().Error("get user error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to delete user",
		})
	}

	if err := lastActiveAdminGuard(target); err != nil {
		if errors.Is(err, database.ErrLastActiveAdmin) {
			return c.JSON(http.StatusConflict, map[string]string{
				"error": "cannot delete the last active admin",
			})
		}
		c.Logger().Error("count admins error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to delete user",
		})
	}

	if err := userRepo.Delete(id); err != nil {
		c.Logger().Error("delete user error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to delete user",
		})
	}

	auditLog(c, models.ActionUserDelete, target.Email, map[string]any{
		"user_id": id,
	})

	return c.JSON(http.StatusOK, map[string]string{
		"message": "user deleted",
	})
}

// listUserSessionsHandler handles GET /api/users/:id/sessions
func listUserSessionsHandler(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid user ID",
		})
	}

	if _, err := userRepo.GetByID(id); err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "user not found",
			})
		}
		c.Logger().Error("get user error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to list sessions",
		})
	}

	sessions, err := sessionRepo.GetByUserID(id)
	if err != nil {
		c.Logger().Error("list sessions error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to list sessions",
		})
	}

	return c.JSON(http.StatusOK, sessions)
}

// Helper functions

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// lastActiveAdminGuard refuses changes that would leave the system without an
// active administrator. Returns nil when the target is not an active admin.
func lastActiveAdminGuard(target *models.User) error {
	if !target.IsActive || !target.IsAdmin() {
		return nil
	}
	admins, err := userRepo.CountActiveAdmins()
	if err != nil {
		return err
	}
	if admins <= 1 {
		return database.ErrLastActiveAdmin
	}
	return nil
}

// auditLog records an admin action attributed to the session user.
func auditLog(c echo.Context, action, target string, details any) {
	user := auth.GetUserFromContext(c)
	if user == nil {
		return
	}
	if err := auditRepo.Log(user.ID, user.Email, action, target, details, c.RealIP()); err != nil {
		c.Logger().Error("audit log error: ", err)
	}
}
