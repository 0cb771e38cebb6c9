package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"nomod-backend/internal/database"
	"nomod-backend/internal/models"
)

// listCategoriesHandler handles GET /api/categories
func listCategoriesHandler(c echo.Context) error {
	cats, err := categoryRepo.List()
	if err != nil {
		c.Logger().Error("list categories error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to list categories",
		})
	}

	return c.JSON(http.StatusOK, cats)
}

// createCategoryHandler handles POST /api/categories
func createCategoryHandler(c echo.Context) error {
	var cat models.Category
	if err := c.Bind(&cat); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if cat.Name == "" || !slugPattern.MatchString(cat.Slug) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "name and a valid slug are required",
		})
	}

	if err := categoryRepo.Create(&cat); err != nil {
		if errors.Is(err, database.ErrSlugTaken) {
			return c.JSON(http.StatusConflict, map[string]string{
				"error": "slug already in use",
			})
		}
		c.Logger().Error("create category error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to create category",
		})
	}

	auditLog(c, models.ActionCategoryWrite, cat.Slug, map[string]any{
		"category_id": cat.ID,
	})

	return c.JSON(http.StatusCreated, cat)
}

// updateCategoryHandler handles PUT /api/categories/:id
func updateCategoryHandler(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid category ID",
		})
	}

	cat, err := categoryRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, database.ErrCategoryNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "category not found",
			})
		}
		c.Logger().Error("get category error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to get category",
		})
	}

	var req models.Category
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if req.Slug != "" {
		if !slugPattern.MatchString(req.Slug) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "slug must be lowercase letters, digits and hyphens",
			})
		}
		cat.Slug = req.Slug
	}
	if req.Name != "" {
		cat.Name = req.Name
	}
	if req.Description != "" {
		cat.Description = req.Description
	}

	if err := categoryRepo.Update(cat); err != nil {
		if errors.Is(err, database.ErrSlugTaken) {
			return c.JSON(http.StatusConflict, map[string]string{
				"error": "slug already in use",
			})
		}
		c.Logger().Error("update category error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to update category",
		})
	}

	auditLog(c, models.ActionCategoryWrite, cat.Slug, map[string]any{
		"category_id": cat.ID,
	})

	return c.JSON(http.StatusOK, cat)
}

// deleteCategoryHandler handles DELETE /api/categories/:id
func deleteCategoryHandler(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid category ID",
		})
	}

	if err := categoryRepo.Delete(id); err != nil {
		if errors.Is(err, database.ErrCategoryNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "category not found",
			})
		}
		if errors.Is(err, database.ErrCategoryInUse) {
			return c.JSON(http.StatusConflict, map[string]string{
				"error": "category still referenced by posts",
			})
		}
		c.Logger().Error("delete category error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to delete category",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "category deleted",
	})
}
