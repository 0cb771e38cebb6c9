package api

import (
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/labstack/echo/v4"

	"nomod-backend/internal/auth"
	"nomod-backend/internal/database"
	"nomod-backend/internal/models"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// listPostsHandler handles GET /api/posts
func listPostsHandler(c echo.Context) error {
	filter := models.PostFilter{}

	if status := c.QueryParam("status"); status != "" {
		s := models.PostStatus(status)
		if !s.Valid() {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "status must be draft or published",
			})
		}
		filter.Status = s
	}
	if cat := c.QueryParam("category_id"); cat != "" {
		id, err := parseID(cat)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "invalid category ID",
			})
		}
		filter.CategoryID = &id
	}

	posts, err := postRepo.List(filter)
	if err != nil {
		c.Logger().Error("list posts error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to list posts",
		})
	}

	return c.JSON(http.StatusOK, posts)
}

// createPostHandler handles POST /api/posts
func createPostHandler(c echo.Context) error {
	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "title is required",
		})
	}
	if !slugPattern.MatchString(req.Slug) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "slug must be lowercase letters, digits and hyphens",
		})
	}

	status := req.Status
	if status == "" {
		status = models.PostStatusDraft
	}
	if !status.Valid() {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "status must be draft or published",
		})
	}

	author := auth.GetUserFromContext(c)

	post := &models.Post{
		Slug:       req.Slug,
		Title:      req.Title,
		Excerpt:    req.Excerpt,
		Content:    req.Content,
		CategoryID: req.CategoryID,
		AuthorID:   author.ID,
		Status:     status,
	}
	if status == models.PostStatusPublished {
		now := time.Now()
		post.PublishedAt = &now
	}

	if err := postRepo.Create(post); err != nil {
		if errors.Is(err, database.ErrSlugTaken) {
			return c.JSON(http.StatusConflict, map[string]string{
				"error": "slug already in use",
			})
		}
		c.Logger().Error("create post error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to create post",
		})
	}

	auditLog(c, models.ActionPostCreate, post.Slug, map[string]any{
		"post_id": post.ID,
	})

	return c.JSON(http.StatusCreated, post)
}

// getPostHandler handles GET /api/posts/:id
func getPostHandler(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid post ID",
		})
	}

	post, err := postRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, database.ErrPostNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "post not found",
			})
		}
		c.Logger().Error("get post error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to get post",
		})
	}

	return c.JSON(http.StatusOK, post)
}

// getPostBySlugHandler handles GET /api/posts/slug/:slug. The admin editor
// uses it to check slug availability before saving.
func getPostBySlugHandler(c echo.Context) error {
	slug := c.Param("slug")
	if !slugPattern.MatchString(slug) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "slug must be lowercase letters, digits and hyphens",
		})
	}

	post, err := postRepo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, database.ErrPostNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "post not found",
			})
		}
		c.Logger().Error("get post error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to get post",
		})
	}

	return c.JSON(http.StatusOK, post)
}

// updatePostHandler handles PUT /api/posts/:id
func updatePostHandler(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid post ID",
		})
	}

	post, err := postRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, database.ErrPostNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "post not found",
			})
		}
		c.Logger().Error("get post error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to get post",
		})
	}

	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if req.Slug != nil {
		if !slugPattern.MatchString(*req.Slug) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "slug must be lowercase letters, digits and hyphens",
			})
		}
		post.Slug = *req.Slug
	}
	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Excerpt != nil {
		post.Excerpt = *req.Excerpt
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.CategoryID != nil {
		post.CategoryID = req.CategoryID
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "status must be draft or published",
			})
		}
		// First transition to published stamps the publication time.
		if *req.Status == models.PostStatusPublished && post.PublishedAt == nil {
			now := time.Now()
			post.PublishedAt = &now
		}
		post.Status = *req.Status
	}

	if err := postRepo.Update(post); err != nil {
		if errors.Is(err, database.ErrSlugTaken) {
			return c.JSON(http.StatusConflict, map[string]string{
				"error": "slug already in use",
			})
		}
		c.Logger().Error("update post error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to update post",
		})
	}

	auditLog(c, models.ActionPostUpdate, post.Slug, map[string]any{
		"post_id": post.ID,
	})

	return c.JSON(http.StatusOK, post)
}

// deletePostHandler handles DELETE /api/posts/:id
func deletePostHandler(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid post ID",
		})
	}

	post, err := postRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, database.ErrPostNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "post not found",
			})
		}
		c.Logger().Error("get post error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to delete post",
		})
	}

	if err := postRepo.Delete(id); err != nil {
		c.Logger().Error("delete post error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to delete post",
		})
	}

	auditLog(c, models.ActionPostDelete, post.Slug, map[string]any{
		"post_id": id,
	})

	return c.JSON(http.StatusOK, map[string]string{
		"message": "post deleted",
	})
}
