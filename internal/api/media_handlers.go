package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"nomod-backend/internal/auth"
	"nomod-backend/internal/database"
	"nomod-backend/internal/models"
)

var allowedMediaTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"image/svg+xml":   true,
	"application/pdf": true,
}

// listMediaHandler handles GET /api/media
func listMediaHandler(c echo.Context) error {
	files, err := mediaRepo.List()
	if err != nil {
		c.Logger().Error("list media error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to list media",
		})
	}

	return c.JSON(http.StatusOK, files)
}

// uploadMediaHandler handles POST /api/media/upload
func uploadMediaHandler(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "no file uploaded",
		})
	}

	if file.Size > maxUploadBytes {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("file too large (max %d MB)", maxUploadBytes/(1024*1024)),
		})
	}

	contentType := file.Header.Get("Content-Type")
	if !allowedMediaTypes[contentType] {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "unsupported file type",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to read uploaded file",
		})
	}
	defer src.Close()

	if err := os.MkdirAll(mediaDir, 0750); err != nil {
		c.Logger().Error("create media dir error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to save file",
		})
	}

	// Stored under an opaque name; the original name stays in the record.
	id := uuid.NewString()
	storedName := id + strings.ToLower(filepath.Ext(file.Filename))
	destPath := filepath.Join(mediaDir, storedName)

	dst, err := os.Create(destPath)
	if err != nil {
		c.Logger().Error("create media file error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to save file",
		})
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(destPath)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to save file",
		})
	}

	user := auth.GetUserFromContext(c)
	media := &models.MediaFile{
		ID:           id,
		OriginalName: filepath.Base(file.Filename),
		StoredName:   storedName,
		ContentType:  contentType,
		SizeBytes:    file.Size,
		UploadedBy:   user.ID,
	}

	if err := mediaRepo.Create(media); err != nil {
		os.Remove(destPath)
		c.Logger().Error("create media record error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to save file",
		})
	}

	auditLog(c, models.ActionMediaUpload, media.OriginalName, map[string]any{
		"media_id": media.ID,
		"size":     media.SizeBytes,
	})

	return c.JSON(http.StatusCreated, media)
}

// deleteMediaHandler handles DELETE /api/media/:id
func deleteMediaHandler(c echo.Context) error {
	id := c.Param("id")

	media, err := mediaRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, database.ErrMediaNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "media file not found",
			})
		}
		c.Logger().Error("get media error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to delete media",
		})
	}

	if err := mediaRepo.Delete(id); err != nil {
		c.Logger().Error("delete media record error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to delete media",
		})
	}

	// Row removal wins over file removal; a stray file on disk is harmless.
	if err := os.Remove(filepath.Join(mediaDir, media.StoredName)); err != nil && !os.IsNotExist(err) {
		c.Logger().Error("delete media file error: ", err)
	}

	auditLog(c, models.ActionMediaDelete, media.OriginalName, map[string]any{
		"media_id": id,
	})

	return c.JSON(http.StatusOK, map[string]string{
		"message": "media deleted",
	})
}
