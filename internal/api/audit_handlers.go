package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"nomod-backend/internal/models"
)

// listAuditLogsHandler handles GET /api/audit
func listAuditLogsHandler(c echo.Context) error {
	filter := models.AuditFilter{Limit: 100}

	if v := c.QueryParam("user_id"); v != "" {
		id, err := parseID(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "invalid user ID",
			})
		}
		filter.UserID = &id
	}
	filter.Action = c.QueryParam("action")
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "limit must be between 1 and 1000",
			})
		}
		filter.Limit = n
	}
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "invalid offset",
			})
		}
		filter.Offset = n
	}
	if v := c.QueryParam("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "since must be RFC3339",
			})
		}
		filter.StartTime = t
	}

	logs, total, err := auditRepo.List(filter)
	if err != nil {
		c.Logger().Error("list audit logs error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to list audit logs",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"logs":  logs,
		"total": total,
	})
}
