package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"nomod-backend/internal/models"
)

// recordPageViewHandler handles POST /api/analytics/pageview (public). The
// public site fires this as a beacon on navigation.
func recordPageViewHandler(c echo.Context) error {
	var req struct {
		Path     string `json:"path"`
		Referrer string `json:"referrer"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if req.Path == "" || !strings.HasPrefix(req.Path, "/") {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "path must start with /",
		})
	}
	if len(req.Path) > 512 {
		req.Path = req.Path[:512]
	}

	view := &models.PageView{
		Path:     req.Path,
		Referrer: req.Referrer,
		Day:      time.Now().UTC().Format("2006-01-02"),
	}

	if err := analyticsRepo.Record(view); err != nil {
		c.Logger().Error("record pageview error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to record pageview",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "recorded",
	})
}

// analyticsStatsHandler handles GET /api/analytics/stats
func analyticsStatsHandler(c echo.Context) error {
	days := 30
	if d := c.QueryParam("days"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || n < 1 || n > 365 {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "days must be between 1 and 365",
			})
		}
		days = n
	}

	since := time.Now().AddDate(0, 0, -days)
	stats, err := analyticsRepo.Stats(since, 20)
	if err != nil {
		c.Logger().Error("analytics stats error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to compute stats",
		})
	}

	return c.JSON(http.StatusOK, stats)
}
