package api

import (
	"encoding/csv"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"nomod-backend/internal/database"
	"nomod-backend/internal/models"
)

// subscribeHandler handles POST /api/newsletter/subscribe (public)
func subscribeHandler(c echo.Context) error {
	var req models.SubscribeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") || strings.ContainsAny(email, " \t") {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "a valid email is required",
		})
	}

	sub, err := newsletterRepo.Subscribe(email)
	if err != nil {
		c.Logger().Error("subscribe error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to subscribe",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":    "subscribed",
		"subscriber": sub,
	})
}

// listSubscribersHandler handles GET /api/newsletter/subscribers
func listSubscribersHandler(c echo.Context) error {
	subs, err := newsletterRepo.List()
	if err != nil {
		c.Logger().Error("list subscribers error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to list subscribers",
		})
	}

	return c.JSON(http.StatusOK, subs)
}

// exportSubscribersHandler handles GET /api/newsletter/export. Streams the
// list as CSV for mailing tools.
func exportSubscribersHandler(c echo.Context) error {
	subs, err := newsletterRepo.List()
	if err != nil {
		c.Logger().Error("export subscribers error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to export subscribers",
		})
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="subscribers.csv"`)
	c.Response().WriteHeader(http.StatusOK)

	w := csv.NewWriter(c.Response())
	if err := w.Write([]string{"email", "subscribed_at"}); err != nil {
		return err
	}
	for _, sub := range subs {
		if err := w.Write([]string{sub.Email, sub.SubscribedAt.Format("2006-01-02 15:04:05")}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// deleteSubscriberHandler handles DELETE /api/newsletter/subscribers/:email
func deleteSubscriberHandler(c echo.Context) error {
	email := c.Param("email")

	if err := newsletterRepo.Delete(email); err != nil {
		if errors.Is(err, database.ErrSubscriberNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "subscriber not found",
			})
		}
		c.Logger().Error("delete subscriber error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to delete subscriber",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "subscriber deleted",
	})
}
