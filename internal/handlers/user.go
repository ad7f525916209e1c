package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/atabek/storefront/internal/events"
	"github.com/atabek/storefront/internal/hash"
	"github.com/atabek/storefront/internal/logging"
	"github.com/atabek/storefront/internal/middleware"
	"github.com/atabek/storefront/internal/models"
	"github.com/atabek/storefront/internal/repo"
)

type UserHandler struct {
	Repo     *repo.GormRepo
	Producer *events.Producer
}

func (h *UserHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "user_events", key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

// Create is open registration. is_superuser from the request body is
// deliberately ignored, promotion happens through the store only.
func (h *UserHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_create")

	var req struct {
		Username string `json:"username"`
		FullName string `json:"full_name"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}
	if len(req.Username) > 50 || len(req.FullName) > 255 {
		return echo.NewHTTPError(http.StatusBadRequest, "field too long")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("hash failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create user")
	}

	user := models.User{
		Username:     req.Username,
		FullName:     req.FullName,
		PasswordHash: pwHash,
		IsSuperuser:  false,
	}
	if err := h.Repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrDuplicateUsername) {
			return echo.NewHTTPError(http.StatusBadRequest, "username already exists")
		}
		l.Error("create failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create user")
	}

	h.publish(c, fmt.Sprint(user.ID), map[string]any{
		"type":     "user_registered",
		"user_id":  user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) List(c echo.Context) error {
	users, err := h.Repo.ListUsers(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not list users")
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	user, err := h.Repo.FindUserByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "could not get user")
	}
	return c.JSON(http.StatusOK, user)
}

// Update is self-service: the patch always applies to the caller's own id.
func (h *UserHandler) Update(c echo.Context) error {
	current := middleware.CurrentUser(c)

	var patch repo.UserPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if patch.Username != nil && len(*patch.Username) > 50 {
		return echo.NewHTTPError(http.StatusBadRequest, "username too long")
	}
	if patch.FullName != nil && len(*patch.FullName) > 255 {
		return echo.NewHTTPError(http.StatusBadRequest, "full name too long")
	}

	updated, err := h.Repo.UpdateUser(c.Request().Context(), current.ID, patch)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicateUsername):
			return echo.NewHTTPError(http.StatusBadRequest, "username already exists")
		case errors.Is(err, repo.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "could not update user")
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *UserHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	if err := h.Repo.DeleteUser(c.Request().Context(), uint(id)); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "could not delete user")
	}

	h.publish(c, c.Param("id"), map[string]any{
		"type":    "user_deleted",
		"user_id": id,
	})

	return c.JSON(http.StatusOK, echo.Map{"detail": "user deleted"})
}
