package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/atabek/storefront/internal/auth"
	"github.com/atabek/storefront/internal/events"
	"github.com/atabek/storefront/internal/logging"
	"github.com/atabek/storefront/internal/middleware"
)

type AuthHandler struct {
	Svc      *auth.Service
	Producer *events.Producer
}

func (h *AuthHandler) publish(c echo.Context, topic, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

// Login exchanges form-encoded credentials for a bearer token. Unknown user
// and wrong password share one message.
func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	username := c.FormValue("username")
	password := c.FormValue("password")

	user, err := h.Svc.Authenticate(ctx, username, password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			l.Error("authenticate failed", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
		l.Warn("login failed", "username", username)
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		return echo.NewHTTPError(http.StatusUnauthorized, "incorrect username or password")
	}

	token, err := h.Svc.Issue(user.Username)
	if err != nil {
		l.Error("token issue failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create access token")
	}

	h.publish(c, "user_events", fmt.Sprint(user.ID), map[string]any{
		"type":     "user_logged_in",
		"user_id":  user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// Logout revokes the presented token string. Revoking twice is harmless.
func (h *AuthHandler) Logout(c echo.Context) error {
	user := middleware.CurrentUser(c)
	token := middleware.CurrentToken(c)

	h.Svc.Logout(token)

	h.publish(c, "user_events", fmt.Sprint(user.ID), map[string]any{
		"type":     "user_logged_out",
		"user_id":  user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"msg": "successfully logged out",
	})
}

// Me returns the caller's identity together with a freshly reissued token.
// The presented token stays valid until its own expiry.
func (h *AuthHandler) Me(c echo.Context) error {
	user := middleware.CurrentUser(c)
	token := middleware.CurrentToken(c)

	fresh, err := h.Svc.Refresh(token)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not refresh token")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":  user,
		"token": fresh,
	})
}
