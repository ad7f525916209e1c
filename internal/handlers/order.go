package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/atabek/storefront/internal/auth"
	"github.com/atabek/storefront/internal/events"
	"github.com/atabek/storefront/internal/logging"
	"github.com/atabek/storefront/internal/middleware"
	"github.com/atabek/storefront/internal/repo"
)

type OrderHandler struct {
	Repo     *repo.GormRepo
	Producer *events.Producer
}

func (h *OrderHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "order_events", key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

func (h *OrderHandler) Create(c echo.Context) error {
	user := middleware.CurrentUser(c)

	var req struct {
		Items []uint `json:"items"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if len(req.Items) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "items are required")
	}

	order, err := h.Repo.CreateOrder(c.Request().Context(), user.ID, req.Items)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create order")
	}

	h.publish(c, fmt.Sprint(order.ID), map[string]any{
		"type":       "order_created",
		"order_id":   order.ID,
		"created_by": user.ID,
	})

	return c.JSON(http.StatusOK, order)
}

// List scopes to the caller's own orders; a superuser sees everything.
func (h *OrderHandler) List(c echo.Context) error {
	user := middleware.CurrentUser(c)

	scope := user.ID
	if auth.IsSuperuser(user) {
		scope = 0
	}

	orders, err := h.Repo.ListOrders(c.Request().Context(), scope)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not list orders")
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	order, err := h.Repo.FindOrderByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "could not get order")
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Status(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	order, err := h.Repo.FindOrderByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "could not get order")
	}
	if len(order.Details) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "order has no details")
	}
	return c.JSON(http.StatusOK, echo.Map{"status": order.Details[0].Status})
}
