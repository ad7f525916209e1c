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
	"github.com/atabek/storefront/internal/logging"
	"github.com/atabek/storefront/internal/models"
	"github.com/atabek/storefront/internal/repo"
	"github.com/atabek/storefront/internal/search"
	"github.com/atabek/storefront/internal/util"
)

type ProductHandler struct {
	Repo     *repo.GormRepo
	Producer *events.Producer
	Search   *search.Service
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func (h *ProductHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

func (h *ProductHandler) index(c echo.Context, product *models.Product) {
	if err := h.Search.IndexProduct(c.Request().Context(), product); err != nil {
		logging.FromContext(c.Request().Context()).Error("search index error", "error", err)
	}
}

func (h *ProductHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	product, err := h.Repo.FindProductByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "could not get product")
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) List(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Repo.ListProducts(c.Request().Context(), offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not list products")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *ProductHandler) Create(c echo.Context) error {
	var req struct {
		Name        string  `json:"name"`
		Price       float64 `json:"price"`
		Description string  `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if len(req.Name) < 3 || len(req.Name) > 100 {
		return echo.NewHTTPError(http.StatusBadRequest, "name must be 3-100 characters")
	}

	product := models.Product{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
	}
	if err := h.Repo.CreateProduct(c.Request().Context(), &product); err != nil {
		if errors.Is(err, repo.ErrDuplicateName) {
			return echo.NewHTTPError(http.StatusBadRequest, "product with this name already exists")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create product")
	}

	h.publish(c, fmt.Sprint(product.ID), map[string]any{
		"type":       "product_created",
		"product_id": product.ID,
		"name":       product.Name,
	})
	h.index(c, &product)

	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	var patch repo.ProductPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product, err := h.Repo.UpdateProduct(c.Request().Context(), uint(id), patch)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicateName):
			return echo.NewHTTPError(http.StatusBadRequest, "product with this name already exists")
		case errors.Is(err, repo.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "could not update product")
	}

	h.publish(c, c.Param("id"), map[string]any{
		"type":       "product_updated",
		"product_id": product.ID,
		"name":       product.Name,
	})
	h.index(c, product)

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	if err := h.Repo.DeleteProduct(c.Request().Context(), uint(id)); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "could not delete product")
	}

	h.publish(c, c.Param("id"), map[string]any{
		"type":       "product_deleted",
		"product_id": id,
	})
	if err := h.Search.DeleteProduct(c.Request().Context(), uint(id)); err != nil {
		logging.FromContext(c.Request().Context()).Error("search delete error", "error", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"detail": "product deleted"})
}

func (h *ProductHandler) SearchProducts(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	total, products, err := h.Search.Search(c.Request().Context(), q, from, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "products": products})
}
