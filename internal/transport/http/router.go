package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/atabek/storefront/internal/handlers"
	"github.com/atabek/storefront/internal/middleware"
)

type Deps struct {
	Auth           *middleware.Auth
	AuthHandler    *handlers.AuthHandler
	UserHandler    *handlers.UserHandler
	ProductHandler *handlers.ProductHandler
	OrderHandler   *handlers.OrderHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	authGroup := e.Group("/auth")
	authGroup.POST("/login", d.AuthHandler.Login)
	authGroup.POST("/logout", d.AuthHandler.Logout, d.Auth.RequireUser)
	authGroup.GET("/me", d.AuthHandler.Me, d.Auth.RequireUser)

	users := e.Group("/users")
	users.POST("", d.UserHandler.Create)
	users.GET("", d.UserHandler.List, d.Auth.RequireSuperuser)
	users.GET("/:id", d.UserHandler.GetByID, d.Auth.RequireSuperuser)
	users.PUT("", d.UserHandler.Update, d.Auth.RequireUser)
	users.DELETE("/:id", d.UserHandler.Delete, d.Auth.RequireSuperuser)

	products := e.Group("/products")
	products.GET("", d.ProductHandler.List, d.Auth.RequireUser)
	products.GET("/:id", d.ProductHandler.Get, d.Auth.RequireUser)
	products.POST("", d.ProductHandler.Create, d.Auth.RequireSuperuser)
	products.PUT("/:id", d.ProductHandler.Update, d.Auth.RequireSuperuser)
	products.DELETE("/:id", d.ProductHandler.Delete, d.Auth.RequireSuperuser)

	orders := e.Group("/orders", d.Auth.RequireUser)
	orders.POST("", d.OrderHandler.Create)
	orders.GET("", d.OrderHandler.List)
	orders.GET("/:id", d.OrderHandler.Get)
	orders.GET("/:id/status", d.OrderHandler.Status)

	e.GET("/search", d.ProductHandler.SearchProducts, d.Auth.RequireUser)
}
