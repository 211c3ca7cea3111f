package router // package router defines how HTTP routes are registered for the API

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/video-rental/internal/handler"
	"github.com/iliyamo/video-rental/internal/middleware"
)

// Handlers groups every handler the API exposes.
type Handlers struct {
	Genres    *handler.GenreHandler
	Movies    *handler.MovieHandler
	Customers *handler.CustomerHandler
	Rentals   *handler.RentalHandler
	Auth      *handler.AuthHandler
}

// RegisterRoutes registers routes that sit outside /api: the health check
// and, when metrics is non-nil, the Prometheus endpoint.
func RegisterRoutes(e *echo.Echo, metrics http.Handler) {
	e.GET("/healthz", handler.Health)
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}
}

// RegisterAPI registers every /api route.  Guards are listed per route, in
// order: Authenticate (backed by gate) first, then RequireAdmin where admin
// rights are needed.
func RegisterAPI(e *echo.Echo, h Handlers, gate middleware.Authenticator) {
	auth := middleware.Authenticate(gate)
	admin := middleware.RequireAdmin()

	api := e.Group("/api")

	genres := api.Group("/genres")
	genres.GET("", h.Genres.List)
	genres.GET("/:id", h.Genres.Get)
	genres.POST("", h.Genres.Create, auth)
	genres.PUT("/:id", h.Genres.Update)
	genres.DELETE("/:id", h.Genres.Delete, auth, admin)

	movies := api.Group("/movies")
	movies.GET("", h.Movies.List)
	movies.GET("/:id", h.Movies.Get)
	movies.POST("", h.Movies.Create, auth)
	movies.PUT("/:id", h.Movies.Update, auth)
	movies.DELETE("/:id", h.Movies.Delete, auth, admin)

	customers := api.Group("/customers")
	customers.GET("", h.Customers.List)
	customers.GET("/:id", h.Customers.Get)
	customers.POST("", h.Customers.Create)
	customers.PUT("/:id", h.Customers.Update)
	customers.DELETE("/:id", h.Customers.Delete)

	rentals := api.Group("/rentals")
	rentals.GET("", h.Rentals.List)
	rentals.GET("/:id", h.Rentals.Get)
	rentals.POST("", h.Rentals.Create)

	api.POST("/returns", h.Rentals.Return, auth)

	api.POST("/users", h.Auth.Register)
	api.GET("/users/me", h.Auth.Me, auth)
	api.POST("/auth", h.Auth.Login)
}
