// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"checkspot/internal/config"
	"checkspot/internal/handler"
	"checkspot/internal/middleware"
)

// Handlers groups everything the router needs to wire routes.
type Handlers struct {
	Auth     *handler.AuthHandler
	Venues   *handler.VenueHandler
	Activity *handler.ActivityHandler
	Checkins *handler.CheckinHandler
	Payouts  *handler.PayoutHandler
}

// Register wires all application routes. The browse surface (venues, cities,
// activity listings) is public and sits behind the Redis response cache;
// everything that mutates state or exposes personal data requires a bearer
// token. The rate limiter and metrics middleware apply to every route.
func Register(e *echo.Echo, cfg config.Config, h Handlers, rdb *redis.Client) {
	e.Use(middleware.Metrics())
	e.Use(middleware.TokenBucket(config.LoadRateLimitConfig(), rdb))

	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Public browse endpoints, cached.
	cache := middleware.ResponseCache(config.LoadCacheConfig(), rdb)
	e.GET("/venues", h.Venues.List, cache)
	e.GET("/cities", h.Venues.Cities, cache)
	e.GET("/activities", h.Activity.List, cache)
	e.GET("/venues/:id/activities", h.Activity.ByVenue, cache)

	// Account creation and login issue the token; no auth required.
	e.POST("/signup", h.Auth.Signup)
	e.POST("/login", h.Auth.Login)

	// Protected endpoints: identity comes from the bearer token only.
	auth := e.Group("", middleware.BearerAuth(cfg.TokenSecret, h.Auth.Tokens))
	auth.GET("/me", h.Auth.Me)
	auth.POST("/logout", h.Auth.Logout)
	auth.POST("/venues", h.Venues.Create)
	auth.POST("/activities", h.Activity.Create)
	auth.POST("/checkins", h.Checkins.Create)
	auth.GET("/my-checkins", h.Checkins.ListMine)
	auth.GET("/venues/:id/payouts", h.Payouts.ListByVenue)
}
