// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/dineflow/table-reservation/internal/config"
	"github.com/dineflow/table-reservation/internal/engine"
	"github.com/dineflow/table-reservation/internal/handler"
	"github.com/dineflow/table-reservation/internal/middleware"
)

// Deps bundles everything route registration needs: the reservation
// engine plus the Redis client and configs backing the middleware
// stack.  A nil Redis client disables rate limiting and caching.
type Deps struct {
	Engine    *engine.Engine
	Redis     *redis.Client
	JWTSecret string
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
}

// RegisterRoutes wires the full HTTP surface onto the provided Echo
// instance.  Identity runs on every /v1 route so bookings and queue
// joins are attributed to the caller; the response cache covers only
// the read endpoints, since a cached POST would swallow side effects.
func RegisterRoutes(e *echo.Echo, d Deps) {
	// Health check for load balancers and monitoring; deliberately
	// outside the middleware stack.
	e.GET("/healthz", handler.Health)

	availability := handler.NewAvailabilityHandler(d.Engine)
	reservations := handler.NewReservationHandler(d.Engine)
	walkIn := handler.NewWalkInHandler(d.Engine)
	slotQueue := handler.NewSlotQueueHandler(d.Engine)

	v1 := e.Group("/v1")
	v1.Use(middleware.Identity(d.JWTSecret))
	v1.Use(middleware.NewTokenBucket(d.RateLimit, d.Redis))

	cached := middleware.NewRedisCache(d.Cache, d.Redis)

	// Floor plan and availability (read-only, cacheable).
	v1.GET("/tables", availability.Tables, cached)
	v1.GET("/availability", availability.Check, cached)

	// Reservations.
	v1.POST("/reservations", reservations.Book)
	v1.GET("/reservations/:id", reservations.Get)
	v1.DELETE("/reservations/:id", reservations.Cancel)

	// Walk-in waiting queue.
	v1.GET("/queue", walkIn.List, cached)
	v1.POST("/queue/join", walkIn.Join)
	v1.DELETE("/queue/:id", walkIn.Cancel)
	v1.PATCH("/queue/:id/notified", walkIn.SetNotified)

	// Waiting queue for fully booked time slots.
	v1.GET("/slot-queue", slotQueue.List, cached)
	v1.POST("/slot-queue/join", slotQueue.Join)
	v1.DELETE("/slot-queue/:id", slotQueue.Leave)
}
