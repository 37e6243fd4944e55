// Package router wires handlers and middleware onto the echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/handler"
)

// Middlewares are the optional Redis-backed middlewares.  A nil field is
// skipped.
type Middlewares struct {
	Cache      echo.MiddlewareFunc // response cache for availability reads
	Invalidate echo.MiddlewareFunc // cache purge after successful writes
	RateLimit  echo.MiddlewareFunc // token bucket on booking writes
}

func chain(mws ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(mws))
	for _, m := range mws {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

// RegisterRoutes registers the health check.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers staff login under /v1/auth.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, mw Middlewares) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login, chain(mw.RateLimit)...)
}

// RegisterPublic registers the guest booking endpoints.  Availability
// reads are cached; bookings and cancellations are rate limited and purge
// the cache when they succeed.
func RegisterPublic(e *echo.Echo, r *handler.ReservationHandler, a *handler.AvailabilityHandler, mw Middlewares) {
	g := e.Group("/v1")
	g.GET("/availability", a.GetAvailability, chain(mw.Cache)...)
	g.GET("/zones", a.ListZones)
	g.POST("/reservations", r.Create, chain(mw.RateLimit, mw.Invalidate)...)
	g.DELETE("/reservations/:id", r.Cancel, chain(mw.RateLimit, mw.Invalidate)...)
}
