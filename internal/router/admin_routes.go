package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/handler"
	"github.com/iliyamo/table-reservation/internal/middleware"
	"github.com/iliyamo/table-reservation/internal/model"
)

// RegisterAdmin registers the staff endpoints under /v1/admin.  Every
// route requires a valid JWT with role ADMIN or STAFF; reloading the
// floor plan is ADMIN only.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string, mw Middlewares) {
	g := e.Group("/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleStaff),
	)
	writes := chain(mw.Invalidate)

	// ---- Floor map ----
	g.GET("/tables/status", h.TableStatus)

	// ---- Reservations ----
	g.GET("/reservations", h.ListReservations)
	g.GET("/reservations/:id", h.GetReservation)
	g.PATCH("/reservations/:id/status", h.UpdateStatus, writes...)
	g.PUT("/reservations/:id/tables", h.ReassignTables, writes...)

	// ---- Floor plan ----
	g.GET("/floorplan", h.FloorPlan)
	g.POST("/floorplan/reload", h.ReloadFloorPlan,
		append([]echo.MiddlewareFunc{middleware.RequireRole(model.RoleAdmin)}, writes...)...)
}
