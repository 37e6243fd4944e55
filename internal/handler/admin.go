package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/allocation"
	"github.com/iliyamo/table-reservation/internal/middleware"
	"github.com/iliyamo/table-reservation/internal/model"
)

// AdminHandler serves the staff endpoints.  JWT and role checks run in
// middleware before any method here.
type AdminHandler struct {
	Reservations ReservationAPI
	Availability AvailabilityAPI
	Plan         FloorPlanAPI
	Log          *zap.Logger
}

func NewAdminHandler(reservations ReservationAPI, availability AvailabilityAPI, plan FloorPlanAPI, log *zap.Logger) *AdminHandler {
	if reservations == nil || availability == nil || plan == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Reservations: reservations, Availability: availability, Plan: plan, Log: nopIfNil(log)}
}

type tableStatusResp struct {
	Date   string                   `json:"date"`
	Time   model.TimeOfDay          `json:"time"`
	Tables []allocation.TableStatus `json:"tables"`
}

// TableStatus handles GET /v1/admin/tables/status?date&time[&duration][&exclude_reservation_id].
func (h *AdminHandler) TableStatus(c echo.Context) error {
	date := c.QueryParam("date")
	at, err := model.ParseTimeOfDay(c.QueryParam("time"))
	if err != nil || date == "" {
		return fail(c, http.StatusBadRequest, "invalid_input", "date and time (HH:MM) are required")
	}
	duration, err := queryInt(c, "duration", 0)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid_input", "duration must be a number of minutes")
	}
	var exclude uint64
	if v := c.QueryParam("exclude_reservation_id"); v != "" {
		if exclude, err = strconv.ParseUint(v, 10, 64); err != nil {
			return fail(c, http.StatusBadRequest, "invalid_input", "invalid exclude_reservation_id")
		}
	}
	tables, err := h.Availability.ListTablesWithStatus(c.Request().Context(), date, at, duration, exclude)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, tableStatusResp{Date: date, Time: at, Tables: tables})
}

// ListReservations handles GET /v1/admin/reservations?date.
func (h *AdminHandler) ListReservations(c echo.Context) error {
	list, err := h.Reservations.ListReservations(c.Request().Context(), c.QueryParam("date"))
	if err != nil {
		return respondError(c, h.Log, err)
	}
	out := make([]reservationView, 0, len(list))
	for i := range list {
		out = append(out, toReservationView(&list[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": out})
}

// GetReservation handles GET /v1/admin/reservations/:id.
func (h *AdminHandler) GetReservation(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid_input", "invalid reservation id")
	}
	res, err := h.Reservations.GetReservation(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toReservationView(res))
}

// UpdateStatus handles PATCH /v1/admin/reservations/:id/status.
func (h *AdminHandler) UpdateStatus(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid_input", "invalid reservation id")
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil || body.Status == "" {
		return fail(c, http.StatusBadRequest, "invalid_input", "status is required")
	}
	res, err := h.Reservations.UpdateStatus(c.Request().Context(), id, body.Status)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	staffID, _ := middleware.StaffID(c)
	h.Log.Info("status changed by staff",
		zap.Uint64("reservation_id", id), zap.String("status", res.Status), zap.Uint64("staff_id", staffID))
	return c.JSON(http.StatusOK, toReservationView(res))
}

// ReassignTables handles PUT /v1/admin/reservations/:id/tables.
func (h *AdminHandler) ReassignTables(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid_input", "invalid reservation id")
	}
	var body struct {
		TableIDs []uint64 `json:"table_ids"`
	}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "invalid_input", "invalid request body")
	}
	res, err := h.Reservations.ReassignTables(c.Request().Context(), id, body.TableIDs)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	staffID, _ := middleware.StaffID(c)
	h.Log.Info("tables reassigned by staff",
		zap.Uint64("reservation_id", id), zap.Uint64s("table_ids", res.TableIDs), zap.Uint64("staff_id", staffID))
	return c.JSON(http.StatusOK, toReservationView(res))
}

// FloorPlan handles GET /v1/admin/floorplan.
func (h *AdminHandler) FloorPlan(c echo.Context) error {
	snap, err := h.Plan.Current()
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toFloorPlanView(snap))
}

// ReloadFloorPlan handles POST /v1/admin/floorplan/reload.  The previous
// floor plan stays in use when the reload fails.
func (h *AdminHandler) ReloadFloorPlan(c echo.Context) error {
	snap, err := h.Plan.Reload(c.Request().Context())
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toFloorPlanView(snap))
}
