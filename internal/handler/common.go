// Package handler exposes the reservation services over HTTP with echo.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/allocation"
	"github.com/iliyamo/table-reservation/internal/floorplan"
	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/repository"
	"github.com/iliyamo/table-reservation/internal/service"
)

// ReservationAPI is the write side used by the public and admin handlers.
// *service.ReservationService implements it.
type ReservationAPI interface {
	CreateReservation(ctx context.Context, in service.CreateReservationInput) (*service.Booking, error)
	CancelByCustomer(ctx context.Context, id uint64, phone string) (*model.Reservation, error)
	UpdateStatus(ctx context.Context, id uint64, status string) (*model.Reservation, error)
	ReassignTables(ctx context.Context, id uint64, tableIDs []uint64) (*model.Reservation, error)
	GetReservation(ctx context.Context, id uint64) (*model.Reservation, error)
	ListReservations(ctx context.Context, date string) ([]model.Reservation, error)
}

// AvailabilityAPI is the read side.  *service.AvailabilityService
// implements it.
type AvailabilityAPI interface {
	ListAvailableSlots(ctx context.Context, date string, partySize, durationMinutes int) ([]allocation.SlotOption, error)
	ListTablesWithStatus(ctx context.Context, date string, at model.TimeOfDay, durationMinutes int, excludeID uint64) ([]allocation.TableStatus, error)
}

// FloorPlanAPI reads and reloads the floor plan.  *floorplan.Store
// implements it.
type FloorPlanAPI interface {
	Current() (*floorplan.Snapshot, error)
	Reload(ctx context.Context) (*floorplan.Snapshot, error)
}

// failure is the body of every error response.
type failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Reason  string `json:"reason"`
}

func fail(c echo.Context, status int, reason, msg string) error {
	return c.JSON(status, failure{Success: false, Error: msg, Reason: reason})
}

// respondError maps a service error to a status code: policy rejections
// are 409, bad input 400, unknown ids 404.  Anything else is logged and
// reported as 500 without details.
func respondError(c echo.Context, log *zap.Logger, err error) error {
	var pe *service.PolicyError
	switch {
	case errors.As(err, &pe):
		return fail(c, http.StatusConflict, pe.Reason, pe.Error())
	case errors.Is(err, service.ErrInvalidInput):
		return fail(c, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, repository.ErrNotFound):
		return fail(c, http.StatusNotFound, "not_found", "reservation not found")
	case errors.Is(err, service.ErrInvalidCredentials):
		return fail(c, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
	case errors.Is(err, floorplan.ErrNotLoaded):
		return fail(c, http.StatusServiceUnavailable, "unavailable", "floor plan not loaded")
	}
	log.Error("request failed",
		zap.String("method", c.Request().Method), zap.String("route", c.Path()), zap.Error(err))
	return fail(c, http.StatusInternalServerError, "internal", "internal error")
}

func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// queryInt reads an optional integer query parameter; def is returned
// when it is absent.
func queryInt(c echo.Context, name string, def int) (int, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func nopIfNil(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
