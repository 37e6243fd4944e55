package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/allocation"
)

// AvailabilityHandler serves the read-only booking views.
type AvailabilityHandler struct {
	Availability AvailabilityAPI
	Plan         FloorPlanAPI
	Log          *zap.Logger
}

func NewAvailabilityHandler(availability AvailabilityAPI, plan FloorPlanAPI, log *zap.Logger) *AvailabilityHandler {
	if availability == nil || plan == nil {
		panic("nil dependency passed to NewAvailabilityHandler")
	}
	return &AvailabilityHandler{Availability: availability, Plan: plan, Log: nopIfNil(log)}
}

type availabilityResp struct {
	Date      string                  `json:"date"`
	PartySize int                     `json:"party_size"`
	Slots     []allocation.SlotOption `json:"slots"`
}

// GetAvailability handles GET /v1/availability?date&party_size[&duration].
func (h *AvailabilityHandler) GetAvailability(c echo.Context) error {
	date := c.QueryParam("date")
	party, err := queryInt(c, "party_size", 0)
	if err != nil || date == "" {
		return fail(c, http.StatusBadRequest, "invalid_input", "date and party_size are required")
	}
	duration, err := queryInt(c, "duration", 0)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid_input", "duration must be a number of minutes")
	}
	slots, err := h.Availability.ListAvailableSlots(c.Request().Context(), date, party, duration)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, availabilityResp{Date: date, PartySize: party, Slots: slots})
}

// ListZones handles GET /v1/zones.
func (h *AvailabilityHandler) ListZones(c echo.Context) error {
	snap, err := h.Plan.Current()
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"zones": toZoneViews(snap.Zones())})
}
