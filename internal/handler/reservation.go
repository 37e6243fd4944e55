package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/service"
)

// ReservationHandler serves the public booking endpoints.
type ReservationHandler struct {
	Reservations ReservationAPI
	Log          *zap.Logger
}

func NewReservationHandler(reservations ReservationAPI, log *zap.Logger) *ReservationHandler {
	if reservations == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{Reservations: reservations, Log: nopIfNil(log)}
}

// Create handles POST /v1/reservations.  A booking either succeeds with
// its tables (201) or fails with a reason and leaves nothing behind.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid_input", "invalid request body")
	}
	tod, err := model.ParseTimeOfDay(req.Time)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid_input", "time must be HH:MM")
	}
	in := service.CreateReservationInput{
		CustomerID:      req.CustomerID,
		Date:            strings.TrimSpace(req.Date),
		Time:            tod,
		PartySize:       req.PartySize,
		SpecialRequests: req.SpecialRequests,
		DurationMinutes: req.DurationMinutes,
		PreferredZoneID: req.PreferredZoneID,
	}
	if req.CustomerID == 0 {
		in.Customer = &service.CustomerDetails{Name: req.Name, Phone: req.Phone, Email: req.Email}
	}

	b, err := h.Reservations.CreateReservation(c.Request().Context(), in)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	res := b.Reservation
	return c.JSON(http.StatusCreated, CreateReservationResult{
		Success:       true,
		Message:       "reservation confirmed",
		ReservationID: res.ID,
		TableIDs:      res.TableIDs,
		ZoneID:        b.Assignment.ZoneID(),
		Kind:          b.Assignment.Kind(),
		StartAt:       &res.StartAt,
		EndAt:         &res.EndAt,
	})
}

// Cancel handles DELETE /v1/reservations/:id.  The guest must send the
// phone the booking was made with; a wrong phone answers 404 like an
// unknown id.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, CancelReservationResult{Error: "invalid reservation id"})
	}
	var req cancelReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, CancelReservationResult{Error: "invalid request body", ReservationID: id})
	}
	if strings.TrimSpace(req.Phone) == "" {
		return c.JSON(http.StatusBadRequest, CancelReservationResult{Error: "phone required", ReservationID: id})
	}
	if _, err := h.Reservations.CancelByCustomer(c.Request().Context(), id, req.Phone); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, CancelReservationResult{
		Success:       true,
		Message:       "reservation cancelled",
		ReservationID: id,
	})
}
