package handler

import (
	"time"

	"github.com/iliyamo/table-reservation/internal/floorplan"
	"github.com/iliyamo/table-reservation/internal/model"
)

// CreateReservationResult answers a booking request.  On failure
// Success is false and Error/Reason explain why.
type CreateReservationResult struct {
	Success       bool       `json:"success"`
	Message       string     `json:"message,omitempty"`
	Error         string     `json:"error,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	ReservationID uint64     `json:"reservation_id,omitempty"`
	TableIDs      []uint64   `json:"table_ids,omitempty"`
	ZoneID        uint64     `json:"zone_id,omitempty"`
	Kind          string     `json:"kind,omitempty"`
	StartAt       *time.Time `json:"start_at,omitempty"`
	EndAt         *time.Time `json:"end_at,omitempty"`
}

// CancelReservationResult answers a cancellation.
type CancelReservationResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
	Error         string `json:"error,omitempty"`
	ReservationID uint64 `json:"reservation_id"`
}

type createReservationReq struct {
	CustomerID      uint64  `json:"customer_id"`
	Name            string  `json:"name"`
	Phone           string  `json:"phone"`
	Email           *string `json:"email"`
	Date            string  `json:"date"`
	Time            string  `json:"time"`
	PartySize       int     `json:"party_size"`
	SpecialRequests *string `json:"special_requests"`
	DurationMinutes int     `json:"duration_minutes"`
	PreferredZoneID *uint64 `json:"preferred_zone_id"`
}

// cancelReservationReq proves the caller made the booking.  The phone may
// come in the JSON body or as a query parameter.
type cancelReservationReq struct {
	Phone string `json:"phone" query:"phone"`
}

type reservationView struct {
	ID              uint64          `json:"id"`
	CustomerID      uint64          `json:"customer_id"`
	Date            string          `json:"date"`
	Time            model.TimeOfDay `json:"time"`
	PartySize       int             `json:"party_size"`
	Status          string          `json:"status"`
	StartAt         time.Time       `json:"start_at"`
	EndAt           time.Time       `json:"end_at"`
	DurationMinutes int             `json:"duration_minutes"`
	SpecialRequests *string         `json:"special_requests,omitempty"`
	TableIDs        []uint64        `json:"table_ids"`
	CreatedAt       time.Time       `json:"created_at"`
}

func toReservationView(r *model.Reservation) reservationView {
	ids := r.TableIDs
	if ids == nil {
		ids = []uint64{}
	}
	return reservationView{
		ID:              r.ID,
		CustomerID:      r.CustomerID,
		Date:            r.Date,
		Time:            r.Time,
		PartySize:       r.PartySize,
		Status:          r.Status,
		StartAt:         r.StartAt,
		EndAt:           r.EndAt,
		DurationMinutes: r.DurationMinutes,
		SpecialRequests: r.SpecialRequests,
		TableIDs:        ids,
		CreatedAt:       r.CreatedAt,
	}
}

type zoneView struct {
	ID            uint64 `json:"id"`
	Name          string `json:"name"`
	PriorityOrder int    `json:"priority_order"`
	Color         string `json:"color"`
}

type tableView struct {
	ID            uint64  `json:"id"`
	Name          string  `json:"name"`
	Capacity      int     `json:"capacity"`
	ExtraCapacity int     `json:"extra_capacity"`
	Shape         string  `json:"shape"`
	ZoneID        *uint64 `json:"zone_id,omitempty"`
}

type combinationView struct {
	ID            uint64   `json:"id"`
	Name          string   `json:"name"`
	TableIDs      []uint64 `json:"table_ids"`
	TotalCapacity int      `json:"total_capacity"`
	ZoneID        *uint64  `json:"zone_id,omitempty"`
}

type floorPlanView struct {
	LoadedAt     time.Time         `json:"loaded_at"`
	Zones        []zoneView        `json:"zones"`
	Tables       []tableView       `json:"tables"`
	Combinations []combinationView `json:"combinations"`
}

func toZoneViews(zones []model.Zone) []zoneView {
	out := make([]zoneView, 0, len(zones))
	for _, z := range zones {
		out = append(out, zoneView{ID: z.ID, Name: z.Name, PriorityOrder: z.PriorityOrder, Color: z.Color})
	}
	return out
}

func toFloorPlanView(snap *floorplan.Snapshot) floorPlanView {
	v := floorPlanView{
		LoadedAt:     snap.LoadedAt(),
		Zones:        toZoneViews(snap.Zones()),
		Tables:       []tableView{},
		Combinations: []combinationView{},
	}
	for _, t := range snap.Tables() {
		v.Tables = append(v.Tables, tableView{
			ID: t.ID, Name: t.Name, Capacity: t.Capacity, ExtraCapacity: t.ExtraCapacity, Shape: t.Shape, ZoneID: t.ZoneID,
		})
	}
	for _, cb := range snap.Combinations() {
		v.Combinations = append(v.Combinations, combinationView{
			ID: cb.ID, Name: cb.Name, TableIDs: cb.TableIDs, TotalCapacity: cb.TotalCapacity, ZoneID: cb.ZoneID,
		})
	}
	return v
}
