package model

import "time"

// Reservation statuses.  Only confirmed and arrived reservations hold
// their tables.
const (
    StatusConfirmed = "confirmed"
    StatusArrived   = "arrived"
    StatusCancelled = "cancelled"
    StatusCompleted = "completed"
    StatusNoShow    = "no_show"
)

// HoldsTables reports whether a reservation in the given status occupies
// its assigned tables.
func HoldsTables(status string) bool {
    return status == StatusConfirmed || status == StatusArrived
}

// Reservation records a customer's booking for a date and time.  StartAt
// and EndAt are civil times in the restaurant's time zone; EndAt is
// StartAt plus DurationMinutes and is fixed at creation.
//
// Fields:
//  ID              – primary key identifier.
//  CustomerID      – customer who booked.
//  Date            – reservation date (YYYY-MM-DD).
//  Time            – requested time of day.
//  PartySize       – number of diners.
//  Status          – confirmed, arrived, cancelled, completed or no_show.
//  StartAt / EndAt – occupied interval, half-open [StartAt, EndAt).
//  DurationMinutes – length of the interval.
//  SpecialRequests – free text from the customer (nullable).
//  TableIDs        – assigned tables (loaded from reservation_tables).
type Reservation struct {
    ID              uint64    // reservations.id
    CustomerID      uint64    // reservations.customer_id
    Date            string    // reservations.reservation_date
    Time            TimeOfDay // reservations.reservation_time
    PartySize       int       // reservations.party_size
    Status          string    // reservations.status
    StartAt         time.Time // reservations.start_at
    EndAt           time.Time // reservations.end_at
    DurationMinutes int       // reservations.duration_minutes
    SpecialRequests *string   // reservations.special_requests (nullable)
    TableIDs        []uint64  // reservation_tables.table_id
    CreatedAt       time.Time // reservations.created_at
    UpdatedAt       time.Time // reservations.updated_at
}

// ReservationTable links a reservation to one assigned table.  All rows
// of a reservation come from a single allocation.
type ReservationTable struct {
    ReservationID uint64 // reservation_tables.reservation_id
    TableID       uint64 // reservation_tables.table_id
}

// TableBooking is one occupied (table, interval) pair on a date.  It is
// the unit the availability calculator works with.
type TableBooking struct {
    ReservationID uint64
    TableID       uint64
    StartAt       time.Time
    EndAt         time.Time
}
