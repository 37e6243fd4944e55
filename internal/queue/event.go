// Package queue carries reservation domain events over RabbitMQ: the
// publisher used after each committed write and the audit consumer that
// appends them to logs/reservations.log.
package queue

import "time"

// QueueName is the durable queue every reservation event is routed to.
const QueueName = "reservation.events"

// Event types.
const (
    EventConfirmed       = "reservation.confirmed"
    EventCancelled       = "reservation.cancelled"
    EventStatusChanged   = "reservation.status_changed"
    EventTablesReassigned = "reservation.tables_reassigned"
)

// ReservationEvent is published after a reservation write commits.  It
// carries enough for downstream consumers to log or notify without
// querying the primary database.
type ReservationEvent struct {
    ID             string    `json:"id"`
    Type           string    `json:"type"`
    ReservationID  uint64    `json:"reservation_id"`
    CustomerID     uint64    `json:"customer_id"`
    Date           string    `json:"date"`
    Time           string    `json:"time"`
    PartySize      int       `json:"party_size"`
    Status         string    `json:"status"`
    PreviousStatus string    `json:"previous_status,omitempty"`
    ZoneID         *uint64   `json:"zone_id,omitempty"`
    TableIDs       []uint64  `json:"table_ids"`
    StartsAt       time.Time `json:"starts_at"`
    EndsAt         time.Time `json:"ends_at"`
    OccurredAt     time.Time `json:"occurred_at"`
}
