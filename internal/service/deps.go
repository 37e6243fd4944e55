// Package service holds the reservation use cases: the booking
// transaction, cancellation and status changes, manual table overrides and
// the read-only availability views.
package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/table-reservation/internal/floorplan"
	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/queue"
)

// ReservationStore is the persistence the booking path needs.
// *repository.ReservationRepo implements it.
type ReservationStore interface {
	LockActiveTablesTx(ctx context.Context, tx *sql.Tx) ([]uint64, error)
	BookingsForDate(ctx context.Context, date string) ([]model.TableBooking, error)
	BookingsForDateTx(ctx context.Context, tx *sql.Tx, date string) ([]model.TableBooking, error)
	IsTableAvailableTx(ctx context.Context, tx *sql.Tx, tableID uint64, date string, start, end time.Time, excludeID uint64) (bool, error)
	ConflictsTx(ctx context.Context, tx *sql.Tx, reservationID uint64, date string, start, end time.Time, tableIDs []uint64) (int, error)
	CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error
	AssignTablesTx(ctx context.Context, tx *sql.Tx, reservationID uint64, tableIDs []uint64) error
	DeleteAssignmentsTx(ctx context.Context, tx *sql.Tx, reservationID uint64) error
	DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Reservation, error)
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error
	ListByDate(ctx context.Context, date string) ([]model.Reservation, error)
}

// ScheduleSource answers opening-hours questions.
type ScheduleSource interface {
	IsClosed(ctx context.Context, date string) (bool, error)
	EffectiveWindow(ctx context.Context, date time.Time) (*model.OpeningWindow, error)
	SlotTimes(ctx context.Context) ([]model.TimeOfDay, error)
}

// LimitChecker enforces the diners-per-slot cap.
type LimitChecker interface {
	CheckLimitTx(ctx context.Context, tx *sql.Tx, date string, slot model.TimeOfDay, partySize int) (bool, string, error)
}

// CustomerStore resolves the customer a booking belongs to.
type CustomerStore interface {
	ExistsTx(ctx context.Context, tx *sql.Tx, id uint64) (bool, error)
	FindOrCreateByPhoneTx(ctx context.Context, tx *sql.Tx, name, phone string, email *string) (*model.Customer, error)
	PhoneByID(ctx context.Context, id uint64) (string, error)
}

// FloorPlan hands out the current immutable floor plan snapshot.
type FloorPlan interface {
	Current() (*floorplan.Snapshot, error)
}

// EventPublisher delivers domain events after commit.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ReservationEvent) error
}
