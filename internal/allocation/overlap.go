// Package allocation is the table assignment and availability engine.
// It is pure: callers load reservations and the floor plan, the
// functions here decide which tables are free and which to hand out.
package allocation

import (
	"time"

	"github.com/iliyamo/table-reservation/internal/model"
)

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Touching endpoints do not conflict.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Occupancy maps each busy table to the reservations holding it during
// one window.
type Occupancy map[uint64][]uint64

// OccupancyFor collects the tables held by bookings overlapping
// [start, end).  Bookings of excludeID are ignored; pass 0 to keep all.
// Callers must pass only bookings of reservations that hold tables
// (confirmed or arrived).
func OccupancyFor(bookings []model.TableBooking, start, end time.Time, excludeID uint64) Occupancy {
	occ := make(Occupancy)
	for _, b := range bookings {
		if excludeID != 0 && b.ReservationID == excludeID {
			continue
		}
		if Overlaps(b.StartAt, b.EndAt, start, end) {
			occ[b.TableID] = append(occ[b.TableID], b.ReservationID)
		}
	}
	return occ
}

// Busy reports whether the table is held by any reservation.
func (o Occupancy) Busy(tableID uint64) bool {
	return len(o[tableID]) > 0
}

// AllFree reports whether none of the tables is busy.
func (o Occupancy) AllFree(tableIDs []uint64) bool {
	for _, id := range tableIDs {
		if o.Busy(id) {
			return false
		}
	}
	return true
}
