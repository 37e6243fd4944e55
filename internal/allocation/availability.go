package allocation

import (
	"sort"
	"time"

	"github.com/iliyamo/table-reservation/internal/floorplan"
	"github.com/iliyamo/table-reservation/internal/model"
)

// SlotOption says that a zone can seat the party at a slot.  Capacity
// and Kind describe the best (tightest) candidate found in the zone.
type SlotOption struct {
	Time     model.TimeOfDay `json:"time"`
	ZoneID   uint64          `json:"zone_id"`
	ZoneName string          `json:"zone_name"`
	Kind     string          `json:"kind"`
	Capacity int             `json:"capacity"`
}

// SlotQuery describes one availability request.
type SlotQuery struct {
	Date      time.Time // any instant on the requested date
	Location  *time.Location
	PartySize int
	Duration  time.Duration
}

// GridSlots returns the distinct grid points inside the window, sorted.
// A slot equal to the closing time is included.
func GridSlots(grid []model.TimeOfDay, window model.OpeningWindow) []model.TimeOfDay {
	seen := make(map[model.TimeOfDay]struct{}, len(grid))
	out := make([]model.TimeOfDay, 0, len(grid))
	for _, t := range grid {
		if !window.Contains(t) {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AvailableSlots reports, for every slot, each zone that can seat the
// party with a free table or a fully free combination.  Rows are ordered
// by slot time and then zone priority; a slot appears once per zone.
// bookings must be the table bookings of the date's confirmed and
// arrived reservations.
func AvailableSlots(snap *floorplan.Snapshot, slots []model.TimeOfDay, q SlotQuery, bookings []model.TableBooking) []SlotOption {
	out := make([]SlotOption, 0)
	if snap == nil || q.PartySize <= 0 {
		return out
	}
	loc := q.Location
	if loc == nil {
		loc = time.UTC
	}
	for _, slot := range slots {
		start := slot.On(q.Date, loc)
		end := start.Add(q.Duration)
		busy := OccupancyFor(bookings, start, end, 0)
		for _, zone := range snap.Zones() {
			best, ok := bestInZone(snap, busy, zone.ID, q.PartySize)
			if !ok {
				continue
			}
			out = append(out, SlotOption{
				Time:     slot,
				ZoneID:   zone.ID,
				ZoneName: zone.Name,
				Kind:     best.Kind(),
				Capacity: best.Capacity(),
			})
		}
	}
	return out
}

// bestInZone unions free tables and free combinations and keeps the
// smallest capacity.  On equal capacity a single table wins.
func bestInZone(snap *floorplan.Snapshot, busy Occupancy, zoneID uint64, partySize int) (Assignment, bool) {
	single, okSingle := bestSingle(snap, busy, zoneID, partySize)
	combo, okCombo := bestCombination(snap, busy, zoneID, partySize)
	switch {
	case okSingle && okCombo:
		if combo.Capacity() < single.Capacity() {
			return combo, true
		}
		return single, true
	case okSingle:
		return single, true
	case okCombo:
		return combo, true
	}
	return nil, false
}
