package allocation

import (
	"github.com/iliyamo/table-reservation/internal/floorplan"
)

// Allocate picks tables for a party given the tables already busy in the
// requested window.  Zones are searched in order (preferred zone first,
// then ascending priority).  Within a zone the tightest single table
// wins; combinations are considered only when no single table fits in
// that zone.  The first zone with a result ends the search.
func Allocate(snap *floorplan.Snapshot, busy Occupancy, partySize int, preferredZoneID *uint64) (Assignment, bool) {
	if snap == nil || partySize <= 0 {
		return nil, false
	}
	for _, zone := range snap.ZonesInOrder(preferredZoneID) {
		if a, ok := bestSingle(snap, busy, zone.ID, partySize); ok {
			return a, true
		}
		if a, ok := bestCombination(snap, busy, zone.ID, partySize); ok {
			return a, true
		}
	}
	return nil, false
}

// TablesInZone lists are sorted by capacity, so the first fit is the
// tightest fit.
func bestSingle(snap *floorplan.Snapshot, busy Occupancy, zoneID uint64, partySize int) (Assignment, bool) {
	for _, t := range snap.TablesInZone(zoneID) {
		if t.Capacity < partySize || busy.Busy(t.ID) {
			continue
		}
		return SingleTable{TableID: t.ID, Zone: zoneID, Seats: t.Capacity}, true
	}
	return nil, false
}

func bestCombination(snap *floorplan.Snapshot, busy Occupancy, zoneID uint64, partySize int) (Assignment, bool) {
	for _, c := range snap.CombinationsInZone(zoneID) {
		if c.TotalCapacity < partySize || !busy.AllFree(c.TableIDs) {
			continue
		}
		members := make([]uint64, len(c.TableIDs))
		copy(members, c.TableIDs)
		return Combination{CombinationID: c.ID, Zone: zoneID, Members: members, Seats: c.TotalCapacity}, true
	}
	return nil, false
}
