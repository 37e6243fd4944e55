// Package floorplan holds the process-wide, read-mostly view of the
// dining room: zones, tables and table combinations.  A Snapshot is
// immutable once built; the Store swaps in a fresh one on explicit reload.
package floorplan

import (
	"sort"
	"time"

	"github.com/iliyamo/table-reservation/internal/model"
)

// Snapshot is an immutable floor plan.  Only active zones, active tables
// and combinations whose members are all active are kept.
type Snapshot struct {
	zones        []model.Zone
	zoneByID     map[uint64]model.Zone
	tables       []model.Table
	tableByID    map[uint64]model.Table
	tablesByZone map[uint64][]model.Table
	combosByZone map[uint64][]model.TableCombination
	loadedAt     time.Time
}

// NewSnapshot builds a Snapshot from raw configuration rows.  The input
// slices are not retained.
func NewSnapshot(zones []model.Zone, tables []model.Table, combos []model.TableCombination, loadedAt time.Time) *Snapshot {
	s := &Snapshot{
		zoneByID:     make(map[uint64]model.Zone),
		tableByID:    make(map[uint64]model.Table),
		tablesByZone: make(map[uint64][]model.Table),
		combosByZone: make(map[uint64][]model.TableCombination),
		loadedAt:     loadedAt,
	}
	for _, z := range zones {
		if !z.IsActive {
			continue
		}
		s.zones = append(s.zones, z)
		s.zoneByID[z.ID] = z
	}
	sort.SliceStable(s.zones, func(i, j int) bool {
		if s.zones[i].PriorityOrder != s.zones[j].PriorityOrder {
			return s.zones[i].PriorityOrder < s.zones[j].PriorityOrder
		}
		return s.zones[i].ID < s.zones[j].ID
	})

	for _, t := range tables {
		if !t.IsActive {
			continue
		}
		s.tables = append(s.tables, t)
		s.tableByID[t.ID] = t
		if t.ZoneID != nil {
			if _, ok := s.zoneByID[*t.ZoneID]; ok {
				s.tablesByZone[*t.ZoneID] = append(s.tablesByZone[*t.ZoneID], t)
			}
		}
	}
	for zid := range s.tablesByZone {
		list := s.tablesByZone[zid]
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].Capacity != list[j].Capacity {
				return list[i].Capacity < list[j].Capacity
			}
			return list[i].ID < list[j].ID
		})
	}

	for _, c := range combos {
		if !c.IsActive || c.ZoneID == nil || len(c.TableIDs) < 2 {
			continue
		}
		if _, ok := s.zoneByID[*c.ZoneID]; !ok {
			continue
		}
		if !s.allActive(c.TableIDs) {
			continue
		}
		members := make([]uint64, len(c.TableIDs))
		copy(members, c.TableIDs)
		c.TableIDs = members
		s.combosByZone[*c.ZoneID] = append(s.combosByZone[*c.ZoneID], c)
	}
	for zid := range s.combosByZone {
		list := s.combosByZone[zid]
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].TotalCapacity != list[j].TotalCapacity {
				return list[i].TotalCapacity < list[j].TotalCapacity
			}
			return list[i].ID < list[j].ID
		})
	}
	return s
}

func (s *Snapshot) allActive(ids []uint64) bool {
	for _, id := range ids {
		if _, ok := s.tableByID[id]; !ok {
			return false
		}
	}
	return true
}

// LoadedAt returns when the snapshot was read from storage.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Zones returns active zones ordered by priority then id.
func (s *Snapshot) Zones() []model.Zone {
	out := make([]model.Zone, len(s.zones))
	copy(out, s.zones)
	return out
}

// ZonesInOrder returns active zones in allocation order.  When preferred
// names an active zone it comes first; the rest keep priority order.
func (s *Snapshot) ZonesInOrder(preferred *uint64) []model.Zone {
	out := s.Zones()
	if preferred == nil {
		return out
	}
	for i, z := range out {
		if z.ID == *preferred {
			copy(out[1:i+1], out[:i])
			out[0] = z
			break
		}
	}
	return out
}

// Zone looks up an active zone.
func (s *Snapshot) Zone(id uint64) (model.Zone, bool) {
	z, ok := s.zoneByID[id]
	return z, ok
}

// Table looks up an active table.
func (s *Snapshot) Table(id uint64) (model.Table, bool) {
	t, ok := s.tableByID[id]
	return t, ok
}

// Tables returns every active table, zoned or not, in input order.
func (s *Snapshot) Tables() []model.Table {
	out := make([]model.Table, len(s.tables))
	copy(out, s.tables)
	return out
}

// TablesInZone returns the zone's active tables, smallest capacity first.
func (s *Snapshot) TablesInZone(zoneID uint64) []model.Table {
	return s.tablesByZone[zoneID]
}

// CombinationsInZone returns the zone's usable combinations, smallest
// total capacity first.
func (s *Snapshot) CombinationsInZone(zoneID uint64) []model.TableCombination {
	return s.combosByZone[zoneID]
}

// Combinations returns every usable combination ordered by zone priority.
func (s *Snapshot) Combinations() []model.TableCombination {
	var out []model.TableCombination
	for _, z := range s.zones {
		out = append(out, s.combosByZone[z.ID]...)
	}
	return out
}
