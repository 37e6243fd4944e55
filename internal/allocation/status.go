package allocation

import (
	"math"
	"sort"

	"github.com/iliyamo/table-reservation/internal/floorplan"
)

// TableStatus is one entry of the admin floor map.
type TableStatus struct {
	TableID       uint64   `json:"table_id"`
	TableName     string   `json:"table_name"`
	Shape         string   `json:"shape"`
	Capacity      int      `json:"capacity"`
	ExtraCapacity int      `json:"extra_capacity"`
	TotalCapacity int      `json:"total_capacity"`
	ZoneID        *uint64  `json:"zone_id,omitempty"`
	ZoneName      string   `json:"zone_name,omitempty"`
	ZoneColor     string   `json:"zone_color,omitempty"`
	Free          bool     `json:"free"`
	OccupiedBy    []uint64 `json:"occupied_by,omitempty"`
}

// TableStatuses lists every active table with its free/occupied flag,
// ordered by zone priority and then table name.  Tables without an
// active zone come last.  No party size or zone filtering is applied.
func TableStatuses(snap *floorplan.Snapshot, busy Occupancy) []TableStatus {
	out := make([]TableStatus, 0)
	if snap == nil {
		return out
	}
	rank := make(map[uint64]int)
	for i, z := range snap.Zones() {
		rank[z.ID] = i
	}
	type row struct {
		status TableStatus
		rank   int
	}
	rows := make([]row, 0, len(snap.Tables()))
	for _, t := range snap.Tables() {
		st := TableStatus{
			TableID:       t.ID,
			TableName:     t.Name,
			Shape:         t.Shape,
			Capacity:      t.Capacity,
			ExtraCapacity: t.ExtraCapacity,
			TotalCapacity: t.TotalCapacity(),
			Free:          !busy.Busy(t.ID),
		}
		if !st.Free {
			st.OccupiedBy = append([]uint64(nil), busy[t.ID]...)
		}
		r := math.MaxInt
		if t.ZoneID != nil {
			if z, ok := snap.Zone(*t.ZoneID); ok {
				id := z.ID
				st.ZoneID = &id
				st.ZoneName = z.Name
				st.ZoneColor = z.Color
				r = rank[z.ID]
			}
		}
		rows = append(rows, row{status: st, rank: r})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].rank != rows[j].rank {
			return rows[i].rank < rows[j].rank
		}
		if rows[i].status.TableName != rows[j].status.TableName {
			return rows[i].status.TableName < rows[j].status.TableName
		}
		return rows[i].status.TableID < rows[j].status.TableID
	})
	for _, r := range rows {
		out = append(out, r.status)
	}
	return out
}
