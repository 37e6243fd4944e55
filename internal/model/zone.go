package model

import "time"

// Zone is a named seating area of the dining room (terrace, main hall,
// private room).  Zones rank the order in which tables are offered: a
// lower PriorityOrder is preferred.  Color is used by the admin floor map
// only.
//
// Fields:
//  ID            – primary key identifier.
//  Name          – display name of the zone.
//  PriorityOrder – ranking used by allocation and availability (lower first).
//  Color         – hex color for the admin floor map.
//  IsActive      – inactive zones are never offered.
type Zone struct {
    ID            uint64    // zones.id
    Name          string    // zones.name
    PriorityOrder int       // zones.priority_order
    Color         string    // zones.color
    IsActive      bool      // zones.is_active
    CreatedAt     time.Time // zones.created_at
    UpdatedAt     time.Time // zones.updated_at
}
