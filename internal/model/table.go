package model

import "time"

// Table shapes supported by the floor plan editor.
const (
    ShapeSquare    = "square"
    ShapeRound     = "round"
    ShapeRectangle = "rectangle"
)

// Table describes a physical dining table.  Tables are never deleted
// once a reservation references them; they are deactivated instead.
//
// Fields:
//  ID            – primary key identifier.
//  Name          – label shown to staff (e.g. "T12").
//  Capacity      – number of diners the table seats normally.
//  ExtraCapacity – additional diners the table can take when stretched.
//  Shape         – square, round or rectangle.
//  ZoneID        – zone the table belongs to (nil when unassigned).
//  IsActive      – whether the table can be allocated.
type Table struct {
    ID            uint64    // restaurant_tables.id
    Name          string    // restaurant_tables.name
    Capacity      int       // restaurant_tables.capacity
    ExtraCapacity int       // restaurant_tables.extra_capacity
    Shape         string    // restaurant_tables.shape
    ZoneID        *uint64   // restaurant_tables.zone_id (nullable)
    IsActive      bool      // restaurant_tables.is_active
    CreatedAt     time.Time // restaurant_tables.created_at
    UpdatedAt     time.Time // restaurant_tables.updated_at
}

// TotalCapacity returns base plus extra capacity.
func (t Table) TotalCapacity() int { return t.Capacity + t.ExtraCapacity }
