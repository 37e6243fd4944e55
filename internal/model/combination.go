package model

// TableCombination is a pre-approved set of adjacent tables that may be
// pushed together for one larger party.  Combinations are configured by
// staff; they are never computed on the fly.
//
// Fields:
//  ID            – primary key identifier.
//  Name          – label shown to staff (e.g. "T1+T2").
//  TableIDs      – member tables, in configured order (at least two).
//  TotalCapacity – diners the combined tables seat.
//  ZoneID        – zone the combination belongs to (nil when unassigned).
//  IsActive      – whether the combination can be allocated.
type TableCombination struct {
    ID            uint64   // table_combinations.id
    Name          string   // table_combinations.name
    TableIDs      []uint64 // table_combination_members.table_id ordered by position
    TotalCapacity int      // table_combinations.total_capacity
    ZoneID        *uint64  // table_combinations.zone_id (nullable)
    IsActive      bool     // table_combinations.is_active
}
