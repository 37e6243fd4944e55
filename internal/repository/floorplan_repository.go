package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/table-reservation/internal/model"
)

// FloorPlanRepo reads the restaurant configuration: zones, tables and
// table combinations.  It returns inactive rows too; filtering is left to
// the floor plan snapshot.
type FloorPlanRepo struct {
    db *sql.DB
}

// NewFloorPlanRepo returns a new FloorPlanRepo bound to the given database.
func NewFloorPlanRepo(db *sql.DB) *FloorPlanRepo { return &FloorPlanRepo{db: db} }

// ListZones returns every zone ordered by priority.
func (r *FloorPlanRepo) ListZones(ctx context.Context) ([]model.Zone, error) {
    const q = `SELECT id, name, priority_order, color, is_active, created_at, updated_at
               FROM zones ORDER BY priority_order, id`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Zone
    for rows.Next() {
        var z model.Zone
        if err := rows.Scan(&z.ID, &z.Name, &z.PriorityOrder, &z.Color, &z.IsActive, &z.CreatedAt, &z.UpdatedAt); err != nil {
            return nil, err
        }
        out = append(out, z)
    }
    return out, rows.Err()
}

// ListTables returns every table.
func (r *FloorPlanRepo) ListTables(ctx context.Context) ([]model.Table, error) {
    const q = `SELECT id, name, capacity, extra_capacity, shape, zone_id, is_active, created_at, updated_at
               FROM restaurant_tables ORDER BY id`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Table
    for rows.Next() {
        var (
            t      model.Table
            zoneID sql.NullInt64
        )
        if err := rows.Scan(&t.ID, &t.Name, &t.Capacity, &t.ExtraCapacity, &t.Shape, &zoneID, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
            return nil, err
        }
        t.ZoneID = nullableUint(zoneID)
        out = append(out, t)
    }
    return out, rows.Err()
}

// ListCombinations returns every combination with its member table ids in
// configured order.
func (r *FloorPlanRepo) ListCombinations(ctx context.Context) ([]model.TableCombination, error) {
    const q = `SELECT id, name, total_capacity, zone_id, is_active FROM table_combinations ORDER BY id`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    var out []model.TableCombination
    index := map[uint64]int{}
    for rows.Next() {
        var (
            c      model.TableCombination
            zoneID sql.NullInt64
        )
        if err := rows.Scan(&c.ID, &c.Name, &c.TotalCapacity, &zoneID, &c.IsActive); err != nil {
            rows.Close()
            return nil, err
        }
        c.ZoneID = nullableUint(zoneID)
        index[c.ID] = len(out)
        out = append(out, c)
    }
    if err := rows.Err(); err != nil {
        rows.Close()
        return nil, err
    }
    if err := rows.Close(); err != nil {
        return nil, err
    }
    if len(out) == 0 {
        return out, nil
    }

    const mq = `SELECT combination_id, table_id FROM table_combination_members
                ORDER BY combination_id, position, table_id`
    mrows, err := r.db.QueryContext(ctx, mq)
    if err != nil {
        return nil, err
    }
    defer mrows.Close()
    for mrows.Next() {
        var cid, tid uint64
        if err := mrows.Scan(&cid, &tid); err != nil {
            return nil, err
        }
        if i, ok := index[cid]; ok {
            out[i].TableIDs = append(out[i].TableIDs, tid)
        }
    }
    return out, mrows.Err()
}
