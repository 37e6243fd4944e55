package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/iliyamo/table-reservation/internal/model"
)

// ScheduleRepo answers calendar questions: closures, the effective opening
// window for a date and the reservation time grid.
type ScheduleRepo struct {
    db *sql.DB
}

// NewScheduleRepo returns a new ScheduleRepo bound to the given database.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{db: db} }

// IsClosed reports whether the date falls on a closed day, either a single
// date closure (end_date NULL) or inside a closed range.
func (r *ScheduleRepo) IsClosed(ctx context.Context, date string) (bool, error) {
    const q = `SELECT COUNT(*) FROM closed_days
               WHERE (end_date IS NULL AND start_date = ?)
                  OR (end_date IS NOT NULL AND ? BETWEEN start_date AND end_date)`
    var n int
    if err := r.db.QueryRowContext(ctx, q, date, date).Scan(&n); err != nil {
        return false, err
    }
    return n > 0, nil
}

// EffectiveWindow returns the opening window for the date.  A special
// schedule for the date overrides the weekly schedule of its weekday.  It
// returns nil when the restaurant does not open that day.
func (r *ScheduleRepo) EffectiveWindow(ctx context.Context, date time.Time) (*model.OpeningWindow, error) {
    var w model.OpeningWindow
    err := r.db.QueryRowContext(ctx,
        `SELECT open_time, close_time FROM special_schedules WHERE schedule_date = ?`,
        date.Format(model.DateLayout),
    ).Scan(&w.Open, &w.Close)
    switch {
    case err == nil:
        return &w, nil
    case !errors.Is(err, sql.ErrNoRows):
        return nil, err
    }

    err = r.db.QueryRowContext(ctx,
        `SELECT open_time, close_time FROM weekly_schedule WHERE weekday = ? AND is_open = 1`,
        int(date.Weekday()),
    ).Scan(&w.Open, &w.Close)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, nil
        }
        return nil, err
    }
    return &w, nil
}

// SlotTimes returns the active reservation time grid, ascending.
func (r *ScheduleRepo) SlotTimes(ctx context.Context) ([]model.TimeOfDay, error) {
    rows, err := r.db.QueryContext(ctx, `SELECT slot_time FROM time_slots WHERE is_active = 1 ORDER BY slot_time`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.TimeOfDay, 0)
    for rows.Next() {
        var t model.TimeOfDay
        if err := rows.Scan(&t); err != nil {
            return nil, err
        }
        out = append(out, t)
    }
    return out, rows.Err()
}
