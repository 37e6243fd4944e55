package model

import (
    "database/sql/driver"
    "errors"
    "fmt"
    "strings"
    "time"
)

// DateLayout is the wire and storage format for reservation dates.
const DateLayout = "2006-01-02"

// ErrInvalidTimeOfDay is returned when a time of day cannot be parsed.
var ErrInvalidTimeOfDay = errors.New("invalid time of day")

// TimeOfDay is a clock time expressed as minutes since midnight.  It maps
// to MySQL TIME columns and to "HH:MM" strings in the API.
type TimeOfDay int

// ParseTimeOfDay accepts "HH:MM" or "HH:MM:SS" (seconds are dropped).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
    s = strings.TrimSpace(s)
    for _, layout := range []string{"15:04", "15:04:05"} {
        if t, err := time.Parse(layout, s); err == nil {
            return TimeOfDay(t.Hour()*60 + t.Minute()), nil
        }
    }
    return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
}

// String formats the time as "HH:MM".
func (t TimeOfDay) String() string {
    return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// On returns the instant at this time of day on the given date in loc.
func (t TimeOfDay) On(date time.Time, loc *time.Location) time.Time {
    y, m, d := date.Date()
    return time.Date(y, m, d, int(t)/60, int(t)%60, 0, 0, loc)
}

// Scan implements sql.Scanner for TIME columns, which the MySQL driver
// returns as text even with parseTime enabled.
func (t *TimeOfDay) Scan(src interface{}) error {
    switch v := src.(type) {
    case []byte:
        return t.parseInto(string(v))
    case string:
        return t.parseInto(v)
    case time.Time:
        *t = TimeOfDay(v.Hour()*60 + v.Minute())
        return nil
    case nil:
        *t = 0
        return nil
    }
    return fmt.Errorf("%w: unsupported type %T", ErrInvalidTimeOfDay, src)
}

func (t *TimeOfDay) parseInto(s string) error {
    v, err := ParseTimeOfDay(s)
    if err != nil {
        return err
    }
    *t = v
    return nil
}

// Value implements driver.Valuer, storing "HH:MM:00".
func (t TimeOfDay) Value() (driver.Value, error) {
    return t.String() + ":00", nil
}

// MarshalJSON renders the time as "HH:MM".
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
    return []byte(`"` + t.String() + `"`), nil
}

// OpeningWindow is the effective opening interval for one date.  A slot
// at exactly Close is still bookable.
type OpeningWindow struct {
    Open  TimeOfDay
    Close TimeOfDay
}

// Contains reports whether t falls within [Open, Close], inclusive of the
// closing boundary.  Windows with Close <= Open contain nothing.
func (w OpeningWindow) Contains(t TimeOfDay) bool {
    if w.Close <= w.Open {
        return false
    }
    return t >= w.Open && t <= w.Close
}

// WeeklySchedule is the regular opening window for a weekday
// (0 = Sunday, matching time.Weekday).
type WeeklySchedule struct {
    Weekday   time.Weekday // weekly_schedule.weekday
    OpenTime  TimeOfDay    // weekly_schedule.open_time
    CloseTime TimeOfDay    // weekly_schedule.close_time
    IsOpen    bool         // weekly_schedule.is_open
}

// SpecialSchedule overrides the weekly schedule for one date.
type SpecialSchedule struct {
    Date      string    // special_schedules.schedule_date
    OpenTime  TimeOfDay // special_schedules.open_time
    CloseTime TimeOfDay // special_schedules.close_time
}

// ClosedDay marks a single date (EndDate nil) or an inclusive date range
// on which no reservations are taken.
type ClosedDay struct {
    ID        uint64  // closed_days.id
    StartDate string  // closed_days.start_date
    EndDate   *string // closed_days.end_date (nullable)
    Reason    *string // closed_days.reason (nullable)
}
