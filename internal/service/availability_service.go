package service

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/table-reservation/internal/allocation"
	"github.com/iliyamo/table-reservation/internal/model"
)

// BookingReader lists the table bookings of a date.
type BookingReader interface {
	BookingsForDate(ctx context.Context, date string) ([]model.TableBooking, error)
}

// AvailabilityService serves the read-only views: bookable slots for the
// booking flow and the admin floor map.  Reads run outside any write
// transaction and may be stale by one in-flight booking; the write path
// re-validates before commit.
type AvailabilityService struct {
	schedule       ScheduleSource
	bookings       BookingReader
	plan           FloorPlan
	loc            *time.Location
	slotDuration   time.Duration
	statusDuration time.Duration
	now            func() time.Time
}

// NewAvailabilityService wires the service.  slotDuration is the default
// window for slot search (120 minutes when zero); statusDuration the
// default for the floor map (90 minutes when zero).
func NewAvailabilityService(schedule ScheduleSource, bookings BookingReader, plan FloorPlan, loc *time.Location, slotDuration, statusDuration time.Duration) *AvailabilityService {
	if schedule == nil || bookings == nil || plan == nil {
		panic("nil dependency passed to NewAvailabilityService")
	}
	if loc == nil {
		loc = time.UTC
	}
	if slotDuration <= 0 {
		slotDuration = 120 * time.Minute
	}
	if statusDuration <= 0 {
		statusDuration = 90 * time.Minute
	}
	return &AvailabilityService{
		schedule:       schedule,
		bookings:       bookings,
		plan:           plan,
		loc:            loc,
		slotDuration:   slotDuration,
		statusDuration: statusDuration,
		now:            time.Now,
	}
}

// ListAvailableSlots returns, for each grid slot inside the date's
// effective opening window (closing time included), every zone that can
// seat the party for the duration.  Slots that have already started are
// left out, matching the booking path's in_past rejection.  Closed days and
// days without opening hours yield an empty list.
func (s *AvailabilityService) ListAvailableSlots(ctx context.Context, date string, partySize, durationMinutes int) ([]allocation.SlotOption, error) {
	day, err := time.ParseInLocation(model.DateLayout, date, s.loc)
	if err != nil {
		return nil, invalid("date must be YYYY-MM-DD")
	}
	if partySize <= 0 {
		return nil, invalid("party_size must be positive")
	}
	duration, err := pickDuration(durationMinutes, s.slotDuration)
	if err != nil {
		return nil, err
	}
	empty := []allocation.SlotOption{}

	closed, err := s.schedule.IsClosed(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("check closed day: %w", err)
	}
	if closed {
		return empty, nil
	}
	window, err := s.schedule.EffectiveWindow(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("load opening hours: %w", err)
	}
	if window == nil {
		return empty, nil
	}
	grid, err := s.schedule.SlotTimes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load time slots: %w", err)
	}
	slots := s.upcoming(day, allocation.GridSlots(grid, *window))
	if len(slots) == 0 {
		return empty, nil
	}

	bookings, err := s.bookings.BookingsForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}
	snap, err := s.plan.Current()
	if err != nil {
		return nil, err
	}
	return allocation.AvailableSlots(snap, slots, allocation.SlotQuery{
		Date:      day,
		Location:  s.loc,
		PartySize: partySize,
		Duration:  duration,
	}, bookings), nil
}

// ListTablesWithStatus reports every active table as free or occupied for
// the window starting at date+at.  excludeID (0 for none) ignores one
// reservation's own hold, for edit-in-place.
func (s *AvailabilityService) ListTablesWithStatus(ctx context.Context, date string, at model.TimeOfDay, durationMinutes int, excludeID uint64) ([]allocation.TableStatus, error) {
	day, err := time.ParseInLocation(model.DateLayout, date, s.loc)
	if err != nil {
		return nil, invalid("date must be YYYY-MM-DD")
	}
	if at < 0 || at >= 24*60 {
		return nil, invalid("time out of range")
	}
	duration, err := pickDuration(durationMinutes, s.statusDuration)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings.BookingsForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}
	snap, err := s.plan.Current()
	if err != nil {
		return nil, err
	}
	start := at.On(day, s.loc)
	busy := allocation.OccupancyFor(bookings, start, start.Add(duration), excludeID)
	return allocation.TableStatuses(snap, busy), nil
}

func (s *AvailabilityService) upcoming(day time.Time, slots []model.TimeOfDay) []model.TimeOfDay {
	now := s.now()
	out := make([]model.TimeOfDay, 0, len(slots))
	for _, slot := range slots {
		if !slot.On(day, s.loc).Before(now) {
			out = append(out, slot)
		}
	}
	return out
}

func pickDuration(minutes int, def time.Duration) (time.Duration, error) {
	if minutes == 0 {
		return def, nil
	}
	if minutes < 0 || minutes > 24*60 {
		return 0, invalid("duration out of range")
	}
	return time.Duration(minutes) * time.Minute, nil
}
