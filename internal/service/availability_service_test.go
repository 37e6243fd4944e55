package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/table-reservation/internal/model"
)

func newAvailability(store *fakeStore, schedule *fakeSchedule) *AvailabilityService {
	svc := NewAvailabilityService(schedule, store, fakePlan{snap: testFloor()}, testLoc, 0, 0)
	svc.now = func() time.Time { return time.Date(2025, 1, 1, 12, 0, 0, 0, testLoc) }
	return svc
}

func TestListAvailableSlots(t *testing.T) {
	store := newFakeStore()
	store.bookings = []model.TableBooking{{ReservationID: 1, TableID: 1, StartAt: at(19, 0), EndAt: at(21, 0)}}
	schedule := &fakeSchedule{
		window: &model.OpeningWindow{Open: 18 * 60, Close: 22 * 60},
		slots:  []model.TimeOfDay{12 * 60, 18 * 60, 20 * 60, 22 * 60, 20 * 60},
	}
	svc := newAvailability(store, schedule)

	got, err := svc.ListAvailableSlots(bg, "2025-06-01", 4, 0)
	require.NoError(t, err)

	type key struct {
		time model.TimeOfDay
		zone uint64
	}
	var keys []key
	for _, o := range got {
		keys = append(keys, key{o.Time, o.ZoneID})
	}
	// With the default 120 minute window, table A1 is busy for 18:00 and 20:00.
	assert.Equal(t, []key{
		{18 * 60, 2},
		{20 * 60, 2},
		{22 * 60, 1}, {22 * 60, 2},
	}, keys)

	again, err := svc.ListAvailableSlots(bg, "2025-06-01", 4, 0)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestListAvailableSlots_ShortDurationFreesEarlySlot(t *testing.T) {
	store := newFakeStore()
	store.bookings = []model.TableBooking{{ReservationID: 1, TableID: 1, StartAt: at(19, 0), EndAt: at(21, 0)}}
	schedule := &fakeSchedule{
		window: &model.OpeningWindow{Open: 18 * 60, Close: 22 * 60},
		slots:  []model.TimeOfDay{18 * 60},
	}
	got, err := newAvailability(store, schedule).ListAvailableSlots(bg, "2025-06-01", 4, 60)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(1), got[0].ZoneID)
}

func TestListAvailableSlots_DropsStartedSlotsToday(t *testing.T) {
	schedule := &fakeSchedule{
		window: &model.OpeningWindow{Open: 18 * 60, Close: 22 * 60},
		slots:  []model.TimeOfDay{18 * 60, 20 * 60, 22 * 60},
	}
	svc := newAvailability(newFakeStore(), schedule)
	svc.now = func() time.Time { return at(20, 0) }

	got, err := svc.ListAvailableSlots(bg, "2025-06-01", 2, 0)
	require.NoError(t, err)
	var times []model.TimeOfDay
	for _, o := range got {
		if len(times) == 0 || times[len(times)-1] != o.Time {
			times = append(times, o.Time)
		}
	}
	// 20:00 starts now and is still bookable; 18:00 is gone.
	assert.Equal(t, []model.TimeOfDay{20 * 60, 22 * 60}, times)

	svc.now = func() time.Time { return at(22, 1) }
	got, err = svc.ListAvailableSlots(bg, "2025-06-01", 2, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestListAvailableSlots_ClosedOrNoHours(t *testing.T) {
	schedule := &fakeSchedule{closed: true, window: &model.OpeningWindow{Open: 18 * 60, Close: 22 * 60}, slots: []model.TimeOfDay{20 * 60}}
	svc := newAvailability(newFakeStore(), schedule)

	got, err := svc.ListAvailableSlots(bg, "2025-12-25", 2, 0)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	schedule.closed = false
	schedule.window = nil
	got, err = svc.ListAvailableSlots(bg, "2025-06-02", 2, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = svc.ListAvailableSlots(bg, "2025-06-02", 0, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.ListAvailableSlots(bg, "tomorrow", 2, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListTablesWithStatus(t *testing.T) {
	store := newFakeStore()
	store.bookings = []model.TableBooking{
		{ReservationID: 7, TableID: 2, StartAt: at(20, 0), EndAt: at(21, 30)},
		{ReservationID: 8, TableID: 3, StartAt: at(18, 0), EndAt: at(19, 0)},
	}
	svc := newAvailability(store, &fakeSchedule{})

	got, err := svc.ListTablesWithStatus(bg, "2025-06-01", 20*60+30, 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 4)
	free := map[uint64]bool{}
	for _, st := range got {
		free[st.TableID] = st.Free
	}
	assert.Equal(t, map[uint64]bool{1: true, 2: false, 3: true, 4: true}, free)
	assert.Equal(t, "A1", got[0].TableName)

	got, err = svc.ListTablesWithStatus(bg, "2025-06-01", 20*60+30, 0, 7)
	require.NoError(t, err)
	for _, st := range got {
		assert.True(t, st.Free, "table %d", st.TableID)
	}

	_, err = svc.ListTablesWithStatus(bg, "2025-06-01", 20*60, -1, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
