package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/allocation"
	"github.com/iliyamo/table-reservation/internal/floorplan"
	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/queue"
	"github.com/iliyamo/table-reservation/internal/repository"
)

// callLog records the order in which fakes are reached inside a
// transaction.
type callLog struct{ calls []string }

func (l *callLog) add(name string) {
	if l != nil {
		l.calls = append(l.calls, name)
	}
}

type fakeStore struct {
	trace        *callLog
	nextID       uint64
	bookings     []model.TableBooking
	reservations map[uint64]*model.Reservation
	assigned     map[uint64][]uint64

	created            []*model.Reservation
	deleted            []uint64
	deletedAssignments []uint64
	statusUpdates      []string
	locks              int

	lockErr   error
	assignErr error
	conflicts int
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 100, reservations: map[uint64]*model.Reservation{}, assigned: map[uint64][]uint64{}}
}

func (f *fakeStore) LockActiveTablesTx(ctx context.Context, tx *sql.Tx) ([]uint64, error) {
	f.locks++
	f.trace.add("lock")
	return nil, f.lockErr
}

func (f *fakeStore) BookingsForDate(ctx context.Context, date string) ([]model.TableBooking, error) {
	return f.bookings, nil
}

func (f *fakeStore) BookingsForDateTx(ctx context.Context, tx *sql.Tx, date string) ([]model.TableBooking, error) {
	return f.bookings, nil
}

func (f *fakeStore) IsTableAvailableTx(ctx context.Context, tx *sql.Tx, tableID uint64, date string, start, end time.Time, excludeID uint64) (bool, error) {
	return !allocation.OccupancyFor(f.bookings, start, end, excludeID).Busy(tableID), nil
}

func (f *fakeStore) ConflictsTx(ctx context.Context, tx *sql.Tx, reservationID uint64, date string, start, end time.Time, tableIDs []uint64) (int, error) {
	return f.conflicts, nil
}

func (f *fakeStore) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	f.trace.add("create")
	f.nextID++
	res.ID = f.nextID
	f.created = append(f.created, res)
	return nil
}

func (f *fakeStore) AssignTablesTx(ctx context.Context, tx *sql.Tx, reservationID uint64, tableIDs []uint64) error {
	if f.assignErr != nil {
		return f.assignErr
	}
	f.assigned[reservationID] = append([]uint64(nil), tableIDs...)
	return nil
}

func (f *fakeStore) DeleteAssignmentsTx(ctx context.Context, tx *sql.Tx, reservationID uint64) error {
	f.deletedAssignments = append(f.deletedAssignments, reservationID)
	delete(f.assigned, reservationID)
	return nil
}

func (f *fakeStore) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	r, ok := f.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Reservation, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeStore) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
	f.statusUpdates = append(f.statusUpdates, status)
	f.reservations[id].Status = status
	return nil
}

func (f *fakeStore) ListByDate(ctx context.Context, date string) ([]model.Reservation, error) {
	out := []model.Reservation{}
	for _, r := range f.reservations {
		if r.Date == date {
			out = append(out, *r)
		}
	}
	return out, nil
}

type fakeSchedule struct {
	closed bool
	window *model.OpeningWindow
	slots  []model.TimeOfDay
}

func (f *fakeSchedule) IsClosed(ctx context.Context, date string) (bool, error) { return f.closed, nil }
func (f *fakeSchedule) EffectiveWindow(ctx context.Context, date time.Time) (*model.OpeningWindow, error) {
	return f.window, nil
}
func (f *fakeSchedule) SlotTimes(ctx context.Context) ([]model.TimeOfDay, error) { return f.slots, nil }

type fakeLimits struct {
	trace  *callLog
	ok     bool
	reason string
}

func (f *fakeLimits) CheckLimitTx(ctx context.Context, tx *sql.Tx, date string, slot model.TimeOfDay, partySize int) (bool, string, error) {
	f.trace.add("limit")
	return f.ok, f.reason, nil
}

type fakeCustomers struct {
	trace   *callLog
	phones  map[uint64]string
	known   map[uint64]bool
	created []string
}

func (f *fakeCustomers) ExistsTx(ctx context.Context, tx *sql.Tx, id uint64) (bool, error) {
	f.trace.add("customer")
	return f.known[id], nil
}

func (f *fakeCustomers) FindOrCreateByPhoneTx(ctx context.Context, tx *sql.Tx, name, phone string, email *string) (*model.Customer, error) {
	f.trace.add("customer")
	f.created = append(f.created, phone)
	return &model.Customer{ID: 77, Name: name, Phone: phone}, nil
}

func (f *fakeCustomers) PhoneByID(ctx context.Context, id uint64) (string, error) {
	p, ok := f.phones[id]
	if !ok {
		return "", repository.ErrNotFound
	}
	return p, nil
}

type fakePlan struct{ snap *floorplan.Snapshot }

func (f fakePlan) Current() (*floorplan.Snapshot, error) { return f.snap, nil }

type fakeEvents struct{ events []queue.ReservationEvent }

func (f *fakeEvents) Publish(ctx context.Context, ev queue.ReservationEvent) error {
	f.events = append(f.events, ev)
	return nil
}

func zp(v uint64) *uint64 { return &v }

// Zone A (priority 0): table 1 (4 seats).  Zone B (priority 1): table 2
// (4 seats), tables 3 and 4 (3 seats each) combinable as 6.
func testFloor() *floorplan.Snapshot {
	return floorplan.NewSnapshot(
		[]model.Zone{
			{ID: 1, Name: "A", PriorityOrder: 0, IsActive: true},
			{ID: 2, Name: "B", PriorityOrder: 1, IsActive: true},
		},
		[]model.Table{
			{ID: 1, Name: "A1", Capacity: 4, ZoneID: zp(1), IsActive: true},
			{ID: 2, Name: "B1", Capacity: 4, ZoneID: zp(2), IsActive: true},
			{ID: 3, Name: "B2", Capacity: 3, ExtraCapacity: 1, ZoneID: zp(2), IsActive: true},
			{ID: 4, Name: "B3", Capacity: 3, ZoneID: zp(2), IsActive: true},
		},
		[]model.TableCombination{{ID: 9, Name: "B2+B3", TableIDs: []uint64{3, 4}, TotalCapacity: 6, ZoneID: zp(2), IsActive: true}},
		time.Now(),
	)
}

var testLoc = time.FixedZone("CET", 3600)

type harness struct {
	trace     *callLog
	svc       *ReservationService
	mock      sqlmock.Sqlmock
	store     *fakeStore
	schedule  *fakeSchedule
	limits    *fakeLimits
	customers *fakeCustomers
	events    *fakeEvents
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	trace := &callLog{}
	store := newFakeStore()
	store.trace = trace
	h := &harness{
		trace:     trace,
		mock:      mock,
		store:     store,
		schedule:  &fakeSchedule{window: &model.OpeningWindow{Open: 13 * 60, Close: 23 * 60}},
		limits:    &fakeLimits{trace: trace, ok: true},
		customers: &fakeCustomers{trace: trace, known: map[uint64]bool{5: true}, phones: map[uint64]string{5: "+34 600 111 222"}},
		events:    &fakeEvents{},
	}
	h.svc = NewReservationService(db, h.store, h.customers, h.schedule, h.limits, fakePlan{snap: testFloor()}, ReservationOptions{
		Location: testLoc,
		Events:   h.events,
		Logger:   zap.NewNop(),
	})
	h.svc.now = func() time.Time { return time.Date(2025, 1, 1, 12, 0, 0, 0, testLoc) }
	return h
}
