package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/allocation"
	"github.com/iliyamo/table-reservation/internal/floorplan"
	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/queue"
	"github.com/iliyamo/table-reservation/internal/repository"
)

// ReservationService runs every write against reservations.  Each write is
// one serializable transaction that first locks the active table rows, so
// concurrent bookings for overlapping windows are serialized, and that
// re-checks the chosen tables right before commit.
type ReservationService struct {
	db              *sql.DB
	reservations    ReservationStore
	customers       CustomerStore
	schedule        ScheduleSource
	limits          LimitChecker
	plan            FloorPlan
	events          EventPublisher
	loc             *time.Location
	defaultDuration time.Duration
	log             *zap.Logger
	now             func() time.Time
}

// ReservationOptions carries the optional collaborators of
// ReservationService.  Zero values fall back to UTC, 90 minutes, no events
// and a no-op logger.
type ReservationOptions struct {
	Location        *time.Location
	DefaultDuration time.Duration
	Events          EventPublisher
	Logger          *zap.Logger
}

// NewReservationService wires the service and panics if a required
// dependency is nil.
func NewReservationService(db *sql.DB, reservations ReservationStore, customers CustomerStore,
	schedule ScheduleSource, limits LimitChecker, plan FloorPlan, opts ReservationOptions) *ReservationService {
	if db == nil || reservations == nil || customers == nil || schedule == nil || limits == nil || plan == nil {
		panic("nil dependency passed to NewReservationService")
	}
	s := &ReservationService{
		db:              db,
		reservations:    reservations,
		customers:       customers,
		schedule:        schedule,
		limits:          limits,
		plan:            plan,
		events:          opts.Events,
		loc:             opts.Location,
		defaultDuration: opts.DefaultDuration,
		log:             opts.Logger,
		now:             time.Now,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.defaultDuration <= 0 {
		s.defaultDuration = 90 * time.Minute
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// CustomerDetails identifies a walk-in customer by phone.
type CustomerDetails struct {
	Name  string
	Phone string
	Email *string
}

// CreateReservationInput is a booking request.  Either CustomerID or
// Customer (with a phone) must be set.  DurationMinutes 0 means the
// default duration.
type CreateReservationInput struct {
	CustomerID      uint64
	Customer        *CustomerDetails
	Date            string
	Time            model.TimeOfDay
	PartySize       int
	SpecialRequests *string
	DurationMinutes int
	PreferredZoneID *uint64
}

// Booking is a committed reservation and the tables it holds.
type Booking struct {
	Reservation *model.Reservation
	Assignment  allocation.Assignment
}

// CreateReservation validates the request against the calendar and the
// diners limit, stores a confirmed reservation and assigns it one table or
// one combination.  It is all or nothing: on any failure no reservation
// and no assignment survive.  Rejections are returned as *PolicyError.
func (s *ReservationService) CreateReservation(ctx context.Context, in CreateReservationInput) (*Booking, error) {
	day, err := s.parseDate(in.Date)
	if err != nil {
		return nil, err
	}
	if in.PartySize <= 0 {
		return nil, invalid("party_size must be positive")
	}
	if in.Time < 0 || in.Time >= 24*60 {
		return nil, invalid("time out of range")
	}
	duration := s.defaultDuration
	if in.DurationMinutes != 0 {
		if in.DurationMinutes < 0 || in.DurationMinutes > 24*60 {
			return nil, invalid("duration_minutes out of range")
		}
		duration = time.Duration(in.DurationMinutes) * time.Minute
	}
	if in.CustomerID == 0 && (in.Customer == nil || strings.TrimSpace(in.Customer.Phone) == "") {
		return nil, invalid("customer_id or phone required")
	}

	closed, err := s.schedule.IsClosed(ctx, in.Date)
	if err != nil {
		return nil, fmt.Errorf("check closed day: %w", err)
	}
	if closed {
		return nil, reject(ReasonClosedDay, ErrClosedDay, fmt.Sprintf("the restaurant is closed on %s", in.Date))
	}
	window, err := s.schedule.EffectiveWindow(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("load opening hours: %w", err)
	}
	if window == nil || !window.Contains(in.Time) {
		return nil, reject(ReasonOutsideHours, ErrOutsideHours, outsideHoursMessage(window, in.Time))
	}
	start := in.Time.On(day, s.loc)
	end := start.Add(duration)
	if start.Before(s.now()) {
		return nil, reject(ReasonInPast, ErrInPast, "")
	}
	snap, err := s.plan.Current()
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// The table lock must be the first statement: customer and limit reads
	// take gap and shared locks that would otherwise interleave.
	if _, err := s.reservations.LockActiveTablesTx(ctx, tx); err != nil {
		return nil, s.txError("lock tables", err)
	}
	customerID, err := s.resolveCustomerTx(ctx, tx, in)
	if err != nil {
		return nil, err
	}
	ok, reason, err := s.limits.CheckLimitTx(ctx, tx, in.Date, in.Time, in.PartySize)
	if err != nil {
		return nil, s.txError("check diners limit", err)
	}
	if !ok {
		return nil, reject(ReasonLimitExceeded, ErrLimitExceeded, reason)
	}

	res := &model.Reservation{
		CustomerID:      customerID,
		Date:            in.Date,
		Time:            in.Time,
		PartySize:       in.PartySize,
		Status:          model.StatusConfirmed,
		StartAt:         start,
		EndAt:           end,
		DurationMinutes: int(duration / time.Minute),
		SpecialRequests: in.SpecialRequests,
	}
	if err := s.reservations.CreateTx(ctx, tx, res); err != nil {
		return nil, s.txError("create reservation", err)
	}

	a, err := s.allocateTx(ctx, tx, snap, res, in.PreferredZoneID)
	if err != nil {
		if errors.Is(err, ErrNoTablesAvailable) {
			if derr := s.reservations.DeleteTx(ctx, tx, res.ID); derr != nil {
				s.log.Error("discard unassigned reservation", zap.Uint64("reservation_id", res.ID), zap.Error(derr))
			}
			s.log.Info("no tables available",
				zap.String("date", res.Date), zap.String("time", res.Time.String()), zap.Int("party_size", res.PartySize))
			return nil, reject(ReasonNoTables, ErrNoTablesAvailable, "")
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, s.txError("commit", err)
	}
	committed = true

	zone := a.ZoneID()
	s.log.Info("reservation confirmed",
		zap.Uint64("reservation_id", res.ID), zap.String("kind", a.Kind()),
		zap.Uint64("zone_id", zone), zap.Uint64s("table_ids", res.TableIDs))
	s.publish(ctx, queue.EventConfirmed, res, "", &zone)
	return &Booking{Reservation: res, Assignment: a}, nil
}

// allocateTx picks tables for res, writes the assignment rows and checks
// them against concurrent writers.  If writing the rows fails, any partial
// rows are removed before the error is returned.
func (s *ReservationService) allocateTx(ctx context.Context, tx *sql.Tx, snap *floorplan.Snapshot, res *model.Reservation, preferredZoneID *uint64) (allocation.Assignment, error) {
	bookings, err := s.reservations.BookingsForDateTx(ctx, tx, res.Date)
	if err != nil {
		return nil, s.txError("load bookings", err)
	}
	busy := allocation.OccupancyFor(bookings, res.StartAt, res.EndAt, res.ID)
	a, ok := allocation.Allocate(snap, busy, res.PartySize, preferredZoneID)
	if !ok {
		return nil, ErrNoTablesAvailable
	}
	ids := a.TableIDs()
	if err := s.reservations.AssignTablesTx(ctx, tx, res.ID, ids); err != nil {
		if cerr := s.reservations.DeleteAssignmentsTx(ctx, tx, res.ID); cerr != nil {
			s.log.Error("remove partial assignment", zap.Uint64("reservation_id", res.ID), zap.Error(cerr))
		}
		return nil, s.txError("assign tables", err)
	}
	if err := s.guardTx(ctx, tx, res, ids); err != nil {
		return nil, err
	}
	res.TableIDs = ids
	return a, nil
}

// guardTx is the last check before commit: no other active reservation
// may hold the tables in an overlapping window.
func (s *ReservationService) guardTx(ctx context.Context, tx *sql.Tx, res *model.Reservation, ids []uint64) error {
	n, err := s.reservations.ConflictsTx(ctx, tx, res.ID, res.Date, res.StartAt, res.EndAt, ids)
	if err != nil {
		return s.txError("verify assignment", err)
	}
	if n > 0 {
		s.log.Warn("assignment conflict detected before commit",
			zap.Uint64("reservation_id", res.ID), zap.Uint64s("table_ids", ids), zap.Int("conflicts", n))
		return reject(ReasonTablesTaken, ErrTablesTaken, "")
	}
	return nil
}

func (s *ReservationService) resolveCustomerTx(ctx context.Context, tx *sql.Tx, in CreateReservationInput) (uint64, error) {
	if in.CustomerID != 0 {
		ok, err := s.customers.ExistsTx(ctx, tx, in.CustomerID)
		if err != nil {
			return 0, s.txError("load customer", err)
		}
		if !ok {
			return 0, invalid("unknown customer %d", in.CustomerID)
		}
		return in.CustomerID, nil
	}
	c, err := s.customers.FindOrCreateByPhoneTx(ctx, tx, in.Customer.Name, in.Customer.Phone, in.Customer.Email)
	if err != nil {
		return 0, s.txError("resolve customer", err)
	}
	return c.ID, nil
}

// CancelByCustomer cancels a reservation on behalf of the guest who made
// it.  phone must match the booking customer's phone; a mismatch is
// reported as ErrNotFound, the same as an unknown id.
func (s *ReservationService) CancelByCustomer(ctx context.Context, id uint64, phone string) (*model.Reservation, error) {
	phone = normalizePhone(phone)
	if phone == "" {
		return nil, invalid("phone required")
	}
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	owner, err := s.customers.PhoneByID(ctx, res.CustomerID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("load customer: %w", err)
	}
	if err != nil || normalizePhone(owner) != phone {
		s.log.Warn("cancellation phone mismatch", zap.Uint64("reservation_id", id))
		return nil, repository.ErrNotFound
	}
	return s.CancelReservation(ctx, id)
}

// normalizePhone keeps a leading plus and the digits.
func normalizePhone(p string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(p) {
		if (r >= '0' && r <= '9') || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CancelReservation flips a reservation to cancelled, releasing its tables.
func (s *ReservationService) CancelReservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	return s.UpdateStatus(ctx, id, model.StatusCancelled)
}

var transitions = map[string][]string{
	model.StatusConfirmed: {model.StatusArrived, model.StatusCancelled, model.StatusNoShow},
	model.StatusArrived:   {model.StatusCompleted},
}

// CanTransition reports whether a reservation may move from one status to
// another.
func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func knownStatus(status string) bool {
	switch status {
	case model.StatusConfirmed, model.StatusArrived, model.StatusCancelled, model.StatusCompleted, model.StatusNoShow:
		return true
	}
	return false
}

// UpdateStatus moves a reservation through its lifecycle: confirmed to
// arrived, cancelled or no_show; arrived to completed.
func (s *ReservationService) UpdateStatus(ctx context.Context, id uint64, status string) (*model.Reservation, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !knownStatus(status) {
		return nil, invalid("unknown status %q", status)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := s.reservations.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	prev := res.Status
	if !CanTransition(prev, status) {
		return nil, reject(ReasonInvalidTransition, ErrInvalidTransition,
			fmt.Sprintf("cannot change a %s reservation to %s", prev, status))
	}
	if err := s.reservations.UpdateStatusTx(ctx, tx, id, status); err != nil {
		return nil, s.txError("update status", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, s.txError("commit", err)
	}
	committed = true
	res.Status = status

	s.log.Info("reservation status changed",
		zap.Uint64("reservation_id", id), zap.String("from", prev), zap.String("to", status))
	evType := queue.EventStatusChanged
	if status == model.StatusCancelled {
		evType = queue.EventCancelled
	}
	s.publish(ctx, evType, res, prev, nil)
	return res, nil
}

// ReassignTables replaces the tables of a confirmed or arrived reservation
// with an admin choice.  The tables must be active, seat the party
// (counting extra capacity) and be free in the reservation's window,
// ignoring the reservation's own current hold.
func (s *ReservationService) ReassignTables(ctx context.Context, id uint64, tableIDs []uint64) (*model.Reservation, error) {
	ids := dedupe(tableIDs)
	if len(ids) == 0 {
		return nil, invalid("table_ids required")
	}
	snap, err := s.plan.Current()
	if err != nil {
		return nil, err
	}
	seats := 0
	for _, tid := range ids {
		t, ok := snap.Table(tid)
		if !ok {
			return nil, invalid("table %d is not an active table", tid)
		}
		seats += t.TotalCapacity()
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := s.reservations.LockActiveTablesTx(ctx, tx); err != nil {
		return nil, s.txError("lock tables", err)
	}
	res, err := s.reservations.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !model.HoldsTables(res.Status) {
		return nil, reject(ReasonInvalidTransition, ErrInvalidTransition,
			fmt.Sprintf("a %s reservation holds no tables", res.Status))
	}
	if seats < res.PartySize {
		return nil, reject(ReasonTooFewSeats, ErrTooFewSeats,
			fmt.Sprintf("the tables seat %d, the party is %d", seats, res.PartySize))
	}
	for _, tid := range ids {
		free, err := s.reservations.IsTableAvailableTx(ctx, tx, tid, res.Date, res.StartAt, res.EndAt, res.ID)
		if err != nil {
			return nil, s.txError("check table", err)
		}
		if !free {
			t, _ := snap.Table(tid)
			return nil, reject(ReasonTableOccupied, ErrTableOccupied,
				fmt.Sprintf("table %s is occupied during this reservation", t.Name))
		}
	}

	if err := s.reservations.DeleteAssignmentsTx(ctx, tx, res.ID); err != nil {
		return nil, s.txError("clear assignment", err)
	}
	if err := s.reservations.AssignTablesTx(ctx, tx, res.ID, ids); err != nil {
		return nil, s.txError("assign tables", err)
	}
	if err := s.guardTx(ctx, tx, res, ids); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, s.txError("commit", err)
	}
	committed = true
	res.TableIDs = ids

	s.log.Info("tables reassigned", zap.Uint64("reservation_id", id), zap.Uint64s("table_ids", ids))
	s.publish(ctx, queue.EventTablesReassigned, res, "", nil)
	return res, nil
}

// GetReservation returns a reservation with its tables.
func (s *ReservationService) GetReservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	return s.reservations.GetByID(ctx, id)
}

// ListReservations returns all reservations of a date.
func (s *ReservationService) ListReservations(ctx context.Context, date string) ([]model.Reservation, error) {
	if _, err := s.parseDate(date); err != nil {
		return nil, err
	}
	return s.reservations.ListByDate(ctx, date)
}

func (s *ReservationService) parseDate(date string) (time.Time, error) {
	day, err := time.ParseInLocation(model.DateLayout, date, s.loc)
	if err != nil {
		return time.Time{}, invalid("date must be YYYY-MM-DD")
	}
	return day, nil
}

// txError wraps a storage failure.  Lock timeouts and deadlocks mean a
// concurrent booking won the race, which callers see as a rejection they
// can retry.
func (s *ReservationService) txError(op string, err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && (myErr.Number == 1213 || myErr.Number == 1205) {
		s.log.Warn("booking transaction lost a lock race", zap.String("op", op), zap.Error(err))
		return reject(ReasonTablesTaken, ErrTablesTaken, "")
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *ReservationService) publish(ctx context.Context, evType string, res *model.Reservation, prev string, zoneID *uint64) {
	if s.events == nil {
		return
	}
	ev := queue.ReservationEvent{
		Type:           evType,
		ReservationID:  res.ID,
		CustomerID:     res.CustomerID,
		Date:           res.Date,
		Time:           res.Time.String(),
		PartySize:      res.PartySize,
		Status:         res.Status,
		PreviousStatus: prev,
		ZoneID:         zoneID,
		TableIDs:       res.TableIDs,
		StartsAt:       res.StartAt,
		EndsAt:         res.EndAt,
		OccurredAt:     s.now().UTC(),
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := s.events.Publish(pctx, ev); err != nil {
		s.log.Warn("publish event failed", zap.String("type", evType), zap.Uint64("reservation_id", res.ID), zap.Error(err))
	}
}

func outsideHoursMessage(w *model.OpeningWindow, t model.TimeOfDay) string {
	if w == nil || w.Close <= w.Open {
		return "the restaurant does not open on this date"
	}
	return fmt.Sprintf("%s is outside opening hours (%s-%s)", t, w.Open, w.Close)
}

func dedupe(ids []uint64) []uint64 {
	seen := make(map[uint64]bool, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
