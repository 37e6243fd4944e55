package repository

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "time"

    "github.com/iliyamo/table-reservation/internal/model"
)

// ReservationRepo provides persistence for reservations and their table
// assignments (the reservation_tables join rows).  Timestamps are civil
// times in the restaurant's zone; the DSN loc makes the driver return them
// in that zone.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, customer_id, reservation_date, reservation_time, party_size, status,
    start_at, end_at, duration_minutes, special_requests, created_at, updated_at`

type rowScanner interface {
    Scan(dest ...interface{}) error
}

func scanReservation(s rowScanner) (*model.Reservation, error) {
    var (
        res  model.Reservation
        date time.Time
        req  sql.NullString
    )
    if err := s.Scan(&res.ID, &res.CustomerID, &date, &res.Time, &res.PartySize, &res.Status,
        &res.StartAt, &res.EndAt, &res.DurationMinutes, &req, &res.CreatedAt, &res.UpdatedAt); err != nil {
        return nil, err
    }
    res.Date = date.Format(model.DateLayout)
    res.SpecialRequests = nullableString(req)
    return &res, nil
}

// LockActiveTablesTx takes row locks on every active table in id order.
// Every booking write calls it first, so concurrent check-then-assign
// sequences queue up behind each other instead of both seeing the same
// free table.
func (r *ReservationRepo) LockActiveTablesTx(ctx context.Context, tx *sql.Tx) ([]uint64, error) {
    rows, err := tx.QueryContext(ctx, `SELECT id FROM restaurant_tables WHERE is_active = 1 ORDER BY id FOR UPDATE`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var ids []uint64
    for rows.Next() {
        var id uint64
        if err := rows.Scan(&id); err != nil {
            return nil, err
        }
        ids = append(ids, id)
    }
    return ids, rows.Err()
}

// BookingsForDate lists the table bookings of every confirmed or arrived
// reservation on the date.  Read-only; used by availability and the admin
// floor map.
func (r *ReservationRepo) BookingsForDate(ctx context.Context, date string) ([]model.TableBooking, error) {
    return bookingsForDate(ctx, r.db, date)
}

// BookingsForDateTx is BookingsForDate inside the booking transaction.
func (r *ReservationRepo) BookingsForDateTx(ctx context.Context, tx *sql.Tx, date string) ([]model.TableBooking, error) {
    return bookingsForDate(ctx, tx, date)
}

func bookingsForDate(ctx context.Context, q querier, date string) ([]model.TableBooking, error) {
    query := `SELECT rt.reservation_id, rt.table_id, r.start_at, r.end_at
              FROM reservation_tables rt
              JOIN reservations r ON r.id = rt.reservation_id
              WHERE r.reservation_date = ? AND r.status IN ` + activeStatuses + `
              ORDER BY r.start_at, rt.table_id`
    rows, err := q.QueryContext(ctx, query, date)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.TableBooking, 0)
    for rows.Next() {
        var b model.TableBooking
        if err := rows.Scan(&b.ReservationID, &b.TableID, &b.StartAt, &b.EndAt); err != nil {
            return nil, err
        }
        out = append(out, b)
    }
    return out, rows.Err()
}

// IsTableAvailable reports whether no confirmed or arrived reservation on
// the date holds the table during [start, end).  Touching endpoints do not
// conflict.  excludeID (0 for none) skips a reservation being edited.
func (r *ReservationRepo) IsTableAvailable(ctx context.Context, tableID uint64, date string, start, end time.Time, excludeID uint64) (bool, error) {
    return isTableAvailable(ctx, r.db, tableID, date, start, end, excludeID)
}

// IsTableAvailableTx is IsTableAvailable inside a locked write
// transaction.  Manual table overrides use it per chosen table.
func (r *ReservationRepo) IsTableAvailableTx(ctx context.Context, tx *sql.Tx, tableID uint64, date string, start, end time.Time, excludeID uint64) (bool, error) {
    return isTableAvailable(ctx, tx, tableID, date, start, end, excludeID)
}

func isTableAvailable(ctx context.Context, q querier, tableID uint64, date string, start, end time.Time, excludeID uint64) (bool, error) {
    query := `SELECT COUNT(*)
              FROM reservation_tables rt
              JOIN reservations r ON r.id = rt.reservation_id
              WHERE rt.table_id = ? AND r.reservation_date = ? AND r.status IN ` + activeStatuses + `
                AND r.start_at < ? AND r.end_at > ? AND r.id <> ?`
    var n int
    if err := q.QueryRowContext(ctx, query, tableID, date, end, start, excludeID).Scan(&n); err != nil {
        return false, err
    }
    return n == 0, nil
}

// ConflictsTx counts other active reservations on the date that hold any
// of the tables during [start, end).  The booking path runs it after
// writing assignments and before commit; a non-zero result means the
// transaction must be rolled back.
func (r *ReservationRepo) ConflictsTx(ctx context.Context, tx *sql.Tx, reservationID uint64, date string, start, end time.Time, tableIDs []uint64) (int, error) {
    if len(tableIDs) == 0 {
        return 0, nil
    }
    in, args := inClause(tableIDs)
    query := `SELECT COUNT(*)
              FROM reservation_tables rt
              JOIN reservations r ON r.id = rt.reservation_id
              WHERE rt.table_id IN ` + in + ` AND r.reservation_date = ? AND r.status IN ` + activeStatuses + `
                AND r.start_at < ? AND r.end_at > ? AND r.id <> ?`
    args = append(args, date, end, start, reservationID)
    var n int
    if err := tx.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
        return 0, err
    }
    return n, nil
}

// CreateTx inserts a reservation within the scope of an existing
// transaction and populates the generated ID and timestamps on res.  The
// caller must commit or rollback the transaction.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
    const q = `INSERT INTO reservations
        (customer_id, reservation_date, reservation_time, party_size, status, start_at, end_at, duration_minutes, special_requests)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
    result, err := tx.ExecContext(ctx, q, res.CustomerID, res.Date, res.Time, res.PartySize, res.Status,
        res.StartAt, res.EndAt, res.DurationMinutes, res.SpecialRequests)
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    res.ID = uint64(id)
    // Query back the row to populate timestamps and defaults
    err = tx.QueryRowContext(ctx, `SELECT created_at, updated_at FROM reservations WHERE id = ?`, res.ID).
        Scan(&res.CreatedAt, &res.UpdatedAt)
    return err
}

// AssignTablesTx inserts one reservation_tables row per table in a single
// statement.  Passing an empty slice has no effect and returns nil.
func (r *ReservationRepo) AssignTablesTx(ctx context.Context, tx *sql.Tx, reservationID uint64, tableIDs []uint64) error {
    if len(tableIDs) == 0 {
        return nil
    }
    query := `INSERT INTO reservation_tables (reservation_id, table_id) VALUES `
    args := make([]interface{}, 0, len(tableIDs)*2)
    for i, id := range tableIDs {
        if i > 0 {
            query += ","
        }
        query += "(?, ?)"
        args = append(args, reservationID, id)
    }
    _, err := tx.ExecContext(ctx, query, args...)
    return err
}

// DeleteAssignmentsTx removes every table assignment of the reservation.
func (r *ReservationRepo) DeleteAssignmentsTx(ctx context.Context, tx *sql.Tx, reservationID uint64) error {
    _, err := tx.ExecContext(ctx, `DELETE FROM reservation_tables WHERE reservation_id = ?`, reservationID)
    return err
}

// DeleteTx removes the reservation row; its assignments cascade.
func (r *ReservationRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
    _, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
    return err
}

// GetByID returns the reservation with its assigned table ids, or
// ErrNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
    res, err := scanReservation(r.db.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id))
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrNotFound
        }
        return nil, err
    }
    ids, err := tableIDsFor(ctx, r.db, id)
    if err != nil {
        return nil, err
    }
    res.TableIDs = ids
    return res, nil
}

// GetForUpdateTx loads and row-locks the reservation inside tx.
func (r *ReservationRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Reservation, error) {
    res, err := scanReservation(tx.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = ? FOR UPDATE`, id))
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrNotFound
        }
        return nil, err
    }
    ids, err := tableIDsFor(ctx, tx, id)
    if err != nil {
        return nil, err
    }
    res.TableIDs = ids
    return res, nil
}

func tableIDsFor(ctx context.Context, q querier, reservationID uint64) ([]uint64, error) {
    rows, err := q.QueryContext(ctx, `SELECT table_id FROM reservation_tables WHERE reservation_id = ? ORDER BY table_id`, reservationID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    ids := make([]uint64, 0)
    for rows.Next() {
        var id uint64
        if err := rows.Scan(&id); err != nil {
            return nil, err
        }
        ids = append(ids, id)
    }
    return ids, rows.Err()
}

// UpdateStatusTx sets the reservation status.  It returns ErrNotFound when
// no row was touched.
func (r *ReservationRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
    result, err := tx.ExecContext(ctx, `UPDATE reservations SET status = ? WHERE id = ?`, status, id)
    if err != nil {
        return err
    }
    n, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrNotFound
    }
    return nil
}

// ListByDate returns the day's reservations ordered by time, each with its
// table ids.
func (r *ReservationRepo) ListByDate(ctx context.Context, date string) ([]model.Reservation, error) {
    rows, err := r.db.QueryContext(ctx, `SELECT `+reservationColumns+` FROM reservations
        WHERE reservation_date = ? ORDER BY start_at, id`, date)
    if err != nil {
        return nil, err
    }
    out := make([]model.Reservation, 0)
    index := map[uint64]int{}
    for rows.Next() {
        res, err := scanReservation(rows)
        if err != nil {
            rows.Close()
            return nil, err
        }
        res.TableIDs = []uint64{}
        index[res.ID] = len(out)
        out = append(out, *res)
    }
    if err := rows.Err(); err != nil {
        rows.Close()
        return nil, err
    }
    rows.Close()
    if len(out) == 0 {
        return out, nil
    }

    trows, err := r.db.QueryContext(ctx, `SELECT rt.reservation_id, rt.table_id
        FROM reservation_tables rt JOIN reservations r ON r.id = rt.reservation_id
        WHERE r.reservation_date = ? ORDER BY rt.reservation_id, rt.table_id`, date)
    if err != nil {
        return nil, fmt.Errorf("list assignments: %w", err)
    }
    defer trows.Close()
    for trows.Next() {
        var rid, tid uint64
        if err := trows.Scan(&rid, &tid); err != nil {
            return nil, err
        }
        if i, ok := index[rid]; ok {
            out[i].TableIDs = append(out[i].TableIDs, tid)
        }
    }
    return out, trows.Err()
}
