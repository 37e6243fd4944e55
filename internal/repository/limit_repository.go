package repository

import (
    "context"
    "database/sql"
    "errors"
    "fmt"

    "github.com/iliyamo/table-reservation/internal/model"
)

// LimitRepo enforces the maximum number of diners per time slot.
type LimitRepo struct {
    db *sql.DB
}

// NewLimitRepo returns a new LimitRepo bound to the given database.
func NewLimitRepo(db *sql.DB) *LimitRepo { return &LimitRepo{db: db} }

// CheckLimitTx reports whether partySize more diners fit in the slot.  A
// date-specific limit wins over the everyday one (limit_date NULL); with no
// limit configured the answer is always ok.  When not ok, reason says why.
func (r *LimitRepo) CheckLimitTx(ctx context.Context, tx *sql.Tx, date string, slot model.TimeOfDay, partySize int) (bool, string, error) {
    var max int
    err := tx.QueryRowContext(ctx,
        `SELECT max_diners FROM diner_limits
         WHERE slot_time = ? AND (limit_date = ? OR limit_date IS NULL)
         ORDER BY limit_date IS NULL LIMIT 1`,
        slot, date,
    ).Scan(&max)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return true, "", nil
        }
        return false, "", err
    }

    var booked int
    err = tx.QueryRowContext(ctx,
        `SELECT COALESCE(SUM(party_size), 0) FROM reservations
         WHERE reservation_date = ? AND reservation_time = ? AND status IN `+activeStatuses,
        date, slot,
    ).Scan(&booked)
    if err != nil {
        return false, "", err
    }
    if booked+partySize > max {
        return false, fmt.Sprintf("the %s slot allows %d diners and %d are already booked", slot, max, booked), nil
    }
    return true, "", nil
}
