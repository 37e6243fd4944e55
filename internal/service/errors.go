package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks malformed requests (bad date, party size...).
	ErrInvalidInput = errors.New("invalid input")

	ErrClosedDay         = errors.New("restaurant closed on this date")
	ErrOutsideHours      = errors.New("requested time is outside opening hours")
	ErrInPast            = errors.New("requested time is in the past")
	ErrLimitExceeded     = errors.New("maximum diners for this slot reached")
	ErrNoTablesAvailable = errors.New("no tables available for this capacity and time")
	ErrTablesTaken       = errors.New("tables were taken by a concurrent booking")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrTableOccupied     = errors.New("table is occupied during this window")
	ErrTooFewSeats       = errors.New("tables do not seat the party")
)

// Rejection reason codes reported to callers.
const (
	ReasonClosedDay         = "closed_day"
	ReasonOutsideHours      = "outside_hours"
	ReasonInPast            = "in_past"
	ReasonLimitExceeded     = "limit_exceeded"
	ReasonNoTables          = "no_tables_available"
	ReasonTablesTaken       = "tables_taken"
	ReasonInvalidTransition = "invalid_transition"
	ReasonTableOccupied     = "table_occupied"
	ReasonTooFewSeats       = "insufficient_capacity"
)

// PolicyError is a structured rejection: the request was well formed but
// the restaurant's rules or the current floor state refuse it.  Nothing is
// persisted when one is returned.
type PolicyError struct {
	Reason  string
	Message string
	Err     error
}

func (e *PolicyError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *PolicyError) Unwrap() error { return e.Err }

func reject(reason string, err error, msg string) *PolicyError {
	return &PolicyError{Reason: reason, Message: msg, Err: err}
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
