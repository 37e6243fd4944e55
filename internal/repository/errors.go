// Package repository holds the MySQL data access layer.  Errors shared by
// several repositories live here so that higher layers can tell failure
// scenarios apart with errors.Is.
package repository

import "errors"

// ErrNotFound is returned when a lookup by identifier matches no row.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write cannot be performed because of
// conflicting state, such as a table already held by an overlapping
// reservation.  Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// activeStatuses is the SQL list of reservation statuses that hold tables.
const activeStatuses = `('confirmed','arrived')`
