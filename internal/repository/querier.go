package repository

import (
    "context"
    "database/sql"
    "strings"
)

// querier is satisfied by both *sql.DB and *sql.Tx so read helpers can run
// inside or outside a transaction.
type querier interface {
    ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
    QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
    QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// inClause returns "(?, ?, ?)" for n placeholders and the ids as args.
func inClause(ids []uint64) (string, []interface{}) {
    ph := make([]string, len(ids))
    args := make([]interface{}, len(ids))
    for i, id := range ids {
        ph[i] = "?"
        args[i] = id
    }
    return "(" + strings.Join(ph, ", ") + ")", args
}

func nullableString(ns sql.NullString) *string {
    if !ns.Valid {
        return nil
    }
    s := ns.String
    return &s
}

func nullableUint(n sql.NullInt64) *uint64 {
    if !n.Valid {
        return nil
    }
    v := uint64(n.Int64)
    return &v
}
