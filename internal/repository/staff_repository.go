package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/table-reservation/internal/model"
)

// StaffRepo reads restaurant staff accounts.
type StaffRepo struct {
    db *sql.DB
}

func NewStaffRepo(db *sql.DB) *StaffRepo { return &StaffRepo{db: db} }

// GetByEmail returns the active staff user with the email, or ErrNotFound.
func (r *StaffRepo) GetByEmail(ctx context.Context, email string) (*model.StaffUser, error) {
    var u model.StaffUser
    err := r.db.QueryRowContext(ctx,
        `SELECT id, email, password_hash, role, is_active, created_at FROM staff_users WHERE email = ? AND is_active = 1`,
        email,
    ).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrNotFound
        }
        return nil, err
    }
    return &u, nil
}

// Create inserts a staff account with an already hashed password.
func (r *StaffRepo) Create(ctx context.Context, email, passwordHash, role string) (uint64, error) {
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO staff_users (email, password_hash, role) VALUES (?, ?, ?)`,
        email, passwordHash, role,
    )
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}
