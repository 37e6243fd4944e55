package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"

    "github.com/iliyamo/table-reservation/internal/model"
)

// CustomerRepo looks up and registers customers by phone number.
type CustomerRepo struct {
    db *sql.DB
}

// NewCustomerRepo returns a new CustomerRepo bound to the given database.
func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

// ExistsTx reports whether a customer with the id exists.
func (r *CustomerRepo) ExistsTx(ctx context.Context, tx *sql.Tx, id uint64) (bool, error) {
    var n int
    if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers WHERE id = ?`, id).Scan(&n); err != nil {
        return false, err
    }
    return n > 0, nil
}

// PhoneByID returns the phone the customer registered with.
func (r *CustomerRepo) PhoneByID(ctx context.Context, id uint64) (string, error) {
    var phone string
    err := r.db.QueryRowContext(ctx, `SELECT phone FROM customers WHERE id = ?`, id).Scan(&phone)
    if errors.Is(err, sql.ErrNoRows) {
        return "", ErrNotFound
    }
    return phone, err
}

// FindOrCreateByPhoneTx returns the customer registered under phone,
// creating it with name and email when absent.
func (r *CustomerRepo) FindOrCreateByPhoneTx(ctx context.Context, tx *sql.Tx, name, phone string, email *string) (*model.Customer, error) {
    phone = strings.TrimSpace(phone)
    var (
        c  model.Customer
        em sql.NullString
    )
    err := tx.QueryRowContext(ctx,
        `SELECT id, name, phone, email, created_at FROM customers WHERE phone = ? FOR UPDATE`, phone,
    ).Scan(&c.ID, &c.Name, &c.Phone, &em, &c.CreatedAt)
    if err == nil {
        c.Email = nullableString(em)
        return &c, nil
    }
    if !errors.Is(err, sql.ErrNoRows) {
        return nil, err
    }

    result, err := tx.ExecContext(ctx, `INSERT INTO customers (name, phone, email) VALUES (?, ?, ?)`,
        strings.TrimSpace(name), phone, email)
    if err != nil {
        return nil, err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return nil, err
    }
    return &model.Customer{ID: uint64(id), Name: strings.TrimSpace(name), Phone: phone, Email: email}, nil
}
