package model

import "time"

// Staff roles.
const (
    RoleAdmin = "ADMIN"
    RoleStaff = "STAFF"
)

// StaffUser is an employee account allowed to use the admin API.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique login email.
//  PasswordHash – bcrypt hash of the password.
//  Role         – ADMIN or STAFF.
//  IsActive     – disabled accounts cannot log in.
type StaffUser struct {
    ID           uint64    // staff_users.id
    Email        string    // staff_users.email
    PasswordHash string    // staff_users.password_hash
    Role         string    // staff_users.role
    IsActive     bool      // staff_users.is_active
    CreatedAt    time.Time // staff_users.created_at
}
