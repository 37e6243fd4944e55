package model

import "time"

// Customer is the person a reservation is made for.  Customers are
// identified by phone number.
type Customer struct {
    ID        uint64    // customers.id
    Name      string    // customers.name
    Phone     string    // customers.phone
    Email     *string   // customers.email (nullable)
    CreatedAt time.Time // customers.created_at
}
