package middleware

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth.
const (
    ctxStaffID = "staff_id"
    ctxRole    = "role"
)

// StaffID returns the authenticated staff id stored by JWTAuth.
func StaffID(c echo.Context) (uint64, bool) {
    id, ok := c.Get(ctxStaffID).(uint64)
    return id, ok && id > 0
}

// Role returns the authenticated staff role stored by JWTAuth.
func Role(c echo.Context) string {
    r, _ := c.Get(ctxRole).(string)
    return r
}

// identity names the caller for rate limit keys: "staff-<id>" for an
// authenticated request, "anon" otherwise.
func identity(c echo.Context) string {
    if id, ok := StaffID(c); ok {
        return "staff-" + strconv.FormatUint(id, 10)
    }
    return "anon"
}
