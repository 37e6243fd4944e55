package middleware

import (
    "net/http"
    "strconv"
    "strings"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
)

func unauthorized(c echo.Context, msg string) error {
    return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": msg, "reason": "unauthorized"})
}

// JWTAuth validates an HS256 Bearer access token and stores the staff id
// (the decimal "sub" claim) and the "role" claim in the echo context.
// Read them back with StaffID and Role.
func JWTAuth(secret string) echo.MiddlewareFunc {
    parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
    key := func(*jwt.Token) (interface{}, error) { return []byte(secret), nil }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get(echo.HeaderAuthorization)
            raw, found := strings.CutPrefix(auth, "Bearer ")
            if !found || strings.TrimSpace(raw) == "" {
                return unauthorized(c, "missing bearer token")
            }

            claims := jwt.MapClaims{}
            tok, err := parser.ParseWithClaims(strings.TrimSpace(raw), claims, key)
            if err != nil || !tok.Valid {
                return unauthorized(c, "invalid token")
            }
            sub, err := claims.GetSubject()
            if err != nil {
                return unauthorized(c, "invalid claims")
            }
            id, err := strconv.ParseUint(sub, 10, 64)
            if err != nil || id == 0 {
                return unauthorized(c, "invalid claims")
            }
            role, _ := claims["role"].(string)

            c.Set(ctxStaffID, id)
            c.Set(ctxRole, role)
            return next(c)
        }
    }
}
