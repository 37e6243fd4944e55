package middleware

import (
    "net/http"
    "net/http/httptest"
    "strconv"
    "testing"
    "time"

    "github.com/alicebob/miniredis/v2"
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
    "go.uber.org/zap/zaptest/observer"

    "github.com/iliyamo/table-reservation/internal/config"
    "github.com/iliyamo/table-reservation/internal/utils"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
    t.Helper()
    mr := miniredis.RunT(t)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
    t.Cleanup(func() { _ = rdb.Close() })
    return mr, rdb
}

func do(e *echo.Echo, method, target string, header http.Header) *httptest.ResponseRecorder {
    req := httptest.NewRequest(method, target, nil)
    for k, v := range header {
        req.Header[k] = v
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func bearer(t *testing.T, secret string, id uint64, role string) http.Header {
    t.Helper()
    tok, err := utils.NewAccessToken(secret, id, role, 5)
    require.NoError(t, err)
    return http.Header{"Authorization": []string{"Bearer " + tok.Token}}
}

func TestJWTAuthAndRole(t *testing.T) {
    e := echo.New()
    g := e.Group("/admin", JWTAuth("s3cret"), RequireRole("ADMIN", "STAFF"))
    g.GET("/me", func(c echo.Context) error {
        id, _ := StaffID(c)
        return c.String(http.StatusOK, strconv.FormatUint(id, 10)+" "+Role(c))
    })

    rec := do(e, http.MethodGet, "/admin/me", bearer(t, "s3cret", 42, "STAFF"))
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "42 STAFF", rec.Body.String())

    rec = do(e, http.MethodGet, "/admin/me", nil)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)

    rec = do(e, http.MethodGet, "/admin/me", bearer(t, "other", 42, "STAFF"))
    assert.Equal(t, http.StatusUnauthorized, rec.Code)

    rec = do(e, http.MethodGet, "/admin/me", bearer(t, "s3cret", 42, "GUEST"))
    assert.Equal(t, http.StatusForbidden, rec.Code)
    assert.JSONEq(t, `{"success":false,"error":"forbidden","reason":"forbidden"}`, rec.Body.String())
}

func cacheConfig() config.CacheConfig {
    return config.CacheConfig{
        Enabled:      true,
        Methods:      map[string]bool{http.MethodGet: true},
        TTL:          time.Minute,
        KeyStrategy:  "route_query",
        Prefix:       "cache",
        MaxBodyBytes: 1 << 20,
    }
}

func TestRedisCache_HitAfterMiss(t *testing.T) {
    _, rdb := newRedis(t)
    cfg := cacheConfig()
    calls := 0
    e := echo.New()
    e.GET("/v1/availability", func(c echo.Context) error {
        calls++
        return c.JSON(http.StatusOK, echo.Map{"n": calls})
    }, NewRedisCache(cfg, rdb, zap.NewNop()))

    first := do(e, http.MethodGet, "/v1/availability?date=2025-06-01&party_size=2", nil)
    assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
    second := do(e, http.MethodGet, "/v1/availability?date=2025-06-01&party_size=2", nil)
    assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
    assert.Equal(t, first.Body.String(), second.Body.String())
    assert.Equal(t, first.Header().Get(echo.HeaderContentType), second.Header().Get(echo.HeaderContentType))

    other := do(e, http.MethodGet, "/v1/availability?date=2025-06-02&party_size=2", nil)
    assert.Equal(t, "MISS", other.Header().Get("X-Cache"))
    assert.Equal(t, 2, calls)
}

func TestRedisCache_SkipsErrors(t *testing.T) {
    _, rdb := newRedis(t)
    e := echo.New()
    e.GET("/x", func(c echo.Context) error {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad"})
    }, NewRedisCache(cacheConfig(), rdb, nil))

    do(e, http.MethodGet, "/x", nil)
    rec := do(e, http.MethodGet, "/x", nil)
    assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
}

func TestInvalidateCache(t *testing.T) {
    mr, rdb := newRedis(t)
    cfg := cacheConfig()
    e := echo.New()
    e.GET("/v1/availability", func(c echo.Context) error { return c.String(http.StatusOK, "slots") }, NewRedisCache(cfg, rdb, nil))
    e.POST("/v1/reservations", func(c echo.Context) error { return c.NoContent(http.StatusCreated) }, InvalidateCache(cfg, rdb, nil))
    e.DELETE("/v1/reservations/:id", func(c echo.Context) error {
        return c.JSON(http.StatusConflict, echo.Map{"success": false})
    }, InvalidateCache(cfg, rdb, nil))
    require.NoError(t, mr.Set("rl:ip:1", "keep"))

    do(e, http.MethodGet, "/v1/availability?date=2025-06-01", nil)
    do(e, http.MethodGet, "/v1/availability?date=2025-06-02", nil)
    assert.Len(t, mr.Keys(), 3)

    do(e, http.MethodDelete, "/v1/reservations/1", nil)
    assert.Len(t, mr.Keys(), 3, "rejected writes keep the cache")

    do(e, http.MethodPost, "/v1/reservations", nil)
    assert.Equal(t, []string{"rl:ip:1"}, mr.Keys())
}

func TestTokenBucket(t *testing.T) {
    mr, rdb := newRedis(t)
    cfg := config.RateLimitConfig{
        Enabled:        true,
        Capacity:       2,
        RefillTokens:   1,
        RefillInterval: time.Hour,
        TTL:            time.Hour,
        KeyStrategy:    "ip_route",
        Prefix:         "rl",
    }
    e := echo.New()
    e.POST("/v1/reservations", func(c echo.Context) error { return c.NoContent(http.StatusCreated) }, NewTokenBucket(cfg, rdb, nil))

    assert.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/v1/reservations", nil).Code)
    rec := do(e, http.MethodPost, "/v1/reservations", nil)
    assert.Equal(t, http.StatusCreated, rec.Code)
    assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

    rec = do(e, http.MethodPost, "/v1/reservations", nil)
    assert.Equal(t, http.StatusTooManyRequests, rec.Code)
    assert.NotEmpty(t, rec.Header().Get("Retry-After"))

    // Fails open without Redis.
    mr.Close()
    assert.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/v1/reservations", nil).Code)
}

func TestRequestLogger(t *testing.T) {
    core, logs := observer.New(zapcore.InfoLevel)
    e := echo.New()
    e.Use(RequestLogger(zap.New(core)))
    e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
    e.GET("/boom", func(c echo.Context) error { return echo.NewHTTPError(http.StatusInternalServerError, "boom") })

    do(e, http.MethodGet, "/ok", nil)
    rec := do(e, http.MethodGet, "/boom", nil)
    assert.Equal(t, http.StatusInternalServerError, rec.Code)

    entries := logs.All()
    require.Len(t, entries, 2)
    assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
    assert.Equal(t, int64(200), entries[0].ContextMap()["status"])
    assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
    assert.Equal(t, "/boom", entries[1].ContextMap()["path"])
}
