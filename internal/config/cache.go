package config

import (
    "strings"
    "time"
)

// CacheConfig drives the Redis response cache on availability reads.
// Nothing is cached when Enabled is false or Redis is unreachable.
type CacheConfig struct {
    Enabled      bool
    Methods      map[string]bool
    TTL          time.Duration
    KeyStrategy  string
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_* variables.  Availability answers go stale
// as soon as a booking lands, so the default TTL is short; writes also
// purge the prefix explicitly.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        Methods:      parseMethods(envStr("CACHE_METHODS", "GET")),
        TTL:          envDur("CACHE_TTL", 15*time.Second),
        KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "route_query"),
        Prefix:       envStr("CACHE_PREFIX", "cache"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1048576),
    }
}

// parseMethods turns "get, head" into {"GET": true, "HEAD": true}.
func parseMethods(s string) map[string]bool {
    fields := strings.FieldsFunc(strings.ToUpper(s), func(r rune) bool {
        return r == ',' || r == ' ' || r == '\t'
    })
    set := make(map[string]bool, len(fields))
    for _, f := range fields {
        set[f] = true
    }
    return set
}
