package config

import (
	"strings"
	"time"
)

// CacheConfig drives the GET response cache over catalog resources.  When
// Enabled is false or no Redis client is configured, caching is off.  TTL
// bounds staleness for readers; writes also drop the resource's entries so
// a DELETE is never followed by a cached 200.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool // methods served from cache, normally GET
	Resources    map[string]bool // collections under /api, e.g. "genres"
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_*.
func LoadCacheConfig() CacheConfig {
	cfg := CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      setOf(envList("CACHE_METHODS", "GET", strings.ToUpper)),
		Resources:    setOf(envList("CACHE_RESOURCES", "genres,movies", strings.ToLower)),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		Prefix:       envStr("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	return cfg
}
