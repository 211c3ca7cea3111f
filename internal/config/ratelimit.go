package config

import (
	"strings"
	"time"
)

// Request attributes a rate-limit key can be built from.
const (
	KeyByIP    = "ip"
	KeyByUser  = "user"
	KeyByRoute = "route"
)

var defaultKeyParts = []string{KeyByIP, KeyByUser, KeyByRoute}

// RateLimitConfig sizes the per-client token bucket shared by the Redis
// limiter and its in-process fallback.  KeyParts lists, in key order, the
// attributes that identify a client.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration // idle buckets expire after this
	KeyParts       []string
	Prefix         string
	Debug          bool
}

// LoadRateLimitConfig reads RATE_LIMIT_*.  RATE_LIMIT_KEY_STRATEGY joins
// key parts with "_" or ",", e.g. "ip_user"; unknown parts are ignored.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       max(envInt("RATE_LIMIT_CAPACITY", 60), 1),
		RefillTokens:   max(envInt("RATE_LIMIT_REFILL_TOKENS", 1), 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyParts:       ParseKeyParts(envStr("RATE_LIMIT_KEY_STRATEGY", "")),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	cfg.TTL = max(cfg.TTL, 5*cfg.RefillInterval)
	return cfg
}

// ParseKeyParts returns the known parts of s in order, without repeats.
// An empty or entirely unknown s yields ip, user and route.
func ParseKeyParts(s string) []string {
	seen := map[string]bool{}
	var parts []string
	for _, p := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool { return r == '_' || r == ',' }) {
		p = strings.TrimSpace(p)
		switch p {
		case KeyByIP, KeyByUser, KeyByRoute:
			if !seen[p] {
				seen[p] = true
				parts = append(parts, p)
			}
		}
	}
	if len(parts) == 0 {
		return append([]string(nil), defaultKeyParts...)
	}
	return parts
}

// PerSecond converts the bucket refill settings to a steady rate.
func (c RateLimitConfig) PerSecond() float64 {
	return float64(c.RefillTokens) / c.RefillInterval.Seconds()
}
