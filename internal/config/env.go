package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// The env* helpers read an optional variable and fall back to def when it
// is unset or does not parse.

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

func envInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return def
}

func envDur(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return def
}

// envList splits a comma separated variable, normalizing each item with
// norm and dropping empty ones.
func envList(key, def string, norm func(string) string) []string {
	var out []string
	for _, p := range strings.Split(envStr(key, def), ",") {
		if p = norm(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func setOf(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}
