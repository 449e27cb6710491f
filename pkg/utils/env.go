package utils

import (
	"os"
	"strconv"
)

// Env returns the value of key, or def when unset or empty.
func Env(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

// EnvInt returns the value of key as an int. Unset, non-numeric, and
// non-positive values all fall back to def: every numeric knob here (page
// size, decimals, timeouts) is meaningless at zero or below.
func EnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
