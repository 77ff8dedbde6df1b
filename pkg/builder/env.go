package builder

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvOr returns the env value with surrounding quotes and spaces removed,
// or def when that leaves nothing.
func EnvOr(key, def string) string {
	if v := strings.TrimSpace(strings.Trim(os.Getenv(key), `"`)); v != "" {
		return v
	}
	return def
}

func envParse[T any](key string, def T, parse func(string) (T, error)) T {
	raw := EnvOr(key, "")
	if raw == "" {
		return def
	}
	if v, err := parse(raw); err == nil {
		return v
	}
	return def
}

func EnvIntOr(key string, def int) int { return envParse(key, def, strconv.Atoi) }

func EnvFloatOr(key string, def float64) float64 {
	return envParse(key, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

// EnvDurationOr accepts time.ParseDuration syntax such as "250ms".
func EnvDurationOr(key string, def time.Duration) time.Duration {
	return envParse(key, def, time.ParseDuration)
}
